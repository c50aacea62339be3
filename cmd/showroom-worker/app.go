package main

import (
	"context"
	"fmt"
	"time"

	"github.com/BearBump/CampusCars/config"
	"github.com/BearBump/CampusCars/internal/broker/kafka"
	"github.com/BearBump/CampusCars/internal/carousel"
	"github.com/BearBump/CampusCars/internal/models"
	"github.com/BearBump/CampusCars/internal/services/rotator"
)

type workerFactories struct {
	newProducer  func(cfg *config.Config) (p rotator.Producer, closeFn func())
	newScheduler func(cfg *config.Config) carousel.Scheduler
}

func defaultWorkerFactories() workerFactories {
	return workerFactories{
		newProducer: func(cfg *config.Config) (rotator.Producer, func()) {
			brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
			p := kafka.NewProducer(brokers)
			return p, func() { _ = p.Close() }
		},
		newScheduler: func(cfg *config.Config) carousel.Scheduler {
			return carousel.TickerScheduler{}
		},
	}
}

type workerSettings struct {
	topic    string
	showroom string
	interval time.Duration
	slides   []models.Slide
	httpAddr string
}

func showroomWorkerSettings(cfg *config.Config) workerSettings {
	s := workerSettings{
		topic:    cfg.Kafka.SlideChangedTopicName,
		showroom: cfg.CampusCars.Showroom,
		interval: time.Duration(cfg.Hero.IntervalMs) * time.Millisecond,
		slides:   cfg.Hero.Slides,
		httpAddr: cfg.CampusCars.WorkerHTTPAddr,
	}
	if s.topic == "" {
		s.topic = "hero.slide.changed"
	}
	if s.showroom == "" {
		s.showroom = "main"
	}
	if s.interval <= 0 {
		s.interval = carousel.DefaultInterval
	}
	if len(s.slides) == 0 {
		s.slides = models.DefaultHeroSlides()
	}
	if s.httpAddr == "" {
		s.httpAddr = ":8082"
	}
	return s
}

// newShowroomRotator wires the carousel to the producer. closeFn releases the
// producer and must run after the rotator stops.
func newShowroomRotator(cfg *config.Config, f workerFactories) (*rotator.Rotator, func()) {
	s := showroomWorkerSettings(cfg)
	car := carousel.New(s.slides,
		carousel.WithInterval(s.interval),
		carousel.WithScheduler(f.newScheduler(cfg)),
	)
	producer, closeFn := f.newProducer(cfg)
	if closeFn == nil {
		closeFn = func() {}
	}
	return rotator.New(car, producer, s.topic, s.showroom), closeFn
}

// RunShowroomWorker runs the rotator and its HTTP control surface until ctx
// is done or either of them fails.
func RunShowroomWorker(parent context.Context, cfg *config.Config, f workerFactories, swaggerPath string, onListen func(httpAddr string)) error {
	s := showroomWorkerSettings(cfg)
	r, closeFn := newShowroomRotator(cfg, f)
	defer closeFn()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	rotErr := make(chan error, 1)
	go func() {
		rotErr <- r.Run(ctx)
	}()

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- runWorkerHTTPServer(ctx, workerHTTPOpts{
			httpAddr:    s.httpAddr,
			swaggerPath: swaggerPath,
			onListen:    onListen,
			rotator:     r,
			settings:    s,
		})
	}()

	select {
	case err := <-rotErr:
		return err
	case err := <-httpErr:
		cancel()
		// продюсер закрываем только после остановки ротатора
		<-rotErr
		if parent.Err() != nil {
			return parent.Err()
		}
		return err
	}
}
