package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BearBump/CampusCars/config"
	campusapi "github.com/BearBump/CampusCars/internal/api/campus_api"
	"github.com/BearBump/CampusCars/internal/broker/kafka"
	"github.com/BearBump/CampusCars/internal/cache"
	"github.com/BearBump/CampusCars/internal/cache/locallimit"
	"github.com/BearBump/CampusCars/internal/cache/rediscache"
	"github.com/BearBump/CampusCars/internal/carousel"
	"github.com/BearBump/CampusCars/internal/catalog"
	"github.com/BearBump/CampusCars/internal/integrations/catalogfeed/csvfile"
	"github.com/BearBump/CampusCars/internal/integrations/catalogfeed/feedhttp"
	"github.com/BearBump/CampusCars/internal/models"
	"github.com/BearBump/CampusCars/internal/services/hero"
	"github.com/BearBump/CampusCars/internal/services/listings"
	"github.com/BearBump/CampusCars/internal/storage/pgcatalog"
	"github.com/pkg/errors"
)

type campusAPIApp struct {
	ctx     context.Context
	cancel  context.CancelFunc
	opts    campusAPIOpts
	deps    campusAPIDeps
	closers []func()
}

// settings applies bootstrap defaults to zero config values.
type settings struct {
	opts            campusAPIOpts
	cacheTTL        time.Duration
	heroInterval    time.Duration
	heroSlides      []models.Slide
	refreshSchedule string
	assets          campusapi.Assets
}

func campusAPISettings(cfg *config.Config, swaggerPath string) settings {
	s := settings{
		opts: campusAPIOpts{
			grpcAddr:           cfg.CampusCars.GRPCAddr,
			httpAddr:           cfg.CampusCars.HTTPAddr,
			swaggerPath:        swaggerPath,
			topic:              cfg.Kafka.SlideChangedTopicName,
			consumerGroup:      cfg.CampusCars.KafkaConsumerGroup,
			corsOrigin:         cfg.CampusCars.CORSOrigin,
			rateLimitPerMinute: int64(cfg.CampusCars.RateLimitPerMinute),
		},
		cacheTTL:        time.Duration(cfg.CampusCars.CacheTTLSeconds) * time.Second,
		heroInterval:    time.Duration(cfg.Hero.IntervalMs) * time.Millisecond,
		heroSlides:      cfg.Hero.Slides,
		refreshSchedule: cfg.CampusCars.RefreshSchedule,
		assets: campusapi.Assets{
			BaseURL:     cfg.CampusCars.AssetBaseURL,
			Placeholder: cfg.CampusCars.PlaceholderImage,
		},
	}
	if s.opts.grpcAddr == "" {
		s.opts.grpcAddr = ":50051"
	}
	if s.opts.httpAddr == "" {
		s.opts.httpAddr = ":8080"
	}
	s.opts.grpcDialAddr = s.opts.grpcAddr
	if s.opts.topic == "" {
		s.opts.topic = "hero.slide.changed"
	}
	if s.opts.consumerGroup == "" {
		s.opts.consumerGroup = "campus-api"
	}
	if s.opts.corsOrigin == "" {
		s.opts.corsOrigin = "*"
	}
	if s.opts.rateLimitPerMinute <= 0 {
		s.opts.rateLimitPerMinute = 120
	}
	if s.cacheTTL <= 0 {
		s.cacheTTL = 5 * time.Minute
	}
	if s.heroInterval <= 0 {
		s.heroInterval = carousel.DefaultInterval
	}
	if len(s.heroSlides) == 0 {
		s.heroSlides = models.DefaultHeroSlides()
	}
	if s.refreshSchedule == "" {
		s.refreshSchedule = catalog.DefaultRefreshSchedule
	}
	if s.assets.BaseURL == "" {
		s.assets.BaseURL = "/static"
	}
	return s
}

// newCatalogSource picks the catalog backend named in config. The returned
// close func is never nil.
func newCatalogSource(ctx context.Context, cfg *config.Config) (catalog.Source, func(), error) {
	noop := func() {}
	switch cfg.CampusCars.CatalogSource {
	case "", "static":
		return catalog.StaticSource{}, noop, nil
	case "csv":
		if cfg.CampusCars.CatalogCSVPath == "" {
			return nil, noop, errors.New("catalog_csv_path is required for csv catalog")
		}
		return csvfile.New(cfg.CampusCars.CatalogCSVPath), noop, nil
	case "feed":
		if cfg.CampusCars.CatalogFeedURL == "" {
			return nil, noop, errors.New("catalog_feed_url is required for feed catalog")
		}
		return feedhttp.New(cfg.CampusCars.CatalogFeedURL, cfg.CampusCars.CatalogFeedToken), noop, nil
	case "postgres":
		st := mustOpenPostgresWithRetry(ctx, cfg.Database.ConnString(), 60*time.Second)
		seeded, err := st.SeedIfEmpty(ctx, catalog.Static())
		if err != nil {
			st.Close()
			return nil, noop, errors.Wrap(err, "seed vehicles")
		}
		if seeded {
			slog.Info("vehicles table seeded with sample inventory")
		}
		return st, st.Close, nil
	default:
		return nil, noop, errors.Errorf("unknown catalog source %q", cfg.CampusCars.CatalogSource)
	}
}

// initialCatalog falls back to the bundled inventory so the api can start
// while the configured source is down; the refresher retries on schedule.
func initialCatalog(ctx context.Context, src catalog.Source) *catalog.Holder {
	c, err := catalog.LoadFrom(ctx, src)
	if err == nil {
		return catalog.NewHolder(c, src.Name())
	}
	slog.Error("initial catalog load failed, serving sample inventory", "source", src.Name(), "error", err.Error())
	c, err = catalog.New(catalog.Static())
	if err != nil {
		panic(err)
	}
	return catalog.NewHolder(c, catalog.StaticSource{}.Name())
}

func mustBootstrapCampusAPI() *campusAPIApp {
	cfgPath := os.Getenv("configPath")
	if cfgPath == "" {
		panic("configPath env var is required")
	}
	swaggerPath := os.Getenv("swaggerPath")
	if swaggerPath == "" {
		panic("swaggerPath env var is required")
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}
	s := campusAPISettings(cfg, swaggerPath)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	app := &campusAPIApp{ctx: ctx, cancel: cancel, opts: s.opts}

	src, closeSrc, err := newCatalogSource(ctx, cfg)
	if err != nil {
		panic(err)
	}
	app.closers = append(app.closers, closeSrc)
	holder := initialCatalog(ctx, src)
	refresher := catalog.NewRefresher(holder, src).WithSchedule(s.refreshSchedule)

	// Без Redis: кэш выдачи выключен, hero живёт в памяти, лимит на процесс.
	var bc cache.BytesCache
	var limiter cache.RateLimiter = locallimit.New()
	if cfg.Redis.Enabled() {
		rc := rediscache.New(cfg.Redis.Addr())
		rl := rediscache.NewRateLimiter(cfg.Redis.Addr())
		bc, limiter = rc, rl
		app.closers = append(app.closers, func() { _ = rc.Close() }, func() { _ = rl.Close() })
	}

	heroSvc := hero.New(bc, s.cacheTTL, s.heroSlides, s.heroInterval)
	api := campusapi.New(listings.New(holder, bc, s.cacheTTL), heroSvc, refresher, holder, s.assets)

	brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
	consumer := kafka.NewConsumer(brokers, s.opts.topic, s.opts.consumerGroup)
	app.closers = append(app.closers, func() { _ = consumer.Close() })

	app.deps = campusAPIDeps{
		api:       api,
		hero:      heroSvc,
		limiter:   limiter,
		consumer:  consumer,
		refresher: refresher,
	}
	return app
}

func mustOpenPostgresWithRetry(ctx context.Context, connString string, wait time.Duration) *pgcatalog.Storage {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		st, err := pgcatalog.New(ctx, connString)
		if err == nil {
			return st
		}
		lastErr = err
		time.Sleep(1 * time.Second)
	}
	panic(fmt.Sprintf("postgres is not ready after %s: %v", wait, lastErr))
}

func (a *campusAPIApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *campusAPIApp) Run() error {
	return runCampusAPI(a.ctx, a.opts, a.deps)
}
