package rotator

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BearBump/CampusCars/internal/broker/messages"
	"github.com/BearBump/CampusCars/internal/carousel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ReasonStart marks the state published when Run begins.
const ReasonStart carousel.Reason = "start"

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// Rotator drives one showroom carousel and publishes every change to Kafka.
// Carousel observers only enqueue; publishing happens in Run. Changes can be
// enqueued out of order, so Run publishes only those with a Seq newer than the
// last one it handled.
type Rotator struct {
	car      *carousel.Carousel
	producer Producer
	topic    string
	showroom string
	// epoch tells consumers which carousel instance a Seq belongs to.
	epoch string

	changes      chan carousel.Change
	retries      int
	retryBackoff time.Duration

	running atomic.Bool

	startedAtUnixNano   int64
	lastPublishUnixNano atomic.Int64
	totalChanges        atomic.Int64
	totalPublished      atomic.Int64
	totalErrors         atomic.Int64
	dropped             atomic.Int64
	stale               atomic.Int64
	lastErrorMu         sync.Mutex
	lastError           string
}

func New(car *carousel.Carousel, producer Producer, topic, showroom string) *Rotator {
	r := &Rotator{
		car:               car,
		producer:          producer,
		topic:             topic,
		showroom:          showroom,
		epoch:             uuid.NewString(),
		changes:           make(chan carousel.Change, 64),
		retries:           10,
		retryBackoff:      150 * time.Millisecond,
		startedAtUnixNano: time.Now().UTC().UnixNano(),
	}
	car.OnChange(r.enqueue)
	return r
}

func (r *Rotator) WithRetry(attempts int, backoff time.Duration) *Rotator {
	if attempts > 0 {
		r.retries = attempts
	}
	if backoff > 0 {
		r.retryBackoff = backoff
	}
	return r
}

func (r *Rotator) Carousel() *carousel.Carousel {
	return r.car
}

func (r *Rotator) Running() bool {
	return r.running.Load()
}

func (r *Rotator) enqueue(ch carousel.Change) {
	r.totalChanges.Add(1)
	select {
	case r.changes <- ch:
	default:
		// Очередь переполнена (Kafka недоступна долго): теряем промежуточное
		// состояние, следующее событие всё равно несёт полное.
		r.dropped.Add(1)
	}
}

// Run publishes the current state, then every later change, until ctx is done.
// Changes queued before Run are already covered by the start state. On return
// the carousel is closed and its timer cancelled.
func (r *Rotator) Run(ctx context.Context) error {
	defer r.car.Close()
	start := carousel.Change{Reason: ReasonStart, State: r.car.Snapshot()}
	r.running.Store(true)
	defer r.running.Store(false)

	r.handle(ctx, start)
	last := start.State.Seq
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ch := <-r.changes:
			if ch.State.Seq <= last {
				r.stale.Add(1)
				slog.Debug("skip stale slide change", "showroom", r.showroom, "reason", string(ch.Reason), "seq", ch.State.Seq, "last", last)
				continue
			}
			last = ch.State.Seq
			r.handle(ctx, ch)
		}
	}
}

func (r *Rotator) handle(ctx context.Context, ch carousel.Change) {
	if err := r.publish(ctx, ch); err != nil {
		if ctx.Err() != nil {
			return
		}
		r.totalErrors.Add(1)
		r.lastErrorMu.Lock()
		r.lastError = err.Error()
		r.lastErrorMu.Unlock()
		slog.Error("publish slide change", "showroom", r.showroom, "reason", string(ch.Reason), "error", err.Error())
	}
}

func (r *Rotator) publish(ctx context.Context, ch carousel.Change) error {
	if r.producer == nil {
		return nil
	}
	msg := messages.SlideChanged{
		EventID:    uuid.NewString(),
		Showroom:   r.showroom,
		Epoch:      r.epoch,
		Seq:        ch.State.Seq,
		Index:      ch.State.Index,
		Count:      ch.State.Count,
		Paused:     ch.State.Paused,
		Phase:      string(ch.State.Phase),
		Reason:     string(ch.Reason),
		ChangedAt:  time.Now().UTC(),
		IntervalMs: ch.State.IntervalMs,
		Slides:     ch.State.Slides,
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "marshal slide_changed")
	}

	// Kafka может быть не готова сразу после старта docker compose, поэтому retry.
	var pubErr error
	for i := 0; i < r.retries; i++ {
		if pubErr = r.producer.Publish(ctx, r.topic, []byte(r.showroom), b); pubErr == nil {
			r.totalPublished.Add(1)
			r.lastPublishUnixNano.Store(time.Now().UTC().UnixNano())
			return nil
		}
		if i == r.retries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(i+1) * r.retryBackoff):
		}
	}
	return pubErr
}

type Stats struct {
	Showroom       string            `json:"showroom"`
	Topic          string            `json:"topic"`
	Running        bool              `json:"running"`
	StartedAt      time.Time         `json:"startedAt"`
	LastPublishAt  *time.Time        `json:"lastPublishAt,omitempty"`
	TotalChanges   int64             `json:"totalChanges"`
	TotalPublished int64             `json:"totalPublished"`
	TotalErrors    int64             `json:"totalErrors"`
	Dropped        int64             `json:"dropped"`
	Stale          int64             `json:"stale"`
	Pending        int               `json:"pending"`
	LastError      string            `json:"lastError,omitempty"`
	Carousel       carousel.Snapshot `json:"carousel"`
}

func (r *Rotator) Stats() Stats {
	st := Stats{
		Showroom:       r.showroom,
		Topic:          r.topic,
		Running:        r.running.Load(),
		StartedAt:      time.Unix(0, r.startedAtUnixNano).UTC(),
		TotalChanges:   r.totalChanges.Load(),
		TotalPublished: r.totalPublished.Load(),
		TotalErrors:    r.totalErrors.Load(),
		Dropped:        r.dropped.Load(),
		Stale:          r.stale.Load(),
		Pending:        len(r.changes),
		Carousel:       r.car.Snapshot(),
	}
	if n := r.lastPublishUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastPublishAt = &t
	}
	r.lastErrorMu.Lock()
	st.LastError = r.lastError
	r.lastErrorMu.Unlock()
	return st
}
