package catalog

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

const DefaultRefreshSchedule = "@every 10m"

// Schedules accept an optional seconds field and descriptors like @hourly.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Refresher reloads the catalog from a Source on a cron schedule or on demand.
// A failed reload keeps the previous snapshot.
type Refresher struct {
	holder   *Holder
	src      Source
	schedule string

	triggerCh chan struct{}

	startedAtUnixNano int64
	lastRunUnixNano   atomic.Int64
	totalRuns         atomic.Int64
	totalErrors       atomic.Int64
	lastErrorMu       sync.Mutex
	lastError         string
}

func NewRefresher(h *Holder, src Source) *Refresher {
	return &Refresher{
		holder:            h,
		src:               src,
		schedule:          DefaultRefreshSchedule,
		triggerCh:         make(chan struct{}, 1),
		startedAtUnixNano: time.Now().UTC().UnixNano(),
	}
}

func (r *Refresher) WithSchedule(schedule string) *Refresher {
	if schedule != "" {
		r.schedule = schedule
	}
	return r
}

// Trigger asks for a reload as soon as possible (non-blocking, coalesced).
func (r *Refresher) Trigger() {
	select {
	case r.triggerCh <- struct{}{}:
	default:
	}
}

// RefreshOnce loads, validates and swaps in a new snapshot.
func (r *Refresher) RefreshOnce(ctx context.Context) error {
	r.lastRunUnixNano.Store(time.Now().UTC().UnixNano())
	r.totalRuns.Add(1)

	c, err := LoadFrom(ctx, r.src)
	if err != nil {
		r.totalErrors.Add(1)
		r.lastErrorMu.Lock()
		r.lastError = err.Error()
		r.lastErrorMu.Unlock()
		return err
	}
	snap := r.holder.Swap(c, r.src.Name())
	slog.Info("catalog refreshed", "source", snap.Source, "version", snap.Version, "vehicles", c.Len())
	return nil
}

// Run drives scheduled and triggered reloads until ctx is done.
func (r *Refresher) Run(ctx context.Context) error {
	c := cron.New(cron.WithParser(cronParser), cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(r.schedule, r.Trigger); err != nil {
		return errors.Wrapf(err, "catalog refresh schedule %q", r.schedule)
	}
	c.Start()
	defer func() { <-c.Stop().Done() }()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.triggerCh:
			if err := r.RefreshOnce(ctx); err != nil {
				slog.Error("catalog refresh", "source", r.src.Name(), "error", err.Error())
			}
		}
	}
}

type RefresherStats struct {
	Source      string     `json:"source"`
	Schedule    string     `json:"schedule"`
	Version     uint64     `json:"version"`
	Fingerprint string     `json:"fingerprint"`
	Vehicles    int        `json:"vehicles"`
	StartedAt   time.Time  `json:"startedAt"`
	LoadedAt    time.Time  `json:"loadedAt"`
	LastRunAt   *time.Time `json:"lastRunAt,omitempty"`
	TotalRuns   int64      `json:"totalRuns"`
	TotalErrors int64      `json:"totalErrors"`
	LastError   string     `json:"lastError,omitempty"`
}

func (r *Refresher) Stats() RefresherStats {
	st := RefresherStats{
		Source:      r.src.Name(),
		Schedule:    r.schedule,
		StartedAt:   time.Unix(0, r.startedAtUnixNano).UTC(),
		TotalRuns:   r.totalRuns.Load(),
		TotalErrors: r.totalErrors.Load(),
	}
	if snap := r.holder.Current(); snap != nil {
		st.Version = snap.Version
		st.Fingerprint = snap.Fingerprint
		st.Vehicles = snap.Catalog.Len()
		st.LoadedAt = snap.LoadedAt
	}
	if n := r.lastRunUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastRunAt = &t
	}
	r.lastErrorMu.Lock()
	st.LastError = r.lastError
	r.lastErrorMu.Unlock()
	return st
}
