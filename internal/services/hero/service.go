package hero

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/BearBump/CampusCars/internal/broker/messages"
	"github.com/BearBump/CampusCars/internal/cache"
	"github.com/BearBump/CampusCars/internal/carousel"
	"github.com/BearBump/CampusCars/internal/models"
	"github.com/pkg/errors"
)

const currentKey = "hero:current"

var ErrBadMessage = errors.New("bad slide_changed message")

// State is the hero carousel as the homepage renders it.
type State struct {
	Showroom   string         `json:"showroom,omitempty"`
	Epoch      string         `json:"epoch,omitempty"`
	Seq        uint64         `json:"seq"`
	Index      *int           `json:"index"`
	Count      int            `json:"count"`
	Paused     bool           `json:"paused"`
	Phase      carousel.Phase `json:"phase"`
	IntervalMs int64          `json:"intervalMs"`
	Slides     []models.Slide `json:"slides"`
	Active     []bool         `json:"active"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	// Live is false while no showroom-worker update has been seen.
	Live bool `json:"live"`
}

// Service projects showroom-worker slide changes for campus-api. Several api
// replicas share one consumer group, so the latest state lives in the cache
// and memory only covers a missing or failing cache.
type Service struct {
	cache    cache.BytesCache
	cacheTTL time.Duration

	fallback []models.Slide
	interval time.Duration

	mu  sync.RWMutex
	cur *State
}

func New(c cache.BytesCache, cacheTTL time.Duration, fallback []models.Slide, interval time.Duration) *Service {
	if interval <= 0 {
		interval = carousel.DefaultInterval
	}
	return &Service{cache: c, cacheTTL: cacheTTL, fallback: fallback, interval: interval}
}

func (s *Service) ApplySlideChanged(ctx context.Context, msg messages.SlideChanged) error {
	if msg.Count != len(msg.Slides) {
		return errors.Wrapf(ErrBadMessage, "count %d, slides %d", msg.Count, len(msg.Slides))
	}
	if msg.Index == nil && msg.Count > 0 {
		return errors.Wrap(ErrBadMessage, "index is required")
	}
	if msg.Index != nil && (*msg.Index < 0 || *msg.Index >= msg.Count) {
		return errors.Wrapf(ErrBadMessage, "index %d out of range", *msg.Index)
	}
	if msg.ChangedAt.IsZero() {
		msg.ChangedAt = time.Now().UTC()
	}

	st := &State{
		Showroom:   msg.Showroom,
		Epoch:      msg.Epoch,
		Seq:        msg.Seq,
		Index:      msg.Index,
		Count:      msg.Count,
		Paused:     msg.Paused,
		Phase:      carousel.PhaseOf(msg.Count, msg.Paused),
		IntervalMs: msg.IntervalMs,
		Slides:     msg.Slides,
		Active:     active(msg.Count, msg.Index),
		UpdatedAt:  msg.ChangedAt,
		Live:       true,
	}
	if st.Slides == nil {
		st.Slides = []models.Slide{}
	}

	s.mu.Lock()
	if s.cur != nil && !newer(st, s.cur) {
		s.mu.Unlock()
		return nil
	}
	s.cur = st
	s.mu.Unlock()

	if s.cache != nil && s.cacheTTL > 0 {
		b, _ := json.Marshal(st)
		_ = s.cache.Set(ctx, currentKey, b, s.cacheTTL)
	}
	return nil
}

// Current returns the latest known state, falling back to the configured
// slides at index 0.
func (s *Service) Current(ctx context.Context) State {
	if s.cache != nil && s.cacheTTL > 0 {
		if b, ok, err := s.cache.Get(ctx, currentKey); err == nil && ok {
			var st State
			if json.Unmarshal(b, &st) == nil && st.Slides != nil {
				return st
			}
		}
	}

	s.mu.RLock()
	cur := s.cur
	s.mu.RUnlock()
	if cur != nil {
		return *cur
	}
	return s.fallbackState()
}

func (s *Service) fallbackState() State {
	n := len(s.fallback)
	st := State{
		Count:      n,
		Phase:      carousel.PhaseOf(n, false),
		IntervalMs: s.interval.Milliseconds(),
		Slides:     append([]models.Slide{}, s.fallback...),
	}
	if n > 0 {
		zero := 0
		st.Index = &zero
	}
	st.Active = active(n, st.Index)
	return st
}

// newer reports whether st supersedes cur. Kafka can deliver an old event after
// a new one (producer retries), and the worker publishes with the wall clock,
// so within one carousel instance only Seq decides.
func newer(st, cur *State) bool {
	if st.Epoch != "" && st.Epoch == cur.Epoch && st.Showroom == cur.Showroom {
		return st.Seq > cur.Seq
	}
	return !st.UpdatedAt.Before(cur.UpdatedAt)
}

func active(n int, idx *int) []bool {
	out := make([]bool, n)
	if idx != nil && *idx >= 0 && *idx < n {
		out[*idx] = true
	}
	return out
}
