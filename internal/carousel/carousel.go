// Package carousel implements the auto-advancing slide rotation behind the
// homepage hero and showroom displays.
package carousel

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/BearBump/CampusCars/internal/models"
)

const DefaultInterval = 4500 * time.Millisecond

type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseStatic         Phase = "static"
	PhaseRotating       Phase = "rotating"
	PhaseRotatingPaused Phase = "rotating_paused"
)

// PhaseOf classifies a rotation by slide count and pause flag.
func PhaseOf(count int, paused bool) Phase {
	switch {
	case count == 0:
		return PhaseIdle
	case count == 1:
		return PhaseStatic
	case paused:
		return PhaseRotatingPaused
	default:
		return PhaseRotating
	}
}

// Reason tells observers what caused a change.
type Reason string

const (
	ReasonTick     Reason = "tick"
	ReasonNext     Reason = "next"
	ReasonPrev     Reason = "prev"
	ReasonGoTo     Reason = "goto"
	ReasonSlides   Reason = "slides"
	ReasonPause    Reason = "pause"
	ReasonResume   Reason = "resume"
	ReasonInterval Reason = "interval"
)

type Change struct {
	Reason Reason
	State  Snapshot
}

type Observer func(Change)

// Snapshot is a copy of the carousel state for rendering. Index is nil when
// there are no slides. Seq is the number of the last change; observers may run
// in a different order than the changes happened, Seq does not.
type Snapshot struct {
	Seq        uint64         `json:"seq"`
	Index      *int           `json:"index"`
	Count      int            `json:"count"`
	Paused     bool           `json:"paused"`
	Phase      Phase          `json:"phase"`
	IntervalMs int64          `json:"intervalMs"`
	Slides     []models.Slide `json:"slides"`
	Active     []bool         `json:"active"`
}

type Option func(*Carousel)

func WithInterval(d time.Duration) Option {
	return func(c *Carousel) {
		if d > 0 {
			c.interval = d
		}
	}
}

func WithScheduler(s Scheduler) Option {
	return func(c *Carousel) {
		if s != nil {
			c.sched = s
		}
	}
}

func WithObserver(fn Observer) Option {
	return func(c *Carousel) {
		if fn != nil {
			c.observers = append(c.observers, fn)
		}
	}
}

// Carousel owns the current slide index and at most one auto-advance timer.
// The timer runs only while there is more than one slide and the carousel is
// not paused. It is safe for concurrent use. Observers are called without the
// lock held, so concurrent changes can reach them out of order; they must
// order by State.Seq.
type Carousel struct {
	mu sync.Mutex

	sched    Scheduler
	interval time.Duration

	slides []models.Slide
	index  int
	paused bool
	closed bool

	// seq is bumped under mu for every change observers hear about.
	seq uint64

	timer Timer
	// gen identifies the live timer; callbacks from older timers are dropped.
	gen uint64

	observers []Observer
}

func New(slides []models.Slide, opts ...Option) *Carousel {
	c := &Carousel{
		sched:    TickerScheduler{},
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.mu.Lock()
	c.slides = usable(slides)
	c.reschedule()
	c.mu.Unlock()
	return c
}

func usable(slides []models.Slide) []models.Slide {
	out := make([]models.Slide, 0, len(slides))
	for _, s := range slides {
		if strings.TrimSpace(s.Image) == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// OnChange registers an observer for index, pause, interval and slide changes.
func (c *Carousel) OnChange(fn Observer) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

// reschedule is the only place timers are started or stopped. Callers hold mu.
func (c *Carousel) reschedule() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
	if c.closed || c.paused || len(c.slides) <= 1 {
		return
	}
	gen := c.gen
	c.timer = c.sched.Every(c.interval, func() { c.fire(gen) })
}

func (c *Carousel) fire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.advanceAndNotify(ReasonTick)
}

// Tick advances one slide the way the timer does. It does nothing unless the
// carousel is rotating.
func (c *Carousel) Tick() bool {
	c.mu.Lock()
	return c.advanceAndNotify(ReasonTick)
}

// advanceAndNotify is entered with mu held and releases it.
func (c *Carousel) advanceAndNotify(reason Reason) bool {
	if c.closed || c.paused || len(c.slides) <= 1 {
		c.mu.Unlock()
		return false
	}
	c.index = (c.index + 1) % len(c.slides)
	c.unlockAndNotify(reason)
	return true
}

func (c *Carousel) unlockAndNotify(reason Reason) {
	c.seq++
	ch := Change{Reason: reason, State: c.snapshot()}
	obs := slices.Clone(c.observers)
	c.mu.Unlock()
	for _, fn := range obs {
		fn(ch)
	}
}

// Next moves forward with wraparound and restarts the auto-advance phase.
func (c *Carousel) Next() bool {
	return c.step(1, ReasonNext)
}

// Prev moves backward with wraparound and restarts the auto-advance phase.
func (c *Carousel) Prev() bool {
	return c.step(-1, ReasonPrev)
}

func (c *Carousel) step(delta int, reason Reason) bool {
	c.mu.Lock()
	n := len(c.slides)
	if c.closed || n <= 1 {
		c.mu.Unlock()
		return false
	}
	c.index = (c.index + delta + n) % n
	c.reschedule()
	c.unlockAndNotify(reason)
	return true
}

// GoTo jumps to slide i. Out-of-range requests are ignored and report false.
func (c *Carousel) GoTo(i int) bool {
	c.mu.Lock()
	if c.closed || i < 0 || i >= len(c.slides) {
		c.mu.Unlock()
		return false
	}
	changed := c.index != i
	c.index = i
	c.reschedule()
	if !changed {
		c.mu.Unlock()
		return true
	}
	c.unlockAndNotify(ReasonGoTo)
	return true
}

func (c *Carousel) Pause() bool {
	return c.setPaused(true, ReasonPause)
}

func (c *Carousel) Resume() bool {
	return c.setPaused(false, ReasonResume)
}

func (c *Carousel) setPaused(paused bool, reason Reason) bool {
	c.mu.Lock()
	if c.closed || c.paused == paused {
		c.mu.Unlock()
		return false
	}
	c.paused = paused
	c.reschedule()
	c.unlockAndNotify(reason)
	return true
}

// SetSlides replaces the rotation. Slides without an image are dropped and the
// index falls back to 0 when it no longer fits.
func (c *Carousel) SetSlides(slides []models.Slide) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.slides = usable(slides)
	if c.index >= len(c.slides) {
		c.index = 0
	}
	c.reschedule()
	c.unlockAndNotify(ReasonSlides)
}

// SetInterval changes the auto-advance period; d <= 0 restores the default.
func (c *Carousel) SetInterval(d time.Duration) {
	if d <= 0 {
		d = DefaultInterval
	}
	c.mu.Lock()
	if c.closed || c.interval == d {
		c.mu.Unlock()
		return
	}
	c.interval = d
	c.reschedule()
	c.unlockAndNotify(ReasonInterval)
}

// HandleKey maps ArrowLeft and ArrowRight to Prev and Next.
func (c *Carousel) HandleKey(key string) bool {
	switch key {
	case "ArrowLeft":
		return c.Prev()
	case "ArrowRight":
		return c.Next()
	}
	return false
}

// Close cancels the timer. Later calls on the carousel are ignored.
func (c *Carousel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.reschedule()
}

func (c *Carousel) Index() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.slides) == 0 {
		return 0, false
	}
	return c.index, true
}

func (c *Carousel) IsActive(i int) bool {
	idx, ok := c.Index()
	return ok && idx == i
}

func (c *Carousel) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Carousel) snapshot() Snapshot {
	n := len(c.slides)
	s := Snapshot{
		Seq:        c.seq,
		Count:      n,
		Paused:     c.paused,
		Phase:      PhaseOf(n, c.paused),
		IntervalMs: c.interval.Milliseconds(),
		Slides:     slices.Clone(c.slides),
		Active:     make([]bool, n),
	}
	if s.Slides == nil {
		s.Slides = []models.Slide{}
	}
	if n > 0 {
		idx := c.index
		s.Index = &idx
		s.Active[idx] = true
	}
	return s
}
