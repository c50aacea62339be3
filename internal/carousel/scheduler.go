package carousel

import (
	"sync"
	"time"
)

// Timer is an owned handle to a periodic callback. Stop is idempotent.
type Timer interface {
	Stop()
}

// Scheduler starts periodic callbacks. The callback must not run synchronously
// inside Every.
type Scheduler interface {
	Every(d time.Duration, fn func()) Timer
}

// TickerScheduler runs callbacks from a time.Ticker goroutine.
type TickerScheduler struct{}

func (TickerScheduler) Every(d time.Duration, fn func()) Timer {
	t := &tickerTimer{
		ticker: time.NewTicker(d),
		done:   make(chan struct{}),
	}
	go t.loop(fn)
	return t
}

type tickerTimer struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *tickerTimer) loop(fn func()) {
	for {
		select {
		case <-t.done:
			return
		case <-t.ticker.C:
			fn()
		}
	}
}

func (t *tickerTimer) Stop() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
}
