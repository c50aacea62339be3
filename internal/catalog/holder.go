package catalog

import (
	"sync/atomic"
	"time"
)

// Snapshot is one loaded catalog generation. Version is local to the holder and
// only counts swaps; Fingerprint is derived from the records and is what shared
// caches key on.
type Snapshot struct {
	Catalog     *Catalog
	Version     uint64
	Fingerprint string
	Source      string
	LoadedAt    time.Time
}

// Holder publishes the current snapshot to readers without locking.
type Holder struct {
	cur     atomic.Pointer[Snapshot]
	version atomic.Uint64
}

func NewHolder(c *Catalog, source string) *Holder {
	h := &Holder{}
	h.Swap(c, source)
	return h
}

func (h *Holder) Current() *Snapshot {
	return h.cur.Load()
}

func (h *Holder) Swap(c *Catalog, source string) *Snapshot {
	s := &Snapshot{
		Catalog:     c,
		Version:     h.version.Add(1),
		Fingerprint: c.Fingerprint(),
		Source:      source,
		LoadedAt:    time.Now().UTC(),
	}
	h.cur.Store(s)
	return s
}
