package messages

import (
	"time"

	"github.com/BearBump/CampusCars/internal/models"
)

// SlideChanged is published by showroom-worker every time the hero carousel
// changes. It carries the full state, slides included, so a consumer needs only
// the latest message. Within one Epoch a larger Seq is a newer state; Seq
// starts over when the worker restarts with a new Epoch.
type SlideChanged struct {
	EventID   string    `json:"event_id"`
	Showroom  string    `json:"showroom"`
	Epoch     string    `json:"epoch,omitempty"`
	Seq       uint64    `json:"seq"`
	Index     *int      `json:"index"`
	Count     int       `json:"count"`
	Paused    bool      `json:"paused"`
	Phase     string    `json:"phase"`
	Reason    string    `json:"reason"`
	ChangedAt time.Time `json:"changed_at"`

	IntervalMs int64          `json:"interval_ms"`
	Slides     []models.Slide `json:"slides"`
}
