package models

import "time"

// Slot is a computed candidate booking window. Slots are never persisted;
// they are regenerated on every availability query.
type Slot struct {
	ProviderID  string    `json:"providerId"`
	ServiceID   string    `json:"serviceId"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	IsAvailable bool      `json:"isAvailable"`
}

// OverlapsWindow reports whether the slot intersects the half-open
// window [start, end). Touching boundaries do not count.
func (s Slot) OverlapsWindow(start, end time.Time) bool {
	return s.Start.Before(end) && start.Before(s.End)
}
