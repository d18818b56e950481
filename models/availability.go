package models

import "fmt"

// TimeRange is a half-open local-time interval within a single day,
// expressed in minutes from midnight (e.g., 540 for 9:00 AM).
type TimeRange struct {
	Start int `bson:"start" json:"start"`
	End   int `bson:"end" json:"end"`
}

// Valid reports whether the range is well formed and fits inside a day.
func (r TimeRange) Valid() bool {
	return r.Start >= 0 && r.End <= 24*60 && r.Start < r.End
}

// Overlaps reports whether two half-open ranges intersect.
// A shared boundary (r.End == other.Start) is not an overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start < other.End && other.Start < r.End
}

// Contains reports whether other lies fully inside r.
func (r TimeRange) Contains(other TimeRange) bool {
	return r.Start <= other.Start && other.End <= r.End
}

func (r TimeRange) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", r.Start/60, r.Start%60, r.End/60, r.End%60)
}

// WeeklyAvailability holds a provider's recurring working hours for one weekday.
// Breaks are subtracted from the working ranges when slots are generated.
type WeeklyAvailability struct {
	TenantID   string      `bson:"tenantId" json:"tenantId"`
	ProviderID string      `bson:"providerId" json:"providerId"`
	DayOfWeek  int         `bson:"dayOfWeek" json:"dayOfWeek"` // 0=Sunday .. 6=Saturday, matching time.Weekday
	TimeRanges []TimeRange `bson:"timeRanges" json:"timeRanges"`
	Breaks     []TimeRange `bson:"breaks,omitempty" json:"breaks,omitempty"`
}

// Validate enforces the schedule invariants: every range well formed,
// ranges of a day non-overlapping, and every break contained in some range.
func (w *WeeklyAvailability) Validate() error {
	if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
		return fmt.Errorf("dayOfWeek must be 0-6, got %d", w.DayOfWeek)
	}
	for _, r := range w.TimeRanges {
		if !r.Valid() {
			return fmt.Errorf("invalid time range %s", r)
		}
	}
	for i, a := range w.TimeRanges {
		for _, b := range w.TimeRanges[i+1:] {
			if a.Overlaps(b) {
				return fmt.Errorf("time ranges %s and %s overlap", a, b)
			}
		}
	}
	for _, br := range w.Breaks {
		if !br.Valid() {
			return fmt.Errorf("invalid break %s", br)
		}
		contained := false
		for _, r := range w.TimeRanges {
			if r.Contains(br) {
				contained = true
				break
			}
		}
		if !contained {
			return fmt.Errorf("break %s is not contained in any time range", br)
		}
	}
	return nil
}

// AvailabilityException overrides the weekly schedule for a single date.
// FullDayUnavailable wins over TimeRanges; otherwise TimeRanges fully
// replace that date's weekly schedule (breaks do not apply to exceptions).
type AvailabilityException struct {
	TenantID           string      `bson:"tenantId" json:"tenantId"`
	ProviderID         string      `bson:"providerId" json:"providerId"`
	Date               string      `bson:"date" json:"date"` // "2006-01-02" in the provider's timezone
	FullDayUnavailable bool        `bson:"fullDayUnavailable" json:"fullDayUnavailable"`
	TimeRanges         []TimeRange `bson:"timeRanges,omitempty" json:"timeRanges,omitempty"`
}
