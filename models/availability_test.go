package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeRangeValid(t *testing.T) {
	assert.True(t, TimeRange{Start: 540, End: 720}.Valid())
	assert.False(t, TimeRange{Start: 720, End: 540}.Valid())
	assert.False(t, TimeRange{Start: 540, End: 540}.Valid())
	assert.False(t, TimeRange{Start: -10, End: 60}.Valid())
	assert.False(t, TimeRange{Start: 1400, End: 1500}.Valid())
}

func TestTimeRangeOverlaps(t *testing.T) {
	morning := TimeRange{Start: 540, End: 720}

	assert.True(t, morning.Overlaps(TimeRange{Start: 600, End: 660}))
	assert.True(t, morning.Overlaps(TimeRange{Start: 700, End: 780}))
	// A shared boundary is not an overlap.
	assert.False(t, morning.Overlaps(TimeRange{Start: 720, End: 780}))
	assert.False(t, morning.Overlaps(TimeRange{Start: 480, End: 540}))
}

func TestWeeklyAvailabilityValidate(t *testing.T) {
	valid := WeeklyAvailability{
		TenantID:   "t1",
		ProviderID: "p1",
		DayOfWeek:  2,
		TimeRanges: []TimeRange{{Start: 540, End: 720}, {Start: 780, End: 1020}},
		Breaks:     []TimeRange{{Start: 600, End: 630}},
	}
	require.NoError(t, valid.Validate())

	badDay := valid
	badDay.DayOfWeek = 7
	assert.Error(t, badDay.Validate())

	overlapping := valid
	overlapping.TimeRanges = []TimeRange{{Start: 540, End: 720}, {Start: 700, End: 800}}
	overlapping.Breaks = nil
	assert.Error(t, overlapping.Validate())

	strayBreak := valid
	strayBreak.Breaks = []TimeRange{{Start: 730, End: 760}}
	assert.Error(t, strayBreak.Validate())

	badRange := valid
	badRange.TimeRanges = []TimeRange{{Start: 720, End: 540}}
	badRange.Breaks = nil
	assert.Error(t, badRange.Validate())
}
