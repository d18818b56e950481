package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"chatbooking/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guardBooking(id string, start time.Time, createdAt time.Time) *models.Booking {
	return &models.Booking{
		ID:         id,
		TenantID:   testTenant,
		ServiceID:  testService,
		ProviderID: testProvider,
		Start:      start,
		End:        start.Add(30 * time.Minute),
		Status:     models.BookingPending,
		Active:     true,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

func TestTryCommitSameStartExactlyOneWins(t *testing.T) {
	repo := newMemBookingRepo()
	guard := NewSlotGuard(repo)
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	const attempts = 8
	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b := guardBooking(string(rune('a'+i)), start, now)
			results[i] = guard.TryCommit(context.Background(), b)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		} else {
			assert.True(t, models.IsSlotUnavailable(err))
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, repo.count())
}

func TestTryCommitOverlappingStartLoserIsCompensated(t *testing.T) {
	repo := newMemBookingRepo()
	guard := NewSlotGuard(repo)

	earlier := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	first := guardBooking("first", earlier, time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	require.NoError(t, guard.TryCommit(context.Background(), first))

	// Different start, overlapping window: passes the conditional insert
	// but loses the read-back verification.
	second := guardBooking("second", earlier.Add(15*time.Minute), time.Date(2026, 8, 30, 12, 0, 1, 0, time.UTC))
	err := guard.TryCommit(context.Background(), second)
	assert.True(t, models.IsSlotUnavailable(err))

	assert.Equal(t, 1, repo.count())
	kept, _ := repo.GetByID(context.Background(), testTenant, "first")
	assert.NotNil(t, kept)
	gone, _ := repo.GetByID(context.Background(), testTenant, "second")
	assert.Nil(t, gone)
}

func TestTryCommitCompensatesWithCancelledContext(t *testing.T) {
	repo := newMemBookingRepo()
	guard := NewSlotGuard(repo)

	earlier := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	first := guardBooking("first", earlier, time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	require.NoError(t, guard.TryCommit(context.Background(), first))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	second := guardBooking("second", earlier.Add(15*time.Minute), time.Date(2026, 8, 30, 12, 0, 1, 0, time.UTC))
	err := guard.TryCommit(ctx, second)
	assert.True(t, models.IsSlotUnavailable(err))

	// The cleanup ran on its own context despite the cancelled caller.
	gone, _ := repo.GetByID(context.Background(), testTenant, "second")
	assert.Nil(t, gone)
}

func TestTryCommitDisjointWindowsBothSucceed(t *testing.T) {
	repo := newMemBookingRepo()
	guard := NewSlotGuard(repo)
	now := time.Now().UTC()

	a := guardBooking("a", time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC), now)
	b := guardBooking("b", time.Date(2026, 9, 1, 9, 30, 0, 0, time.UTC), now.Add(time.Second))
	require.NoError(t, guard.TryCommit(context.Background(), a))
	require.NoError(t, guard.TryCommit(context.Background(), b))
	assert.Equal(t, 2, repo.count())
}
