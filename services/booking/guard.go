package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "chatbooking/database/repository/booking"
	"chatbooking/models"
	"chatbooking/utils"

	"go.uber.org/zap"
)

// SlotGuard serializes booking commits on the slot identity key
// (tenantId, providerId, start). The insert is conditional at the store
// level, then a read-back verifies no differently keyed active booking
// overlaps the window; a verification loss is compensated by deleting
// the just-inserted row.
type SlotGuard struct {
	Repo bookingRepo.BookingRepository
}

func NewSlotGuard(repo bookingRepo.BookingRepository) *SlotGuard {
	return &SlotGuard{Repo: repo}
}

// TryCommit attempts to persist the booking. Exactly one of two concurrent
// commits for the same window succeeds; the loser gets SlotUnavailableError
// and should re-query availability for a different slot.
func (g *SlotGuard) TryCommit(ctx context.Context, b *models.Booking) error {
	if err := g.Repo.InsertIfAbsent(ctx, b); err != nil {
		if errors.Is(err, bookingRepo.ErrDuplicateKey) {
			return models.NewSlotUnavailableError(b.Start, b.End)
		}
		return fmt.Errorf("booking commit failed: %w", err)
	}

	// The identity key only covers equal start times. Overlapping windows
	// with different starts (distinct service durations) pass the insert,
	// so re-read the window and keep only the earliest created row.
	overlapping, err := g.Repo.ListOverlapping(ctx, b.TenantID, b.ProviderID, b.Start, b.End)
	if err != nil {
		g.compensate(b)
		return fmt.Errorf("booking overlap verification failed: %w", err)
	}
	for i := range overlapping {
		other := &overlapping[i]
		if other.ID == b.ID {
			continue
		}
		if other.CreatedAt.Before(b.CreatedAt) || (other.CreatedAt.Equal(b.CreatedAt) && other.ID < b.ID) {
			g.compensate(b)
			return models.NewSlotUnavailableError(b.Start, b.End)
		}
	}
	return nil
}

// compensate removes the just-inserted booking. It deliberately runs on a
// fresh context so the cleanup still happens when the caller's context is
// already cancelled.
func (g *SlotGuard) compensate(b *models.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := g.Repo.Delete(ctx, b.TenantID, b.ID); err != nil {
		// An orphaned row keeps blocking the slot until the pending sweep
		// reclaims it, so this is logged loudly.
		utils.GetLogger().Error("failed to compensate losing booking commit",
			zap.String("tenantId", b.TenantID),
			zap.String("bookingId", b.ID),
			zap.Error(err))
	}
}
