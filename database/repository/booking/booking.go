package bookingRepo

import (
	"context"
	"errors"
	"time"

	"chatbooking/models"
)

// ErrDuplicateKey reports that an active booking already exists for the
// same (tenantId, providerId, start) slot identity key.
var ErrDuplicateKey = errors.New("active booking already exists for this provider and start")

// BookingRepository defines the persistence operations the booking engine
// relies on. The conditional insert plus the status compare-and-set are the
// only write primitives; bookings are never deleted except to compensate a
// losing conditional insert.
type BookingRepository interface {
	// InsertIfAbsent atomically inserts the booking unless an active booking
	// with the same (tenantId, providerId, start) exists; then ErrDuplicateKey.
	InsertIfAbsent(ctx context.Context, b *models.Booking) error
	// Delete removes a booking row. Used only to compensate a conditional
	// insert that lost the post-insert overlap verification.
	Delete(ctx context.Context, tenantID, bookingID string) error
	// GetByID returns the booking or nil when absent (or owned by another tenant).
	GetByID(ctx context.Context, tenantID, bookingID string) (*models.Booking, error)
	// ListOverlapping returns active (PENDING/CONFIRMED) bookings of the
	// provider whose [start,end) window intersects [from,to).
	ListOverlapping(ctx context.Context, tenantID, providerID string, from, to time.Time) ([]models.Booking, error)
	// ListByProvider returns all bookings of a provider starting within [from,to).
	ListByProvider(ctx context.Context, tenantID, providerID string, from, to time.Time) ([]models.Booking, error)
	// ListByCustomerEmail returns a customer's bookings for the tenant.
	ListByCustomerEmail(ctx context.Context, tenantID, email string) ([]models.Booking, error)
	// GetByConversation returns the booking linked to a conversation, or nil.
	GetByConversation(ctx context.Context, tenantID, conversationID string) (*models.Booking, error)
	// UpdateStatusIfCurrent flips the status only if the stored status still
	// matches expected, also maintaining the active flag. Returns false when
	// the optimistic check failed (row missing or status moved).
	UpdateStatusIfCurrent(ctx context.Context, tenantID, bookingID string, expected, next models.BookingStatus) (bool, error)
	// ListExpiredPending returns PENDING bookings created before the cutoff,
	// across all tenants; consumed by the reconciliation sweep.
	ListExpiredPending(ctx context.Context, createdBefore time.Time) ([]models.Booking, error)
}
