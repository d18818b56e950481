package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingNoShow    BookingStatus = "NO_SHOW"
)

// CustomerInfo carries the contact details collected during booking.
type CustomerInfo struct {
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
}

// Booking represents a reservation of a provider's time window for a service.
// Bookings are never deleted; they only move through status transitions.
type Booking struct {
	ID             string        `bson:"id" json:"id"`
	TenantID       string        `bson:"tenantId" json:"tenantId"`
	ServiceID      string        `bson:"serviceId" json:"serviceId"`
	ProviderID     string        `bson:"providerId" json:"providerId"`
	Start          time.Time     `bson:"start" json:"start"`
	End            time.Time     `bson:"end" json:"end"`
	Status         BookingStatus `bson:"status" json:"status"`
	Active         bool          `bson:"active" json:"-"` // true while status is PENDING or CONFIRMED; backs the slot identity index
	Customer       CustomerInfo  `bson:"customer" json:"customer"`
	ConversationID string        `bson:"conversationId,omitempty" json:"conversationId,omitempty"`
	Notes          string        `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt      time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// IsActive reports whether the booking still reserves its window.
func (b *Booking) IsActive() bool {
	return b.Status == BookingPending || b.Status == BookingConfirmed
}

// OverlapsWindow reports half-open interval intersection with [start, end).
func (b *Booking) OverlapsWindow(start, end time.Time) bool {
	return b.Start.Before(end) && start.Before(b.End)
}
