package models

import "time"

// EventType identifies a domain event emitted by the booking lifecycle.
type EventType string

const (
	EventBookingCreated   EventType = "BookingCreated"
	EventBookingConfirmed EventType = "BookingConfirmed"
	EventBookingCancelled EventType = "BookingCancelled"
	EventBookingNoShow    EventType = "BookingNoShow"
)

// DomainEvent is published to the event sink after a lifecycle change.
// Downstream consumers (notifications, metrics) subscribe out of band;
// the core fires and forgets.
type DomainEvent struct {
	Type       EventType `json:"type"`
	TenantID   string    `json:"tenantId"`
	BookingID  string    `json:"bookingId"`
	ProviderID string    `json:"providerId"`
	ServiceID  string    `json:"serviceId"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	OccurredAt time.Time `json:"occurredAt"`
}
