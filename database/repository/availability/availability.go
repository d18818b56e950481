package availabilityRepo

import (
	"context"

	"chatbooking/models"
)

// AvailabilityRepository persists provider schedules: the weekly recurring
// template plus per-date exceptions that override it.
type AvailabilityRepository interface {
	// GetWeekly returns the provider's weekly schedule, at most one entry
	// per weekday.
	GetWeekly(ctx context.Context, tenantID, providerID string) ([]models.WeeklyAvailability, error)
	// SetWeekly upserts the schedule for one (provider, weekday).
	SetWeekly(ctx context.Context, w *models.WeeklyAvailability) error
	// ListExceptions returns the provider's date exceptions within [from, to],
	// dates formatted "2006-01-02".
	ListExceptions(ctx context.Context, tenantID, providerID, from, to string) ([]models.AvailabilityException, error)
	// SetException upserts the exception for one (provider, date).
	SetException(ctx context.Context, e *models.AvailabilityException) error
}
