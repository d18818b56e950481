package availability

import (
	"context"
	"fmt"
	"time"

	"chatbooking/models"
	"chatbooking/utils"

	"go.uber.org/zap"
)

// UpdateWeekly stores a weekday schedule after validating it and the provider.
func (s *DefaultAvailabilityService) UpdateWeekly(ctx context.Context, w *models.WeeklyAvailability) error {
	if err := w.Validate(); err != nil {
		return models.NewInvalidRangeError("%v", err)
	}
	if err := s.checkProvider(ctx, w.TenantID, w.ProviderID); err != nil {
		return err
	}
	if err := s.AvailabilityRepo.SetWeekly(ctx, w); err != nil {
		return fmt.Errorf("failed to store weekly availability: %w", err)
	}
	utils.GetLogger().Info("weekly availability updated",
		zap.String("tenantId", w.TenantID),
		zap.String("providerId", w.ProviderID),
		zap.Int("dayOfWeek", w.DayOfWeek))
	return nil
}

// UpdateException stores a date override. Existing bookings on that date keep
// blocking their windows; the exception only changes what is offered going
// forward.
func (s *DefaultAvailabilityService) UpdateException(ctx context.Context, e *models.AvailabilityException) error {
	if _, err := time.Parse(dateLayout, e.Date); err != nil {
		return models.NewInvalidRangeError("invalid exception date %q", e.Date)
	}
	for _, r := range e.TimeRanges {
		if !r.Valid() {
			return models.NewInvalidRangeError("invalid time range %s", r)
		}
	}
	for i, a := range e.TimeRanges {
		for _, b := range e.TimeRanges[i+1:] {
			if a.Overlaps(b) {
				return models.NewInvalidRangeError("time ranges %s and %s overlap", a, b)
			}
		}
	}
	if err := s.checkProvider(ctx, e.TenantID, e.ProviderID); err != nil {
		return err
	}
	if err := s.AvailabilityRepo.SetException(ctx, e); err != nil {
		return fmt.Errorf("failed to store availability exception: %w", err)
	}
	utils.GetLogger().Info("availability exception updated",
		zap.String("tenantId", e.TenantID),
		zap.String("providerId", e.ProviderID),
		zap.String("date", e.Date),
		zap.Bool("fullDay", e.FullDayUnavailable))
	return nil
}

func (s *DefaultAvailabilityService) checkProvider(ctx context.Context, tenantID, providerID string) error {
	provider, err := s.CatalogRepo.GetProvider(ctx, tenantID, providerID)
	if err != nil {
		return fmt.Errorf("failed to load provider: %w", err)
	}
	if provider == nil {
		return models.NewNotFoundError("provider", providerID)
	}
	return nil
}
