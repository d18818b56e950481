package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	availabilityRepo "chatbooking/database/repository/availability"
	bookingRepo "chatbooking/database/repository/booking"
	catalogRepo "chatbooking/database/repository/catalog"
	"chatbooking/models"
	"chatbooking/utils"

	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// SlotQuery describes one availability request. FromDate and ToDate are
// inclusive calendar dates in the provider's timezone, "2006-01-02".
type SlotQuery struct {
	TenantID           string
	ServiceID          string
	ProviderID         string
	FromDate           string
	ToDate             string
	IncludeUnavailable bool
}

// AvailabilityService computes bookable slots and manages provider schedules.
type AvailabilityService interface {
	// GenerateSlots materializes candidate slots for the query window.
	// Slots are computed on the fly and never stored.
	GenerateSlots(ctx context.Context, q SlotQuery) ([]models.Slot, error)
	// UpdateWeekly validates and stores one weekday's recurring schedule.
	UpdateWeekly(ctx context.Context, w *models.WeeklyAvailability) error
	// UpdateException validates and stores a single-date schedule override.
	UpdateException(ctx context.Context, e *models.AvailabilityException) error
}

// DefaultAvailabilityService generates slots from the weekly schedule,
// date exceptions, and active bookings of a provider.
type DefaultAvailabilityService struct {
	CatalogRepo      catalogRepo.CatalogRepository
	AvailabilityRepo availabilityRepo.AvailabilityRepository
	BookingRepo      bookingRepo.BookingRepository
	StepMinutes      int
	MaxHorizonDays   int
	Now              func() time.Time
}

func NewAvailabilityService(
	catalog catalogRepo.CatalogRepository,
	avail availabilityRepo.AvailabilityRepository,
	bookings bookingRepo.BookingRepository,
	stepMinutes, maxHorizonDays int,
) *DefaultAvailabilityService {
	return &DefaultAvailabilityService{
		CatalogRepo:      catalog,
		AvailabilityRepo: avail,
		BookingRepo:      bookings,
		StepMinutes:      stepMinutes,
		MaxHorizonDays:   maxHorizonDays,
		Now:              time.Now,
	}
}

func (s *DefaultAvailabilityService) GenerateSlots(ctx context.Context, q SlotQuery) ([]models.Slot, error) {
	logger := utils.GetLogger().With(
		zap.String("tenantId", q.TenantID),
		zap.String("providerId", q.ProviderID),
		zap.String("serviceId", q.ServiceID),
	)

	from, err := time.Parse(dateLayout, q.FromDate)
	if err != nil {
		return nil, models.NewInvalidRangeError("invalid from date %q", q.FromDate)
	}
	to, err := time.Parse(dateLayout, q.ToDate)
	if err != nil {
		return nil, models.NewInvalidRangeError("invalid to date %q", q.ToDate)
	}
	if from.After(to) {
		return nil, models.NewInvalidRangeError("from date %s is after to date %s", q.FromDate, q.ToDate)
	}
	if to.Sub(from) > time.Duration(s.MaxHorizonDays)*24*time.Hour {
		return nil, models.NewInvalidRangeError("window exceeds the %d day horizon", s.MaxHorizonDays)
	}

	service, err := s.CatalogRepo.GetService(ctx, q.TenantID, q.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load service: %w", err)
	}
	if service == nil || !service.IsAvailable() {
		return nil, models.NewNotFoundError("service", q.ServiceID)
	}
	provider, err := s.CatalogRepo.GetProvider(ctx, q.TenantID, q.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load provider: %w", err)
	}
	if provider == nil || !provider.CanProvideService(q.ServiceID) {
		return nil, models.NewNotFoundError("provider", q.ProviderID)
	}

	loc, err := time.LoadLocation(provider.Timezone)
	if err != nil {
		return nil, fmt.Errorf("provider %s has invalid timezone %q: %w", provider.ID, provider.Timezone, err)
	}

	weekly, err := s.AvailabilityRepo.GetWeekly(ctx, q.TenantID, q.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load weekly availability: %w", err)
	}
	byWeekday := make(map[int]models.WeeklyAvailability, len(weekly))
	for _, w := range weekly {
		byWeekday[w.DayOfWeek] = w
	}

	exceptions, err := s.AvailabilityRepo.ListExceptions(ctx, q.TenantID, q.ProviderID, q.FromDate, q.ToDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load availability exceptions: %w", err)
	}
	byDate := make(map[string]models.AvailabilityException, len(exceptions))
	for _, e := range exceptions {
		byDate[e.Date] = e
	}

	windowStart := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	windowEnd := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	booked, err := s.BookingRepo.ListOverlapping(ctx, q.TenantID, q.ProviderID, windowStart.UTC(), windowEnd.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	now := s.Now()
	duration := time.Duration(service.DurationMinutes) * time.Minute
	var slots []models.Slot

	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		intervals := s.intervalsForDate(day, byWeekday, byDate)
		for _, iv := range intervals {
			for startMin := iv.Start; startMin+service.DurationMinutes <= iv.End; startMin += s.StepMinutes {
				start := time.Date(day.Year(), day.Month(), day.Day(), 0, startMin, 0, 0, loc)
				end := start.Add(duration)
				if !start.After(now) {
					continue
				}
				slot := models.Slot{
					ProviderID:  q.ProviderID,
					ServiceID:   q.ServiceID,
					Start:       start.UTC(),
					End:         end.UTC(),
					IsAvailable: !overlapsBooking(booked, start, end),
				}
				if !slot.IsAvailable && !q.IncludeUnavailable {
					continue
				}
				slots = append(slots, slot)
			}
		}
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })
	logger.Debug("generated slots", zap.Int("count", len(slots)),
		zap.String("from", q.FromDate), zap.String("to", q.ToDate))
	return slots, nil
}

// intervalsForDate resolves the open intervals of a single date. A date
// exception fully replaces the weekly schedule for that day (and its breaks);
// otherwise the weekly ranges apply with breaks subtracted.
func (s *DefaultAvailabilityService) intervalsForDate(
	day time.Time,
	weekly map[int]models.WeeklyAvailability,
	exceptions map[string]models.AvailabilityException,
) []models.TimeRange {
	if exc, ok := exceptions[day.Format(dateLayout)]; ok {
		if exc.FullDayUnavailable {
			return nil
		}
		return exc.TimeRanges
	}
	w, ok := weekly[int(day.Weekday())]
	if !ok {
		return nil
	}
	return subtractBreaks(w.TimeRanges, w.Breaks)
}

// subtractBreaks removes the break intervals from the working ranges,
// splitting ranges that a break falls inside of.
func subtractBreaks(ranges, breaks []models.TimeRange) []models.TimeRange {
	if len(breaks) == 0 {
		return ranges
	}
	out := make([]models.TimeRange, 0, len(ranges))
	for _, r := range ranges {
		pieces := []models.TimeRange{r}
		for _, br := range breaks {
			var next []models.TimeRange
			for _, p := range pieces {
				if !p.Overlaps(br) {
					next = append(next, p)
					continue
				}
				if p.Start < br.Start {
					next = append(next, models.TimeRange{Start: p.Start, End: br.Start})
				}
				if br.End < p.End {
					next = append(next, models.TimeRange{Start: br.End, End: p.End})
				}
			}
			pieces = next
		}
		out = append(out, pieces...)
	}
	return out
}

func overlapsBooking(bookings []models.Booking, start, end time.Time) bool {
	for i := range bookings {
		if bookings[i].OverlapsWindow(start.UTC(), end.UTC()) {
			return true
		}
	}
	return false
}
