package booking

import (
	"context"
	"fmt"
	"time"

	bookingRepo "chatbooking/database/repository/booking"
	catalogRepo "chatbooking/database/repository/catalog"
	"chatbooking/models"
	"chatbooking/services/availability"
	"chatbooking/services/events"
	"chatbooking/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateBookingInput carries everything needed to reserve a slot.
type CreateBookingInput struct {
	TenantID       string
	ServiceID      string
	ProviderID     string
	Start          time.Time
	Customer       models.CustomerInfo
	ConversationID string
	Notes          string
}

// BookingService drives the booking lifecycle:
// PENDING -> CONFIRMED -> NO_SHOW, with CANCELLED reachable from
// PENDING and CONFIRMED. Terminal rows release their slot window.
type BookingService interface {
	Create(ctx context.Context, in CreateBookingInput) (*models.Booking, error)
	Confirm(ctx context.Context, tenantID, bookingID string) (*models.Booking, error)
	Cancel(ctx context.Context, tenantID, bookingID string) (*models.Booking, error)
	MarkNoShow(ctx context.Context, tenantID, bookingID string) (*models.Booking, error)
	GetBooking(ctx context.Context, tenantID, bookingID string) (*models.Booking, error)
	ListForProvider(ctx context.Context, tenantID, providerID string, from, to time.Time) ([]models.Booking, error)
	ListForCustomer(ctx context.Context, tenantID, email string) ([]models.Booking, error)
	GetForConversation(ctx context.Context, tenantID, conversationID string) (*models.Booking, error)
	SweepExpiredPending(ctx context.Context, olderThan time.Duration) (int, error)
}

// DefaultBookingService implements BookingService over the booking
// repository, the slot guard, and the availability engine.
type DefaultBookingService struct {
	Repo         bookingRepo.BookingRepository
	CatalogRepo  catalogRepo.CatalogRepository
	Availability availability.AvailabilityService
	Guard        *SlotGuard
	Sink         events.EventSink
	Now          func() time.Time
}

func NewBookingService(
	repo bookingRepo.BookingRepository,
	catalog catalogRepo.CatalogRepository,
	avail availability.AvailabilityService,
	sink events.EventSink,
) *DefaultBookingService {
	return &DefaultBookingService{
		Repo:         repo,
		CatalogRepo:  catalog,
		Availability: avail,
		Guard:        NewSlotGuard(repo),
		Sink:         sink,
		Now:          time.Now,
	}
}

// Create reserves the requested slot as a PENDING booking. The slot is
// re-validated against current availability right before the commit, then
// the guard settles any remaining race.
func (s *DefaultBookingService) Create(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	service, err := s.CatalogRepo.GetService(ctx, in.TenantID, in.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load service: %w", err)
	}
	if service == nil || !service.IsAvailable() {
		return nil, models.NewNotFoundError("service", in.ServiceID)
	}
	provider, err := s.CatalogRepo.GetProvider(ctx, in.TenantID, in.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load provider: %w", err)
	}
	if provider == nil || !provider.CanProvideService(in.ServiceID) {
		return nil, models.NewNotFoundError("provider", in.ProviderID)
	}

	start := in.Start.UTC()
	end := start.Add(time.Duration(service.DurationMinutes) * time.Minute)
	if err := s.validateSlotOffered(ctx, in, provider.Timezone, start, end); err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	b := &models.Booking{
		ID:             uuid.New().String(),
		TenantID:       in.TenantID,
		ServiceID:      in.ServiceID,
		ProviderID:     in.ProviderID,
		Start:          start,
		End:            end,
		Status:         models.BookingPending,
		Active:         true,
		Customer:       in.Customer,
		ConversationID: in.ConversationID,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Guard.TryCommit(ctx, b); err != nil {
		return nil, err
	}

	utils.GetLogger().Info("booking created",
		zap.String("tenantId", b.TenantID),
		zap.String("bookingId", b.ID),
		zap.String("providerId", b.ProviderID),
		zap.Time("start", b.Start))
	s.emit(ctx, models.EventBookingCreated, b)
	return b, nil
}

// validateSlotOffered regenerates the slots of the booking date and checks
// the requested start is still among the available ones.
func (s *DefaultBookingService) validateSlotOffered(ctx context.Context, in CreateBookingInput, timezone string, start, end time.Time) error {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("provider %s has invalid timezone %q: %w", in.ProviderID, timezone, err)
	}
	date := start.In(loc).Format("2006-01-02")
	slots, err := s.Availability.GenerateSlots(ctx, availability.SlotQuery{
		TenantID:   in.TenantID,
		ServiceID:  in.ServiceID,
		ProviderID: in.ProviderID,
		FromDate:   date,
		ToDate:     date,
	})
	if err != nil {
		return err
	}
	for _, slot := range slots {
		if slot.Start.Equal(start) {
			return nil
		}
	}
	return models.NewSlotUnavailableError(start, end)
}

// Confirm moves a PENDING booking to CONFIRMED.
func (s *DefaultBookingService) Confirm(ctx context.Context, tenantID, bookingID string) (*models.Booking, error) {
	return s.transition(ctx, tenantID, bookingID, "confirm",
		models.BookingPending, models.BookingConfirmed, models.EventBookingConfirmed, nil)
}

// Cancel moves a PENDING or CONFIRMED booking to CANCELLED and releases
// its slot window.
func (s *DefaultBookingService) Cancel(ctx context.Context, tenantID, bookingID string) (*models.Booking, error) {
	b, err := s.mustGet(ctx, tenantID, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsActive() {
		return nil, models.NewInvalidTransitionError(b.Status, "cancel")
	}
	return s.transition(ctx, tenantID, bookingID, "cancel",
		b.Status, models.BookingCancelled, models.EventBookingCancelled, nil)
}

// MarkNoShow moves a CONFIRMED booking to NO_SHOW, only once its start
// time has passed.
func (s *DefaultBookingService) MarkNoShow(ctx context.Context, tenantID, bookingID string) (*models.Booking, error) {
	check := func(b *models.Booking) error {
		if s.Now().UTC().Before(b.Start) {
			return models.NewInvalidTransitionError(b.Status, "mark no-show before start of")
		}
		return nil
	}
	return s.transition(ctx, tenantID, bookingID, "mark no-show",
		models.BookingConfirmed, models.BookingNoShow, models.EventBookingNoShow, check)
}

func (s *DefaultBookingService) transition(
	ctx context.Context,
	tenantID, bookingID, op string,
	expected, next models.BookingStatus,
	eventType models.EventType,
	check func(*models.Booking) error,
) (*models.Booking, error) {
	b, err := s.mustGet(ctx, tenantID, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != expected {
		return nil, models.NewInvalidTransitionError(b.Status, op)
	}
	if check != nil {
		if err := check(b); err != nil {
			return nil, err
		}
	}
	ok, err := s.Repo.UpdateStatusIfCurrent(ctx, tenantID, bookingID, expected, next)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the optimistic check; report the status that won.
		current, gerr := s.mustGet(ctx, tenantID, bookingID)
		if gerr != nil {
			return nil, gerr
		}
		return nil, models.NewInvalidTransitionError(current.Status, op)
	}
	b.Status = next
	b.Active = b.IsActive()
	b.UpdatedAt = s.Now().UTC()

	utils.GetLogger().Info("booking status changed",
		zap.String("tenantId", tenantID),
		zap.String("bookingId", bookingID),
		zap.String("status", string(next)))
	s.emit(ctx, eventType, b)
	return b, nil
}

func (s *DefaultBookingService) GetBooking(ctx context.Context, tenantID, bookingID string) (*models.Booking, error) {
	return s.mustGet(ctx, tenantID, bookingID)
}

func (s *DefaultBookingService) ListForProvider(ctx context.Context, tenantID, providerID string, from, to time.Time) ([]models.Booking, error) {
	return s.Repo.ListByProvider(ctx, tenantID, providerID, from.UTC(), to.UTC())
}

func (s *DefaultBookingService) ListForCustomer(ctx context.Context, tenantID, email string) ([]models.Booking, error) {
	return s.Repo.ListByCustomerEmail(ctx, tenantID, email)
}

// GetForConversation returns the booking a chat conversation committed,
// or nil when the conversation never produced one.
func (s *DefaultBookingService) GetForConversation(ctx context.Context, tenantID, conversationID string) (*models.Booking, error) {
	return s.Repo.GetByConversation(ctx, tenantID, conversationID)
}

// SweepExpiredPending cancels PENDING bookings older than the cutoff so
// abandoned conversations stop blocking their slots. Returns how many
// bookings were reclaimed.
func (s *DefaultBookingService) SweepExpiredPending(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.Now().UTC().Add(-olderThan)
	expired, err := s.Repo.ListExpiredPending(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired pending bookings: %w", err)
	}
	reclaimed := 0
	for i := range expired {
		b := &expired[i]
		ok, err := s.Repo.UpdateStatusIfCurrent(ctx, b.TenantID, b.ID, models.BookingPending, models.BookingCancelled)
		if err != nil {
			utils.GetLogger().Error("failed to cancel expired pending booking",
				zap.String("bookingId", b.ID), zap.Error(err))
			continue
		}
		if !ok {
			continue // confirmed or cancelled meanwhile
		}
		b.Status = models.BookingCancelled
		b.Active = false
		s.emit(ctx, models.EventBookingCancelled, b)
		reclaimed++
	}
	return reclaimed, nil
}

func (s *DefaultBookingService) mustGet(ctx context.Context, tenantID, bookingID string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, tenantID, bookingID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, models.NewNotFoundError("booking", bookingID)
	}
	return b, nil
}

func (s *DefaultBookingService) emit(ctx context.Context, eventType models.EventType, b *models.Booking) {
	if s.Sink == nil {
		return
	}
	s.Sink.Publish(ctx, models.DomainEvent{
		Type:       eventType,
		TenantID:   b.TenantID,
		BookingID:  b.ID,
		ProviderID: b.ProviderID,
		ServiceID:  b.ServiceID,
		Start:      b.Start,
		End:        b.End,
		OccurredAt: s.Now().UTC(),
	})
}
