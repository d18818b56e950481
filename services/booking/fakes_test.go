package booking

import (
	"context"
	"sync"
	"time"

	bookingRepo "chatbooking/database/repository/booking"
	"chatbooking/models"
	"chatbooking/services/availability"
)

const (
	testTenant   = "tenant-1"
	testService  = "svc-cut"
	testProvider = "pro-ana"
)

// memBookingRepo is an in-memory BookingRepository enforcing the same
// slot identity uniqueness the Mongo partial index provides.
type memBookingRepo struct {
	mu   sync.Mutex
	rows map[string]models.Booking
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{rows: make(map[string]models.Booking)}
}

func (r *memBookingRepo) InsertIfAbsent(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.Active && existing.TenantID == b.TenantID &&
			existing.ProviderID == b.ProviderID && existing.Start.Equal(b.Start) {
			return bookingRepo.ErrDuplicateKey
		}
	}
	r.rows[b.ID] = *b
	return nil
}

func (r *memBookingRepo) Delete(_ context.Context, tenantID, bookingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.rows[bookingID]
	if !ok || b.TenantID != tenantID {
		return nil
	}
	delete(r.rows, bookingID)
	return nil
}

func (r *memBookingRepo) GetByID(_ context.Context, tenantID, bookingID string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.rows[bookingID]
	if !ok || b.TenantID != tenantID {
		return nil, nil
	}
	row := b
	return &row, nil
}

func (r *memBookingRepo) ListOverlapping(_ context.Context, tenantID, providerID string, from, to time.Time) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.rows {
		if b.TenantID == tenantID && b.ProviderID == providerID && b.IsActive() && b.OverlapsWindow(from, to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memBookingRepo) ListByProvider(_ context.Context, tenantID, providerID string, from, to time.Time) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.rows {
		if b.TenantID == tenantID && b.ProviderID == providerID &&
			!b.Start.Before(from) && b.Start.Before(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memBookingRepo) ListByCustomerEmail(_ context.Context, tenantID, email string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.rows {
		if b.TenantID == tenantID && b.Customer.Email == email {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memBookingRepo) GetByConversation(_ context.Context, tenantID, conversationID string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.rows {
		if b.TenantID == tenantID && b.ConversationID == conversationID {
			row := b
			return &row, nil
		}
	}
	return nil, nil
}

func (r *memBookingRepo) UpdateStatusIfCurrent(_ context.Context, tenantID, bookingID string, expected, next models.BookingStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.rows[bookingID]
	if !ok || b.TenantID != tenantID || b.Status != expected {
		return false, nil
	}
	b.Status = next
	b.Active = b.IsActive()
	b.UpdatedAt = time.Now().UTC()
	r.rows[bookingID] = b
	return true, nil
}

func (r *memBookingRepo) ListExpiredPending(_ context.Context, createdBefore time.Time) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.rows {
		if b.Status == models.BookingPending && b.CreatedAt.Before(createdBefore) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memBookingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// fakeCatalog serves a single haircut service offered by a single provider.
type fakeCatalog struct{}

func (fakeCatalog) GetService(_ context.Context, tenantID, serviceID string) (*models.Service, error) {
	if tenantID != testTenant || serviceID != testService {
		return nil, nil
	}
	return &models.Service{ID: testService, TenantID: testTenant, Name: "Haircut", DurationMinutes: 30, Active: true}, nil
}

func (fakeCatalog) GetProvider(_ context.Context, tenantID, providerID string) (*models.Provider, error) {
	if tenantID != testTenant || providerID != testProvider {
		return nil, nil
	}
	return &models.Provider{ID: testProvider, TenantID: testTenant, Name: "Ana", ServiceIDs: []string{testService}, Timezone: "UTC", Active: true}, nil
}

func (fakeCatalog) ListServices(_ context.Context, _ string) ([]models.Service, error) {
	return nil, nil
}

func (fakeCatalog) ListProviders(_ context.Context, _, _ string) ([]models.Provider, error) {
	return nil, nil
}

// fakeAvailability offers every step-aligned slot of the queried day, so
// lifecycle tests exercise the guard rather than the schedule rules.
type fakeAvailability struct {
	offered []time.Time
}

func (f *fakeAvailability) GenerateSlots(_ context.Context, q availability.SlotQuery) ([]models.Slot, error) {
	var out []models.Slot
	for _, start := range f.offered {
		out = append(out, models.Slot{
			ProviderID:  q.ProviderID,
			ServiceID:   q.ServiceID,
			Start:       start,
			End:         start.Add(30 * time.Minute),
			IsAvailable: true,
		})
	}
	return out, nil
}

func (f *fakeAvailability) UpdateWeekly(_ context.Context, _ *models.WeeklyAvailability) error {
	return nil
}

func (f *fakeAvailability) UpdateException(_ context.Context, _ *models.AvailabilityException) error {
	return nil
}

// recordingSink captures published events in order.
type recordingSink struct {
	mu     sync.Mutex
	events []models.DomainEvent
}

func (s *recordingSink) Publish(_ context.Context, event models.DomainEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) types() []models.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.EventType, len(s.events))
	for i, e := range s.events {
		out[i] = e.Type
	}
	return out
}
