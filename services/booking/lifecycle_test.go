package booking

import (
	"context"
	"testing"
	"time"

	"chatbooking/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var slotStart = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

func newTestBookingService(repo *memBookingRepo, sink *recordingSink) *DefaultBookingService {
	svc := NewBookingService(repo, fakeCatalog{}, &fakeAvailability{offered: []time.Time{slotStart}}, sink)
	svc.Now = func() time.Time { return time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC) }
	return svc
}

func createInput() CreateBookingInput {
	return CreateBookingInput{
		TenantID:   testTenant,
		ServiceID:  testService,
		ProviderID: testProvider,
		Start:      slotStart,
		Customer:   models.CustomerInfo{Name: "Jane Doe", Email: "jane@example.com"},
	}
}

func TestCreateBooking(t *testing.T) {
	repo := newMemBookingRepo()
	sink := &recordingSink{}
	svc := newTestBookingService(repo, sink)

	b, err := svc.Create(context.Background(), createInput())
	require.NoError(t, err)

	assert.Equal(t, models.BookingPending, b.Status)
	assert.True(t, b.Active)
	assert.Equal(t, slotStart, b.Start)
	assert.Equal(t, slotStart.Add(30*time.Minute), b.End)
	assert.Equal(t, []models.EventType{models.EventBookingCreated}, sink.types())
}

func TestCreateBookingUnknownService(t *testing.T) {
	svc := newTestBookingService(newMemBookingRepo(), &recordingSink{})

	in := createInput()
	in.ServiceID = "missing"
	_, err := svc.Create(context.Background(), in)
	assert.True(t, models.IsNotFound(err))
}

func TestCreateBookingSlotNotOffered(t *testing.T) {
	svc := newTestBookingService(newMemBookingRepo(), &recordingSink{})

	in := createInput()
	in.Start = slotStart.Add(7 * time.Minute) // not step aligned, never offered
	_, err := svc.Create(context.Background(), in)
	assert.True(t, models.IsSlotUnavailable(err))
}

func TestCreateBookingTwiceConflicts(t *testing.T) {
	svc := newTestBookingService(newMemBookingRepo(), &recordingSink{})

	_, err := svc.Create(context.Background(), createInput())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), createInput())
	assert.True(t, models.IsSlotUnavailable(err))
}

func TestConfirmBooking(t *testing.T) {
	repo := newMemBookingRepo()
	sink := &recordingSink{}
	svc := newTestBookingService(repo, sink)

	b, err := svc.Create(context.Background(), createInput())
	require.NoError(t, err)

	confirmed, err := svc.Confirm(context.Background(), testTenant, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, confirmed.Status)
	assert.True(t, confirmed.Active)

	// Confirming twice is an illegal transition.
	_, err = svc.Confirm(context.Background(), testTenant, b.ID)
	assert.True(t, models.IsInvalidTransition(err))

	assert.Equal(t, []models.EventType{models.EventBookingCreated, models.EventBookingConfirmed}, sink.types())
}

func TestCancelBooking(t *testing.T) {
	repo := newMemBookingRepo()
	svc := newTestBookingService(repo, &recordingSink{})

	b, err := svc.Create(context.Background(), createInput())
	require.NoError(t, err)
	_, err = svc.Confirm(context.Background(), testTenant, b.ID)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), testTenant, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)
	assert.False(t, cancelled.Active)

	_, err = svc.Cancel(context.Background(), testTenant, b.ID)
	assert.True(t, models.IsInvalidTransition(err))
	_, err = svc.Confirm(context.Background(), testTenant, b.ID)
	assert.True(t, models.IsInvalidTransition(err))

	// The released window can be booked again.
	_, err = svc.Create(context.Background(), createInput())
	assert.NoError(t, err)
}

func TestMarkNoShow(t *testing.T) {
	repo := newMemBookingRepo()
	svc := newTestBookingService(repo, &recordingSink{})

	b, err := svc.Create(context.Background(), createInput())
	require.NoError(t, err)

	// Not allowed while still PENDING.
	_, err = svc.MarkNoShow(context.Background(), testTenant, b.ID)
	assert.True(t, models.IsInvalidTransition(err))

	_, err = svc.Confirm(context.Background(), testTenant, b.ID)
	require.NoError(t, err)

	// Not allowed before the appointment starts.
	_, err = svc.MarkNoShow(context.Background(), testTenant, b.ID)
	assert.True(t, models.IsInvalidTransition(err))

	svc.Now = func() time.Time { return slotStart.Add(45 * time.Minute) }
	noShow, err := svc.MarkNoShow(context.Background(), testTenant, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingNoShow, noShow.Status)
	assert.False(t, noShow.Active)
}

func TestGetForConversation(t *testing.T) {
	svc := newTestBookingService(newMemBookingRepo(), &recordingSink{})

	in := createInput()
	in.ConversationID = "conv-1"
	created, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	got, err := svc.GetForConversation(context.Background(), testTenant, "conv-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)

	got, err = svc.GetForConversation(context.Background(), testTenant, "conv-none")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = svc.GetForConversation(context.Background(), "other-tenant", "conv-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCrossTenantLookupsReportNotFound(t *testing.T) {
	svc := newTestBookingService(newMemBookingRepo(), &recordingSink{})

	b, err := svc.Create(context.Background(), createInput())
	require.NoError(t, err)

	_, err = svc.GetBooking(context.Background(), "other-tenant", b.ID)
	assert.True(t, models.IsNotFound(err))
	_, err = svc.Confirm(context.Background(), "other-tenant", b.ID)
	assert.True(t, models.IsNotFound(err))
	_, err = svc.Cancel(context.Background(), "other-tenant", b.ID)
	assert.True(t, models.IsNotFound(err))
}

func TestSweepExpiredPending(t *testing.T) {
	repo := newMemBookingRepo()
	sink := &recordingSink{}
	svc := newTestBookingService(repo, sink)

	stale, err := svc.Create(context.Background(), createInput())
	require.NoError(t, err)

	fresh := createInput()
	fresh.Start = slotStart.Add(time.Hour)
	svc.Availability.(*fakeAvailability).offered = append(
		svc.Availability.(*fakeAvailability).offered, fresh.Start)
	svc.Now = func() time.Time { return time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC) }
	freshBooking, err := svc.Create(context.Background(), fresh)
	require.NoError(t, err)

	// Sweep everything older than 30 minutes as of 09:00; only the 08:00
	// booking qualifies.
	reclaimed, err := svc.SweepExpiredPending(context.Background(), 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, reclaimed)

	got, err := svc.GetBooking(context.Background(), testTenant, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, got.Status)

	got, err = svc.GetBooking(context.Background(), testTenant, freshBooking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, got.Status)
}
