package intelligence

import (
	"context"
	"testing"
	"time"

	"chatbooking/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classifierInput() ClassificationInput {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	return ClassificationInput{
		TenantID: "tenant-1",
		State:    models.StateServicePending,
		Services: []models.Service{
			{ID: "svc-cut", Name: "Haircut"},
			{ID: "svc-color", Name: "Coloring"},
		},
		Providers: []models.Provider{
			{ID: "pro-ana", Name: "Ana Torres", Active: true},
		},
		Slots: []models.Slot{
			{Start: start, End: start.Add(30 * time.Minute)},
		},
	}
}

func TestKeywordClassifierWidgetValues(t *testing.T) {
	c := NewKeywordClassifier()
	in := classifierInput()

	in.Message = "svc-cut"
	intent, entities, err := c.Classify(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, models.IntentSelectService, intent)
	assert.Equal(t, "svc-cut", entities.ServiceID)

	in.Message = "pro-ana"
	intent, entities, err = c.Classify(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, models.IntentSelectProvider, intent)
	assert.Equal(t, "pro-ana", entities.ProviderID)

	in.Message = "2026-09-01T10:00:00Z"
	intent, entities, err = c.Classify(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, models.IntentSelectSlot, intent)
	require.NotNil(t, entities.SlotStart)
	assert.True(t, entities.SlotStart.Equal(time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)))
	require.NotNil(t, entities.SlotEnd)
}

func TestKeywordClassifierFreeText(t *testing.T) {
	c := NewKeywordClassifier()
	in := classifierInput()

	in.Message = "I'd like a Haircut please"
	intent, entities, err := c.Classify(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, models.IntentSelectService, intent)
	assert.Equal(t, "svc-cut", entities.ServiceID)

	in.Message = "book me with Ana Torres"
	intent, entities, err = c.Classify(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, models.IntentSelectProvider, intent)
	assert.Equal(t, "pro-ana", entities.ProviderID)
}

func TestKeywordClassifierFlowControl(t *testing.T) {
	c := NewKeywordClassifier()
	in := classifierInput()

	for msg, want := range map[string]models.Intent{
		"yes":        models.IntentConfirm,
		"Confirm":    models.IntentConfirm,
		"cancel":     models.IntentCancel,
		"start over": models.IntentRestart,
	} {
		in.Message = msg
		intent, _, err := c.Classify(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, want, intent, "message %q", msg)
	}
}

func TestKeywordClassifierContact(t *testing.T) {
	c := NewKeywordClassifier()
	in := classifierInput()

	in.Message = "Jane Doe jane@example.com +52 55 1234 5678"
	intent, entities, err := c.Classify(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, models.IntentProvideContact, intent)
	assert.Equal(t, "jane@example.com", entities.Email)
	assert.Equal(t, "Jane Doe", entities.Name)
	assert.NotEmpty(t, entities.Phone)
}

func TestKeywordClassifierRejectsUnofferedSlotTime(t *testing.T) {
	c := NewKeywordClassifier()
	in := classifierInput()

	// Parses as a time, but 03:00 was never offered.
	in.Message = "2026-09-01T03:00:00Z"
	intent, entities, err := c.Classify(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, models.IntentUnknown, intent)
	assert.Nil(t, entities.SlotStart)

	in.Slots = nil
	in.Message = "2026-09-01T10:00:00Z"
	intent, _, err = c.Classify(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, models.IntentUnknown, intent)
}

func TestKeywordClassifierUnknown(t *testing.T) {
	c := NewKeywordClassifier()
	in := classifierInput()

	in.Message = "what's the weather like?"
	intent, _, err := c.Classify(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, models.IntentUnknown, intent)
}

func TestToIntentValidatesAgainstChoices(t *testing.T) {
	c := &GeminiClassifier{}
	in := classifierInput()

	intent, entities, err := c.toIntent(geminiVerdict{Intent: "SELECT_SLOT", SlotStart: "2026-09-01T10:00:00Z"}, in)
	require.NoError(t, err)
	assert.Equal(t, models.IntentSelectSlot, intent)
	require.NotNil(t, entities.SlotEnd)

	intent, _, err = c.toIntent(geminiVerdict{Intent: "SELECT_SLOT", SlotStart: "2026-09-01T03:00:00Z"}, in)
	require.NoError(t, err)
	assert.Equal(t, models.IntentUnknown, intent)

	intent, _, err = c.toIntent(geminiVerdict{Intent: "SELECT_SERVICE", ServiceID: "svc-nope"}, in)
	require.NoError(t, err)
	assert.Equal(t, models.IntentUnknown, intent)
}

func TestParseVerdictToleratesFences(t *testing.T) {
	raw := "```json\n{\"intent\":\"CONFIRM\"}\n```"
	v, ok := parseVerdict(raw)
	require.True(t, ok)
	assert.Equal(t, "CONFIRM", v.Intent)

	_, ok = parseVerdict("no json here")
	assert.False(t, ok)
}
