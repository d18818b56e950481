package intelligence

import (
	"context"
	"regexp"
	"strings"
	"time"

	"chatbooking/models"
)

// ClassificationInput is one user message plus the conversation's current
// choices. The orchestrator preloads the catalog entries and slots relevant
// to the state so classification needs no I/O of its own.
type ClassificationInput struct {
	TenantID  string
	State     models.ConversationState
	Message   string
	Services  []models.Service
	Providers []models.Provider
	Slots     []models.Slot
}

// Classifier maps a raw user message to an intent and extracted entities.
type Classifier interface {
	Classify(ctx context.Context, in ClassificationInput) (models.Intent, models.Entities, error)
}

var emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

var phoneRe = regexp.MustCompile(`\+?[0-9][0-9 \-()]{6,}[0-9]`)

// KeywordClassifier resolves intents by exact value and keyword matching.
// Chat widgets send option values verbatim, so this covers the structured
// path entirely; free-text messages fall back to keyword heuristics.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

func (c *KeywordClassifier) Classify(_ context.Context, in ClassificationInput) (models.Intent, models.Entities, error) {
	msg := strings.TrimSpace(in.Message)
	lower := strings.ToLower(msg)

	switch lower {
	case "restart", "start over", "reiniciar":
		return models.IntentRestart, models.Entities{}, nil
	case "cancel", "nevermind", "never mind", "stop", "cancelar":
		return models.IntentCancel, models.Entities{}, nil
	case "yes", "confirm", "confirmed", "ok", "okay", "si", "sí", "book it":
		return models.IntentConfirm, models.Entities{}, nil
	}

	for _, s := range in.Services {
		if lower == strings.ToLower(s.ID) || lower == strings.ToLower(s.Name) ||
			(len(s.Name) >= 4 && strings.Contains(lower, strings.ToLower(s.Name))) {
			return models.IntentSelectService, models.Entities{ServiceID: s.ID}, nil
		}
	}
	for _, p := range in.Providers {
		if lower == strings.ToLower(p.ID) || lower == strings.ToLower(p.Name) ||
			(len(p.Name) >= 4 && strings.Contains(lower, strings.ToLower(p.Name))) {
			return models.IntentSelectProvider, models.Entities{ProviderID: p.ID}, nil
		}
	}

	if start, ok := parseSlotTime(msg); ok {
		for _, slot := range in.Slots {
			if slot.Start.Equal(start) {
				s, e := slot.Start, slot.End
				return models.IntentSelectSlot, models.Entities{SlotStart: &s, SlotEnd: &e}, nil
			}
		}
		// A time that matches none of the offered slots is not a selection.
		return models.IntentUnknown, models.Entities{}, nil
	}

	if email := emailRe.FindString(msg); email != "" {
		e := models.Entities{Email: email}
		if phone := phoneRe.FindString(strings.Replace(msg, email, "", 1)); phone != "" {
			e.Phone = phone
		}
		if name := nameBeforeEmail(msg, email); name != "" {
			e.Name = name
		}
		return models.IntentProvideContact, e, nil
	}

	return models.IntentUnknown, models.Entities{}, nil
}

// parseSlotTime accepts the RFC3339 values chat widgets send, plus a couple
// of human-typed layouts.
func parseSlotTime(msg string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, msg); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// nameBeforeEmail treats the words preceding the email as the customer name,
// matching the "Jane Doe jane@x.com" form widgets submit.
func nameBeforeEmail(msg, email string) string {
	idx := strings.Index(msg, email)
	if idx <= 0 {
		return ""
	}
	name := strings.Trim(strings.TrimSpace(msg[:idx]), ",;:")
	if len(name) > 80 {
		return ""
	}
	return name
}
