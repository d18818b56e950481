package intelligence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"chatbooking/models"
	"chatbooking/utils"

	genai "github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiClassifier classifies free-text messages with a Gemini model and
// falls back to the keyword classifier when the model is unavailable or
// returns something unusable. Structured widget values are resolved by the
// keyword pass first, so the model only sees genuinely ambiguous text.
type GeminiClassifier struct {
	model    *genai.GenerativeModel
	fallback *KeywordClassifier
}

func NewGeminiClassifier(apiKey string) (*GeminiClassifier, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	model := client.GenerativeModel("models/gemini-1.5-flash")
	return &GeminiClassifier{model: model, fallback: NewKeywordClassifier()}, nil
}

type geminiVerdict struct {
	Intent     string `json:"intent"`
	ServiceID  string `json:"serviceId"`
	ProviderID string `json:"providerId"`
	SlotStart  string `json:"slotStart"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Notes      string `json:"notes"`
}

func (c *GeminiClassifier) Classify(ctx context.Context, in ClassificationInput) (models.Intent, models.Entities, error) {
	intent, entities, err := c.fallback.Classify(ctx, in)
	if err == nil && intent != models.IntentUnknown {
		return intent, entities, nil
	}

	resp, err := c.model.GenerateContent(ctx, genai.Text(c.buildPrompt(in)))
	if err != nil {
		utils.GetLogger().Warn("gemini classification failed, using keyword fallback", zap.Error(err))
		return models.IntentUnknown, models.Entities{}, nil
	}

	var sb strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	verdict, ok := parseVerdict(sb.String())
	if !ok {
		return models.IntentUnknown, models.Entities{}, nil
	}
	return c.toIntent(verdict, in)
}

func (c *GeminiClassifier) buildPrompt(in ClassificationInput) string {
	var sb strings.Builder
	sb.WriteString("You classify one message from a customer booking an appointment.\n")
	sb.WriteString("Respond with only a JSON object: {\"intent\": one of ")
	sb.WriteString(`"SELECT_SERVICE","SELECT_PROVIDER","SELECT_SLOT","PROVIDE_CONTACT","CONFIRM","CANCEL","RESTART","UNKNOWN"`)
	sb.WriteString(", \"serviceId\", \"providerId\", \"slotStart\" (RFC3339), \"name\", \"email\", \"phone\", \"notes\"}.\n")
	fmt.Fprintf(&sb, "Conversation state: %s\n", in.State)
	if len(in.Services) > 0 {
		sb.WriteString("Services:\n")
		for _, s := range in.Services {
			fmt.Fprintf(&sb, "- id=%s name=%q\n", s.ID, s.Name)
		}
	}
	if len(in.Providers) > 0 {
		sb.WriteString("Providers:\n")
		for _, p := range in.Providers {
			fmt.Fprintf(&sb, "- id=%s name=%q\n", p.ID, p.Name)
		}
	}
	if len(in.Slots) > 0 {
		sb.WriteString("Offered slots (RFC3339 starts):\n")
		for _, slot := range in.Slots {
			fmt.Fprintf(&sb, "- %s\n", slot.Start.Format(time.RFC3339))
		}
	}
	fmt.Fprintf(&sb, "Message: %q\n", in.Message)
	return sb.String()
}

// parseVerdict tolerates the model wrapping its JSON in prose or code fences.
func parseVerdict(raw string) (geminiVerdict, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return geminiVerdict{}, false
	}
	var v geminiVerdict
	if err := json.Unmarshal([]byte(raw[start:end+1]), &v); err != nil {
		return geminiVerdict{}, false
	}
	return v, true
}

func (c *GeminiClassifier) toIntent(v geminiVerdict, in ClassificationInput) (models.Intent, models.Entities, error) {
	e := models.Entities{Name: v.Name, Email: v.Email, Phone: v.Phone, Notes: v.Notes}
	switch models.Intent(v.Intent) {
	case models.IntentSelectService:
		for _, s := range in.Services {
			if s.ID == v.ServiceID {
				e.ServiceID = s.ID
				return models.IntentSelectService, e, nil
			}
		}
	case models.IntentSelectProvider:
		for _, p := range in.Providers {
			if p.ID == v.ProviderID {
				e.ProviderID = p.ID
				return models.IntentSelectProvider, e, nil
			}
		}
	case models.IntentSelectSlot:
		if t, err := time.Parse(time.RFC3339, v.SlotStart); err == nil {
			start := t.UTC()
			for _, slot := range in.Slots {
				if slot.Start.Equal(start) {
					s, end := slot.Start, slot.End
					e.SlotStart = &s
					e.SlotEnd = &end
					return models.IntentSelectSlot, e, nil
				}
			}
		}
	case models.IntentProvideContact:
		if e.Email != "" {
			return models.IntentProvideContact, e, nil
		}
	case models.IntentConfirm:
		return models.IntentConfirm, e, nil
	case models.IntentCancel:
		return models.IntentCancel, e, nil
	case models.IntentRestart:
		return models.IntentRestart, e, nil
	}
	return models.IntentUnknown, models.Entities{}, nil
}
