package conversationRepo

import (
	"context"

	"chatbooking/models"
)

// ConversationRepository persists conversation state between turns.
type ConversationRepository interface {
	// GetByID returns the conversation or nil when absent for this tenant.
	GetByID(ctx context.Context, tenantID, conversationID string) (*models.Conversation, error)
	// Save upserts the full conversation document.
	Save(ctx context.Context, conv *models.Conversation) error
}
