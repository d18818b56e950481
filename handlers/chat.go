package handlers

import (
	"errors"
	"net/http"

	"chatbooking/middleware"
	"chatbooking/models"
	"chatbooking/services/chat"
	"chatbooking/utils"

	"github.com/gin-gonic/gin"
)

// StartConversationHandler opens a chat conversation and returns the greeting.
// POST /api/chat/conversations
func (hb *HandlerBundle) StartConversationHandler(c *gin.Context) {
	var input struct {
		Channel string `json:"channel"`
	}
	// Body is optional; default to the web widget channel.
	_ = c.ShouldBindJSON(&input)
	if input.Channel == "" {
		input.Channel = "widget"
	}

	conv, reply, err := hb.Chat.StartConversation(c.Request.Context(), middleware.GetTenantID(c), input.Channel)
	if err != nil {
		utils.JSONDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"conversationId": conv.ID,
		"state":          conv.State,
		"reply":          reply,
	})
}

// SendMessageHandler processes one user message in a conversation.
// POST /api/chat/conversations/:id/messages
func (hb *HandlerBundle) SendMessageHandler(c *gin.Context) {
	var input struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	tenantID := middleware.GetTenantID(c)
	reply, err := hb.Chat.HandleMessage(c.Request.Context(), tenantID, c.Param("id"), input.Message)
	if err != nil {
		var stuck *models.ConversationStuckError
		switch {
		case errors.As(err, &stuck):
			// The reply already tells the user a person will take over;
			// the flag lets the widget open its handoff channel.
			c.JSON(http.StatusOK, gin.H{"reply": reply, "handoff": true})
		case errors.Is(err, chat.ErrConversationBusy):
			utils.JSONError(c, http.StatusConflict, "conversation busy", err.Error())
		default:
			utils.JSONDomainError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

// GetConversationHandler returns a conversation with its message history.
// GET /api/chat/conversations/:id
func (hb *HandlerBundle) GetConversationHandler(c *gin.Context) {
	conv, err := hb.Chat.GetConversation(c.Request.Context(), middleware.GetTenantID(c), c.Param("id"))
	if err != nil {
		utils.JSONDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}
