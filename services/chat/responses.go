package chat

import (
	"fmt"
	"time"

	"chatbooking/models"
)

// Reply skeletons for each step of the flow. The orchestrator fills
// Options and Slots while executing the transition's effects.

func promptServices(text string) models.ChatReply {
	return models.ChatReply{Type: models.ReplyOptions, Text: text}
}

func promptProviders() models.ChatReply {
	return models.ChatReply{
		Type: models.ReplyOptions,
		Text: "Great choice. Who would you like to book with?",
	}
}

func promptSlots() models.ChatReply {
	return models.ChatReply{
		Type: models.ReplyCalendar,
		Text: "Here are the next available times. Pick one that works for you.",
	}
}

func promptContact() models.ChatReply {
	return models.ChatReply{
		Type: models.ReplyForm,
		Text: "Almost done. What's your name and email?",
	}
}

func promptConfirmation(c models.ConversationContext) models.ChatReply {
	reply := models.ChatReply{
		Type:    models.ReplyConfirmation,
		Text:    "Please review your booking and confirm.",
		Details: confirmationDetails(c),
		QuickReplies: []models.ReplyOption{
			{Label: "Confirm", Value: "confirm"},
			{Label: "Pick another time", Value: "restart"},
			{Label: "Cancel", Value: "cancel"},
		},
	}
	return reply
}

func replyBookingConfirmed(c models.ConversationContext) models.ChatReply {
	return models.ChatReply{
		Type:    models.ReplySuccess,
		Text:    "You're booked! A confirmation is on its way to " + c.CustomerEmail + ".",
		Details: confirmationDetails(c),
	}
}

func replySlotTaken() models.ChatReply {
	return models.ChatReply{
		Type: models.ReplyError,
		Text: "Sorry, that time was just taken. Here are the times still open.",
	}
}

func replyConfirmFailed() models.ChatReply {
	return models.ChatReply{
		Type: models.ReplyError,
		Text: "Sorry, something went wrong while finalizing your booking. Your time was not reserved; please reply \"confirm\" to try again.",
	}
}

func replyCancelled() models.ChatReply {
	return models.ChatReply{
		Type: models.ReplyText,
		Text: "No problem, nothing was booked. Come back any time.",
	}
}

func replyHandoff() models.ChatReply {
	return models.ChatReply{
		Type: models.ReplyError,
		Text: "I'm having trouble understanding. Let me connect you with a person who can help.",
	}
}

func rePrompt(state models.ConversationState) models.ChatReply {
	switch state {
	case models.StateServicePending:
		return promptServices("Sorry, I didn't catch that. Which service would you like?")
	case models.StateServiceSelected, models.StateProviderPending:
		reply := promptProviders()
		reply.Text = "Sorry, I didn't catch that. Who would you like to book with?"
		return reply
	case models.StateProviderSelected, models.StateSlotPending:
		reply := promptSlots()
		reply.Text = "Sorry, I didn't catch that. Please pick one of these times."
		return reply
	case models.StateConfirmPending:
		return models.ChatReply{
			Type: models.ReplyText,
			Text: "Sorry, I didn't catch that. Reply \"confirm\" to book, or \"cancel\" to stop.",
		}
	default:
		return models.ChatReply{Type: models.ReplyText, Text: "Sorry, I didn't catch that."}
	}
}

func confirmationDetails(c models.ConversationContext) map[string]string {
	details := map[string]string{
		"service":  c.ServiceName,
		"provider": c.ProviderName,
		"name":     c.CustomerName,
		"email":    c.CustomerEmail,
	}
	if c.SlotStart != nil {
		details["start"] = c.SlotStart.Format(time.RFC3339)
	}
	if c.SlotEnd != nil {
		details["end"] = c.SlotEnd.Format(time.RFC3339)
	}
	if c.ServiceDuration > 0 {
		details["duration"] = fmt.Sprintf("%d min", c.ServiceDuration)
	}
	if c.CustomerPhone != "" {
		details["phone"] = c.CustomerPhone
	}
	if c.Notes != "" {
		details["notes"] = c.Notes
	}
	return details
}
