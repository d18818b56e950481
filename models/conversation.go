package models

import "time"

// ConversationState is the FSM state of a booking conversation.
type ConversationState string

const (
	StateInit             ConversationState = "INIT"
	StateServicePending   ConversationState = "SERVICE_PENDING"
	StateServiceSelected  ConversationState = "SERVICE_SELECTED"
	StateProviderPending  ConversationState = "PROVIDER_PENDING"
	StateProviderSelected ConversationState = "PROVIDER_SELECTED"
	StateSlotPending      ConversationState = "SLOT_PENDING"
	StateConfirmPending   ConversationState = "CONFIRM_PENDING"
	StateBookingConfirmed ConversationState = "BOOKING_CONFIRMED"
)

// Intent is the classified meaning of an incoming user message.
type Intent string

const (
	IntentSelectService  Intent = "SELECT_SERVICE"
	IntentSelectProvider Intent = "SELECT_PROVIDER"
	IntentSelectSlot     Intent = "SELECT_SLOT"
	IntentProvideContact Intent = "PROVIDE_CONTACT"
	IntentConfirm        Intent = "CONFIRM"
	IntentCancel         Intent = "CANCEL"
	IntentRestart        Intent = "RESTART"
	IntentUnknown        Intent = "UNKNOWN"

	// IntentSlotUnavailable is injected by the orchestrator when a chosen
	// slot fails re-validation or commit; users never produce it directly.
	IntentSlotUnavailable Intent = "SLOT_UNAVAILABLE"
)

// Entities are the structured values extracted from a user message
// alongside its intent.
type Entities struct {
	ServiceID  string     `json:"serviceId,omitempty"`
	ProviderID string     `json:"providerId,omitempty"`
	SlotStart  *time.Time `json:"slotStart,omitempty"`
	SlotEnd    *time.Time `json:"slotEnd,omitempty"`
	Name       string     `json:"name,omitempty"`
	Email      string     `json:"email,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

// ConversationContext accumulates the booking fields collected so far.
type ConversationContext struct {
	ServiceID       string     `bson:"serviceId,omitempty" json:"serviceId,omitempty"`
	ServiceName     string     `bson:"serviceName,omitempty" json:"serviceName,omitempty"`
	ServiceDuration int        `bson:"serviceDuration,omitempty" json:"serviceDuration,omitempty"`
	ProviderID      string     `bson:"providerId,omitempty" json:"providerId,omitempty"`
	ProviderName    string     `bson:"providerName,omitempty" json:"providerName,omitempty"`
	SlotStart       *time.Time `bson:"slotStart,omitempty" json:"slotStart,omitempty"`
	SlotEnd         *time.Time `bson:"slotEnd,omitempty" json:"slotEnd,omitempty"`
	CustomerName    string     `bson:"customerName,omitempty" json:"customerName,omitempty"`
	CustomerEmail   string     `bson:"customerEmail,omitempty" json:"customerEmail,omitempty"`
	CustomerPhone   string     `bson:"customerPhone,omitempty" json:"customerPhone,omitempty"`
	Notes           string     `bson:"notes,omitempty" json:"notes,omitempty"`
	BookingID       string     `bson:"bookingId,omitempty" json:"bookingId,omitempty"`
	RetryCount      int        `bson:"retryCount,omitempty" json:"retryCount,omitempty"`
}

// ChatTurn is one entry of a conversation's message history.
type ChatTurn struct {
	Role      string    `bson:"role" json:"role"` // "user" or "assistant"
	Content   string    `bson:"content" json:"content"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Conversation is the persisted state of one chat booking flow. It is
// never deleted; once its booking is confirmed it is logically terminal.
type Conversation struct {
	ID        string              `bson:"id" json:"id"`
	TenantID  string              `bson:"tenantId" json:"tenantId"`
	State     ConversationState   `bson:"state" json:"state"`
	Context   ConversationContext `bson:"context" json:"context"`
	History   []ChatTurn          `bson:"history" json:"history"`
	Channel   string              `bson:"channel" json:"channel"` // "widget", "whatsapp", ...
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// ReplyType tags the shape of an outgoing chat message.
type ReplyType string

const (
	ReplyText         ReplyType = "text"
	ReplyOptions      ReplyType = "options"
	ReplyCalendar     ReplyType = "calendar"
	ReplyForm         ReplyType = "form"
	ReplyConfirmation ReplyType = "confirmation"
	ReplySuccess      ReplyType = "success"
	ReplyError        ReplyType = "error"
)

// ReplyOption is a selectable choice presented to the user.
type ReplyOption struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// ChatReply is the system message returned for one conversation turn.
type ChatReply struct {
	Type         ReplyType         `json:"type"`
	Text         string            `json:"text"`
	Options      []ReplyOption     `json:"options,omitempty"`
	Slots        []Slot            `json:"slots,omitempty"`
	Details      map[string]string `json:"details,omitempty"`
	QuickReplies []ReplyOption     `json:"quickReplies,omitempty"`
	Booking      *Booking          `json:"booking,omitempty"`
}
