package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	catalogRepo "chatbooking/database/repository/catalog"
	conversationRepo "chatbooking/database/repository/conversation"
	"chatbooking/models"
	"chatbooking/services/availability"
	"chatbooking/services/booking"
	"chatbooking/services/intelligence"
	"chatbooking/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrConversationBusy reports that another message for the same
// conversation is still being processed.
var ErrConversationBusy = errors.New("conversation is processing another message")

const (
	turnLockTTL     = 15 * time.Second
	slotLookahead   = 7  // days of slots offered in chat
	maxOfferedSlots = 24 // keep chat slot lists scrollable
)

// ChatAgentService runs booking conversations: it classifies each
// message, advances the state machine, executes the resulting effects,
// and persists the conversation.
type ChatAgentService interface {
	StartConversation(ctx context.Context, tenantID, channel string) (*models.Conversation, *models.ChatReply, error)
	HandleMessage(ctx context.Context, tenantID, conversationID, message string) (*models.ChatReply, error)
	GetConversation(ctx context.Context, tenantID, conversationID string) (*models.Conversation, error)
}

type DefaultChatAgentService struct {
	ConversationRepo conversationRepo.ConversationRepository
	CatalogRepo      catalogRepo.CatalogRepository
	Availability     availability.AvailabilityService
	Bookings         booking.BookingService
	Classifier       intelligence.Classifier
	Engine           *Engine
	Locks            *redis.Client
	Now              func() time.Time
}

func NewChatAgentService(
	conversations conversationRepo.ConversationRepository,
	catalog catalogRepo.CatalogRepository,
	avail availability.AvailabilityService,
	bookings booking.BookingService,
	classifier intelligence.Classifier,
	engine *Engine,
	locks *redis.Client,
) *DefaultChatAgentService {
	return &DefaultChatAgentService{
		ConversationRepo: conversations,
		CatalogRepo:      catalog,
		Availability:     avail,
		Bookings:         bookings,
		Classifier:       classifier,
		Engine:           engine,
		Locks:            locks,
		Now:              time.Now,
	}
}

// StartConversation opens a new conversation and returns the greeting
// with the tenant's service choices.
func (s *DefaultChatAgentService) StartConversation(ctx context.Context, tenantID, channel string) (*models.Conversation, *models.ChatReply, error) {
	now := s.Now().UTC()
	conv := &models.Conversation{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		State:     models.StateInit,
		Channel:   channel,
		CreatedAt: now,
		UpdatedAt: now,
	}

	res := s.Engine.Transition(conv.State, conv.Context, models.IntentUnknown, models.Entities{})
	reply, err := s.runEffects(ctx, conv, &res)
	if err != nil {
		return nil, nil, err
	}
	conv.State = res.State
	conv.Context = res.Context
	conv.History = append(conv.History, models.ChatTurn{Role: "assistant", Content: reply.Text, Timestamp: now})
	if err := s.ConversationRepo.Save(ctx, conv); err != nil {
		return nil, nil, err
	}
	utils.GetLogger().Info("conversation started",
		zap.String("tenantId", tenantID),
		zap.String("conversationId", conv.ID),
		zap.String("channel", channel))
	return conv, reply, nil
}

// HandleMessage processes one user message end to end. Turns of the same
// conversation are serialized by a Redis lock; a concurrent turn gets
// ErrConversationBusy instead of waiting.
func (s *DefaultChatAgentService) HandleMessage(ctx context.Context, tenantID, conversationID, message string) (*models.ChatReply, error) {
	lockKey := fmt.Sprintf("conv-lock:%s:%s", tenantID, conversationID)
	acquired, err := s.Locks.SetNX(ctx, lockKey, "1", turnLockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire conversation lock: %w", err)
	}
	if !acquired {
		return nil, ErrConversationBusy
	}
	defer s.Locks.Del(context.Background(), lockKey)

	conv, err := s.ConversationRepo.GetByID(ctx, tenantID, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, models.NewNotFoundError("conversation", conversationID)
	}

	intent, entities, err := s.classify(ctx, conv, message)
	if err != nil {
		utils.GetLogger().Warn("classification failed, treating message as unrecognized",
			zap.String("conversationId", conversationID), zap.Error(err))
		intent, entities = models.IntentUnknown, models.Entities{}
	}

	res := s.Engine.Transition(conv.State, conv.Context, intent, entities)
	reply, err := s.runEffects(ctx, conv, &res)
	if err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	conv.State = res.State
	conv.Context = res.Context
	conv.History = append(conv.History,
		models.ChatTurn{Role: "user", Content: message, Timestamp: now},
		models.ChatTurn{Role: "assistant", Content: reply.Text, Timestamp: now},
	)
	if err := s.ConversationRepo.Save(ctx, conv); err != nil {
		return nil, err
	}

	if res.Stuck {
		utils.GetLogger().Warn("conversation handed off",
			zap.String("tenantId", tenantID),
			zap.String("conversationId", conversationID),
			zap.Int("retries", res.Context.RetryCount))
		return reply, &models.ConversationStuckError{ConversationID: conversationID, Retries: res.Context.RetryCount}
	}
	return reply, nil
}

func (s *DefaultChatAgentService) GetConversation(ctx context.Context, tenantID, conversationID string) (*models.Conversation, error) {
	conv, err := s.ConversationRepo.GetByID(ctx, tenantID, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, models.NewNotFoundError("conversation", conversationID)
	}
	return conv, nil
}

// classify preloads the choices relevant to the conversation's state and
// delegates to the intent classifier.
func (s *DefaultChatAgentService) classify(ctx context.Context, conv *models.Conversation, message string) (models.Intent, models.Entities, error) {
	in := intelligence.ClassificationInput{
		TenantID: conv.TenantID,
		State:    conv.State,
		Message:  message,
	}
	services, err := s.CatalogRepo.ListServices(ctx, conv.TenantID)
	if err != nil {
		return models.IntentUnknown, models.Entities{}, err
	}
	in.Services = bookableServices(services)

	if conv.Context.ServiceID != "" {
		providers, err := s.CatalogRepo.ListProviders(ctx, conv.TenantID, conv.Context.ServiceID)
		if err != nil {
			return models.IntentUnknown, models.Entities{}, err
		}
		in.Providers = providers
	}
	if conv.Context.ProviderID != "" &&
		(conv.State == models.StateProviderSelected || conv.State == models.StateSlotPending || conv.State == models.StateConfirmPending) {
		slots, err := s.upcomingSlots(ctx, conv.TenantID, conv.Context)
		if err == nil {
			in.Slots = slots
		}
	}
	return s.Classifier.Classify(ctx, in)
}

// runEffects executes the transition's effects in order, filling the reply
// skeleton as it goes. List effects also advance the transient selection
// states to their pending successors.
func (s *DefaultChatAgentService) runEffects(ctx context.Context, conv *models.Conversation, res *Result) (*models.ChatReply, error) {
	reply := res.Reply
	for _, effect := range res.Effects {
		switch effect {
		case EffectListServices:
			if err := s.fillServices(ctx, conv.TenantID, &reply); err != nil {
				return nil, err
			}
		case EffectListProviders:
			if err := s.fillProviders(ctx, conv.TenantID, res, &reply); err != nil {
				return nil, err
			}
			res.State = Advance(res.State)
		case EffectListSlots:
			if err := s.fillSlots(ctx, conv.TenantID, res, &reply); err != nil {
				return nil, err
			}
			res.State = Advance(res.State)
		case EffectCommitBooking:
			done, err := s.commitBooking(ctx, conv, res, &reply)
			if err != nil {
				return nil, err
			}
			if !done {
				// Slot lost at commit time; commitBooking regressed the
				// flow and already refilled the slot listing.
				continue
			}
		}
	}
	return &reply, nil
}

func (s *DefaultChatAgentService) fillServices(ctx context.Context, tenantID string, reply *models.ChatReply) error {
	services, err := s.CatalogRepo.ListServices(ctx, tenantID)
	if err != nil {
		return err
	}
	for _, svc := range bookableServices(services) {
		reply.Options = append(reply.Options, models.ReplyOption{
			Label:       svc.Name,
			Value:       svc.ID,
			Description: svc.Description,
		})
	}
	if len(reply.Options) == 0 {
		reply.Type = models.ReplyText
		reply.Text = "There's nothing available to book right now. Please check back later."
	}
	return nil
}

func (s *DefaultChatAgentService) fillProviders(ctx context.Context, tenantID string, res *Result, reply *models.ChatReply) error {
	service, err := s.CatalogRepo.GetService(ctx, tenantID, res.Context.ServiceID)
	if err != nil {
		return err
	}
	if service == nil || !service.IsAvailable() {
		*res = resetToServices(promptServices("That service is no longer offered. Which one would you like instead?"))
		*reply = res.Reply
		return s.fillServices(ctx, tenantID, reply)
	}
	res.Context.ServiceName = service.Name
	res.Context.ServiceDuration = service.DurationMinutes

	providers, err := s.CatalogRepo.ListProviders(ctx, tenantID, service.ID)
	if err != nil {
		return err
	}
	for _, p := range providers {
		if !p.CanProvideService(service.ID) {
			continue
		}
		reply.Options = append(reply.Options, models.ReplyOption{
			Label:       p.Name,
			Value:       p.ID,
			Description: p.Bio,
		})
	}
	if len(reply.Options) == 0 {
		reply.Type = models.ReplyText
		reply.Text = "No one offers that service at the moment. Try another service."
	}
	return nil
}

func (s *DefaultChatAgentService) fillSlots(ctx context.Context, tenantID string, res *Result, reply *models.ChatReply) error {
	provider, err := s.CatalogRepo.GetProvider(ctx, tenantID, res.Context.ProviderID)
	if err != nil {
		return err
	}
	if provider != nil {
		res.Context.ProviderName = provider.Name
	}
	slots, err := s.upcomingSlots(ctx, tenantID, res.Context)
	if err != nil {
		return err
	}
	reply.Slots = slots
	if len(slots) == 0 {
		reply.Type = models.ReplyText
		reply.Text = "No times are open in the next week. Try another provider, or check back soon."
	}
	return nil
}

// upcomingSlots generates the provider's available slots for the lookahead
// window, capped to keep chat replies manageable.
func (s *DefaultChatAgentService) upcomingSlots(ctx context.Context, tenantID string, c models.ConversationContext) ([]models.Slot, error) {
	today := s.Now().UTC()
	slots, err := s.Availability.GenerateSlots(ctx, availability.SlotQuery{
		TenantID:   tenantID,
		ServiceID:  c.ServiceID,
		ProviderID: c.ProviderID,
		FromDate:   today.Format("2006-01-02"),
		ToDate:     today.AddDate(0, 0, slotLookahead-1).Format("2006-01-02"),
	})
	if err != nil {
		return nil, err
	}
	if len(slots) > maxOfferedSlots {
		slots = slots[:maxOfferedSlots]
	}
	return slots, nil
}

// commitBooking creates and confirms the booking. Returns false when the
// slot was lost to a concurrent booking, in which case res has been
// replaced by the regressed transition and its effects still need running.
// A confirmation failure after a successful create releases the pending
// row and answers conversationally, leaving the flow ready to retry.
func (s *DefaultChatAgentService) commitBooking(ctx context.Context, conv *models.Conversation, res *Result, reply *models.ChatReply) (bool, error) {
	c := res.Context
	b, err := s.Bookings.Create(ctx, booking.CreateBookingInput{
		TenantID:   conv.TenantID,
		ServiceID:  c.ServiceID,
		ProviderID: c.ProviderID,
		Start:      *c.SlotStart,
		Customer: models.CustomerInfo{
			Name:  c.CustomerName,
			Email: c.CustomerEmail,
			Phone: c.CustomerPhone,
		},
		ConversationID: conv.ID,
		Notes:          c.Notes,
	})
	if err != nil {
		if models.IsSlotUnavailable(err) {
			regressed := s.Engine.Transition(models.StateConfirmPending, c, models.IntentSlotUnavailable, models.Entities{})
			*res = regressed
			*reply = regressed.Reply
			return false, s.fillSlots(ctx, conv.TenantID, res, reply)
		}
		return false, err
	}

	confirmed, err := s.Bookings.Confirm(ctx, conv.TenantID, b.ID)
	if err != nil {
		utils.GetLogger().Error("booking confirmation failed after create",
			zap.String("tenantId", conv.TenantID),
			zap.String("bookingId", b.ID),
			zap.Error(err))
		s.releasePending(conv.TenantID, b.ID)
		res.State = models.StateConfirmPending
		*reply = replyConfirmFailed()
		return true, nil
	}

	res.Context.BookingID = confirmed.ID
	res.Context.SlotEnd = &confirmed.End
	reply.Booking = confirmed
	if reply.Details != nil {
		reply.Details["bookingId"] = confirmed.ID
	}
	return true, nil
}

// releasePending cancels a booking left PENDING by a failed confirmation so
// its slot frees up immediately instead of waiting for the sweep. Runs on a
// fresh context so caller cancellation cannot strand the row.
func (s *DefaultChatAgentService) releasePending(tenantID, bookingID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.Bookings.Cancel(ctx, tenantID, bookingID); err != nil {
		utils.GetLogger().Error("failed to release unconfirmed booking, sweep will reclaim it",
			zap.String("tenantId", tenantID),
			zap.String("bookingId", bookingID),
			zap.Error(err))
	}
}

func bookableServices(services []models.Service) []models.Service {
	out := services[:0:0]
	for _, svc := range services {
		if svc.IsAvailable() {
			out = append(out, svc)
		}
	}
	return out
}
