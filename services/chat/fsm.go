package chat

import (
	"fmt"
	"time"

	"chatbooking/models"
)

// EffectType names an I/O action the orchestrator must run after a
// transition. The engine itself performs no I/O; given the same state,
// context, intent, and entities it always returns the same result.
type EffectType string

const (
	EffectListServices  EffectType = "LIST_SERVICES"
	EffectListProviders EffectType = "LIST_PROVIDERS"
	EffectListSlots     EffectType = "LIST_SLOTS"
	EffectCommitBooking EffectType = "COMMIT_BOOKING"
)

// Result is the outcome of one transition: the state and context to
// persist, the reply skeleton (the orchestrator fills options and slots
// while executing effects), and the effects to run.
type Result struct {
	State   models.ConversationState
	Context models.ConversationContext
	Reply   models.ChatReply
	Effects []EffectType
	// Stuck is set once the unrecognized-message budget is exhausted;
	// the orchestrator hands the conversation to a human.
	Stuck bool
}

// Engine is the pure booking-flow state machine.
type Engine struct {
	RetryBudget int
}

func NewEngine(retryBudget int) *Engine {
	return &Engine{RetryBudget: retryBudget}
}

// Transition computes the next conversation step for one classified message.
func (e *Engine) Transition(state models.ConversationState, c models.ConversationContext, intent models.Intent, ent models.Entities) Result {
	if intent != models.IntentUnknown {
		c.RetryCount = 0
	}

	// Flow-control intents apply in every state.
	switch intent {
	case models.IntentRestart:
		return resetToServices(promptServices("Okay, starting over. Which service would you like?"))
	case models.IntentCancel:
		if state == models.StateBookingConfirmed {
			return resetToServices(promptServices("Your booking is already confirmed. To change it, ask the business directly. Want to book another service?"))
		}
		return Result{State: models.StateInit, Context: models.ConversationContext{}, Reply: replyCancelled()}
	}

	if state == models.StateBookingConfirmed {
		return resetToServices(promptServices("Want to book something else? Pick a service."))
	}

	switch state {
	case models.StateInit:
		if intent == models.IntentSelectService && ent.ServiceID != "" {
			return selectService(c, ent)
		}
		return Result{
			State:   models.StateServicePending,
			Context: c,
			Reply:   promptServices("Hi! I can help you book an appointment. Which service would you like?"),
			Effects: []EffectType{EffectListServices},
		}

	case models.StateServicePending:
		if intent == models.IntentSelectService && ent.ServiceID != "" {
			return selectService(c, ent)
		}
		return e.unrecognized(state, c)

	case models.StateServiceSelected, models.StateProviderPending:
		switch {
		case intent == models.IntentSelectProvider && ent.ProviderID != "":
			return selectProvider(c, ent)
		case intent == models.IntentSelectService && ent.ServiceID != "":
			return selectService(c, ent)
		}
		return e.unrecognized(state, c)

	case models.StateProviderSelected, models.StateSlotPending:
		switch {
		case intent == models.IntentSelectSlot && ent.SlotStart != nil:
			return selectSlot(c, ent)
		case intent == models.IntentSelectProvider && ent.ProviderID != "":
			return selectProvider(c, ent)
		case intent == models.IntentSlotUnavailable:
			return slotTaken(c)
		}
		return e.unrecognized(state, c)

	case models.StateConfirmPending:
		switch intent {
		case models.IntentProvideContact:
			return provideContact(c, ent)
		case models.IntentConfirm:
			return confirm(c)
		case models.IntentSelectSlot:
			if ent.SlotStart != nil {
				return selectSlot(c, ent)
			}
		case models.IntentSlotUnavailable:
			return slotTaken(c)
		}
		return e.unrecognized(state, c)
	}

	// Unknown persisted state; recover by restarting the flow.
	return resetToServices(promptServices("Let's start from the top. Which service would you like?"))
}

// Advance maps a transient selection state to the pending state that
// follows it once the orchestrator has presented the next set of choices.
func Advance(state models.ConversationState) models.ConversationState {
	switch state {
	case models.StateServiceSelected:
		return models.StateProviderPending
	case models.StateProviderSelected:
		return models.StateSlotPending
	default:
		return state
	}
}

func selectService(c models.ConversationContext, ent models.Entities) Result {
	c.ServiceID = ent.ServiceID
	c.ServiceName = ""
	c.ServiceDuration = 0
	c.ProviderID = ""
	c.ProviderName = ""
	c.SlotStart = nil
	c.SlotEnd = nil
	return Result{
		State:   models.StateServiceSelected,
		Context: c,
		Reply:   promptProviders(),
		Effects: []EffectType{EffectListProviders},
	}
}

func selectProvider(c models.ConversationContext, ent models.Entities) Result {
	c.ProviderID = ent.ProviderID
	c.ProviderName = ""
	c.SlotStart = nil
	c.SlotEnd = nil
	return Result{
		State:   models.StateProviderSelected,
		Context: c,
		Reply:   promptSlots(),
		Effects: []EffectType{EffectListSlots},
	}
}

func selectSlot(c models.ConversationContext, ent models.Entities) Result {
	c.SlotStart = ent.SlotStart
	c.SlotEnd = ent.SlotEnd
	if c.CustomerName == "" || c.CustomerEmail == "" {
		return Result{State: models.StateConfirmPending, Context: c, Reply: promptContact()}
	}
	return Result{State: models.StateConfirmPending, Context: c, Reply: promptConfirmation(c)}
}

func provideContact(c models.ConversationContext, ent models.Entities) Result {
	if ent.Name != "" {
		c.CustomerName = ent.Name
	}
	if ent.Email != "" {
		c.CustomerEmail = ent.Email
	}
	if ent.Phone != "" {
		c.CustomerPhone = ent.Phone
	}
	if ent.Notes != "" {
		c.Notes = ent.Notes
	}
	if c.CustomerName == "" || c.CustomerEmail == "" {
		return Result{State: models.StateConfirmPending, Context: c, Reply: promptContact()}
	}
	return Result{State: models.StateConfirmPending, Context: c, Reply: promptConfirmation(c)}
}

func confirm(c models.ConversationContext) Result {
	if c.ServiceID == "" || c.ProviderID == "" || c.SlotStart == nil {
		return resetToServices(promptServices("Something is missing from your booking. Let's start again; which service would you like?"))
	}
	if c.CustomerName == "" || c.CustomerEmail == "" {
		return Result{State: models.StateConfirmPending, Context: c, Reply: promptContact()}
	}
	return Result{
		State:   models.StateBookingConfirmed,
		Context: c,
		Reply:   replyBookingConfirmed(c),
		Effects: []EffectType{EffectCommitBooking},
	}
}

// slotTaken regresses to slot selection keeping everything but the slot.
func slotTaken(c models.ConversationContext) Result {
	c.SlotStart = nil
	c.SlotEnd = nil
	return Result{
		State:   models.StateSlotPending,
		Context: c,
		Reply:   replySlotTaken(),
		Effects: []EffectType{EffectListSlots},
	}
}

func resetToServices(reply models.ChatReply) Result {
	return Result{
		State:   models.StateServicePending,
		Context: models.ConversationContext{},
		Reply:   reply,
		Effects: []EffectType{EffectListServices},
	}
}

// unrecognized re-prompts for the current state and burns one retry.
func (e *Engine) unrecognized(state models.ConversationState, c models.ConversationContext) Result {
	c.RetryCount++
	if c.RetryCount > e.RetryBudget {
		return Result{State: state, Context: c, Reply: replyHandoff(), Stuck: true}
	}
	r := Result{State: state, Context: c, Reply: rePrompt(state)}
	switch state {
	case models.StateServicePending:
		r.Effects = []EffectType{EffectListServices}
	case models.StateServiceSelected, models.StateProviderPending:
		r.Effects = []EffectType{EffectListProviders}
	case models.StateProviderSelected, models.StateSlotPending:
		r.Effects = []EffectType{EffectListSlots}
	}
	return r
}

// ValidateFlow sanity-checks the state machine at startup: every state
// must be handled and the terminal state reachable through the happy path.
func (e *Engine) ValidateFlow() error {
	if e.RetryBudget < 1 {
		return fmt.Errorf("retry budget must be at least 1, got %d", e.RetryBudget)
	}

	start := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	steps := []struct {
		intent   models.Intent
		entities models.Entities
		want     models.ConversationState
	}{
		{models.IntentUnknown, models.Entities{}, models.StateServicePending},
		{models.IntentSelectService, models.Entities{ServiceID: "svc"}, models.StateServiceSelected},
		{models.IntentSelectProvider, models.Entities{ProviderID: "pro"}, models.StateProviderSelected},
		{models.IntentSelectSlot, models.Entities{SlotStart: &start}, models.StateConfirmPending},
		{models.IntentProvideContact, models.Entities{Name: "a", Email: "a@b.c"}, models.StateConfirmPending},
		{models.IntentConfirm, models.Entities{}, models.StateBookingConfirmed},
	}

	state := models.StateInit
	c := models.ConversationContext{}
	for i, step := range steps {
		res := e.Transition(state, c, step.intent, step.entities)
		if res.State != step.want {
			return fmt.Errorf("flow step %d: got state %s, want %s", i, res.State, step.want)
		}
		state = Advance(res.State)
		c = res.Context
	}
	return nil
}
