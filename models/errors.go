package models

import (
	"errors"
	"fmt"
	"time"
)

// InvalidRangeError rejects a slot query whose date range is malformed
// or exceeds the configured horizon.
type InvalidRangeError struct {
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: %s", e.Reason)
}

func NewInvalidRangeError(format string, args ...any) error {
	return &InvalidRangeError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError covers absent entities and cross-tenant lookups alike,
// so existence is never leaked across tenants.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// SlotUnavailableError signals a commit-time conflict. Retryable by
// re-querying availability and choosing a different slot.
type SlotUnavailableError struct {
	Start time.Time
	End   time.Time
}

func (e *SlotUnavailableError) Error() string {
	return fmt.Sprintf("slot %s - %s is not available",
		e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

func NewSlotUnavailableError(start, end time.Time) error {
	return &SlotUnavailableError{Start: start, End: end}
}

// InvalidTransitionError signals an illegal booking lifecycle change.
// Not retryable; indicates a caller or state bug.
type InvalidTransitionError struct {
	From BookingStatus
	Op   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s booking with status %s", e.Op, e.From)
}

func NewInvalidTransitionError(from BookingStatus, op string) error {
	return &InvalidTransitionError{From: from, Op: op}
}

// ConversationStuckError is raised after the retry budget for
// unrecognized intents is exhausted; it triggers human handoff.
type ConversationStuckError struct {
	ConversationID string
	Retries        int
}

func (e *ConversationStuckError) Error() string {
	return fmt.Sprintf("conversation %s stuck after %d unrecognized messages", e.ConversationID, e.Retries)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsSlotUnavailable(err error) bool {
	var su *SlotUnavailableError
	return errors.As(err, &su)
}

func IsInvalidRange(err error) bool {
	var ir *InvalidRangeError
	return errors.As(err, &ir)
}

func IsInvalidTransition(err error) bool {
	var it *InvalidTransitionError
	return errors.As(err, &it)
}
