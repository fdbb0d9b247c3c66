package domain

import "errors"

// ErrStateNotFound is returned when no Execution State exists for a participant.
var ErrStateNotFound = errors.New("state not found")

// ErrScenarioNotFound is returned when no enabled scenario is bound to a webhook.
var ErrScenarioNotFound = errors.New("scenario not found")

// ErrBotNotFound is returned when a webhook token cannot be resolved to a bot token.
var ErrBotNotFound = errors.New("bot not found")

// ErrInvalidScenario is returned when a scenario document cannot be compiled.
var ErrInvalidScenario = errors.New("invalid scenario")

// ErrUnknownBlockType is returned for blocks whose type tag is not supported.
var ErrUnknownBlockType = errors.New("unknown block type")

// ErrMessageGone is returned when a keyboard cannot be removed because the message
// no longer exists, is unchanged, or can no longer be edited. Callers treat it as success.
var ErrMessageGone = errors.New("message already gone")

// ErrDeliveryFailed is returned by blocks when outbound content could not be delivered.
// The participant has already been notified and the conversation parks.
var ErrDeliveryFailed = errors.New("delivery failed")

// ErrStepLimit is returned when a run exceeds the configured traversal limit.
var ErrStepLimit = errors.New("step limit exceeded")
