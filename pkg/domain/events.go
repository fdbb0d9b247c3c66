package domain

import (
	"context"
	"time"
)

// EventType defines the category of a lifecycle event.
type EventType string

const (
	EventBlockEnter EventType = "block_enter"
	EventBlockLeave EventType = "block_leave"
)

// EventBase contains common fields for all lifecycle events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// BlockEvent represents entry into or exit from a block during a run.
type BlockEvent struct {
	EventBase
	ScenarioID    string    `json:"scenario_id"`
	ParticipantID int64     `json:"user_id"`
	BlockID       string    `json:"block_id"`
	BlockType     BlockType `json:"block_type"`

	// ExitPoint is set on leave events when the block resolved a connection.
	ExitPoint string `json:"exit_point,omitempty"`
}

// LifecycleHooks defines callbacks for interpreter observability.
type LifecycleHooks struct {
	OnBlockEnter func(context.Context, *BlockEvent)
	OnBlockLeave func(context.Context, *BlockEvent)
}
