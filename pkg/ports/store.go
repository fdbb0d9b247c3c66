package ports

import (
	"context"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

// StateStore defines the interface for persisting Execution State between invocations.
type StateStore interface {
	// Save persists the state under its participant id.
	Save(ctx context.Context, state *domain.State) error

	// Load retrieves the state of a participant.
	// Returns domain.ErrStateNotFound if no state exists.
	Load(ctx context.Context, participantID int64) (*domain.State, error)

	// Delete removes the state of a participant.
	Delete(ctx context.Context, participantID int64) error
}
