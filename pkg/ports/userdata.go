package ports

import (
	"context"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

// UserDataService stores values collected by input blocks.
type UserDataService interface {
	// CollectedFields returns the fields of a scenario with all stored values.
	CollectedFields(ctx context.Context, scenarioID string) ([]domain.CollectedField, error)

	// SaveValue stores one collected value.
	SaveValue(ctx context.Context, record domain.FieldRecord) error
}

// FieldPublisher announces stored values to downstream consumers.
type FieldPublisher interface {
	Publish(ctx context.Context, record domain.FieldRecord) error
}
