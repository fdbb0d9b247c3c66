package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/KIIGIN/bot-constructor/internal/compiler"
	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

const selectScenarioByWebhook = `SELECT s.id::text, s.name, s.data FROM scenarios s ` +
	`JOIN bots b ON b.id = s.bot_id ` +
	`WHERE b.webhook_token = $1 AND b.enabled AND s.enabled ` +
	`ORDER BY s.id LIMIT 1`

// Scenarios implements ports.ScenarioSource.
type Scenarios struct {
	db     *sql.DB
	parser *compiler.Parser
}

// NewScenarios creates a scenario source over db.
func NewScenarios(db *sql.DB) *Scenarios {
	return &Scenarios{db: db, parser: compiler.NewParser()}
}

// ScenarioByWebhook returns the enabled scenario of the enabled bot bound to the webhook.
func (s *Scenarios) ScenarioByWebhook(ctx context.Context, webhookToken string) (*domain.Scenario, error) {
	var (
		id   string
		name sql.NullString
		data []byte
	)
	err := s.db.QueryRowContext(ctx, selectScenarioByWebhook, webhookToken).Scan(&id, &name, &data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrScenarioNotFound
		}
		return nil, fmt.Errorf("failed to query scenario: %w", err)
	}

	graph, err := s.parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", id, err)
	}
	return &domain.Scenario{ID: id, Name: name.String, Graph: *graph}, nil
}
