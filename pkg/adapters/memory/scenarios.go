package memory

import (
	"context"
	"sync"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

// Scenarios implements ports.ScenarioSource using an in-memory map of webhook tokens.
type Scenarios struct {
	mu        sync.RWMutex
	scenarios map[string]*domain.Scenario
}

// NewScenarios creates an empty scenario source.
func NewScenarios() *Scenarios {
	return &Scenarios{scenarios: make(map[string]*domain.Scenario)}
}

// Bind attaches a scenario to a webhook token, replacing any previous binding.
func (s *Scenarios) Bind(webhookToken string, scenario *domain.Scenario) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenarios[webhookToken] = scenario
}

// ScenarioByWebhook implements ports.ScenarioSource.
func (s *Scenarios) ScenarioByWebhook(_ context.Context, webhookToken string) (*domain.Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scenario, ok := s.scenarios[webhookToken]
	if !ok {
		return nil, domain.ErrScenarioNotFound
	}
	return scenario, nil
}
