package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/KIIGIN/bot-constructor/internal/compiler"
	"github.com/KIIGIN/bot-constructor/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Binding attaches a bot and its scenario document to a webhook token.
type Binding struct {
	WebhookToken string `yaml:"webhook_token"`
	BotToken     string `yaml:"bot_token"`
	ScenarioID   string `yaml:"scenario_id"`
	Name         string `yaml:"name"`
	Path         string `yaml:"path"`
	Enabled      *bool  `yaml:"enabled"`
}

func (b Binding) enabled() bool {
	return b.Enabled == nil || *b.Enabled
}

// Manifest is the on-disk list of webhook bindings.
type Manifest struct {
	Bots []Binding `yaml:"bots"`
}

// Scenarios implements ports.ScenarioSource and ports.TokenResolver from a manifest file.
// Scenario paths are resolved relative to the manifest directory.
type Scenarios struct {
	scenarios map[string]*domain.Scenario
	tokens    map[string]string
}

// LoadScenarios reads the manifest and compiles every enabled scenario.
func LoadScenarios(manifestPath string) (*Scenarios, error) {
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	s := &Scenarios{
		scenarios: make(map[string]*domain.Scenario),
		tokens:    make(map[string]string),
	}
	base := filepath.Dir(manifestPath)
	parser := compiler.NewParser()

	for i, b := range m.Bots {
		if b.WebhookToken == "" {
			return nil, fmt.Errorf("manifest entry #%d: webhook_token is required", i)
		}
		if b.BotToken != "" {
			s.tokens[b.WebhookToken] = b.BotToken
		}
		if !b.enabled() || b.Path == "" {
			continue
		}

		path := b.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(base, path)
		}
		doc, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("manifest entry %q: %w", b.WebhookToken, err)
		}
		graph, err := parser.Parse(doc)
		if err != nil {
			return nil, fmt.Errorf("manifest entry %q: %w", b.WebhookToken, err)
		}

		id := b.ScenarioID
		if id == "" {
			id = b.WebhookToken
		}
		s.scenarios[b.WebhookToken] = &domain.Scenario{ID: id, Name: b.Name, Graph: *graph}
	}
	return s, nil
}

// ScenarioByWebhook implements ports.ScenarioSource.
func (s *Scenarios) ScenarioByWebhook(_ context.Context, webhookToken string) (*domain.Scenario, error) {
	scenario, ok := s.scenarios[webhookToken]
	if !ok {
		return nil, domain.ErrScenarioNotFound
	}
	return scenario, nil
}

// BotToken implements ports.TokenResolver.
func (s *Scenarios) BotToken(_ context.Context, webhookToken string) (string, error) {
	token, ok := s.tokens[webhookToken]
	if !ok {
		return "", domain.ErrBotNotFound
	}
	return token, nil
}

// Tokens returns a copy of the bot tokens declared in the manifest.
func (s *Scenarios) Tokens() map[string]string {
	out := make(map[string]string, len(s.tokens))
	for k, v := range s.tokens {
		out[k] = v
	}
	return out
}
