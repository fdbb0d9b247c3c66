package ports

import (
	"context"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

// ScenarioSource resolves the enabled scenario bound to a webhook.
type ScenarioSource interface {
	// ScenarioByWebhook returns domain.ErrScenarioNotFound when nothing is bound.
	ScenarioByWebhook(ctx context.Context, webhookToken string) (*domain.Scenario, error)
}

// TokenResolver resolves the bot API token bound to a webhook.
type TokenResolver interface {
	// BotToken returns domain.ErrBotNotFound when the webhook is unknown.
	BotToken(ctx context.Context, webhookToken string) (string, error)
}

// StaticTokens resolves tokens from an in-memory map.
type StaticTokens map[string]string

// BotToken implements TokenResolver.
func (s StaticTokens) BotToken(_ context.Context, webhookToken string) (string, error) {
	token, ok := s[webhookToken]
	if !ok || token == "" {
		return "", domain.ErrBotNotFound
	}
	return token, nil
}
