// Package ssm resolves bot API tokens from AWS Systems Manager Parameter Store.
package ssm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

// ssmAPI is the minimal AWS SSM interface required by Tokens.
// *ssm.Client from aws-sdk-go-v2 satisfies this interface.
type ssmAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Tokens implements ports.TokenResolver. The token of webhook "abc" is read from
// the SecureString parameter "<prefix>/abc" and cached for the process lifetime.
type Tokens struct {
	api    ssmAPI
	prefix string

	mu    sync.RWMutex
	cache map[string]string
}

// New creates a resolver reading parameters under prefix.
func New(api ssmAPI, prefix string) (*Tokens, error) {
	if api == nil {
		return nil, errors.New("ssm: api must not be nil")
	}
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return nil, errors.New("ssm: parameter prefix is required")
	}
	return &Tokens{api: api, prefix: prefix, cache: make(map[string]string)}, nil
}

// BotToken implements ports.TokenResolver.
func (t *Tokens) BotToken(ctx context.Context, webhookToken string) (string, error) {
	webhookToken = strings.TrimSpace(webhookToken)
	if webhookToken == "" || strings.Contains(webhookToken, "/") {
		return "", domain.ErrBotNotFound
	}

	t.mu.RLock()
	token, ok := t.cache[webhookToken]
	t.mu.RUnlock()
	if ok {
		return token, nil
	}

	name := t.prefix + "/" + webhookToken
	out, err := t.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var notFound *types.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", domain.ErrBotNotFound
		}
		return "", fmt.Errorf("ssm: get parameter %q: %w", name, err)
	}
	if out == nil || out.Parameter == nil || aws.ToString(out.Parameter.Value) == "" {
		return "", domain.ErrBotNotFound
	}

	token = aws.ToString(out.Parameter.Value)
	t.mu.Lock()
	t.cache[webhookToken] = token
	t.mu.Unlock()
	return token, nil
}
