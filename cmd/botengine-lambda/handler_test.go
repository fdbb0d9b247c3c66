package main

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KIIGIN/bot-constructor/internal/logging"
	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

type captured struct {
	token string
	ev    domain.Event
}

type recorder struct {
	calls []captured
}

func (r *recorder) Handle(_ context.Context, webhookToken string, ev domain.Event) error {
	r.calls = append(r.calls, captured{token: webhookToken, ev: ev})
	return nil
}

const update = `{"update_id": 5, "message": {"message_id": 1, "from": {"id": 7, "is_bot": false, "first_name": "J"},
	"chat": {"id": 70, "type": "private"}, "date": 1700000000, "text": "hello"}}`

func TestHandle_Dispatches(t *testing.T) {
	rec := &recorder{}
	h := &webhookHandler{updates: rec, logger: logging.NewNop()}

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		PathParameters: map[string]string{"token": "hook"},
		Body:           update,
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, rec.calls, 1)
	assert.Equal(t, "hook", rec.calls[0].token)
	assert.Equal(t, "hello", rec.calls[0].ev.Text.Text)
}

func TestHandle_Base64Body(t *testing.T) {
	rec := &recorder{}
	h := &webhookHandler{updates: rec, logger: logging.NewNop()}

	_, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		PathParameters:  map[string]string{"token": "hook"},
		Body:            base64.StdEncoding.EncodeToString([]byte(update)),
		IsBase64Encoded: true,
	})

	require.NoError(t, err)
	assert.Len(t, rec.calls, 1)
}

func TestHandle_SecretToken(t *testing.T) {
	rec := &recorder{}
	h := &webhookHandler{updates: rec, secret: "s3cret", logger: logging.NewNop()}
	ctx := context.Background()

	resp, err := h.Handle(ctx, events.APIGatewayProxyRequest{
		PathParameters: map[string]string{"token": "hook"},
		Body:           update,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, rec.calls)

	_, err = h.Handle(ctx, events.APIGatewayProxyRequest{
		PathParameters: map[string]string{"token": "hook"},
		Headers:        map[string]string{"x-telegram-bot-api-secret-token": "s3cret"},
		Body:           update,
	})
	require.NoError(t, err)
	assert.Len(t, rec.calls, 1)
}

func TestHandle_IgnoresBadRequests(t *testing.T) {
	rec := &recorder{}
	h := &webhookHandler{updates: rec, logger: logging.NewNop()}
	ctx := context.Background()

	for _, req := range []events.APIGatewayProxyRequest{
		{Body: update},
		{PathParameters: map[string]string{"token": "hook"}, Body: "{"},
		{PathParameters: map[string]string{"token": "hook"}, Body: "%%%", IsBase64Encoded: true},
	} {
		resp, err := h.Handle(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
	assert.Empty(t, rec.calls)
}
