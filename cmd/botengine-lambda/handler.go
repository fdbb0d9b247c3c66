package main

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	httpadapter "github.com/KIIGIN/bot-constructor/pkg/adapters/http"
)

// webhookHandler adapts API Gateway proxy events to the webhook endpoint.
// Like the HTTP server it always answers 200 so Telegram does not redeliver.
type webhookHandler struct {
	updates httpadapter.UpdateHandler
	secret  string
	logger  *slog.Logger
}

func (h *webhookHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ok := events.APIGatewayProxyResponse{StatusCode: http.StatusOK}

	token := req.PathParameters["token"]
	if token == "" {
		h.logger.Warn("webhook call without token", "path", req.Path)
		return ok, nil
	}
	if h.secret != "" && header(req.Headers, httpadapter.SecretTokenHeader) != h.secret {
		h.logger.Warn("webhook secret mismatch")
		return ok, nil
	}

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			h.logger.Error("decode webhook body", "err", err)
			return ok, nil
		}
		body = decoded
	}

	if err := httpadapter.Dispatch(ctx, h.updates, token, body); err != nil {
		h.logger.Error("webhook update failed", "err", err, "request_id", req.RequestContext.RequestID)
	}
	return ok, nil
}

// header looks a header up case-insensitively; API Gateway keeps the client's casing.
func header(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	canonical := http.CanonicalHeaderKey(name)
	for k, v := range headers {
		if http.CanonicalHeaderKey(k) == canonical {
			return v
		}
	}
	return ""
}
