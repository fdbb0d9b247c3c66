package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	botengine "github.com/KIIGIN/bot-constructor"
	"github.com/KIIGIN/bot-constructor/internal/config"
	"github.com/KIIGIN/bot-constructor/internal/logging"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg, err := config.Load(os.Getenv("BOT_CONFIG"))
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	logger := logging.FromConfig(cfg.Log.Level, cfg.Log.Format)

	// ---- Engine ----
	app, err := botengine.New(ctx, cfg, botengine.WithLogger(logger))
	if err != nil {
		logger.Error("failed to wire engine", "err", err)
		os.Exit(1)
	}

	h := &webhookHandler{
		updates: app.Orchestrator(),
		secret:  cfg.Telegram.SecretToken,
		logger:  logger,
	}
	lambda.Start(h.Handle)
}
