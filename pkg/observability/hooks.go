package observability

import (
	"context"
	"log/slog"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

// LoggingHooks logs every block entry and exit at debug level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnBlockEnter: func(ctx context.Context, e *domain.BlockEvent) {
			logger.DebugContext(ctx, "block_enter",
				"scenario", e.ScenarioID,
				"participant", e.ParticipantID,
				"block_id", e.BlockID,
				"type", e.BlockType,
			)
		},
		OnBlockLeave: func(ctx context.Context, e *domain.BlockEvent) {
			logger.DebugContext(ctx, "block_leave",
				"scenario", e.ScenarioID,
				"participant", e.ParticipantID,
				"block_id", e.BlockID,
				"exit", e.ExitPoint,
			)
		},
	}
}

// ChainHooks fans every event out to all hooks in order.
func ChainHooks(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnBlockEnter: func(ctx context.Context, e *domain.BlockEvent) {
			for _, h := range hooks {
				if h.OnBlockEnter != nil {
					h.OnBlockEnter(ctx, e)
				}
			}
		},
		OnBlockLeave: func(ctx context.Context, e *domain.BlockEvent) {
			for _, h := range hooks {
				if h.OnBlockLeave != nil {
					h.OnBlockLeave(ctx, e)
				}
			}
		},
	}
}
