package runtime

import (
	"context"
	"math"
	"time"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var delayUnits = map[string]time.Duration{
	"seconds": time.Second,
	"minutes": time.Minute,
	"hours":   time.Hour,
	"days":    24 * time.Hour,
}

type delayValue struct {
	Duration    int    `mapstructure:"duration"`
	Measurement string `mapstructure:"measurement"`
}

// delayBlock holds the invocation for the configured duration.
type delayBlock struct {
	base
	env  *env
	data map[string]any
}

func newDelayBlock(def domain.Block, e *env) (Block, error) {
	return &delayBlock{base: base{id: def.ID, typ: def.Type}, env: e, data: def.Data}, nil
}

// Duration resolves the configured wait. ok is false for invalid configuration.
func (b *delayBlock) Duration() (d time.Duration, ok bool) {
	var v delayValue
	raw, _ := b.data["value"].(map[string]any)
	if raw == nil {
		raw = map[string]any{}
	}
	if err := decode(raw, &v); err != nil {
		return 0, false
	}
	if v.Measurement == "" {
		v.Measurement = "seconds"
	}
	unit, ok := delayUnits[v.Measurement]
	if !ok {
		return 0, false
	}
	if v.Duration < 0 {
		v.Duration = 0
	}
	if int64(v.Duration) > math.MaxInt64/int64(unit) {
		return 0, false
	}
	return time.Duration(v.Duration) * unit, true
}

func (b *delayBlock) OnEntry(context.Context, *Context) error { return nil }

func (b *delayBlock) Execute(ctx context.Context, c *Context) (string, error) {
	d, ok := b.Duration()
	if !ok {
		b.env.logger.Warn("invalid delay configuration, parking", "block_id", b.id)
		return "", nil
	}
	if err := b.env.sleep(ctx, d); err != nil {
		return "", err
	}
	return domain.PointCompleted, nil
}
