package runtime

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
	"github.com/KIIGIN/bot-constructor/pkg/fields"
	"github.com/KIIGIN/bot-constructor/pkg/sanitizer"
)

var variablePattern = regexp.MustCompile(`\{\{(.*?)\}\}`)

// Interpolate replaces {{variable}} placeholders with values collected in the scenario.
// Unknown variables are left as written. Values are HTML-escaped.
func Interpolate(text string, state *domain.State, scenarioID string) string {
	return variablePattern.ReplaceAllStringFunc(text, func(match string) string {
		name := strings.TrimSpace(variablePattern.FindStringSubmatch(match)[1])
		v, ok := state.Lookup(scenarioID, name)
		if !ok {
			return match
		}
		return html.EscapeString(v.FieldValue)
	})
}

// env is the shared toolbox handed to every block.
type env struct {
	texts     Texts
	validator *fields.Validator
	sleep     SleepFunc
	logger    *slog.Logger
}

// render prepares authored text for sending.
func (e *env) render(c *Context, text string) string {
	return Interpolate(sanitizer.CleanHTML(text), c.State, c.ScenarioID)
}

// send renders and sends text. Messages carrying a keyboard are remembered for cleanup.
func (e *env) send(ctx context.Context, c *Context, text string, kb *domain.Keyboard) error {
	id, err := c.Messenger.SendText(ctx, c.ChatID, e.render(c, text), kb)
	if err != nil {
		return e.fail(ctx, c, err)
	}
	if kb != nil {
		c.State.Remember(id)
	}
	return nil
}

// fail notifies the participant that delivery failed and returns a wrapped ErrDeliveryFailed.
func (e *env) fail(ctx context.Context, c *Context, cause error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	notice := fmt.Sprintf("%s: %s", e.texts.DeliveryFailed, html.EscapeString(cause.Error()))
	if _, err := c.Messenger.SendText(ctx, c.ChatID, notice, nil); err != nil {
		e.logger.Warn("failed to send delivery notice", "chat_id", c.ChatID, "err", err)
	}
	return fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, cause)
}
