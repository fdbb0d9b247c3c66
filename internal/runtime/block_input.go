package runtime

import (
	"context"
	"fmt"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

type inputData struct {
	FieldName            string `mapstructure:"field_name"`
	FieldType            string `mapstructure:"field_type"`
	VariableName         string `mapstructure:"variable_name"`
	ValidationFailedText string `mapstructure:"validation_failed_text"`
}

// inputBlock collects one answer across invocations through the scenario's waiting flag.
type inputBlock struct {
	base
	env     *env
	text    string
	buttons []domain.Button
	data    inputData
}

func newInputBlock(def domain.Block, e *env) (Block, error) {
	b := &inputBlock{
		base:    base{id: def.ID, typ: def.Type},
		env:     e,
		text:    textOr(def.Data, e.texts.DefaultMessage),
		buttons: decodeButtons(def.Data["buttons"]),
	}
	if err := decode(def.Data, &b.data); err != nil {
		return nil, fmt.Errorf("decode input block %s: %w", def.ID, err)
	}
	if b.data.VariableName == "" {
		return nil, fmt.Errorf("%w: input block %s has no variable_name", domain.ErrInvalidScenario, def.ID)
	}
	return b, nil
}

func (b *inputBlock) Buttons() []domain.Button { return b.buttons }

func (b *inputBlock) filled(c *Context) bool {
	_, ok := c.State.Lookup(c.ScenarioID, b.data.VariableName)
	return ok
}

func (b *inputBlock) OnEntry(ctx context.Context, c *Context) error {
	if b.filled(c) {
		return nil
	}
	return b.env.send(ctx, c, b.text, domain.NewColumnKeyboard(b.buttons))
}

func (b *inputBlock) Execute(ctx context.Context, c *Context) (string, error) {
	vars := c.Variables()

	if b.filled(c) {
		return domain.PointCompleted, nil
	}

	switch {
	case vars.Waiting && c.Event.Click != nil:
		// A button on the prompt cancels the input; the click id becomes the exit.
		vars.Waiting = false
		return "", nil

	case vars.Waiting && c.Event.Text != nil:
		answer := c.Event.Text.Text
		if !b.env.validator.Valid(b.data.FieldType, answer) {
			if err := b.env.send(ctx, c, b.data.ValidationFailedText, nil); err != nil {
				b.env.logger.Debug("validation notice not delivered", "block_id", b.id, "err", err)
			}
			return "", nil
		}
		vars.Fields[b.data.VariableName] = &domain.FieldValue{
			FieldName:  b.data.FieldName,
			FieldType:  b.data.FieldType,
			FieldValue: answer,
		}
		vars.Waiting = false
		return domain.PointCompleted, nil
	}

	vars.Waiting = true
	return "", nil
}
