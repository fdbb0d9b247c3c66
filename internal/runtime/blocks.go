package runtime

import (
	"context"
	"fmt"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Block is the capability shared by every block variant.
type Block interface {
	ID() string
	Type() domain.BlockType

	// OnEntry renders and sends the block's initial content.
	OnEntry(ctx context.Context, c *Context) error

	// Execute evaluates the block and returns its exit point, or "" for none.
	Execute(ctx context.Context, c *Context) (string, error)
}

// buttoned is implemented by blocks that render an inline keyboard.
type buttoned interface {
	Buttons() []domain.Button
}

// constructor builds a block variant from its authored definition.
type constructor func(def domain.Block, e *env) (Block, error)

var constructors = map[domain.BlockType]constructor{
	domain.BlockStart:     newStartBlock,
	domain.BlockMessage:   newMessageBlock,
	domain.BlockMenu:      newMenuBlock,
	domain.BlockDelay:     newDelayBlock,
	domain.BlockInputData: newInputBlock,
}

func buildBlock(def domain.Block, e *env) (Block, error) {
	build, ok := constructors[def.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q (block %s)", domain.ErrUnknownBlockType, def.Type, def.ID)
	}
	return build(def, e)
}

// base carries the identity of a block.
type base struct {
	id  string
	typ domain.BlockType
}

func (b base) ID() string             { return b.id }
func (b base) Type() domain.BlockType { return b.typ }

// decode maps an authored payload onto a typed struct, tolerating loose scalar types.
func decode(input map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// decodeButtons keeps well-formed buttons, at most domain.MaxButtons of them.
// Entries missing an id or a text are skipped.
func decodeButtons(raw any) []domain.Button {
	items, _ := raw.([]any)
	buttons := make([]domain.Button, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id, hasID := m["id"]
		text, hasText := m["text"]
		if !hasID || !hasText || id == nil || text == nil {
			continue
		}
		buttons = append(buttons, domain.Button{ID: fmt.Sprint(id), Text: fmt.Sprint(text)})
		if len(buttons) == domain.MaxButtons {
			break
		}
	}
	return buttons
}

// textOr returns the authored text or the fallback when the key is absent.
func textOr(data map[string]any, fallback string) string {
	v, ok := data["text"]
	if !ok || v == nil {
		return fallback
	}
	return fmt.Sprint(v)
}

// startBlock is a waypoint after trigger matching.
type startBlock struct {
	base
}

func newStartBlock(def domain.Block, _ *env) (Block, error) {
	return &startBlock{base: base{id: def.ID, typ: def.Type}}, nil
}

func (b *startBlock) OnEntry(context.Context, *Context) error { return nil }

func (b *startBlock) Execute(context.Context, *Context) (string, error) {
	return domain.PointNext, nil
}
