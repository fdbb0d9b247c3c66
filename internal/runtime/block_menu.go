package runtime

import (
	"context"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

// menuBlock renders a keyboard whose button ids are its exit points.
// A pending click is resolved by the interpreter without executing the block.
type menuBlock struct {
	base
	env     *env
	text    string
	buttons []domain.Button
}

func newMenuBlock(def domain.Block, e *env) (Block, error) {
	return &menuBlock{
		base:    base{id: def.ID, typ: def.Type},
		env:     e,
		text:    textOr(def.Data, e.texts.DefaultMenu),
		buttons: decodeButtons(def.Data["buttons"]),
	}, nil
}

func (b *menuBlock) Buttons() []domain.Button { return b.buttons }

func (b *menuBlock) OnEntry(ctx context.Context, c *Context) error {
	return b.env.send(ctx, c, b.text, domain.NewColumnKeyboard(b.buttons))
}

func (b *menuBlock) Execute(context.Context, *Context) (string, error) {
	return domain.PointNext, nil
}
