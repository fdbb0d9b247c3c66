package runtime

import (
	"context"
	"fmt"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

type messageData struct {
	Type        domain.MediaMode    `mapstructure:"type"`
	Attachments []domain.Attachment `mapstructure:"attachments"`
}

// messageBlock sends text and attachments, then continues immediately.
type messageBlock struct {
	base
	env  *env
	text string
	data messageData
}

func newMessageBlock(def domain.Block, e *env) (Block, error) {
	b := &messageBlock{
		base: base{id: def.ID, typ: def.Type},
		env:  e,
		text: textOr(def.Data, e.texts.DefaultMessage),
	}
	if err := decode(def.Data, &b.data); err != nil {
		return nil, fmt.Errorf("decode message block %s: %w", def.ID, err)
	}
	if b.data.Type != domain.MediaModeDocument {
		b.data.Type = domain.MediaModeMedia
	}
	return b, nil
}

func (b *messageBlock) OnEntry(ctx context.Context, c *Context) error {
	if len(b.data.Attachments) == 0 {
		return b.env.send(ctx, c, b.text, nil)
	}
	caption := b.env.render(c, b.text)
	if err := c.Messenger.SendMedia(ctx, c.ChatID, caption, b.data.Attachments, b.data.Type); err != nil {
		return b.env.fail(ctx, c, err)
	}
	return nil
}

func (b *messageBlock) Execute(context.Context, *Context) (string, error) {
	return domain.PointNext, nil
}
