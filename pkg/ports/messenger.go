package ports

import (
	"context"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

// Messenger is the outbound handle to the messaging platform for one invocation.
type Messenger interface {
	// SendText sends HTML text with an optional inline keyboard and returns the message id.
	SendText(ctx context.Context, chatID int64, text string, kb *domain.Keyboard) (int, error)

	// SendMedia sends one or more attachments with a caption.
	SendMedia(ctx context.Context, chatID int64, caption string, attachments []domain.Attachment, mode domain.MediaMode) error

	// ClearKeyboard removes the inline keyboard of a previously sent message.
	// Benign failures are reported wrapping domain.ErrMessageGone.
	ClearKeyboard(ctx context.Context, chatID int64, messageID int) error

	// AnswerCallback acknowledges a button click, optionally with a notice.
	AnswerCallback(ctx context.Context, callbackID, text string) error

	// Close releases the resources held by the handle.
	Close() error
}

// MessengerFactory opens a Messenger bound to a bot token.
type MessengerFactory interface {
	Open(ctx context.Context, botToken string) (Messenger, error)
}

// MessengerFactoryFunc adapts a function to MessengerFactory.
type MessengerFactoryFunc func(ctx context.Context, botToken string) (Messenger, error)

// Open calls f.
func (f MessengerFactoryFunc) Open(ctx context.Context, botToken string) (Messenger, error) {
	return f(ctx, botToken)
}
