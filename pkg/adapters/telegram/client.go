// Package telegram adapts the Telegram Bot API to the engine's messenger port.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/KIIGIN/bot-constructor/internal/logging"
	"github.com/KIIGIN/bot-constructor/pkg/domain"
	"github.com/KIIGIN/bot-constructor/pkg/ports"
)

// MaxDownloadSize caps the bytes read for a single attachment.
const MaxDownloadSize = 50 << 20

// Edit failures that mean the message is already in the desired state or no longer exists.
var goneMarkers = []string{
	"message to edit not found",
	"message is not modified",
	"message can't be edited",
}

// Factory opens Clients bound to a bot token.
type Factory struct {
	endpoint string
	http     *http.Client
	logger   *slog.Logger
}

// Option configures the Factory.
type Option func(*Factory)

// WithEndpoint overrides the Bot API endpoint format ("https://host/bot%s/%s").
func WithEndpoint(endpoint string) Option {
	return func(f *Factory) {
		f.endpoint = endpoint
	}
}

// WithHTTPClient sets the client used for API calls and attachment downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Factory) {
		f.http = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFactory creates a Factory. The zero configuration talks to api.telegram.org.
func NewFactory(opts ...Option) *Factory {
	f := &Factory{
		endpoint: tgbotapi.APIEndpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Open implements ports.MessengerFactory. No request is made until the first send.
func (f *Factory) Open(_ context.Context, botToken string) (ports.Messenger, error) {
	return f.Client(botToken)
}

// Client returns a concrete Client for botToken.
func (f *Factory) Client(botToken string) (*Client, error) {
	if strings.TrimSpace(botToken) == "" {
		return nil, errors.New("telegram: bot token is required")
	}
	// Built directly so that opening does not call getMe.
	bot := &tgbotapi.BotAPI{Token: botToken, Client: f.http, Buffer: 100}
	bot.SetAPIEndpoint(f.endpoint)
	return &Client{bot: bot, http: f.http, logger: f.logger}, nil
}

// Client implements ports.Messenger over one bot.
type Client struct {
	bot    *tgbotapi.BotAPI
	http   *http.Client
	logger *slog.Logger
	closed bool
}

func (c *Client) ready(ctx context.Context) error {
	if c.closed {
		return errors.New("telegram: client is closed")
	}
	return ctx.Err()
}

// SendText sends an HTML message with an optional inline keyboard.
func (c *Client) SendText(ctx context.Context, chatID int64, text string, kb *domain.Keyboard) (int, error) {
	if err := c.ready(ctx); err != nil {
		return 0, err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup, ok := inlineMarkup(kb); ok {
		msg.ReplyMarkup = markup
	}

	sent, err := c.bot.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("telegram: send message: %w", err)
	}
	c.logger.Debug("message sent", "chat_id", chatID, "message_id", sent.MessageID)
	return sent.MessageID, nil
}

func inlineMarkup(kb *domain.Keyboard) (tgbotapi.InlineKeyboardMarkup, bool) {
	if kb == nil || len(kb.Rows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.ID))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}

// ClearKeyboard replaces the inline keyboard of a message with an empty one.
func (c *Client) ClearKeyboard(ctx context.Context, chatID int64, messageID int) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
	})
	if _, err := c.bot.Request(edit); err != nil {
		if isGone(err) {
			return fmt.Errorf("telegram: message %d: %w", messageID, domain.ErrMessageGone)
		}
		return fmt.Errorf("telegram: clear keyboard: %w", err)
	}
	return nil
}

func isGone(err error) bool {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	msg := strings.ToLower(apiErr.Message)
	for _, marker := range goneMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// AnswerCallback acknowledges a click. An empty text answers silently.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	if _, err := c.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("telegram: answer callback: %w", err)
	}
	return nil
}

// Close marks the client unusable. The HTTP client is owned by the Factory.
func (c *Client) Close() error {
	c.closed = true
	return nil
}
