package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

// ParseUpdate converts a Bot API update into an engine event.
// Only text messages and inline button clicks are recognised.
func ParseUpdate(u tgbotapi.Update) (domain.Event, bool) {
	switch {
	case u.Message != nil && u.Message.From != nil && u.Message.Chat != nil && u.Message.Text != "":
		return domain.Event{
			UpdateID: u.UpdateID,
			Text: &domain.TextMessage{
				MessageID:  u.Message.MessageID,
				Text:       u.Message.Text,
				SenderID:   u.Message.From.ID,
				SenderName: u.Message.From.UserName,
				ChatID:     u.Message.Chat.ID,
			},
		}, true

	case u.CallbackQuery != nil && u.CallbackQuery.From != nil && u.CallbackQuery.Message != nil && u.CallbackQuery.Message.Chat != nil:
		q := u.CallbackQuery
		return domain.Event{
			UpdateID: u.UpdateID,
			Click: &domain.ButtonClick{
				CallbackID: q.ID,
				ButtonID:   q.Data,
				SenderID:   q.From.ID,
				SenderName: q.From.UserName,
				ChatID:     q.Message.Chat.ID,
				MessageID:  q.Message.MessageID,
			},
		}, true
	}
	return domain.Event{}, false
}
