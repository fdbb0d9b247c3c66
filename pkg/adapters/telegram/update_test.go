package telegram_test

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KIIGIN/bot-constructor/pkg/adapters/telegram"
)

func TestParseUpdate(t *testing.T) {
	t.Run("Text message", func(t *testing.T) {
		ev, ok := telegram.ParseUpdate(tgbotapi.Update{
			UpdateID: 10,
			Message: &tgbotapi.Message{
				MessageID: 3,
				From:      &tgbotapi.User{ID: 7, UserName: "jane"},
				Chat:      &tgbotapi.Chat{ID: 70},
				Text:      "/start",
			},
		})
		require.True(t, ok)
		require.NotNil(t, ev.Text)
		assert.Equal(t, "/start", ev.Text.Text)
		assert.Equal(t, int64(7), ev.ParticipantID())
		assert.Equal(t, int64(70), ev.ChatID())
		assert.Equal(t, "jane", ev.SenderName())
	})

	t.Run("Callback", func(t *testing.T) {
		ev, ok := telegram.ParseUpdate(tgbotapi.Update{
			CallbackQuery: &tgbotapi.CallbackQuery{
				ID:      "cb",
				From:    &tgbotapi.User{ID: 7},
				Data:    "ButtonA",
				Message: &tgbotapi.Message{MessageID: 5, Chat: &tgbotapi.Chat{ID: 70}},
			},
		})
		require.True(t, ok)
		require.True(t, ev.IsClick())
		assert.Equal(t, "ButtonA", ev.Click.ButtonID)
		assert.Equal(t, 5, ev.Click.MessageID)
		assert.Equal(t, "cb", ev.Click.CallbackID)
	})

	t.Run("Unsupported", func(t *testing.T) {
		_, ok := telegram.ParseUpdate(tgbotapi.Update{
			Message: &tgbotapi.Message{From: &tgbotapi.User{ID: 7}, Chat: &tgbotapi.Chat{ID: 70}},
		})
		assert.False(t, ok)

		_, ok = telegram.ParseUpdate(tgbotapi.Update{})
		assert.False(t, ok)
	})
}
