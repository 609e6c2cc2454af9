package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// messenger delivers plain text replies to a chat.
type messenger interface {
	SendText(chatID int64, text string) error
}

// apiMessenger sends through the Bot API with link previews off, since
// search answers often end in a URL.
type apiMessenger struct{ api *tgbotapi.BotAPI }

func (m apiMessenger) SendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := m.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}
