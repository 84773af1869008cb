// Package notify abstracts how study reminders reach the learner. The
// platform channel is picked once at startup; call sites never feature-detect.
package notify

import (
	"log"
	"os"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Channel delivers a short notification to the learner
type Channel interface {
	Send(message string) error
}

// TelegramChannel pushes notifications through the Telegram bot API
type TelegramChannel struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramChannel creates a channel bound to one chat
func NewTelegramChannel(api *tgbotapi.BotAPI, chatID int64) *TelegramChannel {
	return &TelegramChannel{api: api, chatID: chatID}
}

// Send delivers the message to the configured chat
func (c *TelegramChannel) Send(message string) error {
	_, err := c.api.Send(tgbotapi.NewMessage(c.chatID, message))
	return err
}

// LogChannel is the local fallback used when no push capability is
// configured. Messages land in the process log.
type LogChannel struct{}

// Send logs the message
func (LogChannel) Send(message string) error {
	log.Printf("reminder: %s", message)
	return nil
}

// Select picks the channel for this run: Telegram when the bot is up and
// NOTIFY_CHAT_ID names a chat, the log fallback otherwise.
func Select(api *tgbotapi.BotAPI) Channel {
	chatIDStr := os.Getenv("NOTIFY_CHAT_ID")
	if api == nil || chatIDStr == "" {
		return LogChannel{}
	}
	chatID, err := strconv.ParseInt(chatIDStr, 10, 64)
	if err != nil {
		log.Printf("notify: invalid NOTIFY_CHAT_ID %q, falling back to log: %v", chatIDStr, err)
		return LogChannel{}
	}
	return NewTelegramChannel(api, chatID)
}
