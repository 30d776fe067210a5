package telegram

import "gopkg.in/telebot.v3"

// Client sends messages to a Telegram chat: a class group or a user's private chat.
type Client interface {
	SendMessage(chatID int64, text string, options *telebot.SendOptions) error
}
