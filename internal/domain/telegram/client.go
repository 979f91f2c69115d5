package telegram

import "gopkg.in/telebot.v3"

// Client defines an interface for sending messages via a Telegram bot.
// Used for messages that are not replies to an update, such as the
// authorization confirmation.
type Client interface {
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error
}
