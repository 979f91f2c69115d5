// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// Helper is the usage text source for /start and /help.
type Helper interface {
	Help() string
}

func RegisterBotCommands(
	b *telebot.Bot,
	helper Helper,
	baseLogger *logrus.Entry, // For contextual logging
) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", startHandler(helper, startHelpLogger))
	b.Handle("/help", helpHandler(helper, startHelpLogger))
}

func startHandler(helper Helper, logger *logrus.Entry) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		logger.WithFields(senderFields(c)).WithField("command", "/start").Info("Processing /start command")

		greeting := "¡Hola!"
		if s := c.Sender(); s != nil && s.FirstName != "" {
			greeting = fmt.Sprintf("¡Hola, %s!", s.FirstName)
		}
		return c.Send(greeting + " " + helper.Help())
	}
}

func helpHandler(helper Helper, logger *logrus.Entry) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		logger.WithFields(senderFields(c)).WithField("command", "/help").Info("Processing /help command")
		return c.Send(helper.Help())
	}
}
