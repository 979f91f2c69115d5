// internal/infra/telegram/assistant_handlers.go
package telegram

import (
	"bytes"
	"context"

	"personal_assistant_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// Assistant is the part of the app layer the chat handlers talk to.
type Assistant interface {
	Handle(ctx context.Context, text string) app.Reply
}

func RegisterAssistantHandlers(
	ctx context.Context,
	b *telebot.Bot,
	assistant Assistant,
	baseLogger *logrus.Entry,
) {
	handlerLogger := baseLogger.WithField("handler_group", "assistant")
	b.Handle(telebot.OnText, textHandler(ctx, assistant, handlerLogger))
}

func textHandler(ctx context.Context, assistant Assistant, logger *logrus.Entry) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		logCtx := logger.WithFields(senderFields(c))
		logCtx.Debug("Processing text message")

		reply := assistant.Handle(ctx, c.Text())
		if err := c.Send(reply.Text); err != nil {
			logCtx.WithError(err).Error("Failed to send reply")
			return err
		}

		att, ok := reply.Attachment.Get()
		if !ok {
			return nil
		}
		doc := &telebot.Document{
			File:     telebot.FromReader(bytes.NewReader(att.Content)),
			FileName: att.FileName,
			MIME:     att.MIME,
		}
		if err := c.Send(doc); err != nil {
			// The text confirmation already went out.
			logCtx.WithError(err).Warn("Failed to send attachment")
		}
		return nil
	}
}

func senderFields(c telebot.Context) logrus.Fields {
	fields := logrus.Fields{"update_id": c.Update().ID}
	if s := c.Sender(); s != nil {
		fields["sender_id"] = s.ID
	}
	if ch := c.Chat(); ch != nil {
		fields["chat_id"] = ch.ID
	}
	return fields
}
