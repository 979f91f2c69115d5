// internal/infra/telegram/middleware.go
package telegram

import (
	"strconv"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// SeenSet remembers recently processed update ids.
type SeenSet interface {
	SeenOrAdd(key string) bool
}

// Dedup drops updates Telegram delivers more than once, which happens when
// a webhook response is slow or the poller restarts.
func Dedup(seen SeenSet, logger *logrus.Entry) telebot.MiddlewareFunc {
	return func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			id := c.Update().ID
			if seen.SeenOrAdd(strconv.Itoa(id)) {
				logger.WithField("update_id", id).Info("Dropping duplicate update")
				return nil
			}
			return next(c)
		}
	}
}

// OwnerOnly ignores updates from anyone but ownerID. A zero ownerID lets
// everybody through.
func OwnerOnly(ownerID int64, logger *logrus.Entry) telebot.MiddlewareFunc {
	return func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			if ownerID == 0 {
				return next(c)
			}
			sender := c.Sender()
			if sender == nil || sender.ID != ownerID {
				fields := logrus.Fields{"update_id": c.Update().ID}
				if sender != nil {
					fields["sender_id"] = sender.ID
				}
				logger.WithFields(fields).Warn("Ignoring update from unknown user")
				return nil
			}
			return next(c)
		}
	}
}
