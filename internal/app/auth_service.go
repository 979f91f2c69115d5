// internal/app/auth_service.go
package app

import (
	"context"
	"errors"
	"fmt"

	"personal_assistant_bot/internal/domain/credential"
	domainTelegram "personal_assistant_bot/internal/domain/telegram"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrInvalidState = errors.New("oauth state is unknown or expired")
var ErrMissingCode = errors.New("oauth callback has no authorization code")

const (
	MsgAuthSucceeded = "✅ Autenticación exitosa. Puedes volver a Telegram."
	MsgAuthNotice    = "✅ Tu cuenta de Google quedó conectada. Ya puedes crear tareas y reuniones."
)

// StateStore remembers the OAuth state values handed out with consent URLs.
type StateStore interface {
	Add(state string)
	// Remove reports whether state was present and still valid.
	Remove(state string) bool
}

// AuthService runs the OAuth consent flow for the bot's owner.
type AuthService struct {
	cred           *credential.Credential
	states         StateStore
	telegramClient domainTelegram.Client
	ownerChatID    int64 // 0 disables the confirmation message
	logger         *logrus.Entry
}

func NewAuthService(
	cred *credential.Credential,
	states StateStore,
	tc domainTelegram.Client,
	ownerChatID int64,
	logger *logrus.Entry,
) *AuthService {
	return &AuthService{
		cred:           cred,
		states:         states,
		telegramClient: tc,
		ownerChatID:    ownerChatID,
		logger:         logger,
	}
}

// BeginAuth returns the consent URL the owner must open.
func (s *AuthService) BeginAuth() string {
	state := uuid.NewString()
	s.states.Add(state)
	s.logger.Info("Issued OAuth consent URL")
	return s.cred.AuthCodeURL(state)
}

// CompleteAuth validates state and exchanges code for a token. The token is
// persisted by the credential's refresh hook.
func (s *AuthService) CompleteAuth(ctx context.Context, state, code string) error {
	if state == "" || !s.states.Remove(state) {
		s.logger.Warn("OAuth callback with unknown state")
		return ErrInvalidState
	}
	if code == "" {
		return ErrMissingCode
	}

	if err := s.cred.Exchange(ctx, code); err != nil {
		s.logger.WithError(err).Error("OAuth code exchange failed")
		return fmt.Errorf("failed to complete authorization: %w", err)
	}
	s.logger.WithField("credential", s.cred.Name()).Info("OAuth authorization completed")

	if s.ownerChatID != 0 && s.telegramClient != nil {
		if err := s.telegramClient.SendMessage(s.ownerChatID, MsgAuthNotice, nil); err != nil {
			// The token is already stored; the notice is best effort.
			s.logger.WithError(err).WithField("chat_id", s.ownerChatID).Warn("Failed to notify owner about authorization")
		}
	}
	return nil
}
