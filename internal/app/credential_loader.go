// internal/app/credential_loader.go
package app

import (
	"context"
	"errors"
	"fmt"

	"personal_assistant_bot/internal/domain/credential"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// OwnerCredentialName is the key of the owner's token in the repository.
const OwnerCredentialName = "owner"

// PersistTokens returns a refresh hook that saves every new token to repo.
func PersistTokens(repo credential.Repository, name string, logger *logrus.Entry) credential.RefreshHook {
	return func(ctx context.Context, tok *oauth2.Token) {
		if err := repo.SaveToken(ctx, name, tok); err != nil {
			logger.WithError(err).WithField("credential", name).Error("Failed to persist OAuth token")
			return
		}
		logger.WithFields(logrus.Fields{"credential": name, "expiry": tok.Expiry}).Debug("OAuth token persisted")
	}
}

// LoadCredential restores the named credential from repo. When nothing is
// stored and seedRefreshToken is set, the store is seeded with it; the first
// API call then refreshes the access token. With neither, the credential
// starts unauthorized and waits for /auth.
func LoadCredential(
	ctx context.Context,
	repo credential.Repository,
	config *oauth2.Config,
	name string,
	seedRefreshToken string,
	logger *logrus.Entry,
) (*credential.Credential, error) {
	hook := PersistTokens(repo, name, logger)

	tok, err := repo.GetToken(ctx, name)
	switch {
	case err == nil:
		logger.WithField("credential", name).Info("Loaded stored OAuth token")
		return credential.New(name, config, tok, hook), nil
	case !errors.Is(err, credential.ErrTokenNotFound):
		return nil, fmt.Errorf("failed to load credential %q: %w", name, err)
	}

	if seedRefreshToken == "" {
		logger.WithField("credential", name).Warn("No OAuth token stored; authorization required")
		return credential.New(name, config, nil, hook), nil
	}

	seed := &oauth2.Token{RefreshToken: seedRefreshToken}
	if err := repo.SaveToken(ctx, name, seed); err != nil {
		return nil, fmt.Errorf("failed to seed credential %q: %w", name, err)
	}
	logger.WithField("credential", name).Info("Seeded OAuth token from configured refresh token")
	return credential.New(name, config, seed, hook), nil
}
