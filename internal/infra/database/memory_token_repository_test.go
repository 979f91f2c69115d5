package database

import (
	"context"
	"testing"
	"time"

	"personal_assistant_bot/internal/domain/credential"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestMemoryTokenRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTokenRepository()

	_, err := repo.GetToken(ctx, "owner")
	assert.ErrorIs(t, err, credential.ErrTokenNotFound)

	expiry := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveToken(ctx, "owner", &oauth2.Token{
		AccessToken: "a1", RefreshToken: "r1", TokenType: "Bearer", Expiry: expiry,
	}))

	got, err := repo.GetToken(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, "a1", got.AccessToken)
	assert.Equal(t, "r1", got.RefreshToken)
	assert.Equal(t, expiry, got.Expiry)

	// A refreshed token usually comes without a refresh token.
	require.NoError(t, repo.SaveToken(ctx, "owner", &oauth2.Token{AccessToken: "a2"}))
	got, err = repo.GetToken(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, "a2", got.AccessToken)
	assert.Equal(t, "r1", got.RefreshToken)
}

func TestMemoryTokenRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTokenRepository()
	require.NoError(t, repo.SaveToken(ctx, "owner", &oauth2.Token{AccessToken: "a1"}))

	got, err := repo.GetToken(ctx, "owner")
	require.NoError(t, err)
	got.AccessToken = "mutated"

	again, err := repo.GetToken(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, "a1", again.AccessToken)
}
