package database

import (
	"context"
	"os"
	"testing"
	"time"

	"personal_assistant_bot/internal/domain/credential"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// Runs against a real database only when TEST_DATABASE_URL is set.
func TestPostgresTokenRepository(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	db, err := NewPostgresConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, EnsureSchema(ctx, db))

	name := "test-" + time.Now().Format("150405.000000")
	t.Cleanup(func() { _, _ = db.Exec(`DELETE FROM oauth_tokens WHERE name = $1`, name) })

	repo := NewPostgresTokenRepository(db)

	_, err = repo.GetToken(ctx, name)
	assert.ErrorIs(t, err, credential.ErrTokenNotFound)

	expiry := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, repo.SaveToken(ctx, name, &oauth2.Token{
		AccessToken: "a1", RefreshToken: "r1", TokenType: "Bearer", Expiry: expiry,
	}))
	require.NoError(t, repo.SaveToken(ctx, name, &oauth2.Token{AccessToken: "a2", TokenType: "Bearer"}))

	got, err := repo.GetToken(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, "a2", got.AccessToken)
	assert.Equal(t, "r1", got.RefreshToken)
	assert.True(t, got.Expiry.IsZero())
}
