package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"personal_assistant_bot/internal/domain/credential"

	"golang.org/x/oauth2"
)

type PostgresTokenRepository struct {
	db *sql.DB
}

func NewPostgresTokenRepository(db *sql.DB) *PostgresTokenRepository {
	return &PostgresTokenRepository{db: db}
}

func (r *PostgresTokenRepository) GetToken(ctx context.Context, name string) (*oauth2.Token, error) {
	query := `SELECT access_token, refresh_token, token_type, expiry
               FROM oauth_tokens WHERE name = $1`
	tok := &oauth2.Token{}
	var expiry sql.NullTime
	err := r.db.QueryRowContext(ctx, query, name).Scan(&tok.AccessToken, &tok.RefreshToken, &tok.TokenType, &expiry)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, credential.ErrTokenNotFound
		}
		return nil, fmt.Errorf("error getting token %q: %w", name, err)
	}
	if expiry.Valid {
		tok.Expiry = expiry.Time
	}
	return tok, nil
}

// SaveToken upserts the token. An empty refresh token never overwrites a
// stored one.
func (r *PostgresTokenRepository) SaveToken(ctx context.Context, name string, tok *oauth2.Token) error {
	query := `INSERT INTO oauth_tokens (name, access_token, refresh_token, token_type, expiry, updated_at)
               VALUES ($1, $2, $3, $4, $5, NOW())
               ON CONFLICT (name) DO UPDATE SET
                   access_token  = EXCLUDED.access_token,
                   refresh_token = COALESCE(NULLIF(EXCLUDED.refresh_token, ''), oauth_tokens.refresh_token),
                   token_type    = EXCLUDED.token_type,
                   expiry        = EXCLUDED.expiry,
                   updated_at    = NOW()`

	var expiry sql.NullTime
	if !tok.Expiry.IsZero() {
		expiry = sql.NullTime{Time: tok.Expiry, Valid: true}
	}
	if _, err := r.db.ExecContext(ctx, query, name, tok.AccessToken, tok.RefreshToken, tok.TokenType, expiry); err != nil {
		return fmt.Errorf("error saving token %q: %w", name, err)
	}
	return nil
}
