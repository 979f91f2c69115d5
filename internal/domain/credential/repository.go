package credential

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
)

var ErrTokenNotFound = errors.New("token not found")

// Repository persists OAuth tokens by credential name.
type Repository interface {
	GetToken(ctx context.Context, name string) (*oauth2.Token, error)
	SaveToken(ctx context.Context, name string, tok *oauth2.Token) error
}
