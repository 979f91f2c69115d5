// internal/domain/credential/credential.go
package credential

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var ErrNotAuthorized = errors.New("credential has no token; authorization required")

// Scopes requested from Google: calendar events and tasks.
var Scopes = []string{
	"https://www.googleapis.com/auth/calendar",
	"https://www.googleapis.com/auth/tasks",
}

// RefreshHook is called with every new token the credential obtains, either
// from a code exchange or from a refresh. Implementations persist the token and
// log their own failures; the in-memory token stays usable regardless.
type RefreshHook func(ctx context.Context, tok *oauth2.Token)

// Credential is the Google authorization of the bot's owner. It is passed
// explicitly to every collaborator call; there is no package-level session.
type Credential struct {
	name      string
	config    *oauth2.Config
	onRefresh RefreshHook

	mu    sync.Mutex
	token *oauth2.Token
}

// NewConfig builds the Google OAuth client configuration.
func NewConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
		Endpoint:     google.Endpoint,
	}
}

// New returns a credential; tok may be nil until the owner authorizes.
func New(name string, config *oauth2.Config, tok *oauth2.Token, hook RefreshHook) *Credential {
	return &Credential{
		name:      name,
		config:    config,
		onRefresh: hook,
		token:     tok,
	}
}

func (c *Credential) Name() string {
	return c.name
}

func (c *Credential) Authorized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token != nil
}

// AuthCodeURL is the consent page URL. Offline access with forced consent makes
// Google return a refresh token every time.
func (c *Credential) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token and installs it.
func (c *Credential) Exchange(ctx context.Context, code string) error {
	tok, err := c.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange code: %w", err)
	}
	c.Replace(ctx, tok)
	return nil
}

// Replace installs tok. A token without a refresh token keeps the previous one.
func (c *Credential) Replace(ctx context.Context, tok *oauth2.Token) {
	c.mu.Lock()
	c.setLocked(tok)
	stored := c.token
	c.mu.Unlock()

	if c.onRefresh != nil {
		c.onRefresh(ctx, stored)
	}
}

func (c *Credential) setLocked(tok *oauth2.Token) {
	if tok.RefreshToken == "" && c.token != nil {
		tok.RefreshToken = c.token.RefreshToken
	}
	c.token = tok
}

// Token returns a valid access token, refreshing it when expired.
func (c *Credential) Token(ctx context.Context) (*oauth2.Token, error) {
	c.mu.Lock()
	current := c.token
	if current == nil {
		c.mu.Unlock()
		return nil, ErrNotAuthorized
	}

	fresh, err := c.config.TokenSource(ctx, current).Token()
	if err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	refreshed := fresh.AccessToken != current.AccessToken
	if refreshed {
		c.setLocked(fresh)
	}
	c.mu.Unlock()

	if refreshed && c.onRefresh != nil {
		c.onRefresh(ctx, fresh)
	}
	return fresh, nil
}

// TokenSource adapts the credential for API clients. ctx is used for refreshes.
func (c *Credential) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, cred: c}
}

type tokenSource struct {
	ctx  context.Context
	cred *Credential
}

func (ts *tokenSource) Token() (*oauth2.Token, error) {
	return ts.cred.Token(ts.ctx)
}
