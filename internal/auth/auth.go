// Package auth provides Spotify client credentials authentication with token caching.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrMissingCredentials is returned when SPOTIFY_ID or SPOTIFY_SECRET is not set.
var ErrMissingCredentials = errors.New("missing SPOTIFY_ID or SPOTIFY_SECRET environment variable")

// Config holds Spotify application credentials.
type Config struct {
	ClientID     string `mapstructure:"id"`
	ClientSecret string `mapstructure:"secret"`
}

// Authenticator obtains app-only Spotify tokens via the client credentials flow.
type Authenticator struct {
	config *clientcredentials.Config
	cache  *TokenCache
	logger *zap.Logger
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithTokenCache overrides the token cache location.
func WithTokenCache(cache *TokenCache) Option {
	return func(a *Authenticator) {
		a.cache = cache
	}
}

// WithTokenURL overrides the Spotify token endpoint.
func WithTokenURL(tokenURL string) Option {
	return func(a *Authenticator) {
		if tokenURL != "" {
			a.config.TokenURL = tokenURL
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Authenticator) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Authenticator from the provided credentials.
// Returns ErrMissingCredentials if either value is empty.
func New(cfg Config, opts ...Option) (*Authenticator, error) {
	clientID := strings.TrimSpace(cfg.ClientID)
	clientSecret := strings.TrimSpace(cfg.ClientSecret)

	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingCredentials
	}

	a := &Authenticator{
		config: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     spotifyauth.TokenURL,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.cache == nil {
		cache, err := DefaultTokenCache()
		if err != nil {
			return nil, fmt.Errorf("creating token cache: %w", err)
		}
		a.cache = cache
	}

	return a, nil
}

// Token returns a valid access token, reusing the cached one when it has not expired.
func (a *Authenticator) Token(ctx context.Context) (*oauth2.Token, error) {
	cached, err := a.cache.Load(a.config.ClientID)
	if err != nil {
		// A corrupt cache must not block the run
		a.logger.Warn("ignoring cached token", zap.Error(err))
	}
	if cached != nil && cached.Valid() {
		return cached, nil
	}

	token, err := a.config.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("requesting client credentials token: %w", err)
	}

	if err := a.cache.Save(a.config.ClientID, token); err != nil {
		// Log but don't fail - auth succeeded
		a.logger.Warn("failed to cache token", zap.Error(err))
	}
	return token, nil
}

// Client returns an authenticated Spotify client.
// The token source refreshes the app token when it expires mid-run.
func (a *Authenticator) Client(ctx context.Context) (*spotify.Client, error) {
	token, err := a.Token(ctx)
	if err != nil {
		return nil, err
	}

	source := oauth2.ReuseTokenSource(token, a.config.TokenSource(ctx))
	httpClient := oauth2.NewClient(ctx, source)

	return spotify.New(httpClient, spotify.WithRetry(true)), nil
}

// Logout removes the cached token.
func (a *Authenticator) Logout() error {
	return a.cache.Delete()
}
