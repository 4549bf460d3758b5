// Package spotify provides a wrapper around the Spotify Web API.
package spotify

import (
	"context"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
)

// TrackAPI is the subset of the Spotify client used for track lookups.
// *spotify.Client satisfies it.
type TrackAPI interface {
	GetTracks(ctx context.Context, ids []spotify.ID, opts ...spotify.RequestOption) ([]*spotify.FullTrack, error)
}

// Client wraps the Spotify API client with convenience methods.
type Client struct {
	api    TrackAPI
	logger *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api TrackAPI, opts ...Option) *Client {
	c := &Client{
		api:    api,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
