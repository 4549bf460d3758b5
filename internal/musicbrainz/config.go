// Package musicbrainz looks up original release dates in the MusicBrainz catalog.
package musicbrainz

import "strings"

const (
	// DefaultBaseURL is the MusicBrainz web service root.
	DefaultBaseURL = "https://musicbrainz.org/ws/2"

	// DefaultUserAgent identifies this client, as MusicBrainz requires.
	DefaultUserAgent = "HitsterDateVerifier/1.0 ( contact@example.com )"
)

// Config holds MusicBrainz client configuration.
type Config struct {
	BaseURL   string `mapstructure:"base_url" default:"https://musicbrainz.org/ws/2"`
	UserAgent string `mapstructure:"user_agent" default:"HitsterDateVerifier/1.0 ( contact@example.com )"`
}

// withDefaults fills empty fields.
func (c Config) withDefaults() Config {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.UserAgent = strings.TrimSpace(c.UserAgent)
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}
