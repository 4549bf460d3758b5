package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
)

const (
	cacheDirName  = "hitster-cards"
	cacheFileName = "spotify-token.json"
)

// TokenCache persists the app access token between runs.
type TokenCache struct {
	path string
}

// cacheEntry ties a token to the client ID that requested it.
type cacheEntry struct {
	ClientID string        `json:"client_id"`
	Token    *oauth2.Token `json:"token"`
	SavedAt  time.Time     `json:"saved_at"`
}

// DefaultTokenCache returns a cache at ~/.config/hitster-cards/spotify-token.json.
func DefaultTokenCache() (*TokenCache, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("getting user config dir: %w", err)
	}
	return NewTokenCache(filepath.Join(dir, cacheDirName, cacheFileName)), nil
}

// NewTokenCache creates a TokenCache backed by path.
func NewTokenCache(path string) *TokenCache {
	return &TokenCache{path: path}
}

// Path returns the file path where tokens are stored.
func (c *TokenCache) Path() string {
	return c.path
}

// Load returns the token cached for clientID.
// A missing file or a token cached for another client yields (nil, nil).
func (c *TokenCache) Load(clientID string) (*oauth2.Token, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token cache: %w", err)
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("parsing token cache: %w", err)
	}
	if entry.ClientID != clientID || entry.Token == nil {
		return nil, nil
	}
	return entry.Token, nil
}

// Save stores token for clientID, replacing any previous entry.
// The file is written to a temporary sibling and renamed into place.
func (c *TokenCache) Save(clientID string, token *oauth2.Token) error {
	if token == nil {
		return errors.New("cannot save nil token")
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.MarshalIndent(cacheEntry{
		ClientID: clientID,
		Token:    token,
		SavedAt:  time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	tmp, err := os.CreateTemp(dir, cacheFileName+".*")
	if err != nil {
		return fmt.Errorf("creating temp token file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing token cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing token cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("replacing token cache: %w", err)
	}
	return nil
}

// Delete removes the cache file. A missing file is not an error.
func (c *TokenCache) Delete() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token cache: %w", err)
	}
	return nil
}
