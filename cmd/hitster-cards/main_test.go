package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/justestif/go-hitster-cards/internal/auth"
	"github.com/justestif/go-hitster-cards/internal/cards"
	"github.com/justestif/go-hitster-cards/internal/db"
	"github.com/justestif/go-hitster-cards/internal/gameset"
)

const songsJSON = `[
    {"name": "Take On Me", "artists": ["a-ha"], "day": "", "month": "", "year": "1998",
     "release_date": "1998", "url": "https://open.spotify.com/track/1", "id": "1", "CardNumber": "1"},
    {"name": "Unknown Song", "artists": [], "day": "", "month": "", "year": "2001",
     "release_date": "2001", "url": "https://open.spotify.com/track/2", "id": "2", "CardNumber": "2"}
]`

// setupEnv isolates configuration from the host and points MusicBrainz at server.
func setupEnv(t *testing.T, serverURL string) string {
	t.Helper()
	for _, key := range []string{
		"SPOTIFY_ID", "SPOTIFY_SECRET", "CLIENT_ID", "CLIENT_SECRET",
		"MUSICBRAINZ_USER_AGENT", "LOG_FORMAT", "DATABASE_URL",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("MUSICBRAINZ_BASE_URL", serverURL)
	t.Setenv("VERIFY_DELAY", "0s")
	t.Setenv("LOG_LEVEL", "error")
	return t.TempDir()
}

func fakeMusicBrainz(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		query := r.URL.Query().Get("query")
		switch {
		case r.URL.Path == "/release-group" && strings.Contains(query, "Take On Me"):
			w.Write([]byte(`{"release-groups":[{"first-release-date":"1985-04-15"},{"first-release-date":"1984"}]}`))
		case r.URL.Path == "/release-group":
			w.Write([]byte(`{"release-groups":[]}`))
		default:
			w.Write([]byte(`{"recordings":[]}`))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestVerifyCommand(t *testing.T) {
	server := fakeMusicBrainz(t)
	dir := setupEnv(t, server.URL)

	input := filepath.Join(dir, "songs.json")
	require.NoError(t, os.WriteFile(input, []byte(songsJSON), 0644))

	out, err := execute(t, "verify", input, "--env-dir", dir)
	require.NoError(t, err)

	records, err := cards.ReadJSON(filepath.Join(dir, "songs_fixed.json"))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 1984, records[0].Date.Year)
	assert.Equal(t, "1984", records[0].Date.ISO)
	assert.Equal(t, 2001, records[1].Date.Year)

	assert.Contains(t, out, "Release date updates")
	assert.Contains(t, out, "Year overview")
	assert.Contains(t, out, "2 songs written")
}

func TestBuildCommand_FileMode(t *testing.T) {
	server := fakeMusicBrainz(t)
	dir := setupEnv(t, server.URL)

	input := filepath.Join(dir, "songs.json")
	require.NoError(t, os.WriteFile(input, []byte(songsJSON), 0644))
	output := filepath.Join(dir, "out", "songs_br.json")

	_, err := execute(t, "build", "--file", input, "--out", output, "--limit", "1", "--env-dir", dir)
	require.NoError(t, err)

	records, err := cards.ReadJSON(output)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1984, records[0].Date.Year)
}

func TestBuildCommand_MissingCredentials(t *testing.T) {
	server := fakeMusicBrainz(t)
	dir := setupEnv(t, server.URL)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "gamesets.toml"), []byte("[Brazil]\nsku = \"aaaa0019\"\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "database.json"),
		[]byte(`{"gamesets":[{"sku":"aaaa0019","gameset_data":{"cards":[{"CardNumber":"1","Spotify":"abc"}]}}]}`), 0644))

	_, err := execute(t, "build",
		"--gamesets", filepath.Join(dir, "gamesets.toml"),
		"--db", filepath.Join(dir, "database.json"),
		"--out", filepath.Join(dir, "songs_br.json"),
		"--env-dir", dir,
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SPOTIFY_ID")

	_, statErr := os.Stat(filepath.Join(dir, "songs_br.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestBuildCommand_UnknownGameset(t *testing.T) {
	server := fakeMusicBrainz(t)
	dir := setupEnv(t, server.URL)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gamesets.toml"), []byte("[Brazil]\nsku = \"aaaa0019\"\n"), 0644))

	_, err := execute(t, "build", "--country", "zz", "--gamesets", filepath.Join(dir, "gamesets.toml"), "--env-dir", dir)
	assert.ErrorIs(t, err, gameset.ErrGamesetNotFound)
}

func TestStoreRequiresDatabaseURL(t *testing.T) {
	server := fakeMusicBrainz(t)
	dir := setupEnv(t, server.URL)
	input := filepath.Join(dir, "songs.json")
	require.NoError(t, os.WriteFile(input, []byte(songsJSON), 0644))

	_, err := execute(t, "verify", input, "--store", "--env-dir", dir)
	assert.ErrorIs(t, err, db.ErrNoURL)
}

func TestVerifyCommand_InterruptedWritesNothing(t *testing.T) {
	server := fakeMusicBrainz(t)
	dir := setupEnv(t, server.URL)

	input := filepath.Join(dir, "songs.json")
	require.NoError(t, os.WriteFile(input, []byte(songsJSON), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := executeContext(t, ctx, "verify", input, "--env-dir", dir)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, out, "songs written")

	_, statErr := os.Stat(filepath.Join(dir, "songs_fixed.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestVerifyCommand_NoRunIDWithoutStore(t *testing.T) {
	server := fakeMusicBrainz(t)
	dir := setupEnv(t, server.URL)
	input := filepath.Join(dir, "songs.json")
	require.NoError(t, os.WriteFile(input, []byte(songsJSON), 0644))

	out, err := execute(t, "verify", input, "--env-dir", dir)
	require.NoError(t, err)
	assert.NotContains(t, out, "Stored as run")
}

func TestShowRunCommand_InvalidRunID(t *testing.T) {
	dir := setupEnv(t, "http://127.0.0.1:0")

	_, err := execute(t, "show-run", "not-a-uuid", "--env-dir", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid run id")
}

func TestShowRunCommand_RequiresDatabaseURL(t *testing.T) {
	dir := setupEnv(t, "http://127.0.0.1:0")

	_, err := execute(t, "show-run", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", "--env-dir", dir)
	assert.ErrorIs(t, err, db.ErrNoURL)
}

func TestLogoutCommand(t *testing.T) {
	dir := setupEnv(t, "http://127.0.0.1:0")
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("SPOTIFY_ID", "client")
	t.Setenv("SPOTIFY_SECRET", "secret")

	cache, err := auth.DefaultTokenCache()
	require.NoError(t, err)
	require.NoError(t, cache.Save("client", &oauth2.Token{AccessToken: "tok"}))
	require.Equal(t, filepath.Join(dir, "hitster-cards", "spotify-token.json"), cache.Path())

	out, err := execute(t, "logout", "--env-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "token cache cleared")

	_, statErr := os.Stat(cache.Path())
	assert.True(t, os.IsNotExist(statErr))

	// Logging out twice is fine.
	_, err = execute(t, "logout", "--env-dir", dir)
	assert.NoError(t, err)
}

func TestLogoutCommand_MissingCredentials(t *testing.T) {
	dir := setupEnv(t, "http://127.0.0.1:0")
	t.Setenv("XDG_CONFIG_HOME", dir)

	_, err := execute(t, "logout", "--env-dir", dir)
	assert.ErrorIs(t, err, auth.ErrMissingCredentials)
}

func TestFixedPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"songs.json", "songs_fixed.json"},
		{"data/songs_br.json", "data/songs_br_fixed.json"},
		{"songs", "songs_fixed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fixedPath(tt.in), tt.in)
	}
}
