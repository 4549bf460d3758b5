// Package config loads application configuration from the environment and an optional .env file.
package config

import (
	"path/filepath"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/justestif/go-hitster-cards/internal/auth"
	"github.com/justestif/go-hitster-cards/internal/db"
	"github.com/justestif/go-hitster-cards/internal/logger"
	"github.com/justestif/go-hitster-cards/internal/musicbrainz"
	"github.com/justestif/go-hitster-cards/internal/pipeline"
)

// Config holds all configuration for the application.
type Config struct {
	// Spotify holds the app credentials (SPOTIFY_ID, SPOTIFY_SECRET).
	Spotify auth.Config `mapstructure:"spotify"`
	// MusicBrainz holds the secondary source endpoint and client identity.
	MusicBrainz musicbrainz.Config `mapstructure:"musicbrainz"`
	// Verify holds the date verification settings (VERIFY_DELAY).
	Verify pipeline.Config `mapstructure:"verify"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds the optional Postgres sink (DATABASE_URL).
	Database db.Config `mapstructure:"database"`
}

// legacyEnv lists older variable names accepted as fallbacks.
var legacyEnv = map[string][]string{
	"spotify.id":     {"SPOTIFY_ID", "CLIENT_ID"},
	"spotify.secret": {"SPOTIFY_SECRET", "CLIENT_SECRET"},
}

// Load reads configuration from environment variables and dir/.env.
func Load(dir string) (*Config, error) {
	// Ignore error if file doesn't exist
	_ = godotenv.Overload(filepath.Join(dir, ".env"))

	v := viper.New()

	bindValues(v, Config{}, "")

	// SPOTIFY_ID -> spotify.id
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range legacyEnv {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// bindValues walks the struct and registers each mapstructure key with its
// 'default' tag so AutomaticEnv can resolve it.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		v.SetDefault(key, field.Tag.Get("default"))
	}
}
