package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/justestif/go-hitster-cards/internal/dates"
	"github.com/justestif/go-hitster-cards/internal/httpretry"
)

// Search result limits per strategy.
const (
	releaseGroupLimit = 20
	recordingLimit    = 50
)

// parenthetical matches a track name followed by a parenthesised suffix such as "(Remastered)".
var parenthetical = regexp.MustCompile(`(.*)\s*\(.*\)`)

// ClientFactory builds the HTTP client handle used for one Resolve call.
type ClientFactory func() *httpretry.Client

// Resolver finds the earliest known release date of a track.
// It tries the release-group search first and falls back to the recording search.
type Resolver struct {
	baseURL   string
	userAgent string
	newClient ClientFactory
	logger    *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClientFactory overrides how per-call HTTP clients are built.
func WithClientFactory(f ClientFactory) Option {
	return func(r *Resolver) {
		if f != nil {
			r.newClient = f
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a Resolver from the provided configuration.
func NewResolver(cfg *Config, opts ...Option) *Resolver {
	var c Config
	if cfg != nil {
		c = *cfg
	}
	c = c.withDefaults()

	r := &Resolver{
		baseURL:   c.BaseURL,
		userAgent: c.UserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.newClient == nil {
		logger := r.logger
		r.newClient = func() *httpretry.Client {
			return httpretry.New(httpretry.WithLogger(logger))
		}
	}
	return r
}

// Resolve returns the earliest release date MusicBrainz knows for the track.
// Lookup failures are logged and reported as not found.
func (r *Resolver) Resolve(ctx context.Context, artist, track string) (*Candidate, bool) {
	client := r.newClient()
	defer client.CloseIdleConnections()

	log := r.logger.With(zap.String("artist", artist), zap.String("track", track))

	strategy := StrategyReleaseGroup
	earliest := r.earliestReleaseGroupDate(ctx, client, log, artist, track)
	if earliest == "" {
		strategy = StrategyRecording
		earliest = r.earliestRecordingDate(ctx, client, log, artist, track)
	}
	if earliest == "" {
		log.Warn("no release date found")
		return nil, false
	}

	log.Debug("release date found",
		zap.String("strategy", string(strategy)),
		zap.String("date", earliest),
	)
	return &Candidate{
		ISO:      earliest,
		Date:     dates.Parse(earliest),
		Strategy: strategy,
	}, true
}

// earliestReleaseGroupDate searches release groups using the cleaned track name.
func (r *Resolver) earliestReleaseGroupDate(ctx context.Context, client *httpretry.Client, log *zap.Logger, artist, track string) string {
	name := track
	if clean, ok := cleanName(track); ok {
		name = clean
	}

	var resp releaseGroupResponse
	if err := r.search(ctx, client, "release-group", releaseGroupQuery(artist, name), releaseGroupLimit, &resp); err != nil {
		log.Warn("release group search failed", zap.Error(err))
		return ""
	}

	earliest := ""
	for _, rg := range resp.ReleaseGroups {
		earliest = earlier(earliest, rg.FirstReleaseDate)
	}
	return earliest
}

// earliestRecordingDate searches recordings with the raw name, then with the
// cleaned name when the raw name carries a parenthetical suffix.
func (r *Resolver) earliestRecordingDate(ctx context.Context, client *httpretry.Client, log *zap.Logger, artist, track string) string {
	var resp recordingResponse
	if err := r.search(ctx, client, "recording", recordingQuery(artist, track), recordingLimit, &resp); err != nil {
		log.Warn("recording search failed", zap.Error(err))
		return ""
	}
	earliest := earliestReleaseDate("", resp.Recordings)

	if !strings.Contains(track, "(") {
		return earliest
	}
	clean, ok := cleanName(track)
	if !ok || clean == "" || clean == track {
		return earliest
	}

	var cleanResp recordingResponse
	if err := r.search(ctx, client, "recording", recordingQuery(artist, clean), recordingLimit, &cleanResp); err != nil {
		log.Warn("clean name recording search failed", zap.String("clean_name", clean), zap.Error(err))
		return earliest
	}
	return earliestReleaseDate(earliest, cleanResp.Recordings)
}

// search runs one query against a MusicBrainz search endpoint and decodes the result into out.
func (r *Resolver) search(ctx context.Context, client *httpretry.Client, entity, query string, limit int, out any) error {
	params := url.Values{
		"query": {query},
		"fmt":   {"json"},
		"limit": {strconv.Itoa(limit)},
	}
	headers := http.Header{
		"User-Agent": {r.userAgent},
		"Accept":     {"application/json"},
	}

	resp, err := client.Get(ctx, r.baseURL+"/"+entity, params, headers)
	if err != nil {
		return fmt.Errorf("querying %s: %w", entity, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("querying %s: HTTP %d", entity, resp.StatusCode)
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("parsing %s response: %w", entity, err)
	}
	return nil
}

func releaseGroupQuery(artist, name string) string {
	return fmt.Sprintf(`artist:"%s" AND releasegroup:"%s"`, artist, name)
}

func recordingQuery(artist, name string) string {
	return fmt.Sprintf(`artist:"%s" AND recording:"%s"`, artist, name)
}

// cleanName strips a parenthetical suffix, e.g. "Song (Remastered 2011)" -> "Song".
// The second result is false when the name has no parenthetical.
func cleanName(track string) (string, bool) {
	m := parenthetical.FindStringSubmatch(track)
	if m == nil {
		return track, false
	}
	return strings.TrimSpace(m[1]), true
}

// earliestReleaseDate folds the release dates of all recordings into current.
func earliestReleaseDate(current string, recordings []recording) string {
	for _, rec := range recordings {
		for _, rel := range rec.Releases {
			current = earlier(current, rel.Date)
		}
	}
	return current
}

// earlier returns the lexicographically smaller non-empty date string.
// Dates of mixed precision compare as strings ("1990" < "1990-05").
func earlier(current, candidate string) string {
	if candidate == "" {
		return current
	}
	if current == "" || candidate < current {
		return candidate
	}
	return current
}
