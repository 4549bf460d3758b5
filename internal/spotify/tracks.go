package spotify

import (
	"context"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"

	"github.com/justestif/go-hitster-cards/internal/cards"
	"github.com/justestif/go-hitster-cards/internal/dates"
)

// maxTracksPerRequest is the Spotify limit for GET /tracks.
const maxTracksPerRequest = 50

// FetchCards retrieves track metadata for the given card entries.
// Records are returned in entry order. Entries without a Spotify ID, entries in a
// batch that failed, and IDs Spotify did not return are logged and left out.
func (c *Client) FetchCards(ctx context.Context, entries []cards.Entry) []cards.TrackRecord {
	ids := make([]spotify.ID, 0, len(entries))
	for _, e := range entries {
		if e.SpotifyID != "" {
			ids = append(ids, spotify.ID(e.SpotifyID))
		}
	}

	total := len(ids)
	c.logger.Info("fetching track metadata", zap.Int("tracks", total))

	fetched := make(map[string]*spotify.FullTrack, total)

	for i := 0; i < total; i += maxTracksPerRequest {
		end := min(i+maxTracksPerRequest, total)
		batch := ids[i:end]

		tracks, err := c.api.GetTracks(ctx, batch)
		if err != nil {
			c.logger.Error("fetching track batch",
				zap.Int("start", i+1),
				zap.Int("end", end),
				zap.Error(err),
			)
			continue
		}

		for _, t := range tracks {
			if t == nil {
				continue // Unknown ID
			}
			fetched[t.ID.String()] = t
		}
	}

	records := make([]cards.TrackRecord, 0, len(fetched))
	for _, e := range entries {
		t, ok := fetched[e.SpotifyID]
		if e.SpotifyID == "" || !ok {
			c.logger.Warn("track data not found",
				zap.String("card", e.CardNumber),
				zap.String("spotify_id", e.SpotifyID),
			)
			continue
		}
		records = append(records, convertTrack(e.CardNumber, t))
	}

	c.logger.Info("fetched track metadata",
		zap.Int("records", len(records)),
		zap.Int("cards", len(entries)),
	)
	return records
}

// convertTrack converts a Spotify FullTrack to a cards.TrackRecord.
func convertTrack(cardNumber string, t *spotify.FullTrack) cards.TrackRecord {
	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}

	return cards.TrackRecord{
		ID:         t.ID.String(),
		Name:       t.Name,
		Artists:    artists,
		Date:       dates.Parse(t.Album.ReleaseDate),
		URL:        t.ExternalURLs["spotify"],
		CardNumber: cardNumber,
	}
}
