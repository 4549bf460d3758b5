package spotify

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/justestif/go-hitster-cards/internal/cards"
	"github.com/justestif/go-hitster-cards/internal/dates"
)

// fakeTrackAPI serves tracks from a map and can fail selected batches.
type fakeTrackAPI struct {
	tracks    map[spotify.ID]*spotify.FullTrack
	failCalls map[int]bool // 1-based call numbers that return an error
	batches   [][]spotify.ID
}

func newFakeTrackAPI() *fakeTrackAPI {
	return &fakeTrackAPI{
		tracks:    make(map[spotify.ID]*spotify.FullTrack),
		failCalls: make(map[int]bool),
	}
}

func (f *fakeTrackAPI) add(id, name, releaseDate string, artists ...string) {
	simple := make([]spotify.SimpleArtist, len(artists))
	for i, a := range artists {
		simple[i] = spotify.SimpleArtist{Name: a}
	}
	f.tracks[spotify.ID(id)] = &spotify.FullTrack{
		SimpleTrack: spotify.SimpleTrack{
			ID:           spotify.ID(id),
			Name:         name,
			Artists:      simple,
			ExternalURLs: map[string]string{"spotify": "https://open.spotify.com/track/" + id},
		},
		Album: spotify.SimpleAlbum{ReleaseDate: releaseDate},
	}
}

func (f *fakeTrackAPI) GetTracks(ctx context.Context, ids []spotify.ID, opts ...spotify.RequestOption) ([]*spotify.FullTrack, error) {
	f.batches = append(f.batches, append([]spotify.ID(nil), ids...))
	if f.failCalls[len(f.batches)] {
		return nil, errors.New("spotify: 502 bad gateway")
	}

	// Spotify returns null for unknown IDs, in request order
	out := make([]*spotify.FullTrack, len(ids))
	for i, id := range ids {
		out[i] = f.tracks[id]
	}
	return out, nil
}

func TestConvertTrack(t *testing.T) {
	tests := []struct {
		name            string
		track           *spotify.FullTrack
		expectedArtists []string
		expectedDate    dates.PartialDate
	}{
		{
			name: "single artist full date",
			track: &spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{
					ID:           "track123",
					Name:         "Test Song",
					Artists:      []spotify.SimpleArtist{{Name: "Artist One"}},
					ExternalURLs: map[string]string{"spotify": "https://open.spotify.com/track/track123"},
				},
				Album: spotify.SimpleAlbum{ReleaseDate: "1998-05-02"},
			},
			expectedArtists: []string{"Artist One"},
			expectedDate:    dates.PartialDate{ISO: "1998-05-02", Year: 1998, Month: "May", Day: "2."},
		},
		{
			name: "multiple artists year precision",
			track: &spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{
					ID:   "track456",
					Name: "Collab Track",
					Artists: []spotify.SimpleArtist{
						{Name: "Artist A"},
						{Name: "Artist B"},
					},
				},
				Album: spotify.SimpleAlbum{ReleaseDate: "2001"},
			},
			expectedArtists: []string{"Artist A", "Artist B"},
			expectedDate:    dates.PartialDate{ISO: "2001", Year: 2001},
		},
		{
			name: "no artists",
			track: &spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{ID: "track000", Name: "Unknown Track"},
			},
			expectedArtists: []string{},
			expectedDate:    dates.PartialDate{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertTrack("7", tt.track)

			assert.Equal(t, tt.track.ID.String(), got.ID)
			assert.Equal(t, tt.track.Name, got.Name)
			assert.Equal(t, tt.expectedArtists, got.Artists)
			assert.Equal(t, tt.expectedDate, got.Date)
			assert.Equal(t, tt.track.ExternalURLs["spotify"], got.URL)
			assert.Equal(t, "7", got.CardNumber)
		})
	}
}

func TestFetchCards_PreservesEntryOrder(t *testing.T) {
	api := newFakeTrackAPI()
	api.add("c", "Gamma", "1990", "Z")
	api.add("a", "Alpha", "1970-01-01", "X")
	api.add("b", "Beta", "1980-02", "Y")

	entries := []cards.Entry{
		{CardNumber: "1", SpotifyID: "b"},
		{CardNumber: "2", SpotifyID: ""},
		{CardNumber: "3", SpotifyID: "a"},
		{CardNumber: "4", SpotifyID: "missing"},
		{CardNumber: "5", SpotifyID: "c"},
	}

	core, logs := observer.New(zapcore.InfoLevel)
	client := New(api, WithLogger(zap.New(core)))

	records := client.FetchCards(context.Background(), entries)

	require.Len(t, records, 3)
	assert.Equal(t, []string{"1", "3", "5"}, cardNumbers(records))
	assert.Equal(t, []string{"Beta", "Alpha", "Gamma"}, []string{records[0].Name, records[1].Name, records[2].Name})

	// The empty ID never reaches Spotify
	require.Len(t, api.batches, 1)
	assert.Equal(t, []spotify.ID{"b", "a", "missing", "c"}, api.batches[0])

	warnings := logs.FilterMessage("track data not found").AllUntimed()
	require.Len(t, warnings, 2)
	assert.Equal(t, zapcore.WarnLevel, warnings[0].Level)
	assert.Equal(t, "2", warnings[0].ContextMap()["card"])
	assert.Equal(t, "4", warnings[1].ContextMap()["card"])
}

func TestFetchCards_FailingChunkIsSkipped(t *testing.T) {
	api := newFakeTrackAPI()
	var entries []cards.Entry
	for i := 0; i < 60; i++ {
		id := fmt.Sprintf("id%02d", i)
		api.add(id, "Song "+id, "2000", "Artist")
		entries = append(entries, cards.Entry{CardNumber: fmt.Sprint(i + 1), SpotifyID: id})
	}
	api.failCalls[2] = true

	core, logs := observer.New(zapcore.InfoLevel)
	client := New(api, WithLogger(zap.New(core)))

	records := client.FetchCards(context.Background(), entries)

	require.Len(t, api.batches, 2)
	assert.Len(t, api.batches[0], 50)
	assert.Len(t, api.batches[1], 10)

	require.Len(t, records, 50)
	for i, r := range records {
		assert.Equal(t, fmt.Sprintf("id%02d", i), r.ID)
	}
	assert.Equal(t, 1, logs.FilterMessage("fetching track batch").Len())
	assert.Equal(t, 10, logs.FilterMessage("track data not found").Len())
}

func TestFetchCards_Empty(t *testing.T) {
	api := newFakeTrackAPI()
	client := New(api)

	records := client.FetchCards(context.Background(), nil)

	assert.Empty(t, records)
	assert.Empty(t, api.batches)
}

func TestBatchChunking(t *testing.T) {
	tests := []struct {
		name          string
		totalTracks   int
		expectedSizes []int
	}{
		{"single track", 1, []int{1}},
		{"exactly 50", 50, []int{50}},
		{"51 tracks", 51, []int{50, 1}},
		{"exactly 100", 100, []int{50, 50}},
		{"125 tracks", 125, []int{50, 50, 25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeTrackAPI()
			var entries []cards.Entry
			for i := 0; i < tt.totalTracks; i++ {
				entries = append(entries, cards.Entry{CardNumber: fmt.Sprint(i), SpotifyID: fmt.Sprintf("t%d", i)})
			}

			New(api).FetchCards(context.Background(), entries)

			sizes := make([]int, len(api.batches))
			for i, b := range api.batches {
				sizes[i] = len(b)
			}
			assert.Equal(t, tt.expectedSizes, sizes)
		})
	}
}

func cardNumbers(records []cards.TrackRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.CardNumber
	}
	return out
}
