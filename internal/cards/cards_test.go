package cards

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justestif/go-hitster-cards/internal/dates"
)

func TestEntryUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Entry
	}{
		{
			name:     "string card number",
			input:    `{"CardNumber": "12", "Spotify": "4uLU6hMCjMI75M1A2tKUQC"}`,
			expected: Entry{CardNumber: "12", SpotifyID: "4uLU6hMCjMI75M1A2tKUQC"},
		},
		{
			name:     "numeric card number",
			input:    `{"CardNumber": 7, "Spotify": "abc"}`,
			expected: Entry{CardNumber: "7", SpotifyID: "abc"},
		},
		{
			name:     "missing spotify id",
			input:    `{"CardNumber": "3"}`,
			expected: Entry{CardNumber: "3"},
		},
		{
			name:     "whitespace spotify id",
			input:    `{"CardNumber": "4", "Spotify": "  "}`,
			expected: Entry{CardNumber: "4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Entry
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEntryUnmarshal_InvalidCardNumber(t *testing.T) {
	var got Entry
	err := json.Unmarshal([]byte(`{"CardNumber": [1], "Spotify": "x"}`), &got)
	assert.Error(t, err)
}

func TestTrackRecordMarshal(t *testing.T) {
	record := TrackRecord{
		ID:      "track123",
		Name:    "Bohemian Rhapsody",
		Artists: []string{"Queen"},
		Date: dates.PartialDate{
			ISO:   "1975-10-31",
			Year:  1975,
			Month: "October",
			Day:   "31.",
		},
		URL:        "https://open.spotify.com/track/track123",
		CardNumber: "42",
	}

	data, err := json.Marshal(record)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"name": "Bohemian Rhapsody",
		"artists": ["Queen"],
		"day": "31.",
		"month": "October",
		"year": "1975",
		"release_date": "1975-10-31",
		"url": "https://open.spotify.com/track/track123",
		"id": "track123",
		"CardNumber": "42"
	}`, string(data))
}

func TestTrackRecordMarshal_EmptyFields(t *testing.T) {
	data, err := json.Marshal(TrackRecord{ID: "x"})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "", decoded["year"])
	assert.Equal(t, []any{}, decoded["artists"])
}

func TestTrackRecordUnmarshal_KeepsStoredFields(t *testing.T) {
	// Hand-edited files may disagree with release_date; stored fields win.
	input := `{
		"name": "Song",
		"artists": ["A", "B"],
		"day": "",
		"month": "May",
		"year": 1999,
		"release_date": "2001-01-01",
		"url": "u",
		"id": "i",
		"CardNumber": 5
	}`

	var got TrackRecord
	require.NoError(t, json.Unmarshal([]byte(input), &got))

	assert.Equal(t, 1999, got.Date.Year)
	assert.Equal(t, "May", got.Date.Month)
	assert.Equal(t, "", got.Date.Day)
	assert.Equal(t, "2001-01-01", got.Date.ISO)
	assert.Equal(t, "5", got.CardNumber)
	assert.Equal(t, "A", got.FirstArtist())
}

func TestFirstArtist_None(t *testing.T) {
	assert.Equal(t, "", TrackRecord{}.FirstArtist())
}

func TestWriteAndReadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "songs_br.json")

	records := []TrackRecord{
		{ID: "a", Name: "First", Artists: []string{"X"}, Date: dates.Parse("1987-03-10"), URL: "u1", CardNumber: "1"},
		{ID: "b", Name: "Second", Artists: []string{"Y", "Z"}, Date: dates.Parse("1999"), URL: "u2", CardNumber: "2"},
	}

	require.NoError(t, WriteJSON(path, records))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n    {", "output should use 4-space indentation")

	loaded, err := ReadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestWriteJSON_Nil(t *testing.T) {
	path := filepath.Join(t.TempDir(), "songs.json")

	require.NoError(t, WriteJSON(path, nil))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestReadJSON_Missing(t *testing.T) {
	_, err := ReadJSON(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
