// Package cards defines the card catalog entries and the track records built from them.
package cards

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/justestif/go-hitster-cards/internal/dates"
)

// Entry links a physical card to a Spotify track.
type Entry struct {
	CardNumber string
	SpotifyID  string // Empty when the card has no linked track
}

// entryJSON mirrors an entry in the card database.
type entryJSON struct {
	CardNumber json.RawMessage `json:"CardNumber"`
	Spotify    string          `json:"Spotify"`
}

// UnmarshalJSON accepts card numbers encoded either as strings or numbers.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	number, err := looseString(raw.CardNumber)
	if err != nil {
		return fmt.Errorf("card number: %w", err)
	}
	e.CardNumber = number
	e.SpotifyID = strings.TrimSpace(raw.Spotify)
	return nil
}

// MarshalJSON writes the entry in the card database layout.
func (e Entry) MarshalJSON() ([]byte, error) {
	number, err := json.Marshal(e.CardNumber)
	if err != nil {
		return nil, err
	}
	return json.Marshal(entryJSON{CardNumber: number, Spotify: e.SpotifyID})
}

// TrackRecord is one card resolved to track metadata.
type TrackRecord struct {
	ID         string
	Name       string
	Artists    []string
	Date       dates.PartialDate
	URL        string
	CardNumber string
}

// FirstArtist returns the primary artist, or "" when none is known.
func (r TrackRecord) FirstArtist() string {
	if len(r.Artists) == 0 {
		return ""
	}
	return r.Artists[0]
}

// recordJSON is the output artifact layout consumed by the card renderer.
type recordJSON struct {
	Name        string          `json:"name"`
	Artists     []string        `json:"artists"`
	Day         string          `json:"day"`
	Month       string          `json:"month"`
	Year        json.RawMessage `json:"year"`
	ReleaseDate string          `json:"release_date"`
	URL         string          `json:"url"`
	ID          string          `json:"id"`
	CardNumber  json.RawMessage `json:"CardNumber"`
}

// MarshalJSON writes the record in the output artifact layout.
func (r TrackRecord) MarshalJSON() ([]byte, error) {
	year, err := json.Marshal(r.Date.YearString())
	if err != nil {
		return nil, err
	}
	number, err := json.Marshal(r.CardNumber)
	if err != nil {
		return nil, err
	}
	artists := r.Artists
	if artists == nil {
		artists = []string{}
	}
	return json.Marshal(recordJSON{
		Name:        r.Name,
		Artists:     artists,
		Day:         r.Date.Day,
		Month:       r.Date.Month,
		Year:        year,
		ReleaseDate: r.Date.ISO,
		URL:         r.URL,
		ID:          r.ID,
		CardNumber:  number,
	})
}

// UnmarshalJSON reads a record from the output artifact layout.
// The stored day and month are kept as-is rather than re-derived from release_date.
func (r *TrackRecord) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	yearStr, err := looseString(raw.Year)
	if err != nil {
		return fmt.Errorf("year: %w", err)
	}
	number, err := looseString(raw.CardNumber)
	if err != nil {
		return fmt.Errorf("card number: %w", err)
	}

	year, _ := strconv.Atoi(yearStr) // unknown year stays 0

	*r = TrackRecord{
		ID:      raw.ID,
		Name:    raw.Name,
		Artists: raw.Artists,
		Date: dates.PartialDate{
			ISO:   raw.ReleaseDate,
			Year:  year,
			Month: raw.Month,
			Day:   raw.Day,
		},
		URL:        raw.URL,
		CardNumber: number,
	}
	return nil
}

// looseString decodes a JSON string or number into a string. Null and absent become "".
func looseString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("expected string or number, got %s", raw)
	}
	return n.String(), nil
}
