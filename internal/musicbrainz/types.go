package musicbrainz

import "github.com/justestif/go-hitster-cards/internal/dates"

// Strategy names the search that produced a candidate.
type Strategy string

const (
	// StrategyReleaseGroup searches release groups by first release date.
	StrategyReleaseGroup Strategy = "release-group"
	// StrategyRecording searches recordings and their releases (fallback).
	StrategyRecording Strategy = "recording"
)

// Candidate is the earliest release date found for a track.
type Candidate struct {
	ISO      string
	Date     dates.PartialDate
	Strategy Strategy
}

// releaseGroupResponse is the JSON response for /release-group searches.
type releaseGroupResponse struct {
	Count         int            `json:"count"`
	ReleaseGroups []releaseGroup `json:"release-groups"`
}

type releaseGroup struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	PrimaryType      string `json:"primary-type,omitempty"`
	FirstReleaseDate string `json:"first-release-date,omitempty"`
}

// recordingResponse is the JSON response for /recording searches.
type recordingResponse struct {
	Count      int         `json:"count"`
	Recordings []recording `json:"recordings"`
}

type recording struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Releases []release `json:"releases,omitempty"`
}

type release struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date,omitempty"`
}
