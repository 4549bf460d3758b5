package db

import (
	"time"

	"github.com/google/uuid"
)

// Card is a verified card as stored for one run.
type Card struct {
	RunID       uuid.UUID
	CardNumber  string
	TrackID     string
	Name        string
	Artists     []string
	ReleaseDate string
	Year        *int    // nullable
	Month       *string // nullable
	Day         *string // nullable
	URL         string
	CreatedAt   time.Time
}
