// Package reconcile decides when a MusicBrainz release date replaces the Spotify one.
package reconcile

import (
	"github.com/justestif/go-hitster-cards/internal/dates"
	"github.com/justestif/go-hitster-cards/internal/musicbrainz"
)

// Reconcile returns the date that should replace current, or nil when current stays.
//
// A candidate wins only when its year is strictly earlier than the current year,
// or when no current year is known. Year and ISO are always taken from the
// candidate. Month and day are each taken from the candidate when it has one;
// otherwise they are cleared if a known year changed and kept if it did not
// or if no current year was known.
func Reconcile(current *dates.PartialDate, candidate musicbrainz.Candidate) *dates.PartialDate {
	cand := candidate.Date
	if !cand.HasYear() {
		return nil
	}

	hasCurrent := current != nil && current.HasYear()
	if hasCurrent && cand.Year >= current.Year {
		return nil
	}

	next := dates.PartialDate{
		ISO:  candidate.ISO,
		Year: cand.Year,
	}
	if current != nil {
		next.Month = current.Month
		next.Day = current.Day
	}

	yearChanged := hasCurrent && cand.Year != current.Year

	if cand.Month != "" {
		next.Month = cand.Month
	} else if yearChanged {
		next.Month = ""
	}

	if cand.Day != "" {
		next.Day = cand.Day
	} else if yearChanged {
		next.Day = ""
	}

	if next.Month == "" {
		next.Day = ""
	}

	return &next
}
