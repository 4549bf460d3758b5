// Package dates parses release dates of variable precision.
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// separator splits a release date into year, month and day segments.
const separator = "-"

// PartialDate is a release date where the year is known and month/day may not be.
// Month holds an English month name and Day a display form such as "10.".
// If Month is empty, Day is empty too.
type PartialDate struct {
	ISO   string // Raw date string as returned by the source
	Year  int    // 0 when unknown
	Month string
	Day   string
}

// Parse converts a "YYYY", "YYYY-MM" or "YYYY-MM-DD" string into a PartialDate.
// It never fails: segments that cannot be interpreted are left empty.
func Parse(raw string) PartialDate {
	d := PartialDate{ISO: raw}

	parts := strings.Split(raw, separator)

	if year, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil && year > 0 {
		d.Year = year
	}

	if len(parts) > 1 {
		d.Month = monthName(parts[1])
	}

	// Day precision requires month precision
	if len(parts) > 2 && d.Month != "" {
		d.Day = dayLabel(parts[2])
	}

	return d
}

// HasYear reports whether the year is known.
func (d PartialDate) HasYear() bool {
	return d.Year > 0
}

// YearString returns the year as a string, or "" when unknown.
func (d PartialDate) YearString() string {
	if !d.HasYear() {
		return ""
	}
	return strconv.Itoa(d.Year)
}

// monthName maps "1".."12" to January..December.
func monthName(segment string) string {
	n, err := strconv.Atoi(strings.TrimSpace(segment))
	if err != nil || n < 1 || n > 12 {
		return ""
	}
	return time.Month(n).String()
}

// dayLabel renders a numeric day as "<n>." (e.g. "05" -> "5.").
func dayLabel(segment string) string {
	n, err := strconv.Atoi(strings.TrimSpace(segment))
	if err != nil || n < 1 || n > 31 {
		return ""
	}
	return fmt.Sprintf("%d.", n)
}
