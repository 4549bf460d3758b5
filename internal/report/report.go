// Package report renders run summaries as terminal tables.
package report

import (
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/justestif/go-hitster-cards/internal/cards"
	"github.com/justestif/go-hitster-cards/internal/pipeline"
)

// Years outside the four-digit range are treated as malformed.
const (
	minYear = 1000
	maxYear = 9999
)

// YearCount is the number of cards released in one year.
type YearCount struct {
	Year  int
	Count int
}

// YearOverview counts records per release year over the contiguous range
// from the earliest to the latest known year. Years without cards count zero.
// Records with an unknown or malformed year are skipped.
func YearOverview(records []cards.TrackRecord) []YearCount {
	counts := make(map[int]int)
	first, last := 0, 0
	for _, rec := range records {
		y := rec.Date.Year
		if y < minYear || y > maxYear {
			continue
		}
		if first == 0 || y < first {
			first = y
		}
		if y > last {
			last = y
		}
		counts[y]++
	}
	if first == 0 {
		return nil
	}

	overview := make([]YearCount, 0, last-first+1)
	for y := first; y <= last; y++ {
		overview = append(overview, YearCount{Year: y, Count: counts[y]})
	}
	return overview
}

// RenderYearOverview renders the per-year counts. Empty input renders "".
func RenderYearOverview(overview []YearCount) string {
	if len(overview) == 0 {
		return ""
	}
	rows := make([][]string, len(overview))
	for i, yc := range overview {
		rows[i] = []string{strconv.Itoa(yc.Year), strconv.Itoa(yc.Count)}
	}
	return renderTable(
		[]string{"Year", "Songs"},
		rows,
		[]text.Align{text.AlignLeft, text.AlignRight},
	)
}

// RenderUpdates renders the date updates applied during verification.
func RenderUpdates(updates []pipeline.Update) string {
	if len(updates) == 0 {
		return ""
	}
	rows := make([][]string, len(updates))
	for i, u := range updates {
		rows[i] = []string{
			u.CardNumber,
			u.Name,
			yearOrDash(u.OldYear),
			yearOrDash(u.NewYear),
			u.NewISO,
			string(u.Strategy),
		}
	}
	return renderTable(
		[]string{"Card", "Name", "From", "To", "Date", "Source"},
		rows,
		[]text.Align{text.AlignRight, text.AlignLeft, text.AlignRight, text.AlignRight, text.AlignLeft, text.AlignLeft},
	)
}

// RenderCards renders track records one row per card.
func RenderCards(records []cards.TrackRecord) string {
	if len(records) == 0 {
		return ""
	}
	rows := make([][]string, len(records))
	for i, rec := range records {
		rows[i] = []string{
			rec.CardNumber,
			rec.Name,
			strings.Join(rec.Artists, ", "),
			yearOrDash(rec.Date.Year),
			rec.Date.ISO,
		}
	}
	return renderTable(
		[]string{"Card", "Name", "Artists", "Year", "Date"},
		rows,
		[]text.Align{text.AlignRight, text.AlignLeft, text.AlignLeft, text.AlignRight, text.AlignLeft},
	)
}

func yearOrDash(y int) string {
	if y <= 0 {
		return "-"
	}
	return strconv.Itoa(y)
}

func renderTable(headers []string, rows [][]string, aligns []text.Align) string {
	columns := len(headers)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, columns)
	for i := range headers {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) {
			align = aligns[i]
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
