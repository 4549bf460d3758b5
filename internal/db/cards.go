package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justestif/go-hitster-cards/internal/cards"
	"github.com/justestif/go-hitster-cards/internal/dates"
)

const schema = `
	CREATE TABLE IF NOT EXISTS cards (
		run_id       uuid        NOT NULL,
		card_number  text        NOT NULL,
		track_id     text        NOT NULL,
		name         text        NOT NULL,
		artists      text[]      NOT NULL DEFAULT '{}',
		release_date text        NOT NULL DEFAULT '',
		year         int,
		month        text,
		day          text,
		url          text        NOT NULL DEFAULT '',
		created_at   timestamptz NOT NULL DEFAULT NOW(),
		PRIMARY KEY (run_id, card_number, track_id)
	)
`

// CardRepository handles card database operations.
type CardRepository struct {
	pool *pgxpool.Pool
}

// EnsureSchema creates the cards table if it does not exist.
func (r *CardRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("creating cards table: %w", err)
	}
	return nil
}

// UpsertBatch inserts or updates the cards of one run in a single round trip.
func (r *CardRepository) UpsertBatch(ctx context.Context, cs []Card) error {
	if len(cs) == 0 {
		return nil
	}

	query := `
		INSERT INTO cards (run_id, card_number, track_id, name, artists, release_date, year, month, day, url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (run_id, card_number, track_id) DO UPDATE SET
			name = EXCLUDED.name,
			artists = EXCLUDED.artists,
			release_date = EXCLUDED.release_date,
			year = EXCLUDED.year,
			month = EXCLUDED.month,
			day = EXCLUDED.day,
			url = EXCLUDED.url
	`

	batch := &pgx.Batch{}
	for _, c := range cs {
		batch.Queue(query,
			c.RunID,
			c.CardNumber,
			c.TrackID,
			c.Name,
			c.Artists,
			c.ReleaseDate,
			c.Year,
			c.Month,
			c.Day,
			c.URL,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range cs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch upserting cards: %w", err)
		}
	}
	return nil
}

const selectCards = `
	SELECT run_id, card_number, track_id, name, artists, release_date, year, month, day, url, created_at
	FROM cards
`

// ListForRun retrieves all cards stored for a run, ordered by card number.
// Returns ErrNotFound when the run has no cards.
func (r *CardRepository) ListForRun(ctx context.Context, runID uuid.UUID) ([]Card, error) {
	rows, err := r.pool.Query(ctx, selectCards+`WHERE run_id = $1 ORDER BY length(card_number), card_number`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying cards: %w", err)
	}
	defer rows.Close()

	var cs []Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cs = append(cs, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cards: %w", err)
	}
	if len(cs) == 0 {
		return nil, ErrNotFound
	}
	return cs, nil
}

// Get retrieves a single card of a run.
func (r *CardRepository) Get(ctx context.Context, runID uuid.UUID, cardNumber string) (*Card, error) {
	row := r.pool.QueryRow(ctx, selectCards+`WHERE run_id = $1 AND card_number = $2 LIMIT 1`, runID, cardNumber)
	c, err := scanCard(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func scanCard(row pgx.Row) (*Card, error) {
	var c Card
	err := row.Scan(
		&c.RunID,
		&c.CardNumber,
		&c.TrackID,
		&c.Name,
		&c.Artists,
		&c.ReleaseDate,
		&c.Year,
		&c.Month,
		&c.Day,
		&c.URL,
		&c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning card: %w", err)
	}
	return &c, nil
}

// FromRecords converts verified track records into rows for runID.
// Unknown year, month and day become NULL.
func FromRecords(runID uuid.UUID, records []cards.TrackRecord) []Card {
	cs := make([]Card, len(records))
	for i, rec := range records {
		artists := rec.Artists
		if artists == nil {
			artists = []string{}
		}
		cs[i] = Card{
			RunID:       runID,
			CardNumber:  rec.CardNumber,
			TrackID:     rec.ID,
			Name:        rec.Name,
			Artists:     artists,
			ReleaseDate: rec.Date.ISO,
			Year:        nullableInt(rec.Date.Year),
			Month:       nullableString(rec.Date.Month),
			Day:         nullableString(rec.Date.Day),
			URL:         rec.URL,
		}
	}
	return cs
}

// ToRecord converts a stored card back into a track record.
func (c Card) ToRecord() cards.TrackRecord {
	date := dates.PartialDate{ISO: c.ReleaseDate}
	if c.Year != nil {
		date.Year = *c.Year
	}
	if c.Month != nil {
		date.Month = *c.Month
	}
	if c.Day != nil {
		date.Day = *c.Day
	}
	return cards.TrackRecord{
		ID:         c.TrackID,
		Name:       c.Name,
		Artists:    c.Artists,
		Date:       date,
		URL:        c.URL,
		CardNumber: c.CardNumber,
	}
}

// ToRecords converts stored cards back into track records, keeping their order.
func ToRecords(cs []Card) []cards.TrackRecord {
	records := make([]cards.TrackRecord, len(cs))
	for i, c := range cs {
		records[i] = c.ToRecord()
	}
	return records
}

func nullableInt(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
