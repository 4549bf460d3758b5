// Package pipeline fetches card metadata and verifies release dates one record at a time.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/justestif/go-hitster-cards/internal/cards"
	"github.com/justestif/go-hitster-cards/internal/musicbrainz"
	"github.com/justestif/go-hitster-cards/internal/reconcile"
)

// DefaultDelay is the pause after every verified record, keeping MusicBrainz
// under its one request per second limit.
const DefaultDelay = 1200 * time.Millisecond

// Config holds verification settings.
type Config struct {
	Delay time.Duration `mapstructure:"delay" default:"1.2s"`
}

// Fetcher resolves card entries to track records in entry order.
type Fetcher interface {
	FetchCards(ctx context.Context, entries []cards.Entry) []cards.TrackRecord
}

// DateResolver finds the earliest known release date of a track.
type DateResolver interface {
	Resolve(ctx context.Context, artist, track string) (*musicbrainz.Candidate, bool)
}

// Update describes a release date replaced during verification.
type Update struct {
	CardNumber string
	Name       string
	OldYear    int
	NewYear    int
	NewISO     string
	Strategy   musicbrainz.Strategy
}

// Result is the outcome of one pipeline run.
type Result struct {
	RunID   uuid.UUID
	Records []cards.TrackRecord
	Updates []Update
}

// Pipeline runs fetch -> verify -> merge sequentially.
type Pipeline struct {
	fetcher  Fetcher
	resolver DateResolver
	delay    time.Duration
	limit    int
	sleep    func(time.Duration)
	logger   *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDelay sets the fixed pause after each record.
func WithDelay(d time.Duration) Option {
	return func(p *Pipeline) {
		if d >= 0 {
			p.delay = d
		}
	}
}

// WithLimit keeps only the first n records before verification. Zero means no limit.
func WithLimit(n int) Option {
	return func(p *Pipeline) {
		if n >= 0 {
			p.limit = n
		}
	}
}

// WithSleep replaces the blocking sleep, mainly for tests.
func WithSleep(sleep func(time.Duration)) Option {
	return func(p *Pipeline) {
		if sleep != nil {
			p.sleep = sleep
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a Pipeline. fetcher may be nil when only Verify is used.
func New(fetcher Fetcher, resolver DateResolver, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher:  fetcher,
		resolver: resolver,
		delay:    DefaultDelay,
		sleep:    time.Sleep,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run fetches metadata for entries once, then verifies every record in order.
func (p *Pipeline) Run(ctx context.Context, entries []cards.Entry) *Result {
	records := p.fetcher.FetchCards(ctx, entries)
	return p.Verify(ctx, records)
}

// Verify verifies already fetched records, updating their dates in place.
func (p *Pipeline) Verify(ctx context.Context, records []cards.TrackRecord) *Result {
	runID := uuid.New()
	log := p.logger.With(zap.String("run_id", runID.String()))

	if p.limit > 0 && len(records) > p.limit {
		log.Info("limiting records", zap.Int("limit", p.limit), zap.Int("records", len(records)))
		records = Limit(records, p.limit)
	}

	log.Info("verifying release dates", zap.Int("records", len(records)))
	updates := p.verifyRecords(ctx, log, records)
	log.Info("verification complete",
		zap.Int("records", len(records)),
		zap.Int("updated", len(updates)),
	)

	return &Result{
		RunID:   runID,
		Records: records,
		Updates: updates,
	}
}

// verifyRecords resolves each record against MusicBrainz and applies the reconciled date.
// It sleeps after every record whether or not a request was made, and stops
// before the next record once ctx is cancelled.
func (p *Pipeline) verifyRecords(ctx context.Context, log *zap.Logger, records []cards.TrackRecord) []Update {
	var updates []Update

	for i := range records {
		if err := ctx.Err(); err != nil {
			log.Warn("verification interrupted", zap.Int("verified", i), zap.Int("records", len(records)), zap.Error(err))
			break
		}
		rec := &records[i]

		if candidate, ok := p.resolver.Resolve(ctx, rec.FirstArtist(), rec.Name); ok {
			current := rec.Date
			if next := reconcile.Reconcile(&current, *candidate); next != nil {
				log.Info("updating release date",
					zap.String("card", rec.CardNumber),
					zap.String("name", rec.Name),
					zap.String("from", current.YearString()),
					zap.String("to", next.YearString()),
					zap.String("strategy", string(candidate.Strategy)),
				)
				updates = append(updates, Update{
					CardNumber: rec.CardNumber,
					Name:       rec.Name,
					OldYear:    current.Year,
					NewYear:    next.Year,
					NewISO:     next.ISO,
					Strategy:   candidate.Strategy,
				})
				rec.Date = *next
			}
		}

		p.sleep(p.delay)
	}

	return updates
}

// Limit returns the first n records, or all of them when n is zero or larger than the slice.
func Limit(records []cards.TrackRecord, n int) []cards.TrackRecord {
	if n <= 0 || n >= len(records) {
		return records
	}
	return records[:n]
}
