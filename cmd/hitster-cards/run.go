package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/justestif/go-hitster-cards/internal/cards"
	"github.com/justestif/go-hitster-cards/internal/config"
	"github.com/justestif/go-hitster-cards/internal/db"
	"github.com/justestif/go-hitster-cards/internal/musicbrainz"
	"github.com/justestif/go-hitster-cards/internal/pipeline"
	"github.com/justestif/go-hitster-cards/internal/report"
)

func newPipeline(cfg *config.Config, log *zap.Logger, fetcher pipeline.Fetcher, limit int) *pipeline.Pipeline {
	resolver := musicbrainz.NewResolver(&cfg.MusicBrainz, musicbrainz.WithLogger(log))
	return pipeline.New(fetcher, resolver,
		pipeline.WithDelay(cfg.Verify.Delay),
		pipeline.WithLimit(limit),
		pipeline.WithLogger(log),
	)
}

// checkStore fails fast when --store is set without a database URL.
func checkStore(cfg *config.Config, store bool) error {
	if store && cfg.Database.URL == "" {
		return fmt.Errorf("--store: %w (set DATABASE_URL)", db.ErrNoURL)
	}
	return nil
}

// finish writes the verified records, optionally stores them and prints the summary.
// An interrupted run writes nothing.
func finish(cmd *cobra.Command, cfg *config.Config, log *zap.Logger, result *pipeline.Result, out string, store bool) error {
	if err := cmd.Context().Err(); err != nil {
		log.Warn("run interrupted, output not written", zap.String("file", out), zap.Error(err))
		return fmt.Errorf("run interrupted before writing %s: %w", out, err)
	}

	log.Info("writing songs", zap.String("file", out), zap.Int("songs", len(result.Records)))
	if err := cards.WriteJSON(out, result.Records); err != nil {
		return err
	}

	if store {
		if err := storeResult(cmd, cfg, log, result); err != nil {
			return err
		}
	}

	w := cmd.OutOrStdout()
	if table := report.RenderUpdates(result.Updates); table != "" {
		fmt.Fprintln(w, "Release date updates")
		fmt.Fprintln(w, table)
	}
	if table := report.RenderYearOverview(report.YearOverview(result.Records)); table != "" {
		fmt.Fprintln(w, "Year overview")
		fmt.Fprintln(w, table)
	}
	fmt.Fprintf(w, "%d songs written to %s (%d dates updated)\n", len(result.Records), out, len(result.Updates))
	if store {
		fmt.Fprintf(w, "Stored as run %s\n", result.RunID)
	}
	return nil
}

func storeResult(cmd *cobra.Command, cfg *config.Config, log *zap.Logger, result *pipeline.Result) error {
	ctx := cmd.Context()

	database, err := db.New(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	repo := database.Cards()
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := repo.UpsertBatch(ctx, db.FromRecords(result.RunID, result.Records)); err != nil {
		return err
	}

	log.Info("stored cards", zap.String("run_id", result.RunID.String()), zap.Int("cards", len(result.Records)))
	return nil
}
