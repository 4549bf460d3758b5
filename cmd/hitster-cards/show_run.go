package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/justestif/go-hitster-cards/internal/cards"
	"github.com/justestif/go-hitster-cards/internal/db"
	"github.com/justestif/go-hitster-cards/internal/report"
)

func newShowRunCommand(ctx *commandContext) *cobra.Command {
	var card string
	var out string

	cmd := &cobra.Command{
		Use:   "show-run <run-id>",
		Short: "Show the cards stored in Postgres for a run",
		Long: `Show-run reads the cards a previous build or verify stored with --store
and prints them. With --out the cards are also written as a songs JSON file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid run id %q: %w", args[0], err)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return fmt.Errorf("show-run: %w (set DATABASE_URL)", db.ErrNoURL)
			}

			database, err := db.New(cmd.Context(), cfg.Database.URL)
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			defer database.Close()

			stored, err := loadRun(cmd, database.Cards(), runID, card)
			if errors.Is(err, db.ErrNotFound) {
				if card != "" {
					return fmt.Errorf("card %s in run %s: %w", card, runID, err)
				}
				return fmt.Errorf("run %s: %w", runID, err)
			}
			if err != nil {
				return err
			}

			records := db.ToRecords(stored)
			log.Info("loaded stored cards", zap.String("run_id", runID.String()), zap.Int("cards", len(records)))

			if out != "" {
				if err := cards.WriteJSON(out, records); err != nil {
					return err
				}
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, report.RenderCards(records))
			if card == "" {
				if table := report.RenderYearOverview(report.YearOverview(records)); table != "" {
					fmt.Fprintln(w, "Year overview")
					fmt.Fprintln(w, table)
				}
			}
			fmt.Fprintf(w, "%d cards in run %s\n", len(records), runID)
			return nil
		},
	}

	cmd.Flags().StringVar(&card, "card", "", "Only show this card number")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Also write the cards to this JSON file")

	return cmd
}

// loadRun fetches one card when cardNumber is set, otherwise the whole run.
func loadRun(cmd *cobra.Command, repo *db.CardRepository, runID uuid.UUID, cardNumber string) ([]db.Card, error) {
	if cardNumber == "" {
		return repo.ListForRun(cmd.Context(), runID)
	}
	c, err := repo.Get(cmd.Context(), runID, cardNumber)
	if err != nil {
		return nil, err
	}
	return []db.Card{*c}, nil
}
