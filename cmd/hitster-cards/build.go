package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/justestif/go-hitster-cards/internal/auth"
	"github.com/justestif/go-hitster-cards/internal/cards"
	"github.com/justestif/go-hitster-cards/internal/gameset"
	"github.com/justestif/go-hitster-cards/internal/pipeline"
	"github.com/justestif/go-hitster-cards/internal/spotify"
)

type buildOptions struct {
	country  string
	sku      string
	dbPath   string
	gamesets string
	file     string
	out      string
	limit    int
	store    bool
}

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Fetch a gameset from Spotify and verify its release dates",
		Long: `Build resolves the gameset for --country, loads its cards from the card
database, fetches track metadata from Spotify and corrects release dates
against MusicBrainz. The result is written to songs_<country>.json.

With --file an existing songs file is verified instead and Spotify is not
contacted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, ctx, opts)
		},
	}

	cmd.Flags().StringVar(&opts.country, "country", "br", "Country code or gameset name")
	cmd.Flags().StringVar(&opts.sku, "sku", "", "Gameset SKU (skips the gameset lookup)")
	cmd.Flags().StringVar(&opts.dbPath, "db", "database.json", "Path to the card database")
	cmd.Flags().StringVar(&opts.gamesets, "gamesets", "gamesets.toml", "Path to the gameset catalog")
	cmd.Flags().StringVar(&opts.file, "file", "", "Verify an existing songs JSON file instead of fetching")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output path (default songs_<country>.json)")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Only verify the first N songs")
	cmd.Flags().BoolVar(&opts.store, "store", false, "Also store the verified cards in Postgres (DATABASE_URL)")

	return cmd
}

func runBuild(cmd *cobra.Command, cc *commandContext, opts buildOptions) error {
	ctx := cmd.Context()
	cfg, err := cc.ensureConfig()
	if err != nil {
		return err
	}
	log, err := cc.ensureLogger()
	if err != nil {
		return err
	}

	if opts.limit < 0 {
		return errors.New("--limit must not be negative")
	}
	out := opts.out
	if out == "" {
		out = fmt.Sprintf("songs_%s.json", opts.country)
	}

	if err := checkStore(cfg, opts.store); err != nil {
		return err
	}

	var result *pipeline.Result
	if opts.file != "" {
		log.Info("loading songs", zap.String("file", opts.file))
		records, err := cards.ReadJSON(opts.file)
		if err != nil {
			return err
		}
		result = newPipeline(cfg, log, nil, opts.limit).Verify(ctx, records)
	} else {
		sku, err := resolveSKU(opts, log)
		if err != nil {
			return err
		}

		entries, err := gameset.LoadCards(opts.dbPath, sku)
		if err != nil {
			return err
		}
		log.Info("loaded cards", zap.String("sku", sku), zap.Int("cards", len(entries)))

		authenticator, err := auth.New(cfg.Spotify, auth.WithLogger(log))
		if err != nil {
			return err
		}
		api, err := authenticator.Client(ctx)
		if err != nil {
			return fmt.Errorf("authenticating with Spotify: %w", err)
		}

		fetcher := spotify.New(api, spotify.WithLogger(log))
		result = newPipeline(cfg, log, fetcher, opts.limit).Run(ctx, entries)
	}

	return finish(cmd, cfg, log, result, out, opts.store)
}

// resolveSKU picks the SKU from --sku or the gameset catalog.
func resolveSKU(opts buildOptions, log *zap.Logger) (string, error) {
	if opts.sku != "" {
		return opts.sku, nil
	}

	catalog, err := gameset.LoadCatalog(opts.gamesets)
	if err != nil {
		return "", err
	}
	gs, err := catalog.Resolve(opts.country)
	if err != nil {
		return "", err
	}
	log.Info("selected gameset", zap.String("gameset", gs.Name), zap.String("sku", gs.SKU))
	return gs.SKU, nil
}
