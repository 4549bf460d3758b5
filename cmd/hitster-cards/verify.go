package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/justestif/go-hitster-cards/internal/cards"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var out string
	var limit int
	var store bool

	cmd := &cobra.Command{
		Use:   "verify [songs.json]",
		Short: "Correct release dates in an existing songs file",
		Long: `Verify reads a songs JSON file, checks every release date against
MusicBrainz and writes the corrected list next to the input with a _fixed
suffix (songs.json -> songs_fixed.json).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "songs.json"
			if len(args) == 1 {
				input = args[0]
			}
			if out == "" {
				out = fixedPath(input)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			if err := checkStore(cfg, store); err != nil {
				return err
			}

			log.Info("loading songs", zap.String("file", input))
			records, err := cards.ReadJSON(input)
			if err != nil {
				return err
			}

			result := newPipeline(cfg, log, nil, limit).Verify(cmd.Context(), records)
			return finish(cmd, cfg, log, result, out, store)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path (default <input>_fixed.json)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Only verify the first N songs")
	cmd.Flags().BoolVar(&store, "store", false, "Also store the verified cards in Postgres (DATABASE_URL)")

	return cmd
}

// fixedPath inserts _fixed before the extension: songs.json -> songs_fixed.json.
func fixedPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_fixed" + ext
}
