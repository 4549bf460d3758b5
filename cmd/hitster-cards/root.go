package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/justestif/go-hitster-cards/internal/config"
	"github.com/justestif/go-hitster-cards/internal/logger"
)

// commandContext lazily loads configuration and the logger shared by subcommands.
type commandContext struct {
	envDir   *string
	logLevel *string

	cfg *config.Config
	log *zap.Logger
}

func newCommandContext(envDir, logLevel *string) *commandContext {
	return &commandContext{envDir: envDir, logLevel: logLevel}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(*c.envDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if level := strings.TrimSpace(*c.logLevel); level != "" {
		cfg.Log.Level = level
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *commandContext) ensureLogger() (*zap.Logger, error) {
	if c.log != nil {
		return c.log, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	c.log = log
	return log, nil
}

func (c *commandContext) sync() {
	if c.log != nil {
		_ = c.log.Sync()
	}
}

func newRootCommand() *cobra.Command {
	var envDir string
	var logLevel string

	ctx := newCommandContext(&envDir, &logLevel)

	rootCmd := &cobra.Command{
		Use:           "hitster-cards",
		Short:         "Build Hitster card lists with verified release dates",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureLogger()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&envDir, "env-dir", ".", "Directory holding an optional .env file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")

	rootCmd.AddCommand(newBuildCommand(ctx))
	rootCmd.AddCommand(newVerifyCommand(ctx))
	rootCmd.AddCommand(newShowRunCommand(ctx))
	rootCmd.AddCommand(newLogoutCommand(ctx))

	return rootCmd
}
