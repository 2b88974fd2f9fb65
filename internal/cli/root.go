// Package cli implements the catstore command: the HTTP server and the
// database maintenance tasks.
package cli

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Jahir7946/Cat-store/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFile string
	Verbose bool
}

// NewRootCommand creates the root command for the catstore CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "catstore",
		Short: "Cat Store storefront API",
		Long:  "Serves the Cat Store REST API and manages its database.",
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "optional env file loaded before the environment")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewCleanCommand(opts))
	cmd.AddCommand(NewPromoteCommand(opts))

	return cmd
}

// setupLogging installs the default slog logger: text in dev, JSON elsewhere.
func setupLogging(cfg *config.Config, verbose bool) {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(handler))
}

// bootstrap loads configuration, installs logging and opens a migrated
// database.
func bootstrap(opts *RootOptions) (*config.Config, *gorm.DB, error) {
	cfg, err := config.LoadConfig(opts.EnvFile)
	if err != nil {
		return nil, nil, err
	}
	setupLogging(cfg, opts.Verbose)

	db, err := config.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := config.Migrate(db); err != nil {
		closeDB(db)
		return nil, nil, err
	}
	return cfg, db, nil
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}
