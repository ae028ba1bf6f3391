// Package cli implements the roomrate operator command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/light-bringer/roomrate-service/internal/config"
	"github.com/light-bringer/roomrate-service/internal/pkg/logging"
	"github.com/light-bringer/roomrate-service/internal/services"
)

// app holds the flags shared by every command.
type app struct {
	configPath string
	store      string
	sqlitePath string
	jsonOutput bool
}

// NewRootCmd builds the roomrate command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "roomrate",
		Short:         "Price hotel stays against the rate calendar",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file")
	flags.StringVar(&a.store, "store", "", "Store driver: memory, sqlite or spanner (overrides config)")
	flags.StringVar(&a.sqlitePath, "sqlite-path", "", "SQLite database file (overrides config)")
	flags.BoolVar(&a.jsonOutput, "json", false, "Print results as JSON")

	root.AddCommand(
		a.quoteCmd(),
		a.priceCmd(),
		a.convertCmd(),
		a.importCmd(),
		a.templateCmd(),
		a.addCmd(),
		a.migrateSQLiteCmd(),
	)
	return root
}

func (a *app) loadConfig() (config.Config, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return cfg, err
	}
	if a.store != "" {
		cfg.Store.Driver = a.store
	}
	if a.sqlitePath != "" {
		cfg.Store.SQLitePath = a.sqlitePath
	}
	// One-shot commands have nobody to scrape them.
	cfg.Metrics.Enabled = false
	return cfg, cfg.Validate()
}

// withServices wires the application for one command and closes it afterwards.
func (a *app) withServices(cmd *cobra.Command, fn func(ctx context.Context, opts *services.ServiceOptions) error) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	logger := logging.New(cmd.ErrOrStderr(), cfg.App.Env, logging.ParseLevel(cfg.Log.Level))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	opts, err := services.NewServiceOptions(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer opts.Close()

	return fn(ctx, opts)
}
