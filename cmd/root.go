// Package cmd holds the loyaltyctl admin commands.
package cmd

import (
	"context"
	"log/slog"

	"github.com/disgoorg/loyalty-engine/loyalty"
	"github.com/spf13/cobra"
)

var (
	configPath string
	useMemory  bool
)

var rootCmd = &cobra.Command{
	Use:           "loyaltyctl",
	Short:         "Administer the loyalty engine store",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config, empty uses defaults and LOYALTY_* env")
	rootCmd.PersistentFlags().BoolVar(&useMemory, "memory", false, "use an in-memory store seeded with the catalog")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// openEngine loads the config and connects the store. Callers must Close the
// returned engine.
func openEngine(ctx context.Context) (*loyalty.Engine, error) {
	cfg, err := loyalty.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(loyalty.NewLogger(cfg.Log, "Loyaltyctl"))

	e := loyalty.New(*cfg, "cli", "")
	if err := e.SetupStore(ctx, useMemory); err != nil {
		return nil, err
	}
	if useMemory {
		if err := e.SeedCatalog(ctx); err != nil {
			e.Close(ctx)
			return nil, err
		}
	}
	return e, nil
}
