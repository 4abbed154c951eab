package cmd

import (
	"fmt"

	"github.com/disgoorg/loyalty-engine/loyalty/progression/inventory"
	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "delete inventory items past their expiry and retention",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer e.Close(ctx)

		sweeper := inventory.NewSweeper(e.Store.Inventory(), e.Clock, e.Cfg.Engine.SweepRetention.Duration)
		removed, err := sweeper.Sweep(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired items\n", removed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
