package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateOnly bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "write the tier table, quests and shop catalog to the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer e.Close(ctx)

		cat, err := e.LoadCatalog()
		if err != nil {
			return err
		}
		if validateOnly {
			if err := cat.Validate(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog ok: %d tiers, %d quests, %d shop items\n",
				len(cat.Tiers), len(cat.Quests), len(cat.Shop))
			return nil
		}

		if err := cat.Save(ctx, e.Store.Catalog()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d tiers, %d quests, %d shop items\n",
			len(cat.Tiers), len(cat.Quests), len(cat.Shop))
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&validateOnly, "validate", false, "only validate the catalog")
	rootCmd.AddCommand(seedCmd)
}
