package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/disgoorg/loyalty-engine/loyalty/catalog"
	"github.com/spf13/cobra"
)

var shopCmd = &cobra.Command{
	Use:   "shop",
	Short: "inspect the shop catalog",
}

var shopSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "fuzzy search shop items by name or type",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer e.Close(ctx)

		items, err := e.Store.Catalog().ShopItems(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTYPE\tNAME\tPRICE\tACT/LEVEL")
		for _, item := range catalog.SearchShop(items, strings.Join(args, " ")) {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d/%d\n",
				item.ID, item.Type, item.Name, item.Price, item.RequiredAct, item.RequiredLevel)
		}
		return w.Flush()
	},
}

func init() {
	shopCmd.AddCommand(shopSearchCmd)
	rootCmd.AddCommand(shopCmd)
}
