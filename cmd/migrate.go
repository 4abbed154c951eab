package cmd

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "create missing tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if useMemory {
			return errors.New("migrate needs a database, drop --memory")
		}

		ctx := cmd.Context()

		// SetupStore initializes the schema as part of connecting.
		e, err := openEngine(ctx)
		if err != nil {
			slog.Error("Migration failed", slog.String("type", "db"), slog.Any("error", err))
			return err
		}
		defer e.Close(ctx)

		slog.Info("Migration completed successfully", slog.String("type", "db"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
