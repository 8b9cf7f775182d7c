package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/egannguyen/earphones-support/internal/repository/sqlstore"
)

func newSetupDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup-db",
		Short: "Create the schema and load the sample catalogue, customers and orders",
		Long: `setup-db creates the data directory (SQLite), every table, and the sample
data. Sample data is skipped when the products table already has rows.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			db, err := sqlstore.InitDB(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			seeded, err := db.Seed(ctx)
			if err != nil {
				return fmt.Errorf("failed to seed database: %w", err)
			}

			out := cmd.OutOrStdout()
			if !seeded {
				fmt.Fprintln(out, "Database already contains data, sample data skipped.")
				return nil
			}
			fmt.Fprintf(out, "Database set up with %d products, %d users and %d orders.\n",
				len(sqlstore.SampleProducts), len(sqlstore.SampleUsers), len(sqlstore.SampleOrders))
			return nil
		},
	}
}
