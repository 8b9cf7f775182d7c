package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/egannguyen/earphones-support/internal/entity"
)

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <phrase...>",
		Short: "Run the ranked multi-term product search",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			results, err := a.svc.SearchPhrase(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No products found.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tBRAND\tPRICE\tSTOCK\tRATING\tRELEVANCE")
			for _, p := range results {
				fmt.Fprintf(w, "%d\t%s\t%s\t$%s\t%d\t%.1f\t%d\n",
					p.ID, p.Name, p.Brand, p.Price.StringFixed(2), p.Quantity, p.Rating, p.Relevance)
			}
			return w.Flush()
		},
	}
}

func newTrackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "track <order-id> <email>",
		Short: "Show the status of an order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			order, err := a.svc.TrackOrder(ctx, args[0], args[1])
			if errors.Is(err, entity.ErrNotFound) {
				return fmt.Errorf("order %s not found for %s", args[0], args[1])
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Order:    %d\n", order.ID)
			fmt.Fprintf(out, "Customer: %s <%s>\n", order.CustomerName, order.CustomerEmail)
			fmt.Fprintf(out, "Status:   %s\n", order.Status)
			fmt.Fprintf(out, "Amount:   $%s\n", order.Amount.StringFixed(2))
			fmt.Fprintf(out, "Placed:   %s\n", order.CreatedTime.Format(time.DateTime))
			fmt.Fprintf(out, "Ship to:  %s\n", order.ShippingAddress)
			return nil
		},
	}
}
