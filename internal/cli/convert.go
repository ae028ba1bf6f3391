package cli

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/light-bringer/roomrate-service/internal/app/currency/queries/convert"
	"github.com/light-bringer/roomrate-service/internal/services"
)

func (a *app) convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert AMOUNT CURRENCY",
		Short: "Convert an amount in the base currency using the latest rate",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}
			return a.withServices(cmd, func(ctx context.Context, opts *services.ServiceOptions) error {
				res, err := opts.Convert.Execute(ctx, &convert.Request{Amount: amount, CurrencyCode: args[1]})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !res.Converted {
					fmt.Fprintf(out, "%s (not converted)\n", res.Amount)
					return nil
				}
				fmt.Fprintf(out, "%s %s (rate of %s)\n", res.Amount, res.CurrencyCode, res.Rate.Date)
				return nil
			})
		},
	}
}
