package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/light-bringer/roomrate-service/internal/app/currency/queries/convert"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/domain"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/queries/get_price"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/queries/get_price_discount"
	"github.com/light-bringer/roomrate-service/internal/services"
)

type stayFlags struct {
	roomID  string
	dateIn  string
	dateOut string
	guests  int
}

func (f *stayFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.roomID, "room", "", "Room id")
	cmd.Flags().StringVar(&f.dateIn, "in", "", "Check-in date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.dateOut, "out", "", "Check-out date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&f.guests, "guests", 1, "Number of guests")
	_ = cmd.MarkFlagRequired("room")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
}

func (a *app) priceCmd() *cobra.Command {
	var f stayFlags
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Print the undiscounted price of a stay",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stay, err := domain.ParseStay(f.dateIn, f.dateOut)
			if err != nil {
				return err
			}
			return a.withServices(cmd, func(ctx context.Context, opts *services.ServiceOptions) error {
				res, err := opts.GetPrice.Execute(ctx, &get_price.Request{RoomID: f.roomID, Stay: stay, Guests: f.guests})
				if err != nil {
					return err
				}
				if a.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), res)
				}

				out := cmd.OutOrStdout()
				if !res.Available {
					fmt.Fprintf(out, "%s unavailable: %s\n", res.RoomID, res.Reason)
					return nil
				}
				fmt.Fprintf(out, "%s %s..%s guests %d settlement %s\n", res.RoomID, stay.In, stay.Out, res.Guests, res.SettlementID)
				fmt.Fprintf(out, "total %s average %s\n", res.Total, res.AverageNightly)
				return nil
			})
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) quoteCmd() *cobra.Command {
	var (
		f        stayFlags
		currency string
		nights   bool
	)
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Print the discounted totals of a stay under every policy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stay, err := domain.ParseStay(f.dateIn, f.dateOut)
			if err != nil {
				return err
			}
			return a.withServices(cmd, func(ctx context.Context, opts *services.ServiceOptions) error {
				res, err := opts.GetPriceDiscount.Execute(ctx, &get_price_discount.Request{RoomID: f.roomID, Stay: stay, Guests: f.guests})
				if err != nil {
					return err
				}
				if a.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), res)
				}

				out := cmd.OutOrStdout()
				if !res.Available {
					fmt.Fprintf(out, "%s unavailable: %s\n", res.RoomID, res.Reason)
					return nil
				}
				fmt.Fprintf(out, "%s %s..%s guests %d settlement %s base %s\n",
					res.RoomID, stay.In, stay.Out, res.Guests, res.SettlementID, res.Base)

				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				header := "POLICY\tTOTAL\tDISCOUNTS"
				if currency != "" {
					header += "\t" + strings.ToUpper(currency)
				}
				fmt.Fprintln(tw, header)
				for _, pq := range res.Policies {
					line := fmt.Sprintf("%s\t%s\t%s", pq.Policy, pq.Total, strings.Join(pq.DiscountIDs, ","))
					if currency != "" {
						conv, err := opts.Convert.Execute(ctx, &convert.Request{Amount: pq.Total.Decimal(2), CurrencyCode: currency})
						if err != nil {
							return err
						}
						line += "\t" + conv.Amount.String()
					}
					fmt.Fprintln(tw, line)
					if nights {
						for _, n := range pq.Nights {
							fmt.Fprintf(tw, "  %s\t%s\t(base %s)\n", n.Date, n.Net, n.Base)
						}
					}
				}
				return tw.Flush()
			})
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&currency, "currency", "", "Also show totals converted to this currency")
	cmd.Flags().BoolVar(&nights, "nights", false, "Show the nightly allocation of every policy")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
