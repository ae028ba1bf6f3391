package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	curdomain "github.com/light-bringer/roomrate-service/internal/app/currency/domain"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/domain"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/repo"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/usecases/add_base_price"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/usecases/import_calendar"
	"github.com/light-bringer/roomrate-service/internal/services"
)

func (a *app) importCmd() *cobra.Command {
	var sheet string
	cmd := &cobra.Command{
		Use:   "import FILE.xlsx",
		Short: "Import nightly base prices from a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			return a.withServices(cmd, func(ctx context.Context, opts *services.ServiceOptions) error {
				res, err := opts.ImportCalendar.Execute(ctx, &import_calendar.Request{Workbook: f, Sheet: sheet})
				if err != nil {
					return err
				}
				if a.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), res)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "batch %s: imported %d, duplicates %d, rejected %d\n",
					res.BatchID, res.Imported, len(res.Duplicates), len(res.Rejected))
				for _, issue := range append(res.Duplicates, res.Rejected...) {
					fmt.Fprintf(out, "  row %d %s %s: %s\n", issue.Row, issue.SettlementID, issue.Date, issue.Reason)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet name (defaults to the active sheet)")
	return cmd
}

func (a *app) templateCmd() *cobra.Command {
	var settlements []string
	var dateIn, dateOut, output string
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write an empty calendar workbook for the given settlements and dates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stay, err := domain.ParseStay(dateIn, dateOut)
			if err != nil {
				return err
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := import_calendar.WriteTemplate(f, settlements, stay); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&settlements, "settlements", nil, "Settlement ids, one column each")
	cmd.Flags().StringVar(&dateIn, "in", "", "First night (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dateOut, "out", "", "Day after the last night (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&output, "output", "o", "calendar.xlsx", "Output file")
	_ = cmd.MarkFlagRequired("settlements")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func (a *app) migrateSQLiteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-sqlite",
		Short: "Create or upgrade the SQLite schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			store, err := repo.NewSQLiteStore(cfg.Store.SQLitePath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date: %s\n", cfg.Store.SQLitePath)
			return store.Close()
		},
	}
}

func (a *app) addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add calendar or rate entries",
	}
	cmd.AddCommand(
		a.addSettlementCmd(),
		a.addPriceCmd(),
		a.addDiscountCmd(),
		a.addRoomDiscountCmd(),
		a.addRateCmd(),
	)
	return cmd
}

func (a *app) addSettlementCmd() *cobra.Command {
	var v domain.SettlementVariant
	var disabled bool
	cmd := &cobra.Command{
		Use:   "settlement",
		Short: "Add a settlement variant to a room",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if v.ID == "" {
				v.ID = uuid.NewString()
			}
			v.Enabled = !disabled
			return a.withServices(cmd, func(ctx context.Context, opts *services.ServiceOptions) error {
				if err := opts.Store.AddSettlementVariant(ctx, v); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&v.ID, "id", "", "Variant id (generated when empty)")
	cmd.Flags().StringVar(&v.RoomID, "room", "", "Room id")
	cmd.Flags().IntVar(&v.Capacity, "capacity", 0, "Guests the variant sleeps")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "Store the variant disabled")
	_ = cmd.MarkFlagRequired("room")
	_ = cmd.MarkFlagRequired("capacity")
	return cmd
}

func (a *app) addPriceCmd() *cobra.Command {
	var settlementID, date, amount string
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Add the base price of a settlement for one night",
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := civil.ParseDate(date)
			if err != nil {
				return fmt.Errorf("invalid date %q: %w", date, err)
			}
			money, err := domain.ParseMoney(amount)
			if err != nil {
				return err
			}
			return a.withServices(cmd, func(ctx context.Context, opts *services.ServiceOptions) error {
				return opts.AddBasePrice.Execute(ctx, &add_base_price.Request{SettlementID: settlementID, Date: day, Amount: money})
			})
		},
	}
	cmd.Flags().StringVar(&settlementID, "settlement", "", "Settlement variant id")
	cmd.Flags().StringVar(&date, "date", "", "Night (YYYY-MM-DD)")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount in the base currency")
	_ = cmd.MarkFlagRequired("settlement")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (a *app) addDiscountCmd() *cobra.Command {
	var d domain.Discount
	var kind string
	var apply []string
	cmd := &cobra.Command{
		Use:   "discount",
		Short: "Add or replace a hotel discount definition",
		RunE: func(cmd *cobra.Command, _ []string) error {
			k, err := domain.ParseDiscountKind(kind)
			if err != nil {
				return err
			}
			d.Kind = k
			if d.ID == "" {
				d.ID = uuid.NewString()
			}
			if d.Apply, err = parseStackFlags(apply); err != nil {
				return err
			}
			return a.withServices(cmd, func(ctx context.Context, opts *services.ServiceOptions) error {
				if err := opts.Store.AddDiscount(ctx, d); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), d.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&d.ID, "id", "", "Discount id (generated when empty)")
	cmd.Flags().StringVar(&d.HotelID, "hotel", "", "Hotel id")
	cmd.Flags().StringVar(&kind, "kind", "", "Kind: normal, period, package, norefund, creditcard, early, later, holiday, special, last_minute")
	cmd.Flags().BoolVar(&d.Percentage, "percentage", false, "Values are percentages rather than fixed multipliers")
	cmd.Flags().IntVar(&d.Days, "days", 0, "Package window length")
	cmd.Flags().IntVar(&d.AtPriceDays, "at-price-days", 0, "Nights charged per package window")
	cmd.Flags().StringSliceVar(&apply, "apply", nil, "Kinds allowed on top: norefund, creditcard, period, package")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

func parseStackFlags(names []string) (domain.StackFlags, error) {
	var f domain.StackFlags
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "norefund":
			f.NoRefund = true
		case "creditcard":
			f.CreditCard = true
		case "period":
			f.Period = true
		case "package":
			f.Package = true
		default:
			return f, fmt.Errorf("unknown --apply value %q", n)
		}
	}
	return f, nil
}

func (a *app) addRoomDiscountCmd() *cobra.Command {
	var roomID, discountID, from, until, value string
	cmd := &cobra.Command{
		Use:   "room-discount",
		Short: "Set a discount value for a room on one night or a range of nights",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, err := civil.ParseDate(from)
			if err != nil {
				return fmt.Errorf("invalid date %q: %w", from, err)
			}
			end := start.AddDays(1)
			if until != "" {
				if end, err = civil.ParseDate(until); err != nil {
					return fmt.Errorf("invalid date %q: %w", until, err)
				}
			}
			stay, err := domain.NewStay(start, end)
			if err != nil {
				return err
			}
			v, err := domain.ParseMoney(value)
			if err != nil {
				return err
			}
			return a.withServices(cmd, func(ctx context.Context, opts *services.ServiceOptions) error {
				for _, day := range stay.Nights() {
					rd := domain.RoomDiscount{RoomID: roomID, DiscountID: discountID, Date: day, Value: v}
					if err := opts.Store.AddRoomDiscount(ctx, rd); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&roomID, "room", "", "Room id")
	cmd.Flags().StringVar(&discountID, "discount", "", "Discount id")
	cmd.Flags().StringVar(&from, "date", "", "First night (YYYY-MM-DD)")
	cmd.Flags().StringVar(&until, "until", "", "Day after the last night; defaults to a single night")
	cmd.Flags().StringVar(&value, "value", "", "Percentage or fixed multiplier")
	for _, name := range []string{"room", "discount", "date", "value"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *app) addRateCmd() *cobra.Command {
	var code, date, nominal, official, rate string
	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Add a published exchange rate",
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := civil.ParseDate(date)
			if err != nil {
				return fmt.Errorf("invalid date %q: %w", date, err)
			}
			r := &curdomain.ExchangeRate{ID: uuid.NewString(), CurrencyCode: code, Date: day}
			if r.Nominal, err = decimal.NewFromString(nominal); err != nil {
				return fmt.Errorf("invalid nominal: %w", err)
			}
			if r.Rate, err = decimal.NewFromString(rate); err != nil {
				return fmt.Errorf("invalid rate: %w", err)
			}
			r.OfficialRate = r.Rate
			if official != "" {
				if r.OfficialRate, err = decimal.NewFromString(official); err != nil {
					return fmt.Errorf("invalid official rate: %w", err)
				}
			}
			return a.withServices(cmd, func(ctx context.Context, opts *services.ServiceOptions) error {
				return opts.Store.AddRate(ctx, r)
			})
		},
	}
	cmd.Flags().StringVar(&code, "currency", "", "ISO 4217 code")
	cmd.Flags().StringVar(&date, "date", "", "Publication date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&nominal, "nominal", "1", "Units the rate is quoted for")
	cmd.Flags().StringVar(&rate, "rate", "", "Commercial rate")
	cmd.Flags().StringVar(&official, "official", "", "Official rate (defaults to --rate)")
	for _, name := range []string{"currency", "date", "rate"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
