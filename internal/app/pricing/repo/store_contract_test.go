package repo

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	curcontracts "github.com/light-bringer/roomrate-service/internal/app/currency/contracts"
	curdomain "github.com/light-bringer/roomrate-service/internal/app/currency/domain"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/contracts"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/domain"
)

// backend is what every store in this package implements.
type backend interface {
	contracts.Store
	curcontracts.RateStore
}

var day1 = civil.Date{Year: 2024, Month: time.March, Day: 1}

func day(n int) civil.Date {
	return day1.AddDays(n - 1)
}

func stay(t *testing.T, in, out int) domain.Stay {
	t.Helper()
	s, err := domain.NewStay(day(in), day(out))
	require.NoError(t, err)
	return s
}

// seedCalendar loads the single-room fixture calendar: three settlements, a normal
// discount and a fixed norefund discount.
func seedCalendar(t *testing.T, s backend) {
	t.Helper()
	ctx := context.Background()

	// Inserted out of order to check the capacity ordering.
	for _, v := range []domain.SettlementVariant{
		{ID: "stl2", RoomID: "room-1", Capacity: 2, Enabled: true},
		{ID: "stl1", RoomID: "room-1", Capacity: 1, Enabled: true},
		{ID: "stl3", RoomID: "room-1", Capacity: 3, Enabled: false},
	} {
		require.NoError(t, s.AddSettlementVariant(ctx, v))
	}

	prices := map[string][]string{
		"stl1": {"10", "11", "14"},
		"stl2": {"15", "12", "15"},
		"stl3": {"20", "13", "16"},
	}
	for id, amounts := range prices {
		for i, a := range amounts {
			require.NoError(t, s.AddBasePrice(ctx, domain.BasePrice{
				SettlementID: id, Date: day(i + 1), Amount: domain.MustParseMoney(a),
			}))
		}
	}

	require.NoError(t, s.AddDiscount(ctx, domain.Discount{
		ID: "norm", HotelID: "hotel-1", Kind: domain.KindNormal, Percentage: true,
		Apply: domain.StackFlags{NoRefund: true, CreditCard: true},
	}))
	require.NoError(t, s.AddDiscount(ctx, domain.Discount{
		ID: "norefund", HotelID: "hotel-1", Kind: domain.KindNoRefund,
	}))
	for i, v := range []string{"25", "15", "10"} {
		require.NoError(t, s.AddRoomDiscount(ctx, domain.RoomDiscount{
			RoomID: "room-1", DiscountID: "norm", Date: day(i + 1), Value: domain.MustParseMoney(v),
		}))
	}
	for i, v := range []string{"0.5", "0.6"} {
		require.NoError(t, s.AddRoomDiscount(ctx, domain.RoomDiscount{
			RoomID: "room-1", DiscountID: "norefund", Date: day(i + 1), Value: domain.MustParseMoney(v),
		}))
	}
}

// runStoreContract exercises the behaviour every backend must share.
func runStoreContract(t *testing.T, open func(t *testing.T) backend) {
	ctx := context.Background()

	t.Run("settlement variants are ordered by capacity", func(t *testing.T) {
		s := open(t)
		seedCalendar(t, s)

		variants, err := s.SettlementVariantsFor(ctx, "room-1")
		require.NoError(t, err)
		require.Len(t, variants, 3)
		assert.Equal(t, "stl1", variants[0].ID)
		assert.Equal(t, "stl2", variants[1].ID)
		assert.Equal(t, "stl3", variants[2].ID)
		assert.False(t, variants[2].Enabled)

		none, err := s.SettlementVariantsFor(ctx, "room-unknown")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("duplicate capacity is rejected", func(t *testing.T) {
		s := open(t)
		seedCalendar(t, s)

		err := s.AddSettlementVariant(ctx, domain.SettlementVariant{ID: "stl9", RoomID: "room-1", Capacity: 2, Enabled: true})
		assert.ErrorIs(t, err, domain.ErrDuplicateSettlement)

		err = s.AddSettlementVariant(ctx, domain.SettlementVariant{ID: "stl0", RoomID: "room-1", Capacity: 0})
		assert.ErrorIs(t, err, domain.ErrInvalidCapacity)
	})

	t.Run("base prices cover the stay without the departure night", func(t *testing.T) {
		s := open(t)
		seedCalendar(t, s)

		prices, err := s.BasePricesFor(ctx, "stl1", stay(t, 1, 3))
		require.NoError(t, err)
		require.Len(t, prices, 2)
		assert.Equal(t, day(1), prices[0].Date)
		assert.Equal(t, day(2), prices[1].Date)
		assert.Equal(t, "10", prices[0].Amount.String())
		assert.Equal(t, "11", prices[1].Amount.String())

		sparse, err := s.BasePricesFor(ctx, "stl1", stay(t, 3, 6))
		require.NoError(t, err)
		assert.Len(t, sparse, 1)
	})

	t.Run("duplicate base price is rejected", func(t *testing.T) {
		s := open(t)
		seedCalendar(t, s)

		err := s.AddBasePrice(ctx, domain.BasePrice{SettlementID: "stl1", Date: day(1), Amount: domain.MoneyFromInt(99)})
		assert.ErrorIs(t, err, domain.ErrDuplicateBasePrice)

		prices, err := s.BasePricesFor(ctx, "stl1", stay(t, 1, 2))
		require.NoError(t, err)
		require.Len(t, prices, 1)
		assert.Equal(t, "10", prices[0].Amount.String(), "first price wins")
	})

	t.Run("negative base price is rejected", func(t *testing.T) {
		s := open(t)
		seedCalendar(t, s)

		err := s.AddBasePrice(ctx, domain.BasePrice{SettlementID: "stl1", Date: day(9), Amount: domain.MoneyFromInt(-1)})
		assert.ErrorIs(t, err, domain.ErrNegativeAmount)
	})

	t.Run("fractional amounts round trip exactly", func(t *testing.T) {
		s := open(t)
		seedCalendar(t, s)

		third, err := domain.NewMoney(1, 3)
		require.NoError(t, err)
		require.NoError(t, s.AddBasePrice(ctx, domain.BasePrice{SettlementID: "stl1", Date: day(10), Amount: third}))

		prices, err := s.BasePricesFor(ctx, "stl1", stay(t, 10, 11))
		require.NoError(t, err)
		require.Len(t, prices, 1)
		assert.True(t, prices[0].Amount.Equals(third))
	})

	t.Run("discounts are joined with their definitions", func(t *testing.T) {
		s := open(t)
		seedCalendar(t, s)

		days, err := s.DiscountsFor(ctx, "room-1", stay(t, 1, 4))
		require.NoError(t, err)
		require.Len(t, days, 5)

		// Ordered by date, then discount id.
		assert.Equal(t, day(1), days[0].Date)
		assert.Equal(t, "norefund", days[0].Discount.ID)
		assert.Equal(t, "norm", days[1].Discount.ID)
		assert.Equal(t, day(3), days[4].Date)

		norm := days[1].Discount
		assert.Equal(t, domain.KindNormal, norm.Kind)
		assert.True(t, norm.Percentage)
		assert.True(t, norm.Apply.NoRefund)
		assert.True(t, norm.Apply.CreditCard)
		assert.False(t, norm.Apply.Period)
		assert.Equal(t, "25", days[1].Value.String())
	})

	t.Run("discounts filtered by kind", func(t *testing.T) {
		s := open(t)
		seedCalendar(t, s)

		days, err := s.DiscountsFor(ctx, "room-1", stay(t, 1, 4), domain.KindNoRefund)
		require.NoError(t, err)
		require.Len(t, days, 2)
		for _, d := range days {
			assert.Equal(t, domain.KindNoRefund, d.Discount.Kind)
		}

		none, err := s.DiscountsFor(ctx, "room-1", stay(t, 1, 4), domain.KindPackage)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("room discount values are replaced", func(t *testing.T) {
		s := open(t)
		seedCalendar(t, s)

		require.NoError(t, s.AddRoomDiscount(ctx, domain.RoomDiscount{
			RoomID: "room-1", DiscountID: "norm", Date: day(1), Value: domain.MustParseMoney("30"),
		}))

		days, err := s.DiscountsFor(ctx, "room-1", stay(t, 1, 2), domain.KindNormal)
		require.NoError(t, err)
		require.Len(t, days, 1)
		assert.Equal(t, "30", days[0].Value.String())
	})

	t.Run("room discount needs a known discount", func(t *testing.T) {
		s := open(t)
		seedCalendar(t, s)

		err := s.AddRoomDiscount(ctx, domain.RoomDiscount{
			RoomID: "room-1", DiscountID: "missing", Date: day(1), Value: domain.MoneyFromInt(5),
		})
		assert.ErrorIs(t, err, domain.ErrDiscountNotFound)
	})

	t.Run("room discount without a value is rejected", func(t *testing.T) {
		s := open(t)
		seedCalendar(t, s)

		err := s.AddRoomDiscount(ctx, domain.RoomDiscount{
			RoomID: "room-1", DiscountID: "norm", Date: day(1),
		})
		assert.ErrorIs(t, err, domain.ErrMissingDiscountValue)

		days, err := s.DiscountsFor(ctx, "room-1", stay(t, 1, 2), domain.KindNormal)
		require.NoError(t, err)
		require.Len(t, days, 1)
		assert.Equal(t, "25", days[0].Value.String())
	})

	t.Run("invalid discount is rejected", func(t *testing.T) {
		s := open(t)

		err := s.AddDiscount(ctx, domain.Discount{ID: "pkg", Kind: domain.KindPackage, Days: 3, AtPriceDays: 3})
		assert.ErrorIs(t, err, domain.ErrInvalidWindow)
	})

	t.Run("stored calendar prices a stay", func(t *testing.T) {
		s := open(t)
		seedCalendar(t, s)

		st := stay(t, 1, 3)
		variants, err := s.SettlementVariantsFor(ctx, "room-1")
		require.NoError(t, err)
		stl, err := domain.ResolveSettlement(variants, 1)
		require.NoError(t, err)

		prices, err := s.BasePricesFor(ctx, stl.ID, st)
		require.NoError(t, err)
		discounts, err := s.DiscountsFor(ctx, "room-1", st)
		require.NoError(t, err)

		q, err := domain.NewPricingCalculator().Quote(domain.QuoteInput{
			Stay: st, Settlement: stl, Prices: prices, Discounts: discounts,
		})
		require.NoError(t, err)

		standard, ok := q.Total(domain.PolicyStandard)
		require.True(t, ok)
		assert.Equal(t, "16.85", standard.String())
		norefund, _ := q.Total(domain.PolicyNoRefund)
		assert.Equal(t, "15.75", norefund.String())
	})

	t.Run("latest rate on or before a day", func(t *testing.T) {
		s := open(t)

		for _, r := range []curdomain.ExchangeRate{
			{CurrencyCode: "usd", Date: day(1), Nominal: decimal.NewFromInt(1), OfficialRate: decimal.RequireFromString("90.5"), Rate: decimal.RequireFromString("91")},
			{CurrencyCode: "USD", Date: day(5), Nominal: decimal.NewFromInt(1), OfficialRate: decimal.RequireFromString("92.25"), Rate: decimal.RequireFromString("93")},
			{CurrencyCode: "KZT", Date: day(1), Nominal: decimal.NewFromInt(100), OfficialRate: decimal.RequireFromString("19.8"), Rate: decimal.RequireFromString("20")},
		} {
			require.NoError(t, s.AddRate(ctx, &r))
		}

		r, err := s.LatestRate(ctx, "USD", day(3))
		require.NoError(t, err)
		assert.Equal(t, day(1), r.Date)
		assert.Equal(t, "USD", r.CurrencyCode)
		assert.True(t, r.Rate.Equal(decimal.NewFromInt(91)))

		r, err = s.LatestRate(ctx, "usd", day(10))
		require.NoError(t, err)
		assert.Equal(t, day(5), r.Date)
		assert.True(t, r.OfficialRate.Equal(decimal.RequireFromString("92.25")))

		kzt, err := s.LatestRate(ctx, "KZT", day(1))
		require.NoError(t, err)
		assert.True(t, kzt.Nominal.Equal(decimal.NewFromInt(100)))

		_, err = s.LatestRate(ctx, "USD", day(0))
		assert.ErrorIs(t, err, curdomain.ErrRateNotFound)

		_, err = s.LatestRate(ctx, "EUR", day(10))
		assert.ErrorIs(t, err, curdomain.ErrRateNotFound)
	})

	t.Run("invalid rate is rejected", func(t *testing.T) {
		s := open(t)

		err := s.AddRate(ctx, &curdomain.ExchangeRate{CurrencyCode: "US", Date: day(1), Nominal: decimal.NewFromInt(1), Rate: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, curdomain.ErrInvalidCurrency)

		err = s.AddRate(ctx, &curdomain.ExchangeRate{CurrencyCode: "USD", Date: day(1), Rate: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, curdomain.ErrInvalidNominal)
	})
}
