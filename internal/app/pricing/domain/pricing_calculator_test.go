package domain

import (
	"fmt"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day1 = civil.Date{Year: 2024, Month: time.March, Day: 1}

func day(n int) civil.Date {
	return day1.AddDays(n - 1)
}

func stayDays(t *testing.T, in, out int) Stay {
	t.Helper()
	s, err := NewStay(day(in), day(out))
	require.NoError(t, err)
	return s
}

// pricesFrom lays amounts out on consecutive days starting at day1.
func pricesFrom(settlementID string, amounts ...string) []BasePrice {
	out := make([]BasePrice, len(amounts))
	for i, a := range amounts {
		out[i] = BasePrice{SettlementID: settlementID, Date: day(i + 1), Amount: MustParseMoney(a)}
	}
	return out
}

// rowsFrom lays discount values out on consecutive days starting at day1.
func rowsFrom(d *Discount, values ...string) []DiscountDay {
	out := make([]DiscountDay, len(values))
	for i, v := range values {
		out[i] = DiscountDay{Discount: d, Date: day(i + 1), Value: MustParseMoney(v)}
	}
	return out
}

func join(groups ...[]DiscountDay) []DiscountDay {
	var out []DiscountDay
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// fixture settlements: stl1 and stl2 enabled, stl3 disabled.
var (
	stl1 = SettlementVariant{ID: "stl1", RoomID: "room-1", Capacity: 1, Enabled: true}
	stl2 = SettlementVariant{ID: "stl2", RoomID: "room-1", Capacity: 2, Enabled: true}
	stl3 = SettlementVariant{ID: "stl3", RoomID: "room-1", Capacity: 3, Enabled: false}
)

var fixturePrices = map[string][]BasePrice{
	"stl1": pricesFrom("stl1", "10", "11", "14"),
	"stl2": pricesFrom("stl2", "15", "12", "15"),
	"stl3": pricesFrom("stl3", "20", "13", "16"),
}

func quoteFor(t *testing.T, in, out, guests int, prices map[string][]BasePrice, discounts []DiscountDay) *Quote {
	t.Helper()
	stl, err := ResolveSettlement([]SettlementVariant{stl1, stl2, stl3}, guests)
	if err != nil {
		require.ErrorIs(t, err, ErrNoSettlement)
		return nil
	}
	q, err := NewPricingCalculator().Quote(QuoteInput{
		Stay:       stayDays(t, in, out),
		Settlement: stl,
		Prices:     prices[stl.ID],
		Discounts:  discounts,
	})
	require.NoError(t, err)
	return q
}

func assertTotals(t *testing.T, q *Quote, standard, norefund, creditcard string) {
	t.Helper()
	require.NotNil(t, q)
	want := []string{standard, norefund, creditcard}
	for i, name := range []Policy{PolicyStandard, PolicyNoRefund, PolicyCreditCard} {
		total, ok := q.Total(name)
		require.True(t, ok, "policy %s missing", name)
		assert.True(t, total.Equals(MustParseMoney(want[i])),
			"policy %s: got %s, want %s", name, total, want[i])
	}
}

func TestPricingCalculator_BaseTotal(t *testing.T) {
	tests := []struct {
		in, out, guests int
		want            string // empty: no price
	}{
		{1, 2, 1, "10"},
		{1, 2, 2, "15"},
		{1, 2, 3, ""},
		{1, 3, 1, "21"},
		{1, 3, 2, "27"},
		{1, 3, 3, ""},
		{1, 4, 1, "35"},
		{1, 4, 2, "42"},
		{1, 4, 3, ""},
	}

	pc := NewPricingCalculator()
	for _, tt := range tests {
		t.Run(fmt.Sprintf("d%d-d%d g%d", tt.in, tt.out, tt.guests), func(t *testing.T) {
			stl, err := ResolveSettlement([]SettlementVariant{stl1, stl2, stl3}, tt.guests)
			if tt.want == "" {
				assert.ErrorIs(t, err, ErrNoSettlement)
				return
			}
			require.NoError(t, err)

			total, err := pc.BaseTotal(stayDays(t, tt.in, tt.out), fixturePrices[stl.ID])
			require.NoError(t, err)
			assert.Equal(t, tt.want, total.String())
		})
	}

	t.Run("sparse calendar has no price", func(t *testing.T) {
		_, err := pc.BaseTotal(stayDays(t, 1, 5), fixturePrices["stl1"])
		assert.ErrorIs(t, err, ErrIncompleteCalendar)
		assert.True(t, IsUnavailable(err))
	})

	t.Run("gap inside the stay has no price", func(t *testing.T) {
		prices := []BasePrice{fixturePrices["stl1"][0], fixturePrices["stl1"][2]}
		_, err := pc.BaseTotal(stayDays(t, 1, 4), prices)
		assert.ErrorIs(t, err, ErrIncompleteCalendar)
	})
}

func normalDiscounts() (norm, norefund, card *Discount) {
	norm = &Discount{ID: "norm", Kind: KindNormal, Percentage: true,
		Apply: StackFlags{NoRefund: true, CreditCard: true}}
	norefund = &Discount{ID: "norefund", Kind: KindNoRefund, Percentage: false}
	card = &Discount{ID: "card", Kind: KindCreditCard, Percentage: true}
	return norm, norefund, card
}

func TestPricingCalculator_NormalDiscount(t *testing.T) {
	norm, _, _ := normalDiscounts()
	rows := rowsFrom(norm, "25", "15", "10")

	tests := []struct {
		name            string
		in, out, guests int
		want            string
	}{
		{"d1 g1", 1, 2, 1, "7.5"},
		{"d1-d3 g1", 1, 3, 1, "16.85"},
		{"d1-d4 g1", 1, 4, 1, "29.45"},
		{"d1-d4 g2", 1, 4, 2, "34.95"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := quoteFor(t, tt.in, tt.out, tt.guests, fixturePrices, rows)
			assertTotals(t, q, tt.want, tt.want, tt.want)
		})
	}

	t.Run("d1-d4 g3 has no price", func(t *testing.T) {
		assert.Nil(t, quoteFor(t, 1, 4, 3, fixturePrices, rows))
	})
}

func TestPricingCalculator_NoRefundStacking(t *testing.T) {
	norm, norefund, card := normalDiscounts()

	t.Run("fixed norefund on top of normal", func(t *testing.T) {
		discounts := join(
			rowsFrom(norm, "25", "15", "10"),
			rowsFrom(norefund, "0.5", "0.6"),
		)
		q := quoteFor(t, 1, 3, 2, fixturePrices, discounts)
		assertTotals(t, q, "21.45", "20.35", "21.45")
	})

	t.Run("creditcard compounds on the normal stack", func(t *testing.T) {
		discounts := join(
			rowsFrom(norm, "25", "15", "10"),
			rowsFrom(norefund, "0.5", "0.6"),
			rowsFrom(card, "5", "7"),
		)
		q := quoteFor(t, 1, 3, 2, fixturePrices, discounts)
		assertTotals(t, q, "21.45", "20.35", "20.1735")

		// Both reductions taken independently off the base: 27 - 5.55 - 1.59.
		naive := MustParseMoney("27").Subtract(MustParseMoney("5.55")).Subtract(MustParseMoney("1.59"))
		total, _ := q.Total(PolicyCreditCard)
		assert.False(t, total.Equals(naive))

		pq := q.Policies[2]
		assert.Equal(t, []string{"norm", "card"}, pq.DiscountIDs)
		assert.Equal(t, "10.6875", pq.Nights[0].Net.String())
		assert.Equal(t, "9.486", pq.Nights[1].Net.String())
	})

	t.Run("special and normal groups", func(t *testing.T) {
		norm := *norm
		norm.Apply.NoRefund = false
		special := &Discount{ID: "special", Kind: KindSpecial, Percentage: true,
			Apply: StackFlags{NoRefund: true, CreditCard: false}}
		discounts := join(
			rowsFrom(&norm, "25", "15", "10"),
			rowsFrom(special, "25", "15", "10"),
			rowsFrom(norefund, "0.5", "2"),
			rowsFrom(card, "5", "7"),
		)
		q := quoteFor(t, 1, 3, 2, fixturePrices, discounts)
		assertTotals(t, q, "21.45", "18.95", "20.1735")

		assert.Equal(t, []string{"norm"}, q.Policies[0].DiscountIDs, "normal wins the tie over special")
		assert.Equal(t, []string{"special", "norefund"}, q.Policies[1].DiscountIDs)
		assert.Equal(t, []string{"norm", "card"}, q.Policies[2].DiscountIDs)
	})
}

func periodDiscounts() (norm, period, norefund, card *Discount) {
	norm = &Discount{ID: "norm", Kind: KindNormal, Percentage: true,
		Apply: StackFlags{NoRefund: true, CreditCard: true, Period: true}}
	period = &Discount{ID: "period", Kind: KindPeriod, Percentage: false,
		Apply: StackFlags{NoRefund: true, CreditCard: true}}
	norefund = &Discount{ID: "norefund", Kind: KindNoRefund, Percentage: true}
	card = &Discount{ID: "card", Kind: KindCreditCard, Percentage: true}
	return norm, period, norefund, card
}

func TestPricingCalculator_NormalPeriodStacking(t *testing.T) {
	t.Run("normal then period then secondary", func(t *testing.T) {
		norm, period, norefund, card := periodDiscounts()
		discounts := join(
			rowsFrom(norm, "12", "15", "10"),
			rowsFrom(period, "2.5", "0.4", "0.6"),
			rowsFrom(norefund, "3", "2"),
			rowsFrom(card, "5", "4"),
		)
		q := quoteFor(t, 1, 3, 1, fixturePrices, discounts)
		assertTotals(t, q, "15.25", "14.882", "14.577")
		assert.Equal(t, []string{"norm", "period"}, q.Policies[0].DiscountIDs)
	})

	t.Run("normal does not admit period", func(t *testing.T) {
		norm, period, norefund, card := periodDiscounts()
		norm.Apply.Period = false
		period.Apply.NoRefund = false
		discounts := join(
			rowsFrom(norm, "12", "15", "10"),
			rowsFrom(period, "2.5", "0.4", "0.6"),
			rowsFrom(norefund, "3", "2"),
			rowsFrom(card, "5", "4"),
		)
		q := quoteFor(t, 1, 3, 1, fixturePrices, discounts)
		assertTotals(t, q, "18.1", "17.699", "17.301")
		assert.Equal(t, []string{"period"}, q.Policies[0].DiscountIDs)
		assert.Equal(t, []string{"norm", "norefund"}, q.Policies[1].DiscountIDs)
		assert.Equal(t, []string{"period", "card"}, q.Policies[2].DiscountIDs)
	})

	t.Run("period blocks norefund", func(t *testing.T) {
		norm, period, norefund, card := periodDiscounts()
		period.Apply.NoRefund = false
		discounts := join(
			rowsFrom(norm, "12", "15", "10"),
			rowsFrom(period, "2.5", "0.4", "0.6"),
			rowsFrom(norefund, "30", "40"),
			rowsFrom(card, "5", "4"),
		)
		q := quoteFor(t, 1, 3, 1, fixturePrices, discounts)
		assertTotals(t, q, "15.25", "11.77", "14.577")
	})
}

func TestPricingCalculator_DisjointPrimaries(t *testing.T) {
	norm := &Discount{ID: "norm", Kind: KindNormal, Percentage: true,
		Apply: StackFlags{NoRefund: true}}
	period := &Discount{ID: "period", Kind: KindPeriod}
	norefund := &Discount{ID: "norefund", Kind: KindNoRefund}

	t.Run("each night takes the primary that covers it", func(t *testing.T) {
		discounts := []DiscountDay{
			{Discount: period, Date: day(1), Value: MustParseMoney("1")},
			{Discount: norm, Date: day(2), Value: MustParseMoney("10")},
		}
		q := quoteFor(t, 1, 3, 1, fixturePrices, discounts)
		assertTotals(t, q, "18.9", "18.9", "18.9")

		pq := q.Policies[0]
		assert.Equal(t, []string{"period", "norm"}, pq.DiscountIDs)
		assert.Equal(t, "9", pq.Nights[0].Net.String())
		assert.Equal(t, "9.9", pq.Nights[1].Net.String())
	})

	t.Run("secondary follows the covering primary", func(t *testing.T) {
		discounts := []DiscountDay{
			{Discount: norm, Date: day(1), Value: MustParseMoney("10")},
			{Discount: period, Date: day(2), Value: MustParseMoney("1")},
			{Discount: norefund, Date: day(1), Value: MustParseMoney("0.5")},
			{Discount: norefund, Date: day(2), Value: MustParseMoney("0.5")},
		}
		q := quoteFor(t, 1, 3, 1, fixturePrices, discounts)

		// standard: 9 + 10. norefund on the norm stack: 8.5 on night 1; period does not admit it on night 2.
		assertTotals(t, q, "19", "18.5", "19")
		assert.Equal(t, []string{"norm", "period", "norefund"}, q.Policies[1].DiscountIDs)
		assert.Equal(t, "10", q.Policies[1].Nights[1].Net.String())
	})
}

func TestPricingCalculator_Package(t *testing.T) {
	pkg := &Discount{ID: "pkg", Kind: KindPackage, Percentage: true, Days: 3, AtPriceDays: 2}
	zeros := []string{"0", "0", "0", "0", "0", "0", "0"}

	tests := []struct {
		name   string
		prices []string
		want   string
	}{
		{"monotonic", []string{"101", "102", "103", "104", "105", "106", "107"}, "517"},
		{"peak", []string{"100", "100", "200", "300", "100", "100", "100"}, "600"},
		{"very peak", []string{"100", "100", "100", "100", "1000", "100", "100"}, "600"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prices := map[string][]BasePrice{"stl2": pricesFrom("stl2", tt.prices...)}
			q := quoteFor(t, 1, 8, 2, prices, rowsFrom(pkg, zeros...))
			assertTotals(t, q, tt.want, tt.want, tt.want)

			for _, pq := range q.Policies {
				nets := make([]*Money, len(pq.Nights))
				for i, n := range pq.Nights {
					nets[i] = n.Net
				}
				assert.True(t, Sum(nets...).Equals(pq.Total), "allocations sum to the total")
			}
		})
	}

	t.Run("missing night inside the stay has no price", func(t *testing.T) {
		prices := map[string][]BasePrice{"stl2": pricesFrom("stl2", "101", "102", "103")}
		stl, err := ResolveSettlement([]SettlementVariant{stl1, stl2}, 2)
		require.NoError(t, err)
		_, err = NewPricingCalculator().Quote(QuoteInput{
			Stay:       stayDays(t, 1, 8),
			Settlement: stl,
			Prices:     prices["stl2"],
			Discounts:  rowsFrom(pkg, zeros...),
		})
		assert.ErrorIs(t, err, ErrIncompleteCalendar)
	})
}

func TestPricingCalculator_NoDiscounts(t *testing.T) {
	q := quoteFor(t, 1, 4, 1, fixturePrices, nil)
	assertTotals(t, q, "35", "35", "35")
	assert.Empty(t, q.Policies[0].DiscountIDs)
	assert.Equal(t, "35", q.Base.String())
	assert.Equal(t, "35/3", q.AverageNightly().Rat().RatString())
}

func TestPricingCalculator_CustomPolicies(t *testing.T) {
	_, norefund, _ := normalDiscounts()
	pc := NewPricingCalculator(StackingPolicy{Name: PolicyNoRefund, Secondary: KindNoRefund})
	q, err := pc.Quote(QuoteInput{
		Stay:       stayDays(t, 1, 3),
		Settlement: stl1,
		Prices:     fixturePrices["stl1"],
		Discounts:  rowsFrom(norefund, "1", "1"),
	})
	require.NoError(t, err)
	require.Len(t, q.Policies, 1)

	totals := q.Totals()
	assert.Equal(t, "19", totals[PolicyNoRefund].String())
	_, ok := q.Total(PolicyStandard)
	assert.False(t, ok)
}
