package get_price_discount

import (
	"context"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/roomrate-service/internal/app/pricing/domain"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/repo"
	"github.com/light-bringer/roomrate-service/internal/pkg/cache"
	"github.com/light-bringer/roomrate-service/internal/pkg/clock"
)

var day1 = civil.Date{Year: 2024, Month: time.March, Day: 1}

func stay(t *testing.T, in, out int) domain.Stay {
	t.Helper()
	s, err := domain.NewStay(day1.AddDays(in-1), day1.AddDays(out-1))
	require.NoError(t, err)
	return s
}

func newStore(t *testing.T) *repo.MemoryStore {
	t.Helper()
	ctx := context.Background()
	s := repo.NewMemoryStore()

	prices := map[string][]string{
		"stl1": {"10", "11", "14"},
		"stl2": {"15", "12", "15"},
	}
	for capacity, id := range []string{"stl1", "stl2"} {
		require.NoError(t, s.AddSettlementVariant(ctx, domain.SettlementVariant{
			ID: id, RoomID: "room-1", Capacity: capacity + 1, Enabled: true,
		}))
		for i, a := range prices[id] {
			require.NoError(t, s.AddBasePrice(ctx, domain.BasePrice{
				SettlementID: id, Date: day1.AddDays(i), Amount: domain.MustParseMoney(a),
			}))
		}
	}

	discounts := []struct {
		discount domain.Discount
		values   []string
	}{
		{domain.Discount{ID: "norm", Kind: domain.KindNormal, Percentage: true,
			Apply: domain.StackFlags{NoRefund: true, CreditCard: true}}, []string{"25", "15", "10"}},
		{domain.Discount{ID: "norefund", Kind: domain.KindNoRefund}, []string{"0.5", "0.6"}},
		{domain.Discount{ID: "card", Kind: domain.KindCreditCard, Percentage: true}, []string{"5", "7"}},
	}
	for _, d := range discounts {
		require.NoError(t, s.AddDiscount(ctx, d.discount))
		for i, v := range d.values {
			require.NoError(t, s.AddRoomDiscount(ctx, domain.RoomDiscount{
				RoomID: "room-1", DiscountID: d.discount.ID, Date: day1.AddDays(i), Value: domain.MustParseMoney(v),
			}))
		}
	}
	return s
}

func assertTotals(t *testing.T, res *Result, standard, norefund, creditcard string) {
	t.Helper()
	require.True(t, res.Available, res.Reason)
	want := map[domain.Policy]string{
		domain.PolicyStandard:   standard,
		domain.PolicyNoRefund:   norefund,
		domain.PolicyCreditCard: creditcard,
	}
	for p, w := range want {
		total, ok := res.Total(p)
		require.True(t, ok, "policy %s missing", p)
		assert.Equal(t, w, total.String(), "policy %s", p)
	}
}

func TestQuery_Execute(t *testing.T) {
	q := NewQuery(newStore(t), nil, nil, nil, nil)
	ctx := context.Background()

	res, err := q.Execute(ctx, &Request{RoomID: "room-1", Stay: stay(t, 1, 3), Guests: 2})
	require.NoError(t, err)
	assertTotals(t, res, "21.45", "20.35", "20.1735")
	assert.Equal(t, "27", res.Base.String())
	assert.Equal(t, "stl2", res.SettlementID)

	// Night allocations add up to the policy total.
	for _, pq := range res.Policies {
		sum := domain.Zero()
		for _, n := range pq.Nights {
			sum = sum.Add(n.Net)
		}
		assert.True(t, sum.Equals(pq.Total), "policy %s", pq.Policy)
	}
}

func TestQuery_Execute_Unavailable(t *testing.T) {
	q := NewQuery(newStore(t), nil, nil, nil, nil)
	ctx := context.Background()

	res, err := q.Execute(ctx, &Request{RoomID: "room-1", Stay: stay(t, 1, 3), Guests: 3})
	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.True(t, strings.HasPrefix(res.Reason, domain.ErrNoSettlement.Error()))
	assert.Empty(t, res.Policies)

	res, err = q.Execute(ctx, &Request{RoomID: "room-1", Stay: stay(t, 2, 6), Guests: 1})
	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Equal(t, domain.ErrIncompleteCalendar.Error(), res.Reason)
}

func TestQuery_Execute_CustomPolicies(t *testing.T) {
	calc := domain.NewPricingCalculator(domain.StackingPolicy{Name: domain.PolicyNoRefund, Secondary: domain.KindNoRefund})
	q := NewQuery(newStore(t), calc, nil, nil, nil)

	res, err := q.Execute(context.Background(), &Request{RoomID: "room-1", Stay: stay(t, 1, 3), Guests: 1})
	require.NoError(t, err)
	require.Len(t, res.Policies, 1)

	total, ok := res.Total(domain.PolicyNoRefund)
	require.True(t, ok)
	assert.Equal(t, "15.75", total.String())

	_, ok = res.Total(domain.PolicyStandard)
	assert.False(t, ok)
}

func TestQuery_Execute_CacheRoundTrip(t *testing.T) {
	c := cache.NewMemoryCache(clock.NewRealClock(), time.Minute)
	q := NewQuery(newStore(t), nil, c, nil, nil)
	ctx := context.Background()
	req := &Request{RoomID: "room-1", Stay: stay(t, 1, 3), Guests: 2}

	_, err := q.Execute(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	cached, err := q.Execute(ctx, req)
	require.NoError(t, err)
	assertTotals(t, cached, "21.45", "20.35", "20.1735")
	assert.Equal(t, []string{"norm", "card"}, cached.Policies[2].DiscountIDs)
	assert.Equal(t, day1, cached.Policies[0].Nights[0].Date)
}

func TestQuery_Execute_SharedCachePerPolicyList(t *testing.T) {
	c := cache.NewMemoryCache(clock.NewRealClock(), time.Minute)
	store := newStore(t)
	all := NewQuery(store, nil, c, nil, nil)
	noRefundOnly := NewQuery(store, domain.NewPricingCalculator(domain.StackingPolicy{Name: domain.PolicyNoRefund, Secondary: domain.KindNoRefund}), c, nil, nil)
	ctx := context.Background()
	req := &Request{RoomID: "room-1", Stay: stay(t, 1, 3), Guests: 1}

	res, err := all.Execute(ctx, req)
	require.NoError(t, err)
	require.Len(t, res.Policies, 3)

	res, err = noRefundOnly.Execute(ctx, req)
	require.NoError(t, err)
	require.Len(t, res.Policies, 1)
	assert.Equal(t, domain.PolicyNoRefund, res.Policies[0].Policy)
	assert.Equal(t, 2, c.Len())
}

func TestQuery_Execute_Errors(t *testing.T) {
	q := NewQuery(newStore(t), nil, nil, nil, nil)
	ctx := context.Background()

	_, err := q.Execute(ctx, &Request{RoomID: "room-1", Stay: stay(t, 1, 2), Guests: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidGuests)

	res, err := q.Execute(ctx, &Request{RoomID: "nowhere", Stay: stay(t, 1, 2), Guests: 1})
	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.True(t, strings.HasPrefix(res.Reason, domain.ErrRoomNotFound.Error()), res.Reason)
}
