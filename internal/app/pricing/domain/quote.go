package domain

import "cloud.google.com/go/civil"

// NightPrice is the allocation of one night of a stay.
type NightPrice struct {
	Date civil.Date
	Base *Money
	Net  *Money
}

// PolicyQuote is the cheapest total found for one stacking policy.
type PolicyQuote struct {
	Policy Policy
	Total  *Money
	Nights []NightPrice
	// DiscountIDs lists the discounts applied, primary stack first, then the secondary if any.
	DiscountIDs []string
}

// Quote is the priced stay for a resolved settlement.
type Quote struct {
	RoomID     string
	Settlement SettlementVariant
	Stay       Stay
	Base       *Money
	Policies   []PolicyQuote
}

// Total returns the total of the named policy.
func (q *Quote) Total(name Policy) (*Money, bool) {
	for _, p := range q.Policies {
		if p.Policy == name {
			return p.Total, true
		}
	}
	return nil, false
}

// Totals maps policy name to total.
func (q *Quote) Totals() map[Policy]*Money {
	out := make(map[Policy]*Money, len(q.Policies))
	for _, p := range q.Policies {
		out[p.Policy] = p.Total
	}
	return out
}

// AverageNightly is the base total divided by the number of nights.
func (q *Quote) AverageNightly() *Money {
	n := q.Stay.Len()
	if n == 0 || q.Base == nil {
		return Zero()
	}
	avg, _ := q.Base.Divide(MoneyFromInt(int64(n)))
	return avg
}
