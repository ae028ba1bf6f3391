package domain

import "cloud.google.com/go/civil"

// PricingCalculator prices stays against base prices and discount calendars.
// It holds no state beyond its policy list and is safe for concurrent use.
type PricingCalculator struct {
	policies []StackingPolicy
}

// NewPricingCalculator creates a calculator for the given policies, DefaultPolicies when none are given.
func NewPricingCalculator(policies ...StackingPolicy) *PricingCalculator {
	if len(policies) == 0 {
		policies = DefaultPolicies
	}
	return &PricingCalculator{policies: policies}
}

// Policies returns the policies the calculator quotes, in order.
func (pc *PricingCalculator) Policies() []StackingPolicy {
	return pc.policies
}

// BaseTotal sums the nightly base prices of the stay.
// Returns ErrIncompleteCalendar if any night has no price.
func (pc *PricingCalculator) BaseTotal(stay Stay, prices []BasePrice) (*Money, error) {
	amounts, err := nightlyPrices(stay, prices)
	if err != nil {
		return nil, err
	}
	return Sum(amounts...), nil
}

// QuoteInput is everything needed to price one stay.
type QuoteInput struct {
	Stay       Stay
	Settlement SettlementVariant
	Prices     []BasePrice
	Discounts  []DiscountDay
}

// Quote prices the stay under every policy.
func (pc *PricingCalculator) Quote(in QuoteInput) (*Quote, error) {
	base, err := nightlyPrices(in.Stay, in.Prices)
	if err != nil {
		return nil, err
	}

	nights := in.Stay.Nights()
	calendars := groupDiscountDays(in.Discounts)
	stacks := candidateStacks(calendars)

	q := &Quote{
		RoomID:     in.Settlement.RoomID,
		Settlement: in.Settlement,
		Stay:       in.Stay,
		Base:       Sum(base...),
		Policies:   make([]PolicyQuote, 0, len(pc.policies)),
	}
	for _, policy := range pc.policies {
		q.Policies = append(q.Policies, pc.bestFor(policy, nights, base, stacks, calendars))
	}
	return q, nil
}

type candidate struct {
	stack       discountStack
	secondary   *discountCalendar
	fallbackIDs []string
	amounts     []*Money
	total       *Money
}

func (pc *PricingCalculator) bestFor(
	policy StackingPolicy,
	nights []civil.Date,
	base []*Money,
	stacks []discountStack,
	calendars []*discountCalendar,
) PolicyQuote {
	fallback := primariesByPreference(calendars)

	var best *candidate
	for _, stack := range stacks {
		secondaries := []*discountCalendar{nil}
		if policy.Secondary != KindUnknown && stack.permits(policy.Secondary) {
			if found := secondariesOf(calendars, policy.Secondary); len(found) > 0 {
				secondaries = found
			}
		}
		for _, sec := range secondaries {
			c := priceStack(nights, base, stack, sec, fallback)
			if best == nil || better(c, best) {
				best = c
			}
		}
	}

	pq := PolicyQuote{
		Policy:      policy.Name,
		Total:       best.total,
		Nights:      make([]NightPrice, len(nights)),
		DiscountIDs: append(best.stack.IDs(), best.fallbackIDs...),
	}
	if best.secondary != nil {
		pq.DiscountIDs = append(pq.DiscountIDs, best.secondary.discount.ID)
	}
	for i, n := range nights {
		pq.Nights[i] = NightPrice{Date: n, Base: base[i].Copy(), Net: best.amounts[i]}
	}
	return pq
}

// better orders candidates by total, then by stack preference.
func better(c, than *candidate) bool {
	switch c.total.Cmp(than.total) {
	case -1:
		return true
	case 1:
		return false
	}
	return c.stack.preference() < than.stack.preference()
}

// priceStack applies the stack night by night, then the secondary, then any package windows.
// A night none of the stack's layers covers takes the preferred primary that covers it, priced
// without a window; the secondary stays on that night only if that primary permits it.
func priceStack(nights []civil.Date, base []*Money, stack discountStack, secondary *discountCalendar, fallback []*discountCalendar) *candidate {
	c := &candidate{stack: stack, secondary: secondary, amounts: make([]*Money, len(nights))}
	seen := make(map[string]bool)
	for i, night := range nights {
		a := base[i]
		covered := false
		for _, layer := range stack.layers {
			if v, ok := layer.valueOn(night); ok {
				a = layer.discount.ApplyTo(a, v)
				covered = true
			}
		}
		withSecondary := secondary != nil
		if !covered {
			if fb, v, ok := coveringPrimary(fallback, night); ok {
				a = fb.discount.ApplyTo(a, v)
				withSecondary = withSecondary && fb.discount.Permits(secondary.discount.Kind)
				if !seen[fb.discount.ID] {
					seen[fb.discount.ID] = true
					c.fallbackIDs = append(c.fallbackIDs, fb.discount.ID)
				}
			}
		}
		if withSecondary {
			if v, ok := secondary.valueOn(night); ok {
				a = secondary.discount.ApplyTo(a, v)
			}
		}
		c.amounts[i] = a
	}
	applyWindows(nights, c.amounts, stack)

	c.total = Sum(c.amounts...)
	return c
}
