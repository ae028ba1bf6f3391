package domain

import (
	"sort"

	"cloud.google.com/go/civil"
)

// discountStack is one candidate combination of primary discounts, in application order.
type discountStack struct {
	layers []*discountCalendar
}

// IDs lists the discount ids of the stack in application order.
func (s discountStack) IDs() []string {
	ids := make([]string, len(s.layers))
	for i, l := range s.layers {
		ids[i] = l.discount.ID
	}
	return ids
}

// permits reports whether every layer of the stack allows kind on top of it.
// An empty stack permits every secondary kind.
func (s discountStack) permits(kind DiscountKind) bool {
	for _, l := range s.layers {
		if !l.discount.Permits(kind) {
			return false
		}
	}
	return true
}

// preference ranks a stack for tie-breaks: the best-preferred kind in it wins.
func (s discountStack) preference() int {
	best := len(kindRules)
	for _, l := range s.layers {
		if p := kindRules[l.discount.Kind].preference; p < best {
			best = p
		}
	}
	return best
}

// candidateStacks enumerates every stack the engine prices.
// Chain kinds combine in chain order when the previous layer permits the next kind.
// Standalone kinds are priced alone. Without any primary discount the empty stack is the only candidate.
func candidateStacks(calendars []*discountCalendar) []discountStack {
	var chain, standalone []*discountCalendar
	for _, c := range calendars {
		switch c.discount.Kind.Class() {
		case ClassChain:
			chain = append(chain, c)
		case ClassStandalone:
			standalone = append(standalone, c)
		}
	}
	sort.SliceStable(chain, func(i, j int) bool {
		return kindRules[chain[i].discount.Kind].order < kindRules[chain[j].discount.Kind].order
	})

	var stacks []discountStack
	var walk func(prefix []*discountCalendar, from int)
	walk = func(prefix []*discountCalendar, from int) {
		for i := from; i < len(chain); i++ {
			next := chain[i]
			if len(prefix) > 0 {
				last := prefix[len(prefix)-1]
				if kindRules[last.discount.Kind].order >= kindRules[next.discount.Kind].order {
					continue
				}
				if !last.discount.Permits(next.discount.Kind) {
					continue
				}
			}
			layers := make([]*discountCalendar, len(prefix)+1)
			copy(layers, prefix)
			layers[len(prefix)] = next
			stacks = append(stacks, discountStack{layers: layers})
			walk(layers, i+1)
		}
	}
	walk(nil, 0)

	for _, c := range standalone {
		stacks = append(stacks, discountStack{layers: []*discountCalendar{c}})
	}

	if len(stacks) == 0 {
		stacks = append(stacks, discountStack{})
	}
	return stacks
}

// secondariesOf returns the calendars of kind, in first-seen order.
func secondariesOf(calendars []*discountCalendar, kind DiscountKind) []*discountCalendar {
	var out []*discountCalendar
	for _, c := range calendars {
		if c.discount.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// primariesByPreference returns the primary calendars, most preferred kind first.
func primariesByPreference(calendars []*discountCalendar) []*discountCalendar {
	var out []*discountCalendar
	for _, c := range calendars {
		if c.discount.Kind.IsPrimary() {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return kindRules[out[i].discount.Kind].preference < kindRules[out[j].discount.Kind].preference
	})
	return out
}

// coveringPrimary returns the first calendar with a value on night.
func coveringPrimary(primaries []*discountCalendar, night civil.Date) (*discountCalendar, *Money, bool) {
	for _, c := range primaries {
		if v, ok := c.valueOn(night); ok {
			return c, v, true
		}
	}
	return nil, nil, false
}
