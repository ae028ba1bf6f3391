package domain

import (
	"fmt"
	"sort"

	"cloud.google.com/go/civil"
)

// SettlementVariant is a room configuration for a given number of guests, priced per night.
type SettlementVariant struct {
	ID       string
	RoomID   string
	Capacity int
	Enabled  bool
}

// BasePrice is the nightly amount of a settlement variant on one date.
type BasePrice struct {
	SettlementID string
	Date         civil.Date
	Amount       *Money
}

// ResolveSettlement picks the enabled variant with the smallest capacity that fits guests.
func ResolveSettlement(variants []SettlementVariant, guests int) (SettlementVariant, error) {
	if guests < 1 {
		return SettlementVariant{}, fmt.Errorf("%w: %d", ErrInvalidGuests, guests)
	}

	eligible := make([]SettlementVariant, 0, len(variants))
	for _, v := range variants {
		if v.Enabled && v.Capacity >= guests {
			eligible = append(eligible, v)
		}
	}
	if len(eligible) == 0 {
		return SettlementVariant{}, fmt.Errorf("%w: %d guests", ErrNoSettlement, guests)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Capacity < eligible[j].Capacity
	})
	return eligible[0], nil
}

// nightlyPrices indexes base prices by night and fails if any night of the stay is missing.
func nightlyPrices(stay Stay, prices []BasePrice) ([]*Money, error) {
	byDate := make(map[civil.Date]*Money, len(prices))
	for _, p := range prices {
		byDate[p.Date] = p.Amount
	}

	nights := stay.Nights()
	out := make([]*Money, len(nights))
	for i, night := range nights {
		amount, ok := byDate[night]
		if !ok {
			return nil, fmt.Errorf("%w: no price on %s", ErrIncompleteCalendar, night)
		}
		out[i] = amount
	}
	return out, nil
}
