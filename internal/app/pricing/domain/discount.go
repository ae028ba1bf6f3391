package domain

import (
	"fmt"
	"math/big"

	"cloud.google.com/go/civil"
)

var hundred = big.NewRat(100, 1)

// StackFlags declare which other kinds may be layered on top of a discount once it is applied.
type StackFlags struct {
	NoRefund   bool
	CreditCard bool
	Period     bool
	Package    bool
}

// Discount is a hotel-wide discount definition. Its per-day values live in RoomDiscount rows.
type Discount struct {
	ID      string
	HotelID string
	Kind    DiscountKind
	// Percentage true means values are percentage points (25 means 25%); false means fixed amounts.
	Percentage bool
	// Days and AtPriceDays define a package window: AtPriceDays of every Days nights are charged.
	Days        int
	AtPriceDays int
	Apply       StackFlags
}

// Validate checks kind and window bounds.
func (d *Discount) Validate() error {
	if d.Kind == KindUnknown || d.Kind.Class() == ClassNone {
		return fmt.Errorf("%w: %s", ErrInvalidKind, d.Kind)
	}
	if d.Days < 0 || d.AtPriceDays < 0 {
		return ErrInvalidWindow
	}
	if d.Days > 0 && (d.AtPriceDays < 1 || d.AtPriceDays >= d.Days) {
		return fmt.Errorf("%w: days=%d at_price_days=%d", ErrInvalidWindow, d.Days, d.AtPriceDays)
	}
	return nil
}

// Permits reports whether a discount of kind may be layered on top of this one.
func (d *Discount) Permits(kind DiscountKind) bool {
	switch kind {
	case KindNoRefund:
		return d.Apply.NoRefund
	case KindCreditCard:
		return d.Apply.CreditCard
	case KindPeriod:
		return d.Apply.Period
	case KindPackage:
		return d.Apply.Package
	default:
		return false
	}
}

// HasWindow reports whether the discount redistributes nights through a package window.
func (d *Discount) HasWindow() bool {
	return d.Kind.Windowed() && d.Days > 0 && d.AtPriceDays > 0 && d.AtPriceDays < d.Days
}

// ApplyTo reduces a running amount by value, never below zero.
// Fixed: a - value. Percentage: a * (1 - value/100).
func (d *Discount) ApplyTo(amount, value *Money) *Money {
	var out *Money
	if !d.Percentage {
		out = amount.Subtract(value)
	} else {
		factor := new(big.Rat).Quo(value.rat, hundred)
		factor.Sub(big.NewRat(1, 1), factor)
		out = amount.MultiplyByRat(factor)
	}
	if out.IsNegative() {
		return Zero()
	}
	return out
}

// RoomDiscount is the value of a discount for one room on one night.
type RoomDiscount struct {
	RoomID     string
	DiscountID string
	Date       civil.Date
	Value      *Money
}

// Validate checks that the row names a room and a discount and carries a value.
func (rd RoomDiscount) Validate() error {
	if rd.RoomID == "" {
		return ErrEmptyRoomID
	}
	if rd.DiscountID == "" {
		return fmt.Errorf("%w: empty id", ErrDiscountNotFound)
	}
	if rd.Value == nil {
		return fmt.Errorf("%w: %s on %s", ErrMissingDiscountValue, rd.DiscountID, rd.Date)
	}
	if !rd.Date.IsValid() {
		return fmt.Errorf("invalid date %s", rd.Date)
	}
	return nil
}

// DiscountDay joins a RoomDiscount row with its parent Discount, as returned by stores.
type DiscountDay struct {
	Discount *Discount
	Date     civil.Date
	Value    *Money
}

// discountCalendar holds the per-night values of one discount within a stay.
type discountCalendar struct {
	discount *Discount
	values   map[civil.Date]*Money
}

func (c *discountCalendar) valueOn(d civil.Date) (*Money, bool) {
	v, ok := c.values[d]
	return v, ok
}

// groupDiscountDays folds store rows into one calendar per discount, keeping first-seen order.
func groupDiscountDays(days []DiscountDay) []*discountCalendar {
	byID := make(map[string]*discountCalendar)
	var out []*discountCalendar
	for _, dd := range days {
		if dd.Discount == nil {
			continue
		}
		cal, ok := byID[dd.Discount.ID]
		if !ok {
			cal = &discountCalendar{discount: dd.Discount, values: make(map[civil.Date]*Money)}
			byID[dd.Discount.ID] = cal
			out = append(out, cal)
		}
		cal.values[dd.Date] = dd.Value
	}
	return out
}
