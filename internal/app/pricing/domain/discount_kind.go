package domain

import (
	"fmt"
	"strings"
)

// DiscountKind enumerates the discount families a hotel can publish.
type DiscountKind int

const (
	KindUnknown DiscountKind = iota
	KindNormal
	KindPeriod
	KindPackage
	KindNoRefund
	KindCreditCard
	KindEarly
	KindLater
	KindHoliday
	KindSpecial
	KindLastMinute
)

var kindNames = map[DiscountKind]string{
	KindUnknown:    "unknown",
	KindNormal:     "normal",
	KindPeriod:     "period",
	KindPackage:    "package",
	KindNoRefund:   "norefund",
	KindCreditCard: "creditcard",
	KindEarly:      "early",
	KindLater:      "later",
	KindHoliday:    "holiday",
	KindSpecial:    "special",
	KindLastMinute: "last_minute",
}

// KindClass groups kinds by how they combine.
type KindClass int

const (
	// ClassNone kinds never take part in pricing.
	ClassNone KindClass = iota
	// ClassChain kinds stack on each other in chain order (normal, period, package).
	ClassChain
	// ClassStandalone kinds form a primary stack of their own.
	ClassStandalone
	// ClassSecondary kinds layer on top of a primary stack when it permits them.
	ClassSecondary
)

type kindRule struct {
	class KindClass
	// order is the application order inside a chain.
	order int
	// preference breaks ties between stacks with equal totals, lower wins.
	preference int
}

// kindRules is the precedence table. Chain order applies normal first, then period, then package.
// Preference favours period over package over normal when totals tie.
var kindRules = map[DiscountKind]kindRule{
	KindNormal:     {class: ClassChain, order: 0, preference: 2},
	KindPeriod:     {class: ClassChain, order: 1, preference: 0},
	KindPackage:    {class: ClassChain, order: 2, preference: 1},
	KindEarly:      {class: ClassStandalone, preference: 3},
	KindLater:      {class: ClassStandalone, preference: 3},
	KindHoliday:    {class: ClassStandalone, preference: 3},
	KindSpecial:    {class: ClassStandalone, preference: 3},
	KindLastMinute: {class: ClassStandalone, preference: 3},
	KindNoRefund:   {class: ClassSecondary},
	KindCreditCard: {class: ClassSecondary},
}

// PrimaryKinds are the kinds that can open a stack, in chain order followed by standalone kinds.
var PrimaryKinds = []DiscountKind{
	KindNormal, KindPeriod, KindPackage,
	KindEarly, KindLater, KindHoliday, KindSpecial, KindLastMinute,
}

// String returns the storage name of the kind.
func (k DiscountKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Class returns how the kind combines with others.
func (k DiscountKind) Class() KindClass {
	return kindRules[k].class
}

// IsPrimary reports whether the kind can open a stack.
func (k DiscountKind) IsPrimary() bool {
	c := k.Class()
	return c == ClassChain || c == ClassStandalone
}

// Windowed reports whether discounts of this kind may carry a package window.
func (k DiscountKind) Windowed() bool {
	return k == KindPeriod || k == KindPackage
}

// ParseDiscountKind maps a storage name back to its kind.
func ParseDiscountKind(s string) (DiscountKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// MarshalText encodes the kind by name.
func (k DiscountKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *DiscountKind) UnmarshalText(text []byte) error {
	parsed, err := ParseDiscountKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
