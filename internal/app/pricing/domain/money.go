package domain

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with precise decimal arithmetic using big.Rat.
// Every intermediate pricing result stays exact; rounding only happens in Decimal.
type Money struct {
	rat *big.Rat
}

// NewMoney creates a new Money instance from numerator and denominator.
// Example: NewMoney(1685, 100) represents 16.85
func NewMoney(numerator, denominator int64) (*Money, error) {
	if denominator == 0 {
		return nil, fmt.Errorf("denominator cannot be zero")
	}
	if denominator < 0 {
		return nil, fmt.Errorf("denominator must be positive, got %d", denominator)
	}

	return &Money{rat: big.NewRat(numerator, denominator)}, nil
}

// ParseMoney parses a decimal string such as "16.85" or "-0.5".
func ParseMoney(s string) (*Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return MoneyFromDecimal(d), nil
}

// MustParseMoney is ParseMoney for constants and fixtures. It panics on malformed input.
func MustParseMoney(s string) *Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// MoneyFromDecimal converts a shopspring decimal without loss.
func MoneyFromDecimal(d decimal.Decimal) *Money {
	return &Money{rat: d.Rat()}
}

// MoneyFromInt creates a whole amount.
func MoneyFromInt(v int64) *Money {
	return &Money{rat: new(big.Rat).SetInt64(v)}
}

// NewMoneyFromRat creates a new Money instance from a big.Rat.
func NewMoneyFromRat(rat *big.Rat) *Money {
	if rat == nil {
		return Zero()
	}
	return &Money{rat: new(big.Rat).Set(rat)}
}

// Zero returns a zero amount.
func Zero() *Money {
	return &Money{rat: new(big.Rat)}
}

// Sum adds all amounts. Sum of nothing is zero.
func Sum(amounts ...*Money) *Money {
	total := new(big.Rat)
	for _, m := range amounts {
		total.Add(total, m.rat)
	}
	return &Money{rat: total}
}

// Rat returns a copy of the underlying rational value.
func (m *Money) Rat() *big.Rat {
	return new(big.Rat).Set(m.rat)
}

// Add adds two Money values and returns a new Money instance.
func (m *Money) Add(other *Money) *Money {
	return &Money{rat: new(big.Rat).Add(m.rat, other.rat)}
}

// Subtract subtracts another Money value from this one and returns a new Money instance.
func (m *Money) Subtract(other *Money) *Money {
	return &Money{rat: new(big.Rat).Sub(m.rat, other.rat)}
}

// Multiply multiplies this Money value by another and returns a new Money instance.
func (m *Money) Multiply(other *Money) *Money {
	return &Money{rat: new(big.Rat).Mul(m.rat, other.rat)}
}

// MultiplyByRat multiplies this Money value by a rational number and returns a new Money instance.
func (m *Money) MultiplyByRat(rat *big.Rat) *Money {
	return &Money{rat: new(big.Rat).Mul(m.rat, rat)}
}

// Divide divides this Money value by another and returns a new Money instance.
func (m *Money) Divide(other *Money) (*Money, error) {
	if other.rat.Sign() == 0 {
		return nil, fmt.Errorf("cannot divide by zero")
	}
	return &Money{rat: new(big.Rat).Quo(m.rat, other.rat)}, nil
}

// IsZero returns true if the money value is zero.
func (m *Money) IsZero() bool {
	return m.rat.Sign() == 0
}

// IsNegative returns true if the money value is negative.
func (m *Money) IsNegative() bool {
	return m.rat.Sign() < 0
}

// Cmp compares two amounts and returns -1, 0 or +1.
func (m *Money) Cmp(other *Money) int {
	return m.rat.Cmp(other.rat)
}

// LessThan returns true if this Money value is less than another.
func (m *Money) LessThan(other *Money) bool {
	return m.rat.Cmp(other.rat) < 0
}

// GreaterThan returns true if this Money value is greater than another.
func (m *Money) GreaterThan(other *Money) bool {
	return m.rat.Cmp(other.rat) > 0
}

// Equals returns true if this Money value equals another.
func (m *Money) Equals(other *Money) bool {
	return m.rat.Cmp(other.rat) == 0
}

// Decimal rounds half away from zero to the given number of places. Presentation only.
func (m *Money) Decimal(places int32) decimal.Decimal {
	num := decimal.NewFromBigInt(m.rat.Num(), 0)
	den := decimal.NewFromBigInt(m.rat.Denom(), 0)
	return num.DivRound(den, places)
}

// Numerator returns the numerator of the normalized fraction.
// Callers persisting the value must check IsInt64 first.
func (m *Money) Numerator() int64 {
	return m.rat.Num().Int64()
}

// Denominator returns the denominator of the normalized fraction.
func (m *Money) Denominator() int64 {
	return m.rat.Denom().Int64()
}

// IsInt64 reports whether numerator and denominator both fit into int64.
func (m *Money) IsInt64() bool {
	return m.rat.Num().IsInt64() && m.rat.Denom().IsInt64()
}

// String returns the shortest exact decimal form when one exists ("16.85", "517"),
// otherwise the value rounded to 10 places.
func (m *Money) String() string {
	if places, ok := terminatingPlaces(m.rat.Denom()); ok {
		return m.Decimal(places).String()
	}
	return m.rat.FloatString(10)
}

// MarshalText encodes the exact fraction, e.g. "337/20".
func (m *Money) MarshalText() ([]byte, error) {
	return m.rat.MarshalText()
}

// UnmarshalText accepts both "a/b" fractions and decimal strings.
func (m *Money) UnmarshalText(text []byte) error {
	r, ok := new(big.Rat).SetString(string(text))
	if !ok {
		return fmt.Errorf("invalid amount %q", text)
	}
	m.rat = r
	return nil
}

// Copy creates a deep copy of this Money instance.
func (m *Money) Copy() *Money {
	return &Money{rat: new(big.Rat).Set(m.rat)}
}

// terminatingPlaces returns the number of decimal places needed to print 1/den exactly,
// or false when den has prime factors other than 2 and 5.
func terminatingPlaces(den *big.Int) (int32, bool) {
	d := new(big.Int).Set(den)
	two, five := big.NewInt(2), big.NewInt(5)
	var twos, fives int32
	mod := new(big.Int)
	for {
		q, r := new(big.Int).QuoRem(d, two, mod)
		if r.Sign() != 0 {
			break
		}
		d = q
		twos++
	}
	for {
		q, r := new(big.Int).QuoRem(d, five, mod)
		if r.Sign() != 0 {
			break
		}
		d = q
		fives++
	}
	if d.Cmp(big.NewInt(1)) != 0 {
		return 0, false
	}
	if twos > fives {
		return twos, true
	}
	return fives, true
}
