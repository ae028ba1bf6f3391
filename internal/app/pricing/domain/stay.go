package domain

import (
	"fmt"

	"cloud.google.com/go/civil"
)

// Stay is a half-open range of nights [In, Out). The checkout day is never charged.
type Stay struct {
	In  civil.Date
	Out civil.Date
}

// NewStay validates that checkout is strictly after check-in.
func NewStay(in, out civil.Date) (Stay, error) {
	if !in.IsValid() || !out.IsValid() {
		return Stay{}, fmt.Errorf("%w: invalid date", ErrInvalidStay)
	}
	if !out.After(in) {
		return Stay{}, fmt.Errorf("%w: %s is not after %s", ErrInvalidStay, out, in)
	}
	return Stay{In: in, Out: out}, nil
}

// ParseStay parses two ISO dates (YYYY-MM-DD).
func ParseStay(in, out string) (Stay, error) {
	dIn, err := civil.ParseDate(in)
	if err != nil {
		return Stay{}, fmt.Errorf("%w: date_in: %v", ErrInvalidStay, err)
	}
	dOut, err := civil.ParseDate(out)
	if err != nil {
		return Stay{}, fmt.Errorf("%w: date_out: %v", ErrInvalidStay, err)
	}
	return NewStay(dIn, dOut)
}

// Len returns the number of charged nights.
func (s Stay) Len() int {
	return s.Out.DaysSince(s.In)
}

// Nights lists every charged night in chronological order.
func (s Stay) Nights() []civil.Date {
	nights := make([]civil.Date, 0, s.Len())
	for d := s.In; d.Before(s.Out); d = d.AddDays(1) {
		nights = append(nights, d)
	}
	return nights
}

// Contains reports whether d is one of the charged nights.
func (s Stay) Contains(d civil.Date) bool {
	return !d.Before(s.In) && d.Before(s.Out)
}

// String formats the stay as "2024-05-01..2024-05-04".
func (s Stay) String() string {
	return s.In.String() + ".." + s.Out.String()
}
