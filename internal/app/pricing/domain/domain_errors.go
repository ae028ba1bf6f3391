package domain

import "errors"

// Domain errors as sentinel values
var (
	// Lookup outcomes. These are normal business results: callers report them as "no price".
	ErrNoSettlement       = errors.New("no enabled settlement variant covers the guest count")
	ErrIncompleteCalendar = errors.New("price calendar is incomplete for the requested stay")

	// Input errors
	ErrInvalidStay          = errors.New("date_out must be after date_in")
	ErrInvalidGuests        = errors.New("guest count must be positive")
	ErrEmptyRoomID          = errors.New("room id cannot be empty")
	ErrUnknownPolicy        = errors.New("unknown stacking policy")
	ErrInvalidKind          = errors.New("unknown discount kind")
	ErrInvalidWindow        = errors.New("at_price_days must be between 1 and days-1")
	ErrInvalidCapacity      = errors.New("settlement capacity must be positive")
	ErrMissingDiscountValue = errors.New("room discount has no value")

	// Data layer errors
	ErrDuplicateBasePrice  = errors.New("base price already exists for this settlement and date")
	ErrDuplicateSettlement = errors.New("settlement variant with this capacity already exists for the room")
	ErrNegativeAmount      = errors.New("base price amount cannot be negative")
	ErrDiscountNotFound    = errors.New("discount not found")
	ErrRoomNotFound        = errors.New("room has no settlement variants")
)

// IsUnavailable reports whether err is a "no valid price" outcome rather than a fault.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrNoSettlement) || errors.Is(err, ErrIncompleteCalendar) || errors.Is(err, ErrRoomNotFound)
}
