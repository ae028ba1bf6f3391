package m_room_discount

// Table name constant
const TableName = "room_discounts"

// Field name constants for type-safe database access
const (
	RoomID           = "room_id"
	DiscountID       = "discount_id"
	Date             = "date"
	Value            = "value"
	ValueNumerator   = "value_numerator"
	ValueDenominator = "value_denominator"
)
