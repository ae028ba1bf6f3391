package m_discount

// Table name constant
const TableName = "discounts"

// Field name constants for type-safe database access
const (
	DiscountID      = "discount_id"
	HotelID         = "hotel_id"
	Kind            = "kind"
	Percentage      = "percentage"
	Days            = "days"
	AtPriceDays     = "at_price_days"
	ApplyNorefund   = "apply_norefund"
	ApplyCreditcard = "apply_creditcard"
	ApplyPeriod     = "apply_period"
	ApplyPackage    = "apply_package"
)
