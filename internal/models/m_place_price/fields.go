package m_place_price

// Table name constant
const TableName = "place_prices"

// Field name constants for type-safe database access
const (
	SettlementID      = "settlement_id"
	Date              = "date"
	Amount            = "amount"
	AmountNumerator   = "amount_numerator"
	AmountDenominator = "amount_denominator"
)
