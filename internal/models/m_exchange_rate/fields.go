package m_exchange_rate

// Table name constant
const TableName = "exchange_rates"

// Field name constants for type-safe database access
const (
	RateID       = "rate_id"
	CurrencyCode = "currency_code"
	Date         = "date"
	Nominal      = "nominal"
	OfficialRate = "official_rate"
	Rate         = "rate"
)
