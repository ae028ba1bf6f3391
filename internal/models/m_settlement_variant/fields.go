package m_settlement_variant

// Table name constant
const TableName = "settlement_variants"

// Field name constants for type-safe database access
const (
	SettlementID = "settlement_id"
	RoomID       = "room_id"
	Capacity     = "capacity"
	Enabled      = "enabled"
)
