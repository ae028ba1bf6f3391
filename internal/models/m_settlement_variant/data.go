package m_settlement_variant

import (
	"cloud.google.com/go/spanner"
)

// Data represents a settlement variant row.
type Data struct {
	SettlementID string `spanner:"settlement_id"`
	RoomID       string `spanner:"room_id"`
	Capacity     int64  `spanner:"capacity"`
	Enabled      bool   `spanner:"enabled"`
}

// Model provides type-safe database operations for settlement variants.
type Model struct{}

// NewModel creates a new settlement variant model.
func NewModel() *Model {
	return &Model{}
}

// InsertMut creates a mutation for inserting a settlement variant.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	mut, _ := spanner.InsertStruct(TableName, data)
	return mut
}

// ReadColumns returns the column names for reading settlement variants.
func (m *Model) ReadColumns() []string {
	return []string{SettlementID, RoomID, Capacity, Enabled}
}
