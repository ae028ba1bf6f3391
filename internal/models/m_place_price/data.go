package m_place_price

import (
	"cloud.google.com/go/civil"
	"cloud.google.com/go/spanner"
)

// Data represents a nightly base price row. The amount is kept as an exact fraction.
type Data struct {
	SettlementID      string     `spanner:"settlement_id"`
	Date              civil.Date `spanner:"date"`
	AmountNumerator   int64      `spanner:"amount_numerator"`
	AmountDenominator int64      `spanner:"amount_denominator"`
}

// Model provides type-safe database operations for base prices.
type Model struct{}

// NewModel creates a new base price model.
func NewModel() *Model {
	return &Model{}
}

// InsertMut creates a mutation for inserting a base price.
// Insert (not upsert) so that a second price for the same night fails with AlreadyExists.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	mut, _ := spanner.InsertStruct(TableName, data)
	return mut
}

// ReadColumns returns the column names for reading base prices.
func (m *Model) ReadColumns() []string {
	return []string{SettlementID, Date, AmountNumerator, AmountDenominator}
}
