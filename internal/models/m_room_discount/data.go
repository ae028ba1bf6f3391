package m_room_discount

import (
	"cloud.google.com/go/civil"
	"cloud.google.com/go/spanner"
)

// Data represents the value of a discount for one room and night.
type Data struct {
	RoomID           string     `spanner:"room_id"`
	DiscountID       string     `spanner:"discount_id"`
	Date             civil.Date `spanner:"date"`
	ValueNumerator   int64      `spanner:"value_numerator"`
	ValueDenominator int64      `spanner:"value_denominator"`
}

// Model provides type-safe database operations for room discounts.
type Model struct{}

// NewModel creates a new room discount model.
func NewModel() *Model {
	return &Model{}
}

// UpsertMut creates a mutation that sets the value of a room discount for a night.
func (m *Model) UpsertMut(data *Data) *spanner.Mutation {
	mut, _ := spanner.InsertOrUpdateStruct(TableName, data)
	return mut
}

// ReadColumns returns the column names for reading room discounts.
func (m *Model) ReadColumns() []string {
	return []string{RoomID, DiscountID, Date, ValueNumerator, ValueDenominator}
}
