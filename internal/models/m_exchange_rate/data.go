package m_exchange_rate

import (
	"math/big"

	"cloud.google.com/go/civil"
	"cloud.google.com/go/spanner"
)

// Data represents a published exchange rate row. Rates are NUMERIC columns.
type Data struct {
	RateID       string     `spanner:"rate_id"`
	CurrencyCode string     `spanner:"currency_code"`
	Date         civil.Date `spanner:"date"`
	Nominal      big.Rat    `spanner:"nominal"`
	OfficialRate big.Rat    `spanner:"official_rate"`
	Rate         big.Rat    `spanner:"rate"`
}

// Model provides type-safe database operations for exchange rates.
type Model struct{}

// NewModel creates a new exchange rate model.
func NewModel() *Model {
	return &Model{}
}

// InsertMut creates a mutation for inserting an exchange rate.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	mut, _ := spanner.InsertStruct(TableName, data)
	return mut
}

// ReadColumns returns the column names for reading exchange rates.
func (m *Model) ReadColumns() []string {
	return []string{RateID, CurrencyCode, Date, Nominal, OfficialRate, Rate}
}
