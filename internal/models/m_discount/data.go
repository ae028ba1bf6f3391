package m_discount

import (
	"cloud.google.com/go/spanner"
)

// Data represents a discount definition row.
type Data struct {
	DiscountID      string `spanner:"discount_id"`
	HotelID         string `spanner:"hotel_id"`
	Kind            string `spanner:"kind"`
	Percentage      bool   `spanner:"percentage"`
	Days            int64  `spanner:"days"`
	AtPriceDays     int64  `spanner:"at_price_days"`
	ApplyNorefund   bool   `spanner:"apply_norefund"`
	ApplyCreditcard bool   `spanner:"apply_creditcard"`
	ApplyPeriod     bool   `spanner:"apply_period"`
	ApplyPackage    bool   `spanner:"apply_package"`
}

// Model provides type-safe database operations for discounts.
type Model struct{}

// NewModel creates a new discount model.
func NewModel() *Model {
	return &Model{}
}

// UpsertMut creates a mutation that inserts or replaces a discount definition.
func (m *Model) UpsertMut(data *Data) *spanner.Mutation {
	mut, _ := spanner.InsertOrUpdateStruct(TableName, data)
	return mut
}

// ReadColumns returns the column names for reading discounts.
func (m *Model) ReadColumns() []string {
	return []string{
		DiscountID,
		HotelID,
		Kind,
		Percentage,
		Days,
		AtPriceDays,
		ApplyNorefund,
		ApplyCreditcard,
		ApplyPeriod,
		ApplyPackage,
	}
}
