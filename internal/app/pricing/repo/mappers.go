package repo

import (
	"fmt"
	"sort"

	"cloud.google.com/go/civil"

	"github.com/light-bringer/roomrate-service/internal/app/pricing/domain"
	"github.com/light-bringer/roomrate-service/internal/models/m_discount"
)

// rawRoomDiscount is a room discount row before it is joined with its discount.
type rawRoomDiscount struct {
	discountID string
	date       civil.Date
	value      *domain.Money
}

func distinctDiscountIDs(rows []rawRoomDiscount) []string {
	seen := make(map[string]bool, len(rows))
	var ids []string
	for _, r := range rows {
		if !seen[r.discountID] {
			seen[r.discountID] = true
			ids = append(ids, r.discountID)
		}
	}
	sort.Strings(ids)
	return ids
}

// joinDiscountDays keeps the rows whose discount was loaded, preserving row order.
func joinDiscountDays(rows []rawRoomDiscount, discounts map[string]*domain.Discount) []domain.DiscountDay {
	out := make([]domain.DiscountDay, 0, len(rows))
	for _, r := range rows {
		d, ok := discounts[r.discountID]
		if !ok {
			continue
		}
		out = append(out, domain.DiscountDay{Discount: d, Date: r.date, Value: r.value})
	}
	return out
}

func kindNames(kinds []domain.DiscountKind) []string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return names
}

func discountToData(d *domain.Discount) *m_discount.Data {
	return &m_discount.Data{
		DiscountID:      d.ID,
		HotelID:         d.HotelID,
		Kind:            d.Kind.String(),
		Percentage:      d.Percentage,
		Days:            int64(d.Days),
		AtPriceDays:     int64(d.AtPriceDays),
		ApplyNorefund:   d.Apply.NoRefund,
		ApplyCreditcard: d.Apply.CreditCard,
		ApplyPeriod:     d.Apply.Period,
		ApplyPackage:    d.Apply.Package,
	}
}

func discountFromData(data *m_discount.Data) (*domain.Discount, error) {
	kind, err := domain.ParseDiscountKind(data.Kind)
	if err != nil {
		return nil, fmt.Errorf("discount %s: %w", data.DiscountID, err)
	}
	return &domain.Discount{
		ID:          data.DiscountID,
		HotelID:     data.HotelID,
		Kind:        kind,
		Percentage:  data.Percentage,
		Days:        int(data.Days),
		AtPriceDays: int(data.AtPriceDays),
		Apply: domain.StackFlags{
			NoRefund:   data.ApplyNorefund,
			CreditCard: data.ApplyCreditcard,
			Period:     data.ApplyPeriod,
			Package:    data.ApplyPackage,
		},
	}, nil
}
