package quote

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/light-bringer/roomrate-service/internal/app/currency/queries/convert"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/domain"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/queries/get_price"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/queries/get_price_discount"
)

// Amounts travel as decimal strings so no precision is lost to JSON numbers.

func money(m *domain.Money) interface{} {
	if m == nil {
		return nil
	}
	return m.String()
}

func stayHeader(roomID string, stay domain.Stay, guests int, available bool, reason string) map[string]interface{} {
	out := map[string]interface{}{
		"room_id":   roomID,
		"date_in":   stay.In.String(),
		"date_out":  stay.Out.String(),
		"guests":    guests,
		"available": available,
	}
	if reason != "" {
		out["reason"] = reason
	}
	return out
}

func priceResultToStruct(res *get_price.Result) (*structpb.Struct, error) {
	out := stayHeader(res.RoomID, res.Stay, res.Guests, res.Available, res.Reason)
	if res.Available {
		out["settlement_id"] = res.SettlementID
		out["capacity"] = res.Capacity
		out["total"] = money(res.Total)
		out["average_nightly"] = money(res.AverageNightly)
	}
	return toStruct(out)
}

func discountResultToStruct(res *get_price_discount.Result) (*structpb.Struct, error) {
	out := stayHeader(res.RoomID, res.Stay, res.Guests, res.Available, res.Reason)
	if res.Available {
		out["settlement_id"] = res.SettlementID
		out["capacity"] = res.Capacity
		out["base"] = money(res.Base)

		totals := make(map[string]interface{}, len(res.Policies))
		policies := make([]interface{}, 0, len(res.Policies))
		for _, pq := range res.Policies {
			totals[string(pq.Policy)] = money(pq.Total)

			ids := make([]interface{}, len(pq.DiscountIDs))
			for i, id := range pq.DiscountIDs {
				ids[i] = id
			}
			nights := make([]interface{}, len(pq.Nights))
			for i, n := range pq.Nights {
				nights[i] = map[string]interface{}{
					"date": n.Date.String(),
					"base": money(n.Base),
					"net":  money(n.Net),
				}
			}
			policies = append(policies, map[string]interface{}{
				"policy":       string(pq.Policy),
				"total":        money(pq.Total),
				"discount_ids": ids,
				"nights":       nights,
			})
		}
		out["totals"] = totals
		out["policies"] = policies
	}
	return toStruct(out)
}

func convertResultToStruct(res *convert.Result) (*structpb.Struct, error) {
	out := map[string]interface{}{
		"amount":    res.Amount.String(),
		"currency":  res.CurrencyCode,
		"converted": res.Converted,
	}
	if res.Rate != nil {
		out["rate_date"] = res.Rate.Date.String()
	}
	return toStruct(out)
}

func toStruct(m map[string]interface{}) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode reply: %w", err)
	}
	return s, nil
}
