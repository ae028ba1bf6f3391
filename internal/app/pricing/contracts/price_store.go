package contracts

import (
	"context"

	"github.com/light-bringer/roomrate-service/internal/app/pricing/domain"
)

// PriceStore is the read side the pricing engine consumes.
// Range queries include stay.In and exclude stay.Out.
type PriceStore interface {
	// SettlementVariantsFor returns every variant of the room, enabled or not, ordered by capacity.
	SettlementVariantsFor(ctx context.Context, roomID string) ([]domain.SettlementVariant, error)

	// BasePricesFor returns the nightly prices of a settlement inside the stay, ordered by date.
	BasePricesFor(ctx context.Context, settlementID string, stay domain.Stay) ([]domain.BasePrice, error)

	// DiscountsFor returns the room's discount rows inside the stay, joined with their discounts.
	// With no kinds every kind is returned.
	DiscountsFor(ctx context.Context, roomID string, stay domain.Stay, kinds ...domain.DiscountKind) ([]domain.DiscountDay, error)
}
