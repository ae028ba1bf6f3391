package contracts

import (
	"context"

	"github.com/light-bringer/roomrate-service/internal/app/pricing/domain"
)

// CalendarWriter is the administrative write side. The pricing engine never calls it.
type CalendarWriter interface {
	// AddSettlementVariant stores a variant. A second variant with the same capacity in a room
	// fails with domain.ErrDuplicateSettlement.
	AddSettlementVariant(ctx context.Context, v domain.SettlementVariant) error

	// AddBasePrice stores a nightly price. A second price for the same settlement and date
	// fails with domain.ErrDuplicateBasePrice.
	AddBasePrice(ctx context.Context, p domain.BasePrice) error

	AddDiscount(ctx context.Context, d domain.Discount) error

	// AddRoomDiscount stores a discount value. Unknown discounts fail with domain.ErrDiscountNotFound.
	AddRoomDiscount(ctx context.Context, rd domain.RoomDiscount) error
}

// Store is a backend serving both sides.
type Store interface {
	PriceStore
	CalendarWriter
	Close() error
}
