package quote

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/light-bringer/roomrate-service/internal/app/currency/queries/convert"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/domain"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/queries/get_price"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/queries/get_price_discount"
)

// Handler implements QuoteServer.
// It's a thin coordinator that delegates to queries.
type Handler struct {
	getPrice         *get_price.Query
	getPriceDiscount *get_price_discount.Query
	convert          *convert.Query
	logger           *slog.Logger
}

var _ QuoteServer = (*Handler)(nil)

// NewHandler creates a new gRPC quote handler.
func NewHandler(
	getPrice *get_price.Query,
	getPriceDiscount *get_price_discount.Query,
	convert *convert.Query,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		getPrice:         getPrice,
		getPriceDiscount: getPriceDiscount,
		convert:          convert,
		logger:           logger,
	}
}

// GetPrice returns the undiscounted price of a stay.
func (h *Handler) GetPrice(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f, err := validateQuoteRequest(req)
	if err != nil {
		return nil, err
	}
	stay, err := domain.ParseStay(f.dateIn, f.dateOut)
	if err != nil {
		return nil, mapDomainErrorToGRPC(err)
	}

	res, err := h.getPrice.Execute(ctx, &get_price.Request{RoomID: f.roomID, Stay: stay, Guests: f.guests})
	if err != nil {
		return nil, h.fail("GetPrice", err)
	}
	return priceResultToStruct(res)
}

// GetPriceDiscount returns one discounted total per stacking policy.
func (h *Handler) GetPriceDiscount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f, err := validateQuoteRequest(req)
	if err != nil {
		return nil, err
	}
	stay, err := domain.ParseStay(f.dateIn, f.dateOut)
	if err != nil {
		return nil, mapDomainErrorToGRPC(err)
	}

	res, err := h.getPriceDiscount.Execute(ctx, &get_price_discount.Request{RoomID: f.roomID, Stay: stay, Guests: f.guests})
	if err != nil {
		return nil, h.fail("GetPriceDiscount", err)
	}
	return discountResultToStruct(res)
}

// Convert shows an amount in another currency.
func (h *Handler) Convert(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	amountStr, currency, err := validateConvertRequest(req)
	if err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid amount %q", amountStr)
	}

	res, err := h.convert.Execute(ctx, &convert.Request{Amount: amount, CurrencyCode: currency})
	if err != nil {
		return nil, h.fail("Convert", err)
	}
	return convertResultToStruct(res)
}

// fail logs internal failures before they are masked by the status mapping.
func (h *Handler) fail(method string, err error) error {
	mapped := mapDomainErrorToGRPC(err)
	if status.Code(mapped) == codes.Internal {
		h.logger.Error("quote request failed", "method", method, "error", err)
	}
	return mapped
}
