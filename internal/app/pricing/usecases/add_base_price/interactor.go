package add_base_price

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/civil"

	"github.com/light-bringer/roomrate-service/internal/app/pricing/contracts"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/domain"
)

// Request contains one nightly price.
type Request struct {
	SettlementID string
	Date         civil.Date
	Amount       *domain.Money
}

// Interactor handles the add base price use case.
type Interactor struct {
	writer contracts.CalendarWriter
	logger *slog.Logger
}

// NewInteractor creates a new add base price interactor.
func NewInteractor(writer contracts.CalendarWriter, logger *slog.Logger) *Interactor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Interactor{writer: writer, logger: logger}
}

// Execute validates and stores the price. A second price for the same night fails with
// domain.ErrDuplicateBasePrice and leaves the first one in place.
func (i *Interactor) Execute(ctx context.Context, req *Request) error {
	if err := i.validate(req); err != nil {
		return err
	}

	if err := i.writer.AddBasePrice(ctx, domain.BasePrice{
		SettlementID: req.SettlementID,
		Date:         req.Date,
		Amount:       req.Amount,
	}); err != nil {
		if errors.Is(err, domain.ErrDuplicateBasePrice) {
			return err
		}
		return fmt.Errorf("failed to add base price: %w", err)
	}

	i.logger.Info("base price added",
		"settlement_id", req.SettlementID, "date", req.Date.String(), "amount", req.Amount.String())
	return nil
}

func (i *Interactor) validate(req *Request) error {
	if req.SettlementID == "" {
		return fmt.Errorf("settlement ID is required")
	}
	if !req.Date.IsValid() {
		return fmt.Errorf("invalid date %s", req.Date)
	}
	if req.Amount == nil || req.Amount.IsNegative() {
		return domain.ErrNegativeAmount
	}
	return nil
}
