package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"cloud.google.com/go/spanner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"

	curdomain "github.com/light-bringer/roomrate-service/internal/app/currency/domain"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/contracts"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/domain"
	"github.com/light-bringer/roomrate-service/internal/models/m_discount"
	"github.com/light-bringer/roomrate-service/internal/models/m_exchange_rate"
	"github.com/light-bringer/roomrate-service/internal/models/m_place_price"
	"github.com/light-bringer/roomrate-service/internal/models/m_room_discount"
	"github.com/light-bringer/roomrate-service/internal/models/m_settlement_variant"
	"github.com/light-bringer/roomrate-service/internal/pkg/committer"
	"github.com/light-bringer/roomrate-service/internal/pkg/query"
)

var _ contracts.Store = (*SpannerStore)(nil)

// SpannerStore implements the price and rate stores on Cloud Spanner.
// Reads go through the query builder; writes are mutations applied by a committer plan.
type SpannerStore struct {
	client    *spanner.Client
	committer *committer.Committer

	variants      *m_settlement_variant.Model
	prices        *m_place_price.Model
	discounts     *m_discount.Model
	roomDiscounts *m_room_discount.Model
	rates         *m_exchange_rate.Model
}

// NewSpannerStore creates a new SpannerStore.
func NewSpannerStore(client *spanner.Client) *SpannerStore {
	return &SpannerStore{
		client:        client,
		committer:     committer.NewCommitter(client),
		variants:      m_settlement_variant.NewModel(),
		prices:        m_place_price.NewModel(),
		discounts:     m_discount.NewModel(),
		roomDiscounts: m_room_discount.NewModel(),
		rates:         m_exchange_rate.NewModel(),
	}
}

// Close closes the Spanner client.
func (s *SpannerStore) Close() error {
	s.client.Close()
	return nil
}

// SettlementVariantsFor returns the room's variants ordered by capacity.
func (s *SpannerStore) SettlementVariantsFor(ctx context.Context, roomID string) ([]domain.SettlementVariant, error) {
	stmt := query.From(m_settlement_variant.TableName).
		Select(s.variants.ReadColumns()...).
		Where(query.Eq(m_settlement_variant.RoomID, roomID)).
		OrderBy(m_settlement_variant.Capacity, query.Asc).
		Build()

	var out []domain.SettlementVariant
	err := s.each(ctx, stmt, func(row *spanner.Row) error {
		var data m_settlement_variant.Data
		if err := row.ToStruct(&data); err != nil {
			return fmt.Errorf("failed to parse settlement variant: %w", err)
		}
		out = append(out, domain.SettlementVariant{
			ID:       data.SettlementID,
			RoomID:   data.RoomID,
			Capacity: int(data.Capacity),
			Enabled:  data.Enabled,
		})
		return nil
	})
	return out, err
}

// BasePricesFor returns the settlement's prices inside the stay, ordered by date.
func (s *SpannerStore) BasePricesFor(ctx context.Context, settlementID string, stay domain.Stay) ([]domain.BasePrice, error) {
	stmt := query.From(m_place_price.TableName).
		Select(s.prices.ReadColumns()...).
		Where(query.Eq(m_place_price.SettlementID, settlementID)).
		Where(query.Gte(m_place_price.Date, stay.In)).
		Where(query.Lt(m_place_price.Date, stay.Out)).
		OrderBy(m_place_price.Date, query.Asc).
		Build()

	var out []domain.BasePrice
	err := s.each(ctx, stmt, func(row *spanner.Row) error {
		var data m_place_price.Data
		if err := row.ToStruct(&data); err != nil {
			return fmt.Errorf("failed to parse base price: %w", err)
		}
		amount, err := domain.NewMoney(data.AmountNumerator, data.AmountDenominator)
		if err != nil {
			return fmt.Errorf("invalid base price amount: %w", err)
		}
		out = append(out, domain.BasePrice{SettlementID: data.SettlementID, Date: data.Date, Amount: amount})
		return nil
	})
	return out, err
}

// DiscountsFor returns the room's discount rows inside the stay, ordered by date then discount id.
func (s *SpannerStore) DiscountsFor(ctx context.Context, roomID string, stay domain.Stay, kinds ...domain.DiscountKind) ([]domain.DiscountDay, error) {
	// A single read-only transaction gives both reads the same snapshot.
	txn := s.client.ReadOnlyTransaction()
	defer txn.Close()

	stmt := query.From(m_room_discount.TableName).
		Select(s.roomDiscounts.ReadColumns()...).
		Where(query.Eq(m_room_discount.RoomID, roomID)).
		Where(query.Gte(m_room_discount.Date, stay.In)).
		Where(query.Lt(m_room_discount.Date, stay.Out)).
		OrderBy(m_room_discount.Date, query.Asc).
		OrderBy(m_room_discount.DiscountID, query.Asc).
		Build()

	var raw []rawRoomDiscount
	err := eachRow(txn.Query(ctx, stmt), func(row *spanner.Row) error {
		var data m_room_discount.Data
		if err := row.ToStruct(&data); err != nil {
			return fmt.Errorf("failed to parse room discount: %w", err)
		}
		value, err := domain.NewMoney(data.ValueNumerator, data.ValueDenominator)
		if err != nil {
			return fmt.Errorf("invalid room discount value: %w", err)
		}
		raw = append(raw, rawRoomDiscount{discountID: data.DiscountID, date: data.Date, value: value})
		return nil
	})
	if err != nil || len(raw) == 0 {
		return nil, err
	}

	b := query.From(m_discount.TableName).
		Select(s.discounts.ReadColumns()...).
		Where(query.In(m_discount.DiscountID, distinctDiscountIDs(raw)...))
	if len(kinds) > 0 {
		b = b.Where(query.In(m_discount.Kind, kindNames(kinds)...))
	}

	discounts := make(map[string]*domain.Discount)
	err = eachRow(txn.Query(ctx, b.Build()), func(row *spanner.Row) error {
		var data m_discount.Data
		if err := row.ToStruct(&data); err != nil {
			return fmt.Errorf("failed to parse discount: %w", err)
		}
		d, err := discountFromData(&data)
		if err != nil {
			return err
		}
		discounts[d.ID] = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return joinDiscountDays(raw, discounts), nil
}

// AddSettlementVariant stores a variant. The id is generated when empty.
func (s *SpannerStore) AddSettlementVariant(ctx context.Context, v domain.SettlementVariant) error {
	if err := validateVariant(v); err != nil {
		return err
	}
	if v.ID == "" {
		v.ID = uuid.New().String()
	}

	existing, err := s.SettlementVariantsFor(ctx, v.RoomID)
	if err != nil {
		return err
	}
	for _, e := range existing {
		if e.Capacity == v.Capacity {
			return fmt.Errorf("%w: room %s capacity %d", domain.ErrDuplicateSettlement, v.RoomID, v.Capacity)
		}
	}

	plan := committer.NewPlan()
	plan.Add(s.variants.InsertMut(&m_settlement_variant.Data{
		SettlementID: v.ID,
		RoomID:       v.RoomID,
		Capacity:     int64(v.Capacity),
		Enabled:      v.Enabled,
	}))
	return s.committer.Apply(ctx, plan)
}

// AddBasePrice stores a nightly price. The (settlement_id, date) key rejects duplicates.
func (s *SpannerStore) AddBasePrice(ctx context.Context, p domain.BasePrice) error {
	if err := validateBasePrice(p); err != nil {
		return err
	}
	if !p.Amount.IsInt64() {
		return fmt.Errorf("base price %s exceeds storage capacity", p.Amount)
	}

	plan := committer.NewPlan()
	plan.Add(s.prices.InsertMut(&m_place_price.Data{
		SettlementID:      p.SettlementID,
		Date:              p.Date,
		AmountNumerator:   p.Amount.Numerator(),
		AmountDenominator: p.Amount.Denominator(),
	}))

	err := s.committer.Apply(ctx, plan)
	if spanner.ErrCode(err) == codes.AlreadyExists {
		return fmt.Errorf("%w: %s on %s", domain.ErrDuplicateBasePrice, p.SettlementID, p.Date)
	}
	return err
}

// AddDiscount inserts or replaces a discount definition.
func (s *SpannerStore) AddDiscount(ctx context.Context, d domain.Discount) error {
	if err := d.Validate(); err != nil {
		return err
	}

	plan := committer.NewPlan()
	plan.Add(s.discounts.UpsertMut(discountToData(&d)))
	return s.committer.Apply(ctx, plan)
}

// AddRoomDiscount sets the discount value for a room and night.
func (s *SpannerStore) AddRoomDiscount(ctx context.Context, rd domain.RoomDiscount) error {
	if err := rd.Validate(); err != nil {
		return err
	}
	if !rd.Value.IsInt64() {
		return fmt.Errorf("discount value %s exceeds storage capacity", rd.Value)
	}

	return s.committer.ApplyWithReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		_, err := txn.ReadRow(ctx, m_discount.TableName, spanner.Key{rd.DiscountID}, []string{m_discount.DiscountID})
		if spanner.ErrCode(err) == codes.NotFound {
			return fmt.Errorf("%w: %s", domain.ErrDiscountNotFound, rd.DiscountID)
		}
		if err != nil {
			return fmt.Errorf("failed to read discount: %w", err)
		}

		plan := committer.NewPlan()
		plan.Add(s.roomDiscounts.UpsertMut(&m_room_discount.Data{
			RoomID:           rd.RoomID,
			DiscountID:       rd.DiscountID,
			Date:             rd.Date,
			ValueNumerator:   rd.Value.Numerator(),
			ValueDenominator: rd.Value.Denominator(),
		}))
		return txn.BufferWrite(plan.Mutations())
	})
}

// LatestRate returns the most recent rate for code dated on or before day.
func (s *SpannerStore) LatestRate(ctx context.Context, code string, day civil.Date) (*curdomain.ExchangeRate, error) {
	code, err := curdomain.NormalizeCode(code)
	if err != nil {
		return nil, err
	}

	stmt := query.From(m_exchange_rate.TableName).
		Select(s.rates.ReadColumns()...).
		Where(query.Eq(m_exchange_rate.CurrencyCode, code)).
		Where(query.Lte(m_exchange_rate.Date, day)).
		OrderBy(m_exchange_rate.Date, query.Desc).
		Limit(1).
		Build()

	var rate *curdomain.ExchangeRate
	err = s.each(ctx, stmt, func(row *spanner.Row) error {
		var data m_exchange_rate.Data
		if err := row.ToStruct(&data); err != nil {
			return fmt.Errorf("failed to parse exchange rate: %w", err)
		}
		rate = &curdomain.ExchangeRate{
			ID:           data.RateID,
			CurrencyCode: data.CurrencyCode,
			Date:         data.Date,
			Nominal:      decimal.NewFromBigRat(&data.Nominal, 9),
			OfficialRate: decimal.NewFromBigRat(&data.OfficialRate, 9),
			Rate:         decimal.NewFromBigRat(&data.Rate, 9),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, fmt.Errorf("%w: %s on or before %s", curdomain.ErrRateNotFound, code, day)
	}
	return rate, nil
}

// AddRate stores a rate. The id is generated when empty.
func (s *SpannerStore) AddRate(ctx context.Context, rate *curdomain.ExchangeRate) error {
	if err := rate.Validate(); err != nil {
		return err
	}
	code, _ := curdomain.NormalizeCode(rate.CurrencyCode)
	id := rate.ID
	if id == "" {
		id = uuid.New().String()
	}

	plan := committer.NewPlan()
	plan.Add(s.rates.InsertMut(&m_exchange_rate.Data{
		RateID:       id,
		CurrencyCode: code,
		Date:         rate.Date,
		Nominal:      *rate.Nominal.Rat(),
		OfficialRate: *rate.OfficialRate.Rat(),
		Rate:         *rate.Rate.Rat(),
	}))
	return s.committer.Apply(ctx, plan)
}

func (s *SpannerStore) each(ctx context.Context, stmt spanner.Statement, fn func(*spanner.Row) error) error {
	return eachRow(s.client.Single().Query(ctx, stmt), fn)
}

// eachRow drains a row iterator, stopping at the first error.
func eachRow(iter *spanner.RowIterator, fn func(*spanner.Row) error) error {
	defer iter.Stop()
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to iterate rows: %w", err)
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}
