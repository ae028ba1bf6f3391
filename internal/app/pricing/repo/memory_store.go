package repo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"cloud.google.com/go/civil"

	curdomain "github.com/light-bringer/roomrate-service/internal/app/currency/domain"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/contracts"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/domain"
)

type priceKey struct {
	settlementID string
	date         civil.Date
}

type roomDiscountKey struct {
	roomID     string
	discountID string
	date       civil.Date
}

// MemoryStore keeps calendars in maps keyed by (entity id, date). Safe for concurrent use.
type MemoryStore struct {
	mu            sync.RWMutex
	variants      map[string][]domain.SettlementVariant // by room
	prices        map[priceKey]*domain.Money
	discounts     map[string]domain.Discount
	roomDiscounts map[roomDiscountKey]*domain.Money
	rates         map[string][]curdomain.ExchangeRate // by currency code
}

var _ contracts.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		variants:      make(map[string][]domain.SettlementVariant),
		prices:        make(map[priceKey]*domain.Money),
		discounts:     make(map[string]domain.Discount),
		roomDiscounts: make(map[roomDiscountKey]*domain.Money),
		rates:         make(map[string][]curdomain.ExchangeRate),
	}
}

// SettlementVariantsFor returns the room's variants ordered by capacity.
func (s *MemoryStore) SettlementVariantsFor(_ context.Context, roomID string) ([]domain.SettlementVariant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]domain.SettlementVariant(nil), s.variants[roomID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Capacity < out[j].Capacity })
	return out, nil
}

// BasePricesFor returns the prices of the stay's nights that exist, ordered by date.
func (s *MemoryStore) BasePricesFor(_ context.Context, settlementID string, stay domain.Stay) ([]domain.BasePrice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.BasePrice
	for _, night := range stay.Nights() {
		if amount, ok := s.prices[priceKey{settlementID, night}]; ok {
			out = append(out, domain.BasePrice{SettlementID: settlementID, Date: night, Amount: amount.Copy()})
		}
	}
	return out, nil
}

// DiscountsFor returns the room's discount rows inside the stay, ordered by date then discount id.
func (s *MemoryStore) DiscountsFor(_ context.Context, roomID string, stay domain.Stay, kinds ...domain.DiscountKind) ([]domain.DiscountDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[domain.DiscountKind]bool, len(kinds))
	for _, k := range kinds {
		wanted[k] = true
	}

	var out []domain.DiscountDay
	for key, value := range s.roomDiscounts {
		if key.roomID != roomID || !stay.Contains(key.date) {
			continue
		}
		d, ok := s.discounts[key.discountID]
		if !ok || (len(wanted) > 0 && !wanted[d.Kind]) {
			continue
		}
		dc := d
		out = append(out, domain.DiscountDay{Discount: &dc, Date: key.date, Value: value.Copy()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Discount.ID < out[j].Discount.ID
	})
	return out, nil
}

// AddSettlementVariant stores a variant, rejecting a second variant of the same capacity in a room.
func (s *MemoryStore) AddSettlementVariant(_ context.Context, v domain.SettlementVariant) error {
	if err := validateVariant(v); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.variants[v.RoomID] {
		if existing.Capacity == v.Capacity {
			return fmt.Errorf("%w: room %s capacity %d", domain.ErrDuplicateSettlement, v.RoomID, v.Capacity)
		}
	}
	s.variants[v.RoomID] = append(s.variants[v.RoomID], v)
	return nil
}

// AddBasePrice stores a price, rejecting duplicates per (settlement, date).
func (s *MemoryStore) AddBasePrice(_ context.Context, p domain.BasePrice) error {
	if err := validateBasePrice(p); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := priceKey{p.SettlementID, p.Date}
	if _, exists := s.prices[key]; exists {
		return fmt.Errorf("%w: %s on %s", domain.ErrDuplicateBasePrice, p.SettlementID, p.Date)
	}
	s.prices[key] = p.Amount.Copy()
	return nil
}

// AddDiscount stores or replaces a discount definition.
func (s *MemoryStore) AddDiscount(_ context.Context, d domain.Discount) error {
	if err := d.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.discounts[d.ID] = d
	return nil
}

// AddRoomDiscount stores a discount value for one room and night.
func (s *MemoryStore) AddRoomDiscount(_ context.Context, rd domain.RoomDiscount) error {
	if err := rd.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.discounts[rd.DiscountID]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrDiscountNotFound, rd.DiscountID)
	}
	s.roomDiscounts[roomDiscountKey{rd.RoomID, rd.DiscountID, rd.Date}] = rd.Value.Copy()
	return nil
}

// LatestRate returns the most recent rate for code dated on or before day.
func (s *MemoryStore) LatestRate(_ context.Context, code string, day civil.Date) (*curdomain.ExchangeRate, error) {
	code, err := curdomain.NormalizeCode(code)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *curdomain.ExchangeRate
	for _, r := range s.rates[code] {
		if r.Date.After(day) {
			continue
		}
		if best == nil || r.Date.After(best.Date) {
			best = &r
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: %s on or before %s", curdomain.ErrRateNotFound, code, day)
	}
	return best, nil
}

// AddRate stores a rate.
func (s *MemoryStore) AddRate(_ context.Context, rate *curdomain.ExchangeRate) error {
	if err := rate.Validate(); err != nil {
		return err
	}

	stored := *rate
	stored.CurrencyCode, _ = curdomain.NormalizeCode(rate.CurrencyCode)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[stored.CurrencyCode] = append(s.rates[stored.CurrencyCode], stored)
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

func validateVariant(v domain.SettlementVariant) error {
	if v.RoomID == "" {
		return domain.ErrEmptyRoomID
	}
	if v.Capacity < 1 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidCapacity, v.Capacity)
	}
	return nil
}

func validateBasePrice(p domain.BasePrice) error {
	if p.Amount == nil || p.Amount.IsNegative() {
		return domain.ErrNegativeAmount
	}
	if !p.Date.IsValid() {
		return fmt.Errorf("invalid date %s", p.Date)
	}
	return nil
}
