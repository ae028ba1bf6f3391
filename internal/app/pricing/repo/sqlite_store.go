package repo

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	curdomain "github.com/light-bringer/roomrate-service/internal/app/currency/domain"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/contracts"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/domain"
	"github.com/light-bringer/roomrate-service/internal/models/m_discount"
	"github.com/light-bringer/roomrate-service/internal/models/m_exchange_rate"
	"github.com/light-bringer/roomrate-service/internal/models/m_place_price"
	"github.com/light-bringer/roomrate-service/internal/models/m_room_discount"
	"github.com/light-bringer/roomrate-service/internal/models/m_settlement_variant"
	"github.com/light-bringer/roomrate-service/internal/pkg/query"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Ensure SQLiteStore implements contracts.Store
var _ contracts.Store = (*SQLiteStore)(nil)

// SQLiteStore implements the price and rate stores on an embedded SQLite file.
// Amounts are stored as exact decimal text.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath and migrates it.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps :memory: databases and PRAGMAs consistent across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := MigrateSQLite(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

// MigrateSQLite applies the embedded goose migrations.
// Each call owns its provider, so stores may be opened concurrently.
func MigrateSQLite(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SettlementVariantsFor returns the room's variants ordered by capacity.
func (s *SQLiteStore) SettlementVariantsFor(ctx context.Context, roomID string) ([]domain.SettlementVariant, error) {
	stmt, args := query.From(m_settlement_variant.TableName).
		Select(m_settlement_variant.NewModel().ReadColumns()...).
		Where(query.Eq(m_settlement_variant.RoomID, roomID)).
		OrderBy(m_settlement_variant.Capacity, query.Asc).
		SQL()

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlement variants: %w", err)
	}
	defer rows.Close()

	var out []domain.SettlementVariant
	for rows.Next() {
		var v domain.SettlementVariant
		if err := rows.Scan(&v.ID, &v.RoomID, &v.Capacity, &v.Enabled); err != nil {
			return nil, fmt.Errorf("failed to scan settlement variant: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// BasePricesFor returns the settlement's prices inside the stay, ordered by date.
func (s *SQLiteStore) BasePricesFor(ctx context.Context, settlementID string, stay domain.Stay) ([]domain.BasePrice, error) {
	stmt, args := query.From(m_place_price.TableName).
		Select(m_place_price.Date, m_place_price.Amount).
		Where(query.Eq(m_place_price.SettlementID, settlementID)).
		Where(query.Gte(m_place_price.Date, stay.In.String())).
		Where(query.Lt(m_place_price.Date, stay.Out.String())).
		OrderBy(m_place_price.Date, query.Asc).
		SQL()

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query base prices: %w", err)
	}
	defer rows.Close()

	var out []domain.BasePrice
	for rows.Next() {
		var date, amount string
		if err := rows.Scan(&date, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan base price: %w", err)
		}
		p := domain.BasePrice{SettlementID: settlementID}
		if p.Date, err = civil.ParseDate(date); err != nil {
			return nil, fmt.Errorf("invalid base price date %q: %w", date, err)
		}
		if p.Amount, err = decodeAmount(amount); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DiscountsFor returns the room's discount rows inside the stay, ordered by date then discount id.
func (s *SQLiteStore) DiscountsFor(ctx context.Context, roomID string, stay domain.Stay, kinds ...domain.DiscountKind) ([]domain.DiscountDay, error) {
	stmt, args := query.From(m_room_discount.TableName).
		Select(m_room_discount.DiscountID, m_room_discount.Date, m_room_discount.Value).
		Where(query.Eq(m_room_discount.RoomID, roomID)).
		Where(query.Gte(m_room_discount.Date, stay.In.String())).
		Where(query.Lt(m_room_discount.Date, stay.Out.String())).
		OrderBy(m_room_discount.Date, query.Asc).
		OrderBy(m_room_discount.DiscountID, query.Asc).
		SQL()

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query room discounts: %w", err)
	}
	defer rows.Close()

	var raw []rawRoomDiscount
	for rows.Next() {
		var r rawRoomDiscount
		var date, value string
		if err := rows.Scan(&r.discountID, &date, &value); err != nil {
			return nil, fmt.Errorf("failed to scan room discount: %w", err)
		}
		if r.date, err = civil.ParseDate(date); err != nil {
			return nil, fmt.Errorf("invalid room discount date %q: %w", date, err)
		}
		if r.value, err = decodeAmount(value); err != nil {
			return nil, err
		}
		raw = append(raw, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()
	if len(raw) == 0 {
		return nil, nil
	}

	discounts, err := s.discountsByID(ctx, distinctDiscountIDs(raw), kinds)
	if err != nil {
		return nil, err
	}
	return joinDiscountDays(raw, discounts), nil
}

func (s *SQLiteStore) discountsByID(ctx context.Context, ids []string, kinds []domain.DiscountKind) (map[string]*domain.Discount, error) {
	b := query.From(m_discount.TableName).
		Select(m_discount.NewModel().ReadColumns()...).
		Where(query.In(m_discount.DiscountID, ids...))
	if len(kinds) > 0 {
		b = b.Where(query.In(m_discount.Kind, kindNames(kinds)...))
	}
	stmt, args := b.SQL()

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query discounts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*domain.Discount, len(ids))
	for rows.Next() {
		var data m_discount.Data
		if err := rows.Scan(
			&data.DiscountID, &data.HotelID, &data.Kind, &data.Percentage, &data.Days, &data.AtPriceDays,
			&data.ApplyNorefund, &data.ApplyCreditcard, &data.ApplyPeriod, &data.ApplyPackage,
		); err != nil {
			return nil, fmt.Errorf("failed to scan discount: %w", err)
		}
		d, err := discountFromData(&data)
		if err != nil {
			return nil, err
		}
		out[d.ID] = d
	}
	return out, rows.Err()
}

// AddSettlementVariant stores a variant. The id is generated when empty.
func (s *SQLiteStore) AddSettlementVariant(ctx context.Context, v domain.SettlementVariant) error {
	if err := validateVariant(v); err != nil {
		return err
	}
	if v.ID == "" {
		v.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO settlement_variants (settlement_id, room_id, capacity, enabled) VALUES (?, ?, ?, ?)",
		v.ID, v.RoomID, v.Capacity, v.Enabled,
	)
	if isConstraint(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY) {
		return fmt.Errorf("%w: room %s capacity %d", domain.ErrDuplicateSettlement, v.RoomID, v.Capacity)
	}
	if err != nil {
		return fmt.Errorf("failed to insert settlement variant: %w", err)
	}
	return nil
}

// AddBasePrice stores a nightly price. The (settlement_id, date) primary key rejects duplicates.
func (s *SQLiteStore) AddBasePrice(ctx context.Context, p domain.BasePrice) error {
	if err := validateBasePrice(p); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO place_prices (settlement_id, date, amount) VALUES (?, ?, ?)",
		p.SettlementID, p.Date.String(), encodeAmount(p.Amount),
	)
	if isConstraint(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY) {
		return fmt.Errorf("%w: %s on %s", domain.ErrDuplicateBasePrice, p.SettlementID, p.Date)
	}
	if isConstraint(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY) {
		return fmt.Errorf("unknown settlement variant %s: %w", p.SettlementID, err)
	}
	if err != nil {
		return fmt.Errorf("failed to insert base price: %w", err)
	}
	return nil
}

// AddDiscount inserts or replaces a discount definition.
func (s *SQLiteStore) AddDiscount(ctx context.Context, d domain.Discount) error {
	if err := d.Validate(); err != nil {
		return err
	}
	data := discountToData(&d)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO discounts (discount_id, hotel_id, kind, percentage, days, at_price_days,
			apply_norefund, apply_creditcard, apply_period, apply_package)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (discount_id) DO UPDATE SET
			hotel_id = excluded.hotel_id, kind = excluded.kind, percentage = excluded.percentage,
			days = excluded.days, at_price_days = excluded.at_price_days,
			apply_norefund = excluded.apply_norefund, apply_creditcard = excluded.apply_creditcard,
			apply_period = excluded.apply_period, apply_package = excluded.apply_package`,
		data.DiscountID, data.HotelID, data.Kind, data.Percentage, data.Days, data.AtPriceDays,
		data.ApplyNorefund, data.ApplyCreditcard, data.ApplyPeriod, data.ApplyPackage,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert discount: %w", err)
	}
	return nil
}

// AddRoomDiscount sets the discount value for a room and night.
func (s *SQLiteStore) AddRoomDiscount(ctx context.Context, rd domain.RoomDiscount) error {
	if err := rd.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO room_discounts (room_id, discount_id, date, value) VALUES (?, ?, ?, ?)
		ON CONFLICT (room_id, discount_id, date) DO UPDATE SET value = excluded.value`,
		rd.RoomID, rd.DiscountID, rd.Date.String(), encodeAmount(rd.Value),
	)
	if isConstraint(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY) {
		return fmt.Errorf("%w: %s", domain.ErrDiscountNotFound, rd.DiscountID)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert room discount: %w", err)
	}
	return nil
}

// LatestRate returns the most recent rate for code dated on or before day.
func (s *SQLiteStore) LatestRate(ctx context.Context, code string, day civil.Date) (*curdomain.ExchangeRate, error) {
	code, err := curdomain.NormalizeCode(code)
	if err != nil {
		return nil, err
	}

	stmt, args := query.From(m_exchange_rate.TableName).
		Select(m_exchange_rate.NewModel().ReadColumns()...).
		Where(query.Eq(m_exchange_rate.CurrencyCode, code)).
		Where(query.Lte(m_exchange_rate.Date, day.String())).
		OrderBy(m_exchange_rate.Date, query.Desc).
		Limit(1).
		SQL()

	var r curdomain.ExchangeRate
	var date, nominal, official, rate string
	err = s.db.QueryRowContext(ctx, stmt, args...).Scan(&r.ID, &r.CurrencyCode, &date, &nominal, &official, &rate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s on or before %s", curdomain.ErrRateNotFound, code, day)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query exchange rate: %w", err)
	}

	if r.Date, err = civil.ParseDate(date); err != nil {
		return nil, fmt.Errorf("invalid exchange rate date %q: %w", date, err)
	}
	for _, f := range []struct {
		dst *decimal.Decimal
		src string
	}{{&r.Nominal, nominal}, {&r.OfficialRate, official}, {&r.Rate, rate}} {
		if *f.dst, err = decimal.NewFromString(f.src); err != nil {
			return nil, fmt.Errorf("%w: %v", curdomain.ErrMalformedRate, err)
		}
	}
	return &r, nil
}

// AddRate stores a rate. The id is generated when empty.
func (s *SQLiteStore) AddRate(ctx context.Context, rate *curdomain.ExchangeRate) error {
	if err := rate.Validate(); err != nil {
		return err
	}
	code, _ := curdomain.NormalizeCode(rate.CurrencyCode)
	id := rate.ID
	if id == "" {
		id = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO exchange_rates (rate_id, currency_code, date, nominal, official_rate, rate) VALUES (?, ?, ?, ?, ?, ?)",
		id, code, rate.Date.String(), rate.Nominal.String(), rate.OfficialRate.String(), rate.Rate.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert exchange rate: %w", err)
	}
	return nil
}

// isConstraint reports whether err is a SQLite constraint violation with one of the extended codes.
func isConstraint(err error, codes ...int) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	for _, c := range codes {
		if sqliteErr.Code() == c {
			return true
		}
	}
	return false
}

// encodeAmount writes the shortest exact decimal, or the a/b fraction when none exists.
func encodeAmount(m *domain.Money) string {
	s := m.String()
	if back, err := domain.ParseMoney(s); err == nil && back.Equals(m) {
		return s
	}
	text, _ := m.MarshalText()
	return string(text)
}

func decodeAmount(s string) (*domain.Money, error) {
	m := domain.Zero()
	if err := m.UnmarshalText([]byte(s)); err != nil {
		return nil, fmt.Errorf("invalid stored amount: %w", err)
	}
	return m, nil
}
