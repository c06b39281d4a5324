package records

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/palletepro/palletepro/internal/session"
)

// Service applies validation, defaults and the access gate on top of a Store.
// Creating rows requires access; reading and deleting do not, so data stays
// available after a subscription lapses.
type Service struct {
	store       Store
	access      AccessChecker
	validate    *validator.Validate
	loc         *time.Location
	now         func() time.Time
	lowStock    decimal.Decimal
	recentLimit int
	log         *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLocation sets the zone used for default dates.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLowStockThreshold sets the volume under which a wood type is reported.
func WithLowStockThreshold(d decimal.Decimal) Option {
	return func(s *Service) {
		if d.IsPositive() {
			s.lowStock = d
		}
	}
}

// WithRecentLimit sets how many rows per table Recent returns.
func WithRecentLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recentLimit = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// NewService panics when store or access is nil.
func NewService(store Store, access AccessChecker, opts ...Option) *Service {
	if store == nil {
		panic("records: Store is required")
	}
	if access == nil {
		panic("records: AccessChecker is required")
	}

	s := &Service{
		store:       store,
		access:      access,
		validate:    newValidator(),
		loc:         time.UTC,
		now:         time.Now,
		lowStock:    decimal.NewFromInt(100),
		recentLimit: 5,
		log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) requireAccess(ctx context.Context, u session.User) error {
	ok, err := s.access.HasAccess(ctx, u.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAccessDenied
	}
	return nil
}

// date parses a YYYY-MM-DD input in the service zone, defaulting to today.
func (s *Service) date(raw string) (time.Time, error) {
	if raw == "" {
		y, m, d := s.now().In(s.loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, s.loc), nil
	}
	t, err := time.ParseInLocation(DateLayout, raw, s.loc)
	if err != nil {
		return time.Time{}, &ValidationError{Fields: map[string]string{"date": "must be a date in YYYY-MM-DD format"}}
	}
	return t, nil
}

func (s *Service) prepare(ctx context.Context, u session.User, in any) error {
	if err := s.requireAccess(ctx, u); err != nil {
		return err
	}
	return validateStruct(s.validate, in)
}

// CreateWoodEntry records incoming wood.
func (s *Service) CreateWoodEntry(ctx context.Context, u session.User, in NewWoodEntry) (*WoodEntry, error) {
	in.WoodType = strings.TrimSpace(in.WoodType)
	if err := s.prepare(ctx, u, in); err != nil {
		return nil, err
	}
	date, err := s.date(in.Date)
	if err != nil {
		return nil, err
	}

	e := &WoodEntry{
		ID:          uuid.New(),
		UserID:      u.ID,
		WoodType:    in.WoodType,
		CubicMeters: in.CubicMeters,
		EntryDate:   date,
		CreatedAt:   s.now(),
	}
	if err := s.store.InsertWoodEntry(ctx, e); err != nil {
		return nil, fmt.Errorf("insert wood entry: %w", err)
	}
	return e, nil
}

// CreatePalletBatch records produced pallets.
func (s *Service) CreatePalletBatch(ctx context.Context, u session.User, in NewPalletBatch) (*PalletBatch, error) {
	if err := s.prepare(ctx, u, in); err != nil {
		return nil, err
	}
	date, err := s.date(in.Date)
	if err != nil {
		return nil, err
	}

	b := &PalletBatch{
		ID:           uuid.New(),
		UserID:       u.ID,
		Quantity:     in.Quantity,
		PalletMeters: in.PalletMeters,
		ProducedOn:   date,
		CreatedAt:    s.now(),
	}
	if err := s.store.InsertPalletBatch(ctx, b); err != nil {
		return nil, fmt.Errorf("insert pallet batch: %w", err)
	}
	return b, nil
}

// CreateSale records a sale.
func (s *Service) CreateSale(ctx context.Context, u session.User, in NewSale) (*Sale, error) {
	in.Customer = strings.TrimSpace(in.Customer)
	in.Product = strings.TrimSpace(in.Product)
	if err := s.prepare(ctx, u, in); err != nil {
		return nil, err
	}
	date, err := s.date(in.Date)
	if err != nil {
		return nil, err
	}

	sale := &Sale{
		ID:         uuid.New(),
		UserID:     u.ID,
		Customer:   in.Customer,
		Product:    in.Product,
		Quantity:   in.Quantity,
		TotalValue: in.TotalValue.Round(2),
		SoldOn:     date,
		CreatedAt:  s.now(),
	}
	if err := s.store.InsertSale(ctx, sale); err != nil {
		return nil, fmt.Errorf("insert sale: %w", err)
	}
	return sale, nil
}

// CreateTruckEntry records a truck arrival. Plates are stored upper-case.
func (s *Service) CreateTruckEntry(ctx context.Context, u session.User, in NewTruckEntry) (*TruckEntry, error) {
	in.Plate = strings.ToUpper(strings.TrimSpace(in.Plate))
	in.Driver = strings.TrimSpace(in.Driver)
	in.CargoType = strings.TrimSpace(in.CargoType)
	if err := s.prepare(ctx, u, in); err != nil {
		return nil, err
	}

	arrived := s.now()
	if in.ArrivedAt != nil && !in.ArrivedAt.IsZero() {
		arrived = *in.ArrivedAt
	}

	t := &TruckEntry{
		ID:        uuid.New(),
		UserID:    u.ID,
		Plate:     in.Plate,
		Driver:    in.Driver,
		CargoType: in.CargoType,
		ArrivedAt: arrived,
		CreatedAt: s.now(),
	}
	if err := s.store.InsertTruckEntry(ctx, t); err != nil {
		return nil, fmt.Errorf("insert truck entry: %w", err)
	}
	return t, nil
}

func (s *Service) ListWoodEntries(ctx context.Context, u session.User) ([]WoodEntry, error) {
	return s.store.ListWoodEntries(ctx, u.ID, 0)
}

func (s *Service) ListPalletBatches(ctx context.Context, u session.User) ([]PalletBatch, error) {
	return s.store.ListPalletBatches(ctx, u.ID, 0)
}

func (s *Service) ListSales(ctx context.Context, u session.User) ([]Sale, error) {
	return s.store.ListSales(ctx, u.ID, 0)
}

func (s *Service) ListTruckEntries(ctx context.Context, u session.User) ([]TruckEntry, error) {
	return s.store.ListTruckEntries(ctx, u.ID, 0)
}

// Delete removes one of the user's rows from table.
func (s *Service) Delete(ctx context.Context, u session.User, table Table, id uuid.UUID) error {
	if !table.Valid() {
		return ErrUnknownTable
	}
	if err := s.store.Delete(ctx, table, u.ID, id); err != nil {
		if !errors.Is(err, ErrRecordNotFound) {
			s.log.ErrorContext(ctx, "delete failed",
				slog.String("table", string(table)),
				slog.String("user_id", u.ID),
				slog.Any("error", err),
			)
		}
		return err
	}
	return nil
}

// Stats returns the dashboard totals.
func (s *Service) Stats(ctx context.Context, u session.User) (Stats, error) {
	return s.store.Stats(ctx, u.ID)
}

// LowStock returns the wood types whose summed volume is under the
// threshold, ordered by wood type.
func (s *Service) LowStock(ctx context.Context, u session.User) ([]StockLevel, error) {
	levels, err := s.store.StockByWoodType(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	low := make([]StockLevel, 0, len(levels))
	for _, l := range levels {
		if l.CubicMeters.LessThan(s.lowStock) {
			low = append(low, l)
		}
	}
	return low, nil
}

// LowStockThreshold returns the configured threshold.
func (s *Service) LowStockThreshold() decimal.Decimal {
	return s.lowStock
}

// Recent returns the latest rows of every table.
func (s *Service) Recent(ctx context.Context, u session.User) (Recent, error) {
	var (
		r   Recent
		err error
	)
	if r.WoodEntries, err = s.store.ListWoodEntries(ctx, u.ID, s.recentLimit); err != nil {
		return Recent{}, err
	}
	if r.PalletBatches, err = s.store.ListPalletBatches(ctx, u.ID, s.recentLimit); err != nil {
		return Recent{}, err
	}
	if r.Sales, err = s.store.ListSales(ctx, u.ID, s.recentLimit); err != nil {
		return Recent{}, err
	}
	if r.TruckEntries, err = s.store.ListTruckEntries(ctx, u.ID, s.recentLimit); err != nil {
		return Recent{}, err
	}
	return r, nil
}
