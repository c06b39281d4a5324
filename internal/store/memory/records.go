package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/palletepro/palletepro/internal/records"
)

// Records is a records.Store.
type Records struct {
	mu     sync.RWMutex
	wood   []records.WoodEntry
	batch  []records.PalletBatch
	sales  []records.Sale
	trucks []records.TruckEntry
}

func NewRecords() *Records {
	return &Records{}
}

// newestFirst orders by the business date, then creation time, descending.
func newestFirst(aDate, aCreated, bDate, bCreated time.Time) int {
	if c := bDate.Compare(aDate); c != 0 {
		return c
	}
	return bCreated.Compare(aCreated)
}

// listFor filters rows by owner, sorts them newest first and applies limit.
func listFor[T any](rows []T, userID string, limit int, owner func(T) string, cmpFn func(a, b T) int) []T {
	out := make([]T, 0)
	for _, r := range rows {
		if owner(r) == userID {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, cmpFn)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *Records) InsertWoodEntry(_ context.Context, e *records.WoodEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wood = append(s.wood, *e)
	return nil
}

func (s *Records) ListWoodEntries(_ context.Context, userID string, limit int) ([]records.WoodEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listFor(s.wood, userID, limit,
		func(r records.WoodEntry) string { return r.UserID },
		func(a, b records.WoodEntry) int { return newestFirst(a.EntryDate, a.CreatedAt, b.EntryDate, b.CreatedAt) },
	), nil
}

func (s *Records) InsertPalletBatch(_ context.Context, b *records.PalletBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batch = append(s.batch, *b)
	return nil
}

func (s *Records) ListPalletBatches(_ context.Context, userID string, limit int) ([]records.PalletBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listFor(s.batch, userID, limit,
		func(r records.PalletBatch) string { return r.UserID },
		func(a, b records.PalletBatch) int { return newestFirst(a.ProducedOn, a.CreatedAt, b.ProducedOn, b.CreatedAt) },
	), nil
}

func (s *Records) InsertSale(_ context.Context, sale *records.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales = append(s.sales, *sale)
	return nil
}

func (s *Records) ListSales(_ context.Context, userID string, limit int) ([]records.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listFor(s.sales, userID, limit,
		func(r records.Sale) string { return r.UserID },
		func(a, b records.Sale) int { return newestFirst(a.SoldOn, a.CreatedAt, b.SoldOn, b.CreatedAt) },
	), nil
}

func (s *Records) InsertTruckEntry(_ context.Context, t *records.TruckEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trucks = append(s.trucks, *t)
	return nil
}

func (s *Records) ListTruckEntries(_ context.Context, userID string, limit int) ([]records.TruckEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listFor(s.trucks, userID, limit,
		func(r records.TruckEntry) string { return r.UserID },
		func(a, b records.TruckEntry) int { return newestFirst(a.ArrivedAt, a.CreatedAt, b.ArrivedAt, b.CreatedAt) },
	), nil
}

// deleteFrom removes the matching row in place and reports whether it existed.
func deleteFrom[T any](rows *[]T, match func(T) bool) bool {
	i := slices.IndexFunc(*rows, match)
	if i < 0 {
		return false
	}
	*rows = slices.Delete(*rows, i, i+1)
	return true
}

func (s *Records) Delete(_ context.Context, table records.Table, userID string, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found bool
	switch table {
	case records.TableWoodEntries:
		found = deleteFrom(&s.wood, func(r records.WoodEntry) bool { return r.ID == id && r.UserID == userID })
	case records.TablePalletBatches:
		found = deleteFrom(&s.batch, func(r records.PalletBatch) bool { return r.ID == id && r.UserID == userID })
	case records.TableSales:
		found = deleteFrom(&s.sales, func(r records.Sale) bool { return r.ID == id && r.UserID == userID })
	case records.TableTruckEntries:
		found = deleteFrom(&s.trucks, func(r records.TruckEntry) bool { return r.ID == id && r.UserID == userID })
	default:
		return records.ErrUnknownTable
	}
	if !found {
		return records.ErrRecordNotFound
	}
	return nil
}

func (s *Records) Stats(_ context.Context, userID string) (records.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := records.Stats{TotalSalesValue: decimal.Zero, TotalStockMeters: decimal.Zero}
	for _, r := range s.sales {
		if r.UserID == userID {
			st.TotalSalesQuantity += r.Quantity
			st.TotalSalesValue = st.TotalSalesValue.Add(r.TotalValue)
		}
	}
	for _, r := range s.batch {
		if r.UserID == userID {
			st.TotalProduced += r.Quantity
		}
	}
	for _, r := range s.wood {
		if r.UserID == userID {
			st.TotalStockMeters = st.TotalStockMeters.Add(r.CubicMeters)
		}
	}
	for _, r := range s.trucks {
		if r.UserID == userID {
			st.TotalTrucks++
		}
	}
	return st, nil
}

func (s *Records) StockByWoodType(_ context.Context, userID string) ([]records.StockLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := map[string]decimal.Decimal{}
	for _, r := range s.wood {
		if r.UserID == userID {
			totals[r.WoodType] = totals[r.WoodType].Add(r.CubicMeters)
		}
	}

	out := make([]records.StockLevel, 0, len(totals))
	for wt, total := range totals {
		out = append(out, records.StockLevel{WoodType: wt, CubicMeters: total})
	}
	slices.SortFunc(out, func(a, b records.StockLevel) int { return cmp.Compare(a.WoodType, b.WoodType) })
	return out, nil
}
