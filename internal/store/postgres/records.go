package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/palletepro/palletepro/internal/records"
)

// Records is a records.Store.
type Records struct {
	pool *pgxpool.Pool
}

func NewRecords(pool *pgxpool.Pool) *Records {
	return &Records{pool: pool}
}

// limitClause renders a LIMIT for positive n.
func limitClause(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d", n)
}

func (s *Records) InsertWoodEntry(ctx context.Context, e *records.WoodEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO wood_entries (id, user_id, wood_type, cubic_meters, entry_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.UserID, e.WoodType, e.CubicMeters, e.EntryDate, e.CreatedAt)
	return err
}

func (s *Records) ListWoodEntries(ctx context.Context, userID string, limit int) ([]records.WoodEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, wood_type, cubic_meters, entry_date, created_at
		 FROM wood_entries WHERE user_id = $1
		 ORDER BY entry_date DESC, created_at DESC`+limitClause(limit), userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (records.WoodEntry, error) {
		var e records.WoodEntry
		err := row.Scan(&e.ID, &e.UserID, &e.WoodType, &e.CubicMeters, &e.EntryDate, &e.CreatedAt)
		return e, err
	})
}

func (s *Records) InsertPalletBatch(ctx context.Context, b *records.PalletBatch) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO pallet_batches (id, user_id, quantity, pallet_meters, produced_on, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		b.ID, b.UserID, b.Quantity, b.PalletMeters, b.ProducedOn, b.CreatedAt)
	return err
}

func (s *Records) ListPalletBatches(ctx context.Context, userID string, limit int) ([]records.PalletBatch, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, quantity, pallet_meters, produced_on, created_at
		 FROM pallet_batches WHERE user_id = $1
		 ORDER BY produced_on DESC, created_at DESC`+limitClause(limit), userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (records.PalletBatch, error) {
		var b records.PalletBatch
		err := row.Scan(&b.ID, &b.UserID, &b.Quantity, &b.PalletMeters, &b.ProducedOn, &b.CreatedAt)
		return b, err
	})
}

func (s *Records) InsertSale(ctx context.Context, sale *records.Sale) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sales (id, user_id, customer, product, quantity, total_value, sold_on, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sale.ID, sale.UserID, sale.Customer, sale.Product, sale.Quantity, sale.TotalValue, sale.SoldOn, sale.CreatedAt)
	return err
}

func (s *Records) ListSales(ctx context.Context, userID string, limit int) ([]records.Sale, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, customer, product, quantity, total_value, sold_on, created_at
		 FROM sales WHERE user_id = $1
		 ORDER BY sold_on DESC, created_at DESC`+limitClause(limit), userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (records.Sale, error) {
		var r records.Sale
		err := row.Scan(&r.ID, &r.UserID, &r.Customer, &r.Product, &r.Quantity, &r.TotalValue, &r.SoldOn, &r.CreatedAt)
		return r, err
	})
}

func (s *Records) InsertTruckEntry(ctx context.Context, t *records.TruckEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO truck_entries (id, user_id, plate, driver, cargo_type, arrived_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.UserID, t.Plate, t.Driver, t.CargoType, t.ArrivedAt, t.CreatedAt)
	return err
}

func (s *Records) ListTruckEntries(ctx context.Context, userID string, limit int) ([]records.TruckEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, plate, driver, cargo_type, arrived_at, created_at
		 FROM truck_entries WHERE user_id = $1
		 ORDER BY arrived_at DESC, created_at DESC`+limitClause(limit), userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (records.TruckEntry, error) {
		var t records.TruckEntry
		err := row.Scan(&t.ID, &t.UserID, &t.Plate, &t.Driver, &t.CargoType, &t.ArrivedAt, &t.CreatedAt)
		return t, err
	})
}

func (s *Records) Delete(ctx context.Context, table records.Table, userID string, id uuid.UUID) error {
	if !table.Valid() {
		return records.ErrUnknownTable
	}
	// table is one of the fixed constants checked above.
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+string(table)+` WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return records.ErrRecordNotFound
	}
	return nil
}

func (s *Records) Stats(ctx context.Context, userID string) (records.Stats, error) {
	var st records.Stats
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COALESCE(SUM(quantity), 0)::BIGINT FROM sales WHERE user_id = $1),
			(SELECT COALESCE(SUM(total_value), 0) FROM sales WHERE user_id = $1),
			(SELECT COALESCE(SUM(quantity), 0)::BIGINT FROM pallet_batches WHERE user_id = $1),
			(SELECT COALESCE(SUM(cubic_meters), 0) FROM wood_entries WHERE user_id = $1),
			(SELECT COUNT(*) FROM truck_entries WHERE user_id = $1)`,
		userID,
	).Scan(&st.TotalSalesQuantity, &st.TotalSalesValue, &st.TotalProduced, &st.TotalStockMeters, &st.TotalTrucks)
	return st, err
}

func (s *Records) StockByWoodType(ctx context.Context, userID string) ([]records.StockLevel, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT wood_type, SUM(cubic_meters) FROM wood_entries
		 WHERE user_id = $1 GROUP BY wood_type ORDER BY wood_type`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (records.StockLevel, error) {
		var l records.StockLevel
		err := row.Scan(&l.WoodType, &l.CubicMeters)
		return l, err
	})
}
