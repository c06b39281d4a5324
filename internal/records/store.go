package records

import (
	"context"

	"github.com/google/uuid"
)

// Store persists records. List methods return rows newest first; a limit of
// zero means no limit. Delete returns ErrRecordNotFound when the row does
// not exist or belongs to someone else.
type Store interface {
	InsertWoodEntry(ctx context.Context, e *WoodEntry) error
	ListWoodEntries(ctx context.Context, userID string, limit int) ([]WoodEntry, error)

	InsertPalletBatch(ctx context.Context, b *PalletBatch) error
	ListPalletBatches(ctx context.Context, userID string, limit int) ([]PalletBatch, error)

	InsertSale(ctx context.Context, s *Sale) error
	ListSales(ctx context.Context, userID string, limit int) ([]Sale, error)

	InsertTruckEntry(ctx context.Context, t *TruckEntry) error
	ListTruckEntries(ctx context.Context, userID string, limit int) ([]TruckEntry, error)

	Delete(ctx context.Context, table Table, userID string, id uuid.UUID) error

	Stats(ctx context.Context, userID string) (Stats, error)
	// StockByWoodType sums wood entries per type, ordered by type.
	StockByWoodType(ctx context.Context, userID string) ([]StockLevel, error)
}

// AccessChecker answers whether a user currently has access.
type AccessChecker interface {
	HasAccess(ctx context.Context, userID string) (bool, error)
}

// AccessFunc adapts a function to AccessChecker.
type AccessFunc func(ctx context.Context, userID string) (bool, error)

func (f AccessFunc) HasAccess(ctx context.Context, userID string) (bool, error) {
	return f(ctx, userID)
}
