package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palletepro/palletepro/internal/records"
	"github.com/palletepro/palletepro/internal/store/memory"
	"github.com/palletepro/palletepro/pkg/subscription"
)

func day(d int) time.Time {
	return time.Date(2026, 4, d, 0, 0, 0, 0, time.UTC)
}

func TestRecords_ListOrderAndScope(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memory.NewRecords()

	older := records.Sale{ID: uuid.New(), UserID: "u1", SoldOn: day(1), CreatedAt: day(1), TotalValue: decimal.NewFromInt(10), Quantity: 1}
	newer := records.Sale{ID: uuid.New(), UserID: "u1", SoldOn: day(3), CreatedAt: day(3), TotalValue: decimal.NewFromInt(20), Quantity: 2}
	sameDayLater := records.Sale{ID: uuid.New(), UserID: "u1", SoldOn: day(3), CreatedAt: day(3).Add(time.Hour), TotalValue: decimal.NewFromInt(5), Quantity: 1}
	foreign := records.Sale{ID: uuid.New(), UserID: "u2", SoldOn: day(5), CreatedAt: day(5), TotalValue: decimal.NewFromInt(99), Quantity: 9}
	for _, r := range []records.Sale{older, newer, sameDayLater, foreign} {
		require.NoError(t, s.InsertSale(ctx, &r))
	}

	all, err := s.ListSales(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uuid.UUID{sameDayLater.ID, newer.ID, older.ID}, []uuid.UUID{all[0].ID, all[1].ID, all[2].ID})

	limited, err := s.ListSales(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestRecords_Delete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memory.NewRecords()
	e := records.TruckEntry{ID: uuid.New(), UserID: "u1", Plate: "ABC1D23", ArrivedAt: day(2)}
	require.NoError(t, s.InsertTruckEntry(ctx, &e))

	assert.ErrorIs(t, s.Delete(ctx, records.TableTruckEntries, "u2", e.ID), records.ErrRecordNotFound)
	assert.ErrorIs(t, s.Delete(ctx, records.TableSales, "u1", e.ID), records.ErrRecordNotFound)
	require.NoError(t, s.Delete(ctx, records.TableTruckEntries, "u1", e.ID))
	assert.ErrorIs(t, s.Delete(ctx, records.TableTruckEntries, "u1", e.ID), records.ErrRecordNotFound)
	assert.ErrorIs(t, s.Delete(ctx, records.Table("users"), "u1", e.ID), records.ErrUnknownTable)
}

func TestRecords_StatsAndStock(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memory.NewRecords()

	for _, w := range []records.WoodEntry{
		{ID: uuid.New(), UserID: "u1", WoodType: "Pinus", CubicMeters: decimal.RequireFromString("60.5")},
		{ID: uuid.New(), UserID: "u1", WoodType: "Eucalipto", CubicMeters: decimal.RequireFromString("150")},
		{ID: uuid.New(), UserID: "u1", WoodType: "Pinus", CubicMeters: decimal.RequireFromString("20")},
		{ID: uuid.New(), UserID: "u2", WoodType: "Pinus", CubicMeters: decimal.RequireFromString("999")},
	} {
		require.NoError(t, s.InsertWoodEntry(ctx, &w))
	}
	require.NoError(t, s.InsertPalletBatch(ctx, &records.PalletBatch{ID: uuid.New(), UserID: "u1", Quantity: 120}))
	require.NoError(t, s.InsertPalletBatch(ctx, &records.PalletBatch{ID: uuid.New(), UserID: "u1", Quantity: 30}))
	require.NoError(t, s.InsertSale(ctx, &records.Sale{ID: uuid.New(), UserID: "u1", Quantity: 40, TotalValue: decimal.RequireFromString("1200.50")}))
	require.NoError(t, s.InsertTruckEntry(ctx, &records.TruckEntry{ID: uuid.New(), UserID: "u1"}))

	st, err := s.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(40), st.TotalSalesQuantity)
	assert.True(t, decimal.RequireFromString("1200.50").Equal(st.TotalSalesValue))
	assert.Equal(t, int64(150), st.TotalProduced)
	assert.True(t, decimal.RequireFromString("230.5").Equal(st.TotalStockMeters))
	assert.Equal(t, int64(1), st.TotalTrucks)

	levels, err := s.StockByWoodType(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, "Eucalipto", levels[0].WoodType)
	assert.Equal(t, "Pinus", levels[1].WoodType)
	assert.True(t, decimal.RequireFromString("80.5").Equal(levels[1].CubicMeters))

	empty, err := s.Stats(ctx, "nobody")
	require.NoError(t, err)
	assert.True(t, empty.TotalSalesValue.IsZero())
}

func TestSubscriptions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memory.NewSubscriptions()

	_, err := s.GetByUser(ctx, "u1")
	assert.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)

	row := &subscription.Subscription{UserID: "u1", Status: subscription.StatusPending, ProviderTransactionID: "tx1"}
	require.NoError(t, s.Save(ctx, row))
	row.Status = subscription.StatusActive

	got, err := s.GetByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusPending, got.Status, "stored row must not alias the caller's value")

	got, err = s.GetByTransactionID(ctx, "tx1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)

	_, err = s.GetByTransactionID(ctx, "")
	assert.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)
}
