package notify_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palletepro/palletepro/internal/records"
	"github.com/palletepro/palletepro/internal/store/memory"
	"github.com/palletepro/palletepro/internal/store/notify"
	"github.com/palletepro/palletepro/pkg/realtime"
	"github.com/palletepro/palletepro/pkg/subscription"
)

type recorder struct {
	mu      sync.Mutex
	changes []realtime.Change
}

func (r *recorder) Publish(c realtime.Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

func TestRecords_PublishesInsertAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	rec := &recorder{}
	s := notify.NewRecords(memory.NewRecords(), rec)

	entry := &records.WoodEntry{
		ID:          uuid.New(),
		UserID:      "user-1",
		WoodType:    "Pinus",
		CubicMeters: decimal.NewFromInt(12),
		EntryDate:   time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:   time.Now(),
	}
	require.NoError(t, s.InsertWoodEntry(ctx, entry))
	require.NoError(t, s.Delete(ctx, records.TableWoodEntries, "user-1", entry.ID))

	require.Len(t, rec.changes, 2)
	assert.Equal(t, "wood_entries", rec.changes[0].Table)
	assert.Equal(t, realtime.OpInsert, rec.changes[0].Op)
	assert.Equal(t, entry.ID.String(), rec.changes[0].RecordID)
	assert.Equal(t, realtime.OpDelete, rec.changes[1].Op)
	assert.Equal(t, "user-1", rec.changes[1].UserID)
}

func TestRecords_FailedDeletePublishesNothing(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	s := notify.NewRecords(memory.NewRecords(), rec)

	err := s.Delete(context.Background(), records.TableSales, "user-1", uuid.New())
	require.ErrorIs(t, err, records.ErrRecordNotFound)
	assert.Empty(t, rec.changes)
}

func TestSubscriptions_PublishesOnSave(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	s := notify.NewSubscriptions(memory.NewSubscriptions(), rec)

	require.NoError(t, s.Save(context.Background(), &subscription.Subscription{
		UserID: "user-1",
		Status: subscription.StatusActive,
	}))

	require.Len(t, rec.changes, 1)
	assert.Equal(t, notify.TableSubscriptions, rec.changes[0].Table)
	assert.Equal(t, realtime.OpUpdate, rec.changes[0].Op)
}

func TestRecords_DeliversThroughHub(t *testing.T) {
	t.Parallel()
	hub := realtime.NewHub(8)
	defer hub.Close()

	got := make(chan realtime.Change, 1)
	unsubscribe := hub.Subscribe(context.Background(), realtime.Filter{UserID: "user-1"}, func(c realtime.Change) {
		got <- c
	})
	defer unsubscribe()

	s := notify.NewRecords(memory.NewRecords(), hub)
	require.NoError(t, s.InsertTruckEntry(context.Background(), &records.TruckEntry{
		ID:        uuid.New(),
		UserID:    "user-1",
		Plate:     "ABC1D23",
		ArrivedAt: time.Now(),
		CreatedAt: time.Now(),
	}))

	select {
	case c := <-got:
		assert.Equal(t, "truck_entries", c.Table)
	case <-time.After(2 * time.Second):
		t.Fatal("change not delivered")
	}
}
