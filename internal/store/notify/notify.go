// Package notify decorates stores so every committed mutation is published
// as a realtime.Change. Reads pass straight through.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/palletepro/palletepro/internal/records"
	"github.com/palletepro/palletepro/pkg/realtime"
	"github.com/palletepro/palletepro/pkg/subscription"
)

// TableSubscriptions is the channel name for subscription row changes.
const TableSubscriptions = "subscriptions"

// Publisher receives changes. *realtime.Hub satisfies it.
type Publisher interface {
	Publish(c realtime.Change)
}

func publish(p Publisher, table string, op realtime.Op, userID, recordID string) {
	p.Publish(realtime.Change{
		Table:    table,
		Op:       op,
		UserID:   userID,
		RecordID: recordID,
		At:       time.Now().UTC(),
	})
}

// Records wraps a records.Store.
type Records struct {
	records.Store
	pub Publisher
}

func NewRecords(next records.Store, pub Publisher) *Records {
	return &Records{Store: next, pub: pub}
}

func (r *Records) InsertWoodEntry(ctx context.Context, e *records.WoodEntry) error {
	if err := r.Store.InsertWoodEntry(ctx, e); err != nil {
		return err
	}
	publish(r.pub, string(records.TableWoodEntries), realtime.OpInsert, e.UserID, e.ID.String())
	return nil
}

func (r *Records) InsertPalletBatch(ctx context.Context, b *records.PalletBatch) error {
	if err := r.Store.InsertPalletBatch(ctx, b); err != nil {
		return err
	}
	publish(r.pub, string(records.TablePalletBatches), realtime.OpInsert, b.UserID, b.ID.String())
	return nil
}

func (r *Records) InsertSale(ctx context.Context, s *records.Sale) error {
	if err := r.Store.InsertSale(ctx, s); err != nil {
		return err
	}
	publish(r.pub, string(records.TableSales), realtime.OpInsert, s.UserID, s.ID.String())
	return nil
}

func (r *Records) InsertTruckEntry(ctx context.Context, t *records.TruckEntry) error {
	if err := r.Store.InsertTruckEntry(ctx, t); err != nil {
		return err
	}
	publish(r.pub, string(records.TableTruckEntries), realtime.OpInsert, t.UserID, t.ID.String())
	return nil
}

func (r *Records) Delete(ctx context.Context, table records.Table, userID string, id uuid.UUID) error {
	if err := r.Store.Delete(ctx, table, userID, id); err != nil {
		return err
	}
	publish(r.pub, string(table), realtime.OpDelete, userID, id.String())
	return nil
}

// Subscriptions wraps a subscription.Store.
type Subscriptions struct {
	subscription.Store
	pub Publisher
}

func NewSubscriptions(next subscription.Store, pub Publisher) *Subscriptions {
	return &Subscriptions{Store: next, pub: pub}
}

func (s *Subscriptions) Save(ctx context.Context, sub *subscription.Subscription) error {
	if err := s.Store.Save(ctx, sub); err != nil {
		return err
	}
	publish(s.pub, TableSubscriptions, realtime.OpUpdate, sub.UserID, sub.UserID)
	return nil
}
