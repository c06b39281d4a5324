// Package records holds the sawmill's operational data: wood stock entries,
// pallet production batches, sales and truck arrivals. Every row belongs to
// one user and lists are newest first.
package records

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Table names a record collection. The values double as SQL table names and
// realtime channel names.
type Table string

const (
	TableWoodEntries   Table = "wood_entries"
	TablePalletBatches Table = "pallet_batches"
	TableSales         Table = "sales"
	TableTruckEntries  Table = "truck_entries"
)

// Tables lists every record table.
var Tables = []Table{TableWoodEntries, TablePalletBatches, TableSales, TableTruckEntries}

// Valid reports whether t is a known table.
func (t Table) Valid() bool {
	switch t {
	case TableWoodEntries, TablePalletBatches, TableSales, TableTruckEntries:
		return true
	}
	return false
}

// WoodEntry is a delivery of raw wood into stock.
type WoodEntry struct {
	ID          uuid.UUID       `json:"id"`
	UserID      string          `json:"userId"`
	WoodType    string          `json:"woodType"`
	CubicMeters decimal.Decimal `json:"cubicMeters"`
	EntryDate   time.Time       `json:"entryDate"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// PalletBatch is a run of produced pallets.
type PalletBatch struct {
	ID           uuid.UUID       `json:"id"`
	UserID       string          `json:"userId"`
	Quantity     int64           `json:"quantity"`
	PalletMeters decimal.Decimal `json:"palletMeters"`
	ProducedOn   time.Time       `json:"producedOn"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Sale is a sale to a customer.
type Sale struct {
	ID         uuid.UUID       `json:"id"`
	UserID     string          `json:"userId"`
	Customer   string          `json:"customer"`
	Product    string          `json:"product"`
	Quantity   int64           `json:"quantity"`
	TotalValue decimal.Decimal `json:"totalValue"`
	SoldOn     time.Time       `json:"soldOn"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// TruckEntry is a truck arriving at the yard.
type TruckEntry struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"userId"`
	Plate     string    `json:"plate"`
	Driver    string    `json:"driver"`
	CargoType string    `json:"cargoType"`
	ArrivedAt time.Time `json:"arrivedAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Stats are the dashboard totals for one user.
type Stats struct {
	TotalSalesQuantity int64           `json:"totalSalesQuantity"`
	TotalSalesValue    decimal.Decimal `json:"totalSalesValue"`
	TotalProduced      int64           `json:"totalProduced"`
	TotalStockMeters   decimal.Decimal `json:"totalStockMeters"`
	TotalTrucks        int64           `json:"totalTrucks"`
}

// StockLevel is the summed volume for one wood type.
type StockLevel struct {
	WoodType    string          `json:"woodType"`
	CubicMeters decimal.Decimal `json:"cubicMeters"`
}

// Recent holds the latest rows of each table for the dashboard.
type Recent struct {
	WoodEntries   []WoodEntry   `json:"woodEntries"`
	PalletBatches []PalletBatch `json:"palletBatches"`
	Sales         []Sale        `json:"sales"`
	TruckEntries  []TruckEntry  `json:"truckEntries"`
}
