package records

import (
	"time"

	"github.com/shopspring/decimal"
)

// Date inputs use the YYYY-MM-DD layout. An empty date means today in the
// service's time zone.
const DateLayout = time.DateOnly

// NewWoodEntry is the payload to register incoming wood.
type NewWoodEntry struct {
	WoodType    string          `json:"woodType" validate:"required,max=120"`
	CubicMeters decimal.Decimal `json:"cubicMeters" validate:"gt=0"`
	Date        string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// NewPalletBatch is the payload to register produced pallets.
type NewPalletBatch struct {
	Quantity     int64           `json:"quantity" validate:"gt=0"`
	PalletMeters decimal.Decimal `json:"palletMeters" validate:"gte=0"`
	Date         string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// NewSale is the payload to register a sale.
type NewSale struct {
	Customer   string          `json:"customer" validate:"required,max=200"`
	Product    string          `json:"product" validate:"required,max=200"`
	Quantity   int64           `json:"quantity" validate:"gt=0"`
	TotalValue decimal.Decimal `json:"totalValue" validate:"gte=0"`
	Date       string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// NewTruckEntry is the payload to register a truck arrival. ArrivedAt
// defaults to now.
type NewTruckEntry struct {
	Plate     string     `json:"plate" validate:"required,max=10"`
	Driver    string     `json:"driver" validate:"required,max=200"`
	CargoType string     `json:"cargoType" validate:"required,max=120"`
	ArrivedAt *time.Time `json:"arrivedAt"`
}
