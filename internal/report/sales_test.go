package report_test

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palletepro/palletepro/internal/records"
	"github.com/palletepro/palletepro/internal/report"
)

func TestFormatBRL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"0", "R$ 0,00"},
		{"12.5", "R$ 12,50"},
		{"1234.567", "R$ 1.234,57"},
		{"1000000", "R$ 1.000.000,00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, report.FormatBRL(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestSalesPDF(t *testing.T) {
	t.Parallel()

	generated := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

	t.Run("empty report", func(t *testing.T) {
		t.Parallel()
		out, err := report.SalesPDF(nil, generated)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	})

	t.Run("many rows span pages", func(t *testing.T) {
		t.Parallel()
		sales := make([]records.Sale, 0, 80)
		for i := range 80 {
			sales = append(sales, records.Sale{
				ID:         uuid.New(),
				UserID:     "user-1",
				Customer:   fmt.Sprintf("Cliente São João %d", i),
				Product:    "Palete PBR",
				Quantity:   int64(10 + i),
				TotalValue: decimal.NewFromFloat(149.9).Mul(decimal.NewFromInt(int64(i + 1))),
				SoldOn:     generated.AddDate(0, 0, -i),
			})
		}

		out, err := report.SalesPDF(sales, generated)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
		assert.GreaterOrEqual(t, bytes.Count(out, []byte("/Type /Page\n")), 2)
	})
}
