// Package report renders downloadable documents for the dashboard.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/palletepro/palletepro/internal/records"
)

// SalesFilename is the attachment name used when serving the sales report.
const SalesFilename = "relatorio-vendas.pdf"

var (
	colorHeader   = [3]int{41, 128, 185}
	colorText     = [3]int{44, 62, 80}
	colorMuted    = [3]int{127, 140, 141}
	colorAltRow   = [3]int{241, 245, 249}
	colorGridLine = [3]int{200, 200, 200}
)

var (
	columns = []string{"Data", "Cliente", "Produto", "Quantidade", "Valor Total"}
	widths  = []float64{26, 50, 46, 26, 34}
	aligns  = []string{"C", "L", "L", "R", "R"}
)

var brazil = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders v as Brazilian reais, e.g. "R$ 1.234,50".
func FormatBRL(v decimal.Decimal) string {
	return brazil.Sprintf("R$ %.2f", v.Round(2).InexactFloat64())
}

// SalesPDF renders sales as an A4 table followed by the summed total.
// Dates are printed in the zone they carry.
func SalesPDF(sales []records.Sale, generatedAt time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 20, 14)
	pdf.SetAutoPageBreak(true, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.SetTextColor(colorText[0], colorText[1], colorText[2])
	pdf.CellFormat(0, 10, tr("Relatório de Vendas"), "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.SetTextColor(colorMuted[0], colorMuted[1], colorMuted[2])
	pdf.CellFormat(0, 7, "Gerado em: "+generatedAt.Format("02/01/2006"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	writeHeader(pdf, tr)

	total := decimal.Zero
	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(colorText[0], colorText[1], colorText[2])
	for i, s := range sales {
		// repeat the header when the row would spill onto a new page
		_, pageHeight := pdf.GetPageSize()
		_, _, _, bottom := pdf.GetMargins()
		if pdf.GetY()+7 > pageHeight-bottom {
			pdf.AddPage()
			writeHeader(pdf, tr)
			pdf.SetFont("Arial", "", 10)
			pdf.SetTextColor(colorText[0], colorText[1], colorText[2])
		}

		fill := i%2 == 1
		if fill {
			pdf.SetFillColor(colorAltRow[0], colorAltRow[1], colorAltRow[2])
		}
		cells := []string{
			s.SoldOn.Format("02/01/2006"),
			tr(s.Customer),
			tr(s.Product),
			fmt.Sprintf("%d", s.Quantity),
			FormatBRL(s.TotalValue),
		}
		for j, c := range cells {
			pdf.CellFormat(widths[j], 7, c, "1", 0, aligns[j], fill, 0, "")
		}
		pdf.Ln(-1)
		total = total.Add(s.TotalValue)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Total de Vendas: "+FormatBRL(total), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render sales report: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(pdf *fpdf.Fpdf, tr func(string) string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(colorHeader[0], colorHeader[1], colorHeader[2])
	pdf.SetTextColor(255, 255, 255)
	pdf.SetDrawColor(colorGridLine[0], colorGridLine[1], colorGridLine[2])
	for i, c := range columns {
		pdf.CellFormat(widths[i], 8, tr(c), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}
