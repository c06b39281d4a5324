package httpapi

import (
	"net/http"

	"github.com/palletepro/palletepro/internal/report"
)

func (a *API) stats(r *http.Request) Response {
	u, err := currentUser(r)
	if err != nil {
		return Error(err)
	}
	st, err := a.records.Stats(r.Context(), u)
	if err != nil {
		return Error(err)
	}
	return JSON(st)
}

func (a *API) recent(r *http.Request) Response {
	u, err := currentUser(r)
	if err != nil {
		return Error(err)
	}
	rec, err := a.records.Recent(r.Context(), u)
	if err != nil {
		return Error(err)
	}
	return JSON(rec)
}

func (a *API) lowStock(r *http.Request) Response {
	u, err := currentUser(r)
	if err != nil {
		return Error(err)
	}
	levels, err := a.records.LowStock(r.Context(), u)
	if err != nil {
		return Error(err)
	}
	return JSONWithMeta(levels, map[string]any{
		"threshold": a.records.LowStockThreshold(),
		"count":     len(levels),
	})
}

func (a *API) salesReport(r *http.Request) Response {
	u, err := currentUser(r)
	if err != nil {
		return Error(err)
	}
	sales, err := a.records.ListSales(r.Context(), u)
	if err != nil {
		return Error(err)
	}
	pdf, err := report.SalesPDF(sales, a.now().In(a.loc))
	if err != nil {
		return Error(err)
	}
	return Attachment(report.SalesFilename, "application/pdf", pdf)
}
