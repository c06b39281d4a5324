package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecords_RequireToken(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/sales", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/sales", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decode[envelope](t, rec).Error.Code)
}

func TestRecords_CreateRequiresAccess(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	tok := h.token(t, "user-1")

	rec := h.do(t, http.MethodPost, "/api/wood-entries", tok, map[string]any{
		"woodType": "Pinus", "cubicMeters": "12.5", "date": "2026-05-01",
	})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	// a trial unlocks writes
	rec = h.do(t, http.MethodPost, "/api/subscription/trial", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/wood-entries", tok, map[string]any{
		"woodType": "Pinus", "cubicMeters": "12.5", "date": "2026-05-01",
	})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestRecords_CRUD(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.activate(t, "user-1")
	tok := h.token(t, "user-1")
	other := h.token(t, "user-2")

	rec := h.do(t, http.MethodPost, "/api/truck-entries", tok, map[string]any{
		"plate": "abc1d23", "driver": "João", "cargoType": "Eucalipto",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID    string `json:"id"`
		Plate string `json:"plate"`
	}
	require.NoError(t, json.Unmarshal(decode[envelope](t, rec).Data, &created))
	assert.Equal(t, "ABC1D23", created.Plate)

	rec = h.do(t, http.MethodGet, "/api/truck-entries", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[envelope](t, rec).Meta["count"])

	rec = h.do(t, http.MethodGet, "/api/truck-entries", other, nil)
	assert.EqualValues(t, 0, decode[envelope](t, rec).Meta["count"])

	rec = h.do(t, http.MethodDelete, "/api/truck-entries/"+created.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, http.MethodDelete, "/api/truck-entries/"+created.ID, tok, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = h.do(t, http.MethodDelete, "/api/truck-entries/not-a-uuid", tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecords_Validation(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.activate(t, "user-1")
	tok := h.token(t, "user-1")

	rec := h.do(t, http.MethodPost, "/api/sales", tok, map[string]any{
		"customer": "", "product": "Palete PBR", "quantity": 0, "totalValue": "10",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	env := decode[envelope](t, rec)
	require.NotNil(t, env.Error)
	details, ok := env.Error.Details.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, details, "customer")
	assert.Contains(t, details, "quantity")
}

func TestRecords_MalformedBody(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.activate(t, "user-1")

	// a JSON string where an object is expected
	rec := h.do(t, http.MethodPost, "/api/pallet-batches", h.token(t, "user-1"), "x")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecords_CreateRequiresJSON(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.activate(t, "user-1")

	req := httptest.NewRequest(http.MethodPost, "/api/sales", strings.NewReader("customer=Serraria+Sul"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+h.token(t, "user-1"))
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Equal(t, "unsupported_media_type", decode[envelope](t, rec).Error.Code)
}

func TestDashboard(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.activate(t, "user-1")
	tok := h.token(t, "user-1")

	for _, body := range []map[string]any{
		{"woodType": "Pinus", "cubicMeters": "40", "date": "2026-05-01"},
		{"woodType": "Eucalipto", "cubicMeters": "150", "date": "2026-05-02"},
	} {
		rec := h.do(t, http.MethodPost, "/api/wood-entries", tok, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	rec := h.do(t, http.MethodPost, "/api/sales", tok, map[string]any{
		"customer": "Serraria Sul", "product": "Palete PBR", "quantity": 20, "totalValue": "1500.50", "date": "2026-05-03",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodGet, "/api/dashboard/stats", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats map[string]any
	require.NoError(t, json.Unmarshal(decode[envelope](t, rec).Data, &stats))
	assert.EqualValues(t, 20, stats["totalSalesQuantity"])
	assert.Equal(t, "190", stats["totalStockMeters"])

	rec = h.do(t, http.MethodGet, "/api/notifications/low-stock", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var low []map[string]any
	require.NoError(t, json.Unmarshal(decode[envelope](t, rec).Data, &low))
	require.Len(t, low, 1)
	assert.Equal(t, "Pinus", low[0]["woodType"])

	rec = h.do(t, http.MethodGet, "/api/dashboard/recent", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var recent map[string][]any
	require.NoError(t, json.Unmarshal(decode[envelope](t, rec).Data, &recent))
	assert.Len(t, recent["woodEntries"], 2)
	assert.Len(t, recent["sales"], 1)

	rec = h.do(t, http.MethodGet, "/api/reports/sales.pdf", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "relatorio-vendas.pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}
