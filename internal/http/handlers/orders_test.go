package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/triage-ai-platform/internal/observability/metrics"
	"github.com/wolfman30/triage-ai-platform/internal/orders"
	"github.com/wolfman30/triage-ai-platform/pkg/logging"
)

func testPreview() orders.Preview {
	return orders.Preview{
		PharmacyID:   "ph001",
		PharmacyName: "MedQuick",
		Items: []orders.LineItem{
			{SKU: "SKU001", DrugName: "Paracetamol", Qty: 1, UnitPrice: 2.5, Subtotal: 2.5},
		},
		ETAMinutes:  20,
		DeliveryFee: 15,
		Subtotal:    2.5,
		TotalCost:   17.5,
	}
}

func newOrdersHandler() *OrdersHandler {
	m := metrics.NewPipelineMetrics(prometheus.NewRegistry())
	return NewOrdersHandler(orders.NewMemorySessionStore(), m, logging.Default())
}

func TestConfirmAssignsSessionWhenHeaderMissing(t *testing.T) {
	handler := newOrdersHandler()

	body, err := json.Marshal(testPreview())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/orders/confirm", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Confirm(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(HeaderSessionID))

	var conf orders.Confirmation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conf))
	assert.True(t, strings.HasPrefix(conf.OrderID, "ORD-"))
	assert.Equal(t, "ph001", conf.PharmacyID)
	assert.False(t, conf.PlacedAt.IsZero())
}

func TestConfirmThenLastRoundTrip(t *testing.T) {
	handler := newOrdersHandler()

	body, err := json.Marshal(testPreview())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/orders/confirm", bytes.NewReader(body))
	req.Header.Set(HeaderSessionID, "session-1")
	rec := httptest.NewRecorder()
	handler.Confirm(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var conf orders.Confirmation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conf))

	req = httptest.NewRequest(http.MethodGet, "/v1/orders/last", nil)
	req.Header.Set(HeaderSessionID, "session-1")
	rec = httptest.NewRecorder()
	handler.Last(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var last orders.Confirmation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &last))
	assert.Equal(t, conf.OrderID, last.OrderID)
}

func TestConfirmRejectsEmptyPreview(t *testing.T) {
	handler := newOrdersHandler()

	req := httptest.NewRequest(http.MethodPost, "/v1/orders/confirm", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.Confirm(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLastRequiresSessionHeader(t *testing.T) {
	handler := newOrdersHandler()

	req := httptest.NewRequest(http.MethodGet, "/v1/orders/last", nil)
	rec := httptest.NewRecorder()
	handler.Last(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLastReturnsNotFoundForUnknownSession(t *testing.T) {
	handler := newOrdersHandler()

	req := httptest.NewRequest(http.MethodGet, "/v1/orders/last", nil)
	req.Header.Set(HeaderSessionID, "session-unknown")
	rec := httptest.NewRecorder()
	handler.Last(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
