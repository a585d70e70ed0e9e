package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/wolfman30/triage-ai-platform/internal/observability/metrics"
	"github.com/wolfman30/triage-ai-platform/internal/orders"
	"github.com/wolfman30/triage-ai-platform/pkg/logging"
)

// HeaderSessionID carries the caller's session identity. A fresh uuid is
// assigned when the header is absent and echoed back in the response.
const HeaderSessionID = "X-Session-ID"

// OrdersHandler confirms previewed orders and serves the session's last
// confirmation.
type OrdersHandler struct {
	sessions orders.SessionStore
	metrics  *metrics.PipelineMetrics
	logger   *logging.Logger
}

// NewOrdersHandler creates the orders handler.
func NewOrdersHandler(sessions orders.SessionStore, m *metrics.PipelineMetrics, logger *logging.Logger) *OrdersHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &OrdersHandler{sessions: sessions, metrics: m, logger: logger}
}

// Confirm handles POST /v1/orders/confirm. The body is the order preview
// returned by the triage endpoint.
func (h *OrdersHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var preview orders.Preview
	if err := json.NewDecoder(r.Body).Decode(&preview); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if preview.PharmacyID == "" || len(preview.Items) == 0 {
		http.Error(w, "order preview has no items", http.StatusBadRequest)
		return
	}

	sessionID := r.Header.Get(HeaderSessionID)
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	confirmation := orders.Finalize(preview)
	if err := h.sessions.SaveLast(r.Context(), sessionID, confirmation); err != nil {
		h.logger.Error("failed to persist order confirmation", "error", err, "order_id", confirmation.OrderID)
		http.Error(w, "failed to persist order", http.StatusInternalServerError)
		return
	}
	h.metrics.ObserveOrderConfirmed()
	h.logger.Info("order confirmed", "order_id", confirmation.OrderID, "pharmacy_id", confirmation.PharmacyID)

	w.Header().Set(HeaderSessionID, sessionID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(confirmation)
}

// Last handles GET /v1/orders/last.
func (h *OrdersHandler) Last(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(HeaderSessionID)
	if sessionID == "" {
		http.Error(w, "missing X-Session-ID header", http.StatusBadRequest)
		return
	}

	confirmation, err := h.sessions.Last(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to load last order", "error", err)
		http.Error(w, "failed to load last order", http.StatusInternalServerError)
		return
	}
	if confirmation == nil {
		http.Error(w, "no order found for session", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(confirmation)
}
