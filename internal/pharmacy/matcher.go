// Package pharmacy ranks delivery-capable pharmacies against a requested SKU
// set and picks the single best fulfillment option.
package pharmacy

import (
	"context"
	"math"
	"sort"

	"github.com/wolfman30/triage-ai-platform/internal/refdata"
	"github.com/wolfman30/triage-ai-platform/pkg/logging"
)

// Informational result messages for the expected empty states.
const (
	MsgNoMedicinesRequested = "No medicines requested"
	MsgNoStockAnywhere      = "Requested medicines not available anywhere"
	MsgNoPharmacyNearby     = "No pharmacy stocks required meds nearby"
)

// Item is one stocked line at the matched pharmacy.
type Item struct {
	SKU       string  `json:"sku"`
	Qty       int     `json:"qty"`
	UnitPrice float64 `json:"unit_price"`
}

// Match is the best-fulfilling pharmacy for a SKU set.
type Match struct {
	PharmacyID   string  `json:"pharmacy_id"`
	PharmacyName string  `json:"pharmacy_name"`
	Items        []Item  `json:"items"`
	ETAMinutes   int     `json:"eta_min"`
	DeliveryFee  float64 `json:"delivery_fee"`
	Distance     float64 `json:"distance"`
}

// Result carries either a match or an informational message. Empty-stock
// situations are valid outcomes, not errors.
type Result struct {
	Match   *Match `json:"match,omitempty"`
	Message string `json:"message,omitempty"`
}

// Matcher finds fulfillment options against the inventory and pharmacy
// directory tables.
type Matcher struct {
	store  *refdata.Store
	logger *logging.Logger
}

// NewMatcher creates a pharmacy matcher over the given reference store.
func NewMatcher(store *refdata.Store, logger *logging.Logger) *Matcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Matcher{store: store, logger: logger.Component("pharmacy")}
}

// FindBest intersects the requested SKUs with stocked inventory, scores each
// candidate pharmacy by distance, and returns the single best candidate.
// Ranking is ascending by (distance, -matched item count, delivery fee), so
// repeated calls over the same tables are deterministic.
func (m *Matcher) FindBest(ctx context.Context, skus []string, lat, lon float64) Result {
	if len(skus) == 0 {
		return Result{Message: MsgNoMedicinesRequested}
	}

	requested := make(map[string]struct{}, len(skus))
	for _, sku := range skus {
		requested[sku] = struct{}{}
	}

	// Stock intersection: requested SKUs with qty > 0, grouped by pharmacy.
	stockByPharmacy := make(map[string][]Item)
	anyStock := false
	for _, row := range m.store.Inventory() {
		if _, wanted := requested[row.SKU]; !wanted || row.Qty <= 0 {
			continue
		}
		anyStock = true
		stockByPharmacy[row.PharmacyID] = append(stockByPharmacy[row.PharmacyID], Item{
			SKU:       row.SKU,
			Qty:       row.Qty,
			UnitPrice: row.UnitPrice,
		})
	}

	if !anyStock {
		return Result{Message: MsgNoStockAnywhere}
	}

	var candidates []Match
	for _, ph := range m.store.Pharmacies() {
		items, ok := stockByPharmacy[ph.ID]
		if !ok {
			continue
		}

		dist := manhattanDistance(lat, lon, ph.Lat, ph.Lon)
		eta, fee := estimateETAFee(dist)

		candidates = append(candidates, Match{
			PharmacyID:   ph.ID,
			PharmacyName: ph.Name,
			Items:        items,
			ETAMinutes:   eta,
			DeliveryFee:  fee,
			Distance:     round3(dist),
		})
	}

	if len(candidates) == 0 {
		return Result{Message: MsgNoPharmacyNearby}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		if len(a.Items) != len(b.Items) {
			return len(a.Items) > len(b.Items)
		}
		return a.DeliveryFee < b.DeliveryFee
	})

	best := candidates[0]
	m.logger.Info("pharmacy matched",
		"pharmacy_id", best.PharmacyID,
		"items", len(best.Items),
		"distance", best.Distance,
		"eta_min", best.ETAMinutes,
	)
	return Result{Match: &best}
}

// manhattanDistance is a deliberate simplification over great-circle math for
// the flat mock geography of the reference tables.
func manhattanDistance(lat1, lon1, lat2, lon2 float64) float64 {
	return math.Abs(lat1-lat2) + math.Abs(lon1-lon2)
}

// estimateETAFee maps a distance to a discrete (ETA minutes, delivery fee)
// bucket.
func estimateETAFee(distance float64) (int, float64) {
	switch {
	case distance <= 0.03:
		return 20, 15
	case distance <= 0.07:
		return 40, 25
	default:
		return 60, 40
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
