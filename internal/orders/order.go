// Package orders derives priced previews from pharmacy matches and finalizes
// them into confirmations.
package orders

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/triage-ai-platform/internal/pharmacy"
	"github.com/wolfman30/triage-ai-platform/internal/refdata"
)

// LineItem is one priced line of an order.
type LineItem struct {
	SKU       string  `json:"sku"`
	DrugName  string  `json:"drug_name"`
	Qty       int     `json:"qty"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

// Preview is the priced order derived from a pharmacy match, shown to the
// user before confirmation.
type Preview struct {
	PharmacyID   string     `json:"pharmacy_id"`
	PharmacyName string     `json:"pharmacy_name"`
	Items        []LineItem `json:"items"`
	ETAMinutes   int        `json:"eta_min"`
	DeliveryFee  float64    `json:"delivery_fee"`
	Subtotal     float64    `json:"subtotal"`
	TotalCost    float64    `json:"total_cost"`
}

// Confirmation is a finalized order. Finalizing the same preview twice
// produces two distinct confirmations; there is no dedup.
type Confirmation struct {
	Preview
	OrderID  string    `json:"order_id"`
	PlacedAt time.Time `json:"placed_at"`
}

// BuildPreview prices a pharmacy match: line subtotal is qty times unit
// price, total is subtotal plus delivery fee, rounded to 2 decimals.
func BuildPreview(match *pharmacy.Match, store *refdata.Store) Preview {
	items := make([]LineItem, 0, len(match.Items))
	var subtotal float64
	for _, item := range match.Items {
		line := round2(float64(item.Qty) * item.UnitPrice)
		subtotal += line
		items = append(items, LineItem{
			SKU:       item.SKU,
			DrugName:  store.DrugName(item.SKU),
			Qty:       item.Qty,
			UnitPrice: item.UnitPrice,
			Subtotal:  line,
		})
	}
	subtotal = round2(subtotal)

	return Preview{
		PharmacyID:   match.PharmacyID,
		PharmacyName: match.PharmacyName,
		Items:        items,
		ETAMinutes:   match.ETAMinutes,
		DeliveryFee:  match.DeliveryFee,
		Subtotal:     subtotal,
		TotalCost:    round2(subtotal + match.DeliveryFee),
	}
}

// Finalize stamps a preview with an order id and a placement timestamp.
func Finalize(p Preview) Confirmation {
	return Confirmation{
		Preview:  p,
		OrderID:  "ORD-" + uuid.New().String()[:8],
		PlacedAt: time.Now().UTC(),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
