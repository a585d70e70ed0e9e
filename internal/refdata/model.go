// Package refdata loads and caches the reference tables the triage pipeline
// depends on. Tables are loaded once at startup and are immutable afterwards,
// so a single Store is safe to share across concurrent requests.
package refdata

// Interaction severity levels.
const (
	InteractionHigh     = "High"
	InteractionModerate = "Moderate"
	InteractionLow      = "Low"
)

// Medicine is a row of the OTC medicine catalog.
type Medicine struct {
	SKU            string `json:"sku"`
	DrugName       string `json:"drug_name"`
	Indication     string `json:"indication"`
	MinAge         int    `json:"age_min"`
	ContraKeywords string `json:"contra_allergy_keywords"`
}

// Interaction is an unordered drug pair with a severity level.
type Interaction struct {
	DrugA string `json:"drug_a"`
	DrugB string `json:"drug_b"`
	Level string `json:"level"`
	Note  string `json:"note"`
}

// InventoryItem is one stocked SKU at one pharmacy.
type InventoryItem struct {
	PharmacyID string  `json:"pharmacy_id"`
	SKU        string  `json:"sku"`
	Qty        int     `json:"qty"`
	UnitPrice  float64 `json:"unit_price"`
}

// Pharmacy is a delivery-capable pharmacy location.
type Pharmacy struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Doctor is a tele-consult roster entry.
type Doctor struct {
	ID        string   `json:"doctor_id"`
	Name      string   `json:"name"`
	Specialty string   `json:"specialty"`
	TeleSlots []string `json:"tele_slots"`
}

// PostalLocation maps a postal code to flat mock-geography coordinates.
type PostalLocation struct {
	Code string  `json:"pincode"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	City string  `json:"city"`
}
