package refdata

import (
	"fmt"
	"strings"
)

// Store holds all reference tables in memory. Construct one with LoadFromDir
// or LoadFromDB at process startup and inject it into the components that
// need lookups; never mutate it after construction.
type Store struct {
	medicines    []Medicine
	interactions []Interaction
	inventory    []InventoryItem
	pharmacies   []Pharmacy
	doctors      []Doctor

	medBySKU     map[string]Medicine
	pharmacyByID map[string]Pharmacy
	postal       map[string]PostalLocation
}

// Tables bundles the raw reference tables for direct Store construction.
// Deployments normally go through LoadFromDir or LoadFromDB instead.
type Tables struct {
	Medicines    []Medicine
	Interactions []Interaction
	Inventory    []InventoryItem
	Pharmacies   []Pharmacy
	Doctors      []Doctor
	Postal       []PostalLocation
}

// New validates the tables and builds an immutable Store.
func New(t Tables) (*Store, error) {
	return newStore(t.Medicines, t.Interactions, t.Inventory, t.Pharmacies, t.Doctors, t.Postal)
}

func newStore(medicines []Medicine, interactions []Interaction, inventory []InventoryItem,
	pharmacies []Pharmacy, doctors []Doctor, postal []PostalLocation) (*Store, error) {

	s := &Store{
		medicines:    medicines,
		interactions: interactions,
		inventory:    inventory,
		pharmacies:   pharmacies,
		doctors:      doctors,
		medBySKU:     make(map[string]Medicine, len(medicines)),
		pharmacyByID: make(map[string]Pharmacy, len(pharmacies)),
		postal:       make(map[string]PostalLocation, len(postal)),
	}

	for _, m := range medicines {
		if _, dup := s.medBySKU[m.SKU]; dup {
			return nil, fmt.Errorf("refdata: duplicate sku %q in medicines table", m.SKU)
		}
		s.medBySKU[m.SKU] = m
	}
	for _, ix := range interactions {
		switch ix.Level {
		case InteractionHigh, InteractionModerate, InteractionLow:
		default:
			return nil, fmt.Errorf("refdata: unknown interaction level %q for %s/%s", ix.Level, ix.DrugA, ix.DrugB)
		}
	}
	for _, item := range inventory {
		if _, ok := s.medBySKU[item.SKU]; !ok {
			return nil, fmt.Errorf("refdata: inventory references unknown sku %q", item.SKU)
		}
	}
	for _, ph := range pharmacies {
		if _, dup := s.pharmacyByID[ph.ID]; dup {
			return nil, fmt.Errorf("refdata: duplicate pharmacy id %q", ph.ID)
		}
		s.pharmacyByID[ph.ID] = ph
	}
	for _, loc := range postal {
		code := strings.TrimSpace(loc.Code)
		if code == "" {
			continue
		}
		s.postal[code] = loc
	}

	return s, nil
}

// Medicines returns the OTC catalog in table order.
func (s *Store) Medicines() []Medicine { return s.medicines }

// Inventory returns all pharmacy stock rows.
func (s *Store) Inventory() []InventoryItem { return s.inventory }

// Pharmacies returns the pharmacy directory in table order.
func (s *Store) Pharmacies() []Pharmacy { return s.pharmacies }

// Doctors returns the tele-consult roster in table order.
func (s *Store) Doctors() []Doctor { return s.doctors }

// MedicineBySKU looks up one medicine by its SKU.
func (s *Store) MedicineBySKU(sku string) (Medicine, bool) {
	m, ok := s.medBySKU[sku]
	return m, ok
}

// DrugName resolves a SKU to its display name, falling back to the SKU itself.
func (s *Store) DrugName(sku string) string {
	if m, ok := s.medBySKU[sku]; ok {
		return m.DrugName
	}
	return sku
}

// PharmacyName resolves a pharmacy id to its display name, falling back to the id.
func (s *Store) PharmacyName(id string) string {
	if ph, ok := s.pharmacyByID[id]; ok {
		return ph.Name
	}
	return id
}

// Interaction looks up the interaction entry for a drug pair. The pair is
// unordered: (A,B) and (B,A) resolve to the same entry.
func (s *Store) Interaction(drugA, drugB string) (Interaction, bool) {
	for _, ix := range s.interactions {
		if (ix.DrugA == drugA && ix.DrugB == drugB) || (ix.DrugA == drugB && ix.DrugB == drugA) {
			return ix, true
		}
	}
	return Interaction{}, false
}

// ResolvePostal maps a postal code to coordinates.
func (s *Store) ResolvePostal(code string) (lat, lon float64, ok bool) {
	loc, ok := s.postal[strings.TrimSpace(code)]
	if !ok {
		return 0, 0, false
	}
	return loc.Lat, loc.Lon, true
}
