package refdata

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// LoadFromDB builds a Store from the reference tables in a relational
// database. The schema mirrors the CSV files; deployments that prefer
// Postgres over flat files point DATABASE_URL at it and seed these tables.
func LoadFromDB(ctx context.Context, db *sql.DB) (*Store, error) {
	medicines, err := queryMedicines(ctx, db)
	if err != nil {
		return nil, err
	}
	interactions, err := queryInteractions(ctx, db)
	if err != nil {
		return nil, err
	}
	inventory, err := queryInventory(ctx, db)
	if err != nil {
		return nil, err
	}
	pharmacies, err := queryPharmacies(ctx, db)
	if err != nil {
		return nil, err
	}
	doctors, err := queryDoctors(ctx, db)
	if err != nil {
		return nil, err
	}
	postal, err := queryZipcodes(ctx, db)
	if err != nil {
		return nil, err
	}
	return newStore(medicines, interactions, inventory, pharmacies, doctors, postal)
}

func queryMedicines(ctx context.Context, db *sql.DB) ([]Medicine, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT sku, drug_name, indication, age_min, contra_allergy_keywords FROM medicines ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("refdata: query medicines: %w", err)
	}
	defer rows.Close()

	var out []Medicine
	for rows.Next() {
		var m Medicine
		if err := rows.Scan(&m.SKU, &m.DrugName, &m.Indication, &m.MinAge, &m.ContraKeywords); err != nil {
			return nil, fmt.Errorf("refdata: scan medicines: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func queryInteractions(ctx context.Context, db *sql.DB) ([]Interaction, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT drug_a, drug_b, level, note FROM drug_interactions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("refdata: query interactions: %w", err)
	}
	defer rows.Close()

	var out []Interaction
	for rows.Next() {
		var ix Interaction
		if err := rows.Scan(&ix.DrugA, &ix.DrugB, &ix.Level, &ix.Note); err != nil {
			return nil, fmt.Errorf("refdata: scan interactions: %w", err)
		}
		out = append(out, ix)
	}
	return out, rows.Err()
}

func queryInventory(ctx context.Context, db *sql.DB) ([]InventoryItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT pharmacy_id, sku, qty, unit_price FROM pharmacy_inventory ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("refdata: query inventory: %w", err)
	}
	defer rows.Close()

	var out []InventoryItem
	for rows.Next() {
		var item InventoryItem
		if err := rows.Scan(&item.PharmacyID, &item.SKU, &item.Qty, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("refdata: scan inventory: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func queryPharmacies(ctx context.Context, db *sql.DB) ([]Pharmacy, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, lat, lon FROM pharmacies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("refdata: query pharmacies: %w", err)
	}
	defer rows.Close()

	var out []Pharmacy
	for rows.Next() {
		var ph Pharmacy
		if err := rows.Scan(&ph.ID, &ph.Name, &ph.Lat, &ph.Lon); err != nil {
			return nil, fmt.Errorf("refdata: scan pharmacies: %w", err)
		}
		out = append(out, ph)
	}
	return out, rows.Err()
}

func queryDoctors(ctx context.Context, db *sql.DB) ([]Doctor, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT doctor_id, name, specialty, tele_slot_iso8601 FROM doctors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("refdata: query doctors: %w", err)
	}
	defer rows.Close()

	var out []Doctor
	for rows.Next() {
		var d Doctor
		var rawSlots string
		if err := rows.Scan(&d.ID, &d.Name, &d.Specialty, &rawSlots); err != nil {
			return nil, fmt.Errorf("refdata: scan doctors: %w", err)
		}
		for _, slot := range strings.Split(rawSlots, ",") {
			if trimmed := strings.TrimSpace(slot); trimmed != "" {
				d.TeleSlots = append(d.TeleSlots, trimmed)
			}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func queryZipcodes(ctx context.Context, db *sql.DB) ([]PostalLocation, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT pincode, lat, lon, city FROM zipcodes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("refdata: query zipcodes: %w", err)
	}
	defer rows.Close()

	var out []PostalLocation
	for rows.Next() {
		var loc PostalLocation
		if err := rows.Scan(&loc.Code, &loc.Lat, &loc.Lon, &loc.City); err != nil {
			return nil, fmt.Errorf("refdata: scan zipcodes: %w", err)
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}
