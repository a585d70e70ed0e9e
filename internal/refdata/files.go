package refdata

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// File names expected under the data directory.
const (
	medicinesFile    = "medicines.csv"
	interactionsFile = "interactions.csv"
	inventoryFile    = "inventory.csv"
	pharmaciesFile   = "pharmacies.json"
	doctorsFile      = "doctors.csv"
	zipcodesFile     = "zipcodes.csv"
)

// LoadFromDir builds a Store from the CSV/JSON reference files in dir.
// Any missing file or malformed row is a startup-fatal error.
func LoadFromDir(dir string) (*Store, error) {
	medicines, err := loadMedicines(filepath.Join(dir, medicinesFile))
	if err != nil {
		return nil, err
	}
	interactions, err := loadInteractions(filepath.Join(dir, interactionsFile))
	if err != nil {
		return nil, err
	}
	inventory, err := loadInventory(filepath.Join(dir, inventoryFile))
	if err != nil {
		return nil, err
	}
	pharmacies, err := loadPharmacies(filepath.Join(dir, pharmaciesFile))
	if err != nil {
		return nil, err
	}
	doctors, err := loadDoctors(filepath.Join(dir, doctorsFile))
	if err != nil {
		return nil, err
	}
	postal, err := loadZipcodes(filepath.Join(dir, zipcodesFile))
	if err != nil {
		return nil, err
	}
	return newStore(medicines, interactions, inventory, pharmacies, doctors, postal)
}

func readCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("refdata: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("refdata: read header of %s: %w", path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []map[string]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("refdata: read %s: %w", path, err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func csvInt(path string, row map[string]string, col string) (int, error) {
	v, err := strconv.Atoi(row[col])
	if err != nil {
		return 0, fmt.Errorf("refdata: %s: column %q: %w", path, col, err)
	}
	return v, nil
}

func csvFloat(path string, row map[string]string, col string) (float64, error) {
	v, err := strconv.ParseFloat(row[col], 64)
	if err != nil {
		return 0, fmt.Errorf("refdata: %s: column %q: %w", path, col, err)
	}
	return v, nil
}

func loadMedicines(path string) ([]Medicine, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	medicines := make([]Medicine, 0, len(rows))
	for _, row := range rows {
		minAge, err := csvInt(path, row, "age_min")
		if err != nil {
			return nil, err
		}
		medicines = append(medicines, Medicine{
			SKU:            row["sku"],
			DrugName:       row["drug_name"],
			Indication:     row["indication"],
			MinAge:         minAge,
			ContraKeywords: row["contra_allergy_keywords"],
		})
	}
	return medicines, nil
}

func loadInteractions(path string) ([]Interaction, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	interactions := make([]Interaction, 0, len(rows))
	for _, row := range rows {
		interactions = append(interactions, Interaction{
			DrugA: row["drug_a"],
			DrugB: row["drug_b"],
			Level: row["level"],
			Note:  row["note"],
		})
	}
	return interactions, nil
}

func loadInventory(path string) ([]InventoryItem, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	items := make([]InventoryItem, 0, len(rows))
	for _, row := range rows {
		qty, err := csvInt(path, row, "qty")
		if err != nil {
			return nil, err
		}
		price, err := csvFloat(path, row, "unit_price")
		if err != nil {
			return nil, err
		}
		items = append(items, InventoryItem{
			PharmacyID: row["pharmacy_id"],
			SKU:        row["sku"],
			Qty:        qty,
			UnitPrice:  price,
		})
	}
	return items, nil
}

func loadPharmacies(path string) ([]Pharmacy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("refdata: open %s: %w", path, err)
	}
	var pharmacies []Pharmacy
	if err := json.Unmarshal(data, &pharmacies); err != nil {
		return nil, fmt.Errorf("refdata: parse %s: %w", path, err)
	}
	return pharmacies, nil
}

func loadDoctors(path string) ([]Doctor, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	doctors := make([]Doctor, 0, len(rows))
	for _, row := range rows {
		var slots []string
		for _, slot := range strings.Split(row["tele_slot_iso8601"], ",") {
			if trimmed := strings.TrimSpace(slot); trimmed != "" {
				slots = append(slots, trimmed)
			}
		}
		doctors = append(doctors, Doctor{
			ID:        row["doctor_id"],
			Name:      row["name"],
			Specialty: row["specialty"],
			TeleSlots: slots,
		})
	}
	return doctors, nil
}

func loadZipcodes(path string) ([]PostalLocation, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	locations := make([]PostalLocation, 0, len(rows))
	for _, row := range rows {
		lat, err := csvFloat(path, row, "lat")
		if err != nil {
			return nil, err
		}
		lon, err := csvFloat(path, row, "lon")
		if err != nil {
			return nil, err
		}
		locations = append(locations, PostalLocation{
			Code: row["pincode"],
			Lat:  lat,
			Lon:  lon,
			City: row["city"],
		})
	}
	return locations, nil
}
