package refdata

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromDB(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT sku, drug_name, indication, age_min, contra_allergy_keywords FROM medicines").
		WillReturnRows(sqlmock.NewRows([]string{"sku", "drug_name", "indication", "age_min", "contra_allergy_keywords"}).
			AddRow("SKU001", "Paracetamol", "fever & pain", 6, "None").
			AddRow("SKU002", "Ibuprofen", "pain & inflammation", 12, "ibuprofen nsaid"))
	mock.ExpectQuery("SELECT drug_a, drug_b, level, note FROM drug_interactions").
		WillReturnRows(sqlmock.NewRows([]string{"drug_a", "drug_b", "level", "note"}).
			AddRow("Paracetamol", "Ibuprofen", "Low", "Generally safe together"))
	mock.ExpectQuery("SELECT pharmacy_id, sku, qty, unit_price FROM pharmacy_inventory").
		WillReturnRows(sqlmock.NewRows([]string{"pharmacy_id", "sku", "qty", "unit_price"}).
			AddRow("ph001", "SKU001", 120, 10.0))
	mock.ExpectQuery("SELECT id, name, lat, lon FROM pharmacies").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "lat", "lon"}).
			AddRow("ph001", "MedQuick Andheri", 19.119, 72.846))
	mock.ExpectQuery("SELECT doctor_id, name, specialty, tele_slot_iso8601 FROM doctors").
		WillReturnRows(sqlmock.NewRows([]string{"doctor_id", "name", "specialty", "tele_slot_iso8601"}).
			AddRow("doc001", "Dr. Asha Mehta", "Pulmonology", "2025-12-06T09:00:00,2025-12-06T14:30:00"))
	mock.ExpectQuery("SELECT pincode, lat, lon, city FROM zipcodes").
		WillReturnRows(sqlmock.NewRows([]string{"pincode", "lat", "lon", "city"}).
			AddRow("400053", 19.12, 72.84, "Mumbai"))

	store, err := LoadFromDB(context.Background(), db)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Len(t, store.Medicines(), 2)
	assert.Equal(t, "Ibuprofen", store.DrugName("SKU002"))
	require.Len(t, store.Doctors(), 1)
	assert.Len(t, store.Doctors()[0].TeleSlots, 2)
}

func TestLoadFromDBQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT sku, drug_name").WillReturnError(assert.AnError)

	_, err = LoadFromDB(context.Background(), db)
	assert.Error(t, err)
}
