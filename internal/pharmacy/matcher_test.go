package pharmacy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/triage-ai-platform/internal/refdata"
)

func matcherStore(t *testing.T) *refdata.Store {
	t.Helper()

	store, err := refdata.New(refdata.Tables{
		Medicines: []refdata.Medicine{
			{SKU: "SKU001", DrugName: "Paracetamol", Indication: "fever & pain", MinAge: 6, ContraKeywords: "None"},
			{SKU: "SKU002", DrugName: "Ibuprofen", Indication: "pain & inflammation", MinAge: 12, ContraKeywords: "ibuprofen"},
			{SKU: "SKU003", DrugName: "Cetirizine", Indication: "allergy", MinAge: 6, ContraKeywords: "cetirizine"},
		},
		Inventory: []refdata.InventoryItem{
			{PharmacyID: "ph001", SKU: "SKU001", Qty: 120, UnitPrice: 10.00},
			{PharmacyID: "ph001", SKU: "SKU002", Qty: 80, UnitPrice: 25.50},
			{PharmacyID: "ph002", SKU: "SKU001", Qty: 40, UnitPrice: 9.50},
			{PharmacyID: "ph003", SKU: "SKU002", Qty: 0, UnitPrice: 24.00},
		},
		Pharmacies: []refdata.Pharmacy{
			{ID: "ph001", Name: "MedQuick Andheri", Lat: 19.119, Lon: 72.846},
			{ID: "ph002", Name: "Wellness Forever Bandra", Lat: 19.055, Lon: 72.840},
			{ID: "ph003", Name: "Apollo Pharmacy Powai", Lat: 19.117, Lon: 72.906},
		},
	})
	require.NoError(t, err)
	return store
}

func TestFindBestEmptySKUs(t *testing.T) {
	m := NewMatcher(matcherStore(t), nil)

	res := m.FindBest(context.Background(), nil, 19.12, 72.84)

	assert.Nil(t, res.Match)
	assert.Equal(t, MsgNoMedicinesRequested, res.Message)
}

func TestFindBestNoStockAnywhere(t *testing.T) {
	m := NewMatcher(matcherStore(t), nil)

	// SKU003 is catalogued but never stocked.
	res := m.FindBest(context.Background(), []string{"SKU003"}, 19.12, 72.84)

	assert.Nil(t, res.Match)
	assert.Equal(t, MsgNoStockAnywhere, res.Message)
}

func TestFindBestZeroQtyIsNotStock(t *testing.T) {
	m := NewMatcher(matcherStore(t), nil)

	// ph003 lists SKU002 at qty 0; ph001 carries it for real.
	res := m.FindBest(context.Background(), []string{"SKU002"}, 19.12, 72.84)

	require.NotNil(t, res.Match)
	assert.Equal(t, "ph001", res.Match.PharmacyID)
}

func TestFindBestRanking(t *testing.T) {
	m := NewMatcher(matcherStore(t), nil)

	// ph001 is 0.007 away with two items, ph002 is 0.065 away with one.
	res := m.FindBest(context.Background(), []string{"SKU001", "SKU002"}, 19.12, 72.84)

	require.NotNil(t, res.Match)
	assert.Equal(t, "ph001", res.Match.PharmacyID)
	assert.Equal(t, "MedQuick Andheri", res.Match.PharmacyName)
	assert.Len(t, res.Match.Items, 2)
	assert.Equal(t, 20, res.Match.ETAMinutes)
	assert.Equal(t, 15.0, res.Match.DeliveryFee)
	assert.Equal(t, 0.007, res.Match.Distance)
}

func TestFindBestIsDeterministic(t *testing.T) {
	m := NewMatcher(matcherStore(t), nil)
	ctx := context.Background()

	first := m.FindBest(ctx, []string{"SKU001", "SKU002"}, 19.12, 72.84)
	for i := 0; i < 10; i++ {
		again := m.FindBest(ctx, []string{"SKU001", "SKU002"}, 19.12, 72.84)
		assert.Equal(t, first, again)
	}
}

func TestFindBestMoreItemsWinsAtEqualDistance(t *testing.T) {
	store, err := refdata.New(refdata.Tables{
		Medicines: []refdata.Medicine{
			{SKU: "SKU001", DrugName: "Paracetamol", Indication: "fever", MinAge: 6, ContraKeywords: "None"},
			{SKU: "SKU002", DrugName: "Ibuprofen", Indication: "pain", MinAge: 12, ContraKeywords: "ibuprofen"},
		},
		Inventory: []refdata.InventoryItem{
			{PharmacyID: "phA", SKU: "SKU001", Qty: 10, UnitPrice: 10},
			{PharmacyID: "phB", SKU: "SKU001", Qty: 10, UnitPrice: 10},
			{PharmacyID: "phB", SKU: "SKU002", Qty: 10, UnitPrice: 20},
		},
		Pharmacies: []refdata.Pharmacy{
			{ID: "phA", Name: "Alpha", Lat: 19.13, Lon: 72.84},
			{ID: "phB", Name: "Beta", Lat: 19.11, Lon: 72.84},
		},
	})
	require.NoError(t, err)

	m := NewMatcher(store, nil)
	res := m.FindBest(context.Background(), []string{"SKU001", "SKU002"}, 19.12, 72.84)

	require.NotNil(t, res.Match)
	assert.Equal(t, "phB", res.Match.PharmacyID)
}

func TestEstimateETAFeeBuckets(t *testing.T) {
	tests := []struct {
		distance float64
		wantETA  int
		wantFee  float64
	}{
		{0.0, 20, 15},
		{0.03, 20, 15},
		{0.031, 40, 25},
		{0.07, 40, 25},
		{0.071, 60, 40},
		{1.5, 60, 40},
	}

	for _, tt := range tests {
		eta, fee := estimateETAFee(tt.distance)
		assert.Equal(t, tt.wantETA, eta, "distance %f", tt.distance)
		assert.Equal(t, tt.wantFee, fee, "distance %f", tt.distance)
	}
}
