package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/triage-ai-platform/internal/compliance"
	"github.com/wolfman30/triage-ai-platform/internal/escalation"
	"github.com/wolfman30/triage-ai-platform/internal/imaging"
	"github.com/wolfman30/triage-ai-platform/internal/intake"
	"github.com/wolfman30/triage-ai-platform/internal/pharmacy"
	"github.com/wolfman30/triage-ai-platform/internal/refdata"
	"github.com/wolfman30/triage-ai-platform/internal/therapy"
)

func pipelineStore(t *testing.T) *refdata.Store {
	t.Helper()

	store, err := refdata.New(refdata.Tables{
		Medicines: []refdata.Medicine{
			{SKU: "SKU001", DrugName: "Paracetamol", Indication: "fever & pain", MinAge: 6, ContraKeywords: "None"},
			{SKU: "SKU002", DrugName: "Ibuprofen", Indication: "pain & inflammation", MinAge: 12, ContraKeywords: "ibuprofen nsaid"},
		},
		Interactions: []refdata.Interaction{
			{DrugA: "Paracetamol", DrugB: "Ibuprofen", Level: refdata.InteractionLow, Note: "Generally safe together"},
		},
		Inventory: []refdata.InventoryItem{
			{PharmacyID: "ph001", SKU: "SKU001", Qty: 120, UnitPrice: 10.00},
			{PharmacyID: "ph001", SKU: "SKU002", Qty: 80, UnitPrice: 25.50},
		},
		Pharmacies: []refdata.Pharmacy{
			{ID: "ph001", Name: "MedQuick Andheri", Lat: 19.119, Lon: 72.846},
		},
		Doctors: []refdata.Doctor{
			{ID: "doc001", Name: "Dr. Asha Mehta", Specialty: "Pulmonology", TeleSlots: []string{"2025-12-06T09:00:00"}},
		},
		Postal: []refdata.PostalLocation{
			{Code: "400053", Lat: 19.12, Lon: 72.84, City: "Mumbai"},
		},
	})
	require.NoError(t, err)
	return store
}

func newTestCoordinator(t *testing.T) *Coordinator {
	t.Helper()

	store := pipelineStore(t)
	return NewCoordinator(Config{
		Store:      store,
		Normalizer: intake.NewNormalizer(intake.NewDiskStore(t.TempDir()), intake.NewMockExtractor(), nil),
		Estimator:  imaging.NewFilenameEstimator(),
		Therapy:    therapy.NewEngine(store, nil),
		Escalation: escalation.NewEvaluator(store, 0, nil),
		Pharmacy:   pharmacy.NewMatcher(store, nil),
		Disclaimer: compliance.NewDisclaimerService(compliance.DisclaimerMedium, ""),
		DefaultLat: 19.12,
		DefaultLon: 72.84,
	})
}

func stages(timeline []TimelineEntry) []string {
	out := make([]string, 0, len(timeline))
	for _, entry := range timeline {
		out = append(out, entry.Stage)
	}
	return out
}

func TestRunWithoutImage(t *testing.T) {
	coord := newTestCoordinator(t)

	resp, err := coord.Run(context.Background(), Request{
		Name:  "Priya Sharma",
		Phone: "9876543210",
		Age:   30,
		Notes: "fever and cough",
	})
	require.NoError(t, err)

	assert.Equal(t, ConditionSymptomBased, resp.Diagnosis.Condition)
	assert.Equal(t, imaging.SeverityMild, resp.Diagnosis.Severity)
	assert.Equal(t, "symptoms", resp.Diagnosis.ConfidenceSource)

	// No distribution means confidence 0.0, which always escalates.
	assert.True(t, resp.Escalation.Needed)
	assert.Zero(t, resp.Escalation.MaxConfidence)
	assert.Len(t, resp.Escalation.Suggestions, 1)

	require.NotEmpty(t, resp.TherapyPlan.OTCOptions)
	require.NotNil(t, resp.Pharmacy.Match)
	require.NotNil(t, resp.OrderPreview)
	assert.Equal(t, "ph001", resp.OrderPreview.PharmacyID)

	assert.Equal(t, []string{
		StageIngestionCompleted,
		StageImagingSkipped,
		StageTherapyCompleted,
		StageEscalationCompleted,
		StagePharmacyMatchCompleted,
		StagePreviewBuilt,
	}, stages(resp.Timeline))

	assert.NotEmpty(t, resp.Disclaimer)
}

func TestRunWithPneumoniaImage(t *testing.T) {
	coord := newTestCoordinator(t)

	resp, err := coord.Run(context.Background(), Request{
		Name:  "Priya Sharma",
		Phone: "9876543210",
		Age:   30,
		Notes: "fever and cough",
		Image: &intake.Upload{Filename: "chest_pneumonia.png", Content: []byte("img")},
	})
	require.NoError(t, err)

	assert.Equal(t, imaging.ConditionPneumonia, resp.Diagnosis.Condition)
	assert.Equal(t, imaging.SeverityModerate, resp.Diagnosis.Severity)
	assert.Equal(t, "xray", resp.Diagnosis.ConfidenceSource)

	// Moderate severity with 0.85 confidence and no severe flags: no escalation.
	assert.False(t, resp.Escalation.Needed)
	assert.InDelta(t, 0.85, resp.Escalation.MaxConfidence, 0.001)

	assert.Contains(t, stages(resp.Timeline), StageImagingCompleted)
	assert.NotContains(t, stages(resp.Timeline), StageImagingSkipped)
}

func TestRunSevereImageEscalates(t *testing.T) {
	coord := newTestCoordinator(t)

	resp, err := coord.Run(context.Background(), Request{
		Name:  "Priya Sharma",
		Phone: "9876543210",
		Age:   30,
		Notes: "fever and chest pain",
		Image: &intake.Upload{Filename: "pneumonia_severe.png", Content: []byte("img")},
	})
	require.NoError(t, err)

	assert.Equal(t, imaging.SeveritySevere, resp.Diagnosis.Severity)
	assert.True(t, resp.Escalation.Needed)
	require.NotEmpty(t, resp.TherapyPlan.RedFlags)
	assert.Contains(t, resp.TherapyPlan.RedFlags[0], "High severity")
}

func TestRunValidationErrorAborts(t *testing.T) {
	coord := newTestCoordinator(t)

	resp, err := coord.Run(context.Background(), Request{
		Name:  "Priya Sharma",
		Phone: "9876543210",
		Age:   30,
	})

	assert.Nil(t, resp)
	require.Error(t, err)
	assert.ErrorIs(t, err, intake.ErrNoClinicalInput)
	assert.True(t, IsValidationError(err))
}

func TestRunPostalResolution(t *testing.T) {
	coord := newTestCoordinator(t)

	resp, err := coord.Run(context.Background(), Request{
		Name:       "Priya Sharma",
		Phone:      "9876543210",
		Age:        30,
		Notes:      "fever",
		PostalCode: "400053",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Pharmacy.Match)
	assert.Equal(t, "ph001", resp.Pharmacy.Match.PharmacyID)
}

func TestRunUnknownPostalCode(t *testing.T) {
	coord := newTestCoordinator(t)

	_, err := coord.Run(context.Background(), Request{
		Name:       "Priya Sharma",
		Phone:      "9876543210",
		Age:        30,
		Notes:      "fever",
		PostalCode: "999999",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownPostalCode)
	assert.True(t, IsValidationError(err))
}

func TestRunNoSymptomMatchStillResponds(t *testing.T) {
	coord := newTestCoordinator(t)

	resp, err := coord.Run(context.Background(), Request{
		Name:  "Priya Sharma",
		Phone: "9876543210",
		Age:   30,
		Notes: "blurry vision",
	})
	require.NoError(t, err)

	assert.Empty(t, resp.TherapyPlan.OTCOptions)
	assert.Equal(t, []string{"No OTC matched for symptoms"}, resp.TherapyPlan.RedFlags)
	assert.Nil(t, resp.Pharmacy.Match)
	assert.Equal(t, pharmacy.MsgNoMedicinesRequested, resp.Pharmacy.Message)
	assert.Nil(t, resp.OrderPreview)
}
