package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/hub"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/models"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/testhelpers"
)

func TestGormContextStore(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	store := NewGormContextStore(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	// no records is not an error
	g, err := store.LatestGlucose(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, g)
	p, err := store.DiabetesProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, p)

	require.NoError(t, db.Create(&models.GlucoseReading{UserID: "u1", Value: 140, Timing: "post-meal", TakenAt: now.Add(-3 * time.Hour)}).Error)
	require.NoError(t, db.Create(&models.GlucoseReading{UserID: "u1", Value: 210, Timing: "FASTED", TakenAt: now.Add(-30 * time.Minute)}).Error)
	require.NoError(t, db.Create(&models.GlucoseReading{UserID: "u2", Value: 90, Timing: "fasted", TakenAt: now}).Error)
	require.NoError(t, db.Create(&models.MedicationDose{UserID: "u1", Medication: "semaglutide", DoseMg: 0.5, TakenAt: now.Add(-48 * time.Hour)}).Error)
	require.NoError(t, db.Create(&models.DiabetesProfile{UserID: "u1", DiabetesType: "type2", CarbTargetPerMeal: 40}).Error)
	require.NoError(t, db.Create(&models.HealthProfile{UserID: "u1", BodyweightKg: 90, TargetProtein: 45}).Error)

	g, err = store.LatestGlucose(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, 210.0, g.Value)
	assert.Equal(t, hub.TimingFasted, g.Timing)

	dose, err := store.LatestMedicationDose(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, dose)
	assert.Equal(t, "semaglutide", dose.Medication)

	p, err = store.DiabetesProfile(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 40.0, p.CarbTargetPerMeal)

	h, err := store.HealthProfile(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, 90.0, h.BodyweightKg)
	require.NotNil(t, h.Targets)
	assert.Equal(t, 45.0, h.Targets.Protein)

	detected, ok, err := hub.Detect(ctx, store, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, hub.TypeDiabetic, detected)
}
