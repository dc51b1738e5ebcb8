package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/hub"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/models"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/types"
)

// GormContextStore reads hub context records. Missing records are returned
// as nil with a nil error.
type GormContextStore struct {
	db *gorm.DB
}

// NewGormContextStore creates a store over db
func NewGormContextStore(db *gorm.DB) *GormContextStore {
	return &GormContextStore{db: db}
}

var _ hub.ContextStore = (*GormContextStore)(nil)

func (s *GormContextStore) LatestGlucose(ctx context.Context, userID string) (*hub.GlucoseReading, error) {
	var row models.GlucoseReading
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("taken_at DESC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load glucose reading: %w", err)
	}
	return &hub.GlucoseReading{
		Value:   row.Value,
		Timing:  hub.ParseGlucoseTiming(row.Timing),
		TakenAt: row.TakenAt,
	}, nil
}

func (s *GormContextStore) LatestMedicationDose(ctx context.Context, userID string) (*hub.MedicationDose, error) {
	var row models.MedicationDose
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("taken_at DESC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load medication dose: %w", err)
	}
	return &hub.MedicationDose{
		Medication: row.Medication,
		DoseMg:     row.DoseMg,
		TakenAt:    row.TakenAt,
	}, nil
}

func (s *GormContextStore) DiabetesProfile(ctx context.Context, userID string) (*hub.DiabetesProfile, error) {
	var row models.DiabetesProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load diabetes profile: %w", err)
	}
	return &hub.DiabetesProfile{
		DiabetesType:      row.DiabetesType,
		CarbTargetPerMeal: row.CarbTargetPerMeal,
	}, nil
}

func (s *GormContextStore) HealthProfile(ctx context.Context, userID string) (*hub.HealthProfile, error) {
	var row models.HealthProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load health profile: %w", err)
	}
	p := &hub.HealthProfile{
		BodyweightKg: row.BodyweightKg,
		DietType:     row.DietType,
	}
	targets := &types.MacroTargets{
		Calories: row.TargetCalories,
		Protein:  row.TargetProtein,
		Carbs:    row.TargetCarbs,
		Fat:      row.TargetFat,
	}
	if !targets.IsZero() {
		p.Targets = targets
	}
	return p, nil
}
