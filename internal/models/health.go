package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GlucoseReading is one logged blood glucose value in mg/dL
type GlucoseReading struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"size:64;not null;index:idx_glucose_user_taken,priority:1" json:"user_id"`
	Value     float64   `gorm:"not null" json:"value"`
	Timing    string    `gorm:"size:20;not null;default:'random'" json:"timing"`
	TakenAt   time.Time `gorm:"not null;index:idx_glucose_user_taken,priority:2" json:"taken_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (GlucoseReading) TableName() string {
	return "glucose_readings"
}

// MedicationDose records a GLP-1 injection
type MedicationDose struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string    `gorm:"size:64;not null;index:idx_dose_user_taken,priority:1" json:"user_id"`
	Medication string    `gorm:"size:100;not null" json:"medication"`
	DoseMg     float64   `json:"dose_mg"`
	TakenAt    time.Time `gorm:"not null;index:idx_dose_user_taken,priority:2" json:"taken_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func (MedicationDose) TableName() string {
	return "medication_doses"
}

// DiabetesProfile holds the user's diabetes type and optional per-meal carb target
type DiabetesProfile struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            string         `gorm:"size:64;not null;uniqueIndex" json:"user_id"`
	DiabetesType      string         `gorm:"size:20" json:"diabetes_type"`
	CarbTargetPerMeal float64        `json:"carb_target_per_meal"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

func (DiabetesProfile) TableName() string {
	return "diabetes_profiles"
}

// HealthProfile holds bodyweight, diet type and optional macro targets
type HealthProfile struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         string         `gorm:"size:64;not null;uniqueIndex" json:"user_id"`
	BodyweightKg   float64        `json:"bodyweight_kg"`
	DietType       string         `gorm:"size:50" json:"diet_type"`
	TargetCalories float64        `json:"target_calories"`
	TargetProtein  float64        `json:"target_protein"`
	TargetCarbs    float64        `json:"target_carbs"`
	TargetFat      float64        `json:"target_fat"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (HealthProfile) TableName() string {
	return "health_profiles"
}

func (r *GlucoseReading) BeforeCreate(tx *gorm.DB) error  { return assignID(&r.ID) }
func (r *MedicationDose) BeforeCreate(tx *gorm.DB) error  { return assignID(&r.ID) }
func (p *DiabetesProfile) BeforeCreate(tx *gorm.DB) error { return assignID(&p.ID) }
func (p *HealthProfile) BeforeCreate(tx *gorm.DB) error   { return assignID(&p.ID) }

func assignID(id *uuid.UUID) error {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	return nil
}

// All lists every model for AutoMigrate
func All() []interface{} {
	return []interface{}{
		&MealTemplate{},
		&GlucoseReading{},
		&MedicationDose{},
		&DiabetesProfile{},
		&HealthProfile{},
	}
}
