package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/signature"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/types"
)

// MealTemplate is a curated catalog entry matched by ingredient similarity
type MealTemplate struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	DeletedAt      gorm.DeletedAt   `gorm:"index" json:"-"`
	Name           string           `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Description    string           `gorm:"type:text" json:"description"`
	MealSlot       string           `gorm:"size:20;not null;index" json:"meal_slot"`
	Ingredients    datatypes.JSON   `gorm:"type:jsonb;not null" json:"ingredients"`
	IngredientKeys JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"ingredient_keys"`
	Instructions   JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"instructions"`
	Calories       float64          `gorm:"type:float" json:"calories"`
	Protein        float64          `gorm:"type:float" json:"protein"`
	Carbs          float64          `gorm:"type:float" json:"carbs"`
	StarchyCarbs   float64          `gorm:"type:float" json:"starchy_carbs"`
	FibrousCarbs   float64          `gorm:"type:float" json:"fibrous_carbs"`
	Fat            float64          `gorm:"type:float" json:"fat"`
	Fiber          float64          `gorm:"type:float" json:"fiber"`
	CookTime       string           `gorm:"size:50" json:"cook_time"`
	Difficulty     string           `gorm:"size:20" json:"difficulty"`
	ImageURL       string           `gorm:"size:512" json:"image_url"`
	Badges         JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"badges"`
	Embedding      pgvector.Vector  `gorm:"type:vector(32)" json:"-"`
}

func (MealTemplate) TableName() string {
	return "meal_templates"
}

// BeforeSave assigns an id and derives the normalized ingredient keys and
// embedding from the ingredient list
func (t *MealTemplate) BeforeSave(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	ings, err := t.IngredientList()
	if err != nil {
		return err
	}
	names := make([]string, 0, len(ings))
	for _, ing := range ings {
		names = append(names, ing.Name)
	}
	t.IngredientKeys = signature.NormalizeIngredients(names)
	t.Embedding = pgvector.NewVector(signature.Embedding(names))
	return nil
}

// IngredientList decodes the stored ingredient objects
func (t *MealTemplate) IngredientList() ([]types.Ingredient, error) {
	if len(t.Ingredients) == 0 {
		return nil, nil
	}
	var ings []types.Ingredient
	if err := json.Unmarshal(t.Ingredients, &ings); err != nil {
		return nil, fmt.Errorf("failed to decode ingredients for template %q: %w", t.Name, err)
	}
	return ings, nil
}

// SetIngredients encodes ingredient objects into the JSON column
func (t *MealTemplate) SetIngredients(ings []types.Ingredient) error {
	b, err := json.Marshal(ings)
	if err != nil {
		return fmt.Errorf("failed to encode ingredients: %w", err)
	}
	t.Ingredients = datatypes.JSON(b)
	return nil
}

// ToMeal converts the row into a catalog-sourced meal
func (t *MealTemplate) ToMeal() (*types.UnifiedMeal, error) {
	ings, err := t.IngredientList()
	if err != nil {
		return nil, err
	}
	return &types.UnifiedMeal{
		ID:           t.ID.String(),
		Name:         t.Name,
		Description:  t.Description,
		MealSlot:     types.MealSlot(t.MealSlot),
		Ingredients:  ings,
		Instructions: append([]string(nil), t.Instructions...),
		Calories:     t.Calories,
		Protein:      t.Protein,
		Carbs:        t.Carbs,
		StarchyCarbs: t.StarchyCarbs,
		FibrousCarbs: t.FibrousCarbs,
		Fat:          t.Fat,
		Fiber:        t.Fiber,
		CookTime:     t.CookTime,
		Difficulty:   t.Difficulty,
		ImageURL:     t.ImageURL,
		Badges:       append([]string(nil), t.Badges...),
		Source:       types.ProvenanceCatalog,
		CreatedAt:    t.CreatedAt,
	}, nil
}

// TemplateFromMeal builds a row from a meal, used by the seeder
func TemplateFromMeal(m *types.UnifiedMeal) (*MealTemplate, error) {
	t := &MealTemplate{
		Name:         m.Name,
		Description:  m.Description,
		MealSlot:     string(m.MealSlot),
		Instructions: m.Instructions,
		Calories:     m.Calories,
		Protein:      m.Protein,
		Carbs:        m.Carbs,
		StarchyCarbs: m.StarchyCarbs,
		FibrousCarbs: m.FibrousCarbs,
		Fat:          m.Fat,
		Fiber:        m.Fiber,
		CookTime:     m.CookTime,
		Difficulty:   m.Difficulty,
		ImageURL:     m.ImageURL,
		Badges:       m.Badges,
	}
	if err := t.SetIngredients(m.Ingredients); err != nil {
		return nil, err
	}
	return t, nil
}
