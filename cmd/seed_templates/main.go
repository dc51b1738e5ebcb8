package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/alchemorsel-mealgen/backend/config"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/carbs"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/database"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/models"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/service"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/types"
)

func main() {
	generate := flag.Int("generate", 0, "Number of extra templates per slot to request from the text generator")
	dir := flag.String("migrations", "migrations", "Directory holding the SQL migration files")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db, *dir); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	meals := append([]types.UnifiedMeal(nil), starterCatalog...)
	if *generate > 0 {
		gen, err := service.NewTextGenerator(context.Background(), cfg)
		if err != nil {
			log.Fatalf("Failed to create text generator: %v", err)
		}
		meals = append(meals, generateTemplates(gen, *generate)...)
	}

	inserted, err := seedTemplates(db, meals)
	if err != nil {
		log.Fatalf("Failed to seed templates: %v", err)
	}
	fmt.Printf("Seeded %d of %d templates (existing names skipped)\n", inserted, len(meals))
}

// seedTemplates inserts meals as templates, skipping names already present
func seedTemplates(db *gorm.DB, meals []types.UnifiedMeal) (int64, error) {
	var inserted int64
	for i := range meals {
		meal := meals[i].Clone()
		carbs.EnforceCarbs(meal)
		tmpl, err := models.TemplateFromMeal(meal)
		if err != nil {
			return inserted, fmt.Errorf("failed to convert %s: %w", meal.Name, err)
		}
		res := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).Create(tmpl)
		if res.Error != nil {
			return inserted, fmt.Errorf("failed to insert %s: %w", meal.Name, res.Error)
		}
		inserted += res.RowsAffected
	}
	return inserted, nil
}

// generateTemplates asks the generator for perSlot meals in every slot.
// Failed or unparseable replies are logged and skipped.
func generateTemplates(gen service.TextGenerator, perSlot int) []types.UnifiedMeal {
	var out []types.UnifiedMeal
	for _, slot := range types.AllMealSlots {
		for i := 0; i < perSlot; i++ {
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			reply, err := gen.Generate(ctx, service.TextRequest{
				SystemPrompt: "You are a registered dietitian writing a curated meal catalog. Respond with one JSON object.",
				UserPrompt: fmt.Sprintf("Create catalog %s meal number %d: a balanced, high-protein %s made from common grocery ingredients. "+
					"Return name, description, ingredients (name, quantity, unit), instructions, calories, protein, carbs, fat, fiber, cook_time, difficulty.",
					slot, i+1, slot),
			})
			cancel()
			if err != nil {
				log.Printf("[SeedTemplates] Generation failed for %s #%d: %v", slot, i+1, err)
				continue
			}
			meal, err := service.ParseMeal(reply, slot)
			if err != nil {
				log.Printf("[SeedTemplates] Skipping %s #%d: %v", slot, i+1, err)
				continue
			}
			out = append(out, *meal)
		}
	}
	return out
}
