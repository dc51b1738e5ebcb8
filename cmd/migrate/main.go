package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/database"
)

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	dir := flag.String("dir", "migrations", "Directory holding the SQL migration files")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Could not read .env: %v", err)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	db, err := database.OpenSQL(dsn)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if *rollback {
		name, err := database.RollbackLast(db, *dir)
		if err != nil {
			log.Fatalf("rollback failed: %v", err)
		}
		fmt.Printf("Successfully rolled back migration: %s\n", name)
		return
	}

	applied, err := database.ApplySQLMigrations(db, *dir)
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	for _, file := range applied {
		fmt.Printf("Successfully applied migration: %s\n", file)
	}
	fmt.Println("All migrations applied successfully.")
}
