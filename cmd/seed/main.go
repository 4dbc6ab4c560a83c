package main

import (
	"database/sql"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/guruunoob/goobex-website/config"
)

// Seeds a few demo account records for local development.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	demo := []struct {
		email, username, displayName, description, locale string
	}{
		{"alice@example.com", "Alice", "Alice", "Early adopter.", "en"},
		{"bob@example.com", "Bob", "Bob", "", "en"},
		{"carla@example.com", "Carla", "Carla", "Says hi.", "pt-BR"},
	}

	for _, d := range demo {
		res, err := db.Exec(`
			INSERT INTO accounts (email, username, display_name, description, locale)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (email) DO NOTHING
		`, d.email, d.username, d.displayName, d.description, d.locale)
		if err != nil {
			log.Fatalf("seed %s: %v", d.email, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			log.Printf("seeded account %s", d.email)
		} else {
			log.Printf("account %s already present", d.email)
		}
	}
}
