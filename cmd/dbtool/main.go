package main

import (
	"cargo-route-service/internal/adapters/repositories"
	"cargo-route-service/internal/config"
	"cargo-route-service/internal/platform/db"
	"database/sql"
	"log"

	"github.com/joho/godotenv"
)

// dbtool initializes the schema and loads the seed file into the configured
// SQL database without starting the server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load(config.Get("CONFIG_PATH", config.DefaultPath))
	if err != nil {
		log.Fatal(err)
	}

	var (
		conn    *sql.DB
		dialect repositories.Dialect
	)
	switch cfg.DBDriver {
	case "postgres":
		conn, err = db.Open(cfg.DatabaseURL)
		dialect = repositories.Postgres
	case "sqlite":
		conn, err = db.OpenSQLite(cfg.DBPath)
		dialect = repositories.SQLite
	default:
		log.Fatalf("dbtool needs a SQL driver, got DB_DRIVER=%q", cfg.DBDriver)
	}
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	initAndSeed(conn, dialect, cfg.SeedPath)
}

func initAndSeed(conn *sql.DB, d repositories.Dialect, seedPath string) {
	log.Printf("Initializing database schema dialect=%s...", d)
	if err := repositories.InitSchema(conn, d); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Printf("Seeding database from %s...", seedPath)
	if err := repositories.SeedFromJSON(conn, d, seedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")
}
