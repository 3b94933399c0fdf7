package main

import (
	"cargo-route-service/internal/adapters/events"
	"cargo-route-service/internal/adapters/repositories"
	"cargo-route-service/internal/api"
	"cargo-route-service/internal/config"
	"cargo-route-service/internal/domain"
	"cargo-route-service/internal/platform/db"
	"cargo-route-service/internal/platform/metrics"
	"cargo-route-service/internal/ports"
	"cargo-route-service/internal/services"
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

// main is the application composition root.
// It wires concrete adapters (SQL or memory storage, Redis or in-process events)
// behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load(config.Get("CONFIG_PATH", config.DefaultPath))
	if err != nil {
		log.Fatal(err)
	}
	mode, err := domain.ParseFleetMode(cfg.DefaultMode)
	if err != nil {
		log.Fatal(err)
	}

	repo, closeRepo, err := openRepository(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeRepo()

	broker, closeBroker, err := openBroker(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeBroker()

	metrics.RegisterDefault()

	planner := services.NewPlanner(repo, broker, cfg.DepotLocation(), cfg.CostParams())
	planner.Logger = log.Default()

	router := api.NewRouter(api.Deps{
		Repo:        repo,
		Planner:     planner,
		Broker:      broker,
		DefaultMode: mode,
		PlanLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst),
	})

	// WriteTimeout stays off so /plans/events WebSocket streams are not cut.
	log.Printf("Server listening addr=:%s driver=%s default_mode=%s", cfg.Port, cfg.DBDriver, mode)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// openRepository builds the storage adapter for cfg.DBDriver and seeds it.
func openRepository(cfg config.Config) (ports.Repository, func(), error) {
	switch cfg.DBDriver {
	case "memory":
		seed, err := repositories.ReadSeed(cfg.SeedPath)
		if err != nil {
			return nil, nil, err
		}
		repo := repositories.NewMemoryRepository()
		repo.LoadSeed(seed)
		return repo, func() {}, nil

	case "postgres":
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return initAndSeed(conn, repositories.Postgres, cfg.SeedPath)

	default:
		conn, err := db.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return initAndSeed(conn, repositories.SQLite, cfg.SeedPath)
	}
}

// Initialize schema and seed demo data on startup for local runs.
func initAndSeed(conn *sql.DB, d repositories.Dialect, seedPath string) (ports.Repository, func(), error) {
	if err := repositories.InitSchema(conn, d); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("init and seed: %w", err)
	}
	if err := repositories.SeedFromJSON(conn, d, seedPath); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("init and seed: %w", err)
	}

	return repositories.NewSQLRepository(conn, d), func() { _ = conn.Close() }, nil
}

// openBroker uses Redis pub/sub when REDIS_URL is set so several instances
// share plan events; otherwise events stay in process.
func openBroker(cfg config.Config) (ports.EventBroker, func(), error) {
	if cfg.RedisURL == "" {
		return events.NewMemoryBroker(), func() {}, nil
	}

	broker, err := events.NewRedisBroker(cfg.RedisURL, events.DefaultChannel)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := broker.Ping(ctx); err != nil {
		_ = broker.Close()
		return nil, nil, err
	}

	return broker, func() { _ = broker.Close() }, nil
}
