package repositories

import (
	"cargo-route-service/internal/domain"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Initialize the database schema for the given dialect.
func InitSchema(db *sql.DB, d Dialect) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createStationsQuery := `
	CREATE TABLE IF NOT EXISTS stations (
		id ` + d.serialKey() + `,
		name TEXT NOT NULL UNIQUE,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL
	);
	`

	createVehiclesQuery := `
	CREATE TABLE IF NOT EXISTS vehicles (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		capacity_kg DOUBLE PRECISION NOT NULL,
		rental_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		position INTEGER NOT NULL DEFAULT 0
	);
	`

	createCargoQuery := `
	CREATE TABLE IF NOT EXISTS cargo_requests (
		id ` + d.serialKey() + `,
		station_id BIGINT NOT NULL REFERENCES stations(id),
		cargo_count INTEGER NOT NULL,
		weight_kg DOUBLE PRECISION NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		plan_id TEXT,
		created_at TEXT NOT NULL
	);
	`

	createPlansQuery := `
	CREATE TABLE IF NOT EXISTS plans (
		id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		total_cost DOUBLE PRECISION NOT NULL,
		vehicles_used INTEGER NOT NULL,
		new_vehicles_rented INTEGER NOT NULL,
		payload TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`

	createPlanRoutesQuery := `
	CREATE TABLE IF NOT EXISTS plan_routes (
		plan_id TEXT NOT NULL REFERENCES plans(id),
		seq INTEGER NOT NULL,
		vehicle_id TEXT NOT NULL,
		rented BOOLEAN NOT NULL,
		stops TEXT NOT NULL,
		distance_km DOUBLE PRECISION NOT NULL,
		weight_kg DOUBLE PRECISION NOT NULL,
		utilization DOUBLE PRECISION NOT NULL,
		total_cost DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (plan_id, seq)
	);
	`

	createPlanRejectionsQuery := `
	CREATE TABLE IF NOT EXISTS plan_rejections (
		plan_id TEXT NOT NULL REFERENCES plans(id),
		station_id BIGINT NOT NULL,
		weight_kg DOUBLE PRECISION NOT NULL,
		items INTEGER NOT NULL,
		reason TEXT NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_cargo_requests_status_station
	ON cargo_requests(status, station_id);
	`

	statements := []string{
		createStationsQuery,
		createVehiclesQuery,
		createCargoQuery,
		createPlansQuery,
		createPlanRoutesQuery,
		createPlanRejectionsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type StationSeed struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type VehicleSeed struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	CapacityKg float64 `json:"capacity_kg"`
	RentalCost float64 `json:"rental_cost"`
	Active     *bool   `json:"active"`
}

type CargoSeed struct {
	StationID int64   `json:"station_id"`
	Count     int     `json:"cargo_count"`
	WeightKg  float64 `json:"cargo_weight_kg"`
}

// Seed is the demo data set loaded at startup.
type Seed struct {
	Stations []StationSeed `json:"stations"`
	Vehicles []VehicleSeed `json:"vehicles"`
	Cargo    []CargoSeed   `json:"cargo"`
}

// ReadSeed parses and validates a seed file.
func ReadSeed(jsonPath string) (Seed, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: read %q: %w", jsonPath, err)
	}

	var data Seed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return Seed{}, fmt.Errorf("read seed: parse json: %w", err)
	}

	stations := make(map[int64]struct{}, len(data.Stations))
	for i := range data.Stations {
		s := &data.Stations[i]
		if s.ID <= 0 {
			return Seed{}, fmt.Errorf("read seed: invalid station id at index %d: %d", i+1, s.ID)
		}
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			return Seed{}, fmt.Errorf("read seed: station at index %d: name cannot be empty", i+1)
		}
		stations[s.ID] = struct{}{}
	}

	for i := range data.Vehicles {
		v := &data.Vehicles[i]
		v.ID = strings.TrimSpace(v.ID)
		if v.ID == "" {
			return Seed{}, fmt.Errorf("read seed: vehicle at index %d: id cannot be empty", i+1)
		}
		if v.CapacityKg <= 0 {
			return Seed{}, fmt.Errorf("read seed: vehicle %q: capacity must be positive", v.ID)
		}
	}

	for i, c := range data.Cargo {
		if _, ok := stations[c.StationID]; !ok {
			return Seed{}, fmt.Errorf("read seed: cargo at index %d: unknown station %d", i+1, c.StationID)
		}
		if c.Count <= 0 || c.WeightKg <= 0 {
			return Seed{}, fmt.Errorf("read seed: cargo at index %d: count and weight must be positive", i+1)
		}
	}

	return data, nil
}

func (v VehicleSeed) active() bool { return v.Active == nil || *v.Active }

// Populate the database from a seed file. Stations and vehicles are upserted;
// cargo is only loaded into an empty cargo table so restarts do not duplicate it.
func SeedFromJSON(db *sql.DB, d Dialect, jsonPath string) error {
	data, err := ReadSeed(jsonPath)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer tx.Rollback()

	stationQuery := d.rebind(`
	INSERT INTO stations (id, name, latitude, longitude)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE
	SET name = excluded.name,
		latitude = excluded.latitude,
		longitude = excluded.longitude;
	`)
	for _, s := range data.Stations {
		if _, err := tx.Exec(stationQuery, s.ID, s.Name, s.Latitude, s.Longitude); err != nil {
			return fmt.Errorf("seed: insert station id=%d: %w", s.ID, err)
		}
	}

	if d == Postgres && len(data.Stations) > 0 {
		if _, err := tx.Exec(`SELECT setval(pg_get_serial_sequence('stations', 'id'), (SELECT MAX(id) FROM stations))`); err != nil {
			return fmt.Errorf("seed: advance station sequence: %w", err)
		}
	}

	vehicleQuery := d.rebind(`
	INSERT INTO vehicles (id, name, capacity_kg, rental_cost, active, position)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE
	SET name = excluded.name,
		capacity_kg = excluded.capacity_kg,
		rental_cost = excluded.rental_cost,
		active = excluded.active,
		position = excluded.position;
	`)
	for i, v := range data.Vehicles {
		if _, err := tx.Exec(vehicleQuery, v.ID, v.Name, v.CapacityKg, v.RentalCost, v.active(), i); err != nil {
			return fmt.Errorf("seed: insert vehicle id=%q: %w", v.ID, err)
		}
	}

	var existing int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM cargo_requests`).Scan(&existing); err != nil {
		return fmt.Errorf("seed: count cargo: %w", err)
	}
	if existing == 0 {
		cargoQuery := d.rebind(`
		INSERT INTO cargo_requests (station_id, cargo_count, weight_kg, status, created_at)
		VALUES (?, ?, ?, ?, ?);
		`)
		now := formatTime(time.Now())
		for _, c := range data.Cargo {
			if _, err := tx.Exec(cargoQuery, c.StationID, c.Count, c.WeightKg, string(domain.CargoPending), now); err != nil {
				return fmt.Errorf("seed: insert cargo station_id=%d: %w", c.StationID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) (time.Time, error) { return time.Parse(time.RFC3339Nano, s) }
