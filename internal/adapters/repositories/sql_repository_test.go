package repositories

import (
	"cargo-route-service/internal/domain"
	"cargo-route-service/internal/platform/db"
	"cargo-route-service/internal/ports"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeed = `{
  "stations": [
    {"id": 1, "name": "Izmit", "latitude": 40.7656, "longitude": 29.9406},
    {"id": 2, "name": "Derince", "latitude": 40.7562, "longitude": 29.8309},
    {"id": 3, "name": "Kartepe", "latitude": 40.7536, "longitude": 30.0217}
  ],
  "vehicles": [
    {"id": "v-small", "name": "Small van", "capacity_kg": 500},
    {"id": "v-large", "name": "Large truck", "capacity_kg": 1000},
    {"id": "v-retired", "name": "Retired", "capacity_kg": 750, "active": false}
  ],
  "cargo": [
    {"station_id": 1, "cargo_count": 3, "cargo_weight_kg": 120},
    {"station_id": 1, "cargo_count": 1, "cargo_weight_kg": 30},
    {"station_id": 3, "cargo_count": 2, "cargo_weight_kg": 80}
  ]
}`

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, InitSchema(conn, SQLite))
	require.NoError(t, SeedFromJSON(conn, SQLite, writeSeed(t, testSeed)))
	return conn
}

func TestRebind(t *testing.T) {
	q := `SELECT a FROM t WHERE x = ? AND y = ?`
	assert.Equal(t, q, SQLite.rebind(q))
	assert.Equal(t, `SELECT a FROM t WHERE x = $1 AND y = $2`, Postgres.rebind(q))
}

func TestSeedIsIdempotent(t *testing.T) {
	conn := newTestDB(t)
	require.NoError(t, InitSchema(conn, SQLite))
	require.NoError(t, SeedFromJSON(conn, SQLite, writeSeed(t, testSeed)))

	repo := NewSQLRepository(conn, SQLite)
	cargo, err := repo.ListPendingCargo(context.Background())
	require.NoError(t, err)
	assert.Len(t, cargo, 3)
}

func TestReadSeedRejectsUnknownStation(t *testing.T) {
	_, err := ReadSeed(writeSeed(t, `{"stations": [], "cargo": [{"station_id": 9, "cargo_count": 1, "cargo_weight_kg": 1}]}`))
	assert.ErrorContains(t, err, "unknown station 9")
}

func TestSQLRepositoryStations(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLRepository(newTestDB(t), SQLite)

	stations, err := repo.ListStations(ctx)
	require.NoError(t, err)
	require.Len(t, stations, 3)
	assert.Equal(t, domain.Station{ID: 1, Name: "Izmit", Location: domain.Coordinates{Lat: 40.7656, Lon: 29.9406}}, stations[0])

	created, err := repo.CreateStation(ctx, domain.Station{Name: "Golcuk", Location: domain.Coordinates{Lat: 40.7167, Lon: 29.8167}})
	require.NoError(t, err)
	assert.Equal(t, domain.StationID(4), created.ID)

	_, err = repo.CreateStation(ctx, domain.Station{Name: "Izmit"})
	assert.ErrorIs(t, err, ports.ErrConflict)
}

func TestSQLRepositoryVehiclesInRosterOrder(t *testing.T) {
	repo := NewSQLRepository(newTestDB(t), SQLite)

	vehicles, err := repo.ListActiveVehicles(context.Background())
	require.NoError(t, err)

	require.Len(t, vehicles, 2)
	assert.Equal(t, domain.VehicleID("v-small"), vehicles[0].ID)
	assert.Equal(t, domain.VehicleID("v-large"), vehicles[1].ID)
	assert.Equal(t, 1000.0, vehicles[1].CapacityKg)
	assert.True(t, vehicles[1].Active)
}

func TestSQLRepositoryCargo(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLRepository(newTestDB(t), SQLite)

	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	c, err := repo.CreateCargo(ctx, domain.CargoRequest{StationID: 2, Count: 4, WeightKg: 60, CreatedAt: at})
	require.NoError(t, err)
	assert.Positive(t, c.ID)
	assert.Equal(t, domain.CargoPending, c.Status)

	_, err = repo.CreateCargo(ctx, domain.CargoRequest{StationID: 42, Count: 1, WeightKg: 1})
	assert.ErrorIs(t, err, ports.ErrNotFound)

	pending, err := repo.ListPendingCargo(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 4)
	last := pending[3]
	assert.Equal(t, domain.StationID(2), last.StationID)
	assert.True(t, at.Equal(last.CreatedAt))
}

func samplePlan() *domain.Plan {
	return &domain.Plan{
		ID:   "plan-1",
		Mode: domain.FixedFleet,
		Routes: []domain.Route{{
			VehicleID:   "v-small",
			Stops:       []domain.Waypoint{domain.Depot(), domain.StationStop(1), domain.Depot()},
			Loads:       []domain.StationLoad{{StationID: 1, Items: 4, WeightKg: 150, Complete: true}},
			DistanceKm:  12.5,
			WeightKg:    150,
			Items:       4,
			CapacityKg:  500,
			Utilization: 30,
			Cost:        domain.CostBreakdown{Fuel: 12.5, Distance: 12.5, Total: 25},
		}},
		TotalCost:    25,
		VehiclesUsed: 1,
		Accepted:     []domain.AcceptedDemand{{StationID: 1, WeightKg: 150, Items: 4}},
		Rejected:     []domain.RejectionRecord{{StationID: 3, WeightKg: 80, Items: 2, Reason: domain.ReasonFleetExhausted}},
		CreatedAt:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		CargoIDs:     []int64{1, 2},
	}
}

func TestSQLRepositorySavePlanAssignsCargo(t *testing.T) {
	ctx := context.Background()
	conn := newTestDB(t)
	repo := NewSQLRepository(conn, SQLite)

	plan := samplePlan()
	require.NoError(t, repo.SavePlan(ctx, plan))

	pending, err := repo.ListPendingCargo(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, domain.StationID(3), pending[0].StationID)

	var assigned int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM cargo_requests WHERE status = 'assigned' AND plan_id = 'plan-1'`).Scan(&assigned))
	assert.Equal(t, 2, assigned)

	var stops string
	require.NoError(t, conn.QueryRow(`SELECT stops FROM plan_routes WHERE plan_id = 'plan-1' AND seq = 1`).Scan(&stops))
	assert.Equal(t, "depot,1,depot", stops)

	got, err := repo.GetPlan(ctx, "plan-1")
	require.NoError(t, err)
	assert.Equal(t, plan.Routes, got.Routes)
	assert.Equal(t, plan.Rejected, got.Rejected)
	assert.True(t, plan.CreatedAt.Equal(got.CreatedAt))

	_, err = repo.GetPlan(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestSQLRepositorySavePlanRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLRepository(newTestDB(t), SQLite)

	require.NoError(t, repo.SavePlan(ctx, samplePlan()))

	// Same id again violates the primary key; the second cargo update must not stick.
	dup := samplePlan()
	dup.Accepted = append(dup.Accepted, domain.AcceptedDemand{StationID: 3, WeightKg: 80, Items: 2})
	dup.Rejected = nil
	dup.CargoIDs = []int64{1, 2, 3}
	assert.Error(t, repo.SavePlan(ctx, dup))

	pending, err := repo.ListPendingCargo(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestSQLRepositorySavePlanKeepsLaterCargoPending(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLRepository(newTestDB(t), SQLite)

	// Submitted at an accepted station after the plan's inputs were read.
	late, err := repo.CreateCargo(ctx, domain.CargoRequest{StationID: 1, Count: 1, WeightKg: 999})
	require.NoError(t, err)

	require.NoError(t, repo.SavePlan(ctx, samplePlan()))

	pending, err := repo.ListPendingCargo(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, domain.StationID(3), pending[0].StationID)
	assert.Equal(t, late.ID, pending[1].ID)
	assert.Empty(t, pending[1].PlanID)
}

func TestSQLRepositoryConcurrentStationCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLRepository(newTestDB(t), SQLite)

	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = repo.CreateStation(ctx, domain.Station{Name: "Gebze", Location: domain.Coordinates{Lat: 40.8, Lon: 29.43}})
		}()
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, ports.ErrConflict)
	}
	assert.Equal(t, 1, created)
}

func TestIsUniqueViolation(t *testing.T) {
	conn := newTestDB(t)
	_, err := conn.Exec(`INSERT INTO stations (name, latitude, longitude) VALUES ('Izmit', 0, 0)`)
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))

	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("connection reset")))
	assert.False(t, isUniqueViolation(nil))
}
