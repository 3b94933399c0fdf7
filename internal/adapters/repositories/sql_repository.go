package repositories

import (
	"cargo-route-service/internal/domain"
	"cargo-route-service/internal/platform/obs"
	"cargo-route-service/internal/ports"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SQL-backed implementation of the repository ports, for SQLite and Postgres.
type SQLRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLRepository(db *sql.DB, d Dialect) *SQLRepository {
	return &SQLRepository{DB: db, Dialect: d}
}

var _ ports.Repository = (*SQLRepository)(nil)

func (s *SQLRepository) q(query string) string { return s.Dialect.rebind(query) }

// Return all stations ordered by id.
func (s *SQLRepository) ListStations(ctx context.Context) (_ []domain.Station, err error) {
	defer obs.Time(ctx, "stations.List")(&err)

	if s.DB == nil {
		return nil, errors.New("sql repository: DB is nil")
	}

	query := `
	SELECT id, name, latitude, longitude
	FROM stations
	ORDER BY id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stations: query stations table: %w", err)
	}
	defer rows.Close()

	stations := make([]domain.Station, 0, 32)
	for rows.Next() {
		var st domain.Station
		if err := rows.Scan(&st.ID, &st.Name, &st.Location.Lat, &st.Location.Lon); err != nil {
			return nil, fmt.Errorf("list stations: scan row: %w", err)
		}
		stations = append(stations, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stations: row iteration: %w", err)
	}

	return stations, nil
}

func (s *SQLRepository) CreateStation(ctx context.Context, st domain.Station) (_ domain.Station, err error) {
	defer obs.Time(ctx, "stations.Create")(&err)

	if s.DB == nil {
		return domain.Station{}, errors.New("sql repository: DB is nil")
	}

	// The UNIQUE constraint on name decides conflicts, so concurrent creates
	// of the same name cannot both succeed.
	query := s.q(`
	INSERT INTO stations (name, latitude, longitude)
	VALUES (?, ?, ?)
	RETURNING id;
	`)
	err = s.DB.QueryRowContext(ctx, query, st.Name, st.Location.Lat, st.Location.Lon).Scan(&st.ID)
	if isUniqueViolation(err) {
		return domain.Station{}, fmt.Errorf("create station: name %q: %w", st.Name, ports.ErrConflict)
	}
	if err != nil {
		return domain.Station{}, fmt.Errorf("create station: insert %q: %w", st.Name, err)
	}

	return st, nil
}

// Return active vehicles in roster order.
func (s *SQLRepository) ListActiveVehicles(ctx context.Context) (_ []domain.Vehicle, err error) {
	defer obs.Time(ctx, "vehicles.ListActive")(&err)

	if s.DB == nil {
		return nil, errors.New("sql repository: DB is nil")
	}

	query := `
	SELECT id, name, capacity_kg, rental_cost, active
	FROM vehicles
	WHERE active = TRUE
	ORDER BY position, id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: query vehicles table: %w", err)
	}
	defer rows.Close()

	vehicles := make([]domain.Vehicle, 0, 8)
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(&v.ID, &v.Name, &v.CapacityKg, &v.RentalCost, &v.Active); err != nil {
			return nil, fmt.Errorf("list vehicles: scan row: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vehicles: row iteration: %w", err)
	}

	return vehicles, nil
}

// Return pending cargo requests in submission order.
func (s *SQLRepository) ListPendingCargo(ctx context.Context) (_ []domain.CargoRequest, err error) {
	defer obs.Time(ctx, "cargo.ListPending")(&err)

	if s.DB == nil {
		return nil, errors.New("sql repository: DB is nil")
	}

	query := s.q(`
	SELECT id, station_id, cargo_count, weight_kg, status, plan_id, created_at
	FROM cargo_requests
	WHERE status = ?
	ORDER BY id;
	`)
	rows, err := s.DB.QueryContext(ctx, query, string(domain.CargoPending))
	if err != nil {
		return nil, fmt.Errorf("list cargo: query cargo_requests table: %w", err)
	}
	defer rows.Close()

	cargo := make([]domain.CargoRequest, 0, 64)
	for rows.Next() {
		var (
			c         domain.CargoRequest
			status    string
			planID    sql.NullString
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.StationID, &c.Count, &c.WeightKg, &status, &planID, &createdAt); err != nil {
			return nil, fmt.Errorf("list cargo: scan row: %w", err)
		}
		c.Status = domain.CargoStatus(status)
		c.PlanID = planID.String
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("list cargo: parse created_at of id=%d: %w", c.ID, err)
		}
		cargo = append(cargo, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cargo: row iteration: %w", err)
	}

	return cargo, nil
}

func (s *SQLRepository) CreateCargo(ctx context.Context, c domain.CargoRequest) (_ domain.CargoRequest, err error) {
	defer obs.Time(ctx, "cargo.Create")(&err)

	if s.DB == nil {
		return domain.CargoRequest{}, errors.New("sql repository: DB is nil")
	}

	var one int
	err = s.DB.QueryRowContext(ctx, s.q(`SELECT 1 FROM stations WHERE id = ?`), c.StationID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CargoRequest{}, fmt.Errorf("create cargo: station %d: %w", c.StationID, ports.ErrNotFound)
	}
	if err != nil {
		return domain.CargoRequest{}, fmt.Errorf("create cargo: check station %d: %w", c.StationID, err)
	}

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c.Status = domain.CargoPending
	c.PlanID = ""

	query := s.q(`
	INSERT INTO cargo_requests (station_id, cargo_count, weight_kg, status, created_at)
	VALUES (?, ?, ?, ?, ?)
	RETURNING id;
	`)
	row := s.DB.QueryRowContext(ctx, query, c.StationID, c.Count, c.WeightKg, string(c.Status), formatTime(c.CreatedAt))
	if err := row.Scan(&c.ID); err != nil {
		return domain.CargoRequest{}, fmt.Errorf("create cargo: insert station_id=%d: %w", c.StationID, err)
	}

	return c, nil
}

// Persist a plan with its routes and rejections, and assign the pending cargo
// of every fully accepted station to it, in one transaction.
func (s *SQLRepository) SavePlan(ctx context.Context, plan *domain.Plan) (err error) {
	defer obs.Time(ctx, "plans.Save")(&err)

	if s.DB == nil {
		return errors.New("sql repository: DB is nil")
	}
	if plan == nil || plan.ID == "" {
		return errors.New("save plan: plan id must not be empty")
	}

	payload, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("save plan: encode payload: %w", err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save plan: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	planQuery := s.q(`
	INSERT INTO plans (id, mode, total_cost, vehicles_used, new_vehicles_rented, payload, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`)
	_, err = tx.ExecContext(ctx, planQuery,
		plan.ID, string(plan.Mode), plan.TotalCost, plan.VehiclesUsed, plan.NewVehiclesRented,
		string(payload), formatTime(plan.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save plan: insert plan id=%q: %w", plan.ID, err)
	}

	routeStmt, err := tx.PrepareContext(ctx, s.q(`
	INSERT INTO plan_routes (plan_id, seq, vehicle_id, rented, stops, distance_km, weight_kg, utilization, total_cost)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("save plan: prepare routes: %w", err)
	}
	defer routeStmt.Close()

	for i, r := range plan.Routes {
		_, err := routeStmt.ExecContext(ctx,
			plan.ID, i+1, string(r.VehicleID), r.Rented, domain.FormatStops(r.Stops),
			r.DistanceKm, r.WeightKg, r.Utilization, r.Cost.Total,
		)
		if err != nil {
			return fmt.Errorf("save plan: insert route seq=%d: %w", i+1, err)
		}
	}

	rejectStmt, err := tx.PrepareContext(ctx, s.q(`
	INSERT INTO plan_rejections (plan_id, station_id, weight_kg, items, reason)
	VALUES (?, ?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("save plan: prepare rejections: %w", err)
	}
	defer rejectStmt.Close()

	for _, rj := range plan.Rejected {
		if _, err := rejectStmt.ExecContext(ctx, plan.ID, rj.StationID, rj.WeightKg, rj.Items, string(rj.Reason)); err != nil {
			return fmt.Errorf("save plan: insert rejection station_id=%d: %w", rj.StationID, err)
		}
	}

	assignStmt, err := tx.PrepareContext(ctx, s.q(`
	UPDATE cargo_requests
	SET status = ?, plan_id = ?
	WHERE id = ? AND status = ?;
	`))
	if err != nil {
		return fmt.Errorf("save plan: prepare cargo update: %w", err)
	}
	defer assignStmt.Close()

	for _, id := range plan.CargoIDs {
		_, err := assignStmt.ExecContext(ctx, string(domain.CargoAssigned), plan.ID, id, string(domain.CargoPending))
		if err != nil {
			return fmt.Errorf("save plan: assign cargo id=%d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save plan: commit: %w", err)
	}

	return nil
}

func (s *SQLRepository) GetPlan(ctx context.Context, id string) (_ *domain.Plan, err error) {
	defer obs.Time(ctx, "plans.Get")(&err)

	if s.DB == nil {
		return nil, errors.New("sql repository: DB is nil")
	}

	var payload string
	err = s.DB.QueryRowContext(ctx, s.q(`SELECT payload FROM plans WHERE id = ?`), id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get plan %q: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get plan %q: query plans table: %w", id, err)
	}

	var plan domain.Plan
	if err := json.Unmarshal([]byte(payload), &plan); err != nil {
		return nil, fmt.Errorf("get plan %q: decode payload: %w", id, err)
	}

	return &plan, nil
}
