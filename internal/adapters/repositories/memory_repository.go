package repositories

import (
	"cargo-route-service/internal/domain"
	"cargo-route-service/internal/ports"
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// MemoryRepository keeps everything in process memory. Used when DB_DRIVER=memory
// and by tests.
type MemoryRepository struct {
	mu        sync.Mutex
	stations  []domain.Station
	vehicles  []domain.Vehicle
	cargo     []domain.CargoRequest
	plans     map[string]domain.Plan
	nextStaID domain.StationID
	nextCarID int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		plans:     map[string]domain.Plan{},
		nextStaID: 1,
		nextCarID: 1,
	}
}

var _ ports.Repository = (*MemoryRepository)(nil)

// LoadSeed replaces stations and vehicles and appends the seed's cargo as pending.
func (m *MemoryRepository) LoadSeed(seed Seed) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stations = m.stations[:0]
	for _, s := range seed.Stations {
		m.stations = append(m.stations, domain.Station{
			ID:       domain.StationID(s.ID),
			Name:     s.Name,
			Location: domain.Coordinates{Lat: s.Latitude, Lon: s.Longitude},
		})
		m.nextStaID = max(m.nextStaID, domain.StationID(s.ID)+1)
	}
	slices.SortFunc(m.stations, func(a, b domain.Station) int { return cmp.Compare(a.ID, b.ID) })

	m.vehicles = m.vehicles[:0]
	for _, v := range seed.Vehicles {
		m.vehicles = append(m.vehicles, domain.Vehicle{
			ID:         domain.VehicleID(v.ID),
			Name:       v.Name,
			CapacityKg: v.CapacityKg,
			RentalCost: v.RentalCost,
			Active:     v.active(),
		})
	}

	now := time.Now().UTC()
	for _, c := range seed.Cargo {
		m.cargo = append(m.cargo, domain.CargoRequest{
			ID:        m.nextCarID,
			StationID: domain.StationID(c.StationID),
			Count:     c.Count,
			WeightKg:  c.WeightKg,
			Status:    domain.CargoPending,
			CreatedAt: now,
		})
		m.nextCarID++
	}
}

func (m *MemoryRepository) ListStations(ctx context.Context) ([]domain.Station, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.stations), nil
}

func (m *MemoryRepository) CreateStation(ctx context.Context, s domain.Station) (domain.Station, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.stations {
		if existing.Name == s.Name {
			return domain.Station{}, fmt.Errorf("create station: name %q: %w", s.Name, ports.ErrConflict)
		}
	}

	s.ID = m.nextStaID
	m.nextStaID++
	m.stations = append(m.stations, s)
	return s, nil
}

func (m *MemoryRepository) ListActiveVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Vehicle, 0, len(m.vehicles))
	for _, v := range m.vehicles {
		if v.Active {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *MemoryRepository) ListPendingCargo(ctx context.Context) ([]domain.CargoRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.CargoRequest, 0, len(m.cargo))
	for _, c := range m.cargo {
		if c.Status == domain.CargoPending {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MemoryRepository) CreateCargo(ctx context.Context, c domain.CargoRequest) (domain.CargoRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !slices.ContainsFunc(m.stations, func(s domain.Station) bool { return s.ID == c.StationID }) {
		return domain.CargoRequest{}, fmt.Errorf("create cargo: station %d: %w", c.StationID, ports.ErrNotFound)
	}

	c.ID = m.nextCarID
	m.nextCarID++
	c.Status = domain.CargoPending
	c.PlanID = ""
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	m.cargo = append(m.cargo, c)
	return c, nil
}

func (m *MemoryRepository) SavePlan(ctx context.Context, plan *domain.Plan) error {
	if plan == nil || plan.ID == "" {
		return fmt.Errorf("save plan: plan id must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, dup := m.plans[plan.ID]; dup {
		return fmt.Errorf("save plan %q: %w", plan.ID, ports.ErrConflict)
	}
	m.plans[plan.ID] = *plan

	for i := range m.cargo {
		c := &m.cargo[i]
		if c.Status == domain.CargoPending && slices.Contains(plan.CargoIDs, c.ID) {
			c.Status = domain.CargoAssigned
			c.PlanID = plan.ID
		}
	}
	return nil
}

func (m *MemoryRepository) GetPlan(ctx context.Context, id string) (*domain.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.plans[id]
	if !ok {
		return nil, fmt.Errorf("get plan %q: %w", id, ports.ErrNotFound)
	}
	return &p, nil
}
