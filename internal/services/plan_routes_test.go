package services

import (
	"cargo-route-service/internal/adapters/events"
	"cargo-route-service/internal/adapters/repositories"
	"cargo-route-service/internal/domain"
	"cargo-route-service/internal/ports"
	"cargo-route-service/internal/vrp"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var campus = domain.Coordinates{Lat: 40.8667, Lon: 29.85}

func seededRepo(capacities ...float64) *repositories.MemoryRepository {
	seed := repositories.Seed{
		Stations: []repositories.StationSeed{
			{ID: 1, Name: "Station 1", Latitude: 40.7700, Longitude: 29.9100},
			{ID: 2, Name: "Station 2", Latitude: 40.8200, Longitude: 29.8000},
		},
		Cargo: []repositories.CargoSeed{
			{StationID: 1, Count: 2, WeightKg: 60},
			{StationID: 1, Count: 2, WeightKg: 40},
			{StationID: 2, Count: 6, WeightKg: 150},
		},
	}
	for i, c := range capacities {
		seed.Vehicles = append(seed.Vehicles, repositories.VehicleSeed{ID: string(rune('a' + i)), Name: "Truck", CapacityKg: c})
	}

	repo := repositories.NewMemoryRepository()
	repo.LoadSeed(seed)
	return repo
}

func newTestPlanner(repo ports.Repository, broker ports.EventBroker) *Planner {
	p := NewPlanner(repo, broker, campus, domain.DefaultCostParams())
	p.Now = func() time.Time { return time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC) }
	p.NewID = func() string { return "plan-fixed-id" }
	return p
}

func TestAggregateDemand(t *testing.T) {
	demand := AggregateDemand([]domain.CargoRequest{
		{StationID: 1, Count: 2, WeightKg: 60, Status: domain.CargoPending},
		{StationID: 1, Count: 0, WeightKg: 15, Status: domain.CargoPending},
		{StationID: 2, Count: 3, WeightKg: 90, Status: domain.CargoAssigned},
		{StationID: 3, Count: 1, WeightKg: 0, Status: domain.CargoPending},
	})

	require.Len(t, demand, 1)
	assert.Equal(t, domain.DemandRecord{StationID: 1, Count: 3, WeightKg: 75}, demand[1])
}

func TestPlannerStoresAndPublishes(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(120)
	broker := events.NewMemoryBroker()
	sub, cancel, err := broker.Subscribe(ctx)
	require.NoError(t, err)
	defer cancel()

	plan, err := newTestPlanner(repo, broker).Plan(ctx, domain.FixedFleet)
	require.NoError(t, err)

	assert.Equal(t, "plan-fixed-id", plan.ID)
	require.Len(t, plan.Routes, 1)
	assert.Equal(t, []domain.StationID{1}, plan.Routes[0].StationIDs())
	require.Len(t, plan.Rejected, 1)
	assert.Equal(t, domain.ReasonCapacityExhausted, plan.Rejected[0].Reason)

	stored, err := repo.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.TotalCost, stored.TotalCost)

	pending, err := repo.ListPendingCargo(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, domain.StationID(2), pending[0].StationID)

	select {
	case evt := <-sub:
		assert.Equal(t, domain.EventPlanCompleted, evt.Type)
		assert.Equal(t, plan.ID, evt.PlanID)
		assert.Equal(t, 1, evt.RejectedStations)
	case <-time.After(time.Second):
		t.Fatal("no plan event published")
	}
}

func TestPlannerElasticAdmitsEverything(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo()

	plan, err := newTestPlanner(repo, nil).Plan(ctx, domain.ElasticFleet)
	require.NoError(t, err)

	assert.Equal(t, 1, plan.NewVehiclesRented)
	assert.Empty(t, plan.Rejected)

	_, err = newTestPlanner(repo, nil).Plan(ctx, domain.ElasticFleet)
	assert.ErrorIs(t, err, ErrNoDemand, "all cargo was assigned by the first plan")
}

type failingRepo struct {
	*repositories.MemoryRepository
}

func (failingRepo) ListActiveVehicles(context.Context) ([]domain.Vehicle, error) {
	return nil, errors.New("roster unavailable")
}

func TestPlannerLoadError(t *testing.T) {
	_, err := newTestPlanner(failingRepo{seededRepo(100)}, nil).Plan(context.Background(), domain.FixedFleet)
	assert.ErrorContains(t, err, "roster unavailable")
}

func TestPlannerInvalidMode(t *testing.T) {
	_, err := newTestPlanner(seededRepo(100), nil).Plan(context.Background(), "shared")
	assert.ErrorIs(t, err, vrp.ErrInvalidMode)
}

func TestPlannerGetPlanNotFound(t *testing.T) {
	_, err := newTestPlanner(seededRepo(), nil).GetPlan(context.Background(), "missing")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

// lateCargoRepo submits one more request right after the planner reads the
// pending queue, as a concurrent POST /cargo would.
type lateCargoRepo struct {
	*repositories.MemoryRepository
	late domain.CargoRequest
}

func (r *lateCargoRepo) ListPendingCargo(ctx context.Context) ([]domain.CargoRequest, error) {
	cargo, err := r.MemoryRepository.ListPendingCargo(ctx)
	if err != nil || r.late.ID != 0 {
		return cargo, err
	}
	r.late, err = r.MemoryRepository.CreateCargo(ctx, domain.CargoRequest{StationID: 1, Count: 1, WeightKg: 999})
	return cargo, err
}

func TestPlannerLeavesCargoSubmittedDuringSolvePending(t *testing.T) {
	ctx := context.Background()
	repo := &lateCargoRepo{MemoryRepository: seededRepo(120)}

	plan, err := newTestPlanner(repo, nil).Plan(ctx, domain.FixedFleet)
	require.NoError(t, err)

	assert.Equal(t, []domain.StationID{1}, plan.AcceptedStations())
	assert.Equal(t, []int64{1, 2}, plan.CargoIDs)
	assert.Equal(t, 100.0, plan.Summary.AcceptedWeightKg)

	pending, err := repo.ListPendingCargo(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, domain.StationID(2), pending[0].StationID)
	assert.Equal(t, repo.late.ID, pending[1].ID)
	assert.Equal(t, 999.0, pending[1].WeightKg)
	assert.Empty(t, pending[1].PlanID)
}
