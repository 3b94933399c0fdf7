package vrp

import (
	"bytes"
	"cargo-route-service/internal/domain"
	"errors"
	"log"
	"maps"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var campus = domain.Coordinates{Lat: 40.8667, Lon: 29.85}

func twoStationProblem(vehicles ...domain.Vehicle) Problem {
	return Problem{
		Depot: campus,
		Stations: []domain.Station{
			{ID: 1, Name: "Station 1", Location: domain.Coordinates{Lat: 40.7700, Lon: 29.9100}},
			{ID: 2, Name: "Station 2", Location: domain.Coordinates{Lat: 40.8200, Lon: 29.8000}},
		},
		Vehicles: vehicles,
		Demand: demandOf(
			domain.DemandRecord{StationID: 1, Count: 4, WeightKg: 100},
			domain.DemandRecord{StationID: 2, Count: 6, WeightKg: 150},
		),
		Costs: domain.CostParams{FuelPricePerLiter: 1, KmCost: 1, RentalCostPerVehicle: 200, RentalCapacityBufferRatio: 1.1},
	}
}

func routeWeight(p *domain.Plan) float64 {
	total := 0.0
	for _, r := range p.Routes {
		total += r.WeightKg
	}
	return total
}

func rejectedWeight(p *domain.Plan) float64 {
	total := 0.0
	for _, r := range p.Rejected {
		total += r.WeightKg
	}
	return total
}

func TestSolveFixedFleetExhausted(t *testing.T) {
	problem := twoStationProblem(domain.Vehicle{ID: "v1", CapacityKg: 120})
	problem.Demand[2] = domain.DemandRecord{StationID: 2, Count: 1, WeightKg: 100}

	plan, err := Solve(problem, Options{})
	require.NoError(t, err)

	assert.Equal(t, domain.FixedFleet, plan.Mode)
	require.Len(t, plan.Rejected, 1)
	assert.Equal(t, domain.ReasonFleetExhausted, plan.Rejected[0].Reason)
}

func TestSolveFixedFleetSkipsSmallVehicle(t *testing.T) {
	problem := twoStationProblem(
		domain.Vehicle{ID: "scooter", CapacityKg: 10},
		domain.Vehicle{ID: "truck", CapacityKg: 300},
	)

	plan, err := Solve(problem, Options{Mode: domain.FixedFleet})
	require.NoError(t, err)

	require.Len(t, plan.Skipped, 1)
	assert.Equal(t, domain.VehicleID("scooter"), plan.Skipped[0].VehicleID)
	require.Len(t, plan.Routes, 1)
	assert.Equal(t, domain.VehicleID("truck"), plan.Routes[0].VehicleID)
	assert.Empty(t, plan.Rejected)
}

func TestSolveElasticSplitsHeavyStation(t *testing.T) {
	problem := Problem{
		Depot:    campus,
		Stations: []domain.Station{{ID: 9, Location: domain.Coordinates{Lat: 40.80, Lon: 29.90}}},
		Vehicles: []domain.Vehicle{{ID: "van", CapacityKg: 50}},
		Demand:   demandOf(domain.DemandRecord{StationID: 9, Count: 8, WeightKg: 200}),
		Costs:    domain.CostParams{FuelPricePerLiter: 1, KmCost: 1, RentalCostPerVehicle: 200},
	}

	plan, err := Solve(problem, Options{Mode: domain.ElasticFleet})
	require.NoError(t, err)

	require.Len(t, plan.Routes, 2)
	van, rental := plan.Routes[0], plan.Routes[1]

	assert.Equal(t, domain.VehicleID("van"), van.VehicleID)
	assert.Equal(t, 50.0, van.WeightKg)
	assert.False(t, van.Loads[0].Complete)

	assert.Equal(t, domain.VehicleID("rental-1"), rental.VehicleID)
	assert.Equal(t, 150.0, rental.WeightKg)
	assert.Equal(t, 165.0, rental.CapacityKg)
	assert.True(t, rental.Loads[0].Complete)

	require.Len(t, plan.Accepted, 1)
	assert.Equal(t, domain.AcceptedDemand{StationID: 9, WeightKg: 200, Items: 8}, plan.Accepted[0])
	assert.Empty(t, plan.Rejected)
}

func TestSolveElasticSkipsTakenRentalIDs(t *testing.T) {
	problem := twoStationProblem(domain.Vehicle{ID: "rental-1", CapacityKg: 0})

	plan, err := Solve(problem, Options{Mode: domain.ElasticFleet})
	require.NoError(t, err)

	require.Len(t, plan.RentedVehicles, 1)
	assert.Equal(t, domain.VehicleID("rental-2"), plan.RentedVehicles[0].ID)
	require.Len(t, plan.Skipped, 1)
}

func randomProblem(rng *rand.Rand, stations, vehicles int) Problem {
	p := Problem{
		Depot:  campus,
		Demand: make(map[domain.StationID]domain.DemandRecord, stations),
		Costs:  domain.DefaultCostParams(),
	}
	for i := 0; i < stations; i++ {
		id := domain.StationID(i + 1)
		p.Stations = append(p.Stations, domain.Station{
			ID:       id,
			Location: domain.Coordinates{Lat: campus.Lat + rng.Float64()*0.4 - 0.2, Lon: campus.Lon + rng.Float64()*0.4 - 0.2},
		})
		count := 1 + rng.IntN(10)
		p.Demand[id] = domain.DemandRecord{StationID: id, Count: count, WeightKg: float64(count) * (5 + rng.Float64()*30)}
	}
	for i := 0; i < vehicles; i++ {
		p.Vehicles = append(p.Vehicles, domain.Vehicle{
			ID:         domain.VehicleID("v" + string(rune('a'+i))),
			CapacityKg: 100 + float64(rng.IntN(400)),
		})
	}
	return p
}

func assertWithinCapacity(t *testing.T, plan *domain.Plan) {
	t.Helper()
	for _, r := range plan.Routes {
		assert.LessOrEqual(t, r.WeightKg, r.CapacityKg+1e-9, "vehicle %s", r.VehicleID)
		assert.True(t, r.Stops[0].IsDepot())
		assert.True(t, r.Stops[len(r.Stops)-1].IsDepot())
	}
}

func TestSolveElasticConservesCargo(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 1))

	for trial := 0; trial < 20; trial++ {
		problem := randomProblem(rng, 3+rng.IntN(15), rng.IntN(4))

		plan, err := Solve(problem, Options{Mode: domain.ElasticFleet})
		require.NoError(t, err, "trial %d", trial)

		assert.Empty(t, plan.Rejected, "trial %d", trial)
		assert.InDelta(t, plan.Summary.TotalWeightKg, routeWeight(plan), 1e-6, "trial %d", trial)
		assertWithinCapacity(t, plan)
	}
}

func TestSolveFixedAdmissionCompleteness(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))

	for trial := 0; trial < 20; trial++ {
		problem := randomProblem(rng, 3+rng.IntN(15), 1+rng.IntN(3))

		plan, err := Solve(problem, Options{Mode: domain.FixedFleet})
		require.NoError(t, err, "trial %d", trial)

		total := 0.0
		for _, d := range problem.Demand {
			total += d.WeightKg
		}
		assert.InDelta(t, total, routeWeight(plan)+rejectedWeight(plan), 1e-6, "trial %d", trial)
		assert.Zero(t, plan.NewVehiclesRented)
		assert.LessOrEqual(t, len(plan.Routes), len(problem.Vehicles))
		assertWithinCapacity(t, plan)
	}
}

func TestSolveDeterministicAndReadOnly(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	problem := randomProblem(rng, 12, 2)
	demand := maps.Clone(problem.Demand)
	vehicles := append([]domain.Vehicle(nil), problem.Vehicles...)

	first, err := Solve(problem, Options{Mode: domain.ElasticFleet})
	require.NoError(t, err)
	second, err := Solve(problem, Options{Mode: domain.ElasticFleet})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, demand, problem.Demand)
	assert.Equal(t, vehicles, problem.Vehicles)
}

func TestSolveLogsPhases(t *testing.T) {
	var buf bytes.Buffer

	_, err := Solve(twoStationProblem(domain.Vehicle{ID: "v1", CapacityKg: 300}), Options{Logger: log.New(&buf, "", 0)})
	require.NoError(t, err)

	for _, p := range []phase{phaseSeeding, phaseConstructing, phaseMerging, phaseReoptimizing, phaseDone} {
		assert.Contains(t, buf.String(), "phase="+p.String())
	}
}

func TestSolveEmptyDemand(t *testing.T) {
	problem := twoStationProblem(domain.Vehicle{ID: "v1", CapacityKg: 300})
	problem.Demand = nil

	plan, err := Solve(problem, Options{})
	require.NoError(t, err)

	assert.Empty(t, plan.Routes)
	assert.Empty(t, plan.Rejected)
	assert.Zero(t, plan.TotalCost)
}

func TestSolveValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Problem, *Options)
		want   error
	}{
		{"no stations", func(p *Problem, _ *Options) { p.Stations = nil }, ErrNoStations},
		{"duplicate station", func(p *Problem, _ *Options) { p.Stations = append(p.Stations, p.Stations[0]) }, ErrDuplicateStation},
		{"duplicate vehicle", func(p *Problem, _ *Options) { p.Vehicles = append(p.Vehicles, p.Vehicles[0]) }, ErrDuplicateVehicle},
		{"negative capacity", func(p *Problem, _ *Options) { p.Vehicles[0].CapacityKg = -1 }, ErrInvalidCapacity},
		{"nan capacity", func(p *Problem, _ *Options) { p.Vehicles[0].CapacityKg = math.NaN() }, ErrInvalidCapacity},
		{"unknown station", func(p *Problem, _ *Options) {
			p.Demand[77] = domain.DemandRecord{StationID: 77, Count: 1, WeightKg: 1}
		}, ErrUnknownStation},
		{"negative weight", func(p *Problem, _ *Options) {
			p.Demand[1] = domain.DemandRecord{StationID: 1, Count: 1, WeightKg: -5}
		}, ErrInvalidDemand},
		{"negative km cost", func(p *Problem, _ *Options) { p.Costs.KmCost = -1 }, ErrInvalidCosts},
		{"buffer below one", func(p *Problem, _ *Options) { p.Costs.RentalCapacityBufferRatio = 0.9 }, ErrInvalidCosts},
		{"unknown mode", func(_ *Problem, o *Options) { o.Mode = "shared" }, ErrInvalidMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problem := twoStationProblem(domain.Vehicle{ID: "v1", CapacityKg: 300})
			opts := Options{Mode: domain.FixedFleet}
			tt.mutate(&problem, &opts)

			plan, err := Solve(problem, opts)
			assert.Nil(t, plan)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}
