// Package vrp plans capacitated vehicle routes from a single depot.
//
// Solve runs one synchronous pipeline: seed selection, nearest-neighbour
// construction and 2-opt per vehicle, then a savings merge and a cost-based
// re-optimisation over all routes. It performs no I/O and keeps no state
// between calls.
package vrp

import (
	"cargo-route-service/internal/domain"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
)

var (
	ErrNoStations       = errors.New("no stations")
	ErrDuplicateStation = errors.New("duplicate station")
	ErrDuplicateVehicle = errors.New("duplicate vehicle")
	ErrInvalidCapacity  = errors.New("invalid vehicle capacity")
	ErrUnknownStation   = errors.New("demand for unknown station")
	ErrInvalidDemand    = errors.New("invalid demand")
	ErrInvalidCosts     = errors.New("invalid cost parameters")
	ErrInvalidMode      = errors.New("invalid fleet mode")
)

// Problem is the input of one solve. It is read, never modified.
type Problem struct {
	Depot    domain.Coordinates
	Stations []domain.Station
	Vehicles []domain.Vehicle
	Demand   map[domain.StationID]domain.DemandRecord
	Costs    domain.CostParams
}

type Options struct {
	// Mode defaults to domain.FixedFleet.
	Mode domain.FleetMode
	// Logger receives progress traces; nil discards them.
	Logger *log.Logger
}

type phase int

const (
	phaseSeeding phase = iota
	phaseConstructing
	phaseMerging
	phaseReoptimizing
	phaseDone
)

func (p phase) String() string {
	switch p {
	case phaseSeeding:
		return "seeding"
	case phaseConstructing:
		return "constructing"
	case phaseMerging:
		return "merging"
	case phaseReoptimizing:
		return "reoptimizing"
	case phaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// solver is the working state of a single Solve call.
type solver struct {
	problem Problem
	costs   domain.CostParams
	mode    domain.FleetMode
	logger  *log.Logger

	matrix *DistanceMatrix
	ledger *ledger
	phase  phase

	vehicles   map[domain.VehicleID]domain.Vehicle
	rented     []domain.Vehicle
	rentalSeq  int
	routes     []*domain.Route
	skipped    []domain.SkippedVehicle
	merges     int
	reoptSaved float64
}

// Solve assigns the problem's demand to routes.
//
// Fixed fleet uses the roster once each, in order, loading whole stations; demand
// left over is rejected. Elastic fleet splits station demand into unit items and
// rents vehicles sized to the remaining demand until everything is admitted.
// Invalid input fails before any computation; everything else is reported as data.
func Solve(problem Problem, opts Options) (*domain.Plan, error) {
	mode := opts.Mode
	if mode == "" {
		mode = domain.FixedFleet
	}

	costs, err := validate(problem, mode)
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	s := &solver{
		problem:  problem,
		costs:    costs,
		mode:     mode,
		logger:   logger,
		matrix:   NewDistanceMatrix(problem.Depot, problem.Stations),
		vehicles: make(map[domain.VehicleID]domain.Vehicle, len(problem.Vehicles)),
	}
	for _, v := range problem.Vehicles {
		s.vehicles[v.ID] = v
	}
	s.ledger = newLedger(problem.Stations, problem.Demand, s.matrix)

	if err := s.construct(); err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}
	s.merge()
	s.reoptimize()
	s.enter(phaseDone)

	return s.plan(), nil
}

func validate(p Problem, mode domain.FleetMode) (domain.CostParams, error) {
	if mode != domain.FixedFleet && mode != domain.ElasticFleet {
		return domain.CostParams{}, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if len(p.Stations) == 0 {
		return domain.CostParams{}, ErrNoStations
	}

	known := make(map[domain.StationID]struct{}, len(p.Stations))
	for _, s := range p.Stations {
		if _, dup := known[s.ID]; dup {
			return domain.CostParams{}, fmt.Errorf("%w: %d", ErrDuplicateStation, s.ID)
		}
		known[s.ID] = struct{}{}
	}

	ids := make(map[domain.VehicleID]struct{}, len(p.Vehicles))
	for _, v := range p.Vehicles {
		if _, dup := ids[v.ID]; dup {
			return domain.CostParams{}, fmt.Errorf("%w: %q", ErrDuplicateVehicle, v.ID)
		}
		ids[v.ID] = struct{}{}
		if v.CapacityKg < 0 || math.IsNaN(v.CapacityKg) || math.IsInf(v.CapacityKg, 0) {
			return domain.CostParams{}, fmt.Errorf("%w: vehicle %q capacity %v", ErrInvalidCapacity, v.ID, v.CapacityKg)
		}
	}

	for id, d := range p.Demand {
		if _, ok := known[id]; !ok {
			return domain.CostParams{}, fmt.Errorf("%w: %d", ErrUnknownStation, id)
		}
		if d.Count < 0 || d.WeightKg < 0 || math.IsNaN(d.WeightKg) || math.IsInf(d.WeightKg, 0) {
			return domain.CostParams{}, fmt.Errorf("%w: station %d count=%d weight=%v", ErrInvalidDemand, id, d.Count, d.WeightKg)
		}
	}

	c := p.Costs
	if c.RentalCapacityBufferRatio == 0 {
		c.RentalCapacityBufferRatio = domain.DefaultCostParams().RentalCapacityBufferRatio
	}
	for _, v := range []float64{c.FuelPricePerLiter, c.KmCost, c.RentalCostPerVehicle} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.CostParams{}, fmt.Errorf("%w: %+v", ErrInvalidCosts, p.Costs)
		}
	}
	if c.RentalCapacityBufferRatio < 1 || math.IsInf(c.RentalCapacityBufferRatio, 0) {
		return domain.CostParams{}, fmt.Errorf("%w: rental buffer ratio %v", ErrInvalidCosts, c.RentalCapacityBufferRatio)
	}

	return c, nil
}

func (s *solver) enter(p phase) {
	s.phase = p
	s.logger.Printf("phase=%s routes=%d pending_kg=%.2f", p, len(s.routes), s.ledger.remainingWeight())
}

func (s *solver) split() bool { return s.mode == domain.ElasticFleet }

// construct builds one route per vehicle until demand or vehicles run out.
func (s *solver) construct() error {
	next := 0

	for !s.ledger.exhausted() {
		var v domain.Vehicle
		switch {
		case next < len(s.problem.Vehicles):
			v = s.problem.Vehicles[next]
			next++
		case s.split():
			v = s.rent(s.ledger.remainingWeight())
		default:
			return nil
		}

		s.enter(phaseSeeding)
		seed, ok := selectSeed(s.matrix, s.ledger, s.eligible(v))
		if !ok {
			if v.Rented {
				return fmt.Errorf("rented vehicle %q (%.2f kg) cannot start a route", v.ID, v.CapacityKg)
			}
			s.skip(v, "no pending station fits capacity")
			continue
		}

		s.enter(phaseConstructing)
		r := construct(s.matrix, s.ledger, seed, v, s.split())
		if r == nil {
			if v.Rented {
				return fmt.Errorf("rented vehicle %q (%.2f kg) cannot load station %d", v.ID, v.CapacityKg, seed.station.ID)
			}
			s.skip(v, "seed station does not fit")
			continue
		}

		before := r.DistanceKm
		r.Stops, r.DistanceKm = improve2Opt(s.matrix, r.Stops)
		s.logger.Printf(
			"route vehicle=%s stops=%s weight_kg=%.2f util=%.1f dist_km=%.2f two_opt_saved_km=%.2f",
			r.VehicleID, domain.FormatStops(r.Stops), r.WeightKg, r.Utilization, r.DistanceKm, before-r.DistanceKm,
		)
		s.routes = append(s.routes, r)
	}

	return nil
}

// eligible reports which stations the vehicle can start a route from: the whole
// remaining weight in fixed mode, a single unit in split mode.
func (s *solver) eligible(v domain.Vehicle) func(*demandEntry) bool {
	if s.split() {
		return func(e *demandEntry) bool { return v.Fits(0, e.nextUnit()) }
	}
	return func(e *demandEntry) bool { return v.Fits(0, e.remainingWeight) }
}

func (s *solver) skip(v domain.Vehicle, reason string) {
	s.logger.Printf("skip vehicle=%s capacity_kg=%.2f reason=%q", v.ID, v.CapacityKg, reason)
	s.skipped = append(s.skipped, domain.SkippedVehicle{VehicleID: v.ID, Reason: reason})
}

// rent synthesizes a vehicle sized to carry remainingKg with the configured buffer.
func (s *solver) rent(remainingKg float64) domain.Vehicle {
	capacity := math.Ceil(remainingKg*s.costs.RentalCapacityBufferRatio - 1e-9)
	if capacity < remainingKg {
		capacity = math.Ceil(remainingKg)
	}

	var id domain.VehicleID
	for {
		s.rentalSeq++
		id = domain.VehicleID("rental-" + strconv.Itoa(s.rentalSeq))
		if _, taken := s.vehicles[id]; !taken {
			break
		}
	}

	v := domain.Vehicle{
		ID:         id,
		Name:       "Rented vehicle " + strconv.Itoa(s.rentalSeq),
		CapacityKg: capacity,
		RentalCost: s.costs.RentalCostPerVehicle,
		Rented:     true,
		Active:     true,
	}
	s.vehicles[id] = v
	s.rented = append(s.rented, v)
	s.logger.Printf("rent vehicle=%s capacity_kg=%.0f remaining_kg=%.2f", v.ID, v.CapacityKg, remainingKg)
	return v
}

func (s *solver) vehicleOf(r *domain.Route) domain.Vehicle { return s.vehicles[r.VehicleID] }

func (s *solver) merge() {
	s.enter(phaseMerging)
	if len(s.routes) < 2 {
		return
	}
	savings := computeSavings(s.matrix, s.ledger, s.costs.KmCost)
	s.routes, s.merges = mergeBySavings(s.matrix, s.routes, savings)
	s.logger.Printf("savings merges=%d routes=%d", s.merges, len(s.routes))
}

func (s *solver) reoptimize() {
	s.enter(phaseReoptimizing)
	s.reprice()
	s.routes, s.reoptSaved = reoptimizeByCost(s.matrix, s.routes, s.costs, s.vehicleOf)
	s.reprice()
	s.logger.Printf("reoptimize saved=%.2f routes=%d", s.reoptSaved, len(s.routes))
}

func (s *solver) reprice() {
	for _, r := range s.routes {
		reprice(r, s.costs, s.vehicleOf(r))
	}
}

// plan assembles the result from the final routes and the ledger.
func (s *solver) plan() *domain.Plan {
	p := &domain.Plan{
		Mode:                  s.mode,
		Routes:                make([]domain.Route, 0, len(s.routes)),
		TotalCost:             totalCost(s.routes),
		VehiclesUsed:          len(s.routes),
		Skipped:               s.skipped,
		ReoptimizationSavings: s.reoptSaved,
	}

	inUse := make(map[domain.VehicleID]bool, len(s.routes))
	accepted := make(map[domain.StationID]*domain.AcceptedDemand)
	utilization := 0.0

	for _, r := range s.routes {
		p.Routes = append(p.Routes, *r)
		inUse[r.VehicleID] = true
		utilization += r.Utilization
		p.Summary.TotalDistanceKm += r.DistanceKm
		p.Summary.AcceptedWeightKg += r.WeightKg
		s.logger.Printf("route vehicle=%s cost=%.2f cost_per_kg=%.2f", r.VehicleID, r.Cost.Total, r.CostPerKg())

		for _, l := range r.Loads {
			a, ok := accepted[l.StationID]
			if !ok {
				a = &domain.AcceptedDemand{StationID: l.StationID}
				accepted[l.StationID] = a
			}
			a.WeightKg += l.WeightKg
			a.Items += l.Items
		}
	}

	for _, v := range s.rented {
		if inUse[v.ID] {
			p.RentedVehicles = append(p.RentedVehicles, v)
		}
	}
	p.NewVehiclesRented = len(p.RentedVehicles)

	reasons := s.rejectionReason()
	for _, e := range s.ledger.entries {
		if a, ok := accepted[e.station.ID]; ok {
			p.Accepted = append(p.Accepted, *a)
		}
		if !e.pending() {
			continue
		}
		p.Rejected = append(p.Rejected, domain.RejectionRecord{
			StationID: e.station.ID,
			WeightKg:  e.remainingWeight,
			Items:     e.remainingItems,
			Reason:    reasons(e),
		})
		p.Summary.RejectedWeightKg += e.remainingWeight
		p.Summary.RejectedCargoCount += e.remainingItems
	}

	p.Summary.TotalWeightKg = s.ledger.totalWeight()
	if n := len(s.routes); n > 0 {
		p.Summary.AverageUtilization = utilization / float64(n)
		p.Summary.AverageCostPerVehicle = p.TotalCost / float64(n)
	}

	return p
}

// rejectionReason returns "capacity exhausted" for demand no roster vehicle could
// ever carry and "fleet exhausted" for demand that ran out of vehicles.
func (s *solver) rejectionReason() func(*demandEntry) domain.RejectionReason {
	largest := math.Inf(-1)
	for _, v := range s.problem.Vehicles {
		largest = max(largest, v.CapacityKg)
	}

	return func(e *demandEntry) domain.RejectionReason {
		unit := e.remainingWeight
		if s.split() {
			unit = e.nextUnit()
		}
		if len(s.problem.Vehicles) > 0 && unit > largest {
			return domain.ReasonCapacityExhausted
		}
		return domain.ReasonFleetExhausted
	}
}
