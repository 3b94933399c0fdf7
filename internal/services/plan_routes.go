package services

import (
	"cargo-route-service/internal/domain"
	"cargo-route-service/internal/platform/metrics"
	"cargo-route-service/internal/platform/obs"
	"cargo-route-service/internal/ports"
	"cargo-route-service/internal/vrp"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var ErrNoDemand = errors.New("no pending cargo")

// Planner turns the pending cargo in storage into a stored, published plan.
type Planner struct {
	Repo   ports.Repository
	Events ports.EventBroker
	Depot  domain.Coordinates
	Costs  domain.CostParams

	// Logger receives solver traces; nil discards them.
	Logger *log.Logger
	Now    func() time.Time
	NewID  func() string
}

func NewPlanner(repo ports.Repository, events ports.EventBroker, depot domain.Coordinates, costs domain.CostParams) *Planner {
	return &Planner{
		Repo:   repo,
		Events: events,
		Depot:  depot,
		Costs:  costs,
		Now:    time.Now,
		NewID:  func() string { return uuid.New().String() },
	}
}

type planInputs struct {
	stations []domain.Station
	vehicles []domain.Vehicle
	cargo    []domain.CargoRequest
}

// Stations, roster and cargo are independent reads, so they are fetched concurrently.
func (p *Planner) loadInputs(ctx context.Context) (planInputs, error) {
	var in planInputs
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		in.stations, err = p.Repo.ListStations(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		in.vehicles, err = p.Repo.ListActiveVehicles(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		in.cargo, err = p.Repo.ListPendingCargo(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return planInputs{}, err
	}
	return in, nil
}

// Plan solves the current pending demand with the given fleet mode, stores the
// plan (assigning the accepted cargo) and publishes a plan.completed event.
// ErrNoDemand is returned when nothing is pending.
func (p *Planner) Plan(ctx context.Context, mode domain.FleetMode) (_ *domain.Plan, err error) {
	defer obs.Time(ctx, "plans.Plan")(&err)

	in, err := p.loadInputs(ctx)
	if err != nil {
		metrics.PlansTotal.WithLabelValues(string(mode), "error").Inc()
		return nil, fmt.Errorf("plan routes: load inputs: %w", err)
	}

	demand := AggregateDemand(in.cargo)
	if len(demand) == 0 {
		metrics.PlansTotal.WithLabelValues(string(mode), "empty").Inc()
		return nil, ErrNoDemand
	}

	plan, err := p.solve(ctx, mode, vrp.Problem{
		Depot:    p.Depot,
		Stations: in.stations,
		Vehicles: in.vehicles,
		Demand:   demand,
		Costs:    p.Costs,
	})
	if err != nil {
		metrics.PlansTotal.WithLabelValues(string(mode), "error").Inc()
		return nil, fmt.Errorf("plan routes: %w", err)
	}

	plan.ID = p.NewID()
	plan.CreatedAt = p.Now().UTC()
	plan.CargoIDs = carriedCargo(in.cargo, plan.AcceptedStations())

	if err := p.Repo.SavePlan(ctx, plan); err != nil {
		metrics.PlansTotal.WithLabelValues(string(mode), "error").Inc()
		return nil, fmt.Errorf("plan routes: save plan %q: %w", plan.ID, err)
	}

	metrics.PlansTotal.WithLabelValues(string(mode), "ok").Inc()
	metrics.RoutesPlanned.WithLabelValues(string(mode)).Add(float64(len(plan.Routes)))
	metrics.VehiclesRented.Add(float64(plan.NewVehiclesRented))
	metrics.RejectedCargoKg.Add(plan.Summary.RejectedWeightKg)

	p.publish(ctx, plan)
	return plan, nil
}

func (p *Planner) solve(ctx context.Context, mode domain.FleetMode, problem vrp.Problem) (_ *domain.Plan, err error) {
	defer obs.Time(ctx, "vrp.Solve")(&err)

	start := time.Now()
	defer func() { metrics.SolveDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds()) }()

	return vrp.Solve(problem, vrp.Options{Mode: mode, Logger: p.Logger})
}

// A failed publish is logged, never surfaced: the plan is already stored.
func (p *Planner) publish(ctx context.Context, plan *domain.Plan) {
	if p.Events == nil {
		return
	}

	if err := p.Events.Publish(ctx, domain.NewPlanEvent(plan)); err != nil {
		metrics.EventsPublished.WithLabelValues("error").Inc()
		log.Printf("req_id=%s publish plan event failed plan_id=%s err=%v", obs.RequestID(ctx), plan.ID, err)
		return
	}
	metrics.EventsPublished.WithLabelValues("ok").Inc()
}

// GetPlan returns a stored plan; ports.ErrNotFound if it does not exist.
func (p *Planner) GetPlan(ctx context.Context, id string) (*domain.Plan, error) {
	plan, err := p.Repo.GetPlan(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return plan, nil
}
