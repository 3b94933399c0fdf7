package ports

import (
	"cargo-route-service/internal/domain"
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Port: reference data about collection stations.
type StationRepository interface {
	ListStations(ctx context.Context) ([]domain.Station, error)
	// Create a station; ErrConflict if the name is taken.
	CreateStation(ctx context.Context, s domain.Station) (domain.Station, error)
}

// Port: the vehicle roster.
type VehicleRepository interface {
	// Active vehicles in roster order.
	ListActiveVehicles(ctx context.Context) ([]domain.Vehicle, error)
}

// Port: cargo submitted at stations.
type CargoRepository interface {
	ListPendingCargo(ctx context.Context) ([]domain.CargoRequest, error)
	// Record a pending cargo request; ErrNotFound if the station does not exist.
	CreateCargo(ctx context.Context, c domain.CargoRequest) (domain.CargoRequest, error)
}

// Port: stored plans.
type PlanStore interface {
	// Persist the plan and mark the pending cargo of its accepted stations as
	// assigned, atomically.
	SavePlan(ctx context.Context, plan *domain.Plan) error
	GetPlan(ctx context.Context, id string) (*domain.Plan, error)
}

// Repository is everything the service needs from storage.
type Repository interface {
	StationRepository
	VehicleRepository
	CargoRepository
	PlanStore
}
