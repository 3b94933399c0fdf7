package domain

import (
	"fmt"
	"time"
)

// FleetMode selects how the planner treats demand the roster cannot carry.
type FleetMode string

const (
	// FixedFleet uses only the supplied roster and rejects leftover demand.
	FixedFleet FleetMode = "fixed"
	// ElasticFleet rents extra vehicles and splits station demand until everything is admitted.
	ElasticFleet FleetMode = "elastic"
)

type RejectionReason string

const (
	ReasonCapacityExhausted RejectionReason = "capacity exhausted"
	ReasonFleetExhausted    RejectionReason = "fleet exhausted"
)

// Cost-rate parameters for a solve.
// FuelPricePerLiter is applied per kilometer, like KmCost.
type CostParams struct {
	FuelPricePerLiter         float64
	KmCost                    float64
	RentalCostPerVehicle      float64
	RentalCapacityBufferRatio float64
}

// DefaultCostParams mirrors the rates the dispatch office has always used.
func DefaultCostParams() CostParams {
	return CostParams{
		FuelPricePerLiter:         1,
		KmCost:                    1,
		RentalCostPerVehicle:      200,
		RentalCapacityBufferRatio: 1.1,
	}
}

// RejectionRecord is station demand that no vehicle could take.
type RejectionRecord struct {
	StationID StationID
	WeightKg  float64
	Items     int
	Reason    RejectionReason
}

// AcceptedDemand is station demand placed on at least one route.
type AcceptedDemand struct {
	StationID StationID
	WeightKg  float64
	Items     int
}

// SkippedVehicle records a vehicle that could not start any route.
type SkippedVehicle struct {
	VehicleID VehicleID
	Reason    string
}

type PlanSummary struct {
	TotalDistanceKm       float64
	TotalWeightKg         float64
	AcceptedWeightKg      float64
	RejectedWeightKg      float64
	AverageUtilization    float64
	AverageCostPerVehicle float64
	RejectedCargoCount    int
}

// Plan is the complete result of one solve.
// ID and CreatedAt are assigned by the planning service, not the solver.
type Plan struct {
	ID                    string
	Mode                  FleetMode
	Routes                []Route
	TotalCost             float64
	VehiclesUsed          int
	NewVehiclesRented     int
	RentedVehicles        []Vehicle
	Accepted              []AcceptedDemand
	Rejected              []RejectionRecord
	Skipped               []SkippedVehicle
	ReoptimizationSavings float64
	Summary               PlanSummary
	CreatedAt             time.Time

	// CargoIDs are the pending cargo requests this plan carries. Saving the
	// plan assigns exactly these rows; cargo submitted after the inputs were
	// loaded stays pending.
	CargoIDs []int64
}

// AcceptedStations returns stations whose whole demand was admitted.
func (p *Plan) AcceptedStations() []StationID {
	rejected := make(map[StationID]struct{}, len(p.Rejected))
	for _, r := range p.Rejected {
		rejected[r.StationID] = struct{}{}
	}

	ids := make([]StationID, 0, len(p.Accepted))
	for _, a := range p.Accepted {
		if _, ok := rejected[a.StationID]; !ok {
			ids = append(ids, a.StationID)
		}
	}
	return ids
}

// ParseFleetMode accepts "fixed", "elastic" and the legacy "unlimited" alias.
func ParseFleetMode(s string) (FleetMode, error) {
	switch s {
	case string(FixedFleet):
		return FixedFleet, nil
	case string(ElasticFleet), "unlimited":
		return ElasticFleet, nil
	default:
		return "", fmt.Errorf("unknown fleet mode %q", s)
	}
}
