package dto

import "time"

type PlanRequest struct {
	// "fixed", "elastic", or the legacy "unlimited" alias for elastic.
	ProblemType string `json:"problem_type"`
}

type CostResponse struct {
	Fuel     float64 `json:"fuel_cost"`
	Distance float64 `json:"distance_cost"`
	Rental   float64 `json:"rental_cost"`
	Total    float64 `json:"total_cost"`
}

type RouteLoadResponse struct {
	StationID int64   `json:"station_id"`
	Items     int     `json:"items"`
	WeightKg  float64 `json:"weight_kg"`
	Complete  bool    `json:"complete"`
}

type RouteResponse struct {
	VehicleID   string              `json:"vehicle_id"`
	VehicleName string              `json:"vehicle_name"`
	Rented      bool                `json:"rented"`
	Stops       []string            `json:"stops"`
	Loads       []RouteLoadResponse `json:"loads"`
	DistanceKm  float64             `json:"distance_km"`
	WeightKg    float64             `json:"weight_kg"`
	Items       int                 `json:"items"`
	CapacityKg  float64             `json:"capacity_kg"`
	Utilization float64             `json:"utilization"`
	Cost        CostResponse        `json:"cost"`
}

type RejectionResponse struct {
	StationID int64   `json:"station_id"`
	WeightKg  float64 `json:"weight_kg"`
	Items     int     `json:"items"`
	Reason    string  `json:"reason"`
}

type SkippedVehicleResponse struct {
	VehicleID string `json:"vehicle_id"`
	Reason    string `json:"reason"`
}

type SummaryResponse struct {
	TotalDistanceKm       float64 `json:"total_distance_km"`
	TotalWeightKg         float64 `json:"total_weight_kg"`
	AcceptedWeightKg      float64 `json:"accepted_weight_kg"`
	RejectedWeightKg      float64 `json:"rejected_weight_kg"`
	AverageUtilization    float64 `json:"average_utilization"`
	AverageCostPerVehicle float64 `json:"average_cost_per_vehicle"`
	RejectedCargoCount    int     `json:"rejected_cargo_count"`
}

type PlanResponse struct {
	ID                    string                   `json:"id"`
	ProblemType           string                   `json:"problem_type"`
	Routes                []RouteResponse          `json:"routes"`
	TotalCost             float64                  `json:"total_cost"`
	VehiclesUsed          int                      `json:"vehicles_used"`
	NewVehiclesRented     int                      `json:"new_vehicles_rented"`
	RentedVehicles        []VehicleResponse        `json:"rented_vehicles"`
	Rejected              []RejectionResponse      `json:"rejected"`
	Skipped               []SkippedVehicleResponse `json:"skipped_vehicles"`
	ReoptimizationSavings float64                  `json:"reoptimization_savings"`
	Summary               SummaryResponse          `json:"summary"`
	CreatedAt             time.Time                `json:"created_at"`
}

// EmptyPlanResponse is returned when there is no pending cargo to plan.
type EmptyPlanResponse struct {
	Message string          `json:"message"`
	Routes  []RouteResponse `json:"routes"`
}
