package domain

import "time"

const EventPlanCompleted = "plan.completed"

// PlanEvent announces a stored plan to subscribers.
type PlanEvent struct {
	Type              string    `json:"type"`
	PlanID            string    `json:"plan_id"`
	Mode              FleetMode `json:"mode"`
	Routes            int       `json:"routes"`
	TotalCost         float64   `json:"total_cost"`
	RejectedStations  int       `json:"rejected_stations"`
	NewVehiclesRented int       `json:"new_vehicles_rented"`
	At                time.Time `json:"at"`
}

// NewPlanEvent summarizes plan for publication.
func NewPlanEvent(plan *Plan) PlanEvent {
	return PlanEvent{
		Type:              EventPlanCompleted,
		PlanID:            plan.ID,
		Mode:              plan.Mode,
		Routes:            len(plan.Routes),
		TotalCost:         plan.TotalCost,
		RejectedStations:  len(plan.Rejected),
		NewVehiclesRented: plan.NewVehiclesRented,
		At:                plan.CreatedAt,
	}
}
