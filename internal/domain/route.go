package domain

// Cost of a single route, split by origin.
type CostBreakdown struct {
	Fuel     float64
	Distance float64
	Rental   float64
	Total    float64
}

// StationLoad is the cargo a route picks up at one station.
// Complete is false when the station still has units left for another vehicle.
type StationLoad struct {
	StationID StationID
	Items     int
	WeightKg  float64
	Complete  bool
}

// Represents the planned route of a single vehicle.
// Stops always begin and end with the depot waypoint. Weight never exceeds
// CapacityKg in a plan returned by the planner.
type Route struct {
	VehicleID   VehicleID
	VehicleName string
	Rented      bool
	Stops       []Waypoint
	Loads       []StationLoad
	DistanceKm  float64
	WeightKg    float64
	Items       int
	CapacityKg  float64
	Utilization float64
	Cost        CostBreakdown
}

// StationIDs returns the visited stations in stop order.
func (r *Route) StationIDs() []StationID {
	ids := make([]StationID, 0, len(r.Stops))
	for _, w := range r.Stops {
		if id, ok := w.StationID(); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Visits reports whether the route stops at station id.
func (r *Route) Visits(id StationID) bool {
	for _, w := range r.Stops {
		if sid, ok := w.StationID(); ok && sid == id {
			return true
		}
	}
	return false
}

// CostPerKm is the route's total cost divided by its distance (0 for a zero-length route).
func (r *Route) CostPerKm() float64 {
	if r.DistanceKm <= 0 {
		return 0
	}
	return r.Cost.Total / r.DistanceKm
}

// CostPerKg is the route's total cost divided by its weight (0 for an empty route).
func (r *Route) CostPerKg() float64 {
	if r.WeightKg <= 0 {
		return 0
	}
	return r.Cost.Total / r.WeightKg
}

// Utilization returns weight as a percentage of capacity.
func Utilization(weightKg, capacityKg float64) float64 {
	if capacityKg <= 0 {
		return 0
	}
	return weightKg / capacityKg * 100
}
