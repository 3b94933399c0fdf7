package domain

// VehicleID identifies a fleet or rented vehicle.
type VehicleID string

// Vehicle is a capacity-constrained carrier that starts and ends every route at the depot.
// Rented vehicles are synthesized by the planner for a single solve and are
// charged RentalCost once per route.
type Vehicle struct {
	ID         VehicleID
	Name       string
	CapacityKg float64
	RentalCost float64
	Rented     bool
	Active     bool
}

// RentalCharge returns the flat rental cost the vehicle adds to a route.
func (v Vehicle) RentalCharge() float64 {
	if !v.Rented {
		return 0
	}
	return v.RentalCost
}

// Fits reports whether weightKg can be added on top of loadKg.
func (v Vehicle) Fits(loadKg, weightKg float64) bool {
	return loadKg+weightKg <= v.CapacityKg
}
