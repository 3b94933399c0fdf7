package dto

type VehicleResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	CapacityKg float64 `json:"capacity_kg"`
	RentalCost float64 `json:"rental_cost"`
	Rented     bool    `json:"rented"`
}

type ListVehiclesResponse struct {
	Vehicles []VehicleResponse `json:"vehicles"`
}
