package vrp

import "cargo-route-service/internal/domain"

// RouteCost prices distanceKm driven by v.
// Fuel is charged per kilometer at FuelPricePerLiter; rented vehicles add their flat rental cost.
func RouteCost(distanceKm float64, costs domain.CostParams, v domain.Vehicle) domain.CostBreakdown {
	c := domain.CostBreakdown{
		Fuel:     distanceKm * costs.FuelPricePerLiter,
		Distance: distanceKm * costs.KmCost,
		Rental:   v.RentalCharge(),
	}
	c.Total = c.Fuel + c.Distance + c.Rental
	return c
}

// reprice recomputes r's cost from its current distance. Running it twice on an
// unchanged route yields identical values.
func reprice(r *domain.Route, costs domain.CostParams, v domain.Vehicle) {
	r.Cost = RouteCost(r.DistanceKm, costs, v)
}

func totalCost(routes []*domain.Route) float64 {
	total := 0.0
	for _, r := range routes {
		total += r.Cost.Total
	}
	return total
}
