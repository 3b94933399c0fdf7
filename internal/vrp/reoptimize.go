package vrp

import (
	"cargo-route-service/internal/domain"
	"math"
	"slices"
)

// Share of routes, ranked by cost per km, that get a second chance to be folded away.
const expensiveRouteShare = 0.3

// reoptimizeByCost tries to fold each of the most expensive routes (per km) into
// another route. A merge happens when the combined load fits the expensive route's
// vehicle and the combined route costs less than the two routes apart. Routes must
// be priced on entry. Returns the surviving routes in their original order and the
// total saving realized.
func reoptimizeByCost(
	m *DistanceMatrix,
	routes []*domain.Route,
	costs domain.CostParams,
	vehicleOf func(*domain.Route) domain.Vehicle,
) ([]*domain.Route, float64) {
	if len(routes) < 2 {
		return routes, 0
	}

	ranked := append([]*domain.Route(nil), routes...)
	slices.SortStableFunc(ranked, func(a, b *domain.Route) int {
		ca, cb := a.CostPerKm(), b.CostPerKm()
		switch {
		case ca > cb:
			return -1
		case ca < cb:
			return 1
		default:
			return 0
		}
	})

	count := int(math.Ceil(float64(len(ranked)) * expensiveRouteShare))
	if count < 1 {
		count = 1
	}
	expensive := append([]*domain.Route(nil), ranked[:count]...)

	removed := make(map[*domain.Route]bool)
	saved := 0.0

	for _, r := range expensive {
		if removed[r] {
			continue
		}
		v := vehicleOf(r)

		for _, o := range ranked {
			if o == r || removed[o] {
				continue
			}
			if r.WeightKg+o.WeightKg > r.CapacityKg {
				continue
			}

			stops := spliceStops(r.Stops, o.Stops)
			combined := RouteCost(m.RouteDistance(stops), costs, v)
			before := r.Cost.Total + o.Cost.Total
			if combined.Total >= before {
				continue
			}

			absorb(m, r, o)
			r.Cost = combined
			saved += before - combined.Total
			removed[o] = true
			break
		}
	}

	out := make([]*domain.Route, 0, len(routes))
	for _, r := range routes {
		if !removed[r] {
			out = append(out, r)
		}
	}
	return out, saved
}
