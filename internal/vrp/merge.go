package vrp

import "cargo-route-service/internal/domain"

// spliceStops joins two depot-to-depot routes: dst without its closing depot,
// then src's stations (skipping any dst already visits), then the depot.
func spliceStops(dst, src []domain.Waypoint) []domain.Waypoint {
	seen := make(map[domain.StationID]struct{}, len(dst))
	out := make([]domain.Waypoint, 0, len(dst)+len(src))

	for _, w := range dst {
		if id, ok := w.StationID(); ok {
			seen[id] = struct{}{}
			out = append(out, w)
		} else if len(out) == 0 {
			out = append(out, w)
		}
	}

	for _, w := range src {
		id, ok := w.StationID()
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, w)
	}

	return append(out, domain.Depot())
}

// spliceLoads combines per-station loads, summing stations both routes load from.
func spliceLoads(dst, src []domain.StationLoad) []domain.StationLoad {
	out := append([]domain.StationLoad(nil), dst...)
	idx := make(map[domain.StationID]int, len(out))
	for i, l := range out {
		idx[l.StationID] = i
	}

	for _, l := range src {
		if i, ok := idx[l.StationID]; ok {
			out[i].Items += l.Items
			out[i].WeightKg += l.WeightKg
			out[i].Complete = out[i].Complete || l.Complete
			continue
		}
		idx[l.StationID] = len(out)
		out = append(out, l)
	}

	return out
}

// absorb folds src into dst and refreshes dst's distance, weight and utilization.
// Cost is left to the caller.
func absorb(m *DistanceMatrix, dst, src *domain.Route) {
	dst.Stops = spliceStops(dst.Stops, src.Stops)
	dst.Loads = spliceLoads(dst.Loads, src.Loads)
	dst.DistanceKm = m.RouteDistance(dst.Stops)
	dst.WeightKg += src.WeightKg
	dst.Items += src.Items
	dst.Utilization = domain.Utilization(dst.WeightKg, dst.CapacityKg)
}

func removeRoute(routes []*domain.Route, r *domain.Route) []*domain.Route {
	out := routes[:0]
	for _, x := range routes {
		if x != r {
			out = append(out, x)
		}
	}
	return out
}
