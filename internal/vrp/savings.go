package vrp

import (
	"cargo-route-service/internal/domain"
	"slices"
)

const savingsMaxPasses = 10

// saving is the Clarke-Wright saving of serving two stations on one trip
// instead of two separate depot round trips.
type saving struct {
	a, b   domain.StationID
	amount float64
}

// computeSavings scores every unordered pair of demand stations and sorts them by
// descending saving. Equal savings keep input pair order.
func computeSavings(m *DistanceMatrix, l *ledger, kmCost float64) []saving {
	n := len(l.entries)
	out := make([]saving, 0, n*(n-1)/2)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := l.entries[i], l.entries[j]
			amount := (m.toDepot[a.idx] + m.toDepot[b.idx] - m.At(a.idx, b.idx)) * kmCost
			out = append(out, saving{a: a.station.ID, b: b.station.ID, amount: amount})
		}
	}

	slices.SortStableFunc(out, func(x, y saving) int {
		switch {
		case x.amount > y.amount:
			return -1
		case x.amount < y.amount:
			return 1
		default:
			return 0
		}
	})

	return out
}

// mergeBySavings merges routes along the savings ranking. Each pass merges the first
// pair whose stations sit on different routes and whose combined weight fits the
// first route's vehicle; it stops after a pass with no merge or savingsMaxPasses passes.
func mergeBySavings(m *DistanceMatrix, routes []*domain.Route, savings []saving) ([]*domain.Route, int) {
	merges := 0

	for pass := 0; pass < savingsMaxPasses; pass++ {
		merged := false

		for _, s := range savings {
			r1 := routeVisiting(routes, s.a)
			r2 := routeVisiting(routes, s.b)
			if r1 == nil || r2 == nil || r1 == r2 {
				continue
			}
			if r1.WeightKg+r2.WeightKg > r1.CapacityKg {
				continue
			}

			absorb(m, r1, r2)
			routes = removeRoute(routes, r2)
			merges++
			merged = true
			break
		}

		if !merged {
			break
		}
	}

	return routes, merges
}

// routeVisiting returns the first route that stops at id.
func routeVisiting(routes []*domain.Route, id domain.StationID) *domain.Route {
	for _, r := range routes {
		if r.Visits(id) {
			return r
		}
	}
	return nil
}
