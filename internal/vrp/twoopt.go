package vrp

import "cargo-route-service/internal/domain"

const (
	// A reversal is kept only if it shortens the route by more than this.
	twoOptEpsilonKm = 0.01
	twoOptMaxPasses = 50
)

// improve2Opt shortens a depot-to-depot stop sequence by reversing interior segments.
// Each pass applies the first improving reversal and restarts; the search stops
// after a pass without improvement or after twoOptMaxPasses passes. The returned
// distance is never greater than the input's.
func improve2Opt(m *DistanceMatrix, stops []domain.Waypoint) ([]domain.Waypoint, float64) {
	best := append([]domain.Waypoint(nil), stops...)
	bestDist := m.RouteDistance(best)

	// Endpoints stay fixed at the depot; interior positions are 1..len-2.
	last := len(best) - 2
	if last < 2 {
		return best, bestDist
	}

	for pass := 0; pass < twoOptMaxPasses; pass++ {
		improved := false

		for i := 1; i < last && !improved; i++ {
			for k := i + 1; k <= last; k++ {
				cand := reverseSegment(best, i, k)
				d := m.RouteDistance(cand)
				if d < bestDist-twoOptEpsilonKm {
					best = cand
					bestDist = d
					improved = true
					break
				}
			}
		}

		if !improved {
			break
		}
	}

	return best, bestDist
}

// reverseSegment returns a copy of stops with positions i..k reversed.
func reverseSegment(stops []domain.Waypoint, i, k int) []domain.Waypoint {
	out := append([]domain.Waypoint(nil), stops...)
	for a, b := i, k; a < b; a, b = a+1, b-1 {
		out[a], out[b] = out[b], out[a]
	}
	return out
}
