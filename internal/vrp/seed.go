package vrp

import "math"

// Score weights for choosing where a route starts: close to the depot, central
// among the other pending stations, and heavy.
const (
	seedDepotWeight  = 0.3
	seedSpreadWeight = 0.4
	seedCargoWeight  = 0.3
)

// selectSeed returns the pending station with the lowest start score among those
// eligible for the current vehicle. The mean spread is taken over every other
// pending station, eligible or not. Ties keep the first station in input order.
func selectSeed(m *DistanceMatrix, l *ledger, eligible func(*demandEntry) bool) (*demandEntry, bool) {
	pending := l.pending()
	if len(pending) == 0 {
		return nil, false
	}

	var best *demandEntry
	bestScore := math.Inf(1)

	for _, e := range pending {
		if !eligible(e) {
			continue
		}

		score := seedScore(m, e, pending)
		if best == nil || score < bestScore {
			best = e
			bestScore = score
		}
	}

	return best, best != nil
}

func seedScore(m *DistanceMatrix, e *demandEntry, pending []*demandEntry) float64 {
	spread := 0.0
	others := 0
	for _, o := range pending {
		if o == e {
			continue
		}
		spread += m.At(e.idx, o.idx)
		others++
	}
	if others > 0 {
		spread /= float64(others)
	}

	return seedDepotWeight*m.toDepot[e.idx] + seedSpreadWeight*spread - seedCargoWeight*e.remainingWeight
}
