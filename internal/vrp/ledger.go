package vrp

import "cargo-route-service/internal/domain"

// demandEntry is the solver-owned working state of one station's demand.
// The caller's DemandRecord is never touched.
type demandEntry struct {
	station         domain.Station
	idx             int
	totalItems      int
	totalWeight     float64
	itemWeight      float64
	remainingItems  int
	remainingWeight float64
}

func (e *demandEntry) pending() bool { return e.remainingItems > 0 }

// nextUnit is the weight of the next unit to load. The last unit carries the exact
// remainder so repeated subtraction never loses or invents cargo.
func (e *demandEntry) nextUnit() float64 {
	if e.remainingItems == 1 {
		return e.remainingWeight
	}
	return e.itemWeight
}

// take removes one unit and returns its weight.
func (e *demandEntry) take() float64 {
	w := e.nextUnit()
	e.remainingItems--
	if e.remainingItems == 0 {
		e.remainingWeight = 0
	} else {
		e.remainingWeight -= w
	}
	return w
}

// takeAll removes every remaining unit.
func (e *demandEntry) takeAll() (int, float64) {
	items, weight := e.remainingItems, e.remainingWeight
	e.remainingItems = 0
	e.remainingWeight = 0
	return items, weight
}

// ledger is the working copy of all demand for a single solve, in station input order.
type ledger struct {
	entries   []*demandEntry
	byStation map[domain.StationID]*demandEntry
}

func newLedger(stations []domain.Station, demand map[domain.StationID]domain.DemandRecord, m *DistanceMatrix) *ledger {
	l := &ledger{byStation: make(map[domain.StationID]*demandEntry, len(demand))}

	for _, s := range stations {
		d, ok := demand[s.ID]
		if !ok || (d.Count <= 0 && d.WeightKg <= 0) {
			continue
		}

		idx, _ := m.Index(s.ID)
		e := &demandEntry{
			station:         s,
			idx:             idx,
			totalItems:      d.Items(),
			totalWeight:     d.WeightKg,
			itemWeight:      d.ItemWeight(),
			remainingItems:  d.Items(),
			remainingWeight: d.WeightKg,
		}
		l.entries = append(l.entries, e)
		l.byStation[s.ID] = e
	}

	return l
}

func (l *ledger) pending() []*demandEntry {
	out := make([]*demandEntry, 0, len(l.entries))
	for _, e := range l.entries {
		if e.pending() {
			out = append(out, e)
		}
	}
	return out
}

func (l *ledger) exhausted() bool {
	for _, e := range l.entries {
		if e.pending() {
			return false
		}
	}
	return true
}

func (l *ledger) remainingWeight() float64 {
	total := 0.0
	for _, e := range l.entries {
		if e.pending() {
			total += e.remainingWeight
		}
	}
	return total
}

func (l *ledger) totalWeight() float64 {
	total := 0.0
	for _, e := range l.entries {
		total += e.totalWeight
	}
	return total
}
