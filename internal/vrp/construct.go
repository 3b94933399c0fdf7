package vrp

import (
	"cargo-route-service/internal/domain"
	"math"
)

// routeBuilder accumulates stops and loads while a route is constructed.
type routeBuilder struct {
	vehicle domain.Vehicle
	stops   []domain.Waypoint
	loads   []domain.StationLoad
	loadIdx map[domain.StationID]int
	weight  float64
	items   int
}

func newRouteBuilder(v domain.Vehicle) *routeBuilder {
	return &routeBuilder{
		vehicle: v,
		stops:   []domain.Waypoint{domain.Depot()},
		loadIdx: make(map[domain.StationID]int),
	}
}

// visit appends e to the stop sequence the first time it is loaded from.
func (b *routeBuilder) visit(e *demandEntry) {
	if _, ok := b.loadIdx[e.station.ID]; ok {
		return
	}
	b.loadIdx[e.station.ID] = len(b.loads)
	b.loads = append(b.loads, domain.StationLoad{StationID: e.station.ID})
	b.stops = append(b.stops, domain.StationStop(e.station.ID))
}

func (b *routeBuilder) load(e *demandEntry, items int, weight float64) {
	b.visit(e)
	l := &b.loads[b.loadIdx[e.station.ID]]
	l.Items += items
	l.WeightKg += weight
	l.Complete = !e.pending()
	b.items += items
	b.weight += weight
}

func (b *routeBuilder) last() domain.Waypoint { return b.stops[len(b.stops)-1] }

func (b *routeBuilder) build(m *DistanceMatrix) *domain.Route {
	stops := append(b.stops, domain.Depot())
	return &domain.Route{
		VehicleID:   b.vehicle.ID,
		VehicleName: b.vehicle.Name,
		Rented:      b.vehicle.Rented,
		Stops:       stops,
		Loads:       b.loads,
		DistanceKm:  m.RouteDistance(stops),
		WeightKg:    b.weight,
		Items:       b.items,
		CapacityKg:  b.vehicle.CapacityKg,
		Utilization: domain.Utilization(b.weight, b.vehicle.CapacityKg),
	}
}

// construct builds a capacity-aware nearest-neighbour route for v starting at seed,
// consuming demand from the ledger. It returns nil when the seed's smallest
// indivisible unit does not fit the vehicle at all.
func construct(m *DistanceMatrix, l *ledger, seed *demandEntry, v domain.Vehicle, split bool) *domain.Route {
	if split {
		return constructSplit(m, l, seed, v)
	}
	return constructWhole(m, l, seed, v)
}

func constructWhole(m *DistanceMatrix, l *ledger, seed *demandEntry, v domain.Vehicle) *domain.Route {
	if !seed.pending() || !v.Fits(0, seed.remainingWeight) {
		return nil
	}

	b := newRouteBuilder(v)
	items, weight := seed.takeAll()
	b.load(seed, items, weight)
	current := seed

	for {
		next := nearest(m, l, current, func(e *demandEntry) bool {
			return v.Fits(b.weight, e.remainingWeight)
		})
		if next == nil {
			break
		}

		items, weight := next.takeAll()
		b.load(next, items, weight)
		current = next
	}

	return b.build(m)
}

func constructSplit(m *DistanceMatrix, l *ledger, seed *demandEntry, v domain.Vehicle) *domain.Route {
	if !seed.pending() || !v.Fits(0, seed.nextUnit()) {
		return nil
	}

	b := newRouteBuilder(v)
	for seed.pending() && v.Fits(b.weight, seed.nextUnit()) {
		b.load(seed, 1, seed.take())
	}

	for {
		id, _ := b.last().StationID()
		current := l.byStation[id]

		next := nearest(m, l, current, func(e *demandEntry) bool {
			return v.Fits(b.weight, e.nextUnit())
		})
		if next == nil {
			break
		}

		b.load(next, 1, next.take())
	}

	return b.build(m)
}

// nearest returns the closest pending station to current that passes fits.
// Equal distances keep the first station in input order.
func nearest(m *DistanceMatrix, l *ledger, current *demandEntry, fits func(*demandEntry) bool) *demandEntry {
	var best *demandEntry
	bestDist := math.Inf(1)

	for _, e := range l.entries {
		if !e.pending() || !fits(e) {
			continue
		}

		d := m.At(current.idx, e.idx)
		if d < bestDist {
			best = e
			bestDist = d
		}
	}

	return best
}
