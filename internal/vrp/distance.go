package vrp

import (
	"cargo-route-service/internal/domain"
	"math"
)

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between a and b in kilometers.
// Malformed coordinates are not checked; NaN propagates to the result.
func HaversineKm(a, b domain.Coordinates) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// DistanceMatrix holds pairwise station distances plus each station's distance to the depot.
// Indices follow the order of the stations slice it was built from.
type DistanceMatrix struct {
	depot   domain.Coordinates
	index   map[domain.StationID]int
	dist    [][]float64
	toDepot []float64
}

// NewDistanceMatrix builds the full n×n matrix for stations.
// Each unordered pair is computed once and mirrored, so the matrix is exactly symmetric.
func NewDistanceMatrix(depot domain.Coordinates, stations []domain.Station) *DistanceMatrix {
	n := len(stations)
	m := &DistanceMatrix{
		depot:   depot,
		index:   make(map[domain.StationID]int, n),
		dist:    make([][]float64, n),
		toDepot: make([]float64, n),
	}

	for i, s := range stations {
		m.index[s.ID] = i
		m.dist[i] = make([]float64, n)
		m.toDepot[i] = HaversineKm(depot, s.Location)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := HaversineKm(stations[i].Location, stations[j].Location)
			m.dist[i][j] = d
			m.dist[j][i] = d
		}
	}

	return m
}

func (m *DistanceMatrix) Len() int { return len(m.dist) }

// At returns the distance between the stations at matrix indices i and j.
func (m *DistanceMatrix) At(i, j int) float64 { return m.dist[i][j] }

// Index returns the matrix index of station id.
func (m *DistanceMatrix) Index(id domain.StationID) (int, bool) {
	i, ok := m.index[id]
	return i, ok
}

// Between returns the distance between two stations, NaN if either is unknown.
func (m *DistanceMatrix) Between(a, b domain.StationID) float64 {
	i, okA := m.index[a]
	j, okB := m.index[b]
	if !okA || !okB {
		return math.NaN()
	}
	return m.dist[i][j]
}

// ToDepot returns the haversine distance from station id to the depot, NaN if unknown.
func (m *DistanceMatrix) ToDepot(id domain.StationID) float64 {
	i, ok := m.index[id]
	if !ok {
		return math.NaN()
	}
	return m.toDepot[i]
}

// Leg returns the distance of a single hop between two waypoints.
// Hops touching the depot use the depot vector since the depot has no matrix index.
func (m *DistanceMatrix) Leg(from, to domain.Waypoint) float64 {
	a, aIsStation := from.StationID()
	b, bIsStation := to.StationID()

	switch {
	case !aIsStation && !bIsStation:
		return 0
	case !aIsStation:
		return m.ToDepot(b)
	case !bIsStation:
		return m.ToDepot(a)
	default:
		return m.Between(a, b)
	}
}

// RouteDistance sums the legs of an ordered stop sequence.
func (m *DistanceMatrix) RouteDistance(stops []domain.Waypoint) float64 {
	total := 0.0
	for i := 0; i+1 < len(stops); i++ {
		total += m.Leg(stops[i], stops[i+1])
	}
	return total
}
