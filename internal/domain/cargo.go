package domain

import "time"

type CargoStatus string

const (
	CargoPending  CargoStatus = "pending"
	CargoAssigned CargoStatus = "assigned"
)

// Represents a single cargo submission waiting at a station.
// A request stays pending until a stored plan accepts its station's demand.
type CargoRequest struct {
	ID        int64
	StationID StationID
	Count     int
	WeightKg  float64
	Status    CargoStatus
	PlanID    string
	CreatedAt time.Time
}

// DemandRecord is the aggregate of all pending cargo at one station.
type DemandRecord struct {
	StationID StationID
	Count     int
	WeightKg  float64
}

// ItemWeight returns the weight of one indivisible unit of the station's cargo.
// A record without an item count is treated as a single item.
func (d DemandRecord) ItemWeight() float64 {
	if d.Count <= 0 {
		return d.WeightKg
	}
	return d.WeightKg / float64(d.Count)
}

// Items returns the number of indivisible units, never less than one.
func (d DemandRecord) Items() int {
	if d.Count <= 0 {
		return 1
	}
	return d.Count
}
