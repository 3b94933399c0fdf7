package services

import (
	"cargo-route-service/internal/domain"
	"slices"
)

// AggregateDemand sums pending cargo per station. Requests that are not
// pending or carry no weight are ignored.
func AggregateDemand(cargo []domain.CargoRequest) map[domain.StationID]domain.DemandRecord {
	demand := make(map[domain.StationID]domain.DemandRecord)
	for _, c := range cargo {
		if c.Status != domain.CargoPending || c.WeightKg <= 0 {
			continue
		}

		d := demand[c.StationID]
		d.StationID = c.StationID
		d.Count += max(c.Count, 1)
		d.WeightKg += c.WeightKg
		demand[c.StationID] = d
	}
	return demand
}

// carriedCargo returns the ids of the loaded requests that fed the demand of
// the accepted stations, in load order.
func carriedCargo(cargo []domain.CargoRequest, accepted []domain.StationID) []int64 {
	ids := make([]int64, 0, len(cargo))
	for _, c := range cargo {
		if c.Status != domain.CargoPending || c.WeightKg <= 0 {
			continue
		}
		if slices.Contains(accepted, c.StationID) {
			ids = append(ids, c.ID)
		}
	}
	return ids
}
