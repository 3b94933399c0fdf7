package dto

import "time"

type CreateCargoRequest struct {
	StationID     int64   `json:"station_id"`
	CargoCount    int     `json:"cargo_count"`
	CargoWeightKg float64 `json:"cargo_weight_kg"`
}

type CargoResponse struct {
	ID            int64     `json:"id"`
	StationID     int64     `json:"station_id"`
	CargoCount    int       `json:"cargo_count"`
	CargoWeightKg float64   `json:"cargo_weight_kg"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

type ListCargoResponse struct {
	Cargo []CargoResponse `json:"cargo"`
}
