package handlers

import (
	"cargo-route-service/internal/api/dto"
	"cargo-route-service/internal/domain"
	"cargo-route-service/internal/platform/obs"
	"cargo-route-service/internal/ports"
	"log"
	"net/http"
)

// VehicleHandler exposes the active roster.
type VehicleHandler struct {
	Repo ports.VehicleRepository
}

func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	vehicles, err := h.Repo.ListActiveVehicles(r.Context())
	if err != nil {
		log.Printf("req_id=%s list vehicles failed: %v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListVehiclesResponse{Vehicles: make([]dto.VehicleResponse, 0, len(vehicles))}
	for _, v := range vehicles {
		res.Vehicles = append(res.Vehicles, toVehicleResponse(v))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func toVehicleResponse(v domain.Vehicle) dto.VehicleResponse {
	return dto.VehicleResponse{
		ID:         string(v.ID),
		Name:       v.Name,
		CapacityKg: v.CapacityKg,
		RentalCost: round(v.RentalCost, 2),
		Rented:     v.Rented,
	}
}
