package handlers

import (
	"cargo-route-service/internal/api/dto"
	"cargo-route-service/internal/domain"
	"cargo-route-service/internal/platform/obs"
	"cargo-route-service/internal/ports"
	"errors"
	"log"
	"net/http"
)

type CargoHandler struct {
	Repo ports.CargoRepository
}

// Cargo lists pending cargo on GET and records a submission on POST.
func (h *CargoHandler) Cargo(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		methodNotAllowed(w, r, "GET, POST")
	}
}

func (h *CargoHandler) list(w http.ResponseWriter, r *http.Request) {
	cargo, err := h.Repo.ListPendingCargo(r.Context())
	if err != nil {
		log.Printf("req_id=%s list cargo failed: %v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListCargoResponse{Cargo: make([]dto.CargoResponse, 0, len(cargo))}
	for _, c := range cargo {
		res.Cargo = append(res.Cargo, toCargoResponse(c))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *CargoHandler) create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCargoRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.StationID <= 0 {
		writeError(w, r, http.StatusBadRequest, "station_id is required")
		return
	}
	if req.CargoCount < 1 {
		writeError(w, r, http.StatusBadRequest, "cargo_count must be at least 1")
		return
	}
	if req.CargoWeightKg <= 0 {
		writeError(w, r, http.StatusBadRequest, "cargo_weight_kg must be positive")
		return
	}

	created, err := h.Repo.CreateCargo(r.Context(), domain.CargoRequest{
		StationID: domain.StationID(req.StationID),
		Count:     req.CargoCount,
		WeightKg:  req.CargoWeightKg,
	})
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "station not found")
		return
	}
	if err != nil {
		log.Printf("req_id=%s create cargo failed: %v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusCreated, toCargoResponse(created))
}

func toCargoResponse(c domain.CargoRequest) dto.CargoResponse {
	return dto.CargoResponse{
		ID:            c.ID,
		StationID:     int64(c.StationID),
		CargoCount:    c.Count,
		CargoWeightKg: c.WeightKg,
		Status:        string(c.Status),
		CreatedAt:     c.CreatedAt,
	}
}
