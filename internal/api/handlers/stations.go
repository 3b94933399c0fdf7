package handlers

import (
	"cargo-route-service/internal/api/dto"
	"cargo-route-service/internal/domain"
	"cargo-route-service/internal/platform/obs"
	"cargo-route-service/internal/ports"
	"errors"
	"log"
	"net/http"
	"strings"
)

type StationHandler struct {
	Repo ports.StationRepository
}

// Stations lists stations on GET and creates one on POST.
func (h *StationHandler) Stations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		methodNotAllowed(w, r, "GET, POST")
	}
}

func (h *StationHandler) list(w http.ResponseWriter, r *http.Request) {
	stations, err := h.Repo.ListStations(r.Context())
	if err != nil {
		log.Printf("req_id=%s list stations failed: %v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListStationsResponse{Stations: make([]dto.StationResponse, 0, len(stations))}
	for _, s := range stations {
		res.Stations = append(res.Stations, toStationResponse(s))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *StationHandler) create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateStationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		writeError(w, r, http.StatusBadRequest, "latitude and longitude are required")
		return
	}
	if *req.Latitude < -90 || *req.Latitude > 90 || *req.Longitude < -180 || *req.Longitude > 180 {
		writeError(w, r, http.StatusBadRequest, "coordinates out of range")
		return
	}

	created, err := h.Repo.CreateStation(r.Context(), domain.Station{
		Name:     name,
		Location: domain.Coordinates{Lat: *req.Latitude, Lon: *req.Longitude},
	})
	if errors.Is(err, ports.ErrConflict) {
		writeError(w, r, http.StatusConflict, "station name already exists")
		return
	}
	if err != nil {
		log.Printf("req_id=%s create station failed: %v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusCreated, toStationResponse(created))
}

func toStationResponse(s domain.Station) dto.StationResponse {
	return dto.StationResponse{
		ID:        int64(s.ID),
		Name:      s.Name,
		Latitude:  s.Location.Lat,
		Longitude: s.Location.Lon,
	}
}
