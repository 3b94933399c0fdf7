package handlers

import (
	"cargo-route-service/internal/api/dto"
	"cargo-route-service/internal/domain"
	"cargo-route-service/internal/platform/obs"
	"cargo-route-service/internal/ports"
	"cargo-route-service/internal/services"
	"errors"
	"log"
	"net/http"
	"strings"
)

type PlanHandler struct {
	Planner     *services.Planner
	DefaultMode domain.FleetMode
}

// Create plans all pending cargo with the requested fleet mode.
// An empty body uses the default mode.
func (h *PlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req dto.PlanRequest
	if r.ContentLength != 0 {
		if !decodeJSON(w, r, &req) {
			return
		}
	}

	mode := h.DefaultMode
	if pt := strings.TrimSpace(req.ProblemType); pt != "" {
		parsed, err := domain.ParseFleetMode(strings.ToLower(pt))
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "problem_type must be one of fixed, elastic, unlimited")
			return
		}
		mode = parsed
	}

	plan, err := h.Planner.Plan(r.Context(), mode)
	if errors.Is(err, services.ErrNoDemand) {
		writeJSON(w, r, http.StatusOK, dto.EmptyPlanResponse{
			Message: "no pending cargo to plan",
			Routes:  []dto.RouteResponse{},
		})
		return
	}
	if err != nil {
		log.Printf("req_id=%s plan routes failed: %v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, toPlanResponse(plan))
}

// Get returns a stored plan by id.
func (h *PlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "plan id is required")
		return
	}

	plan, err := h.Planner.GetPlan(r.Context(), id)
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "plan not found")
		return
	}
	if err != nil {
		log.Printf("req_id=%s get plan failed: %v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, toPlanResponse(plan))
}

// Distances and costs are rounded to 2 decimals and utilization to 1 for presentation only.
func toPlanResponse(p *domain.Plan) dto.PlanResponse {
	res := dto.PlanResponse{
		ID:                    p.ID,
		ProblemType:           string(p.Mode),
		Routes:                make([]dto.RouteResponse, 0, len(p.Routes)),
		TotalCost:             round(p.TotalCost, 2),
		VehiclesUsed:          p.VehiclesUsed,
		NewVehiclesRented:     p.NewVehiclesRented,
		RentedVehicles:        make([]dto.VehicleResponse, 0, len(p.RentedVehicles)),
		Rejected:              make([]dto.RejectionResponse, 0, len(p.Rejected)),
		Skipped:               make([]dto.SkippedVehicleResponse, 0, len(p.Skipped)),
		ReoptimizationSavings: round(p.ReoptimizationSavings, 2),
		Summary: dto.SummaryResponse{
			TotalDistanceKm:       round(p.Summary.TotalDistanceKm, 2),
			TotalWeightKg:         round(p.Summary.TotalWeightKg, 2),
			AcceptedWeightKg:      round(p.Summary.AcceptedWeightKg, 2),
			RejectedWeightKg:      round(p.Summary.RejectedWeightKg, 2),
			AverageUtilization:    round(p.Summary.AverageUtilization, 1),
			AverageCostPerVehicle: round(p.Summary.AverageCostPerVehicle, 2),
			RejectedCargoCount:    p.Summary.RejectedCargoCount,
		},
		CreatedAt: p.CreatedAt,
	}

	for _, r := range p.Routes {
		route := dto.RouteResponse{
			VehicleID:   string(r.VehicleID),
			VehicleName: r.VehicleName,
			Rented:      r.Rented,
			Stops:       make([]string, 0, len(r.Stops)),
			Loads:       make([]dto.RouteLoadResponse, 0, len(r.Loads)),
			DistanceKm:  round(r.DistanceKm, 2),
			WeightKg:    round(r.WeightKg, 2),
			Items:       r.Items,
			CapacityKg:  r.CapacityKg,
			Utilization: round(r.Utilization, 1),
			Cost: dto.CostResponse{
				Fuel:     round(r.Cost.Fuel, 2),
				Distance: round(r.Cost.Distance, 2),
				Rental:   round(r.Cost.Rental, 2),
				Total:    round(r.Cost.Total, 2),
			},
		}
		for _, s := range r.Stops {
			route.Stops = append(route.Stops, s.String())
		}
		for _, l := range r.Loads {
			route.Loads = append(route.Loads, dto.RouteLoadResponse{
				StationID: int64(l.StationID),
				Items:     l.Items,
				WeightKg:  round(l.WeightKg, 2),
				Complete:  l.Complete,
			})
		}
		res.Routes = append(res.Routes, route)
	}

	for _, v := range p.RentedVehicles {
		res.RentedVehicles = append(res.RentedVehicles, toVehicleResponse(v))
	}
	for _, rj := range p.Rejected {
		res.Rejected = append(res.Rejected, dto.RejectionResponse{
			StationID: int64(rj.StationID),
			WeightKg:  round(rj.WeightKg, 2),
			Items:     rj.Items,
			Reason:    string(rj.Reason),
		})
	}
	for _, s := range p.Skipped {
		res.Skipped = append(res.Skipped, dto.SkippedVehicleResponse{VehicleID: string(s.VehicleID), Reason: s.Reason})
	}

	return res
}
