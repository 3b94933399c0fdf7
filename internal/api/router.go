package api

import (
	"cargo-route-service/internal/api/handlers"
	"cargo-route-service/internal/domain"
	"cargo-route-service/internal/platform/metrics"
	"cargo-route-service/internal/ports"
	"cargo-route-service/internal/services"
	"net/http"

	"golang.org/x/time/rate"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Repo        ports.Repository
	Planner     *services.Planner
	Broker      ports.EventBroker
	DefaultMode domain.FleetMode
	// PlanLimiter throttles POST /plans; nil disables throttling.
	PlanLimiter *rate.Limiter
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	stationHandler := &handlers.StationHandler{Repo: d.Repo}
	vehicleHandler := &handlers.VehicleHandler{Repo: d.Repo}
	cargoHandler := &handlers.CargoHandler{Repo: d.Repo}
	planHandler := &handlers.PlanHandler{Planner: d.Planner, DefaultMode: d.DefaultMode}
	eventsHandler := &handlers.EventsHandler{Broker: d.Broker}

	mux.HandleFunc("/health", handlers.Health)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/stations", stationHandler.Stations)
	mux.HandleFunc("/vehicles", vehicleHandler.List)
	mux.HandleFunc("/cargo", cargoHandler.Cargo)
	mux.Handle("/plans", rateLimit(d.PlanLimiter, http.HandlerFunc(planHandler.Create)))
	mux.HandleFunc("/plans/events", eventsHandler.Stream)
	mux.HandleFunc("/plans/{id}", planHandler.Get)

	return requestIDMiddleware(loggingMiddleware(metricsMiddleware(mux)))
}
