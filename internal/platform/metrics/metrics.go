package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry is the dedicated Prometheus registry for the API.
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// PlansTotal counts planning runs by fleet mode and outcome (ok, empty, error).
	PlansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "plans_total", Help: "Planning runs by fleet mode and outcome."},
		[]string{"mode", "outcome"},
	)
	SolveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "plan_solve_duration_seconds", Help: "Route solver duration in seconds.", Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 15}},
		[]string{"mode"},
	)
	RoutesPlanned = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "routes_planned_total", Help: "Routes in stored plans."},
		[]string{"mode"},
	)
	VehiclesRented = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "vehicles_rented_total", Help: "Vehicles rented by elastic plans."},
	)
	RejectedCargoKg = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "rejected_cargo_kg_total", Help: "Cargo weight rejected by fixed-fleet plans."},
	)
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "plan_events_published_total", Help: "Plan events by publish status."},
		[]string{"status"},
	)
)

var regOnce sync.Once

// RegisterDefault registers all collectors on Registry. Safe to call repeatedly.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(
			HTTPRequests,
			HTTPDuration,
			PlansTotal,
			SolveDuration,
			RoutesPlanned,
			VehiclesRented,
			RejectedCargoKg,
			EventsPublished,
		)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// Handler serves Registry in the Prometheus exposition format.
func Handler() http.Handler {
	RegisterDefault()
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
