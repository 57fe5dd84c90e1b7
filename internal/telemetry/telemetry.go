package telemetry

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Plan outcomes recorded on the plans_total counter.
const (
	PlanOutcomeLLM       = "llm"
	PlanOutcomeHeuristic = "heuristic"
	PlanOutcomeFallback  = "fallback"
)

// Telemetry owns the process metric registry. All collectors hang off a
// private registry so tests can build isolated instances.
type Telemetry struct {
	registry *prometheus.Registry

	plansTotal       *prometheus.CounterVec
	providerRequests *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

func New() *Telemetry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	t := &Telemetry{
		registry: reg,
		plansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "homeboard_plans_total",
			Help: "Tile plans produced, labelled by how the final tile was chosen.",
		}, []string{"outcome"}),
		providerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "homeboard_provider_requests_total",
			Help: "Outbound upstream requests by provider and result.",
		}, []string{"provider", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "homeboard_request_duration_seconds",
			Help:    "Handler latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
	reg.MustRegister(t.plansTotal, t.providerRequests, t.requestDuration)
	return t
}

// RecordPlan counts one produced plan by outcome.
func (t *Telemetry) RecordPlan(outcome string) {
	t.plansTotal.WithLabelValues(outcome).Inc()
}

// RecordProviderRequest counts one upstream call. status is "ok" or "error".
func (t *Telemetry) RecordProviderRequest(provider, status string) {
	t.providerRequests.WithLabelValues(provider, status).Inc()
}

// ObserveRequest records handler latency for a route.
func (t *Telemetry) ObserveRequest(route string, d time.Duration) {
	t.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Handler serves the registry in Prometheus exposition format.
func (t *Telemetry) Handler() http.Handler {
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}

// TraceID returns a fresh id for correlating a request across log lines.
func TraceID() string {
	return uuid.NewString()
}
