package observability

import (
	"net/http"
	"strconv"
	"time"

	"cinebun/registry/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa os coletores Prometheus do processo.
// Cada instância tem seu próprio registry, então testes não colidem.
type Metrics struct {
	registry *prometheus.Registry

	registrations *prometheus.CounterVec
	activeSlots   prometheus.Gauge
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	rateDecisions *prometheus.CounterVec

	admissions    *prometheus.CounterVec
	admissionWait *prometheus.HistogramVec
	inFlight      *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cinebun",
				Subsystem: "registry",
				Name:      "registrations_total",
				Help:      "Slot registrations by tier and outcome.",
			},
			[]string{"tier", "outcome"},
		),
		activeSlots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cinebun",
			Subsystem: "registry",
			Name:      "active_slots",
			Help:      "Currently registered slots.",
		}),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cinebun",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "cinebun",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		rateDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cinebun",
				Subsystem: "ratelimit",
				Name:      "decisions_total",
				Help:      "Rate limit decisions.",
			},
			[]string{"route", "allowed"},
		),
		admissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cinebun",
				Subsystem: "admission",
				Name:      "requests_total",
				Help:      "Admission gate outcomes by scope.",
			},
			[]string{"scope", "admitted"},
		),
		admissionWait: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "cinebun",
				Subsystem: "admission",
				Name:      "wait_seconds",
				Help:      "Time spent waiting for an admission slot.",
				Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"scope"},
		),
		inFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "cinebun",
				Subsystem: "admission",
				Name:      "in_flight",
				Help:      "Requests currently holding an admission slot.",
			},
			[]string{"scope"},
		),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.registrations, m.activeSlots, m.httpRequests, m.httpDuration, m.rateDecisions,
		m.admissions, m.admissionWait, m.inFlight,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRegistration implementa domain.RegistryMetrics.
func (m *Metrics) ObserveRegistration(tier domain.Tier, outcome domain.Outcome) {
	m.registrations.WithLabelValues(tierLabel(tier), string(outcome)).Inc()
}

func (m *Metrics) SetActiveSlots(n int) {
	m.activeSlots.Set(float64(n))
}

func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	statusLabel := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(method, route, statusLabel).Inc()
	m.httpDuration.WithLabelValues(method, route, statusLabel).Observe(duration.Seconds())
}

// RecordRateDecision recebe a rota já normalizada pelo middleware.
func (m *Metrics) RecordRateDecision(route string, allowed bool) {
	m.rateDecisions.WithLabelValues(route, strconv.FormatBool(allowed)).Inc()
}

func (m *Metrics) ObserveAdmission(scope string, admitted bool, waited time.Duration) {
	m.admissions.WithLabelValues(scope, strconv.FormatBool(admitted)).Inc()
	m.admissionWait.WithLabelValues(scope).Observe(waited.Seconds())
}

func (m *Metrics) SetInFlight(scope string, n int) {
	m.inFlight.WithLabelValues(scope).Set(float64(n))
}

// tierLabel limita a cardinalidade: tiers inválidos viram "invalid".
func tierLabel(t domain.Tier) string {
	if !t.Valid() {
		return "invalid"
	}
	return t.String()
}

var (
	_ domain.RegistryMetrics   = (*Metrics)(nil)
	_ domain.RateRecorder      = (*Metrics)(nil)
	_ domain.AdmissionRecorder = (*Metrics)(nil)
)
