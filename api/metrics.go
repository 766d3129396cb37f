package api

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the Prometheus collectors for the HTTP surface and the
// background sweep
type Metrics struct {
	gatherer prometheus.Gatherer

	Requests  *prometheus.CounterVec
	Durations *prometheus.HistogramVec

	SweepRuns             *prometheus.CounterVec
	DeadlinesMissed       prometheus.Counter
	RemindersSent         prometheus.Counter
	ReminderFailures      prometheus.Counter
	SpeedyTrialViolations prometheus.Counter
}

// NewMetrics registers the collectors against reg, defaulting to the global
// registry when nil. Registering twice against the same registry returns the
// existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of handled HTTP requests, labeled by method, route template and status code.",
	}, []string{"method", "route", "code"}), "http_requests_total")
	if err != nil {
		return nil, err
	}
	durations, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"method", "route"}), "http_request_duration_seconds")
	if err != nil {
		return nil, err
	}
	sweeps, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "compliance_sweep_runs_total",
		Help: "Background compliance sweeps, labeled by tenant and result.",
	}, []string{"tenant", "result"}), "compliance_sweep_runs_total")
	if err != nil {
		return nil, err
	}
	missed, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "deadlines_marked_missed_total",
		Help: "Deadlines moved to missed by the sweep.",
	}), "deadlines_marked_missed_total")
	if err != nil {
		return nil, err
	}
	sent, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reminders_sent_total",
		Help: "Deadline reminders delivered.",
	}), "reminders_sent_total")
	if err != nil {
		return nil, err
	}
	failed, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reminder_failures_total",
		Help: "Deadline reminders that could not be delivered.",
	}), "reminder_failures_total")
	if err != nil {
		return nil, err
	}
	violations, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "speedy_trial_violations_total",
		Help: "Speedy-trial clocks newly flagged as violated.",
	}), "speedy_trial_violations_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		gatherer:              gatherer,
		Requests:              requests,
		Durations:             durations,
		SweepRuns:             sweeps,
		DeadlinesMissed:       missed,
		RemindersSent:         sent,
		ReminderFailures:      failed,
		SpeedyTrialViolations: violations,
	}, nil
}

// Handler exposes the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C, name string) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
			var zero C
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero C
		return zero, err
	}
	return c, nil
}
