package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quant_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quant_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Engine metrics
	GoalSimulationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quant_goal_simulations_total",
			Help: "Total number of goal Monte Carlo simulations run",
		},
		[]string{"result"}, // completed, invalid_input
	)

	GoalSimulationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quant_goal_simulation_duration_seconds",
			Help:    "Monte Carlo simulation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
	)

	PortfolioValuationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quant_portfolio_valuations_total",
			Help: "Total number of portfolio revaluation runs",
		},
		[]string{"entry_point"}, // analyze, rebalance
	)

	// External collaborator metrics
	AdvisoryCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quant_advisory_calls_total",
			Help: "Total number of AI advisory narrative calls",
		},
		[]string{"provider", "result"}, // ok, degraded, skipped
	)

	AdvisoryCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quant_advisory_call_duration_seconds",
			Help:    "AI advisory call duration in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		},
		[]string{"provider"},
	)

	QuoteFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quant_quote_fetches_total",
			Help: "Total number of market data quote fetches",
		},
		[]string{"source", "result"}, // source: cache, upstream
	)

	CircuitBreakerStateGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "quant_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"service"},
	)
)
