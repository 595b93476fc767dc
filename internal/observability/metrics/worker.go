package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry
	service  string

	processTotal    *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	processInFlight prometheus.Gauge
	queueLag        *prometheus.HistogramVec
	clausesFound    *prometheus.HistogramVec
	llmCallsTotal   *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legalease",
			Subsystem: "worker",
			Name:      "contract_process_total",
			Help:      "Total processed contracts by status.",
		},
		[]string{"service", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "legalease",
			Subsystem: "worker",
			Name:      "contract_process_duration_seconds",
			Help:      "Contract processing duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "legalease",
			Subsystem: "worker",
			Name:      "contract_process_in_flight",
			Help:      "Number of in-flight contract processing tasks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "legalease",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between contract upload and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)
	clausesFound := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "legalease",
			Subsystem: "worker",
			Name:      "clauses_found",
			Help:      "Distribution of clause instances found per contract.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 34},
		},
		[]string{"service"},
	)
	llmCallsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legalease",
			Subsystem: "worker",
			Name:      "llm_calls_total",
			Help:      "Total LLM calls by operation and outcome.",
		},
		[]string{"service", "operation", "outcome"},
	)

	registry.MustRegister(
		processTotal,
		processDuration,
		processInFlight,
		queueLag,
		clausesFound,
		llmCallsTotal,
	)

	return &WorkerMetrics{
		registry:        registry,
		service:         service,
		processTotal:    processTotal,
		processDuration: processDuration,
		processInFlight: processInFlight,
		queueLag:        queueLag,
		clausesFound:    clausesFound,
		llmCallsTotal:   llmCallsTotal,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartContract() {
	m.processInFlight.Inc()
}

func (m *WorkerMetrics) FinishContract(duration time.Duration, err error) {
	m.processInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.processTotal.WithLabelValues(m.service, status).Inc()
	m.processDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())
}

// QueueLag, ClausesFound and LLMCall implement ports.PipelineObserver.

func (m *WorkerMetrics) QueueLag(lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(m.service).Observe(lag.Seconds())
}

func (m *WorkerMetrics) ClausesFound(total int) {
	m.clausesFound.WithLabelValues(m.service).Observe(float64(total))
}

func (m *WorkerMetrics) LLMCall(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.llmCallsTotal.WithLabelValues(m.service, operation, outcome).Inc()
}
