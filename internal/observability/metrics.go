package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talkdb_http_requests_total",
			Help: "HTTP requests by matched route and status.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "talkdb_http_request_duration_seconds",
			Help:    "HTTP request latency by matched route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	translateRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talkdb_translate_requests_total",
			Help: "Total number of natural-language to SQL translations by result.",
		},
		[]string{"result"},
	)
	translateLatencyMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "talkdb_translate_latency_ms",
			Help:    "Model call latency in milliseconds.",
			Buckets: []float64{100, 250, 500, 1000, 2000, 4000, 8000, 15000, 30000, 60000},
		},
	)
	queryExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talkdb_query_executions_total",
			Help: "Total number of executed statements by outcome status.",
		},
		[]string{"status"},
	)
	queryLatencyMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "talkdb_query_latency_ms",
			Help:    "Statement execution latency in milliseconds.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		},
	)
	queryRowsReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "talkdb_query_rows_returned",
			Help:    "Rows materialized per successful statement.",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000, 10000},
		},
	)
	authRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talkdb_auth_rejections_total",
			Help: "API requests refused by the key guard by reason.",
		},
		[]string{"reason"},
	)
	seedRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talkdb_seed_rows_total",
			Help: "Rows handled by the seed generator by table and result.",
		},
		[]string{"table", "result"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDurationSeconds,
		translateRequestsTotal,
		translateLatencyMs,
		queryExecutionsTotal,
		queryLatencyMs,
		queryRowsReturned,
		seedRowsTotal,
		authRejectionsTotal,
	)
}

func ObserveTranslate(err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	translateRequestsTotal.WithLabelValues(result).Inc()
	translateLatencyMs.Observe(float64(elapsed.Milliseconds()))
}

func ObserveQuery(status string, rows int, elapsed time.Duration) {
	queryExecutionsTotal.WithLabelValues(status).Inc()
	queryLatencyMs.Observe(float64(elapsed.Milliseconds()))
	if status == "ok" {
		queryRowsReturned.Observe(float64(rows))
	}
}

func AddSeedRows(table string, inserted, skipped int) {
	if inserted > 0 {
		seedRowsTotal.WithLabelValues(table, "inserted").Add(float64(inserted))
	}
	if skipped > 0 {
		seedRowsTotal.WithLabelValues(table, "skipped").Add(float64(skipped))
	}
}

func ObserveAuthRejection(reason string) {
	authRejectionsTotal.WithLabelValues(reason).Inc()
}
