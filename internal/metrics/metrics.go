package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagila_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "route", "status"})

	ReportQueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagila_report_queries_total",
		Help: "Report queries by outcome",
	}, []string{"outcome"})

	ReportQueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pagila_report_query_duration_seconds",
		Help:    "Time spent connecting, executing and reading a report query",
		Buckets: prometheus.DefBuckets,
	})

	// DBOpenConnections returns to zero after every query.
	DBOpenConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pagila_db_open_connections",
		Help: "Database connections currently held by the data access layer",
	})

	ReportRendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagila_report_renders_total",
		Help: "Report renders by report, metric and outcome",
	}, []string{"report", "metric", "outcome"})
)
