package executor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QueriesTotal counts executed and explained queries by outcome
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlcore_queries_total",
			Help: "Total number of queries",
		},
		[]string{"mode", "status"},
	)
	// RowsReturned counts rows handed back to callers
	RowsReturned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sqlcore_rows_returned_total",
			Help: "Total number of result rows",
		},
	)
	// RewritesTotal counts optimizer rule firings by rule
	RewritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlcore_optimizer_rewrites_total",
			Help: "Total number of optimizer rule firings",
		},
		[]string{"rule"},
	)
	// QueryDuration is the latency of executed queries
	QueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sqlcore_query_duration_seconds",
			Help:    "Query latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
