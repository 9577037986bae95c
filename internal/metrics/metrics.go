package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upload metrics
var (
	// UploadsAcceptedTotal counts files that passed the type filter, by kind.
	UploadsAcceptedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uploads_accepted_total",
			Help: "Uploaded files accepted by the type filter, by image kind",
		},
		[]string{"kind"},
	)

	// UploadsRejectedTotal counts files silently dropped by the type filter.
	UploadsRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "uploads_rejected_total",
			Help: "Uploaded files dropped because their MIME type is not accepted",
		},
	)
)

// Conversion metrics
var (
	// ConversionsTotal counts generation runs by final state
	ConversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversions_total",
			Help: "PDF generation runs by outcome (done/failed/rejected)",
		},
		[]string{"outcome"},
	)

	// ConversionDuration tracks generation latency in seconds
	ConversionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "conversion_duration_seconds",
			Help:    "PDF generation duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	// ConversionPages tracks pages per generated document
	ConversionPages = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "conversion_pages",
			Help:    "Pages per generated document",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
		},
	)
)

// Workspace metrics
var (
	// WorkspacesActive tracks the number of live workspaces
	WorkspacesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "workspaces_active",
			Help: "Number of live workspaces",
		},
	)

	// WorkspacesEvictedTotal counts idle workspaces evicted by the TTL sweep
	WorkspacesEvictedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "workspaces_evicted_total",
			Help: "Idle workspaces evicted by the TTL sweep",
		},
	)

	// PreviewsOutstanding tracks preview handles currently allocated.
	// Every removal path must release its handles; a climbing gauge here
	// means a leak.
	PreviewsOutstanding = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "previews_outstanding",
			Help: "Preview handles currently allocated",
		},
	)
)

// Progress metrics
var (
	// ProgressClientsConnected tracks websocket clients receiving progress
	ProgressClientsConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "progress_clients_connected",
			Help: "WebSocket clients currently subscribed to conversion progress",
		},
	)
)
