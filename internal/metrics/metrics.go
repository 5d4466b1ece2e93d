// Package metrics defines the Prometheus metrics exported on /metrics
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinema_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinema_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Relocation metrics
var (
	RelocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinema_video_relocations_total",
			Help: "Video relocations on category change by outcome",
		},
		[]string{"outcome"}, // "moved", "not_found", "failed"
	)
)

// Upload metrics
var (
	UploadChunksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinema_upload_chunks_total",
			Help: "Received upload chunks by result",
		},
		[]string{"result"}, // "accepted", "duplicate", "rejected", "error"
	)

	UploadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinema_upload_bytes_total",
			Help: "Bytes written to upload temp files",
		},
	)

	UploadsCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinema_uploads_completed_total",
			Help: "Uploads committed to a category folder",
		},
	)

	UploadSessionsCleanedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinema_upload_sessions_cleaned_total",
			Help: "Stale upload sessions removed by the cleanup job",
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailCapturesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinema_thumbnail_captures_total",
			Help: "Thumbnail capture runs by status",
		},
		[]string{"status"}, // "captured", "unavailable", "error"
	)

	ThumbnailFrameDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cinema_thumbnail_frame_duration_seconds",
			Help:    "Time to grab and encode a single frame",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)
