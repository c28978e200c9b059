package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RenderBox metrics
var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "renderbox",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "renderbox",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "renderbox",
			Subsystem: "media",
			Name:      "uploads_total",
			Help:      "Total uploads by resource type and outcome",
		},
		[]string{"resource_type", "status"},
	)

	UploadBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "renderbox",
			Subsystem: "media",
			Name:      "upload_bytes_total",
			Help:      "Total original bytes accepted",
		},
		[]string{"resource_type"},
	)

	MediaServiceTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "renderbox",
			Subsystem: "media_service",
			Name:      "operations_total",
			Help:      "Total calls to the cloud media service",
		},
		[]string{"operation", "status"},
	)

	MediaServiceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "renderbox",
			Subsystem: "media_service",
			Name:      "duration_seconds",
			Help:      "Cloud media service call duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"operation"},
	)

	SideEffectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "renderbox",
			Subsystem: "media",
			Name:      "side_effects_total",
			Help:      "Best-effort archive and event publish outcomes",
		},
		[]string{"kind", "status"},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordUpload records a file upload
func RecordUpload(resourceType, status string, bytes int64) {
	UploadsTotal.WithLabelValues(resourceType, status).Inc()
	if status == StatusSuccess {
		UploadBytesTotal.WithLabelValues(resourceType).Add(float64(bytes))
	}
}

// RecordMediaService records a call to the media service
func RecordMediaService(operation, status string, durationSec float64) {
	MediaServiceTotal.WithLabelValues(operation, status).Inc()
	MediaServiceDuration.WithLabelValues(operation).Observe(durationSec)
}

// RecordSideEffect records an archive or publish attempt
func RecordSideEffect(kind, status string) {
	SideEffectsTotal.WithLabelValues(kind, status).Inc()
}

// Status labels
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Status maps an error to a status label
func Status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}
