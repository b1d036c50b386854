package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skyframe",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "skyframe",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	framesDecoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skyframe",
			Subsystem: "frame",
			Name:      "decoded_total",
			Help:      "Frames decoded, by message kind.",
		},
		[]string{"kind"},
	)
	frameErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skyframe",
			Subsystem: "frame",
			Name:      "errors_total",
			Help:      "Frames that failed to decode or summarise, by error class.",
		},
		[]string{"class"},
	)
	frameBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "skyframe",
			Subsystem: "frame",
			Name:      "bytes_total",
			Help:      "Frame bytes processed.",
		},
	)
	batchFrames = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "skyframe",
			Subsystem: "batch",
			Name:      "frames",
			Help:      "Frames per processed batch.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
	batchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "skyframe",
			Subsystem: "batch",
			Name:      "duration_seconds",
			Help:      "Batch processing duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
	)
	streamConnects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skyframe",
			Subsystem: "stream",
			Name:      "connects_total",
			Help:      "Firehose connection attempts, by outcome.",
		},
		[]string{"success"},
	)
	streamMessages = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "skyframe",
			Subsystem: "stream",
			Name:      "messages_total",
			Help:      "Binary websocket messages received.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration,
			framesDecoded, frameErrors, frameBytes,
			batchFrames, batchDuration,
			streamConnects, streamMessages,
		)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

func RecordFrame(kind string, size int) {
	RegisterMetrics()
	framesDecoded.WithLabelValues(kind).Inc()
	frameBytes.Add(float64(size))
}

func RecordFrameError(class string, size int) {
	RegisterMetrics()
	frameErrors.WithLabelValues(class).Inc()
	frameBytes.Add(float64(size))
}

func RecordBatch(frames int, duration time.Duration) {
	RegisterMetrics()
	batchFrames.Observe(float64(frames))
	batchDuration.Observe(duration.Seconds())
}

func RecordConnect(success bool) {
	RegisterMetrics()
	streamConnects.WithLabelValues(strconv.FormatBool(success)).Inc()
}

func RecordStreamMessage() {
	RegisterMetrics()
	streamMessages.Inc()
}
