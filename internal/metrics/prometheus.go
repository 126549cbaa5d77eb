package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the mocopi receiver
type Metrics struct {
	// UDP packet metrics
	PacketsReceived  prometheus.Counter
	PacketsDecoded   prometheus.Counter
	DecodeErrors     *prometheus.CounterVec
	DecodeDuration   prometheus.Histogram
	QueueSize        prometheus.Gauge
	DroppedDatagrams prometheus.Counter

	// Decoded payload metrics
	SkeletonsDecoded prometheus.Counter
	FramesDecoded    prometheus.Counter
	UnknownMessages  *prometheus.CounterVec
	BonesPerFrame    prometheus.Histogram

	// Session metrics
	ActiveSessions    prometheus.Gauge
	SessionsCreated   prometheus.Counter
	SessionsDestroyed prometheus.Counter
	SessionDuration   prometheus.Histogram

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		// UDP packet metrics
		PacketsReceived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mocopi_packets_received_total",
			Help: "Total number of UDP datagrams received",
		}),
		PacketsDecoded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mocopi_packets_decoded_total",
			Help: "Total number of UDP datagrams successfully decoded",
		}),
		DecodeErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mocopi_decode_errors_total",
			Help: "Total number of datagram decode errors by kind",
		}, []string{"kind"}),
		DecodeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mocopi_decode_duration_seconds",
			Help:    "Time spent decoding one datagram",
			Buckets: prometheus.ExponentialBuckets(0.000001, 4, 10), // 1µs to ~260ms
		}),
		QueueSize: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "mocopi_packet_queue_size",
			Help: "Current number of datagrams in the processing queue",
		}),
		DroppedDatagrams: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mocopi_dropped_datagrams_total",
			Help: "Total number of datagrams dropped because the queue was full",
		}),

		// Decoded payload metrics
		SkeletonsDecoded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mocopi_skeletons_decoded_total",
			Help: "Total number of skeleton definition packets decoded",
		}),
		FramesDecoded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mocopi_frames_decoded_total",
			Help: "Total number of frame packets decoded",
		}),
		UnknownMessages: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mocopi_unknown_messages_total",
			Help: "Total number of well-formed messages with an unrecognized address",
		}, []string{"address"}),
		BonesPerFrame: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mocopi_bones_per_frame",
			Help:    "Number of bone transforms carried by a frame",
			Buckets: prometheus.LinearBuckets(0, 9, 10), // 0 to 81 bones
		}),

		// Session metrics
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "mocopi_active_sessions",
			Help: "Current number of tracked device sources",
		}),
		SessionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mocopi_sessions_created_total",
			Help: "Total number of sessions created",
		}),
		SessionsDestroyed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mocopi_sessions_destroyed_total",
			Help: "Total number of sessions destroyed",
		}),
		SessionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mocopi_session_duration_seconds",
			Help:    "Lifetime of device sessions in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~68 minutes
		}),

		// HTTP API metrics
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mocopi_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mocopi_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
	}
}

// RecordPacketReceived increments the packets received counter
func (m *Metrics) RecordPacketReceived() {
	m.PacketsReceived.Inc()
}

// RecordPacketDecoded records one successful decode and its duration
func (m *Metrics) RecordPacketDecoded(durationSeconds float64) {
	m.PacketsDecoded.Inc()
	m.DecodeDuration.Observe(durationSeconds)
}

// RecordDecodeError increments the decode error counter for an error kind
func (m *Metrics) RecordDecodeError(kind string) {
	m.DecodeErrors.WithLabelValues(kind).Inc()
}

// RecordDroppedDatagram increments the dropped datagram counter
func (m *Metrics) RecordDroppedDatagram() {
	m.DroppedDatagrams.Inc()
}

// SetQueueSize sets the current queue size
func (m *Metrics) SetQueueSize(size int) {
	m.QueueSize.Set(float64(size))
}

// RecordSkeleton increments the skeleton definition counter
func (m *Metrics) RecordSkeleton() {
	m.SkeletonsDecoded.Inc()
}

// RecordFrame records one decoded frame and its bone count
func (m *Metrics) RecordFrame(boneCount int) {
	m.FramesDecoded.Inc()
	m.BonesPerFrame.Observe(float64(boneCount))
}

// RecordUnknownMessage increments the unknown message counter for an address
func (m *Metrics) RecordUnknownMessage(address string) {
	m.UnknownMessages.WithLabelValues(address).Inc()
}

// SetActiveSessions sets the current number of tracked sources
func (m *Metrics) SetActiveSessions(count int) {
	m.ActiveSessions.Set(float64(count))
}

// RecordSessionCreated increments the sessions created counter
func (m *Metrics) RecordSessionCreated() {
	m.SessionsCreated.Inc()
}

// RecordSessionDestroyed increments the sessions destroyed counter and records duration
func (m *Metrics) RecordSessionDestroyed(durationSeconds float64) {
	m.SessionsDestroyed.Inc()
	m.SessionDuration.Observe(durationSeconds)
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}
