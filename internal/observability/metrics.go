package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	httpErrorsTotal    *prometheus.CounterVec

	interviewTransitionsTotal *prometheus.CounterVec
	answersSubmittedTotal     *prometheus.CounterVec

	evaluationsTotal          *prometheus.CounterVec
	evaluationDurationSeconds prometheus.Histogram
	evaluationQueueDepth      prometheus.Gauge

	mediaUploadsTotal   *prometheus.CounterVec
	mediaRejectedTotal  *prometheus.CounterVec
	mediaUploadLatency  prometheus.Histogram
	eventsPublished     *prometheus.CounterVec
	liveClientsActive   prometheus.Gauge
	summaryCacheLookups *prometheus.CounterVec

	oracleDuration  *prometheus.HistogramVec
	oracleFailures  *prometheus.CounterVec
	reportFallbacks *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		interviewTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_transitions_total",
			Help: "Interview lifecycle transitions by target status.",
		}, []string{"status"})

		answersSubmittedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_answers_submitted_total",
			Help: "Accepted answers by round.",
		}, []string{"round"})

		evaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_evaluations_total",
			Help: "Evaluation runs by outcome.",
		}, []string{"outcome"})

		evaluationDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "interview_evaluation_duration_seconds",
			Help:    "Duration of evaluation pipeline runs.",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		})

		evaluationQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "interview_evaluation_queue_depth",
			Help: "Evaluations waiting for a dispatcher worker.",
		})

		mediaUploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "media_uploads_total",
			Help: "Stored media objects by kind.",
		}, []string{"kind"})

		mediaRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "media_rejected_total",
			Help: "Rejected media uploads by reason.",
		}, []string{"reason"})

		mediaUploadLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "media_upload_duration_seconds",
			Help:    "Latency of media validation and storage.",
			Buckets: prometheus.DefBuckets,
		})

		eventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_events_published_total",
			Help: "Interview events delivered to local subscribers by type.",
		}, []string{"type"})

		liveClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "interview_live_clients_active",
			Help: "Open live progress websocket connections.",
		})

		summaryCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evaluation_summary_cache_lookups_total",
			Help: "Evaluation summary cache lookups by result.",
		}, []string{"result"})

		oracleDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "interview",
			Subsystem: "ai",
			Name:      "request_duration_seconds",
			Help:      "Duration of oracle requests.",
		}, []string{"provider", "operation"})

		oracleFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "interview",
			Subsystem: "ai",
			Name:      "request_failures_total",
			Help:      "Number of failed oracle requests.",
		}, []string{"provider", "operation", "reason"})

		reportFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "interview",
			Subsystem: "ai",
			Name:      "report_fallbacks_total",
			Help:      "Number of reports replaced by the manual review fallback.",
		}, []string{"provider"})

		prometheus.MustRegister(
			httpRequestsTotal, httpLatencySeconds, httpErrorsTotal,
			interviewTransitionsTotal, answersSubmittedTotal,
			evaluationsTotal, evaluationDurationSeconds, evaluationQueueDepth,
			mediaUploadsTotal, mediaRejectedTotal, mediaUploadLatency,
			eventsPublished, liveClientsActive, summaryCacheLookups,
			oracleDuration, oracleFailures, reportFallbacks,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the error response counter.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// InterviewTransitions counts lifecycle transitions.
func InterviewTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return interviewTransitionsTotal
}

// AnswersSubmitted counts accepted answers.
func AnswersSubmitted() *prometheus.CounterVec {
	RegisterMetrics()
	return answersSubmittedTotal
}

// Evaluations counts evaluation outcomes.
func Evaluations() *prometheus.CounterVec {
	RegisterMetrics()
	return evaluationsTotal
}

// EvaluationDuration observes pipeline run time.
func EvaluationDuration() prometheus.Histogram {
	RegisterMetrics()
	return evaluationDurationSeconds
}

// EvaluationQueueDepth tracks queued evaluations.
func EvaluationQueueDepth() prometheus.Gauge {
	RegisterMetrics()
	return evaluationQueueDepth
}

// MediaUploads counts stored media.
func MediaUploads() *prometheus.CounterVec {
	RegisterMetrics()
	return mediaUploadsTotal
}

// MediaRejected counts rejected media.
func MediaRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return mediaRejectedTotal
}

// MediaUploadLatency observes media handling time.
func MediaUploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return mediaUploadLatency
}

// EventsPublished counts delivered interview events.
func EventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return eventsPublished
}

// LiveClientsActive tracks open websocket feeds.
func LiveClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return liveClientsActive
}

// SummaryCacheLookups counts cache hits and misses.
func SummaryCacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return summaryCacheLookups
}

// OracleDuration observes model request latency by provider and operation.
func OracleDuration() *prometheus.HistogramVec {
	RegisterMetrics()
	return oracleDuration
}

// OracleFailures counts failed model requests.
func OracleFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return oracleFailures
}

// OracleReportFallbacks counts reports replaced by the manual review fallback.
func OracleReportFallbacks() *prometheus.CounterVec {
	RegisterMetrics()
	return reportFallbacks
}
