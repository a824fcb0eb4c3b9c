package prometheus

import (
	"strconv"
	"time"

	"github.com/fgiubilesi-cpu/sgic/pkg/config"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthSuccessCounter  prometheus.Counter
	AuthErrorsCounter   prometheus.Counter

	// Tenant context metrics
	TenantContextMissingCounter prometheus.Counter

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Domain operation metrics
	AuditOperationsCounter            prometheus.CounterVec
	TemplateOperationsCounter         prometheus.CounterVec
	ChecklistOperationsCounter        prometheus.CounterVec
	NonConformityOperationsCounter    prometheus.CounterVec
	CorrectiveActionOperationsCounter prometheus.CounterVec

	// Completion gate metrics
	CompletionValidationsCounter prometheus.CounterVec

	// Evidence upload metrics
	EvidenceUploadsCounter prometheus.CounterVec

	// AI analysis metrics
	AIAnalysisCounter prometheus.CounterVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(cfg *config.Config) {
	prefix := cfg.Metrics.Prefix

	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	AuthAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
	)

	AuthSuccessCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_success_total",
			Help: "Total number of successful authentications",
		},
	)

	AuthErrorsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors",
		},
	)

	TenantContextMissingCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_tenant_context_missing_total",
			Help: "Total number of requests without an organization context",
		},
	)

	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	AuditOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_audit_operations_total",
			Help: "Total number of audit operations",
		},
		[]string{"operation"},
	)

	TemplateOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_template_operations_total",
			Help: "Total number of checklist template operations",
		},
		[]string{"operation"},
	)

	ChecklistOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_checklist_operations_total",
			Help: "Total number of checklist item operations",
		},
		[]string{"operation"},
	)

	NonConformityOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_non_conformity_operations_total",
			Help: "Total number of non-conformity operations",
		},
		[]string{"operation"},
	)

	CorrectiveActionOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_corrective_action_operations_total",
			Help: "Total number of corrective action operations",
		},
		[]string{"operation"},
	)

	CompletionValidationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_completion_validations_total",
			Help: "Total number of audit completion validations by result",
		},
		[]string{"result"},
	)

	EvidenceUploadsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_evidence_uploads_total",
			Help: "Total number of evidence uploads by result",
		},
		[]string{"result"},
	)

	AIAnalysisCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_ai_analysis_total",
			Help: "Total number of AI analysis requests by result",
		},
		[]string{"result"},
	)
}

// TrackDBOperation returns a function to defer for tracking DB operation duration
func TrackDBOperation(operationType string) func(time.Time) {
	return func(start time.Time) {
		DbOperationDuration.WithLabelValues(operationType).Observe(time.Since(start).Seconds())
	}
}

// RecordAuditOperation increments the audit operations counter
func RecordAuditOperation(operation string) {
	AuditOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordTemplateOperation increments the template operations counter
func RecordTemplateOperation(operation string) {
	TemplateOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordChecklistOperation increments the checklist item operations counter
func RecordChecklistOperation(operation string) {
	ChecklistOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordNonConformityOperation increments the non-conformity operations counter
func RecordNonConformityOperation(operation string) {
	NonConformityOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordCorrectiveActionOperation increments the corrective action operations counter
func RecordCorrectiveActionOperation(operation string) {
	CorrectiveActionOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordCompletionValidation increments the completion gate counter
func RecordCompletionValidation(passed bool) {
	result := "blocked"
	if passed {
		result = "passed"
	}
	CompletionValidationsCounter.WithLabelValues(result).Inc()
}

// RecordEvidenceUpload increments the evidence upload counter
func RecordEvidenceUpload(result string) {
	EvidenceUploadsCounter.WithLabelValues(result).Inc()
}

// RecordAIAnalysis increments the AI analysis counter
func RecordAIAnalysis(result string) {
	AIAnalysisCounter.WithLabelValues(result).Inc()
}

// MetricsMiddleware records request counts and latencies per route
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := strconv.Itoa(c.Response().Status)
			HttpRequestsTotal.With(prometheus.Labels{
				"method": c.Request().Method,
				"path":   c.Path(),
				"status": status,
			}).Inc()
			HttpRequestDuration.With(prometheus.Labels{
				"method": c.Request().Method,
				"path":   c.Path(),
				"status": status,
			}).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// GetHandler returns the Prometheus metrics handler wrapped for Echo
func GetHandler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
