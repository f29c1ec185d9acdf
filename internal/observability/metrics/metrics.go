package metrics

import (
	"database/sql"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	metricPrefix = "statement_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	renderTotal   *prometheus.CounterVec
	renderLatency *prometheus.HistogramVec
	renderErrors  *prometheus.CounterVec

	httpRequests *prometheus.CounterVec

	assetFetchTotal *prometheus.CounterVec
)

// Init registers metrics and, when db is set, the asset table gauge.
func Init(db *sql.DB, logger *zap.Logger) {
	registerOnce.Do(func() {
		renderTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "render_total",
				Help: "Total statement renders by template, format and result",
			},
			[]string{"template", "format", "result"},
		)
		renderLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "render_latency_seconds",
				Help:    "Statement render latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"template", "format", "result"},
		)
		renderErrors = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "render_errors_total",
				Help: "Total statement render errors by reason",
			},
			[]string{"reason"},
		)
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		)
		assetFetchTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "asset_fetch_total",
				Help: "Total asset fetches by source and result",
			},
			[]string{"source", "result"},
		)

		prometheus.MustRegister(
			renderTotal,
			renderLatency,
			renderErrors,
			httpRequests,
			assetFetchTotal,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveRender records render latency and result.
func ObserveRender(template, format, result string, duration time.Duration) {
	if template == "" {
		template = "unknown"
	}
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if renderTotal != nil {
		renderTotal.WithLabelValues(template, format, result).Inc()
	}
	if renderLatency != nil {
		renderLatency.WithLabelValues(template, format, result).Observe(duration.Seconds())
	}
}

// IncRenderError increments the render error counter.
func IncRenderError(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	if renderErrors != nil {
		renderErrors.WithLabelValues(reason).Inc()
	}
}

// IncHTTPRequest counts a served request.
func IncHTTPRequest(route, code string) {
	if route == "" {
		route = "unknown"
	}
	if httpRequests != nil {
		httpRequests.WithLabelValues(route, code).Inc()
	}
}

// IncAssetFetch counts an asset lookup against a store.
func IncAssetFetch(source, result string) {
	if source == "" {
		source = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if assetFetchTotal != nil {
		assetFetchTotal.WithLabelValues(source, result).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess  = resultSuccess
	ResultError    = resultError
	ResultNotFound = "not_found"
)
