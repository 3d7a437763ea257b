package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds all application metrics.
type AppMetrics struct {
	// HTTP Layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPResponseSize    HistogramVec
	HTTPActiveRequests  GaugeVec

	// Prediction Layer
	PredictionsTotal      CounterVec
	PredictionDuration    HistogramVec
	PredictionStageTime   HistogramVec
	PredictionValue       SummaryVec
	PredictionErrorsTotal CounterVec
	ADWarningsTotal       CounterVec

	// Artifact Bundle
	BundleLoadsTotal   CounterVec
	BundleLoadDuration HistogramVec
	BundleInfo         GaugeVec
	ModelLoaded        GaugeVec
	CorpusSize         GaugeVec

	// Events
	EventsPublishedTotal CounterVec

	// Result cache
	CacheLookupsTotal CounterVec

	// gRPC Layer
	GRPCRequestsTotal   CounterVec
	GRPCRequestDuration HistogramVec

	// System Health
	ErrorsTotal CounterVec
}

var (
	DefaultHTTPDurationBuckets   = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	DefaultStageDurationBuckets  = []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .05}
	DefaultBundleDurationBuckets = []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60}
	DefaultSizeBuckets           = []float64{64, 256, 1024, 4096, 16384, 65536}
)

// Prediction stages observed by PredictionStageTime.
const (
	StageStandardize   = "standardize"
	StageApplicability = "applicability"
	StageAssemble      = "assemble"
	StageInference     = "inference"
)

// Result cache outcomes observed by CacheLookupsTotal.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// NewAppMetrics registers all metrics and returns AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	if collector == nil {
		collector = NewNoopCollector()
	}
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPResponseSize = collector.RegisterHistogram("http_response_size_bytes", "HTTP response size", DefaultSizeBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests")

	m.PredictionsTotal = collector.RegisterCounter("predictions_total", "Completed predictions", "ad_status")
	m.PredictionDuration = collector.RegisterHistogram("prediction_duration_seconds", "End-to-end prediction duration", nil)
	m.PredictionStageTime = collector.RegisterHistogram("prediction_stage_duration_seconds", "Per-stage prediction duration", DefaultStageDurationBuckets, "stage")
	m.PredictionValue = collector.RegisterSummary("prediction_value", "Distribution of predicted toxicity values", nil)
	m.PredictionErrorsTotal = collector.RegisterCounter("prediction_errors_total", "Rejected or failed predictions", "code")
	m.ADWarningsTotal = collector.RegisterCounter("applicability_warnings_total", "Predictions outside the applicability domain")

	m.BundleLoadsTotal = collector.RegisterCounter("bundle_loads_total", "Artifact bundle load attempts", "status")
	m.BundleLoadDuration = collector.RegisterHistogram("bundle_load_duration_seconds", "Artifact bundle load duration", DefaultBundleDurationBuckets)
	m.BundleInfo = collector.RegisterGauge("bundle_info", "Currently served artifact bundle (value is always 1)", "version")
	m.ModelLoaded = collector.RegisterGauge("model_loaded", "Whether a model is loaded (1=yes, 0=no)")
	m.CorpusSize = collector.RegisterGauge("reference_corpus_size", "Number of training fingerprints in the applicability domain")

	m.EventsPublishedTotal = collector.RegisterCounter("events_published_total", "Prediction events handed to the broker", "topic", "status")

	m.CacheLookupsTotal = collector.RegisterCounter("prediction_cache_total", "Prediction cache lookups and write failures", "result")

	m.GRPCRequestsTotal = collector.RegisterCounter("grpc_requests_total", "Total gRPC requests", "service", "method", "code")
	m.GRPCRequestDuration = collector.RegisterHistogram("grpc_request_duration_seconds", "gRPC request duration", DefaultHTTPDurationBuckets, "service", "method")

	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_type", "severity")

	return m
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers. All of them accept a nil *AppMetrics.
// ─────────────────────────────────────────────────────────────────────────────

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration, respSize int64) {
	if metrics == nil {
		return
	}
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	metrics.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
}

// RecordPrediction records a completed prediction.
func RecordPrediction(metrics *AppMetrics, adStatus string, value float64, duration time.Duration) {
	if metrics == nil {
		return
	}
	metrics.PredictionsTotal.WithLabelValues(adStatus).Inc()
	metrics.PredictionDuration.WithLabelValues().Observe(duration.Seconds())
	metrics.PredictionValue.WithLabelValues().Observe(value)
	if adStatus != "Pass" {
		metrics.ADWarningsTotal.WithLabelValues().Inc()
	}
}

func RecordPredictionStage(metrics *AppMetrics, stage string, duration time.Duration) {
	if metrics == nil {
		return
	}
	metrics.PredictionStageTime.WithLabelValues(stage).Observe(duration.Seconds())
}

func RecordPredictionFailure(metrics *AppMetrics, code string) {
	if metrics == nil {
		return
	}
	metrics.PredictionErrorsTotal.WithLabelValues(code).Inc()
}

// RecordBundleLoad records a load attempt. On success the served version and corpus size are replaced.
func RecordBundleLoad(metrics *AppMetrics, version string, corpusSize int, duration time.Duration, err error) {
	if metrics == nil {
		return
	}
	metrics.BundleLoadDuration.WithLabelValues().Observe(duration.Seconds())
	if err != nil {
		metrics.BundleLoadsTotal.WithLabelValues("failure").Inc()
		metrics.ErrorsTotal.WithLabelValues("artifacts", "bundle_load", "error").Inc()
		return
	}
	metrics.BundleLoadsTotal.WithLabelValues("success").Inc()
	metrics.BundleInfo.WithLabelValues(version).Set(1)
	metrics.ModelLoaded.WithLabelValues().Set(1)
	metrics.CorpusSize.WithLabelValues().Set(float64(corpusSize))
}

func RecordEventPublish(metrics *AppMetrics, topic string, err error) {
	if metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
		metrics.ErrorsTotal.WithLabelValues("events", "publish", "warning").Inc()
	}
	metrics.EventsPublishedTotal.WithLabelValues(topic, status).Inc()
}

func RecordCacheLookup(metrics *AppMetrics, result string) {
	if metrics == nil {
		return
	}
	metrics.CacheLookupsTotal.WithLabelValues(result).Inc()
}

func RecordGRPCRequest(metrics *AppMetrics, service, method, code string, duration time.Duration) {
	if metrics == nil {
		return
	}
	metrics.GRPCRequestsTotal.WithLabelValues(service, method, code).Inc()
	metrics.GRPCRequestDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}

func RecordError(metrics *AppMetrics, component, errorType, severity string) {
	if metrics == nil {
		return
	}
	metrics.ErrorsTotal.WithLabelValues(component, errorType, severity).Inc()
}

//Personal.AI order the ending
