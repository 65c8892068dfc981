package observability

import (
	"time"

	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Submission outcomes.
const (
	SubmissionAccepted = "accepted"
	SubmissionPending  = "pending_confirmation"
	SubmissionFailed   = "failed"
	SubmissionRefused  = "refused"
)

// CacheContracts labels the contract context cache.
const CacheContracts = "contract_context"

// Metrics holds all Prometheus metrics for the BFA.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	validations     *prometheus.CounterVec
	legalAlerts     *prometheus.CounterVec
	submissions     *prometheus.CounterVec
	activeDrafts    prometheus.Gauge
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bfa_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		validations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_draft_validations_total",
				Help: "Draft validations by outcome.",
			},
			[]string{"outcome"},
		),
		legalAlerts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_legal_limit_alerts_total",
				Help: "Legal limit alerts raised, by limit kind and source.",
			},
			[]string{"kind", "source"},
		),
		submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_amendment_submissions_total",
				Help: "Amendment submissions by outcome.",
			},
			[]string{"outcome"},
		),
		activeDrafts: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "bfa_active_drafts",
				Help: "Draft sessions currently held in memory.",
			},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordValidation counts one draft validation.
func (m *Metrics) RecordValidation(valid bool) {
	outcome := "invalid"
	if valid {
		outcome = "valid"
	}
	m.validations.WithLabelValues(outcome).Inc()
}

// RecordLegalAlert counts the limits of a newly raised alert.
func (m *Metrics) RecordLegalAlert(alert *domain.LegalLimitAlert, source string) {
	if alert == nil {
		return
	}
	for _, l := range alert.Limits {
		m.legalAlerts.WithLabelValues(l.Kind, source).Inc()
	}
}

// IncrSubmission counts a submission outcome.
func (m *Metrics) IncrSubmission(outcome string) {
	m.submissions.WithLabelValues(outcome).Inc()
}

// SetActiveDrafts sets the number of live draft sessions.
func (m *Metrics) SetActiveDrafts(n int) {
	m.activeDrafts.Set(float64(n))
}

// GetDraftSnapshot returns a snapshot of draft-related metrics suitable for
// the GET /v1/metrics/drafts endpoint.
func (m *Metrics) GetDraftSnapshot() *domain.DraftMetrics {
	valid := getCounterValue(m.validations, "valid")
	invalid := getCounterValue(m.validations, "invalid")
	hits := getCounterValue(m.cacheHits, CacheContracts)
	misses := getCounterValue(m.cacheMisses, CacheContracts)

	var alerts float64
	for _, kind := range []string{"valor", "prazo"} {
		for _, source := range []string{"client", "server"} {
			alerts += getCounterValue(m.legalAlerts, kind, source)
		}
	}

	invalidRate := float64(0)
	if valid+invalid > 0 {
		invalidRate = invalid / (valid + invalid)
	}
	cacheHitRate := float64(0)
	if hits+misses > 0 {
		cacheHitRate = hits / (hits + misses)
	}

	return &domain.DraftMetrics{
		ActiveDrafts:        int64(getGaugeValue(m.activeDrafts)),
		ValidationsTotal:    int64(valid + invalid),
		InvalidRate:         invalidRate,
		SubmissionsAccepted: int64(getCounterValue(m.submissions, SubmissionAccepted)),
		SubmissionsPending:  int64(getCounterValue(m.submissions, SubmissionPending)),
		SubmissionsFailed:   int64(getCounterValue(m.submissions, SubmissionFailed)),
		LegalLimitAlerts:    int64(alerts),
		ContextCacheHitRate: cacheHitRate,
		Period:              "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for the given labels.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter := cv.WithLabelValues(labels...)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

func getGaugeValue(g prometheus.Gauge) float64 {
	m := &dto.Metric{}
	if err := g.Write(m); err != nil {
		return 0
	}
	if m.Gauge != nil && m.Gauge.Value != nil {
		return *m.Gauge.Value
	}
	return 0
}
