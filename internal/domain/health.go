package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual service.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// DraftMetrics is returned by GET /v1/metrics/drafts.
type DraftMetrics struct {
	ActiveDrafts        int64   `json:"activeDrafts"`
	ValidationsTotal    int64   `json:"validationsTotal"`
	InvalidRate         float64 `json:"invalidRate"`
	SubmissionsAccepted int64   `json:"submissionsAccepted"`
	SubmissionsPending  int64   `json:"submissionsPendingConfirmation"`
	SubmissionsFailed   int64   `json:"submissionsFailed"`
	LegalLimitAlerts    int64   `json:"legalLimitAlerts"`
	ContextCacheHitRate float64 `json:"contextCacheHitRate"`
	Period              string  `json:"period"`
}

// SuccessResponse wraps a successful single-entity response.
type SuccessResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
