package handler

import (
	"net/http"
	"sort"
	"time"

	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/domain"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/infra/observability"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// A nil verifier disables authentication. Breakers are reported by /healthz.
func NewRouter(
	drafts *service.DraftService,
	verifier *service.TokenVerifier,
	allowedOrigins []string,
	breakers map[string]*gobreaker.CircuitBreaker,
	metrics *observability.Metrics,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(breakers))
	r.Get("/readyz", readyzHandler(drafts))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// 1. Catálogo de tipos e calculadoras
		// =============================================
		r.Get("/amendment-types", listTypesHandler())
		r.Post("/amendment-types/blocks", resolveBlocksHandler(logger))
		r.Post("/calculators/value", valueCalcHandler(logger))
		r.Post("/calculators/term", termCalcHandler(logger))
		r.Post("/calculators/units", unitsCalcHandler(logger))
		r.Post("/currency/parse", parseCurrencyHandler(logger))

		// =============================================
		// 2. Métricas
		// GET /v1/metrics/drafts
		// =============================================
		r.Get("/metrics/drafts", draftMetricsHandler(drafts, metrics))

		// =============================================
		// 3. Rascunhos de alteração contratual
		// =============================================
		r.Group(func(r chi.Router) {
			if verifier != nil {
				r.Use(JWTAuthMiddleware(verifier, logger))
			}

			r.Post("/contracts/{contractId}/amendments/drafts", createDraftHandler(drafts, logger))

			r.Route("/drafts/{draftId}", func(r chi.Router) {
				r.Get("/", getDraftHandler(drafts, logger))
				r.Patch("/", patchDraftHandler(drafts, logger))
				r.Delete("/", deleteDraftHandler(drafts, logger))

				r.Put("/blocks/{block}", putBlockHandler(drafts, logger))
				r.Post("/blocks/{block}/toggle", toggleBlockHandler(drafts, logger))
				r.Post("/steps/{step}", stepHandler(drafts, logger))
				r.Post("/context/refresh", refreshContextHandler(drafts, logger))

				r.Get("/review", reviewHandler(drafts, logger))
				r.Post("/submit", submitHandler(drafts, logger))
				r.Post("/confirm", confirmHandler(drafts, logger))
				r.Post("/cancel", cancelHandler(drafts, logger))
				r.Post("/reset", resetHandler(drafts, logger))
			})
		})
	})

	return r
}

// ============================================================
// Operational handlers
// ============================================================

func healthzHandler(breakers map[string]*gobreaker.CircuitBreaker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "bfa-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		names := make([]string, 0, len(breakers))
		for name := range breakers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			status := "healthy"
			switch breakers[name].State() {
			case gobreaker.StateHalfOpen:
				status = "degraded"
			case gobreaker.StateOpen:
				status = "unhealthy"
			}
			services = append(services, domain.ServiceHealth{Name: name, Status: status, LastChecked: now})
		}

		// The BFA keeps serving drafts while an upstream is down, so an open
		// breaker only degrades the overall status.
		overallStatus := "healthy"
		for _, s := range services[1:] {
			if s.Status != "healthy" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler(drafts *service.DraftService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if drafts == nil {
			writeError(w, http.StatusServiceUnavailable, "draft service not initialized")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func draftMetricsHandler(drafts *service.DraftService, metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if drafts != nil {
			drafts.ActiveDrafts()
		}
		writeJSON(w, http.StatusOK, metrics.GetDraftSnapshot())
	}
}
