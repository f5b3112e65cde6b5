package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SUII07/EasyHome-sub000/internal/domain"
	"github.com/SUII07/EasyHome-sub000/internal/service"
	"github.com/SUII07/EasyHome-sub000/internal/throttle"
	"github.com/SUII07/EasyHome-sub000/pkg/health"
	"github.com/SUII07/EasyHome-sub000/pkg/middleware"
)

// RouterConfig bundles the dependencies the router wires together.
type RouterConfig struct {
	Engagements     *service.EngagementService
	Dispatch        *service.DispatchService
	Reviews         *service.ReviewService
	Health          *health.Handler
	TokenValidator  middleware.TokenValidator
	BookingThrottle throttle.Store
	Logger          *slog.Logger
	PprofCIDRs      []string
	RequestTimeout  time.Duration
}

// NewRouter creates a chi router with all marketplace routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("easyhome"))
	r.Use(middleware.Tracing("easyhome"))
	r.Use(middleware.RequestLogger(cfg.Logger))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, cfg.Logger)

	engagementHandler := NewEngagementHandler(cfg.Engagements, cfg.Reviews, cfg.Logger)
	providerHandler := NewProviderHandler(cfg.Dispatch, cfg.Reviews, cfg.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.TokenValidator))
		r.Use(ContentTypeJSON)

		r.Route("/engagements", func(r chi.Router) {
			r.With(
				middleware.RequireRole(domain.RoleCustomer),
				BookingThrottle(cfg.BookingThrottle, cfg.Logger),
			).Post("/", engagementHandler.CreateEngagement)

			r.Get("/", engagementHandler.ListEngagements)
			r.Get("/{id}", engagementHandler.GetEngagement)
			r.With(middleware.RequireRole(domain.RoleProvider)).Post("/{id}/respond", engagementHandler.RespondToEngagement)
			r.With(middleware.RequireRole(domain.RoleProvider)).Post("/{id}/complete", engagementHandler.CompleteEngagement)
			r.Post("/{id}/cancel", engagementHandler.CancelEngagement)
			r.With(middleware.RequireRole(domain.RoleCustomer)).Post("/{id}/review", engagementHandler.SubmitReview)
		})

		r.Route("/providers", func(r chi.Router) {
			r.Get("/", providerHandler.FindProviders)
			r.Get("/{id}/reviews", providerHandler.ListProviderReviews)
		})
	})

	return r
}
