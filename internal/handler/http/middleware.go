package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/SUII07/EasyHome-sub000/internal/throttle"
	"github.com/SUII07/EasyHome-sub000/pkg/httputil"
	"github.com/SUII07/EasyHome-sub000/pkg/middleware"
)

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json"}}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// BookingThrottle limits how often one actor can create engagements. The
// check fails open: if the throttle store is unreachable the request goes
// through, because refusing bookings on a cache outage is the worse failure.
func BookingThrottle(store throttle.Store, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actorID := middleware.ActorIDFromContext(r.Context())
			if actorID == "" {
				next.ServeHTTP(w, r)
				return
			}

			allowed, err := store.Allow(r.Context(), actorID)
			if err != nil {
				logger.WarnContext(r.Context(), "throttle check failed, allowing request",
					slog.String("actor_id", actorID),
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				httputil.WriteJSON(w, http.StatusTooManyRequests, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:    "RATE_LIMITED",
						Message: "too many booking requests, try again later",
					},
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
