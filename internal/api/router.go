package api

import (
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/Vijaykv5/Intereractive-GD/internal/api/recovery"
	"github.com/Vijaykv5/Intereractive-GD/internal/api/respond"
	"github.com/Vijaykv5/Intereractive-GD/internal/metrics"
)

// Registrar adds its routes to a router.
type Registrar interface {
	Register(r *mux.Router)
}

// NewRouter builds the HTTP handler: request logging, panic recovery, every
// registrar's routes, /metrics, and CORS around the whole router so
// preflight requests never reach route matching.
func NewRouter(log zerolog.Logger, allowOrigin string, registrars ...Registrar) http.Handler {
	root := mux.NewRouter()
	root.Use(hlog.NewHandler(log))
	root.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	root.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	root.Use(recovery.Middleware)

	for _, reg := range registrars {
		reg.Register(root)
	}
	root.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	root.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respond.WriteNotFound(w, "Not Found")
	})

	return handlers.CORS(
		handlers.AllowedOrigins([]string{allowOrigin}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(root)
}
