package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kittclouds/gokitt-search/internal/pipeline"
)

// NewRouter builds the HTTP router: request ID, recovery, structured
// logging and a hand-rolled permissive CORS middleware (adapted from
// 2lar-b2/backend/interfaces/http/rest/middleware/common.go's CORS(),
// since this core's go.mod does not carry github.com/go-chi/cors),
// followed by the single POST /multi-search route.
func NewRouter(engine *pipeline.Engine, logger *zap.Logger, defaultFederationLimit, defaultFederationOffset int) http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(cors)

	r.Get("/health", healthCheck)

	handler := NewSearchHandler(engine, logger, defaultFederationLimit, defaultFederationOffset)
	r.Post("/multi-search", handler.MultiSearch)

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// requestID tags every request with a trace ID (adapted from
// 2lar-b2/backend/interfaces/http/rest/middleware/common.go's
// RequestID(): honor an inbound X-Request-ID, otherwise mint one with
// google/uuid).
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

// cors allows any origin, matching a local/dev deployment of this
// search core; spec §1 scopes auth/multi-tenant access control out.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs each request's method, path and status at info
// level, the way 2lar-b2's middleware.Logger wraps zap around chi's
// request lifecycle.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			if logger != nil {
				logger.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
				)
			}
		})
	}
}
