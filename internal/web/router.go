package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/s1natex/taskboard-GO/internal/board"
	"github.com/s1natex/taskboard-GO/internal/middleware"
)

type Deps struct {
	Board   *board.Controller
	Logger  *slog.Logger
	Limiter *rate.Limiter // nil disables rate limiting
}

// NewRouter wires the board page, the JSON API, health and metrics.
func NewRouter(d Deps) *chi.Mux {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	r := chi.NewRouter()

	// ---- Middleware stack (order matters a bit) ----
	// RequestID first so downstream can include it (logger, spans)
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(d.Logger))

	// Panic recovery: never crash the board; returns 500 on panics
	r.Use(chimw.Recoverer)
	r.Use(middleware.TracingMiddleware)
	r.Use(middleware.MetricsMiddleware)

	// Timeouts: also bounds how long a submit waits on the mirror
	r.Use(chimw.Timeout(15 * time.Second))
	r.Use(middleware.RateLimitMiddleware(d.Limiter))

	// ---- Routes ----

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", middleware.MetricsHandler())

	pages := &pageHandler{board: d.Board, logger: d.Logger}
	pages.register(r)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id", "Traceparent"},
			ExposedHeaders:   []string{"X-Request-Id", "Trace-Id"},
			AllowCredentials: false,
			MaxAge:           300, // 5 minutes
		}))
		RegisterAPIRoutes(r, d.Board, d.Logger)
	})

	return r
}
