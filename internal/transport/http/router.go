package http

import (
	"context"
	"net/http"
	"time"

	obsmw "pollution-tracker/internal/observability/middleware"
	"pollution-tracker/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Services struct {
	Auth     service.AuthService
	Tokens   service.TokenService
	Ingest   service.IngestService
	Readings service.ReadingService
	Health   func(ctx context.Context) error
}

type Options struct {
	CORSOrigins     []string
	IngestRateLimit int // per minute per IP; <= 0 disables
}

func NewRouter(svc Services, opts Options) http.Handler {
	h := &handler{svc: svc}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(obsmw.WithRequestAndTrace)
	r.Use(obsmw.WithMetrics)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id", "X-Trace-Id"},
		ExposedHeaders: []string{"X-Request-Id", "X-Trace-Id"},
		MaxAge:         300,
	}))

	r.Get("/", h.root)
	r.Get("/health", h.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/users", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
	})

	r.Group(func(r chi.Router) {
		if opts.IngestRateLimit > 0 {
			r.Use(httprate.LimitByIP(opts.IngestRateLimit, time.Minute))
		}
		r.Post("/sensors/ingest", h.ingest)
	})

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(svc.Tokens))
		r.Get("/sensors", h.sensors)
		r.Get("/sensors/{sensor_id}/readings", h.readings)
		r.Get("/sensors/{sensor_id}/readings/{reading_id}/proof", h.proof)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
