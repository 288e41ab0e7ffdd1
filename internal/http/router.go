package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"manualrag/internal/handlers"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Manuals        *handlers.ManualHandler
	Documents      *handlers.DocumentHandler
	Health         *handlers.HealthHandler
	Chat           http.Handler
	AllowedOrigins []string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS(deps.AllowedOrigins))

	r.Method(http.MethodGet, "/health", deps.Health)

	r.Post("/upload", deps.Manuals.Upload)
	r.Get("/manuals", deps.Manuals.List)
	r.Get("/manual", deps.Manuals.Get)
	r.Delete("/manual", deps.Manuals.Delete)
	r.Get("/uploads", deps.Manuals.Uploads)

	r.Route("/documents", func(r chi.Router) {
		r.Post("/", deps.Documents.Create)
		r.Get("/{id}", deps.Documents.Get)
		r.Put("/{id}", deps.Documents.Update)
		r.Delete("/{id}", deps.Documents.Delete)
	})

	if deps.Chat != nil {
		r.Method(http.MethodGet, "/ws", deps.Chat)
	}

	return r
}
