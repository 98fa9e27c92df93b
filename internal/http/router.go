package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"codemarks/internal/handlers"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Index     handlers.MarkerIndex
	Checklist handlers.ChecklistService
	DB        handlers.Pinger
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	catalog := handlers.NewCatalogHandler(deps.Index)
	settingsHandler := handlers.NewSettingsHandler(deps.Index)
	processes := handlers.NewProcessHandler(deps.Checklist)
	tasks := handlers.NewTaskHandler(deps.Checklist)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(deps.DB, deps.Index))

		r.Get("/settings", settingsHandler.Get)
		r.Put("/settings", settingsHandler.Put)

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/scripts", catalog.Scripts)
			r.Get("/scripts/{name}", catalog.Script)
			r.Get("/scripts/{name}/lines/{ordinal}", catalog.Line)
			r.Post("/refresh", catalog.Refresh)
			r.Get("/stats", catalog.Stats)
		})

		r.Route("/processes", func(r chi.Router) {
			r.Get("/", processes.List)
			r.Post("/", processes.Create)
			r.Post("/import", processes.Import)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", processes.Get)
				r.Patch("/", processes.Update)
				r.Delete("/", processes.Delete)
				r.Post("/export", processes.Export)
				r.Get("/resync", processes.Resync)

				r.Post("/tasks", tasks.Add)
				r.Route("/tasks/{taskID}", func(r chi.Router) {
					r.Patch("/", tasks.Update)
					r.Delete("/", tasks.Delete)
					r.Post("/toggle", tasks.Toggle)
					r.Post("/relink", tasks.Relink)
					r.Post("/open", tasks.Open)
				})
			})
		})
	})

	return r
}
