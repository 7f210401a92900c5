package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"radreport-ai/internal/handlers"
	"radreport-ai/internal/service"
	"radreport-ai/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	CaseService      service.CaseService
	ReferenceService service.ReferenceService
	VectorStore      vectorstore.VectorStore
	Generation       handlers.BreakerState
	CollectionName   string
	Ingester         handlers.DirectoryIngester
	DocumentsPath    string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(CORS)

	cases := handlers.NewCaseHandler(deps.CaseService)
	reports := handlers.NewReportHandler(deps.CaseService)
	references := handlers.NewReferenceHandler(deps.ReferenceService)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(deps.VectorStore, deps.Generation, deps.CollectionName))

		r.Route("/v1", func(r chi.Router) {
			r.Post("/sources", references.Ingest)
			r.Method(http.MethodPost, "/index", handlers.NewIndexHandler(deps.Ingester, deps.DocumentsPath))
			r.Get("/studies", references.Studies)
			r.Post("/search", references.Search)
			r.Post("/checklists", references.Checklist)

			r.Post("/cases", cases.Start)
			r.Route("/cases/{caseID}", func(r chi.Router) {
				r.Get("/", cases.Get)
				r.Post("/answers", cases.Answer)
				r.Get("/progress", cases.Progress)
				r.Post("/finalize", cases.Finalize)
				r.Get("/reports", reports.History)
				r.Get("/reports/{version}", reports.Get)
			})
		})
	})

	// Liveness probe.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
