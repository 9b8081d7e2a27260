package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/opicamp/opicamp/internal/access"
	"github.com/opicamp/opicamp/internal/auth"
	"github.com/opicamp/opicamp/internal/media"
	"github.com/opicamp/opicamp/internal/menu"
	"github.com/opicamp/opicamp/internal/menu/snapshot"
	"github.com/opicamp/opicamp/internal/observability"
	"github.com/opicamp/opicamp/internal/shared"
	"github.com/opicamp/opicamp/internal/survey"
	"github.com/opicamp/opicamp/internal/users"
	"github.com/opicamp/opicamp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	SessionManager  *shared.SessionManager
	CSRFManager     *shared.CSRFManager
	Guard           *access.Guard
	AuthHandler     *auth.Handler
	MenuHandler     *menu.Handler
	SnapshotHandler *snapshot.Handler
	UsersHandler    *users.Handler
	SurveyHandler   *survey.Handler
	MediaHandler    *media.Handler
	JobHandler      *jobs.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/auth", params.AuthHandler.MountRoutes)

	r.Route("/api/menu-permissions", func(r chi.Router) {
		params.MenuHandler.MountRoutes(r)
		if params.SnapshotHandler != nil {
			r.Group(func(r chi.Router) {
				if params.Guard != nil {
					r.Use(params.Guard.RequireAdmin)
				}
				r.Post("/generate-static", params.SnapshotHandler.Generate)
			})
		}
	})

	if params.UsersHandler != nil {
		r.Route("/api/users", params.UsersHandler.MountRoutes)
	}
	if params.SurveyHandler != nil {
		r.Route("/api/survey", params.SurveyHandler.MountRoutes)
	}
	if params.MediaHandler != nil {
		r.Route("/api/media", params.MediaHandler.MountAPIRoutes)
		r.Route("/media/objects", params.MediaHandler.MountObjectRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/api/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	// Role snapshot files. Served straight from disk so the static resolver
	// never needs a live query.
	if params.Config != nil && params.Config.SnapshotDir != "" {
		fileServer := http.StripPrefix("/menu/", http.FileServer(http.Dir(params.Config.SnapshotDir)))
		r.Handle("/menu/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers. The
// snapshots change only on regeneration, so a short browser cache is safe.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=300")
		next.ServeHTTP(w, r)
	})
}
