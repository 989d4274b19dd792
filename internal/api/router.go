package api

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lzjever/mbos-wso/internal/api/middleware"
	"github.com/lzjever/mbos-wso/internal/kube"
	"github.com/lzjever/mbos-wso/internal/lifecycle"
	"github.com/lzjever/mbos-wso/internal/meta"
)

type API struct {
	gw      *kube.Gateway
	store   *meta.Store
	manager *lifecycle.Manager
	limiter *middleware.RateLimiter
	log     *zap.Logger
}

func NewAPI(gw *kube.Gateway, store *meta.Store, manager *lifecycle.Manager, limiter *middleware.RateLimiter, log *zap.Logger) *API {
	return &API{
		gw:      gw,
		store:   store,
		manager: manager,
		limiter: limiter,
		log:     log,
	}
}

func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recoverer(a.log))
	r.Use(middleware.Logger)
	if a.limiter != nil {
		r.Use(middleware.RateLimit(a.limiter))
	}
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Health endpoints
	r.Get("/healthz", a.HealthHandler)
	r.Get("/readyz", a.ReadyHandler)

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Workspaces
		r.Get("/workspaces", a.ListWorkspaces)
		r.Post("/workspaces", a.CreateWorkspace)
		r.Get("/workspaces/{ref}", a.GetWorkspace)
		r.Delete("/workspaces/{ref}", a.DeleteWorkspace)
		r.Post("/workspaces/{ref}:start", a.StartWorkspace)
		r.Post("/workspaces/{ref}:stop", a.StopWorkspace)
		r.Post("/workspaces/{ref}:rebuild", a.RebuildWorkspace)
		r.Post("/workspaces/{ref}:resize", a.ResizeWorkspace)
		r.Post("/workspaces/{ref}:duplicate", a.DuplicateWorkspace)

		// Creation progress
		r.Get("/workspaces/{ref}/creation", a.GetCreationLog)
		r.Get("/workspaces/{ref}/creation/stream", a.StreamCreation)

		// Bulk
		r.Post("/bulk", a.BulkAction)

		// Schedules and expiry policy
		r.Get("/schedules", a.ListSchedules)
		r.Put("/schedules", a.SetSchedule)
		r.Delete("/schedules", a.RemoveSchedule)
		r.Get("/expiry", a.GetExpiryDays)
		r.Put("/expiry", a.SetExpiryDays)

		// Presets
		r.Get("/presets", a.ListPresets)
		r.Post("/presets", a.CreatePreset)
		r.Delete("/presets/{id}", a.DeletePreset)

		// Recent tasks
		r.Get("/tasks", a.ListTasks)
	})

	return r
}
