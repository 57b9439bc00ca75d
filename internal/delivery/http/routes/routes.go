package routes

import (
	"jobdash/internal/delivery/http/handler"
	"jobdash/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	health   *handler.HealthHandler
	views    *handler.ViewHandler
	sessions *handler.SessionHandler
	jobs     *handler.JobsHandler
	sessMw   *middleware.SessionMiddleware
}

func NewRegistry(
	health *handler.HealthHandler,
	views *handler.ViewHandler,
	sessions *handler.SessionHandler,
	jobs *handler.JobsHandler,
	sessMw *middleware.SessionMiddleware,
) *Registry {
	return &Registry{health: health, views: views, sessions: sessions, jobs: jobs, sessMw: sessMw}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerAPI(app)
	r.registerViews(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	r.health.RegisterRoutes(app)
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")

	r.sessions.RegisterRoutes(api.Group("", r.sessMw.Optional()))
	r.jobs.RegisterRoutes(api.Group("/jobs", r.sessMw.Required()))
}

func (r *Registry) registerViews(app *fiber.App) {
	r.views.RegisterRoutes(app.Group("", r.sessMw.Optional()))
}
