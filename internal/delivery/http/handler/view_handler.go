package handler

import (
	"errors"

	"jobdash/internal/dashboard"
	"jobdash/internal/delivery/http/middleware"
	"jobdash/internal/pkg/response"
	"jobdash/internal/router"

	"github.com/gofiber/fiber/v3"
)

// ViewHandler serves the dashboard's route surface. Every request is a
// navigation: the guard either lets it through, answered with the view to
// render, or redirects.
type ViewHandler struct {
	workspaces *dashboard.Workspaces
}

type viewResponse struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	Title     string `json:"title"`
	Component string `json:"component"`
}

func NewViewHandler(workspaces *dashboard.Workspaces) *ViewHandler {
	return &ViewHandler{workspaces: workspaces}
}

func (h *ViewHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.Navigate)
	r.Get("/login", h.Navigate)
	r.Get("/index", h.Navigate)
	r.Get("/index/*", h.Navigate)
}

func (h *ViewHandler) Navigate(c fiber.Ctx) error {
	w := h.workspaces.Anonymous()
	if st, ok := middleware.SessionFrom(c); ok {
		w = h.workspaces.Open(st)
	}

	page, err := w.Navigate(c.Path())
	if err != nil {
		switch {
		case errors.Is(err, router.ErrRouteNotFound):
			return middleware.NewAppError(fiber.StatusNotFound, "Page not found", nil, err)
		default:
			return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
		}
	}

	if page.Redirected {
		return c.Redirect().Status(fiber.StatusFound).To(page.Path)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, viewResponse{
		Path:      page.Path,
		Name:      page.Name,
		Title:     page.Title,
		Component: page.Component,
	})
}
