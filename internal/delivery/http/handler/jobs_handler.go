package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"jobdash/internal/dashboard"
	"jobdash/internal/delivery/http/middleware"
	"jobdash/internal/domain/job"
	"jobdash/internal/jobapi"
	"jobdash/internal/jobview"
	"jobdash/internal/pkg/response"
	"jobdash/internal/session"
	"jobdash/internal/transport"

	"github.com/gofiber/fiber/v3"
)

type JobsHandler struct {
	jobs       *dashboard.Jobs
	workspaces *dashboard.Workspaces
}

func NewJobsHandler(jobs *dashboard.Jobs, workspaces *dashboard.Workspaces) *JobsHandler {
	return &JobsHandler{jobs: jobs, workspaces: workspaces}
}

func (h *JobsHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/search", h.Search)
	r.Get("/hot", h.Hot)
	r.Get("/recommendations", h.Recommendations)
	r.Get("/favorites", h.Favorites)
	r.Get("/:id", h.Detail)
	r.Post("/:id/favorite", h.ToggleFavorite)
}

func (h *JobsHandler) Search(c fiber.Ctx) error {
	page, err := parseQueryIntStrict(c, "page", 0)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	pageSize, err := parseQueryIntStrict(c, "pageSize", 0)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	ctx, w, _, err := h.workspace(c)
	if err != nil {
		return err
	}

	out, err := h.jobs.Search(ctx, w, job.SearchParams{
		Keywords:   c.Query("keywords"),
		City:       c.Query("city"),
		Experience: c.Query("experience"),
		Degree:     c.Query("degree"),
		Salary:     c.Query("salary"),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return mapJobsError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *JobsHandler) Hot(c fiber.Ctx) error {
	limit, err := parseQueryIntStrict(c, "limit", 0)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	ctx, w, _, err := h.workspace(c)
	if err != nil {
		return err
	}

	out, err := h.jobs.Hot(ctx, w, limit)
	if err != nil {
		return mapJobsError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *JobsHandler) Recommendations(c fiber.Ctx) error {
	limit, err := parseQueryIntStrict(c, "limit", 0)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	ctx, w, _, err := h.workspace(c)
	if err != nil {
		return err
	}

	out, err := h.jobs.Recommendations(ctx, w, job.RecommendParams{
		Limit:    limit,
		Keywords: c.Query("keywords"),
	})
	if err != nil {
		return mapJobsError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *JobsHandler) Favorites(c fiber.Ctx) error {
	page, err := parseQueryIntStrict(c, "page", 0)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	pageSize, err := parseQueryIntStrict(c, "pageSize", 0)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	ctx, w, _, err := h.workspace(c)
	if err != nil {
		return err
	}

	out, err := h.jobs.Favorites(ctx, w, job.FavoriteFilter{
		Keywords: c.Query("keywords"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return mapJobsError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *JobsHandler) Detail(c fiber.Ctx) error {
	ctx, w, _, err := h.workspace(c)
	if err != nil {
		return err
	}

	out, err := h.jobs.Detail(ctx, w, job.ID(strings.TrimSpace(c.Params("id"))))
	if err != nil {
		return mapJobsError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *JobsHandler) ToggleFavorite(c fiber.Ctx) error {
	ctx, w, st, err := h.workspace(c)
	if err != nil {
		return err
	}

	id := job.ID(strings.TrimSpace(c.Params("id")))
	out, err := h.jobs.ToggleFavorite(ctx, w, st.UserID, id)
	if err != nil {
		return mapJobsError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

// workspace returns the caller's workspace and a context that forwards the
// caller's backend token.
func (h *JobsHandler) workspace(c fiber.Ctx) (context.Context, *dashboard.Workspace, session.State, error) {
	st, ok := middleware.SessionFrom(c)
	if !ok {
		return nil, nil, session.State{}, middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	ctx := transport.WithToken(c.Context(), st.AccessToken)
	return ctx, h.workspaces.Open(st), st, nil
}

func parseQueryIntStrict(c fiber.Ctx, key string, defaultVal int) (int, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(s)
}

func mapJobsError(err error) error {
	if err == nil {
		return nil
	}

	var validation *jobapi.ValidationError
	var apiErr *transport.APIError
	var netErr *transport.NetworkError

	switch {
	case errors.As(err, &validation):
		return middleware.NewAppError(fiber.StatusBadRequest, validation.Error(), nil, err)
	case errors.Is(err, jobview.ErrToggleInFlight), errors.Is(err, jobview.ErrDetailInFlight):
		return middleware.NewAppError(fiber.StatusConflict, "Request already in flight", nil, err)
	case errors.Is(err, jobview.ErrStale), errors.Is(err, jobview.ErrUnmounted):
		return middleware.NewAppError(fiber.StatusConflict, "View changed while loading", nil, err)
	case errors.Is(err, dashboard.ErrNoScreen), errors.Is(err, jobview.ErrJobMissing):
		return middleware.NewAppError(fiber.StatusNotFound, "Job is not on the current view", nil, err)
	case errors.As(err, &apiErr) && apiErr.ClientError():
		msg := apiErr.Message
		if msg == "" {
			msg = response.DefaultMessage(apiErr.StatusCode)
		}
		return middleware.NewAppError(apiErr.StatusCode, msg, nil, err)
	case errors.As(err, &apiErr), errors.As(err, &netErr):
		return middleware.NewAppError(fiber.StatusBadGateway, response.MessageBadGateway, nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
