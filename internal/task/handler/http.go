// Package handler exposes the task endpoints over HTTP.
package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"taskhub/backend/internal/security"
	"taskhub/backend/internal/server/httperr"
	"taskhub/backend/internal/server/middleware"
	taskdomain "taskhub/backend/internal/task/domain"
	"taskhub/backend/internal/task/service"
)

type TaskHTTP struct {
	Svc *service.TaskService
}

type taskResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatorID   string `json:"creatorId"`
	TeamID      string `json:"teamId,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	TeamID      string `json:"teamId"`
}

func (h *TaskHTTP) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "task title is required")
	}
	if req.Status != "" && !taskdomain.Status(req.Status).Valid() {
		return httperr.Map(taskdomain.ErrInvalidStatus)
	}
	task, err := h.Svc.Create(c.Request().Context(), p, service.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      taskdomain.Status(req.Status),
		TeamID:      req.TeamID,
	})
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusCreated, toTaskResponse(task))
}

func (h *TaskHTTP) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	task, err := h.Svc.Get(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

func (h *TaskHTTP) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "task title is required")
	}
	if !taskdomain.Status(req.Status).Valid() {
		return httperr.Map(taskdomain.ErrInvalidStatus)
	}
	task, err := h.Svc.Update(c.Request().Context(), p, c.Param("id"), service.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      taskdomain.Status(req.Status),
	})
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

func (h *TaskHTTP) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return httperr.Map(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// List returns the caller's tasks, optionally filtered by ?status= or
// searched by ?q=.
func (h *TaskHTTP) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	var tasks []*taskdomain.Task
	switch {
	case c.QueryParam("q") != "":
		tasks, err = h.Svc.SearchByTitle(ctx, p, c.QueryParam("q"))
	case c.QueryParam("status") != "":
		tasks, err = h.Svc.FilterByStatus(ctx, p, taskdomain.Status(c.QueryParam("status")))
	default:
		tasks, err = h.Svc.ListMine(ctx, p)
	}
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, toTaskResponses(tasks))
}

func (h *TaskHTTP) ListByTeam(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	tasks, err := h.Svc.ListByTeam(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, toTaskResponses(tasks))
}

func principal(c echo.Context) (security.Principal, error) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return security.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
	}
	return p, nil
}

func toTaskResponse(t *taskdomain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CreatorID:   t.CreatorID,
		TeamID:      t.TeamID,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
}

func toTaskResponses(tasks []*taskdomain.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	return out
}
