// Package handler exposes the team endpoints over HTTP.
package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	memdomain "taskhub/backend/internal/membership/domain"
	"taskhub/backend/internal/security"
	"taskhub/backend/internal/server/httperr"
	"taskhub/backend/internal/server/middleware"
	teamdomain "taskhub/backend/internal/team/domain"
	"taskhub/backend/internal/team/service"
)

type TeamHTTP struct {
	Svc *service.TeamService
}

type teamResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type memberResponse struct {
	UserID string `json:"userId"`
	TeamID string `json:"teamId"`
	Role   string `json:"role"`
}

func (h *TeamHTTP) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "team name is required")
	}
	team, err := h.Svc.CreateTeam(c.Request().Context(), p, req.Name)
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusCreated, toTeamResponse(team))
}

func (h *TeamHTTP) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	team, err := h.Svc.GetTeam(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, toTeamResponse(team))
}

func (h *TeamHTTP) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	teams, err := h.Svc.ListTeamsForUser(c.Request().Context(), p)
	if err != nil {
		return httperr.Map(err)
	}
	out := make([]teamResponse, 0, len(teams))
	for _, t := range teams {
		out = append(out, toTeamResponse(t))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TeamHTTP) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "team name is required")
	}
	team, err := h.Svc.UpdateTeam(c.Request().Context(), p, c.Param("id"), req.Name)
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, toTeamResponse(team))
}

func (h *TeamHTTP) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteTeam(c.Request().Context(), p, c.Param("id")); err != nil {
		return httperr.Map(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TeamHTTP) AddMember(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username is required")
	}
	if req.Role == "" {
		req.Role = string(memdomain.RoleMember)
	}
	m, err := h.Svc.AddUserToTeam(c.Request().Context(), p, c.Param("id"), req.Username, memdomain.Role(req.Role))
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusCreated, toMemberResponse(m))
}

func (h *TeamHTTP) UpdateMemberRole(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	m, err := h.Svc.UpdateUserRole(c.Request().Context(), p, c.Param("id"), c.Param("userId"), memdomain.Role(req.Role))
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, toMemberResponse(m))
}

func (h *TeamHTTP) RemoveMember(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.Svc.RemoveUserFromTeam(c.Request().Context(), p, c.Param("id"), c.Param("userId")); err != nil {
		return httperr.Map(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TeamHTTP) ListMembers(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	members, err := h.Svc.ListMembers(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return httperr.Map(err)
	}
	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, toMemberResponse(m))
	}
	return c.JSON(http.StatusOK, out)
}

func principal(c echo.Context) (security.Principal, error) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return security.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
	}
	return p, nil
}

func toTeamResponse(t *teamdomain.Team) teamResponse {
	return teamResponse{
		ID:        t.ID,
		Name:      t.Name,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
		UpdatedAt: t.UpdatedAt.Format(time.RFC3339),
	}
}

func toMemberResponse(m *memdomain.Membership) memberResponse {
	return memberResponse{UserID: m.UserID, TeamID: m.TeamID, Role: string(m.Role)}
}
