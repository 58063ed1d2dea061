// Package handler exposes the user account endpoints over HTTP.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taskhub/backend/internal/security"
	"taskhub/backend/internal/server/httperr"
	"taskhub/backend/internal/server/middleware"
	teamdomain "taskhub/backend/internal/team/domain"
	userdomain "taskhub/backend/internal/user/domain"
	"taskhub/backend/internal/user/service"
)

type UserHTTP struct {
	Svc *service.UserService
}

type userResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Title     string `json:"title"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Verified  bool   `json:"verified"`
}

type teamSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (h *UserHTTP) Profile(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	user, err := h.Svc.Profile(c.Request().Context(), p)
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *UserHTTP) Get(c echo.Context) error {
	if _, err := principal(c); err != nil {
		return err
	}
	user, err := h.Svc.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Lookup finds a user by ?username= or ?email=.
func (h *UserHTTP) Lookup(c echo.Context) error {
	if _, err := principal(c); err != nil {
		return err
	}
	ctx := c.Request().Context()
	var (
		user *userdomain.User
		err  error
	)
	switch {
	case c.QueryParam("username") != "":
		user, err = h.Svc.GetByUsername(ctx, c.QueryParam("username"))
	case c.QueryParam("email") != "":
		user, err = h.Svc.GetByEmail(ctx, c.QueryParam("email"))
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "username or email query parameter is required")
	}
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *UserHTTP) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req struct {
		Title           *string `json:"title"`
		FirstName       *string `json:"firstName"`
		LastName        *string `json:"lastName"`
		Username        *string `json:"username"`
		Email           *string `json:"email"`
		CurrentPassword string  `json:"currentPassword"`
		NewPassword     string  `json:"newPassword"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	user, err := h.Svc.UpdateProfile(c.Request().Context(), p, c.Param("id"), service.UpdateInput{
		Title:           req.Title,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Username:        req.Username,
		Email:           req.Email,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *UserHTTP) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteAccount(c.Request().Context(), p, c.Param("id")); err != nil {
		return httperr.Map(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *UserHTTP) ListTeams(c echo.Context) error {
	if _, err := principal(c); err != nil {
		return err
	}
	teams, err := h.Svc.ListTeams(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httperr.Map(err)
	}
	out := make([]teamSummary, 0, len(teams))
	for _, t := range teams {
		out = append(out, toTeamSummary(t))
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

func toUserResponse(u *userdomain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Title:     u.Title,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Verified:  u.Verified,
	}
}

func toTeamSummary(t *teamdomain.Team) teamSummary {
	return teamSummary{ID: t.ID, Name: t.Name}
}
