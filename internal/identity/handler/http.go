// Package handler exposes the auth endpoints over HTTP.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taskhub/backend/internal/identity/service"
	"taskhub/backend/internal/server/httperr"
	"taskhub/backend/internal/server/middleware"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Title     string `json:"title"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (h *AuthHTTP) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username, email, and password are required")
	}
	user, err := h.Svc.Register(c.Request().Context(), service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Title:     req.Title,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

func (h *AuthHTTP) Verify(c echo.Context) error {
	if err := h.Svc.VerifyAccount(c.Request().Context(), c.QueryParam("token")); err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "account verified"})
}

func (h *AuthHTTP) ResendVerification(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}
	if err := h.Svc.ResendVerification(c.Request().Context(), req.Email); err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "verification email sent"})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	pair, err := h.Svc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, tokenPairResponse(pair))
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	pair, err := h.Svc.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, tokenPairResponse(pair))
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
	}
	if err := h.Svc.Logout(c.Request().Context(), p); err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func tokenPairResponse(pair *service.TokenPair) echo.Map {
	return echo.Map{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"expiresAt":    pair.ExpiresAt,
	}
}
