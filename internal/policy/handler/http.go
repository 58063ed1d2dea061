// Package handler exposes the team access policy endpoints over HTTP.
package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	policydomain "taskhub/backend/internal/policy/domain"
	"taskhub/backend/internal/policy/service"
	"taskhub/backend/internal/security"
	"taskhub/backend/internal/server/httperr"
	"taskhub/backend/internal/server/middleware"
)

type PolicyHTTP struct {
	Svc *service.PolicyService
}

type policyResponse struct {
	ID        string `json:"id"`
	TeamID    string `json:"teamId"`
	Name      string `json:"name"`
	Rules     string `json:"rules"`
	Enabled   bool   `json:"enabled"`
	CreatedAt string `json:"createdAt"`
}

func (h *PolicyHTTP) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req struct {
		Name  string `json:"name"`
		Rules string `json:"rules"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	policy, err := h.Svc.CreatePolicy(c.Request().Context(), p, c.Param("id"), req.Name, req.Rules)
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusCreated, toPolicyResponse(policy))
}

func (h *PolicyHTTP) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	policies, err := h.Svc.ListPolicies(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return httperr.Map(err)
	}
	out := make([]policyResponse, 0, len(policies))
	for _, policy := range policies {
		out = append(out, toPolicyResponse(policy))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PolicyHTTP) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.Svc.DeletePolicy(c.Request().Context(), p, c.Param("id"), c.Param("policyId")); err != nil {
		return httperr.Map(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func principal(c echo.Context) (security.Principal, error) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return security.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
	}
	return p, nil
}

func toPolicyResponse(p *policydomain.AccessPolicy) policyResponse {
	return policyResponse{
		ID:        p.ID,
		TeamID:    p.TeamID,
		Name:      p.Name,
		Rules:     p.Rules,
		Enabled:   p.Enabled,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}
