// Package server wires the echo router and middleware for the HTTP API.
package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	identityhandler "taskhub/backend/internal/identity/handler"
	policyhandler "taskhub/backend/internal/policy/handler"
	"taskhub/backend/internal/server/middleware"
	taskhandler "taskhub/backend/internal/task/handler"
	teamhandler "taskhub/backend/internal/team/handler"
	userhandler "taskhub/backend/internal/user/handler"
)

// Deps holds the handlers and middleware the router wires together.
type Deps struct {
	AuthHandler   *identityhandler.AuthHTTP
	UserHandler   *userhandler.UserHTTP
	TeamHandler   *teamhandler.TeamHTTP
	TaskHandler   *taskhandler.TaskHTTP
	PolicyHandler *policyhandler.PolicyHTTP
	Auth          *middleware.Auth
	Metrics       echo.MiddlewareFunc
}

// New builds the echo instance with all routes registered.
func New(d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	if d.Metrics != nil {
		e.Use(d.Metrics)
	}

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.GET("/verify", d.AuthHandler.Verify)
	auth.POST("/resend-verification", d.AuthHandler.ResendVerification)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)

	private := api.Group("", d.Auth.RequireAuth)
	private.POST("/auth/logout", d.AuthHandler.Logout)

	private.POST("/teams", d.TeamHandler.Create)
	private.GET("/teams", d.TeamHandler.List)
	private.GET("/teams/:id", d.TeamHandler.Get)
	private.PUT("/teams/:id", d.TeamHandler.Update)
	private.DELETE("/teams/:id", d.TeamHandler.Delete)
	private.GET("/teams/:id/members", d.TeamHandler.ListMembers)
	private.POST("/teams/:id/members", d.TeamHandler.AddMember)
	private.PUT("/teams/:id/members/:userId", d.TeamHandler.UpdateMemberRole)
	private.DELETE("/teams/:id/members/:userId", d.TeamHandler.RemoveMember)
	private.GET("/teams/:id/tasks", d.TaskHandler.ListByTeam)
	private.GET("/teams/:id/policies", d.PolicyHandler.List)
	private.POST("/teams/:id/policies", d.PolicyHandler.Create)
	private.DELETE("/teams/:id/policies/:policyId", d.PolicyHandler.Delete)

	private.GET("/users/profile", d.UserHandler.Profile)
	private.GET("/users/lookup", d.UserHandler.Lookup)
	private.GET("/users/:id", d.UserHandler.Get)
	private.PUT("/users/:id", d.UserHandler.Update)
	private.DELETE("/users/:id", d.UserHandler.Delete)
	private.GET("/users/:id/teams", d.UserHandler.ListTeams)

	private.POST("/tasks", d.TaskHandler.Create)
	private.GET("/tasks", d.TaskHandler.List)
	private.GET("/tasks/:id", d.TaskHandler.Get)
	private.PUT("/tasks/:id", d.TaskHandler.Update)
	private.DELETE("/tasks/:id", d.TaskHandler.Delete)

	return e
}
