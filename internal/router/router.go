package router // package router defines how HTTP routes are registered

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mission-dashboard/internal/handler"
	"github.com/iliyamo/mission-dashboard/internal/middleware"
)

// Deps bundles what the routes need.
type Deps struct {
	Auth      *handler.AuthHandler
	Dashboard *handler.DashboardHandler
	Health    echo.HandlerFunc
	// RateLimit guards the credential forms; nil disables it.
	RateLimit echo.MiddlewareFunc
}

// RegisterRoutes registers the health check outside the gate and every view
// behind it.  The Session middleware must already be installed on e.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", d.Health)

	g := e.Group("", middleware.AuthGate())

	// The gate redirects "/" before this handler can run.
	g.GET("/", func(c echo.Context) error { return c.Redirect(http.StatusFound, "/login") })

	RegisterAuth(g, d.Auth, d.RateLimit)
	RegisterDashboard(g, d.Dashboard)
}

// RegisterAuth registers the login, register and logout routes.  POSTs of
// credentials go through the rate limiter when one is given.
func RegisterAuth(g *echo.Group, a *handler.AuthHandler, limit echo.MiddlewareFunc) {
	var mw []echo.MiddlewareFunc
	if limit != nil {
		mw = append(mw, limit)
	}
	g.GET("/login", a.LoginForm)
	g.POST("/login", a.Login, mw...)
	g.GET("/register", a.RegisterForm)
	g.POST("/register", a.Register, mw...)
	g.POST("/logout", a.Logout)
}

// RegisterDashboard registers the dashboard view and its actions.
func RegisterDashboard(g *echo.Group, h *handler.DashboardHandler) {
	g.GET("/dashboard", h.Show)
	g.POST("/dashboard/page", h.ChangePage)
	g.POST("/dashboard/year", h.ChangeYear)
	g.POST("/dashboard/limit", h.ChangeLimit)
	g.POST("/dashboard/missions/new", h.OpenCreate)
	g.POST("/dashboard/missions/:id/edit", h.OpenEdit)
	g.POST("/dashboard/form", h.SubmitForm)
	g.POST("/dashboard/form/cancel", h.CancelForm)
	g.POST("/dashboard/form/delete", h.DeleteMission)
}
