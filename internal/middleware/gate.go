package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/mission-dashboard/internal/authgate"
)

// AuthGate redirects visitors according to authgate.Decide.  It must run
// after Session.  Only the presence of a session cookie is checked; a stale
// token is caught by the first API call that rejects it.
func AuthGate() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            s := CurrentSession(c)
            hasToken := s != nil && s.HasHandle()
            d := authgate.Decide(hasToken, authgate.ViewOf(c.Request().URL.Path))
            if d.Allow {
                return next(c)
            }
            return c.Redirect(http.StatusFound, d.RedirectTo.Path())
        }
    }
}
