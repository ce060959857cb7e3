package handler // declare the package name; contains HTTP handlers

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/mission-dashboard/internal/dashboard"
)

// Health is a liveness endpoint for load balancers.  It reports how many
// dashboards are held in memory.
func Health(reg *dashboard.Registry) echo.HandlerFunc {
    return func(c echo.Context) error {
        return c.JSON(http.StatusOK, echo.Map{"status": "ok", "dashboards": reg.Len()})
    }
}
