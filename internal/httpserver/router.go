package httpserver

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// newRouter creates a configured Echo instance. The dashboard is served
// from a different origin than the API, so CORS is restricted to the
// configured origins; with none configured it stays open for local
// development.
func newRouter(allowedOrigins []string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	cors := middleware.DefaultCORSConfig
	if len(allowedOrigins) > 0 {
		cors.AllowOrigins = allowedOrigins
	}
	e.Use(middleware.CORSWithConfig(cors))
	return e
}
