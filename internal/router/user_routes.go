package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-ratings/internal/handler"
	"github.com/iliyamo/store-ratings/internal/middleware"
)

// RegisterUser wires the authenticated user endpoints under /api/user.
// These require a valid token but no particular role, matching the rule
// that any signed-in account may browse stores, rate them and rotate its
// own password.  The cache middleware (Redis-backed in production, or a
// pass-through) fronts the store list so repeated searches skip MySQL.
func RegisterUser(e *echo.Echo, h *handler.UserHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group("/api/user")
	g.Use(middleware.JWTAuth(jwtSecret))

	g.GET("/stores", h.ListStores, cache)
	g.POST("/stores/:id/rating", h.SubmitRating)
	g.PUT("/password", h.ChangePassword)
	g.POST("/logout", h.Logout)
}
