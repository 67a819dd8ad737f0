package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-ratings/internal/handler"
	"github.com/iliyamo/store-ratings/internal/middleware"
	"github.com/iliyamo/store-ratings/internal/repository"
)

// RegisterOwner wires the OWNER-only endpoints under /api/owner: the store
// dashboard and the owner password change.
func RegisterOwner(e *echo.Echo, h *handler.OwnerHandler, jwtSecret string) {
	g := e.Group("/api/owner")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(repository.RoleOwner))

	g.GET("/dashboard", h.Dashboard)
	g.PUT("/password", h.ChangePassword)
}
