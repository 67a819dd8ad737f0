package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-ratings/internal/handler"
	"github.com/iliyamo/store-ratings/internal/middleware"
	"github.com/iliyamo/store-ratings/internal/repository"
)

// RegisterAdmin wires the ADMIN-only endpoints under /api/admin.  Every
// route passes the JWT check first and then the exact-role gate, so a valid
// USER or OWNER token is rejected with 403 before any handler runs.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/api/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(repository.RoleAdmin))

	// Platform-wide stats plus user and store listings.
	g.GET("/dashboard", h.Dashboard)
	// Admin-side registration forms.
	g.POST("/users", h.AddUser)
	g.POST("/stores", h.AddStore)
}
