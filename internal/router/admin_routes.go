package router

import (
	"github.com/labstack/echo/v4"

	"github.com/amirabdullahi/Dinemate/internal/handler"
	"github.com/amirabdullahi/Dinemate/internal/middleware"
)

// RegisterAdmin registers the dashboard endpoints under /v1/admin.
// Only login is public; everything else requires the admin role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string, rateLimit echo.MiddlewareFunc) {
	if rateLimit != nil {
		e.POST("/v1/admin/login", h.Login, rateLimit)
	} else {
		e.POST("/v1/admin/login", h.Login)
	}

	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleAdmin),
	)

	g.GET("/restaurants", h.ListRestaurants)
	g.PATCH("/restaurants/:id", h.Decide)

	g.GET("/activities", h.RecentActivities)

	g.GET("/users", h.ListUsers)
	g.GET("/users/:id", h.GetUser)
	g.PATCH("/users/:id", h.UpdateUser)
	g.DELETE("/users/:id", h.DeleteUser)

	g.GET("/analytics", h.Dashboard)
}
