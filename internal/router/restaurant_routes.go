package router

import (
	"github.com/labstack/echo/v4"

	"github.com/amirabdullahi/Dinemate/internal/handler"
	"github.com/amirabdullahi/Dinemate/internal/middleware"
)

// RegisterRestaurant registers restaurant-scoped endpoints under
// /v1/restaurant.  Register and login are public (rate limited when
// the middleware is supplied); everything else requires the
// restaurant role.
func RegisterRestaurant(e *echo.Echo, h *handler.RestaurantHandler, jwtSecret string, rateLimit echo.MiddlewareFunc) {
	pub := e.Group("/v1/restaurant")
	if rateLimit != nil {
		pub.Use(rateLimit)
	}
	pub.POST("/register", h.Register)
	pub.POST("/login", h.Login)
	pub.POST("/forgot-password", h.ForgotPassword)
	pub.POST("/reset-password", h.ResetPassword)

	g := e.Group(
		"/v1/restaurant",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleRestaurant),
	)

	g.POST("/logout", h.Logout)

	// Profile
	g.GET("/profile", h.GetProfile)
	g.PATCH("/profile", h.UpdateProfile)

	// Reservations
	g.GET("/reservations", h.ListReservations)
	g.PATCH("/reservations/:id", h.UpdateReservationStatus)

	// Menu
	g.GET("/menu", h.ListMenu)
	g.POST("/menu", h.CreateMenuItem)
	g.PATCH("/menu/:id", h.UpdateMenuItem)
	g.DELETE("/menu/:id", h.DeleteMenuItem)

	// Sitting areas
	g.GET("/sitting-areas", h.ListSittingAreas)
	g.POST("/sitting-areas", h.AddSittingArea)

	// Analytics
	g.GET("/analytics/revenue", h.TotalRevenue)
	g.GET("/analytics/average-spend", h.AverageSpend)
	g.GET("/analytics/no-show-rate", h.NoShowRate)
	g.GET("/analytics/peak-times", h.PeakTimes)
	g.GET("/analytics/popular-items", h.PopularItems)
	g.GET("/analytics/monthly-revenue", h.MonthlyRevenue)
}
