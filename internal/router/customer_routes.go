package router

import (
	"github.com/labstack/echo/v4"

	"github.com/amirabdullahi/Dinemate/internal/handler"
	"github.com/amirabdullahi/Dinemate/internal/middleware"
)

// RegisterCustomer registers diner-scoped endpoints under /v1.  All
// routes require a valid JWT and the user role.  The optional cache
// middleware (Redis response cache) is applied to the browse listing
// only; restaurant detail and everything downstream of a booking must
// always be fresh.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleUser),
	)

	// Browse
	if cache != nil {
		g.GET("/restaurants", h.BrowseRestaurants, cache)
	} else {
		g.GET("/restaurants", h.BrowseRestaurants)
	}
	g.GET("/restaurants/:id", h.GetRestaurant)
	g.GET("/restaurants/:id/menu", h.GetMenu)
	g.GET("/restaurants/:id/sitting-areas", h.GetSittingAreas)

	// Booking
	g.POST("/restaurants/:id/reserve", h.ConfirmAndPay)
	g.GET("/my-reservations", h.ListMyReservations)
	g.GET("/reservations/:id", h.GetReservation)

	// Profile
	g.PATCH("/profile", h.UpdateProfile)
	g.GET("/mpesa-numbers", h.ListMpesaNumbers)
	g.POST("/mpesa-numbers", h.AddMpesaNumber)
	g.GET("/favourites", h.ListFavourites)
	g.POST("/favourites", h.AddFavourite)
	g.GET("/recommendations", h.Recommendations)
}
