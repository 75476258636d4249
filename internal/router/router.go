package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/amirabdullahi/Dinemate/internal/handler"    // import the handlers that implement business logic
	"github.com/amirabdullahi/Dinemate/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring systems hit this endpoint.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers diner authentication routes and the protected
// /v1/me endpoint.  Unauthenticated operations live under /v1/auth.
// The optional rateLimit middleware (Redis token bucket) is applied to
// login and register to slow down credential stuffing; pass nil to
// disable.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, rateLimit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	if rateLimit != nil {
		g.Use(rateLimit)
	}
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout accepts a refresh token in the body and does not require a JWT.
	g.POST("/logout", a.Logout)
	g.POST("/forgot-password", a.ForgotPassword)
	g.POST("/reset-password", a.ResetPassword)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(middleware.RoleUser))
	auth.GET("/me", a.Me)
}
