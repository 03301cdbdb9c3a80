// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ktokiya/eigaplan/internal/handler"
	"github.com/ktokiya/eigaplan/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers authentication routes and the protected /v1/me
// endpoint. Unauthenticated operations live under /v1/auth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// rotates the refresh token
	g.POST("/refresh", a.Refresh)
	// issues a new access token without rotating the refresh token
	g.POST("/refresh-access", a.RefreshAccess)
	// logout works with either a bearer token or a refresh_token body,
	// so it stays outside the JWT middleware
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("USER", "ADMIN"))
	auth.GET("/me", a.Me)
}

// RegisterCatalog registers the unauthenticated browse endpoints:
// showtimes, theaters, walking distances and catalog stats.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler) {
	e.GET("/v1/showtimes", h.SearchShowtimes)
	e.GET("/v1/showtimes/:id", h.GetShowtime)
	e.GET("/v1/theaters", h.ListTheaters)
	e.GET("/v1/theaters/distances", h.ListDistances)
	e.GET("/v1/stats", h.GetStats)
}

// RegisterPlans registers optimization and plan retrieval. Optimize
// accepts anonymous callers; saving inside it requires a valid token,
// which OptionalJWTAuth surfaces when present.
func RegisterPlans(e *echo.Echo, h *handler.PlanHandler, jwtSecret string) {
	e.POST("/v1/optimize", h.Optimize, middleware.OptionalJWTAuth(jwtSecret))
	e.GET("/v1/plans/:ref", h.GetPlan)

	me := e.Group("/v1/me")
	me.Use(middleware.JWTAuth(jwtSecret))
	me.Use(middleware.RequireRole("USER", "ADMIN"))
	me.GET("/plans", h.MyPlans)
}

// RegisterAdmin registers ingestion endpoints behind the ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN"))
	g.POST("/import", h.ImportSchedule)
	g.GET("/crawl-status", h.CrawlStatus)
}
