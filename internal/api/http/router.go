package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/starline-labs/storefront-desk/internal/api/http/handlers"
	"github.com/starline-labs/storefront-desk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Storefront     *handlers.StorefrontHandler
	Prices         *handlers.PricesHandler
	Tokens         *handlers.TokensHandler
	Updates        *handlers.UpdatesHandler
	AuthMiddleware *auth.Middleware
	APIKey         *auth.APIKeyMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	storefront := app.Group("/storefront", cfg.APIKey.Handle)
	storefront.Post("/orders", cfg.Storefront.CreateOrder)
	storefront.Post("/tokens", cfg.Tokens.Issue)
	storefront.Post("/updates", cfg.Updates.Receive)

	app.Get("/prices", cfg.Prices.List)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireFullAdmin())
	admin.Put("/prices/:key", cfg.Prices.Update)
}
