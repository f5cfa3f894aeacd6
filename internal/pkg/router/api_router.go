package router

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/PremiumHook/app/controllers"
)

type ApiRouter struct {
	webhooks  *controllers.WebhookController
	ping      func(ctx context.Context) error
	rateLimit fiber.Handler
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	handlers := []fiber.Handler{}
	if h.rateLimit != nil {
		handlers = append(handlers, h.rateLimit)
	}
	api := app.Group("/api", handlers...)
	api.Get("/health", controllers.HandleHealth(h.ping))
	api.Post("/webhooks/payment", h.webhooks.HandlePaymentWebhook)
}

// NewApiRouter mounts the webhook endpoint behind rateLimit, which may be nil.
func NewApiRouter(webhooks *controllers.WebhookController, ping func(ctx context.Context) error, rateLimit fiber.Handler) *ApiRouter {
	return &ApiRouter{webhooks: webhooks, ping: ping, rateLimit: rateLimit}
}
