package router

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/monitor"

	"github.com/ManuelReschke/PremiumHook/app/controllers"
)

// MetricsRouter exposes fiber's monitor and the webhook outcome counters
// behind basic auth. Without both a user and a password nothing is mounted.
type MetricsRouter struct {
	webhooks *controllers.WebhookController
	user     string
	password string
}

func (m MetricsRouter) InstallRouter(app *fiber.App) {
	if m.user == "" || m.password == "" {
		fiberlog.Warn("[Metrics] METRICS_USER or METRICS_PASSWORD not set, /metrics is disabled")
		return
	}
	auth := basicauth.New(basicauth.Config{Users: map[string]string{m.user: m.password}})
	app.Get("/metrics", auth, monitor.New())
	app.Get("/metrics/webhooks", auth, m.webhooks.HandleWebhookStats)
}

func NewMetricsRouter(webhooks *controllers.WebhookController, user, password string) *MetricsRouter {
	return &MetricsRouter{
		webhooks: webhooks,
		user:     strings.TrimSpace(user),
		password: password,
	}
}
