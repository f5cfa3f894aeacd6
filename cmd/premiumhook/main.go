package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/ManuelReschke/PremiumHook/app/controllers"
	"github.com/ManuelReschke/PremiumHook/app/repository"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/billing"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/cache"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/database"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/env"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/ratelimit"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/router"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/security"
)

// Webhook bodies are small JSON documents.
const bodyLimit = 1 << 20

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/premiumhook to project root
		"../../../", // Fallback
	}

	// Find the correct base path
	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}

	if basePath == "" {
		panic("Could not find project root directory")
	}

	// init fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: bodyLimit,
		AppName:   "PremiumHook",
	})

	// recovery, request ids and logging
	app.Use(
		recover.New(),
		requestid.New(requestid.Config{Generator: uuid.NewString}),
		logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		}),
	)

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// settings cipher; without APP_KEY every delivery answers settings_not_configured
	cipher, err := security.NewSettingsCipher(env.GetEnv("APP_KEY", ""))
	if err != nil {
		log.Printf("Warning: settings cipher unavailable: %v", err)
		cipher = nil
	}

	processor := billing.NewProcessorFromDB(
		repository.GetGlobalFactory().DB(),
		cipher,
		billing.WithRole(env.GetEnv("PREMIUM_ROLE", "premium")),
	)
	webhooks := controllers.NewWebhookController(
		processor,
		counter.Default(),
		env.GetEnv("WEBHOOK_SIGNATURE_HEADER", controllers.DefaultSignatureHeader),
	)

	// ROUTER
	router.InstallRouter(app,
		router.NewApiRouter(webhooks, database.Ping, ratelimit.New()),
		router.NewMetricsRouter(webhooks, env.GetEnv("METRICS_USER", "admin"), env.GetEnv("METRICS_PASSWORD", "")),
	)

	return app
}
