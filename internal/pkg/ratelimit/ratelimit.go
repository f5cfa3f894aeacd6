package ratelimit

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"

	"github.com/ManuelReschke/PremiumHook/internal/pkg/cache"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/env"
)

// Database 2 keeps limiter keys apart from the counters in database 0.
const storageDatabase = 2

const defaultWebhookLimit = 120

// NewStorage creates limiter storage on the cache server.
func NewStorage() fiber.Storage {
	// Get Redis client configuration from existing cache setup
	cacheClient := cache.GetClient()
	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	if cacheClient != nil {
		addr := cacheClient.Options().Addr
		if h, p, err := net.SplitHostPort(addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		if p := cacheClient.Options().Password; p != "" {
			password = p
		}
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: storageDatabase,
		Reset:    false,
	})
}

// Config returns the per-IP limiter settings for the API group. A nil
// storage keeps counters in process memory.
func Config(storage fiber.Storage) limiter.Config {
	max := env.GetEnvInt("WEBHOOK_RATE_LIMIT", defaultWebhookLimit)
	if max <= 0 {
		max = defaultWebhookLimit
	}
	return limiter.Config{
		Max:               max,
		Expiration:        time.Minute,
		Storage:           storage,
		LimiterMiddleware: limiter.SlidingWindow{},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Too many requests",
			})
		},
	}
}

// New returns the limiter middleware backed by Redis.
func New() fiber.Handler {
	return limiter.New(Config(NewStorage()))
}
