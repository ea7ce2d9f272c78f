package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

// PoolStatser exposes the redis connection pool counters.
type PoolStatser interface {
	GetStats() *redis.PoolStats
}

type HealthHandler struct {
	checks map[string]Check
	pool   PoolStatser
}

func NewHealthHandler(checks map[string]Check, pool PoolStatser) *HealthHandler {
	return &HealthHandler{checks: checks, pool: pool}
}

// Health runs every dependency check. Any failure turns the response into a 503.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	services := fiber.Map{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			services[name] = "unavailable"
			status = fiber.StatusServiceUnavailable
			continue
		}
		services[name] = "connected"
	}

	overall := "ok"
	if status != fiber.StatusOK {
		overall = "degraded"
	}
	return c.Status(status).JSON(fiber.Map{
		"status":   overall,
		"services": services,
	})
}

// CacheStats exposes redis pool counters to admins.
func (h *HealthHandler) CacheStats(c *fiber.Ctx) error {
	if h.pool == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "cache not configured")
	}
	s := h.pool.GetStats()
	return c.JSON(fiber.Map{
		"pool_stats": fiber.Map{
			"hits":        s.Hits,
			"misses":      s.Misses,
			"timeouts":    s.Timeouts,
			"total_conns": s.TotalConns,
			"idle_conns":  s.IdleConns,
			"stale_conns": s.StaleConns,
		},
	})
}

// Metrics serves the prometheus exposition format for gatherer.
func Metrics(gatherer prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
