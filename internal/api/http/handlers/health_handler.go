package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/starline-labs/storefront-desk/internal/persistence"
)

type componentStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type healthResponse struct {
	Status        string                     `json:"status"`
	Service       string                     `json:"service"`
	Version       string                     `json:"version"`
	UptimeSeconds int64                      `json:"uptime_seconds"`
	Components    map[string]componentStatus `json:"components,omitempty"`
}

// HealthHandler responds to liveness and readiness probes. Liveness never
// touches dependencies; readiness pings the stores the desk persists to.
type HealthHandler struct {
	serviceName string
	version     string
	startedAt   time.Time
	postgres    *persistence.Postgres
	redis       *persistence.Redis
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, postgres *persistence.Postgres, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		startedAt:   time.Now(),
		postgres:    postgres,
		redis:       redis,
	}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(healthResponse{
		Status:        "alive",
		Service:       h.serviceName,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
	})
}

// Ready reports readiness by pinging postgres and redis with a short budget.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	components := map[string]componentStatus{
		"postgres": h.check(ctx, h.postgres.Ping),
		"redis":    h.check(ctx, h.redis.Ping),
	}

	status := fiber.StatusOK
	overall := "ready"
	for _, component := range components {
		if component.Status != "ok" {
			status = fiber.StatusServiceUnavailable
			overall = "degraded"
		}
	}

	return c.Status(status).JSON(healthResponse{
		Status:        overall,
		Service:       h.serviceName,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		Components:    components,
	})
}

func (h *HealthHandler) check(ctx context.Context, ping func(context.Context) error) componentStatus {
	if err := ping(ctx); err != nil {
		return componentStatus{Status: "unavailable", Error: err.Error()}
	}
	return componentStatus{Status: "ok"}
}
