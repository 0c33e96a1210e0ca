package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": version,
			"area":    deps.Area.Name,
		})
	}
}

// probe is one optional backing service checked by ReadyHandler.
type probe struct {
	name  string
	check func(ctx context.Context) error // nil when not configured
}

func (d *Dependencies) probes() []probe {
	var ps []probe

	p := probe{name: "database"}
	if d.DB != nil {
		p.check = d.DB.Ping
	}
	ps = append(ps, p)

	p = probe{name: "nats"}
	if d.Events != nil {
		p.check = func(context.Context) error {
			if !d.Events.Connected() {
				return errors.New("disconnected")
			}
			return nil
		}
	}
	ps = append(ps, p)

	p = probe{name: "cache"}
	if d.Cache != nil {
		p.check = d.Cache.Ping
	}
	return append(ps, p)
}

// ReadyHandler checks the optional backing services. Anything not
// configured is reported but does not fail readiness.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string)
		code := fiber.StatusOK
		for _, p := range deps.probes() {
			if p.check == nil {
				checks[p.name] = "not configured"
				continue
			}
			if err := p.check(ctx); err != nil {
				LoggerFromCtx(c.UserContext()).Warn("readiness probe failed", "probe", p.name, "error", err)
				checks[p.name] = "unavailable"
				code = fiber.StatusServiceUnavailable
				continue
			}
			checks[p.name] = "ok"
		}

		status := "ready"
		if code != fiber.StatusOK {
			status = "not ready"
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}
