package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	natsadapter "github.com/samirrijal/akureroute/internal/adapters/nats"
	"github.com/samirrijal/akureroute/internal/core/usecases"
	"github.com/samirrijal/akureroute/internal/pkg/config"
	"github.com/samirrijal/akureroute/internal/pkg/logging"
	"github.com/samirrijal/akureroute/internal/pkg/metrics"
)

func main() {
	cfg, err := config.Load("akureroute-auditor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	if !cfg.NATS.Enabled {
		log.Fatal("auditor needs nats.enabled=true")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	audit := usecases.NewAuditService()
	if err := sub.SubscribeRouteComputed(ctx, audit.HandleRouteComputed); err != nil {
		log.Fatalf("subscribe routes: %v", err)
	}
	if err := sub.SubscribeLocationFallback(ctx, audit.HandleLocationFallback); err != nil {
		log.Fatalf("subscribe location: %v", err)
	}

	// Metrics and a stats snapshot on the port after the API's.
	app := fiber.New(fiber.Config{AppName: "Akure Route auditor", DisableStartupMessage: true})
	app.Get("/metrics", metrics.Handler())
	app.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(audit.Stats())
	})
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port+1)
		slog.Info("auditor started", "addr", addr, "nats", cfg.NATS.URL)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutting down auditor", "signal", sig.String(), "stats", audit.Stats())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
}
