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
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/akureroute/internal/adapters/gazetteer"
	"github.com/samirrijal/akureroute/internal/adapters/http"
	natsadapter "github.com/samirrijal/akureroute/internal/adapters/nats"
	"github.com/samirrijal/akureroute/internal/adapters/ors"
	"github.com/samirrijal/akureroute/internal/adapters/postgres"
	"github.com/samirrijal/akureroute/internal/adapters/valkey"
	"github.com/samirrijal/akureroute/internal/core/ports"
	"github.com/samirrijal/akureroute/internal/core/usecases"
	"github.com/samirrijal/akureroute/internal/pkg/config"
	"github.com/samirrijal/akureroute/internal/pkg/logging"
	"github.com/samirrijal/akureroute/internal/pkg/telemetry"
)

var version = "dev"

func main() {
	cfg, err := config.Load("akureroute-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	if cfg.ORS.APIKey == "" {
		slog.Warn("ors.api_key is empty, remote search and routing will fail")
	}

	deps := &http.Dependencies{
		Area:           cfg.ServiceArea.Area(),
		Debounce:       cfg.Resolver.Debounce(),
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
		Version:        version,
	}

	// Database (optional gazetteer store)
	var placeRepo ports.PlaceRepository
	if cfg.Database.Enabled {
		db, err := postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		deps.DB = db
		placeRepo = postgres.NewPlaceRepo(db)
	}

	places, err := gazetteer.Load(ctx, placeRepo)
	if err != nil {
		log.Fatalf("gazetteer: %v", err)
	}
	slog.Info("gazetteer loaded", "places", places.Len())

	// Cache
	var cache ports.CacheService
	if cfg.Valkey.Enabled {
		c, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer c.Close()
			deps.Cache = c
			cache = c
		}
	}

	// NATS
	var publisher ports.EventPublisher
	if cfg.NATS.Enabled {
		p, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer p.Close()
			deps.Events = p
			publisher = p
		}
	}

	client := ors.New(ors.Options{
		BaseURL:     cfg.ORS.BaseURL,
		APIKey:      cfg.ORS.APIKey,
		Profile:     cfg.ORS.Profile,
		CountryCode: cfg.ServiceArea.CountryCode,
		Timeout:     cfg.ORS.TimeoutDuration(),
	})

	// Use cases
	deps.Places = usecases.NewPlaceService(deps.Area, places, client, cache, publisher, usecases.PlaceOptions{
		LocalLimit:     cfg.Resolver.LocalLimit,
		MaxResults:     cfg.Resolver.MaxResults,
		MinRemoteChars: cfg.Resolver.MinRemoteChars,
		RemoteSize:     cfg.Resolver.RemoteSize,
		PopularLimit:   cfg.Resolver.PopularLimit,
		CacheTTL:       cfg.Resolver.CacheTTL,
		RejectOutside:  cfg.Location.OutsidePolicy == config.OutsidePolicyReject,
	})
	deps.Routes = usecases.NewRouteService(deps.Area, client, cache, publisher, usecases.RouteOptions{
		Alternatives: cfg.Routing.Alternatives,
		WeightFactor: cfg.Routing.WeightFactor,
		Precision:    cfg.Routing.Precision,
		CacheTTL:     cfg.Routing.CacheTTL,
	})

	// Fiber
	appCfg := http.AppConfig("Akure Route API",
		time.Duration(cfg.Server.ReadTimeout)*time.Second,
		time.Duration(cfg.Server.WriteTimeout)*time.Second,
	)
	appCfg.BodyLimit = 64 * 1024
	app := fiber.New(appCfg)
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "area", deps.Area.Name, "version", version)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
