package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"referensi/internal/app"
	"referensi/internal/config"
	handlers "referensi/internal/http/handler"
	"referensi/internal/http/middleware"
	"referensi/internal/jsonlog"
	"referensi/internal/otel"
)

// @title Referensi API
// @version 1.0
// @description Search and retrieval of reference books by keyword, category and page.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}

	stack, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize document store: %v", err)
	}
	defer stack.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(stack.DB, cfg.Database.Driver),
	)
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg, handlers.MetricsPath)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}

	server := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// RequestID must run first so the logger and error envelope can read it
	server.Use(middleware.RequestID())
	server.Use(middleware.Logger(loc))
	server.Use(otelfiber.Middleware())
	server.Use(promMiddleware.Handler())

	handlers.RegisterRoutes(server, stack.DB, stack.Service, reg)

	handlers.RegisterSwagger(server, cfg.AppHost)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.ShutdownWithContext(shutdownCtx); err != nil {
			jsonlog.Log(loc, map[string]any{"level": "error", "msg": "server_shutdown_failed", "error": err.Error()})
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			jsonlog.Log(loc, map[string]any{"level": "error", "msg": "tracing_shutdown_failed", "error": err.Error()})
		}
	}()

	addr := ":" + cfg.Port
	jsonlog.Log(loc, map[string]any{
		"msg":       "server_starting",
		"addr":      addr,
		"db_driver": cfg.Database.Driver,
		"snapshot":  cfg.Query.Snapshot,
	})

	if err := server.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
