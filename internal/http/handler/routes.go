package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"referensi/internal/service"
)

// MetricsPath is where Prometheus metrics are served.
const MetricsPath = "/metrics"

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers only translate between HTTP and the service.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.ReferenceService, metrics prometheus.Gatherer) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())
	app.Get(MetricsPath, Metrics(metrics))
	app.Get("/openapi.yaml", OpenAPIYAML())

	app.Get("/referensi", ListReferences(svc))
	app.Get("/referensi/:id", GetReference(svc))
	app.Get("/referensi/:id/download", DownloadReference(svc))
	app.Post("/search", SearchReferences(svc))
	app.Get("/categories", ListCategories(svc))
	app.Get("/discover", Discover(svc))
}
