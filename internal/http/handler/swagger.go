package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	"referensi/docs"
)

// RegisterSwagger mounts the Swagger UI at /swagger/*.
// The document host is fixed here, before the server accepts requests, so handlers only read it.
func RegisterSwagger(app *fiber.App, host string) {
	docs.SwaggerInfo.Host = host
	app.Get("/swagger/*", swagger.HandlerDefault)
}
