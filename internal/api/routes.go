package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// NewApp builds the Fiber application with middleware and routes. history may
// be nil, in which case runs are neither recorded nor listed.
func NewApp(history History, logger *zap.SugaredLogger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "ecospeed",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    16 * 1024 * 1024,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	SetupRoutes(app, NewHandler(history, logger))
	return app
}

// SetupRoutes registers the handler endpoints on app.
func SetupRoutes(app *fiber.App, h *Handler) {
	app.Get("/healthz", h.HealthCheck)

	v1 := app.Group("/api/v1")
	v1.Post("/advise", h.Advise)
	v1.Get("/vehicles", h.Vehicles)
	v1.Get("/runs", h.Runs)
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
