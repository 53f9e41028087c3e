package api

import (
	"ngmc-chatbot-backend/internal/logging"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func NewServer() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		AppName:      "NGMC Chatbot Backend",
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logging.FiberMiddleware(logging.L()))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, x-api-key",
	}))

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	lg := logging.FromCtx(c)
	lg.Error().Err(err).Msg("request failed")

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func StartServer(app *fiber.App, port string) error {
	if port == "" {
		port = "8000"
	}

	lg := logging.L()
	lg.Info().Str("port", port).Msg("server starting")
	return app.Listen(":" + port)
}
