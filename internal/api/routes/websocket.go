package routes

import (
	"ngmc-chatbot-backend/internal/libraries"

	"github.com/gofiber/fiber/v2"
)

func registerWebSocket(app fiber.Router, deps Deps) {
	if deps.Hub == nil {
		return
	}

	app.Use("/ws", libraries.UpgradeMiddleware)
	app.Get("/ws", libraries.WebSocketHandler(deps.Hub))
}
