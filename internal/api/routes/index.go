package routes

import (
	"ngmc-chatbot-backend/internal/bot"
	"ngmc-chatbot-backend/internal/cache"
	"ngmc-chatbot-backend/internal/catalog"
	"ngmc-chatbot-backend/internal/config"
	"ngmc-chatbot-backend/internal/libraries"

	"github.com/gofiber/fiber/v2"
)

// Deps carries the long-lived pieces the route groups wire into their
// handlers. Cache and Hub may be nil.
type Deps struct {
	Cfg       *config.Config
	Responder bot.Responder
	Chats     cache.ChatListCache
	Harvester *catalog.Harvester
	Hub       *libraries.Hub
}

// Register mounts every route. The chat endpoints live at the app root;
// their paths are the contract the browser UI was written against.
func Register(app *fiber.App, deps Deps) {
	registerHealth(app)
	registerChat(app, deps)
	registerResources(app, deps)
	registerWebSocket(app, deps)
}
