package routes

import (
	"ngmc-chatbot-backend/internal/config"
	"ngmc-chatbot-backend/internal/handlers"
	"ngmc-chatbot-backend/internal/middleware"
	"ngmc-chatbot-backend/internal/repo"

	"github.com/gofiber/fiber/v2"
)

// registerChat is the group of routes for the chat API.
func registerChat(app fiber.Router, deps Deps) {
	chatRepo := repo.NewChatRepository(config.DB)
	chatHandler := handlers.NewChatHandler(chatRepo, deps.Responder, deps.Chats, deps.Hub)

	auth := middleware.RequireAPIKey(deps.Cfg.APIKey)

	app.Post("/postchat/", auth, chatHandler.PostChat)
	app.Post("/postchat/:chatId/", auth, chatHandler.ContinueChat)
	app.Get("/getchat/", auth, chatHandler.GetChats)
	app.Get("/getchat/:chatId/", auth, chatHandler.GetChat)
	app.Delete("/deletechat/:chatId/", auth, chatHandler.DeleteChat)

	app.Get("/checkAuth", auth, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}
