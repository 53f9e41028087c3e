package routes

import (
	"ngmc-chatbot-backend/internal/config"
	"ngmc-chatbot-backend/internal/handlers"
	"ngmc-chatbot-backend/internal/middleware"
	"ngmc-chatbot-backend/internal/repo"

	"github.com/gofiber/fiber/v2"
)

func registerResources(app fiber.Router, deps Deps) {
	resourceRepo := repo.NewResourceRepository(config.DB)
	resourceHandler := handlers.NewResourceHandler(resourceRepo, deps.Harvester)

	auth := middleware.RequireAPIKey(deps.Cfg.APIKey)

	app.Get("/resources/", auth, resourceHandler.GetResources)
	app.Post("/resources/refresh", auth, resourceHandler.RefreshResources)
}
