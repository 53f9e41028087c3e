package handlers

import (
	"ngmc-chatbot-backend/internal/catalog"
	"ngmc-chatbot-backend/internal/logging"
	"ngmc-chatbot-backend/internal/repo"

	"github.com/gofiber/fiber/v2"
)

type ResourceHandler struct {
	resources repo.ResourceRepoInterface
	harvester *catalog.Harvester
}

func NewResourceHandler(resources repo.ResourceRepoInterface, harvester *catalog.Harvester) *ResourceHandler {
	return &ResourceHandler{resources: resources, harvester: harvester}
}

// GetResources returns the harvested link catalog grouped by category.
func (h *ResourceHandler) GetResources(c *fiber.Ctx) error {
	categories, err := h.resources.GetAllCategories()
	if err != nil {
		lg := logging.FromCtx(c)
		lg.Error().Err(err).Msg("failed to list resources")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to get resources")
	}

	return c.JSON(fiber.Map{
		"resources": categories,
	})
}

// RefreshResources re-harvests the college pages and stores the new
// catalog.
func (h *ResourceHandler) RefreshResources(c *fiber.Ctx) error {
	counts, err := h.harvester.Refresh(c.UserContext())
	if err != nil {
		lg := logging.FromCtx(c)
		lg.Error().Err(err).Msg("catalog refresh failed")
		return fiber.NewError(fiber.StatusBadGateway, "Failed to refresh resources")
	}

	lg := logging.FromCtx(c)
	lg.Info().Interface("counts", counts).Msg("catalog refreshed")
	return c.JSON(fiber.Map{
		"updated": counts,
	})
}
