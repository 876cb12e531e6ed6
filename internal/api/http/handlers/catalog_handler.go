package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crew-auth/internal/api/dto"
	"github.com/spec-kit/crew-auth/internal/domain"
)

// CatalogHandler serves the static truck and route lists.
type CatalogHandler struct{}

// NewCatalogHandler constructs handler.
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// Trucks handles GET /catalog/trucks.
func (h *CatalogHandler) Trucks(c *fiber.Ctx) error {
	return c.JSON(dto.TrucksResponse{Trucks: domain.TruckNumbers})
}

// Routes handles GET /catalog/routes.
func (h *CatalogHandler) Routes(c *fiber.Ctx) error {
	return c.JSON(dto.RoutesResponse{Routes: domain.Routes})
}
