package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arzan03/campus-connect/internal/services"
)

type AdminHandler struct {
	svc *services.AdminService
}

func NewAdminHandler(svc *services.AdminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// Analytics returns aggregate issue and user counts for the dashboard.
func (h *AdminHandler) Analytics(c *fiber.Ctx) error {
	analytics, err := h.svc.GetAnalytics(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(analytics)
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.svc.ListUsers(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"users": users})
}

func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.svc.DeleteUser(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

// Health is the liveness probe.
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
