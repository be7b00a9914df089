package settings

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/cod-storefront/internal/apperror"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/settings", h.getSettings)
}

// RegisterProtectedRoutes expects a router already guarded by admin auth and
// mounted at /api/v1/admin.
func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Put("/settings", h.updateSettings)
}

func (h *Handler) getSettings(c *fiber.Ctx) error {
	return c.JSON(h.service.Current())
}

func (h *Handler) updateSettings(c *fiber.Ctx) error {
	payload := new(Settings)
	if err := c.BodyParser(payload); err != nil {
		return apperror.Respond(c, apperror.Invalid("body", err.Error()))
	}
	updated, err := h.service.Update(c.UserContext(), *payload)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(updated)
}
