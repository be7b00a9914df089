package offer

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/cod-storefront/internal/apperror"
)

const defaultLimit = 10

type Handler struct {
	repo    Repository
	timeout time.Duration
}

func NewHandler(repo Repository, timeout time.Duration) *Handler {
	return &Handler{repo: repo, timeout: timeout}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/offers", h.getOffers)
}

func (h *Handler) getOffers(c *fiber.Ctx) error {
	limit := defaultLimit
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	items, err := h.repo.List(ctx)
	if err != nil {
		return apperror.Respond(c, apperror.Store("offer.List", err))
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return c.JSON(items)
}
