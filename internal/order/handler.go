package order

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/cod-storefront/internal/apperror"
	"github.com/wichananm65/cod-storefront/internal/cart"
)

// Handler exposes checkout and the shopper's own orders.
type Handler struct {
	manager *Manager
	carts   *cart.Store
}

func NewHandler(m *Manager, carts *cart.Store) *Handler {
	return &Handler{manager: m, carts: carts}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/checkout", h.getCheckout)
	app.Post("/api/v1/orders", h.submit)
	app.Get("/api/v1/orders", h.getSessionOrders)
	app.Get("/api/v1/orders/:id", h.getOrder)
}

// getCheckout previews the totals the order would be created with.
func (h *Handler) getCheckout(c *fiber.Ctx) error {
	session, err := cart.SessionID(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	current, err := h.carts.Load(c.UserContext(), session)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{
		"items":     snapshot(current),
		"itemCount": current.ItemCount(),
		"totals":    totalsOf(current, h.manager.ShippingFee()),
	})
}

func (h *Handler) submit(c *fiber.Ctx) error {
	session, err := cart.SessionID(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	customer := new(Customer)
	if err := c.BodyParser(customer); err != nil {
		return apperror.Respond(c, apperror.Invalid("body", err.Error()))
	}
	created, err := h.manager.Submit(c.UserContext(), session, *customer)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) getSessionOrders(c *fiber.Ctx) error {
	session, err := cart.SessionID(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	orders, err := h.manager.SessionOrders(c.UserContext(), session)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(orders)
}

// getOrder serves the order success and tracking views. Order ids are
// unguessable, so no session check is made.
func (h *Handler) getOrder(c *fiber.Ctx) error {
	o, err := h.manager.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(o)
}
