package cart

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/cod-storefront/internal/apperror"
	"github.com/wichananm65/cod-storefront/internal/product"
)

// SessionHeader carries the client session the cart and order history belong to.
const SessionHeader = "X-Session-ID"

// SessionID returns the client session of the request.
func SessionID(c *fiber.Ctx) (string, error) {
	id := strings.TrimSpace(c.Get(SessionHeader))
	if id == "" {
		return "", apperror.Invalid("session", SessionHeader+" header is required")
	}
	return id, nil
}

type Handler struct {
	store    *Store
	products product.Repository
	timeout  time.Duration
}

func NewHandler(store *Store, products product.Repository, timeout time.Duration) *Handler {
	return &Handler{store: store, products: products, timeout: timeout}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/cart", h.getCart)
	app.Post("/api/v1/cart/items", h.addItem)
	app.Put("/api/v1/cart/items/:productId", h.setQuantity)
	app.Delete("/api/v1/cart/items/:productId", h.removeItem)
}

type cartView struct {
	Items     []Line          `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	ItemCount int             `json:"itemCount"`
}

func viewOf(c Cart) cartView {
	return cartView{Items: c.Lines(), Subtotal: c.Subtotal(), ItemCount: c.ItemCount()}
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	session, err := SessionID(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	cart, err := h.store.Load(c.UserContext(), session)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(viewOf(cart))
}

func (h *Handler) addItem(c *fiber.Ctx) error {
	session, err := SessionID(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	req := new(addItemRequest)
	if err := c.BodyParser(req); err != nil {
		return apperror.Respond(c, apperror.Invalid("body", err.Error()))
	}
	if strings.TrimSpace(req.ProductID) == "" {
		return apperror.Respond(c, apperror.Invalid("productId", "productId is required"))
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	if qty < 1 {
		return apperror.Respond(c, apperror.Invalid("quantity", "quantity must be a positive integer"))
	}

	p, err := h.product(c.UserContext(), req.ProductID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	count, err := h.store.AddItem(c.UserContext(), session, p, qty)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"itemCount": count})
}

func (h *Handler) setQuantity(c *fiber.Ctx) error {
	session, err := SessionID(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	req := new(quantityRequest)
	if err := c.BodyParser(req); err != nil {
		return apperror.Respond(c, apperror.Invalid("body", err.Error()))
	}
	if req.Quantity == nil {
		return apperror.Respond(c, apperror.Invalid("quantity", "quantity is required"))
	}
	cart, err := h.store.SetQuantity(c.UserContext(), session, c.Params("productId"), *req.Quantity)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(viewOf(cart))
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	session, err := SessionID(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	cart, err := h.store.RemoveItem(c.UserContext(), session, c.Params("productId"))
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(viewOf(cart))
}

func (h *Handler) product(ctx context.Context, id string) (product.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	p, err := h.products.GetByID(ctx, id)
	if err != nil {
		return product.Product{}, apperror.Store("cart.product", err)
	}
	return p, nil
}
