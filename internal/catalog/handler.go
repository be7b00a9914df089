package catalog

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/cod-storefront/internal/apperror"
	"github.com/wichananm65/cod-storefront/internal/product"
)

// Handler serves the shopper-facing catalog. Every request recomputes the
// view from the current source collection.
type Handler struct {
	products product.Repository
	timeout  time.Duration
}

func NewHandler(products product.Repository, timeout time.Duration) *Handler {
	return &Handler{products: products, timeout: timeout}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/products", h.getProducts)
	app.Get("/api/v1/products/:id", h.getProduct)
	app.Get("/api/v1/categories", h.getCategories)
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	key, err := ParseSortKey(c.Query("sort"))
	if err != nil {
		return apperror.Respond(c, err)
	}
	src, err := h.source(c.UserContext())
	if err != nil {
		return apperror.Respond(c, err)
	}
	q := Query{
		Search:   c.Query("q"),
		Category: c.Query("category", AllCategories),
		Sort:     key,
	}
	return c.JSON(Apply(src, q))
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	p, err := h.products.GetByID(ctx, c.Params("id"))
	if err != nil {
		return apperror.Respond(c, apperror.Store("catalog.GetProduct", err))
	}
	return c.JSON(p)
}

func (h *Handler) getCategories(c *fiber.Ctx) error {
	src, err := h.source(c.UserContext())
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(Categories(src))
}

// source returns the featured order: the order the catalog collaborator
// lists products in.
func (h *Handler) source(ctx context.Context) ([]product.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	src, err := h.products.List(ctx)
	if err != nil {
		return nil, apperror.Store("catalog.List", err)
	}
	return src, nil
}
