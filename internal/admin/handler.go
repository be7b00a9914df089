package admin

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/cod-storefront/internal/apperror"
	"github.com/wichananm65/cod-storefront/internal/order"
)

type Handler struct {
	sync *Sync
	auth *Auth
}

func NewHandler(s *Sync, a *Auth) *Handler {
	return &Handler{sync: s, auth: a}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/v1/admin/login", h.login)
}

// RegisterProtectedRoutes expects a router already guarded by Auth.Middleware
// and mounted at /api/v1/admin.
func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Get("/products", h.listProducts)
	r.Post("/products", h.createProduct)
	r.Put("/products/:id", h.updateProduct)
	r.Delete("/products/:id", h.deleteProduct)

	r.Get("/offers", h.listOffers)
	r.Post("/offers", h.createOffer)
	r.Put("/offers/:id", h.updateOffer)
	r.Delete("/offers/:id", h.deleteOffer)

	r.Get("/orders", h.listOrders)
	r.Get("/orders/:id", h.getOrder)
	r.Post("/orders/:id/transition", h.transitionOrder)

	r.Get("/export", h.export)
	r.Post("/import", h.importSnapshot)
	r.Post("/password", h.changePassword)
}

// orderView adds the actions the console may offer for an order.
type orderView struct {
	order.Order
	Actions []order.Action `json:"actions"`
	Final   bool           `json:"final"`
}

func viewOf(o order.Order) orderView {
	return orderView{Order: o, Actions: order.Actions(o.Status), Final: o.Status.Terminal()}
}

func (h *Handler) login(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return apperror.Respond(c, apperror.Invalid("body", err.Error()))
	}
	token, exp, err := h.auth.Login(c.UserContext(), req.Password)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"token": token, "expiresAt": exp})
}

func (h *Handler) listProducts(c *fiber.Ctx) error {
	return c.JSON(h.sync.Products())
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	draft := new(ProductDraft)
	if err := c.BodyParser(draft); err != nil {
		return apperror.Respond(c, apperror.Invalid("body", err.Error()))
	}
	created, err := h.sync.CreateProduct(c.UserContext(), *draft)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	patch := new(ProductPatch)
	if err := c.BodyParser(patch); err != nil {
		return apperror.Respond(c, apperror.Invalid("body", err.Error()))
	}
	updated, err := h.sync.UpdateProduct(c.UserContext(), c.Params("id"), *patch)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	if err := h.sync.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return apperror.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) listOffers(c *fiber.Ctx) error {
	return c.JSON(h.sync.Offers())
}

func (h *Handler) createOffer(c *fiber.Ctx) error {
	draft := new(OfferDraft)
	if err := c.BodyParser(draft); err != nil {
		return apperror.Respond(c, apperror.Invalid("body", err.Error()))
	}
	created, err := h.sync.CreateOffer(c.UserContext(), *draft)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateOffer(c *fiber.Ctx) error {
	patch := new(OfferPatch)
	if err := c.BodyParser(patch); err != nil {
		return apperror.Respond(c, apperror.Invalid("body", err.Error()))
	}
	updated, err := h.sync.UpdateOffer(c.UserContext(), c.Params("id"), *patch)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) deleteOffer(c *fiber.Ctx) error {
	if err := h.sync.DeleteOffer(c.UserContext(), c.Params("id")); err != nil {
		return apperror.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// listOrders accepts ?status= (empty or "all" for every status) and ?q=.
func (h *Handler) listOrders(c *fiber.Ctx) error {
	f := order.Filter{Query: c.Query("q")}
	if s := strings.TrimSpace(c.Query("status")); s != "" && s != "all" {
		status, err := order.ParseStatus(s)
		if err != nil {
			return apperror.Respond(c, err)
		}
		f.Status = status
	}
	orders, err := h.sync.FindOrders(c.UserContext(), f)
	if err != nil {
		return apperror.Respond(c, err)
	}
	views := make([]orderView, len(orders))
	for i, o := range orders {
		views[i] = viewOf(o)
	}
	return c.JSON(views)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	o, err := h.sync.Order(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(viewOf(o))
}

func (h *Handler) transitionOrder(c *fiber.Ctx) error {
	var req struct {
		Action string `json:"action"`
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return apperror.Respond(c, apperror.Invalid("body", err.Error()))
	}
	updated, err := h.sync.TransitionOrder(c.UserContext(), c.Params("id"), req.Action, req.Reason)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(viewOf(updated))
}

func (h *Handler) export(c *fiber.Ctx) error {
	snap := h.sync.Export()
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+SnapshotFilename(snap.ExportDate)+`"`)
	return c.JSON(snap)
}

func (h *Handler) importSnapshot(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return apperror.Respond(c, apperror.Invalid("file", "a snapshot file is required"))
	}
	f, err := fh.Open()
	if err != nil {
		return apperror.Respond(c, err)
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		return apperror.Respond(c, err)
	}

	snap, err := h.sync.Import(c.UserContext(), fh.Filename, raw)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"products": len(snap.Products), "offers": len(snap.Offers)})
}

func (h *Handler) changePassword(c *fiber.Ctx) error {
	var req struct {
		NewPassword     string `json:"newPassword"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := c.BodyParser(&req); err != nil {
		return apperror.Respond(c, apperror.Invalid("body", err.Error()))
	}
	if err := h.auth.ChangePassword(c.UserContext(), req.NewPassword, req.ConfirmPassword); err != nil {
		return apperror.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
