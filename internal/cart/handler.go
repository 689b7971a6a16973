package cart

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/shop-checkout/internal/customer"
	"github.com/wichananm65/shop-checkout/internal/respond"
)

// Handler exposes the session cart of the authenticated customer.
// Requests may name a cart_id explicitly; otherwise the session cart is used.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/cart", h.getCart)
	app.Post("/api/v1/cart/items", h.addItem)
	app.Patch("/api/v1/cart/items", h.setQuantity)
	app.Delete("/api/v1/cart/items", h.removeItem)
	app.Post("/api/v1/cart/coupon", h.applyCoupon)
}

type itemRequest struct {
	CartID   int64 `json:"cart_id,omitempty"`
	EntryID  int64 `json:"entry_id"`
	Quantity *int  `json:"quantity,omitempty"`
}

type removeRequest struct {
	CartID int64 `json:"cart_id,omitempty"`
	LineID int64 `json:"line_id"`
}

type couponRequest struct {
	CartID int64  `json:"cart_id,omitempty"`
	Code   string `json:"coupon_code"`
}

// target resolves the customer and the cart a request acts on.
func (h *Handler) target(c *fiber.Ctx, cartID int64) (int64, int64, error) {
	customerID, err := customer.IDFromCtx(c)
	if err != nil {
		return 0, 0, err
	}
	if cartID > 0 {
		return customerID, cartID, nil
	}
	cart, err := h.service.Open(c.UserContext(), customerID, customer.SessionIDFromCtx(c))
	if err != nil {
		return 0, 0, err
	}
	return customerID, cart.ID, nil
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	if err == fiber.ErrUnauthorized {
		return respond.Fail(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return respond.Error(c, err)
}

func (h *Handler) summary(c *fiber.Ctx, customerID, cartID int64, msg string) error {
	sum, err := h.service.Summary(c.UserContext(), customerID, cartID)
	if err != nil {
		return h.fail(c, err)
	}
	return respond.OK(c, msg, sum)
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	customerID, cartID, err := h.target(c, 0)
	if err != nil {
		return h.fail(c, err)
	}
	return h.summary(c, customerID, cartID, "")
}

func (h *Handler) addItem(c *fiber.Ctx) error {
	payload := new(itemRequest)
	if err := c.BodyParser(payload); err != nil {
		return respond.Fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	qty := 1
	if payload.Quantity != nil {
		qty = *payload.Quantity
	}
	customerID, cartID, err := h.target(c, payload.CartID)
	if err != nil {
		return h.fail(c, err)
	}
	if _, err := h.service.AddOrUpdate(c.UserContext(), customerID, cartID, payload.EntryID, qty); err != nil {
		return h.fail(c, err)
	}
	return h.summary(c, customerID, cartID, "item added to cart")
}

func (h *Handler) setQuantity(c *fiber.Ctx) error {
	payload := new(itemRequest)
	if err := c.BodyParser(payload); err != nil {
		return respond.Fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if payload.Quantity == nil {
		return respond.Fail(c, fiber.StatusBadRequest, "quantity is required")
	}
	customerID, cartID, err := h.target(c, payload.CartID)
	if err != nil {
		return h.fail(c, err)
	}
	if _, err := h.service.SetQuantity(c.UserContext(), customerID, cartID, payload.EntryID, *payload.Quantity); err != nil {
		return h.fail(c, err)
	}
	return h.summary(c, customerID, cartID, "quantity updated")
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	payload := new(removeRequest)
	if err := c.BodyParser(payload); err != nil {
		return respond.Fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if payload.LineID <= 0 {
		return respond.Fail(c, fiber.StatusBadRequest, "line_id is required")
	}
	customerID, cartID, err := h.target(c, payload.CartID)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.service.RemoveLine(c.UserContext(), customerID, cartID, payload.LineID); err != nil {
		return h.fail(c, err)
	}
	return h.summary(c, customerID, cartID, "item removed from cart")
}

func (h *Handler) applyCoupon(c *fiber.Ctx) error {
	payload := new(couponRequest)
	if err := c.BodyParser(payload); err != nil {
		return respond.Fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	customerID, cartID, err := h.target(c, payload.CartID)
	if err != nil {
		return h.fail(c, err)
	}
	if _, err := h.service.ApplyCoupon(c.UserContext(), customerID, cartID, payload.Code); err != nil {
		return h.fail(c, err)
	}
	return h.summary(c, customerID, cartID, "coupon applied")
}
