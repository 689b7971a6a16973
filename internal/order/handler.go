package order

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/shop-checkout/internal/customer"
	"github.com/wichananm65/shop-checkout/internal/respond"
)

// Handler exposes checkout and the customer's order history.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/checkout", h.checkout)
	app.Get("/api/v1/orders", h.getOrders)
	app.Get("/api/v1/orders/:id<[0-9]+>", h.getOrder)
	app.Post("/api/v1/orders/:id<[0-9]+>/confirm-payment", h.confirmPayment)
}

type checkoutRequest struct {
	TransactionID string `json:"transaction_id"`
	CartID        int64  `json:"cart_id"`
}

func unauthorized(c *fiber.Ctx) error {
	return respond.Fail(c, fiber.StatusUnauthorized, "unauthorized")
}

func (h *Handler) checkout(c *fiber.Ctx) error {
	customerID, err := customer.IDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}
	payload := new(checkoutRequest)
	if err := c.BodyParser(payload); err != nil {
		return respond.Fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	o, err := h.service.Checkout(c.UserContext(), payload.CartID, payload.TransactionID, customerID)
	if err != nil {
		return respond.Error(c, err)
	}
	return respond.OK(c, "order created", o)
}

func (h *Handler) getOrders(c *fiber.Ctx) error {
	customerID, err := customer.IDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}
	orders, err := h.service.List(c.UserContext(), customerID)
	if err != nil {
		return respond.Error(c, err)
	}
	return respond.OK(c, "", orders)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	customerID, err := customer.IDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, fiber.StatusBadRequest, "invalid id")
	}
	o, err := h.service.Get(c.UserContext(), customerID, id)
	if err != nil {
		return respond.Error(c, err)
	}
	return respond.OK(c, "", o)
}

func (h *Handler) confirmPayment(c *fiber.Ctx) error {
	customerID, err := customer.IDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, fiber.StatusBadRequest, "invalid id")
	}
	o, err := h.service.ConfirmPayment(c.UserContext(), customerID, id)
	if err != nil {
		return respond.Error(c, err)
	}
	return respond.OK(c, "payment confirmed", o)
}
