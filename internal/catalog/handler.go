package catalog

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/shop-checkout/internal/respond"
)

// Handler exposes read-only catalog routes. They are public: browsing the
// catalog does not need a customer.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/catalog", h.listEntries)
	app.Get("/api/v1/catalog/:id<[0-9]+>", h.getEntry)
}

func (h *Handler) listEntries(c *fiber.Ctx) error {
	entries, err := h.service.List(c.UserContext())
	if err != nil {
		return respond.Error(c, err)
	}
	return respond.OK(c, "", entries)
}

func (h *Handler) getEntry(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, fiber.StatusBadRequest, "invalid id")
	}
	entry, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respond.Error(c, err)
	}
	return respond.OK(c, "", entry)
}
