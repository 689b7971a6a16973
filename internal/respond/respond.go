package respond

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/shop-checkout/internal/apperr"
)

// Envelope is the JSON body of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Success: true, Message: message, Data: data})
}

func Fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Envelope{Success: false, Message: message})
}

// Error writes err using the status that matches its kind.
func Error(c *fiber.Ctx, err error) error {
	return Fail(c, Status(err), apperr.Message(err))
}

func Status(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindAuthorization:
		return fiber.StatusForbidden
	case apperr.KindInvalidCoupon:
		return fiber.StatusUnprocessableEntity
	case apperr.KindInvalidReference, apperr.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
