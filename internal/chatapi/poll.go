package chatapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"policyrelay/internal/domain"
	"policyrelay/internal/domain/models"
)

// Poll handles GET /chat/response/:id: the fallback read for a client that
// isn't (or is no longer) holding a live stream connection.
func (h *Handler) Poll(c *fiber.Ctx) error {
	correlationID := c.Params("id")
	if correlationID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing correlation id")
	}

	resp, err := h.Responses.Get(c.Context(), correlationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(models.Pending(correlationID, ""))
		}
		return err
	}
	return c.JSON(resp)
}
