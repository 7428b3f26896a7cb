package chatapi

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const defaultHistoryLimit = 20

func queryLimit(c *fiber.Ctx) int {
	raw := c.Query("limit")
	if raw == "" {
		return defaultHistoryLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultHistoryLimit
	}
	return n
}

// RecentHistory handles GET /chat/history/recent: a paginated, read-only
// projection over a thread's completed turns. fromTurnID is the pagination
// cursor (a correlation_id). By default the turns older than the cursor are
// returned, most recent first; direction=backward asks for the turns newer
// than it instead, which the in-process history store ignores.
func (h *Handler) RecentHistory(c *fiber.Ctx) error {
	threadID := c.Query("thread_id")
	if threadID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "thread_id is required")
	}

	backward := c.Query("direction") == "backward"
	fromTurnID := c.Query("fromTurnID")

	records, err := h.History.Recent(c.Context(), threadID, fromTurnID, queryLimit(c), backward)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"turns": records})
}

// MostHelpfulSearches handles GET /chat/history/most-helpful-searches.
func (h *Handler) MostHelpfulSearches(c *fiber.Ctx) error {
	stats, err := h.History.MostHelpfulSearches(c.Context(), queryLimit(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"searches": stats})
}

// MostHelpfulDocuments handles GET /chat/history/most-helpful-documents.
func (h *Handler) MostHelpfulDocuments(c *fiber.Ctx) error {
	stats, err := h.History.MostHelpfulDocuments(c.Context(), queryLimit(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"documents": stats})
}
