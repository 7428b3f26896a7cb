package chatapi

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"

	"policyrelay/internal/config"
	"policyrelay/internal/domain"
	"policyrelay/internal/domain/models"
	"policyrelay/internal/middleware"
)

// submitRequest is the POST /chat body.
type submitRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"thread_id"`
}

func (r submitRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Message,
			validation.Required,
			validation.Length(config.MinMessageLength, config.MaxMessageLength),
		),
	)
}

// submitResponse is the POST /chat response body.
type submitResponse struct {
	CorrelationID string `json:"correlation_id"`
	ThreadID      string `json:"thread_id"`
}

// Submit handles POST /chat: validates the message, mints a correlation_id
// (and a thread_id if the caller didn't supply one), and enqueues a Request.
func (h *Handler) Submit(c *fiber.Ctx) error {
	var body submitRequest
	if err := c.BodyParser(&body); err != nil {
		return domain.ErrValidation
	}
	if err := body.Validate(); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	threadID := body.ThreadID
	if threadID == "" {
		threadID = models.NewThreadID()
	}

	req := models.Request{
		CorrelationID: models.NewCorrelationID(),
		ThreadID:      threadID,
		Message:       body.Message,
		SubmittedAt:   time.Now().UTC(),
		ActorID:       middleware.ActorID(c),
	}

	if err := h.Queue.Publish(c.Context(), req); err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(submitResponse{
		CorrelationID: req.CorrelationID,
		ThreadID:      req.ThreadID,
	})
}
