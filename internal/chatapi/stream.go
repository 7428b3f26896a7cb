package chatapi

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	mstream "github.com/haowjy/meridian-stream-go"

	"policyrelay/internal/config"
	"policyrelay/internal/domain"
	"policyrelay/internal/domain/models"
	"policyrelay/internal/handler/sse"
)

// streamFrame is the JSON envelope written for every SSE frame: the event
// kind, and a data payload whose shape depends on that kind.
type streamFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func wireEventName(kind models.ProgressEventKind) string {
	switch kind {
	case models.EventThinking:
		return "thinking"
	case models.EventMessageChunk:
		return "message"
	case models.EventCompleted:
		return "completed"
	case models.EventError:
		return "error"
	default:
		return string(kind)
	}
}

// Stream handles GET /chat/stream/:id. It relays ProgressLog.ReadFrom frame
// by frame until a terminal event or client disconnect, falling back to
// the canonical poll body as the terminal frame's data, per the contract
// that a completed frame's data equals the poll response.
func (h *Handler) Stream(c *fiber.Ctx) error {
	correlationID := c.Params("id")
	if correlationID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing correlation id")
	}

	afterSeq := uint64(0)
	if raw := c.Query("after"); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			afterSeq = parsed
		}
	}
	if lastEventID := c.Get("Last-Event-ID"); lastEventID != "" {
		if parsed, err := strconv.ParseUint(lastEventID, 10, 64); err == nil {
			afterSeq = parsed
		}
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	logger := h.Logger
	debug := h.DebugEvents

	c.Status(fiber.StatusOK).Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		if err := w.Flush(); err != nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), h.StreamIdle)
		defer cancel()

		reader, err := h.Progress.ReadFrom(ctx, correlationID, afterSeq)
		if err != nil {
			logger.Warn("failed to open progress reader", "correlation_id", correlationID, "error", err)
			return
		}
		defer reader.Close()

		writer := sse.NewSynchronizedWriter(w, correlationID)
		keepAlive := sse.NewTickerKeepAlive(config.DefaultKeepAliveInterval)
		stopped := keepAlive.Start(writer, logger)
		defer keepAlive.Stop()

		for {
			event, ok, err := reader.Next(ctx)
			if err != nil || !ok {
				return
			}

			frame, buildErr := h.buildFrame(ctx, correlationID, event)
			if buildErr != nil {
				logger.Warn("failed to build stream frame", "correlation_id", correlationID, "error", buildErr)
				continue
			}

			wireEvent := mstream.NewEvent(frame).WithType(wireEventName(event.Kind))
			if debug {
				wireEvent = wireEvent.WithID(strconv.FormatUint(event.Seq, 10))
			}

			if err := writer.WriteEvent(wireEvent); err != nil {
				return
			}

			if event.Kind.Terminal() {
				return
			}

			select {
			case <-stopped:
				return
			default:
			}
		}
	})

	return nil
}

// buildFrame marshals one ProgressEvent into the wire JSON payload. Terminal
// events carry the canonical poll Response body as their data; all other
// events carry their raw payload text.
func (h *Handler) buildFrame(ctx context.Context, correlationID string, event models.ProgressEvent) ([]byte, error) {
	if event.Kind.Terminal() {
		resp, err := h.Responses.Get(ctx, correlationID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return json.Marshal(streamFrame{Event: wireEventName(event.Kind), Data: resp})
	}
	return json.Marshal(streamFrame{Event: wireEventName(event.Kind), Data: map[string]string{"text": event.Payload}})
}
