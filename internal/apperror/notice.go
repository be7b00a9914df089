package apperror

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Notice is the single, dismissible notification sent to the client for a
// failed request.
type Notice struct {
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// NoticeFor classifies err and returns the HTTP status and notice body.
func NoticeFor(err error) (int, Notice) {
	var (
		ve *ValidationError
		te *InvalidTransitionError
		se *StoreError
		fe *FormatError
		he *fiber.Error
	)
	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, Notice{Kind: "validation", Message: "some fields are missing or invalid", Fields: ve.Fields}
	case errors.As(err, &te):
		return fiber.StatusConflict, Notice{Kind: "invalid_transition", Message: te.Error()}
	case errors.As(err, &fe):
		return fiber.StatusUnprocessableEntity, Notice{Kind: "format", Message: fe.Error()}
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound, Notice{Kind: "not_found", Message: err.Error()}
	case errors.As(err, &se):
		if se.Timeout {
			return fiber.StatusGatewayTimeout, Notice{Kind: "store", Message: "the store did not answer in time, please try again"}
		}
		return fiber.StatusBadGateway, Notice{Kind: "store", Message: "the store could not complete the request, please try again"}
	case errors.As(err, &he):
		return he.Code, Notice{Kind: "request", Message: he.Message}
	default:
		return fiber.StatusInternalServerError, Notice{Kind: "internal", Message: "unexpected error"}
	}
}

// Respond writes err as a notice. It never returns the original error so
// nothing escapes past the handler boundary.
func Respond(c *fiber.Ctx, err error) error {
	status, n := NoticeFor(err)
	if status >= fiber.StatusInternalServerError {
		slog.Error("request failed", "op", "apperror.Respond", "path", c.Path(), "err", err)
	}
	return c.Status(status).JSON(fiber.Map{"notice": n})
}
