package handlerUtil

import (
	"context"
	"errors"

	"ThermalVision/internal/api/detection"
	"ThermalVision/pkg/impulse"
	"ThermalVision/pkg/log"
	"ThermalVision/pkg/presence"
	"ThermalVision/pkg/response"
	"ThermalVision/pkg/thermal"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
	Status *int   `json:"status,omitempty"`
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// Describe classifies a pipeline error into its response body and HTTP status.
// Every pipeline failure is a 500 carrying the underlying message.
func Describe(err error) (int, ErrorResponse) {
	body := ErrorResponse{Error: err.Error()}

	var infErr *impulse.InferenceError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusRequestTimeout, ErrorResponse{
			Error: utils.StatusMessage(fiber.StatusRequestTimeout),
			Code:  "REQUEST_TIMEOUT",
		}
	case errors.Is(err, thermal.ErrFrameTooShort):
		body.Code = "FRAME_TOO_SHORT"
	case errors.Is(err, detection.ErrDecode), errors.Is(err, thermal.ErrInvalidCell):
		body.Code = "DECODE_ERROR"
	case errors.Is(err, impulse.ErrNotInitialized):
		body.Code = "NOT_INITIALIZED"
	case errors.As(err, &infErr):
		body.Code = "INFERENCE_ERROR"
		status := infErr.Code
		body.Status = &status
	case errors.Is(err, presence.ErrUnexpectedLabelOrder):
		body.Code = "UNEXPECTED_LABEL_ORDER"
	default:
		if code, ok := response.StatusCode(err); ok {
			return code, body
		}
		body.Code = "INTERNAL_ERROR"
	}

	return fiber.StatusInternalServerError, body
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	status, body := Describe(err)

	fields := log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"code":       body.Code,
		"path":       path,
		"operation":  operation,
	}
	if status == fiber.StatusRequestTimeout {
		h.logger.WithFields(fields).Warn("Request timed out")
	} else {
		h.logger.WithFields(fields).Error("Classification request failed")
	}

	return c.Status(status).JSON(body)
}

// HandleValidationError treats a malformed body like any other decode
// failure.
func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error: "Validation failed: " + err.Error(),
		Code:  "DECODE_ERROR",
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
