package detectionHandler

import (
	"context"
	"fmt"
	"time"

	"ThermalVision/internal/api/detection"
	"ThermalVision/internal/entity"
	contextPkg "ThermalVision/pkg/context"
	"ThermalVision/pkg/handlerUtil"
	"ThermalVision/pkg/log"
	"ThermalVision/pkg/thermal"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"
)

func (h *DetectionHandler) Info(ctx *fiber.Ctx) error {
	return ctx.JSON(detection.InfoResponse{Info: infoMessage})
}

func (h *DetectionHandler) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(detection.HealthResponse{
		Status:          "ok",
		ClassifierReady: h.detectionService.ClassifierReady(),
	})
}

// ClassifyImage accepts either a JSON body with a base64 image or a
// multipart upload with an "image" file and an optional JSON "frame" field.
func (h *DetectionHandler) ClassifyImage(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), h.timeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing classify image request")

	var (
		outcome *entity.DetectionOutcome
		err     error
	)

	file, err := ctx.FormFile("image")
	if err == nil {
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"file_name":  file.Filename,
			"file_size":  file.Size,
		}).Debug("Processing file upload")

		if err := h.utils.ValidateImageFile(file); err != nil {
			return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
		}

		fileContent, err := file.Open()
		if err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "open_file")
		}
		defer fileContent.Close()

		image, err := h.utils.ReadFile(fileContent)
		if err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_file")
		}

		var frame thermal.Frame
		if raw := ctx.FormValue("frame"); raw != "" {
			frame, err = thermal.ParseFrame([]byte(raw))
			if err != nil {
				return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_frame")
			}
		}

		outcome, err = h.detectionService.ClassifyBuffer(c, image, frame)
		if err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "classify_image")
		}
	} else {
		var req detection.ClassifyImageRequest
		if err := ctx.BodyParser(&req); err != nil {
			return errHandler.Handle(ctx, requestID, fmt.Errorf("%w: %w", detection.ErrDecode, err), ctx.Path(), "parse_request_body")
		}

		if err := h.validator.Struct(req); err != nil {
			return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
		}

		outcome, err = h.detectionService.ClassifyImage(c, req)
		if err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "classify_image")
		}
	}

	fields := log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"has_person": outcome.HasPerson,
	}
	if outcome.Direction != nil {
		fields["direction"] = outcome.Direction.String()
	}
	h.log.WithFields(fields).Info("Classification successful")

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, outcome)
}

// handleClassifyWebSocket classifies one ClassifyImageRequest per message.
// A failed message gets an error reply and the connection stays open.
func (h *DetectionHandler) handleClassifyWebSocket(c *websocket.Conn) {
	requestID, _ := c.Locals("X-Request-ID").(string)
	if requestID == "" {
		requestID = "unknown"
	}

	h.log.WithField("request_id", requestID).Info("Classification WebSocket client connected")
	defer h.log.WithField("request_id", requestID).Info("Classification WebSocket client disconnected")

	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	maxReadTimeout := 60 * time.Second

	for {
		if err := c.SetReadDeadline(time.Now().Add(maxReadTimeout)); err != nil {
			h.log.Errorf("Error setting read deadline: %v", err)
			break
		}

		_, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Errorf("Classification WebSocket error: %v", err)
			}
			break
		}

		reply := h.classifyMessage(requestID, message)

		if err := c.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
			h.log.Errorf("Error setting write deadline: %v", err)
			break
		}
		if err := c.WriteJSON(reply); err != nil {
			h.log.Errorf("Error writing JSON response: %v", err)
			break
		}
	}
}

func (h *DetectionHandler) classifyMessage(requestID string, message []byte) interface{} {
	ctx, cancel := context.WithTimeout(contextPkg.WithRequestID(context.Background(), requestID), h.timeout)
	defer cancel()

	var req detection.ClassifyImageRequest
	err := jsoniter.Unmarshal(message, &req)
	if err == nil {
		err = h.validator.Struct(req)
	}
	if err != nil {
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Invalid classification message")
		return handlerUtil.ErrorResponse{Error: err.Error(), Code: "DECODE_ERROR"}
	}

	outcome, err := h.detectionService.ClassifyImage(ctx, req)
	if err != nil {
		_, body := handlerUtil.Describe(err)
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"code":       body.Code,
		}).Error("WebSocket classification failed")
		return body
	}

	return outcome
}
