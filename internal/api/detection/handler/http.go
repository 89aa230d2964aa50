package detectionHandler

import (
	"time"

	detectionService "ThermalVision/internal/api/detection/service"
	"ThermalVision/internal/middleware"
	"ThermalVision/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

const infoMessage = "Rest API to classify ir image"

type DetectionHandler struct {
	log              *logrus.Logger
	validator        *validator.Validate
	middleware       middleware.Middleware
	detectionService detectionService.IDetectionService
	utils            utils.IUtils
	timeout          time.Duration
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	ds detectionService.IDetectionService,
	utils utils.IUtils,
	timeout time.Duration,
) *DetectionHandler {
	return &DetectionHandler{
		detectionService: ds,
		log:              log,
		validator:        validator,
		middleware:       middleware,
		utils:            utils,
		timeout:          timeout,
	}
}

func (h *DetectionHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	srv.Get("/", h.Info)
	srv.Get("/health", h.Health)

	classify := srv.Group("/classify-image")
	classify.Use("/ws", wsMiddleware)
	classify.Get("/ws", websocket.New(h.handleClassifyWebSocket))
	classify.Post("", h.middleware.NewRateLimiter, h.ClassifyImage)
}
