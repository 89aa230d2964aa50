package middleware

import (
	"time"

	"ThermalVision/pkg/utils"
	"github.com/gofiber/fiber/v2"
	fiberUtils "github.com/gofiber/fiber/v2/utils"
)

const (
	RequestIDKey = "X-Request-ID"

	maxRequestIDLength = 64
)

// NewRequestIDMiddleware keeps an X-Request-ID sent by the sensor gateway when
// it is a short token, so one id follows a frame across services. Missing or
// malformed ids are replaced by a ULID.
func NewRequestIDMiddleware() fiber.Handler {
	utilsInstance := utils.New()

	return func(c *fiber.Ctx) error {
		// The id outlives the request in detection events, so it must not
		// alias fasthttp's header buffer.
		requestID := fiberUtils.CopyString(c.Get(RequestIDKey))

		if !validRequestID(requestID) {
			id, err := utilsInstance.NewULIDFromTimestamp(time.Now())
			if err != nil {
				return err
			}
			requestID = id
		}

		c.Locals(RequestIDKey, requestID)
		c.Set(RequestIDKey, requestID)

		return c.Next()
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.', r == ':':
		default:
			return false
		}
	}
	return true
}
