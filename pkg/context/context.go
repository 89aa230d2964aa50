package context

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

type requestIDKey struct{}

const (
	requestIDHeader = "X-Request-ID"
	unknownID       = "unknown"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func GetRequestID(ctx context.Context) string {
	requestID, ok := ctx.Value(requestIDKey{}).(string)
	if !ok || requestID == "" {
		return unknownID
	}
	return requestID
}

// FromFiberCtx derives the service context for a request. The id set by the
// request id middleware wins; the raw header is a fallback for routes mounted
// without it and is copied because fiber reuses header memory.
func FromFiberCtx(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()

	requestID, ok := c.Locals(requestIDHeader).(string)
	if !ok || requestID == "" {
		requestID = utils.CopyString(c.Get(requestIDHeader))
	}
	if requestID == "" {
		requestID = unknownID
	}

	return WithRequestID(ctx, requestID)
}
