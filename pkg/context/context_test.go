package context

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRequestID(t *testing.T) {
	assert.Equal(t, "unknown", GetRequestID(context.Background()))
	assert.Equal(t, "unknown", GetRequestID(WithRequestID(context.Background(), "")))
	assert.Equal(t, "req-1", GetRequestID(WithRequestID(context.Background(), "req-1")))

	// A plain string key must not be mistaken for the request id.
	foreign := context.WithValue(context.Background(), "request_id", "spoofed")
	assert.Equal(t, "unknown", GetRequestID(foreign))
}

func TestFromFiberCtx(t *testing.T) {
	cases := []struct {
		name   string
		local  string
		header string
		want   string
	}{
		{"locals win", "from-middleware", "from-header", "from-middleware"},
		{"header fallback", "", "from-header", "from-header"},
		{"nothing set", "", "", "unknown"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				if tc.local != "" {
					c.Locals("X-Request-ID", tc.local)
				}
				return c.SendString(GetRequestID(FromFiberCtx(c)))
			})

			req := httptest.NewRequest("GET", "/", nil)
			if tc.header != "" {
				req.Header.Set("X-Request-ID", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(body))
		})
	}
}
