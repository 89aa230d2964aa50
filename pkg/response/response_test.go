package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs(t *testing.T) {
	tooMany := NewError(http.StatusTooManyRequests, "too many requests")
	wrapped := fmt.Errorf("rate limit: %w", NewError(http.StatusTooManyRequests, "too many requests"))

	assert.ErrorIs(t, wrapped, tooMany)
	assert.NotErrorIs(t, wrapped, NewError(http.StatusBadRequest, "too many requests"))
	assert.NotErrorIs(t, wrapped, NewError(http.StatusTooManyRequests, "slow down"))
}

func TestStatusCode(t *testing.T) {
	code, ok := StatusCode(fmt.Errorf("decode: %w", NewError(http.StatusInternalServerError, "bad input")))
	assert.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, code)

	_, ok = StatusCode(errors.New("plain"))
	assert.False(t, ok)
}
