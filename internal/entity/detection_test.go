package entity

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "left", DirectionLeft.String())
	assert.Equal(t, "centre", DirectionCentre.String())
	assert.Equal(t, "right", DirectionRight.String())
	assert.Equal(t, "none", DirectionNone.String())
	assert.Equal(t, "unknown", Direction(0).String())
}

func TestNewDetectionOutcome_CopiesDirection(t *testing.T) {
	d := DirectionLeft
	out := NewDetectionOutcome(true, &d)
	d = DirectionRight

	require.NotNil(t, out.Direction)
	assert.Equal(t, DirectionLeft, *out.Direction)
}

func TestDetectionOutcome_JSON(t *testing.T) {
	raw, err := jsoniter.Marshal(NewDetectionOutcome(false, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"hasPerson":false}`, string(raw))

	d := DirectionCentre
	raw, err = jsoniter.Marshal(NewDetectionOutcome(true, &d))
	require.NoError(t, err)
	assert.JSONEq(t, `{"hasPerson":true,"direction":2}`, string(raw))
}
