package thermal

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

const (
	Columns   = 32
	Rows      = 24
	FrameSize = Columns * Rows
)

var (
	ErrFrameTooShort = errors.New("thermal frame too short")
	ErrInvalidCell   = errors.New("invalid thermal frame value")
)

// Frame is a row-major 32x24 grid of temperatures. Sensors send cells either
// as JSON numbers or as numeric strings, so both are accepted on decode.
type Frame []float64

// A JSON null decodes to a nil Frame, meaning no frame was sent. An empty
// array decodes to a non-nil empty Frame that fails Validate.
func (f *Frame) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*f = nil
		return nil
	}

	var raw []interface{}
	if err := jsoniter.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCell, err)
	}

	out := make(Frame, len(raw))
	for i, cell := range raw {
		v, err := parseCell(cell)
		if err != nil {
			return fmt.Errorf("%w at index %d: %v", ErrInvalidCell, i, err)
		}
		out[i] = v
	}

	*f = out
	return nil
}

func parseCell(cell interface{}) (float64, error) {
	switch v := cell.(type) {
	case float64:
		return v, nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", cell)
	}
}

// ParseFrame decodes a JSON array the same way a request body would.
func ParseFrame(data []byte) (Frame, error) {
	var f Frame
	if err := f.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return f, nil
}

func (f Frame) Validate() error {
	if len(f) < FrameSize {
		return fmt.Errorf("%w: got %d values, need %d", ErrFrameTooShort, len(f), FrameSize)
	}
	return nil
}
