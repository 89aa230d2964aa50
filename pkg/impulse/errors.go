package impulse

import (
	"errors"
	"fmt"
)

var ErrNotInitialized = errors.New("classifier module is not initialized")

// InferenceError reports a non-zero status from the runtime.
type InferenceError struct {
	Code int
	Err  error
}

func (e *InferenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("classification failed (err code: %d): %v", e.Code, e.Err)
	}
	return fmt.Sprintf("classification failed (err code: %d)", e.Code)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}
