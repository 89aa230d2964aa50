// Package impulse wraps a precompiled person classifier behind a process-wide
// adapter. The classifier itself is a Module: a native runtime with its own
// memory, a one-time readiness signal and explicitly released results.
package impulse

// Module is the native inference runtime.
type Module interface {
	// Ready is closed once the runtime can accept work. It fires at most once.
	Ready() <-chan struct{}

	// Alloc reserves module-owned memory for n float32 values.
	Alloc(n int) (Buffer, error)

	// RunClassifier runs inference over the first length values of buf.
	RunClassifier(buf Buffer, length int, debug bool) (RunResult, error)
}

// Buffer is module-owned memory. Free must be called exactly once.
type Buffer interface {
	Data() []float32
	Free()
}

// RunResult is a native result handle. Status is zero on success. Delete
// releases the handle; entries returned by At are released separately.
type RunResult interface {
	Status() int
	Anomaly() float64
	Size() int
	At(i int) Entry
	Delete()
}

type Entry interface {
	Label() string
	Value() float64
	Delete()
}
