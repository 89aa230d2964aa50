package impulse

import (
	"context"
	"sync"
	"sync/atomic"

	"ThermalVision/internal/entity"
	"ThermalVision/pkg/features"
	"github.com/sirupsen/logrus"
)

const (
	StatusOK            = 0
	StatusShapeMismatch = -1
	StatusAllocFailed   = -2
	StatusRunFailed     = -3
)

type IClassifier interface {
	Initialize(ctx context.Context) error
	IsReady() bool
	Classify(vector []uint32) (entity.ClassificationResult, error)
}

// Classifier is the process-wide adapter around a Module. Every caller of
// Initialize waits on the same readiness signal and calls into the module
// are serialised.
type Classifier struct {
	log    *logrus.Logger
	module Module
	debug  bool

	once        sync.Once
	ready       chan struct{}
	initialized atomic.Bool

	mu sync.Mutex
}

func New(log *logrus.Logger, module Module, debug bool) *Classifier {
	return &Classifier{
		log:    log,
		module: module,
		debug:  debug,
		ready:  make(chan struct{}),
	}
}

// Initialize blocks until the module reports ready or ctx is done. Only the
// first call subscribes to the module's readiness signal.
func (c *Classifier) Initialize(ctx context.Context) error {
	if c.initialized.Load() {
		return nil
	}

	c.once.Do(func() {
		go c.awaitModule()
	})

	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Classifier) awaitModule() {
	<-c.module.Ready()
	c.initialized.Store(true)
	close(c.ready)
	c.log.Info("Classifier module initialized")
}

func (c *Classifier) IsReady() bool {
	return c.initialized.Load()
}

// Classify copies vector into module memory, runs the classifier and returns
// the labels in module order. Native memory is released on every path.
func (c *Classifier) Classify(vector []uint32) (entity.ClassificationResult, error) {
	if !c.initialized.Load() {
		return entity.ClassificationResult{}, ErrNotInitialized
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	buf, err := c.module.Alloc(len(vector))
	if err != nil {
		return entity.ClassificationResult{}, &InferenceError{Code: StatusAllocFailed, Err: err}
	}
	defer buf.Free()

	copy(buf.Data(), features.AsFloat32(vector))

	ret, err := c.module.RunClassifier(buf, len(vector), c.debug)
	if err != nil {
		return entity.ClassificationResult{}, &InferenceError{Code: StatusRunFailed, Err: err}
	}
	defer ret.Delete()

	if status := ret.Status(); status != StatusOK {
		return entity.ClassificationResult{}, &InferenceError{Code: status}
	}

	result := entity.ClassificationResult{
		Anomaly: ret.Anomaly(),
		Results: make([]entity.Classification, 0, ret.Size()),
	}
	for i := 0; i < ret.Size(); i++ {
		e := ret.At(i)
		result.Results = append(result.Results, entity.Classification{
			Label: e.Label(),
			Value: e.Value(),
		})
		e.Delete()
	}

	if c.debug {
		c.log.WithFields(logrus.Fields{
			"features": len(vector),
			"anomaly":  result.Anomaly,
			"results":  result.Results,
		}).Debug("Classifier run finished")
	}

	return result, nil
}
