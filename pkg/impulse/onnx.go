package impulse

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"
)

type ONNXConfig struct {
	ModelPath         string
	MetadataPath      string
	SharedLibraryPath string
}

// Metadata describes the exported model. Classes must be listed in output
// order.
type Metadata struct {
	InputName     string   `json:"input_name"`
	OutputName    string   `json:"output_name"`
	AnomalyOutput string   `json:"anomaly_output,omitempty"`
	InputShape    []int64  `json:"input_shape"`
	OutputShape   []int64  `json:"output_shape"`
	Classes       []string `json:"classes"`
	ApplySoftmax  bool     `json:"apply_softmax"`
}

func (m Metadata) inputElements() int {
	n := int64(1)
	for _, d := range m.InputShape {
		n *= d
	}
	return int(n)
}

func (m Metadata) validate() error {
	if len(m.InputShape) == 0 || len(m.OutputShape) == 0 {
		return errors.New("input_shape and output_shape are required")
	}
	if len(m.Classes) == 0 {
		return errors.New("classes are required")
	}
	if m.InputName == "" || m.OutputName == "" {
		return errors.New("input_name and output_name are required")
	}
	return nil
}

// ONNXModule runs an exported person classifier through onnxruntime. It is
// not ready until Load succeeds.
type ONNXModule struct {
	cfg     ONNXConfig
	log     *logrus.Logger
	meta    Metadata
	session *ort.DynamicAdvancedSession

	ready     chan struct{}
	readyOnce sync.Once
}

func NewONNXModule(log *logrus.Logger, cfg ONNXConfig) *ONNXModule {
	return &ONNXModule{
		cfg:   cfg,
		log:   log,
		ready: make(chan struct{}),
	}
}

func (m *ONNXModule) Ready() <-chan struct{} {
	return m.ready
}

func (m *ONNXModule) Metadata() Metadata {
	return m.meta
}

// Load initialises the runtime, reads metadata and opens the session. The
// readiness signal fires only on success.
func (m *ONNXModule) Load() error {
	if m.cfg.SharedLibraryPath != "" {
		ort.SetSharedLibraryPath(m.cfg.SharedLibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("failed to initialize ONNX environment: %w", err)
		}
	}

	metaFile, err := os.ReadFile(m.cfg.MetadataPath)
	if err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}

	var meta Metadata
	if err := jsoniter.Unmarshal(metaFile, &meta); err != nil {
		return fmt.Errorf("failed to parse metadata: %w", err)
	}
	if err := meta.validate(); err != nil {
		return fmt.Errorf("invalid metadata: %w", err)
	}

	outputs := []string{meta.OutputName}
	if meta.AnomalyOutput != "" {
		outputs = append(outputs, meta.AnomalyOutput)
	}

	session, err := ort.NewDynamicAdvancedSession(m.cfg.ModelPath, []string{meta.InputName}, outputs, nil)
	if err != nil {
		return fmt.Errorf("failed to create ONNX session: %w", err)
	}

	m.meta = meta
	m.session = session

	m.log.WithFields(logrus.Fields{
		"model":   m.cfg.ModelPath,
		"classes": meta.Classes,
		"input":   meta.InputShape,
	}).Info("ONNX classifier loaded")

	m.readyOnce.Do(func() { close(m.ready) })
	return nil
}

func (m *ONNXModule) Alloc(n int) (Buffer, error) {
	shape := ort.NewShape(1, int64(n))
	if n == m.meta.inputElements() {
		shape = ort.NewShape(m.meta.InputShape...)
	}

	tensor, err := ort.NewEmptyTensor[float32](shape)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	return &onnxBuffer{tensor: tensor}, nil
}

func (m *ONNXModule) RunClassifier(buf Buffer, length int, debug bool) (RunResult, error) {
	if length != m.meta.inputElements() {
		if debug {
			m.log.Debugf("Feature count %d does not match model input %d", length, m.meta.inputElements())
		}
		return &onnxResult{status: StatusShapeMismatch}, nil
	}

	in, ok := buf.(*onnxBuffer)
	if !ok {
		return nil, fmt.Errorf("buffer %T was not allocated by this module", buf)
	}

	out, err := ort.NewEmptyTensor[float32](ort.NewShape(m.meta.OutputShape...))
	if err != nil {
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	owned := []*ort.Tensor[float32]{out}
	outputs := []ort.ArbitraryTensor{out}

	if m.meta.AnomalyOutput != "" {
		anomaly, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
		if err != nil {
			out.Destroy()
			return nil, fmt.Errorf("failed to create anomaly tensor: %w", err)
		}
		owned = append(owned, anomaly)
		outputs = append(outputs, anomaly)
	}

	res := &onnxResult{outputs: owned}
	if err := m.session.Run([]ort.ArbitraryTensor{in.tensor}, outputs); err != nil {
		res.Delete()
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	scores := out.GetData()
	if m.meta.ApplySoftmax {
		scores = softmax(scores)
	}

	for i, label := range m.meta.Classes {
		if i >= len(scores) {
			break
		}
		res.entries = append(res.entries, &onnxEntry{label: label, value: float64(scores[i])})
	}
	if len(owned) > 1 {
		res.anomaly = float64(owned[1].GetData()[0])
	}

	if debug {
		m.log.WithFields(logrus.Fields{
			"scores":  scores,
			"anomaly": res.anomaly,
		}).Debug("ONNX run complete")
	}

	return res, nil
}

func (m *ONNXModule) Close() {
	if m.session != nil {
		m.session.Destroy()
	}
	if ort.IsInitialized() {
		ort.DestroyEnvironment()
	}
}

func softmax(in []float32) []float32 {
	if len(in) == 0 {
		return in
	}
	maxVal := in[0]
	for _, v := range in[1:] {
		if v > maxVal {
			maxVal = v
		}
	}

	out := make([]float32, len(in))
	var sum float64
	for i, v := range in {
		e := math.Exp(float64(v - maxVal))
		out[i] = float32(e)
		sum += e
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / sum)
	}
	return out
}

type onnxBuffer struct {
	tensor *ort.Tensor[float32]
}

func (b *onnxBuffer) Data() []float32 {
	return b.tensor.GetData()
}

func (b *onnxBuffer) Free() {
	b.tensor.Destroy()
}

type onnxResult struct {
	status  int
	anomaly float64
	entries []*onnxEntry
	outputs []*ort.Tensor[float32]
}

func (r *onnxResult) Status() int      { return r.status }
func (r *onnxResult) Anomaly() float64 { return r.anomaly }
func (r *onnxResult) Size() int        { return len(r.entries) }
func (r *onnxResult) At(i int) Entry   { return r.entries[i] }

func (r *onnxResult) Delete() {
	for _, t := range r.outputs {
		t.Destroy()
	}
	r.outputs = nil
}

// Entries hold plain Go values once copied out of the output tensor.
type onnxEntry struct {
	label string
	value float64
}

func (e *onnxEntry) Label() string  { return e.label }
func (e *onnxEntry) Value() float64 { return e.value }
func (e *onnxEntry) Delete()        {}
