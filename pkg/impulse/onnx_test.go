package impulse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoftmax(t *testing.T) {
	out := softmax([]float32{1, 1})
	assert.InDelta(t, 0.5, out[0], 1e-6)
	assert.InDelta(t, 0.5, out[1], 1e-6)

	out = softmax([]float32{0, 10})
	assert.Less(t, out[0], float32(0.001))
	assert.Greater(t, out[1], float32(0.999))

	assert.Empty(t, softmax(nil))
}

func TestMetadata_InputElements(t *testing.T) {
	m := Metadata{InputShape: []int64{1, 96, 96}}
	assert.Equal(t, 9216, m.inputElements())
}

func TestMetadata_Validate(t *testing.T) {
	ok := Metadata{
		InputName:   "input",
		OutputName:  "output",
		InputShape:  []int64{1, 9216},
		OutputShape: []int64{1, 2},
		Classes:     []string{"no person", "person"},
	}
	require.NoError(t, ok.validate())

	missingClasses := ok
	missingClasses.Classes = nil
	require.Error(t, missingClasses.validate())

	missingNames := ok
	missingNames.OutputName = ""
	require.Error(t, missingNames.validate())
}

func TestONNXModule_NotReadyBeforeLoad(t *testing.T) {
	m := NewONNXModule(quietLogger(), ONNXConfig{})

	select {
	case <-m.Ready():
		t.Fatal("module reported ready before Load")
	default:
	}
}

func TestONNXModule_LoadFailsOnMissingMetadata(t *testing.T) {
	if os.Getenv("ONNXRUNTIME_LIB_PATH") == "" {
		t.Skip("ONNXRUNTIME_LIB_PATH not set")
	}

	m := NewONNXModule(quietLogger(), ONNXConfig{
		SharedLibraryPath: os.Getenv("ONNXRUNTIME_LIB_PATH"),
		MetadataPath:      filepath.Join(t.TempDir(), "missing.json"),
	})
	defer m.Close()

	require.Error(t, m.Load())
	select {
	case <-m.Ready():
		t.Fatal("module reported ready after a failed load")
	default:
	}
}
