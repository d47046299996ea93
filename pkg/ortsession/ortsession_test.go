package ortsession

import (
	"os"
	"runtime"
	"strings"
	"testing"

	"github.com/cyclopcam/logs"
	"github.com/cyclopcam/ovdetect/pkg/buildinfo"
	"github.com/cyclopcam/ovdetect/pkg/nn"
	"github.com/stretchr/testify/require"
)

const testModel = "../../testdata/yolov8n.onnx"

func TestParseBackend(t *testing.T) {
	b, err := ParseBackend("OVEP")
	require.NoError(t, err)
	require.Equal(t, BackendOpenVINO, b)
	b, err = ParseBackend("CPUEP")
	require.NoError(t, err)
	require.Equal(t, BackendCPU, b)

	for _, bad := range []string{"", "ovep", "GPU", "CPU"} {
		_, err = ParseBackend(bad)
		require.ErrorIs(t, err, ErrInvalidBackend)
	}
	require.Equal(t, "default CPU EP", BackendCPU.Description())
	require.Equal(t, "OVEP", BackendOpenVINO.Description())
}

func TestDefaultLibraryPath(t *testing.T) {
	require.Equal(t, libraryName(), DefaultLibraryPath())
	buildinfo.Multiarch = "no-such-arch"
	defer func() { buildinfo.Multiarch = "unknown" }()
	require.Equal(t, libraryName(), DefaultLibraryPath())
}

func TestCPUFeatures(t *testing.T) {
	require.True(t, strings.HasPrefix(CPUFeatures(), runtime.GOARCH+" ["))
}

// Runs the real model on the CPU backend. Needs testdata/yolov8n.onnx, and an onnxruntime
// shared library (set ONNXRUNTIME_LIB if it's not on the default search path).
func TestSessionCPU(t *testing.T) {
	if _, err := os.Stat(testModel); err != nil {
		t.Skipf("%v not found", testModel)
	}
	if err := InitializeRuntime(os.Getenv("ONNXRUNTIME_LIB")); err != nil {
		t.Skipf("onnxruntime not available: %v", err)
	}
	defer DestroyRuntime()

	s, err := New(logs.NewTestingLog(t), testModel, BackendCPU, NewOptions())
	require.NoError(t, err)
	defer s.Close()
	require.Equal(t, "images", s.InputName)
	require.Equal(t, 1, len(s.OutputNames))

	out, err := s.Run(nn.NewEmptyTensor([]int64{1, 3, 640, 640}))
	require.NoError(t, err)
	require.Equal(t, 1, len(out))
	require.Equal(t, []int64{1, 84, 8400}, out[0].Shape)
}
