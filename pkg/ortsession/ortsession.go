// Package ortsession wraps an ONNX Runtime inference session, bound to one of a small set of
// execution providers.
package ortsession

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/cyclopcam/logs"
	"github.com/cyclopcam/ovdetect/pkg/buildinfo"
	"github.com/cyclopcam/ovdetect/pkg/nn"
	ort "github.com/yalue/onnxruntime_go"
)

// Backend is an ONNX Runtime execution provider
type Backend string

const (
	BackendOpenVINO Backend = "OVEP"  // OpenVINO execution provider
	BackendCPU      Backend = "CPUEP" // Default CPU execution provider (MLAS)
)

var ErrInvalidBackend = errors.New("Invalid Device Option. Supported device options are 'CPUEP', 'OVEP.")

// All recognized backends
var Backends = []Backend{BackendOpenVINO, BackendCPU}

// ParseBackend returns ErrInvalidBackend for anything other than "OVEP" or "CPUEP"
func ParseBackend(s string) (Backend, error) {
	for _, b := range Backends {
		if string(b) == s {
			return b, nil
		}
	}
	return "", ErrInvalidBackend
}

// Human readable name, used when announcing which backend we're running on
func (b Backend) Description() string {
	switch b {
	case BackendCPU:
		return "default CPU EP"
	default:
		return string(b)
	}
}

type Options struct {
	OpenVINODeviceType string // eg "CPU_FP32", "GPU_FP16"
	IntraOpThreads     int    // 0 = let the runtime decide
}

func NewOptions() Options {
	return Options{
		OpenVINODeviceType: "CPU_FP32",
	}
}

// Shared library name for the current platform
func libraryName() string {
	switch runtime.GOOS {
	case "darwin":
		return "libonnxruntime.dylib"
	case "windows":
		return "onnxruntime.dll"
	default:
		return "libonnxruntime.so"
	}
}

// DefaultLibraryPath returns the packaged library in /usr/lib/<multiarch> if it exists,
// otherwise the bare library name, which leaves the search to the dynamic loader.
func DefaultLibraryPath() string {
	name := libraryName()
	if runtime.GOOS == "linux" && buildinfo.Multiarch != "unknown" {
		packaged := filepath.Join("/usr/lib", buildinfo.Multiarch, name)
		if _, err := os.Stat(packaged); err == nil {
			return packaged
		}
	}
	return name
}

// InitializeRuntime loads the onnxruntime shared library.
// It is safe to call more than once.
func InitializeRuntime(libPath string) error {
	if ort.IsInitialized() {
		return nil
	}
	if libPath == "" {
		libPath = DefaultLibraryPath()
	}
	ort.SetSharedLibraryPath(libPath)
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("Failed to initialize onnxruntime from %v: %w", libPath, err)
	}
	return nil
}

func DestroyRuntime() error {
	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}

// Session is a loaded model, bound to an execution provider
type Session struct {
	Backend     Backend
	InputName   string   // Name of the model's first input
	OutputNames []string // Names of all outputs, in model order
	InputShape  []int64  // Model-declared input shape. Dynamic dimensions are -1.

	log     logs.Log
	session *ort.DynamicAdvancedSession
}

// New loads the model and creates a session for the given backend.
// InitializeRuntime must have been called first.
func New(log logs.Log, modelPath string, backend Backend, opts Options) (*Session, error) {
	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("Failed to read inputs/outputs of %v: %w", modelPath, err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("Model %v has %v inputs and %v outputs", modelPath, len(inputs), len(outputs))
	}

	so, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("Failed to create session options: %w", err)
	}
	defer so.Destroy()

	if opts.IntraOpThreads > 0 {
		if err := so.SetIntraOpNumThreads(opts.IntraOpThreads); err != nil {
			return nil, err
		}
	}

	log.Infof("Creating session for %v", backend)
	switch backend {
	case BackendOpenVINO:
		deviceType := opts.OpenVINODeviceType
		if deviceType == "" {
			deviceType = NewOptions().OpenVINODeviceType
		}
		log.Infof("OpenVINO device_type %v, host CPU %v", deviceType, CPUFeatures())
		if err := so.AppendExecutionProviderOpenVINO(map[string]string{"device_type": deviceType}); err != nil {
			return nil, fmt.Errorf("Failed to enable OpenVINO execution provider: %w", err)
		}
	case BackendCPU:
		log.Infof("Host CPU %v", CPUFeatures())
	default:
		return nil, ErrInvalidBackend
	}

	outputNames := make([]string, len(outputs))
	for i, o := range outputs {
		outputNames[i] = o.Name
	}

	session, err := ort.NewDynamicAdvancedSession(modelPath, []string{inputs[0].Name}, outputNames, so)
	if err != nil {
		return nil, fmt.Errorf("Failed to create %v session for %v: %w", backend, modelPath, err)
	}

	return &Session{
		Backend:     backend,
		InputName:   inputs[0].Name,
		OutputNames: outputNames,
		InputShape:  append([]int64(nil), inputs[0].Dimensions...),
		log:         log,
		session:     session,
	}, nil
}

// Run executes the model synchronously, and returns one tensor per output name.
func (s *Session) Run(input *nn.Tensor) ([]*nn.Tensor, error) {
	in, err := ort.NewTensor(ort.NewShape(input.Shape...), input.Data)
	if err != nil {
		return nil, fmt.Errorf("Failed to create input tensor: %w", err)
	}
	defer in.Destroy()

	// nil outputs are allocated by the runtime
	outputs := make([]ort.Value, len(s.OutputNames))
	if err := s.session.Run([]ort.Value{in}, outputs); err != nil {
		return nil, fmt.Errorf("Inference failed: %w", err)
	}
	defer func() {
		for _, o := range outputs {
			if o != nil {
				o.Destroy()
			}
		}
	}()

	result := make([]*nn.Tensor, len(outputs))
	for i, o := range outputs {
		t, ok := o.(*ort.Tensor[float32])
		if !ok {
			return nil, fmt.Errorf("Output %v is not a float32 tensor", s.OutputNames[i])
		}
		result[i] = &nn.Tensor{
			Shape: append([]int64(nil), t.GetShape()...),
			Data:  append([]float32(nil), t.GetData()...),
		}
	}
	return result, nil
}

func (s *Session) Close() error {
	if s.session == nil {
		return nil
	}
	err := s.session.Destroy()
	s.session = nil
	return err
}
