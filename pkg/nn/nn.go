// Package nn holds the types that flow between the stages of the detection pipeline:
// tensors, detections, detection parameters, and the NMS that turns raw model
// candidates into a detection set.
package nn

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

const DefaultConfidenceThreshold = 0.25
const DefaultNmsIouThreshold = 0.45
const DefaultMaxDetections = 300

// Upper limit on the number of candidates that go into NMS. Anything beyond this
// (lowest confidence first) is dropped before suppression.
const DefaultMaxNmsCandidates = 30000

// Class offset used to separate boxes of different classes during NMS.
// Must be larger than any image dimension that we expect to see.
const classOffset = 7680

// Tensor is a dense float32 tensor, in row-major order
type Tensor struct {
	Shape []int64
	Data  []float32
}

func NewTensor(shape []int64, data []float32) (*Tensor, error) {
	n := ShapeElements(shape)
	if int64(len(data)) != n {
		return nil, fmt.Errorf("Tensor shape %v needs %v elements, but data has %v", shape, n, len(data))
	}
	return &Tensor{Shape: shape, Data: data}, nil
}

// Create a zero-filled tensor
func NewEmptyTensor(shape []int64) *Tensor {
	return &Tensor{
		Shape: shape,
		Data:  make([]float32, ShapeElements(shape)),
	}
}

// Number of elements described by 'shape'
func ShapeElements(shape []int64) int64 {
	n := int64(1)
	for _, d := range shape {
		n *= d
	}
	return n
}

// Returns the last two dimensions (height, width) of an image tensor
func (t *Tensor) ImageSize() (height, width int) {
	if len(t.Shape) < 2 {
		return 0, 0
	}
	return int(t.Shape[len(t.Shape)-2]), int(t.Shape[len(t.Shape)-1])
}

// NN object detection parameters
type DetectionParams struct {
	ConfidenceThreshold float32 // Candidates must score strictly above this to survive
	NmsIouThreshold     float32 // A box is suppressed when its IoU with a kept box is strictly above this
	MaxDetections       int     // Maximum number of detections kept after NMS
	MaxNmsCandidates    int     // Maximum number of candidates fed into NMS
	Classes             []int   // If not empty, only keep these classes
	Agnostic            bool    // If true, NMS ignores class, so boxes of different classes can suppress each other
}

// Create a default DetectionParams object
func NewDetectionParams() *DetectionParams {
	return &DetectionParams{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		NmsIouThreshold:     DefaultNmsIouThreshold,
		MaxDetections:       DefaultMaxDetections,
		MaxNmsCandidates:    DefaultMaxNmsCandidates,
	}
}

// Returns true if 'class' passes the Classes filter
func (p *DetectionParams) AllowClass(class int) bool {
	if len(p.Classes) == 0 {
		return true
	}
	for _, c := range p.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// Load a text file with class names on each line
func LoadClassFile(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	classes := []string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			classes = append(classes, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return classes, nil
}
