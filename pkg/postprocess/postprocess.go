// Package postprocess turns raw YOLOv8 output into a detection set and its text summary
package postprocess

import (
	"fmt"
	"image"
	"slices"
	"strings"
	"time"

	"github.com/cyclopcam/ovdetect/pkg/annotate"
	"github.com/cyclopcam/ovdetect/pkg/bench"
	"github.com/cyclopcam/ovdetect/pkg/nn"
)

// Returned instead of a summary when nothing survives NMS
const NoDetections = "No detection found."

type Options struct {
	Params  *nn.DetectionParams
	Classes []string // Class names, indexed by class
}

func NewOptions() Options {
	return Options{
		Params:  nn.NewDetectionParams(),
		Classes: nn.COCOClasses,
	}
}

type Result struct {
	Detections nn.DetectionSet
	Summary    string      // eg "1 cat, 2 dogs, "
	Raw        string      // One line per detection
	Text       []string    // Single element: the complete report, or NoDetections
	Annotated  image.Image // Copy of the original image with boxes drawn on it. nil if there are no detections.
}

// Detect decodes the model output, runs NMS, and scales the surviving boxes back to the
// original image, using the same letterbox geometry that preprocessing applied.
func Detect(output *nn.Tensor, geom nn.LetterboxGeometry, params *nn.DetectionParams) (nn.DetectionSet, error) {
	candidates, err := nn.DecodeYOLOv8(output, params)
	if err != nil {
		return nil, err
	}
	kept := nn.NonMaxSuppression(candidates, params)
	return nn.ScaleDetections(kept, geom), nil
}

// Summary counts detections per class, in ascending class order, eg "1 cat, 2 dogs, "
func Summary(dets nn.DetectionSet, classes []string) string {
	counts := dets.ClassCounts()
	ids := make([]int, 0, len(counts))
	for c := range counts {
		ids = append(ids, c)
	}
	slices.Sort(ids)
	s := strings.Builder{}
	for _, c := range ids {
		n := counts[c]
		plural := ""
		if n > 1 {
			plural = "s"
		}
		fmt.Fprintf(&s, "%v %v%v, ", n, nn.ClassName(classes, c), plural)
	}
	return s.String()
}

// RawOutput lists each detection on its own line, lowest confidence first
func RawOutput(dets nn.DetectionSet, classes []string) string {
	s := strings.Builder{}
	for i := len(dets) - 1; i >= 0; i-- {
		d := dets[i]
		p1, p2 := d.Box.CornerStrings()
		fmt.Fprintf(&s, "name: %v, confidence: %.2f, start_point: %v, end_point:%v\n", d.Name(classes), d.Confidence, p1, p2)
	}
	return s.String()
}

// Format builds the final report
func Format(inferenceTime time.Duration, dets nn.DetectionSet, classes []string) []string {
	if len(dets) == 0 {
		return []string{NoDetections}
	}
	return []string{fmt.Sprintf("inference_time: %vs\nInference_summary: %v\nraw_output:\n%v",
		inferenceTime.Seconds(), Summary(dets, classes), RawOutput(dets, classes))}
}

// Postprocess interprets the final output of a benchmark run.
// 'input' is the tensor that was fed to the model, and is only used for its shape.
// Returns nil if the run produced no output.
func Postprocess(original image.Image, input *nn.Tensor, run *bench.Result, opts Options) (*Result, error) {
	if run == nil || len(run.Outputs) == 0 {
		return nil, nil
	}
	if opts.Params == nil {
		opts.Params = nn.NewDetectionParams()
	}
	inH, inW := input.ImageSize()
	geom := nn.NewLetterboxGeometry(original.Bounds().Dx(), original.Bounds().Dy(), inW, inH)

	dets, err := Detect(run.Outputs[0], geom, opts.Params)
	if err != nil {
		return nil, err
	}
	r := &Result{
		Detections: dets,
		Text:       Format(run.LastDuration, dets, opts.Classes),
	}
	if len(dets) != 0 {
		r.Summary = Summary(dets, opts.Classes)
		r.Raw = RawOutput(dets, opts.Classes)
		r.Annotated = annotate.Draw(original, dets, opts.Classes)
	}
	return r, nil
}
