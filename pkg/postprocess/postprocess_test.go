package postprocess

import (
	"image/color"
	"testing"
	"time"

	"github.com/cyclopcam/ovdetect/pkg/bench"
	"github.com/cyclopcam/ovdetect/pkg/nn"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func TestSummary(t *testing.T) {
	dets := nn.DetectionSet{
		{Class: nn.COCODog, Confidence: 0.9},
		{Class: nn.COCOCat, Confidence: 0.8},
		{Class: nn.COCODog, Confidence: 0.7},
		{Class: nn.COCOPerson, Confidence: 0.6},
	}
	require.Equal(t, "1 person, 1 cat, 2 dogs, ", Summary(dets, nn.COCOClasses))
	require.Equal(t, "", Summary(nil, nn.COCOClasses))
}

func TestRawOutput(t *testing.T) {
	id := int64(4)
	dets := nn.DetectionSet{
		{Class: nn.COCOCat, Confidence: 0.876, Box: nn.Rect{X: 10, Y: 20, Width: 30, Height: 40}},
		{Class: nn.COCODog, Confidence: 0.3, Box: nn.Rect{X: 1, Y: 2, Width: 3, Height: 4}, TrackID: &id},
	}
	expect := "name: id:4 dog, confidence: 0.30, start_point: (1, 2), end_point:(4, 6)\n" +
		"name: cat, confidence: 0.88, start_point: (10, 20), end_point:(40, 60)\n"
	require.Equal(t, expect, RawOutput(dets, nn.COCOClasses))
}

func TestFormat(t *testing.T) {
	require.Equal(t, []string{"No detection found."}, Format(time.Second, nil, nn.COCOClasses))

	dets := nn.DetectionSet{{Class: nn.COCOCat, Confidence: 0.5, Box: nn.Rect{X: 0, Y: 0, Width: 2, Height: 2}}}
	out := Format(25*time.Millisecond, dets, nn.COCOClasses)
	require.Equal(t, 1, len(out))
	require.Equal(t, "inference_time: 0.025s\nInference_summary: 1 cat, \nraw_output:\nname: cat, confidence: 0.50, start_point: (0, 0), end_point:(2, 2)\n", out[0])
}

// Build a YOLOv8 output tensor with 80 classes, from (cx, cy, w, h, class, score) tuples
func makeOutput(anchors [][6]float32) *nn.Tensor {
	rows := 84
	n := len(anchors)
	t := nn.NewEmptyTensor([]int64{1, int64(rows), int64(n)})
	for i, a := range anchors {
		t.Data[0*n+i] = a[0]
		t.Data[1*n+i] = a[1]
		t.Data[2*n+i] = a[2]
		t.Data[3*n+i] = a[3]
		t.Data[(4+int(a[4]))*n+i] = a[5]
	}
	return t
}

func TestPostprocess(t *testing.T) {
	original := imaging.New(1280, 720, color.NRGBA{A: 255})
	input := nn.NewEmptyTensor([]int64{1, 3, 640, 640})
	out := makeOutput([][6]float32{
		{100, 300, 40, 40, float32(nn.COCOCat), 0.9},
		{102, 301, 40, 40, float32(nn.COCOCat), 0.8}, // suppressed by the first
		{400, 300, 20, 20, float32(nn.COCODog), 0.6},
		{500, 300, 20, 20, float32(nn.COCODog), 0.1}, // below threshold
	})
	run := &bench.Result{Outputs: []*nn.Tensor{out}, LastDuration: 10 * time.Millisecond, Average: 12 * time.Millisecond}

	r, err := Postprocess(original, input, run, NewOptions())
	require.NoError(t, err)
	require.Equal(t, 2, len(r.Detections))
	require.Equal(t, nn.COCOCat, r.Detections[0].Class)
	// gain 0.5, vertical pad 140
	require.Equal(t, nn.Rect{X: 160, Y: 280, Width: 80, Height: 80}, r.Detections[0].Box)
	require.Equal(t, "1 cat, 1 dog, ", r.Summary)
	require.NotNil(t, r.Annotated)
	require.Contains(t, r.Text[0], "inference_time: 0.01s\n")

	// Determinism
	r2, err := Postprocess(original, input, run, NewOptions())
	require.NoError(t, err)
	require.Equal(t, r.Detections, r2.Detections)
	require.Equal(t, r.Text, r2.Text)
}

func TestPostprocessEmpty(t *testing.T) {
	original := imaging.New(64, 64, color.NRGBA{A: 255})
	input := nn.NewEmptyTensor([]int64{1, 3, 640, 640})

	r, err := Postprocess(original, input, nil, NewOptions())
	require.NoError(t, err)
	require.Nil(t, r)

	run := &bench.Result{Outputs: []*nn.Tensor{makeOutput([][6]float32{{10, 10, 5, 5, 0, 0.2}})}}
	r, err = Postprocess(original, input, run, NewOptions())
	require.NoError(t, err)
	require.Equal(t, []string{NoDetections}, r.Text)
	require.Nil(t, r.Annotated)
}
