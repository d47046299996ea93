package nn

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"
)

// Rect is an integer box in image pixel coordinates
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Make a Rect from two corners
func RectFromCorners(x1, y1, x2, y2 int) Rect {
	return Rect{
		X:      x1,
		Y:      y1,
		Width:  x2 - x1,
		Height: y2 - y1,
	}
}

func (r Rect) X2() int {
	return r.X + r.Width
}

func (r Rect) Y2() int {
	return r.Y + r.Height
}

func (r Rect) Area() int {
	return r.Width * r.Height
}

func (r Rect) Intersection(b Rect) Rect {
	x1 := max(r.X, b.X)
	y1 := max(r.Y, b.Y)
	x2 := min(r.X2(), b.X2())
	y2 := min(r.Y2(), b.Y2())
	return Rect{
		X:      x1,
		Y:      y1,
		Width:  max(0, x2-x1),
		Height: max(0, y2-y1),
	}
}

// Intersection over Union
func (r Rect) IOU(b Rect) float32 {
	intersection := r.Intersection(b)
	union := r.Area() + b.Area() - intersection.Area()
	if union <= 0 {
		return 0
	}
	return float32(intersection.Area()) / float32(union)
}

// The two corners, formatted as "(x1, y1)" and "(x2, y2)"
func (r Rect) CornerStrings() (string, string) {
	return fmt.Sprintf("(%v, %v)", r.X, r.Y), fmt.Sprintf("(%v, %v)", r.X2(), r.Y2())
}

// Box is a floating point box, stored as two corners.
// The NN produces these, and we only convert to Rect once the boxes have been
// scaled back into the original image.
type Box struct {
	X1 float32
	Y1 float32
	X2 float32
	Y2 float32
}

// Convert a center/size box (the YOLO output layout) into corners
func BoxFromCenter(cx, cy, w, h float32) Box {
	return Box{
		X1: cx - w/2,
		Y1: cy - h/2,
		X2: cx + w/2,
		Y2: cy + h/2,
	}
}

func (b Box) Width() float32 {
	return b.X2 - b.X1
}

func (b Box) Height() float32 {
	return b.Y2 - b.Y1
}

func (b Box) Area() float32 {
	return math32.Max(0, b.Width()) * math32.Max(0, b.Height())
}

func (b Box) Offset(dx, dy float32) Box {
	return Box{X1: b.X1 + dx, Y1: b.Y1 + dy, X2: b.X2 + dx, Y2: b.Y2 + dy}
}

// Intersection over Union
func (b Box) IOU(o Box) float32 {
	iw := math32.Min(b.X2, o.X2) - math32.Max(b.X1, o.X1)
	ih := math32.Min(b.Y2, o.Y2) - math32.Max(b.Y1, o.Y1)
	if iw <= 0 || ih <= 0 {
		return 0
	}
	inter := iw * ih
	union := b.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// Clip the box to [0,width] x [0,height]
func (b Box) Clip(width, height float32) Box {
	return Box{
		X1: clampf(b.X1, 0, width),
		Y1: clampf(b.Y1, 0, height),
		X2: clampf(b.X2, 0, width),
		Y2: clampf(b.Y2, 0, height),
	}
}

// Round to the nearest pixel (half to even), and convert to a Rect
func (b Box) Round() Rect {
	return RectFromCorners(
		roundEven(b.X1),
		roundEven(b.Y1),
		roundEven(b.X2),
		roundEven(b.Y2),
	)
}

func roundEven(v float32) int {
	return int(math.RoundToEven(float64(v)))
}

func clampf(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
