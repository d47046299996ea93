package nn

import (
	"math"

	"github.com/chewxy/math32"
)

// LetterboxGeometry describes how an image of size SrcWidth x SrcHeight was fitted
// into a DstWidth x DstHeight model input: scaled by Gain, then padded by PadX/PadY
// on the left/top.
type LetterboxGeometry struct {
	SrcWidth  int
	SrcHeight int
	DstWidth  int
	DstHeight int
	Gain      float32
	PadX      float32
	PadY      float32
}

// Compute the letterbox geometry from the two image sizes alone.
// This matches the padding that the letterbox transform applies, so boxes can be
// mapped back without carrying any state from the preprocessing step.
func NewLetterboxGeometry(srcWidth, srcHeight, dstWidth, dstHeight int) LetterboxGeometry {
	gain := math32.Min(float32(dstHeight)/float32(srcHeight), float32(dstWidth)/float32(srcWidth))
	padX := math.RoundToEven(float64((float32(dstWidth)-float32(srcWidth)*gain)/2 - 0.1))
	padY := math.RoundToEven(float64((float32(dstHeight)-float32(srcHeight)*gain)/2 - 0.1))
	return LetterboxGeometry{
		SrcWidth:  srcWidth,
		SrcHeight: srcHeight,
		DstWidth:  dstWidth,
		DstHeight: dstHeight,
		Gain:      gain,
		PadX:      float32(padX),
		PadY:      float32(padY),
	}
}

// Map a box from model input coordinates back to the source image, clipped to the source image
func (g LetterboxGeometry) ToSource(b Box) Box {
	out := Box{
		X1: (b.X1 - g.PadX) / g.Gain,
		Y1: (b.Y1 - g.PadY) / g.Gain,
		X2: (b.X2 - g.PadX) / g.Gain,
		Y2: (b.Y2 - g.PadY) / g.Gain,
	}
	return out.Clip(float32(g.SrcWidth), float32(g.SrcHeight))
}

// Map a box from the source image into model input coordinates
func (g LetterboxGeometry) ToModel(b Box) Box {
	return Box{
		X1: b.X1*g.Gain + g.PadX,
		Y1: b.Y1*g.Gain + g.PadY,
		X2: b.X2*g.Gain + g.PadX,
		Y2: b.Y2*g.Gain + g.PadY,
	}
}

// ScaleDetections converts NMS survivors into detections in source image pixels.
// Boxes are rounded to whole pixels.
func ScaleDetections(kept []Candidate, g LetterboxGeometry) DetectionSet {
	out := make(DetectionSet, 0, len(kept))
	for _, c := range kept {
		out = append(out, ObjectDetection{
			Class:      c.Class,
			Confidence: c.Confidence,
			Box:        g.ToSource(c.Box).Round(),
		})
	}
	return out
}
