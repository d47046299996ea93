// Package annotate draws detections onto images, and shows or saves the result
package annotate

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/cyclopcam/ovdetect/pkg/nn"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font/gofont/goregular"
)

var font *truetype.Font

func init() {
	var err error
	font, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// Box colors, indexed by class modulo the palette size
var paletteHex = []string{
	"#FF3838", "#FF9D97", "#FF701F", "#FFB21D", "#CFD231", "#48F90A", "#92CC17", "#3DDB86", "#1A9334", "#00D4BB",
	"#2C99A8", "#00C2FF", "#344593", "#6473FF", "#0018EC", "#8438FF", "#520085", "#CB38FF", "#FF95C8", "#FF37C7",
}

var palette []color.Color

func init() {
	for _, h := range paletteHex {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(err)
		}
		palette = append(palette, c.Clamped())
	}
}

// ClassColor returns the box color for a class
func ClassColor(class int) color.Color {
	if class < 0 {
		class = -class
	}
	return palette[class%len(palette)]
}

// LineWidth returns the box stroke width for an image of the given size
func LineWidth(width, height int) int {
	// 3 is the channel count
	return max(int(math.RoundToEven(float64(width+height+3)/2*0.003)), 2)
}

// Label text drawn above a box, eg "dog 0.87"
func Label(d nn.ObjectDetection, classes []string) string {
	return fmt.Sprintf("%v %.2f", d.Name(classes), d.Confidence)
}

// Draw returns a copy of img with a labelled box for each detection.
// img itself is not modified.
func Draw(img image.Image, dets nn.DetectionSet, classes []string) image.Image {
	dc := gg.NewContextForImage(img)
	lw := LineWidth(dc.Width(), dc.Height())
	fontSize := 22 * float64(lw) / 3
	dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: fontSize}))

	// Lowest confidence first, so that the strongest detections end up on top
	for i := len(dets) - 1; i >= 0; i-- {
		d := dets[i]
		c := ClassColor(d.Class)
		x1 := float64(d.Box.X)
		y1 := float64(d.Box.Y)

		dc.SetColor(c)
		dc.SetLineWidth(float64(lw))
		dc.DrawRectangle(x1, y1, float64(d.Box.Width), float64(d.Box.Height))
		dc.Stroke()

		label := Label(d, classes)
		tw, th := dc.MeasureString(label)
		pad := 3.0
		// Put the label above the box if it fits, otherwise inside it
		outside := y1-th >= pad
		ly := y1 + th + pad
		if outside {
			ly = y1 - th - pad
		}
		dc.SetColor(c)
		dc.DrawRectangle(x1, math.Min(y1, ly), tw+2*pad, math.Abs(ly-y1))
		dc.Fill()

		dc.SetColor(color.White)
		baseline := y1 + th + pad - 1
		if outside {
			baseline = y1 - pad + 1
		}
		dc.DrawString(label, x1+pad, baseline)
	}
	return dc.Image()
}
