// Package preprocess turns an image file into the input tensor of a YOLOv8 model
package preprocess

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmharper/cimg/v2"
	"github.com/cyclopcam/ovdetect/pkg/nn"
	"github.com/disintegration/imaging"
)

var ErrInvalidFormat = errors.New("Invalid image format.")

// Letterbox padding color
var PadColor = color.NRGBA{R: 114, G: 114, B: 114, A: 255}

var supportedExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
}

// Options controls the letterbox transform
type Options struct {
	Width  int  // Model input width
	Height int  // Model input height
	Stride int  // Model stride. Only used when Auto is true.
	Auto   bool // Pad only up to the next multiple of Stride, instead of up to Width x Height
}

func NewOptions() Options {
	return Options{
		Width:  640,
		Height: 640,
		Stride: 32,
	}
}

// Result of preprocessing one image
type Result struct {
	Original *image.NRGBA          // Decoded image, before letterboxing
	Input    *nn.Tensor            // [1, 3, H, W] RGB float32 in [0,1]
	Geometry nn.LetterboxGeometry // How Original maps into Input
}

func extension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// CheckFormat returns ErrInvalidFormat unless path is an existing file with a jpg, jpeg or png
// extension (case insensitive).
func CheckFormat(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w (%v)", ErrInvalidFormat, err)
	}
	if !supportedExtensions[extension(abs)] {
		return fmt.Errorf("%w (%v)", ErrInvalidFormat, filepath.Base(abs))
	}
	st, err := os.Stat(abs)
	if err != nil || !st.Mode().IsRegular() {
		return fmt.Errorf("%w (%v is not a file)", ErrInvalidFormat, abs)
	}
	return nil
}

// Load decodes an image file.
// JPEG goes through libjpeg-turbo (cimg), and PNG through the Go decoder.
func Load(path string) (*image.NRGBA, error) {
	switch extension(path) {
	case "jpg", "jpeg":
		img, err := cimg.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("Failed to decode %v: %w", path, err)
		}
		return rgbToNRGBA(img.ToRGB()), nil
	case "png":
		img, err := imaging.Open(path)
		if err != nil {
			return nil, fmt.Errorf("Failed to decode %v: %w", path, err)
		}
		return imaging.Clone(img), nil
	}
	return nil, ErrInvalidFormat
}

func rgbToNRGBA(src *cimg.Image) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, src.Width, src.Height))
	for y := 0; y < src.Height; y++ {
		srcLine := src.Pixels[y*src.Stride : y*src.Stride+src.Width*3]
		dstLine := dst.Pix[y*dst.Stride : y*dst.Stride+src.Width*4]
		for x := 0; x < src.Width; x++ {
			dstLine[x*4] = srcLine[x*3]
			dstLine[x*4+1] = srcLine[x*3+1]
			dstLine[x*4+2] = srcLine[x*3+2]
			dstLine[x*4+3] = 255
		}
	}
	return dst
}

// Letterbox resizes img to fit inside opts.Width x opts.Height, preserving aspect ratio, and
// pads the remainder with PadColor. The image is centered, with any odd pixel of padding
// going to the bottom/right.
func Letterbox(img image.Image, opts Options) (*image.NRGBA, nn.LetterboxGeometry) {
	srcW := img.Bounds().Dx()
	srcH := img.Bounds().Dy()
	r := math.Min(float64(opts.Height)/float64(srcH), float64(opts.Width)/float64(srcW))
	unpadW := int(math.RoundToEven(float64(srcW) * r))
	unpadH := int(math.RoundToEven(float64(srcH) * r))

	dw := opts.Width - unpadW
	dh := opts.Height - unpadH
	if opts.Auto && opts.Stride > 0 {
		dw %= opts.Stride
		dh %= opts.Stride
	}
	halfW := float64(dw) / 2
	halfH := float64(dh) / 2
	top := int(math.RoundToEven(halfH - 0.1))
	bottom := int(math.RoundToEven(halfH + 0.1))
	left := int(math.RoundToEven(halfW - 0.1))
	right := int(math.RoundToEven(halfW + 0.1))

	var resized *image.NRGBA
	if unpadW != srcW || unpadH != srcH {
		resized = imaging.Resize(img, unpadW, unpadH, imaging.Linear)
	} else {
		resized = imaging.Clone(img)
	}

	outW := unpadW + left + right
	outH := unpadH + top + bottom
	out := imaging.New(outW, outH, PadColor)
	out = imaging.Paste(out, resized, image.Pt(left, top))
	return out, nn.NewLetterboxGeometry(srcW, srcH, outW, outH)
}

// ToTensor converts an image into a [1, 3, H, W] float32 tensor.
// Channels are in RGB order, and values are scaled to [0,1].
func ToTensor(img *image.NRGBA) *nn.Tensor {
	b := img.Bounds()
	w := b.Dx()
	h := b.Dy()
	t := nn.NewEmptyTensor([]int64{1, 3, int64(h), int64(w)})
	plane := w * h
	r := t.Data[0:plane]
	g := t.Data[plane : 2*plane]
	bl := t.Data[2*plane : 3*plane]
	for y := 0; y < h; y++ {
		line := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < w; x++ {
			i := y*w + x
			r[i] = float32(line[x*4]) / 255
			g[i] = float32(line[x*4+1]) / 255
			bl[i] = float32(line[x*4+2]) / 255
		}
	}
	return t
}

// Preprocess validates, decodes and letterboxes the image at path.
func Preprocess(path string, opts Options) (*Result, error) {
	if err := CheckFormat(path); err != nil {
		return nil, err
	}
	original, err := Load(path)
	if err != nil {
		return nil, err
	}
	boxed, geom := Letterbox(original, opts)
	return &Result{
		Original: original,
		Input:    ToTensor(boxed),
		Geometry: geom,
	}, nil
}
