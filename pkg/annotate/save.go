package annotate

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/bmharper/cimg/v2"
	"github.com/disintegration/imaging"
)

const JPEGQuality = 95

// Save writes img to path. The format is chosen from the extension: jpg/jpeg or png.
func Save(img image.Image, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return toCImageRGB(img).WriteJPEG(path, cimg.MakeCompressParams(cimg.Sampling420, JPEGQuality, 0), 0644)
	case ".png":
		return imaging.Save(img, path)
	}
	return fmt.Errorf("Unsupported output image format '%v'. Use .jpg or .png", filepath.Ext(path))
}

func toCImageRGB(src image.Image) *cimg.Image {
	n := imaging.Clone(src)
	w := n.Bounds().Dx()
	h := n.Bounds().Dy()
	dst := cimg.NewImage(w, h, cimg.PixelFormatRGB)
	for y := 0; y < h; y++ {
		srcLine := n.Pix[y*n.Stride : y*n.Stride+w*4]
		dstLine := dst.Pixels[y*dst.Stride : y*dst.Stride+w*3]
		for x := 0; x < w; x++ {
			dstLine[x*3] = srcLine[x*4]
			dstLine[x*3+1] = srcLine[x*4+1]
			dstLine[x*3+2] = srcLine[x*4+2]
		}
	}
	return dst
}
