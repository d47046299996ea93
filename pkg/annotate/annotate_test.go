package annotate

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cyclopcam/logs"
	"github.com/cyclopcam/ovdetect/pkg/nn"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

var gray = color.NRGBA{R: 50, G: 50, B: 50, A: 255}

func TestLineWidth(t *testing.T) {
	require.Equal(t, 2, LineWidth(640, 480))
	require.Equal(t, 3, LineWidth(1280, 720))
	require.Equal(t, 6, LineWidth(1920, 1920))
}

func TestClassColor(t *testing.T) {
	r, g, b, _ := ClassColor(0).RGBA()
	require.Equal(t, uint32(0xffff), r)
	require.Equal(t, uint32(0x3838), g)
	require.Equal(t, uint32(0x3838), b)
	require.Equal(t, ClassColor(1), ClassColor(21))
}

func TestDrawDoesNotModifyOriginal(t *testing.T) {
	img := imaging.New(200, 150, gray)
	dets := nn.DetectionSet{
		{Class: nn.COCOCat, Confidence: 0.9, Box: nn.Rect{X: 40, Y: 50, Width: 100, Height: 60}},
	}
	out := Draw(img, dets, nn.COCOClasses)
	require.Equal(t, gray, img.NRGBAAt(40, 50))
	require.Equal(t, 200, out.Bounds().Dx())
	require.Equal(t, 150, out.Bounds().Dy())

	// Box edge is drawn in the class color
	r, g, b, _ := out.At(90, 50).RGBA()
	er, eg, eb, _ := ClassColor(nn.COCOCat).RGBA()
	require.Equal(t, er>>8, r>>8)
	require.Equal(t, eg>>8, g>>8)
	require.Equal(t, eb>>8, b>>8)
	// Far away from the box, nothing changed
	r, _, _, _ = out.At(195, 145).RGBA()
	require.Equal(t, uint32(50), r>>8)
}

func TestSave(t *testing.T) {
	img := imaging.New(32, 16, gray)
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.png"} {
		fn := filepath.Join(dir, name)
		require.NoError(t, Save(img, fn))
		back, err := imaging.Open(fn)
		require.NoError(t, err)
		require.Equal(t, image.Rect(0, 0, 32, 16), back.Bounds())
	}
	require.Error(t, Save(img, filepath.Join(dir, "c.bmp")))
}

func TestSystemViewer(t *testing.T) {
	opened := ""
	v := NewSystemViewer(logs.NewTestingLog(t))
	v.Dir = t.TempDir()
	v.Input = strings.NewReader("\n")
	v.Open = func(path string) error {
		opened = path
		_, err := os.Stat(path)
		return err
	}
	require.NoError(t, v.Show(imaging.New(8, 8, gray)))
	require.NotEqual(t, "", opened)
	// temp file is removed once the user is done
	_, err := os.Stat(opened)
	require.True(t, os.IsNotExist(err))
}
