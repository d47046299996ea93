package annotate

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/cyclopcam/logs"
	"github.com/pkg/browser"
)

// Viewer shows an image to the user, and blocks until they're done looking at it
type Viewer interface {
	Show(img image.Image) error
}

// SystemViewer opens the image with the system's default viewer, and waits for Enter on Input
type SystemViewer struct {
	Log   logs.Log
	Input io.Reader // Defaults to os.Stdin
	Dir   string    // Where to write the temporary image. Defaults to os.TempDir()

	// Opens a file for viewing. Defaults to browser.OpenFile
	Open func(path string) error
}

func NewSystemViewer(log logs.Log) *SystemViewer {
	return &SystemViewer{
		Log: log,
	}
}

func (v *SystemViewer) Show(img image.Image) error {
	dir := v.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	open := v.Open
	if open == nil {
		open = browser.OpenFile
	}
	input := v.Input
	if input == nil {
		input = os.Stdin
	}

	f, err := os.CreateTemp(dir, "ovdetect-*.png")
	if err != nil {
		return err
	}
	fn := f.Name()
	f.Close()
	defer os.Remove(fn)

	if err := Save(img, fn); err != nil {
		return err
	}
	if err := open(fn); err != nil {
		return fmt.Errorf("Failed to open %v: %w", filepath.Base(fn), err)
	}
	v.Log.Infof("Showing %v. Press Enter to continue", fn)
	_, err = bufio.NewReader(input).ReadString('\n')
	if err == io.EOF {
		return nil
	}
	return err
}
