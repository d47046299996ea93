package pipeline

import (
	"errors"
	"net/http"

	"github.com/cyclopcam/ovdetect/pkg/bench"
	"github.com/cyclopcam/ovdetect/pkg/ortsession"
	"github.com/cyclopcam/ovdetect/pkg/postprocess"
	"github.com/cyclopcam/ovdetect/pkg/preprocess"
)

const DefaultImageURL = "https://storage.openvinotoolkit.org/data/test_data/images/cat.jpg"

// Config holds everything that a detection run needs
type Config struct {
	Device      string // "OVEP" or "CPUEP"
	ModelPath   string
	ImageURL    string
	NIter       int // Total number of inference iterations
	WarmupIter  int // Iterations excluded from the timing average
	ShowImage   bool
	OutputImage string // If not empty, save the annotated image here
	PrintStats  bool   // Print a table of timing statistics
	WorkDir     string // Where the image is downloaded to
	ORTLibrary  string // Path to the onnxruntime shared library

	HTTPClient  *http.Client // nil = http.DefaultClient
	Session     ortsession.Options
	Preprocess  preprocess.Options
	Postprocess postprocess.Options
}

func NewConfig() *Config {
	return &Config{
		Device:      string(ortsession.BackendOpenVINO),
		ImageURL:    DefaultImageURL,
		NIter:       30,
		WarmupIter:  10,
		WorkDir:     ".",
		ORTLibrary:  ortsession.DefaultLibraryPath(),
		Session:     ortsession.NewOptions(),
		Preprocess:  preprocess.NewOptions(),
		Postprocess: postprocess.NewOptions(),
	}
}

// Validate checks the parts of the config that would otherwise only fail after the image
// has been downloaded, or the model has been loaded.
func (c *Config) Validate() error {
	if err := bench.Validate(c.NIter, c.WarmupIter); err != nil {
		return err
	}
	if _, err := ortsession.ParseBackend(c.Device); err != nil {
		return err
	}
	if c.ModelPath == "" {
		return errors.New("Model path is required")
	}
	if c.ImageURL == "" {
		return errors.New("Image URL is required")
	}
	return nil
}
