// Package pipeline runs one detection: download, preprocess, benchmark, postprocess, report
package pipeline

import (
	"fmt"
	"io"
	"os"

	"github.com/cyclopcam/logs"
	"github.com/cyclopcam/ovdetect/pkg/acquire"
	"github.com/cyclopcam/ovdetect/pkg/annotate"
	"github.com/cyclopcam/ovdetect/pkg/bench"
	"github.com/cyclopcam/ovdetect/pkg/ortsession"
	"github.com/cyclopcam/ovdetect/pkg/postprocess"
	"github.com/cyclopcam/ovdetect/pkg/preprocess"
)

// Session is a loaded model
type Session interface {
	bench.Predictor
	Close() error
}

// SessionFactory creates a session for the model on the given backend
type SessionFactory func(log logs.Log, cfg *Config, backend ortsession.Backend) (Session, error)

// NewORTSession loads the onnxruntime library if necessary, and creates a real session
func NewORTSession(log logs.Log, cfg *Config, backend ortsession.Backend) (Session, error) {
	if err := ortsession.InitializeRuntime(cfg.ORTLibrary); err != nil {
		return nil, err
	}
	s, err := ortsession.New(log, cfg.ModelPath, backend, cfg.Session)
	if err != nil {
		return nil, err
	}
	return s, nil
}

type Pipeline struct {
	Log        logs.Log
	Config     *Config
	NewSession SessionFactory
	Viewer     annotate.Viewer // Used when Config.ShowImage is true
	Stdout     io.Writer       // The final report goes here
}

func New(log logs.Log, cfg *Config) *Pipeline {
	return &Pipeline{
		Log:        log,
		Config:     cfg,
		NewSession: NewORTSession,
		Viewer:     annotate.NewSystemViewer(log),
		Stdout:     os.Stdout,
	}
}

// Report is everything produced by a run
type Report struct {
	ImagePath string
	Image     *preprocess.Result
	Bench     *bench.Result
	Post      *postprocess.Result // nil if inference produced no output
}

// Run executes the whole pipeline. The first failure aborts the run.
func (p *Pipeline) Run() (*Report, error) {
	cfg := p.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	backend, _ := ortsession.ParseBackend(cfg.Device)

	report := &Report{}
	var err error
	report.ImagePath, err = acquire.Download(p.Log, cfg.HTTPClient, cfg.ImageURL, cfg.WorkDir)
	if err != nil {
		return nil, err
	}

	report.Image, err = preprocess.Preprocess(report.ImagePath, cfg.Preprocess)
	if err != nil {
		p.Log.Errorf("%v", preprocess.ErrInvalidFormat)
		return nil, err
	}

	p.Log.Infof("Starting ONNX Runtime Inference with %v.", backend.Description())
	session, err := p.NewSession(p.Log, cfg, backend)
	if err != nil {
		return nil, fmt.Errorf("Failed to create session: %w", err)
	}
	defer session.Close()

	report.Bench, err = bench.Run(session, report.Image.Input, cfg.NIter, cfg.WarmupIter)
	if err != nil {
		return nil, err
	}
	p.Log.Infof("%v", report.Bench.Report())

	report.Post, err = postprocess.Postprocess(report.Image.Original, report.Image.Input, report.Bench, cfg.Postprocess)
	if err != nil {
		return nil, err
	}
	if report.Post == nil {
		return report, nil
	}
	for _, line := range report.Post.Text {
		fmt.Fprintln(p.Stdout, line)
	}

	if cfg.PrintStats {
		if summary, err := report.Bench.Timing.Summarize(); err == nil {
			fmt.Fprintln(p.Stdout, summary.Render(fmt.Sprintf("Inference timing (%v)", backend)))
		}
	}

	if report.Post.Annotated != nil {
		if cfg.OutputImage != "" {
			if err := annotate.Save(report.Post.Annotated, cfg.OutputImage); err != nil {
				return nil, err
			}
			p.Log.Infof("Annotated image saved to %v", cfg.OutputImage)
		}
		if cfg.ShowImage && p.Viewer != nil {
			if err := p.Viewer.Show(report.Post.Annotated); err != nil {
				p.Log.Warnf("Failed to show image: %v", err)
			}
		}
	}
	return report, nil
}
