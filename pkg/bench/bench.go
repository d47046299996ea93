// Package bench runs a model repeatedly on the same input and measures how long it takes
package bench

import (
	"errors"
	"fmt"
	"time"

	"github.com/cyclopcam/ovdetect/pkg/nn"
	"github.com/cyclopcam/ovdetect/pkg/perfstats"
)

var ErrInvalidIterations = errors.New("Warmup iterations are more than no of iterations(niter)!!")

// Predictor is anything that can run a model on an input tensor
type Predictor interface {
	Run(input *nn.Tensor) ([]*nn.Tensor, error)
}

// Result of a benchmark run
type Result struct {
	Outputs      []*nn.Tensor  // Outputs of the final iteration
	LastDuration time.Duration // Duration of the final iteration
	Average      time.Duration // Mean duration of the non-warmup iterations
	Timing       perfstats.TimeSamples
}

// Number of iterations that contributed to Average
func (r *Result) Samples() int {
	return len(r.Timing.All)
}

// Report formats the average inference time, in seconds
func (r *Result) Report() string {
	return fmt.Sprintf("Average inference time is for %v iterations is %v", r.Samples(), r.Average.Seconds())
}

// Validate returns ErrInvalidIterations unless niter > warmup >= 0
func Validate(niter, warmup int) error {
	if warmup < 0 || warmup >= niter {
		return ErrInvalidIterations
	}
	return nil
}

// Run executes p niter times on the same input. The first 'warmup' iterations are excluded
// from the timing statistics. The first error aborts the run.
func Run(p Predictor, input *nn.Tensor, niter, warmup int) (*Result, error) {
	if err := Validate(niter, warmup); err != nil {
		return nil, err
	}
	r := &Result{}
	for i := 0; i < niter; i++ {
		start := time.Now()
		out, err := p.Run(input)
		elapsed := time.Since(start)
		if err != nil {
			return nil, fmt.Errorf("Iteration %v: %w", i, err)
		}
		if i >= warmup {
			r.Timing.AddSample(elapsed)
		}
		r.Outputs = out
		r.LastDuration = elapsed
	}
	r.Average = r.Timing.Average()
	return r, nil
}
