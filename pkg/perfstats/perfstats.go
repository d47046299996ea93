package perfstats

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
)

// Accumulate samples of how long something took
type TimeAccumulator struct {
	Samples int64
	Total   time.Duration
}

func (a *TimeAccumulator) Reset() {
	a.Samples = 0
	a.Total = 0
}

func (a *TimeAccumulator) AddSample(v time.Duration) {
	a.Samples++
	a.Total += v
}

func (a *TimeAccumulator) Average() time.Duration {
	if a.Samples == 0 {
		return 0
	}
	return time.Duration(a.Total.Nanoseconds() / a.Samples)
}

// TimeSamples keeps every sample, in addition to the running total, so that we can
// compute percentiles afterwards.
type TimeSamples struct {
	TimeAccumulator
	All []time.Duration
}

func (s *TimeSamples) Reset() {
	s.TimeAccumulator.Reset()
	s.All = s.All[:0]
}

func (s *TimeSamples) AddSample(v time.Duration) {
	s.TimeAccumulator.AddSample(v)
	s.All = append(s.All, v)
}

// Summary of a set of timing samples
type Summary struct {
	Count  int
	Mean   time.Duration
	Median time.Duration
	P90    time.Duration
	StdDev time.Duration
	Min    time.Duration
	Max    time.Duration
}

// Summarize computes descriptive statistics over all samples.
// Returns an error if there are no samples.
func (s *TimeSamples) Summarize() (Summary, error) {
	if len(s.All) == 0 {
		return Summary{}, fmt.Errorf("No timing samples")
	}
	data := make(stats.Float64Data, len(s.All))
	for i, v := range s.All {
		data[i] = float64(v)
	}

	var firstErr error
	get := func(v float64, err error) time.Duration {
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return time.Duration(v)
	}

	sum := Summary{
		Count:  len(s.All),
		Mean:   get(stats.Mean(data)),
		Median: get(stats.Median(data)),
		P90:    get(stats.Percentile(data, 90)),
		StdDev: get(stats.StandardDeviation(data)),
		Min:    get(stats.Min(data)),
		Max:    get(stats.Max(data)),
	}
	return sum, firstErr
}

// Render the summary as a text table, with durations in milliseconds
func (s Summary) Render(title string) string {
	ms := func(d time.Duration) string {
		return fmt.Sprintf("%.3f", float64(d)/float64(time.Millisecond))
	}
	t := table.NewWriter()
	if title != "" {
		t.SetTitle(title)
	}
	t.AppendHeader(table.Row{"Samples", "Mean (ms)", "Median (ms)", "P90 (ms)", "StdDev (ms)", "Min (ms)", "Max (ms)"})
	t.AppendRow(table.Row{s.Count, ms(s.Mean), ms(s.Median), ms(s.P90), ms(s.StdDev), ms(s.Min), ms(s.Max)})
	return t.Render()
}
