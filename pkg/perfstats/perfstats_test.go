package perfstats

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimeAccumulator(t *testing.T) {
	a := TimeAccumulator{}
	require.Equal(t, time.Duration(0), a.Average())
	a.AddSample(10 * time.Millisecond)
	a.AddSample(20 * time.Millisecond)
	require.Equal(t, int64(2), a.Samples)
	require.Equal(t, 15*time.Millisecond, a.Average())
	a.Reset()
	require.Equal(t, int64(0), a.Samples)
}

func TestSummarize(t *testing.T) {
	s := TimeSamples{}
	_, err := s.Summarize()
	require.Error(t, err)

	for _, ms := range []int{5, 1, 3, 2, 4} {
		s.AddSample(time.Duration(ms) * time.Millisecond)
	}
	require.Equal(t, int64(5), s.Samples)
	require.Equal(t, 3*time.Millisecond, s.Average())

	sum, err := s.Summarize()
	require.NoError(t, err)
	require.Equal(t, 5, sum.Count)
	require.Equal(t, 3*time.Millisecond, sum.Mean)
	require.Equal(t, 3*time.Millisecond, sum.Median)
	require.Equal(t, 1*time.Millisecond, sum.Min)
	require.Equal(t, 5*time.Millisecond, sum.Max)
	require.Greater(t, sum.StdDev, time.Duration(0))

	txt := sum.Render("Inference")
	require.True(t, strings.Contains(strings.ToUpper(txt), "MEDIAN (MS)"))
	require.True(t, strings.Contains(txt, "3.000"))

	s.Reset()
	require.Equal(t, 0, len(s.All))
}
