package lag

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const timingLog = `
Dispatch Timing: Audio=1.000s, Predicted=0.995s, Diff=0.005s, Beat=1
Cursor Dispatch: Beat 1 dispatched with 12.5ms delay
Dispatch Timing: Audio=1.500s, Predicted=1.530s, Diff=-0.030s, Beat=2
Cursor Dispatch: Beat 2 dispatched with 50ms delay
Dispatch Timing: Audio=2.000s, Predicted=2.010s, Diff=-0.010s, Beat=3
Cursor Dispatch: Beat 3 dispatched with 100ms delay
Cursor Dispatch: Beat 3.5 dispatched with 240ms delay
`

func TestParseTiming(t *testing.T) {
	entries, dispatches, err := ParseTiming(strings.NewReader(timingLog))
	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(entries, 3)
	assert.Equal(TimingEntry{Audio: 1.5, Predicted: 1.53, Diff: -0.03, Beat: 2}, entries[1])
	assert.Equal([]DelayedDispatch{{1, 12.5}, {2, 50}, {3, 100}, {3.5, 240}}, dispatches)
}

func TestDelayBuckets(t *testing.T) {
	cases := []struct {
		delay float64
		fast  int
		slow  int
		late  int
	}{
		{0, 1, 0, 0},
		{49.9, 1, 0, 0},
		{50, 0, 1, 0},
		{99.9, 0, 1, 0},
		{100, 0, 0, 1},
		{1000, 0, 0, 1},
	}

	for _, c := range cases {
		r := BuildTiming(nil, []DelayedDispatch{{Beat: 1, Delay: c.delay}})
		assert.Equal(t, []int{c.fast, c.slow, c.late}, []int{r.Fast, r.Slow, r.Late}, "delay %v", c.delay)
	}
}

func TestBuildTiming(t *testing.T) {
	report, err := AnalyzeTiming(strings.NewReader(timingLog))
	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(1, report.Fast)
	assert.Equal(1, report.Slow)
	assert.Equal(2, report.Late)
	assert.Equal(12.5, report.Delay.Min)
	assert.Equal(240.0, report.Delay.Max)
	assert.Equal(75.0, report.Delay.Median)

	// 5ms and -10ms are within 20ms of the prediction, -30ms is not
	assert.Equal(2, report.InSync)
	assert.InDelta(-11.667, report.DiffMs.Mean, 0.001)
	assert.InDelta(-10, report.DiffMs.Median, 0.0001)
}

func TestWriteTiming(t *testing.T) {
	report, _ := AnalyzeTiming(strings.NewReader(timingLog))
	var buf bytes.Buffer
	WriteTiming(&buf, report)

	out := buf.String()
	assert := assert.New(t)
	assert.Contains(out, "Timing Analysis Entries: 3")
	assert.Contains(out, "Actual Cursor Dispatches: 4")
	assert.Contains(out, "(<50ms): 1/4 (25.0%)")
	assert.Contains(out, "(>100ms): 2/4 (50.0%)")
	assert.Contains(out, "Well-Synchronized (<20ms): 2/3 (66.7%)")
	assert.Contains(out, "Beat 3.5: 240ms delay")
}

func TestWriteTimingWithoutDispatches(t *testing.T) {
	var buf bytes.Buffer
	WriteTiming(&buf, BuildTiming([]TimingEntry{{Beat: 1}}, nil))
	assert.Contains(t, buf.String(), "No cursor dispatches found!")
}
