package lag

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const stageLog = `
[TIMING] Dispatch Start: Beat 1, Audio time=0.500s, Predicted=0.500s, Delay=0.2ms, Timestamp=1000.0ms
[TIMING] Dispatch Received: Beat 1, Receive time=1004.0ms, Dispatch lag=4.0ms
[TIMING] Move Cursor Start: Beat 1, Start time=1005.0ms
[TIMING] OSMD Render (STEP): Beat 0.5, Render duration=3.0ms
[TIMING] OSMD Render (STEP): Beat 1, Render duration=5.0ms
[TIMING] OSMD Render Complete (FINAL): Beat 1, Render duration=5.0ms, Total OSMD lag=12.0ms
[TIMING] Dispatch Start: Beat 2, Audio time=1.000s, Predicted=0.998s, Delay=2.0ms, Timestamp=1500.0ms
[TIMING] Dispatch Received: Beat 2, Receive time=1520.0ms, Dispatch lag=20.0ms
[TIMING] Move Cursor Start: Beat 2, Start time=1521.0ms
[TIMING] OSMD Render (STEP): Beat 2, Render duration=14.0ms
[TIMING] OSMD Render Complete (FINAL): Beat 2, Render duration=14.0ms, Total OSMD lag=8.0ms
[TIMING] Dispatch Received: Beat 3, Receive time=1990.0ms, Dispatch lag=N/A
unrelated noise
`

func TestParseStages(t *testing.T) {
	stages, err := ParseStages(strings.NewReader(stageLog))
	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal([]StageDispatch{
		{Beat: 1, AudioTime: 0.5, Predicted: 0.5, Delay: 0.2, Timestamp: 1000},
		{Beat: 2, AudioTime: 1, Predicted: 0.998, Delay: 2, Timestamp: 1500},
	}, stages.Dispatches)
	assert.Len(stages.Receives, 2)
	assert.Equal(StageReceive{Beat: 2, ReceiveTime: 1520, DispatchLag: 20, HasLag: true}, stages.Receives[1])
	assert.Len(stages.MoveStarts, 2)
	assert.Len(stages.Steps, 3)
	assert.Equal(FinalRender{Beat: 1, Duration: 5, OSMDLag: 12, HasLag: true}, stages.Finals[0])
}

func TestParseStagesNotApplicableLag(t *testing.T) {
	input := "[TIMING] Dispatch Received: Beat 3, Receive time=10.0ms, Dispatch lag=N/Ams\n" +
		"[TIMING] OSMD Render Complete (FINAL): Beat 3, Render duration=2.0ms, Total OSMD lag=N/Ams\n"
	stages, err := ParseStages(strings.NewReader(input))
	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal([]StageReceive{{Beat: 3, ReceiveTime: 10}}, stages.Receives)
	assert.Equal([]FinalRender{{Beat: 3, Duration: 2}}, stages.Finals)
}

func TestBuildStages(t *testing.T) {
	report, err := AnalyzeStages(strings.NewReader(stageLog))
	assert := assert.New(t)
	assert.NoError(err)

	assert.Equal(2, report.DispatchDelay.Count)
	assert.InDelta(1.1, report.DispatchDelay.Mean, 0.0001)
	assert.Equal(2.0, report.DispatchDelay.Max)

	assert.Equal(Stats{Count: 2, Mean: 12, Median: 12, Min: 4, Max: 20, StdDev: report.DispatchLag.StdDev}, report.DispatchLag)
	assert.InDelta(11.3137, report.DispatchLag.StdDev, 0.001)

	assert.Equal(3, report.StepRender.Count)
	assert.Equal(14.0, report.StepRender.Max)
	assert.Equal(5.0, report.StepRender.Median)

	assert.Equal(10.0, report.OSMDLag.Mean)

	assert.True(report.HasTotal)
	assert.Equal(22.0, report.Total.Mean)
	assert.InDelta(54.545, report.DispatchShare, 0.001)
	assert.Equal(FocusDispatch, report.Focus)

	assert.Equal(map[float64]int{1: 2, 2: 1}, report.RendersPerBeat)
	assert.Equal(1.5, report.RenderCounts.Mean)
}

func TestStageFocus(t *testing.T) {
	cases := []struct {
		name        string
		dispatchLag float64
		osmdLag     float64
		focus       Focus
	}{
		{"dispatch dominates", 30, 10, FocusDispatch},
		{"render dominates", 5, 40, FocusRender},
		{"tie goes to render", 10, 10, FocusRender},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			report := BuildStages(Stages{
				Receives: []StageReceive{{Beat: 1, DispatchLag: c.dispatchLag, HasLag: true}},
				Finals:   []FinalRender{{Beat: 1, OSMDLag: c.osmdLag, HasLag: true}},
			})
			assert.Equal(t, c.focus, report.Focus)
		})
	}
}

func TestBuildStagesWithoutPairs(t *testing.T) {
	report := BuildStages(Stages{
		Receives: []StageReceive{{Beat: 1, DispatchLag: 3, HasLag: true}, {Beat: 2, DispatchLag: 4, HasLag: true}},
		Finals:   []FinalRender{{Beat: 1, OSMDLag: 9, HasLag: true}},
	})
	assert := assert.New(t)
	assert.False(report.HasTotal)
	assert.Equal(Focus(""), report.Focus)
	assert.Empty(report.RendersPerBeat)
}

func TestRendersPerBeatSkipsStepsAfterLastFinal(t *testing.T) {
	steps := []StepRender{{Beat: 0}, {Beat: 1}, {Beat: 1.005}, {Beat: 4}}
	finals := []FinalRender{{Beat: 1}, {Beat: 2}}
	assert.Equal(t, map[float64]int{1: 3}, rendersPerBeat(steps, finals))
}

func TestWriteStages(t *testing.T) {
	report, _ := AnalyzeStages(strings.NewReader(stageLog))
	var buf bytes.Buffer
	WriteStages(&buf, report)

	out := buf.String()
	assert := assert.New(t)
	assert.Contains(out, "Total dispatches: 2")
	assert.Contains(out, "Total final renders: 2")
	assert.Contains(out, "dispatch delay > 1ms")
	assert.Contains(out, "dispatch lag > 10ms")
	assert.Contains(out, "render duration > 10ms")
	assert.NotContains(out, "OSMD lag > 50ms")
	assert.Contains(out, "Dispatch Lag: 12.00ms (54.5%)")
	assert.Contains(out, "Focus on optimizing dispatch")
	assert.Contains(out, "Renders Per Beat Movement:")
}

func TestWriteStagesEmpty(t *testing.T) {
	var buf bytes.Buffer
	WriteStages(&buf, BuildStages(Stages{}))
	out := buf.String()
	assert := assert.New(t)
	assert.Contains(out, "Total dispatches: 0")
	assert.NotContains(out, "Mean:")
	assert.Contains(out, "Analysis complete!")
}
