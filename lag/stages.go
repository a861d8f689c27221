package lag

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/jsphweid/practice/util"
)

// The score display can log each step of a cursor move under [TIMING]:
// the dispatch, its arrival in the UI state, the start of the cursor move,
// every intermediate render and the final render.
var (
	stageDispatchRE = regexp.MustCompile(`Beat (\d+(?:\.\d+)?), Audio time=([\d.]+)s, Predicted=([\d.]+)s, Delay=([\d.]+)ms, Timestamp=([\d.]+)ms`)
	stageReceiveRE  = regexp.MustCompile(`Beat (\d+(?:\.\d+)?), Receive time=([\d.]+)ms, Dispatch lag=([\d.]+|N/A)ms`)
	moveStartRE     = regexp.MustCompile(`Beat (\d+(?:\.\d+)?), Start time=([\d.]+)ms`)
	stepRenderRE    = regexp.MustCompile(`OSMD Render \(STEP\): Beat ([\d.]+), Render duration=([\d.]+)ms`)
	finalRenderRE   = regexp.MustCompile(`Beat (\d+(?:\.\d+)?), Render duration=([\d.]+)ms, Total OSMD lag=([\d.]+|N/A)ms`)
)

// Warning thresholds, in milliseconds, for the largest value of each stage.
const (
	DispatchDelayWarnMs = 1
	DispatchLagWarnMs   = 10
	StepRenderWarnMs    = 10
	OSMDLagWarnMs       = 50
)

type StageDispatch struct {
	Beat      float64
	AudioTime float64
	Predicted float64
	Delay     float64
	Timestamp float64
}

type StageReceive struct {
	Beat        float64
	ReceiveTime float64
	DispatchLag float64
	HasLag      bool
}

type MoveStart struct {
	Beat      float64
	StartTime float64
}

type StepRender struct {
	Beat     float64
	Duration float64
}

type FinalRender struct {
	Beat     float64
	Duration float64
	OSMDLag  float64
	HasLag   bool
}

type Stages struct {
	Dispatches []StageDispatch
	Receives   []StageReceive
	MoveStarts []MoveStart
	Steps      []StepRender
	Finals     []FinalRender
}

type Stats struct {
	Count  int
	Mean   float64
	Median float64
	Min    float64
	Max    float64
	StdDev float64
}

func describe(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}
	res := Stats{
		Count:  len(values),
		Mean:   util.Mean(values),
		Median: util.Median(values),
		Min:    math.Inf(1),
		Max:    math.Inf(-1),
		StdDev: util.StdDev(values),
	}
	for _, v := range values {
		res.Min = math.Min(res.Min, v)
		res.Max = math.Max(res.Max, v)
	}
	return res
}

func parseFloats(groups []string) []float64 {
	res := make([]float64, len(groups))
	for i, g := range groups {
		res[i], _ = strconv.ParseFloat(g, 64)
	}
	return res
}

// optional reads a number that the display logs as N/A when unknown.
func optional(s string) (float64, bool) {
	if s == "N/A" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

// ParseStages collects the [TIMING] lines of a console log.
func ParseStages(r io.Reader) (Stages, error) {
	var res Stages
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.Contains(line, "Dispatch Start:"):
			if m := stageDispatchRE.FindStringSubmatch(line); m != nil {
				v := parseFloats(m[1:])
				res.Dispatches = append(res.Dispatches, StageDispatch{Beat: v[0], AudioTime: v[1], Predicted: v[2], Delay: v[3], Timestamp: v[4]})
			}
		case strings.Contains(line, "Dispatch Received:"):
			if m := stageReceiveRE.FindStringSubmatch(line); m != nil {
				v := parseFloats(m[1:3])
				lag, ok := optional(m[3])
				res.Receives = append(res.Receives, StageReceive{Beat: v[0], ReceiveTime: v[1], DispatchLag: lag, HasLag: ok})
			}
		case strings.Contains(line, "Move Cursor Start:"):
			if m := moveStartRE.FindStringSubmatch(line); m != nil {
				v := parseFloats(m[1:])
				res.MoveStarts = append(res.MoveStarts, MoveStart{Beat: v[0], StartTime: v[1]})
			}
		case strings.Contains(line, "OSMD Render (STEP):"):
			if m := stepRenderRE.FindStringSubmatch(line); m != nil {
				v := parseFloats(m[1:])
				res.Steps = append(res.Steps, StepRender{Beat: v[0], Duration: v[1]})
			}
		case strings.Contains(line, "OSMD Render Complete (FINAL):"):
			if m := finalRenderRE.FindStringSubmatch(line); m != nil {
				v := parseFloats(m[1:3])
				lag, ok := optional(m[3])
				res.Finals = append(res.Finals, FinalRender{Beat: v[0], Duration: v[1], OSMDLag: lag, HasLag: ok})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Stages{}, fmt.Errorf("could not read log: %w", err)
	}
	return res, nil
}

type Focus string

const (
	FocusDispatch Focus = "dispatch"
	FocusRender   Focus = "render"
)

type StageReport struct {
	Stages
	DispatchDelay Stats
	DispatchLag   Stats
	StepRender    Stats
	OSMDLag       Stats

	// Total is set only when every final render pairs with a dispatch lag.
	Total         Stats
	HasTotal      bool
	DispatchShare float64 // percent of the average total spent before the display
	Focus         Focus

	RendersPerBeat map[float64]int
	RenderCounts   Stats
}

func AnalyzeStages(r io.Reader) (StageReport, error) {
	stages, err := ParseStages(r)
	if err != nil {
		return StageReport{}, err
	}
	return BuildStages(stages), nil
}

func BuildStages(s Stages) StageReport {
	report := StageReport{Stages: s}

	var delays, dispatchLags, steps, osmdLags []float64
	for _, d := range s.Dispatches {
		delays = append(delays, d.Delay)
	}
	for _, r := range s.Receives {
		if r.HasLag {
			dispatchLags = append(dispatchLags, r.DispatchLag)
		}
	}
	for _, st := range s.Steps {
		steps = append(steps, st.Duration)
	}
	for _, f := range s.Finals {
		if f.HasLag {
			osmdLags = append(osmdLags, f.OSMDLag)
		}
	}
	report.DispatchDelay = describe(delays)
	report.DispatchLag = describe(dispatchLags)
	report.StepRender = describe(steps)
	report.OSMDLag = describe(osmdLags)

	if len(dispatchLags) > 0 && len(dispatchLags) == len(osmdLags) {
		totals := make([]float64, len(dispatchLags))
		for i := range dispatchLags {
			totals[i] = dispatchLags[i] + osmdLags[i]
		}
		report.Total = describe(totals)
		report.HasTotal = true
		if sum := report.DispatchLag.Mean + report.OSMDLag.Mean; sum > 0 {
			report.DispatchShare = report.DispatchLag.Mean / sum * 100
		}
		report.Focus = FocusRender
		if report.DispatchLag.Mean > report.OSMDLag.Mean {
			report.Focus = FocusDispatch
		}
	}

	report.RendersPerBeat = rendersPerBeat(s.Steps, s.Finals)
	counts := make([]float64, 0, len(report.RendersPerBeat))
	for _, beat := range util.GetKeysSorted(report.RendersPerBeat) {
		counts = append(counts, float64(report.RendersPerBeat[beat]))
	}
	report.RenderCounts = describe(counts)
	return report
}

// rendersPerBeat charges each step render to the first final render of the
// same beat or of a later one.
func rendersPerBeat(steps []StepRender, finals []FinalRender) map[float64]int {
	res := make(map[float64]int)
	if len(finals) == 0 {
		return res
	}
	for _, st := range steps {
		for _, f := range finals {
			if math.Abs(st.Beat-f.Beat) < beatTolerance || st.Beat < f.Beat {
				res[f.Beat] += 1
				break
			}
		}
	}
	return res
}

func writeStats(w io.Writer, title string, s Stats, warnAbove float64, warning string) {
	if s.Count == 0 {
		return
	}
	fmt.Fprintf(w, "\n%v:\n", title)
	fmt.Fprintf(w, "   Mean: %.2fms\n", s.Mean)
	fmt.Fprintf(w, "   Median: %.2fms\n", s.Median)
	fmt.Fprintf(w, "   Min: %.2fms\n", s.Min)
	fmt.Fprintf(w, "   Max: %.2fms\n", s.Max)
	if s.Count > 1 {
		fmt.Fprintf(w, "   Std Dev: %.2fms\n", s.StdDev)
	}
	if warning != "" && s.Max > warnAbove {
		fmt.Fprintf(w, "   WARNING: %v\n", warning)
	}
}

// WriteStages prints the per-stage report.
func WriteStages(w io.Writer, r StageReport) {
	rule := strings.Repeat("=", 70)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "CURSOR LAG ANALYSIS REPORT")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "\nData Summary:")
	fmt.Fprintf(w, "   Total dispatches: %v\n", len(r.Dispatches))
	fmt.Fprintf(w, "   Total receives: %v\n", len(r.Receives))
	fmt.Fprintf(w, "   Total move starts: %v\n", len(r.MoveStarts))
	fmt.Fprintf(w, "   Total renders (steps): %v\n", len(r.Steps))
	fmt.Fprintf(w, "   Total final renders: %v\n", len(r.Finals))

	writeStats(w, "Dispatch Delay (Predicted Time Accuracy)", r.DispatchDelay, DispatchDelayWarnMs,
		"dispatch delay > 1ms, predicted times are not aligned with audio times")
	writeStats(w, "Dispatch Lag (UI State Propagation)", r.DispatchLag, DispatchLagWarnMs,
		"dispatch lag > 10ms, consider optimizing UI re-render performance")
	writeStats(w, "Individual Render Durations (OSMD Step Renders)", r.StepRender, StepRenderWarnMs,
		"render duration > 10ms, score complexity or rendering may need work")
	writeStats(w, "Total OSMD Lag (Cursor Movement + All Renders)", r.OSMDLag, OSMDLagWarnMs,
		"OSMD lag > 50ms, consider optimizing cursor movement or reducing renders")

	if r.HasTotal {
		writeStats(w, "Total Cursor Lag (Dispatch + OSMD)", r.Total, 0, "")
		fmt.Fprintln(w, "\nAverage Lag Breakdown:")
		fmt.Fprintf(w, "   Dispatch Lag: %.2fms (%.1f%%)\n", r.DispatchLag.Mean, r.DispatchShare)
		fmt.Fprintf(w, "   OSMD Lag: %.2fms (%.1f%%)\n", r.OSMDLag.Mean, 100-r.DispatchShare)
		if r.Focus == FocusDispatch {
			fmt.Fprintln(w, "\nRecommendation: Focus on optimizing dispatch/state propagation")
		} else {
			fmt.Fprintln(w, "\nRecommendation: Focus on optimizing OSMD cursor movement and rendering")
		}
	}

	if r.RenderCounts.Count > 0 {
		fmt.Fprintln(w, "\nRenders Per Beat Movement:")
		fmt.Fprintf(w, "   Mean: %.2f\n", r.RenderCounts.Mean)
		fmt.Fprintf(w, "   Median: %.2f\n", r.RenderCounts.Median)
		fmt.Fprintf(w, "   Min: %v\n", r.RenderCounts.Min)
		fmt.Fprintf(w, "   Max: %v\n", r.RenderCounts.Max)
	}

	fmt.Fprintln(w, "\n"+rule)
	fmt.Fprintln(w, "Analysis complete!")
	fmt.Fprintln(w, rule)
}
