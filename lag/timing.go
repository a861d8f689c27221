package lag

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"

	"github.com/jsphweid/practice/util"
)

var (
	dispatchTimingRE = regexp.MustCompile(`Dispatch Timing: Audio=([\d.]+)s, Predicted=([\d.]+)s, Diff=([-\d.]+)s, Beat=([\d.]+)`)
	delayedRE        = regexp.MustCompile(`Cursor Dispatch: Beat ([\d.]+) dispatched with ([\d.]+)ms delay`)
)

const (
	FastDelayBelowMs = 50
	SlowDelayBelowMs = 100
	InSyncWithinMs   = 20
)

// TimingEntry compares where the audio was with where the scheduler
// predicted it to be when a beat went out. Times are in seconds.
type TimingEntry struct {
	Audio     float64
	Predicted float64
	Diff      float64
	Beat      float64
}

type DelayedDispatch struct {
	Beat  float64
	Delay float64 // ms
}

type TimingReport struct {
	Entries    []TimingEntry
	Dispatches []DelayedDispatch
	Delay      Stats

	// dispatch delay buckets: <50ms, 50-100ms, >=100ms
	Fast int
	Slow int
	Late int

	DiffMs Stats
	InSync int
}

func ParseTiming(r io.Reader) ([]TimingEntry, []DelayedDispatch, error) {
	var entries []TimingEntry
	var dispatches []DelayedDispatch

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		for _, m := range dispatchTimingRE.FindAllStringSubmatch(line, -1) {
			v := parseFloats(m[1:])
			entries = append(entries, TimingEntry{Audio: v[0], Predicted: v[1], Diff: v[2], Beat: v[3]})
		}
		for _, m := range delayedRE.FindAllStringSubmatch(line, -1) {
			v := parseFloats(m[1:])
			dispatches = append(dispatches, DelayedDispatch{Beat: v[0], Delay: v[1]})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("could not read log: %w", err)
	}
	return entries, dispatches, nil
}

func AnalyzeTiming(r io.Reader) (TimingReport, error) {
	entries, dispatches, err := ParseTiming(r)
	if err != nil {
		return TimingReport{}, err
	}
	return BuildTiming(entries, dispatches), nil
}

func BuildTiming(entries []TimingEntry, dispatches []DelayedDispatch) TimingReport {
	report := TimingReport{Entries: entries, Dispatches: dispatches}

	delays := make([]float64, 0, len(dispatches))
	for _, d := range dispatches {
		delays = append(delays, d.Delay)
		switch {
		case d.Delay < FastDelayBelowMs:
			report.Fast += 1
		case d.Delay < SlowDelayBelowMs:
			report.Slow += 1
		default:
			report.Late += 1
		}
	}
	report.Delay = describe(delays)

	diffs := make([]float64, 0, len(entries))
	for _, e := range entries {
		ms := e.Diff * 1000
		diffs = append(diffs, ms)
		if math.Abs(ms) < InSyncWithinMs {
			report.InSync += 1
		}
	}
	report.DiffMs = describe(diffs)
	return report
}

// WriteTiming prints the dispatch delay and audio sync report.
func WriteTiming(w io.Writer, r TimingReport) {
	fmt.Fprintf(w, "Timing Analysis Entries: %v\n", len(r.Entries))
	fmt.Fprintf(w, "Actual Cursor Dispatches: %v\n", len(r.Dispatches))
	if len(r.Dispatches) == 0 {
		fmt.Fprintln(w, "No cursor dispatches found!")
		return
	}

	total := len(r.Dispatches)
	fmt.Fprintln(w, "\nCursor dispatch performance:")
	fmt.Fprintf(w, "Best Response Time: %.1fms\n", r.Delay.Min)
	fmt.Fprintf(w, "Average Delay: %.1fms\n", r.Delay.Mean)
	fmt.Fprintf(w, "Median Delay: %.1fms\n", r.Delay.Median)
	fmt.Fprintf(w, "Worst Delay: %.1fms\n", r.Delay.Max)

	fmt.Fprintln(w, "\nPerformance Breakdown:")
	fmt.Fprintf(w, "(<50ms): %v/%v (%.1f%%)\n", r.Fast, total, percent(r.Fast, total))
	fmt.Fprintf(w, "(50-100ms): %v/%v (%.1f%%)\n", r.Slow, total, percent(r.Slow, total))
	fmt.Fprintf(w, "(>100ms): %v/%v (%.1f%%)\n", r.Late, total, percent(r.Late, total))

	if len(r.Entries) > 0 {
		fmt.Fprintln(w, "\nAudio vs Predicted Timing:")
		fmt.Fprintf(w, "Average Difference: %.1fms\n", r.DiffMs.Mean)
		fmt.Fprintf(w, "Median Difference: %.1fms\n", r.DiffMs.Median)
		fmt.Fprintf(w, "Well-Synchronized (<20ms): %v/%v (%.1f%%)\n", r.InSync, len(r.Entries), percent(r.InSync, len(r.Entries)))
	}

	fmt.Fprintln(w, "\nSample dispatches:")
	for _, d := range r.Dispatches[:util.Min(10, total)] {
		fmt.Fprintf(w, "Beat %v: %vms delay\n", formatBeat(d.Beat), strconv.FormatFloat(d.Delay, 'f', -1, 64))
	}
}
