package lag

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jsphweid/practice/model"
	"github.com/jsphweid/practice/util"
)

type Verdict string

const (
	VerdictGood        Verdict = "good"
	VerdictNoticeable  Verdict = "noticeable"
	VerdictSignificant Verdict = "significant"
)

type Report struct {
	Dispatches int
	Renders    int
	BySequence bool
	Matches    []model.LagMatch
	Unmatched  []model.BeatDispatch
	Breakdown  model.LagBreakdown
}

// Analyze parses a log and matches dispatches to renders, by sequence number
// when the log carries them and by timestamp otherwise.
func Analyze(r io.Reader) (Report, error) {
	dispatches, renders, err := Parse(r)
	if err != nil {
		return Report{}, err
	}
	return Build(dispatches, renders), nil
}

func Build(dispatches []model.BeatDispatch, renders []model.CursorRender) Report {
	report := Report{Dispatches: len(dispatches), Renders: len(renders)}
	if len(dispatches) == 0 || len(renders) == 0 {
		return report
	}

	report.BySequence = dispatches[0].HasSeq
	if report.BySequence {
		report.Matches = MatchBySequence(dispatches, renders)
	} else {
		report.Matches, report.Unmatched = MatchByTimestamp(dispatches, renders)
	}
	report.Breakdown = Categorize(report.Lags())
	return report
}

func (r Report) Lags() []int64 {
	res := make([]int64, 0, len(r.Matches))
	for _, m := range r.Matches {
		res = append(res, m.Lag)
	}
	return res
}

func (r Report) Best() int64 {
	lags := r.Lags()
	if len(lags) == 0 {
		return 0
	}
	best := lags[0]
	for _, l := range lags[1:] {
		if l < best {
			best = l
		}
	}
	return best
}

func (r Report) Worst() int64 {
	lags := r.Lags()
	if len(lags) == 0 {
		return 0
	}
	worst := lags[0]
	for _, l := range lags[1:] {
		if l > worst {
			worst = l
		}
	}
	return worst
}

func (r Report) Mean() float64 {
	return util.Mean(r.Lags())
}

func (r Report) Median() float64 {
	return util.Median(r.Lags())
}

// WorstMatches returns up to n non-negative matches, slowest first.
func (r Report) WorstMatches(n int) []model.LagMatch {
	res := r.positiveMatches()
	sort.SliceStable(res, func(i, j int) bool { return res[i].Lag > res[j].Lag })
	return res[:util.Min(n, len(res))]
}

// BestMatches returns up to n non-negative matches, fastest first.
func (r Report) BestMatches(n int) []model.LagMatch {
	res := r.positiveMatches()
	sort.SliceStable(res, func(i, j int) bool { return res[i].Lag < res[j].Lag })
	return res[:util.Min(n, len(res))]
}

func (r Report) NegativeMatches(n int) []model.LagMatch {
	var res []model.LagMatch
	for _, m := range r.Matches {
		if m.Lag < 0 {
			res = append(res, m)
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].Lag < res[j].Lag })
	return res[:util.Min(n, len(res))]
}

func (r Report) positiveMatches() []model.LagMatch {
	var res []model.LagMatch
	for _, m := range r.Matches {
		if m.Lag >= 0 {
			res = append(res, m)
		}
	}
	return res
}

// Verdict is judged on the mean of the non-negative lags, falling back to
// all lags when every one is negative.
func (r Report) Verdict() Verdict {
	var positive []int64
	for _, l := range r.Lags() {
		if l >= 0 {
			positive = append(positive, l)
		}
	}
	avg := util.Mean(positive)
	if len(positive) == 0 {
		avg = r.Mean()
	}
	switch {
	case avg < GoodBelowMs:
		return VerdictGood
	case avg < AcceptableBelowMs:
		return VerdictNoticeable
	default:
		return VerdictSignificant
	}
}

func percent(n int, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// Write prints a human readable report.
func Write(w io.Writer, r Report) {
	rule := strings.Repeat("=", 70)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "Analysis of Cursor Lag")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total Dispatch Events: %v\n", r.Dispatches)
	fmt.Fprintf(w, "Total Render Events: %v\n", r.Renders)

	if r.Dispatches == 0 {
		fmt.Fprintln(w, "\nNo dispatch events found in logs!")
		return
	}
	if r.Renders == 0 {
		fmt.Fprintln(w, "\nNo render events found in logs!")
		return
	}
	if r.BySequence {
		fmt.Fprintln(w, "Sequence numbers detected - using precise matching")
	} else {
		fmt.Fprintln(w, "No sequence numbers - using timestamp-based matching")
	}
	if len(r.Unmatched) > 0 {
		fmt.Fprintf(w, "\n%v dispatches had no matching render:\n", len(r.Unmatched))
		for _, d := range r.Unmatched[:util.Min(5, len(r.Unmatched))] {
			fmt.Fprintf(w, "   Beat %.2f dispatched at %v\n", d.Beat, d.DispatchTime)
		}
	}
	if len(r.Matches) == 0 {
		fmt.Fprintln(w, "\nNo matching dispatch-render pairs found!")
		return
	}

	total := len(r.Matches)
	b := r.Breakdown
	fmt.Fprintln(w, "\nLAG STATISTICS (Dispatch -> Render)")
	fmt.Fprintf(w, "Matched Beat Updates: %v\n", total)
	fmt.Fprintf(w, "Best Response Time: %vms\n", r.Best())
	fmt.Fprintf(w, "Average Lag: %.1fms\n", r.Mean())
	fmt.Fprintf(w, "Median Lag: %.1fms\n", r.Median())
	fmt.Fprintf(w, "Worst Lag: %vms\n", r.Worst())

	fmt.Fprintln(w, "\nPERFORMANCE BREAKDOWN:")
	fmt.Fprintf(w, "Excellent (<16ms):     %3d/%v (%5.1f%%)\n", b.Excellent, total, percent(b.Excellent, total))
	fmt.Fprintf(w, "Good (16-50ms):        %3d/%v (%5.1f%%)\n", b.Good, total, percent(b.Good, total))
	fmt.Fprintf(w, "Acceptable (50-100ms): %3d/%v (%5.1f%%)\n", b.Acceptable, total, percent(b.Acceptable, total))
	fmt.Fprintf(w, "Poor (>100ms):         %3d/%v (%5.1f%%)\n", b.Poor, total, percent(b.Poor, total))
	if b.Negative > 0 {
		fmt.Fprintf(w, "NEGATIVE (bug):        %3d/%v (%5.1f%%)\n", b.Negative, total, percent(b.Negative, total))
	}

	fmt.Fprintln(w, "\nWORST LAG EVENTS:")
	for _, m := range r.WorstMatches(10) {
		fmt.Fprintf(w, "Beat %6.2f: %4dms lag (Dispatch: %v, Render: %v)\n", m.Beat, m.Lag, m.DispatchTime, m.RenderTime)
	}
	fmt.Fprintln(w, "\nBEST LAG EVENTS:")
	for _, m := range r.BestMatches(10) {
		fmt.Fprintf(w, "Beat %6.2f: %4dms lag (Dispatch: %v, Render: %v)\n", m.Beat, m.Lag, m.DispatchTime, m.RenderTime)
	}
	if b.Negative > 0 {
		fmt.Fprintln(w, "\nNEGATIVE LAG EVENTS (Matching Errors):")
		for _, m := range r.NegativeMatches(10) {
			fmt.Fprintf(w, "Beat %6.2f: %4dms (Render BEFORE Dispatch!)\n", m.Beat, m.Lag)
		}
	}

	fmt.Fprintln(w, "\nDIAGNOSIS:")
	if b.Negative > 0 {
		fmt.Fprintf(w, "%v negative lags detected!\n", b.Negative)
		if !r.BySequence {
			fmt.Fprintln(w, "   -> Likely cause: beat matching without sequence numbers")
		}
	}
	switch r.Verdict() {
	case VerdictGood:
		fmt.Fprintln(w, "Average performance is good!")
	case VerdictNoticeable:
		fmt.Fprintln(w, "Noticeable lag exists. Consider optimizations.")
	default:
		fmt.Fprintln(w, "Significant lag detected. Immediate action needed!")
	}
	if float64(b.Poor) > float64(total)*0.1 {
		fmt.Fprintf(w, "%.1f%% of updates have >100ms lag\n", percent(b.Poor, total))
	}
	if float64(b.Excellent) < float64(total)*0.5 {
		fmt.Fprintln(w, "Less than 50% of updates are frame-perfect (<16ms)")
	}
}
