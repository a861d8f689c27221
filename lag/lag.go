// Package lag measures how long the score cursor takes to catch up with beat
// updates. It reads console logs holding dispatch lines, as written by the
// store, and render lines written by the score display.
package lag

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"regexp"
	"sort"
	"strconv"

	"github.com/jsphweid/practice/model"
	"github.com/jsphweid/practice/util"
)

var (
	dispatchRE = regexp.MustCompile(`DISPATCHING BEAT UPDATE: ([\d.]+) at time ([\d.]+)s.*DispatchTime=(\d+)(?:, Seq=(\d+))?`)
	renderRE   = regexp.MustCompile(`\[Cursor Render\] Beat=([\d.]+), RenderTime=(\d+)(?:, Seq=(\d+))?`)
)

// beats closer than this are the same beat
const beatTolerance = 0.01

const (
	ExcellentBelowMs  = 16
	GoodBelowMs       = 50
	AcceptableBelowMs = 100
)

// formatBeat never uses exponent notation, which Parse could not read.
func formatBeat(beat float64) string {
	return strconv.FormatFloat(beat, 'f', -1, 64)
}

// FormatDispatch renders a dispatch the way Parse expects to find it.
func FormatDispatch(d model.BeatDispatch, predicted float64) string {
	line := fmt.Sprintf("🎵 DISPATCHING BEAT UPDATE: %v at time %.3fs (predicted: %.3fs), DispatchTime=%d",
		formatBeat(d.Beat), d.AudioTime, predicted, d.DispatchTime)
	if d.HasSeq {
		line += fmt.Sprintf(", Seq=%d", d.Seq)
	}
	return line
}

func FormatRender(r model.CursorRender) string {
	line := fmt.Sprintf("[Cursor Render] Beat=%v, RenderTime=%d", formatBeat(r.Beat), r.RenderTime)
	if r.HasSeq {
		line += fmt.Sprintf(", Seq=%d", r.Seq)
	}
	return line
}

// Parse collects every dispatch and render line in r. Lines matching
// neither are ignored.
func Parse(r io.Reader) ([]model.BeatDispatch, []model.CursorRender, error) {
	var dispatches []model.BeatDispatch
	var renders []model.CursorRender

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if m := dispatchRE.FindStringSubmatch(line); m != nil {
			d, err := parseDispatch(m)
			if err != nil {
				return nil, nil, err
			}
			dispatches = append(dispatches, d)
		}
		if m := renderRE.FindStringSubmatch(line); m != nil {
			rr, err := parseRender(m)
			if err != nil {
				return nil, nil, err
			}
			renders = append(renders, rr)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("could not read log: %w", err)
	}
	return dispatches, renders, nil
}

func parseDispatch(m []string) (model.BeatDispatch, error) {
	var d model.BeatDispatch
	var err error
	if d.Beat, err = strconv.ParseFloat(m[1], 64); err != nil {
		return d, fmt.Errorf("bad dispatch beat %q: %w", m[1], err)
	}
	if d.AudioTime, err = strconv.ParseFloat(m[2], 64); err != nil {
		return d, fmt.Errorf("bad dispatch audio time %q: %w", m[2], err)
	}
	if d.DispatchTime, err = strconv.ParseInt(m[3], 10, 64); err != nil {
		return d, fmt.Errorf("bad dispatch time %q: %w", m[3], err)
	}
	if m[4] != "" {
		if d.Seq, err = strconv.Atoi(m[4]); err != nil {
			return d, fmt.Errorf("bad dispatch seq %q: %w", m[4], err)
		}
		d.HasSeq = true
	}
	return d, nil
}

func parseRender(m []string) (model.CursorRender, error) {
	var r model.CursorRender
	var err error
	if r.Beat, err = strconv.ParseFloat(m[1], 64); err != nil {
		return r, fmt.Errorf("bad render beat %q: %w", m[1], err)
	}
	if r.RenderTime, err = strconv.ParseInt(m[2], 10, 64); err != nil {
		return r, fmt.Errorf("bad render time %q: %w", m[2], err)
	}
	if m[3] != "" {
		if r.Seq, err = strconv.Atoi(m[3]); err != nil {
			return r, fmt.Errorf("bad render seq %q: %w", m[3], err)
		}
		r.HasSeq = true
	}
	return r, nil
}

func sameBeat(a, b float64) bool {
	return math.Abs(a-b) < beatTolerance
}

// MatchBySequence pairs dispatches and renders sharing a sequence number.
// Pairs whose beats disagree are dropped. When a sequence number repeats the
// last occurrence wins.
func MatchBySequence(dispatches []model.BeatDispatch, renders []model.CursorRender) []model.LagMatch {
	dispatchBySeq := make(map[int]model.BeatDispatch)
	for _, d := range dispatches {
		if d.HasSeq {
			dispatchBySeq[d.Seq] = d
		}
	}
	renderBySeq := make(map[int]model.CursorRender)
	for _, r := range renders {
		if r.HasSeq {
			renderBySeq[r.Seq] = r
		}
	}

	var res []model.LagMatch
	for _, seq := range util.GetKeysSorted(dispatchBySeq) {
		r, ok := renderBySeq[seq]
		if !ok {
			continue
		}
		d := dispatchBySeq[seq]
		if !sameBeat(d.Beat, r.Beat) {
			continue
		}
		res = append(res, model.LagMatch{
			Beat:         d.Beat,
			DispatchTime: d.DispatchTime,
			RenderTime:   r.RenderTime,
			Lag:          r.RenderTime - d.DispatchTime,
		})
	}
	return res
}

// MatchByTimestamp pairs each dispatch, in time order, with the latest
// unused render of the same beat at or after it. That render is when the
// cursor settled, even if it stepped through intermediate beats first.
func MatchByTimestamp(dispatches []model.BeatDispatch, renders []model.CursorRender) ([]model.LagMatch, []model.BeatDispatch) {
	ds := append([]model.BeatDispatch{}, dispatches...)
	sort.SliceStable(ds, func(i, j int) bool {
		if ds[i].DispatchTime != ds[j].DispatchTime {
			return ds[i].DispatchTime < ds[j].DispatchTime
		}
		return ds[i].Beat < ds[j].Beat
	})
	rs := append([]model.CursorRender{}, renders...)
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].RenderTime != rs[j].RenderTime {
			return rs[i].RenderTime < rs[j].RenderTime
		}
		return rs[i].Beat < rs[j].Beat
	})

	var matches []model.LagMatch
	var unmatched []model.BeatDispatch
	used := make(map[int]bool)
	for _, d := range ds {
		best := -1
		for i, r := range rs {
			if used[i] || !sameBeat(r.Beat, d.Beat) || r.RenderTime < d.DispatchTime {
				continue
			}
			// rs is in time order, so the last candidate is the latest
			best = i
		}
		if best < 0 {
			unmatched = append(unmatched, d)
			continue
		}
		used[best] = true
		matches = append(matches, model.LagMatch{
			Beat:         d.Beat,
			DispatchTime: d.DispatchTime,
			RenderTime:   rs[best].RenderTime,
			Lag:          rs[best].RenderTime - d.DispatchTime,
		})
	}
	return matches, unmatched
}

func Categorize(lags []int64) model.LagBreakdown {
	var b model.LagBreakdown
	for _, l := range lags {
		switch {
		case l < 0:
			b.Negative += 1
		case l < ExcellentBelowMs:
			b.Excellent += 1
		case l < GoodBelowMs:
			b.Good += 1
		case l < AcceptableBelowMs:
			b.Acceptable += 1
		default:
			b.Poor += 1
		}
	}
	return b
}
