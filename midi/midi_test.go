package midi

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/gomidi/midi/v2/smf"
)

type clickSummary struct {
	downbeats  int
	beats      int
	tempo      float64
	totalTicks uint64
}

func summarize(s *smf.SMF) clickSummary {
	var res clickSummary
	for _, track := range s.Tracks {
		for _, ev := range track {
			res.totalTicks += uint64(ev.Delta)
			var ch, key, vel uint8
			var bpm float64
			switch {
			case ev.Message.GetNoteOn(&ch, &key, &vel):
				if key == downbeatKey {
					res.downbeats += 1
				} else {
					res.beats += 1
				}
			case ev.Message.GetMetaTempo(&bpm):
				res.tempo = bpm
			}
		}
	}
	return res
}

func TestClickTrackShape(t *testing.T) {
	var buf bytes.Buffer
	err := WriteClickTrack(&buf, 90, 3, 4)
	assert := assert.New(t)
	assert.NoError(err)

	s, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	assert.NoError(err)
	assert.Equal(smf.MetricTicks(ticksPerQuarter), s.TimeFormat)

	summary := summarize(s)
	assert.Equal(4, summary.downbeats)
	assert.Equal(8, summary.beats)
	assert.InDelta(90.0, summary.tempo, 0.01)
	assert.Equal(uint64(12*ticksPerQuarter), summary.totalTicks)
}

func TestClickTrackWithoutMeasures(t *testing.T) {
	s, err := ClickTrack(120, 4, 0)
	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(0, summarize(s).downbeats)
}

func TestClickTrackRejectsBadMeter(t *testing.T) {
	cases := []struct {
		tempo float64
		beats int
	}{
		{0, 4},
		{-10, 4},
		{120, 0},
		{120, 300},
	}

	for _, c := range cases {
		_, err := ClickTrack(c.tempo, c.beats, 1)
		assert.ErrorIs(t, err, ErrBadMeter)
	}
}

func TestWriteClickFileReadsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "click.mid")
	assert := assert.New(t)
	assert.NoError(WriteClickFile(path, 100, 4, 2))

	s, err := ReadMidiFile(path)
	assert.NoError(err)
	assert.Equal(2, summarize(s).downbeats)
}

func TestReadMidiFileErrors(t *testing.T) {
	assert := assert.New(t)
	_, err := ReadMidiFile(filepath.Join(t.TempDir(), "missing.mid"))
	assert.Error(err)

	garbage := filepath.Join(t.TempDir(), "garbage.mid")
	assert.NoError(os.WriteFile(garbage, []byte("not a midi file"), 0644))
	_, err = ReadMidiFile(garbage)
	assert.Error(err)
}

func TestSummarize(t *testing.T) {
	s, err := ClickTrack(132, 6, 3)
	assert := assert.New(t)
	assert.NoError(err)

	summary := Summarize(s)
	assert.Equal(1, summary.Tracks)
	assert.InDelta(132.0, summary.Tempo, 0.01)
	assert.Equal(uint8(6), summary.Numerator)
	assert.Equal(uint8(4), summary.Denominator)
	assert.Equal(18, summary.NoteOns)
	assert.Equal(uint64(18*ticksPerQuarter), summary.Ticks)
}
