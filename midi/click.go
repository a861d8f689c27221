package midi

import (
	"errors"
	"io"
	"math"
	"os"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	// General MIDI percussion lives on channel 10
	percussionChannel = 9
	downbeatKey       = 76 // hi wood block
	beatKey           = 77 // low wood block
	downbeatVelocity  = 120
	beatVelocity      = 90
	ticksPerQuarter   = 960
	clickLength       = ticksPerQuarter / 8
)

var ErrBadMeter = errors.New("tempo and beats per measure must be positive")

// ClickTrack builds a metronome for the given tempo (quarter notes per
// minute) and meter, with an accented first beat in every measure.
func ClickTrack(tempo float64, beatsPerMeasure int, measures int) (*smf.SMF, error) {
	if tempo <= 0 || math.IsNaN(tempo) || math.IsInf(tempo, 0) || beatsPerMeasure <= 0 || beatsPerMeasure > math.MaxUint8 || measures < 0 {
		return nil, ErrBadMeter
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	var track smf.Track
	track.Add(0, smf.MetaTrackSequenceName("click"))
	track.Add(0, smf.MetaMeter(uint8(beatsPerMeasure), 4))
	track.Add(0, smf.MetaTempo(tempo))

	var delta uint32
	for m := 0; m < measures; m++ {
		for b := 0; b < beatsPerMeasure; b++ {
			key, vel := uint8(beatKey), uint8(beatVelocity)
			if b == 0 {
				key, vel = downbeatKey, downbeatVelocity
			}
			track.Add(delta, midi.NoteOn(percussionChannel, key, vel))
			track.Add(clickLength, midi.NoteOff(percussionChannel, key))
			delta = ticksPerQuarter - clickLength
		}
	}
	track.Close(delta)

	if err := s.Add(track); err != nil {
		return nil, err
	}
	return s, nil
}

func WriteClickTrack(w io.Writer, tempo float64, beatsPerMeasure int, measures int) error {
	s, err := ClickTrack(tempo, beatsPerMeasure, measures)
	if err != nil {
		return err
	}
	_, err = s.WriteTo(w)
	return err
}

func WriteClickFile(path string, tempo float64, beatsPerMeasure int, measures int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := WriteClickTrack(f, tempo, beatsPerMeasure, measures); err != nil {
		return err
	}
	return f.Close()
}
