package midi

import (
	"gitlab.com/gomidi/midi/v2/smf"
)

type Summary struct {
	Tracks      int
	Tempo       float64
	Numerator   uint8
	Denominator uint8
	NoteOns     int
	Ticks       uint64 // length of the longest track
}

func Summarize(s *smf.SMF) Summary {
	res := Summary{Tracks: len(s.Tracks)}
	for _, track := range s.Tracks {
		var ticks uint64
		for _, ev := range track {
			ticks += uint64(ev.Delta)
			var ch, key, vel, num, denom uint8
			var bpm float64
			switch {
			case ev.Message.GetNoteOn(&ch, &key, &vel):
				if vel > 0 {
					res.NoteOns += 1
				}
			case ev.Message.GetMetaTempo(&bpm):
				if res.Tempo == 0 {
					res.Tempo = bpm
				}
			case ev.Message.GetMetaMeter(&num, &denom):
				if res.Numerator == 0 {
					res.Numerator, res.Denominator = num, denom
				}
			}
		}
		if ticks > res.Ticks {
			res.Ticks = ticks
		}
	}
	return res
}
