package midi

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gitlab.com/gomidi/midi/v2/smf"
)

func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	var blank smf.SMF

	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r, ok := recover().(string); ok {
			s = &blank
			e = errors.New(r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return &blank, fmt.Errorf("Error reading midi file... %w", err)
	}

	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return &blank, fmt.Errorf("Error parsing midi file... %w", err)
	}

	return res, nil
}
