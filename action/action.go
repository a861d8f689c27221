// Package action converts actions to and from their JSON envelope form,
// {"type": "<tag>", ...fields}, as sent by the browser UI.
package action

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jsphweid/practice/model"
)

var (
	ErrMalformed    = errors.New("malformed action")
	ErrMissingField = errors.New("action is missing a required field")
)

type envelope struct {
	Type               string          `json:"type"`
	Tempo              *float64        `json:"tempo,omitempty"`
	BeatsPerMeasure    *int            `json:"beatsPerMeasure,omitempty"`
	Score              json.RawMessage `json:"score,omitempty"`
	AccompanimentSound *string         `json:"accompanimentSound,omitempty"`
	Scores             *[]string       `json:"scores,omitempty"`
	ReferenceAudioURI  *string         `json:"referenceAudioUri,omitempty"`
	BottomAudioURI     *string         `json:"bottomAudioUri,omitempty"`
	Payload            *float64        `json:"payload,omitempty"`
}

type uploadEnvelope struct {
	Filename *string `json:"filename"`
	Content  *string `json:"content"`
}

func missing(tag string, field string) error {
	return fmt.Errorf("%w: %v needs %q", ErrMissingField, tag, field)
}

// absent treats an explicit null like a field that was left out.
func absent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Decode reads one envelope. Tags that are not known decode to
// model.Unrecognized without error.
func Decode(data []byte) (model.Action, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: no type", ErrMalformed)
	}

	switch env.Type {
	case model.TypeStartStop:
		return model.StartStop{}, nil
	case model.TypeUpdatePieceInfo:
		if env.Tempo == nil {
			return nil, missing(env.Type, "tempo")
		}
		if env.BeatsPerMeasure == nil {
			return nil, missing(env.Type, "beatsPerMeasure")
		}
		return model.UpdatePieceInfo{Tempo: *env.Tempo, BeatsPerMeasure: *env.BeatsPerMeasure}, nil
	case model.TypeChangeScore:
		var score string
		if absent(env.Score) || json.Unmarshal(env.Score, &score) != nil {
			return nil, missing(env.Type, "score")
		}
		if env.AccompanimentSound == nil {
			return nil, missing(env.Type, "accompanimentSound")
		}
		return model.ChangeScore{Score: score, AccompanimentSound: *env.AccompanimentSound}, nil
	case model.TypeNewScoresFromBackend:
		if env.Scores == nil {
			return nil, missing(env.Type, "scores")
		}
		return model.NewScoresFromBackend{Scores: *env.Scores}, nil
	case model.TypeNewScoreFromUpload:
		var upload uploadEnvelope
		if absent(env.Score) || json.Unmarshal(env.Score, &upload) != nil {
			return nil, missing(env.Type, "score")
		}
		if upload.Filename == nil {
			return nil, missing(env.Type, "score.filename")
		}
		if upload.Content == nil {
			return nil, missing(env.Type, "score.content")
		}
		return model.NewScoreFromUpload{Score: model.UploadedScore{Filename: *upload.Filename, Content: *upload.Content}}, nil
	case model.TypeChangeReferenceAudio:
		if env.ReferenceAudioURI == nil {
			return nil, missing(env.Type, "referenceAudioUri")
		}
		return model.ChangeReferenceAudio{ReferenceAudioURI: *env.ReferenceAudioURI}, nil
	case model.TypeSetEstimatedBeat:
		if env.Payload == nil {
			return nil, missing(env.Type, "payload")
		}
		return model.SetEstimatedBeat{Payload: *env.Payload}, nil
	case model.TypeResetScore:
		return model.ResetScore{}, nil
	case model.TypeChangeBottomAudio:
		if env.BottomAudioURI == nil {
			return nil, missing(env.Type, "bottomAudioUri")
		}
		return model.ChangeBottomAudio{BottomAudioURI: *env.BottomAudioURI}, nil
	case model.TypeToggleLoadingPerformance:
		return model.ToggleLoadingPerformance{}, nil
	}

	return model.Unrecognized{Tag: env.Type}, nil
}

func Encode(a model.Action) ([]byte, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: nil action", ErrMalformed)
	}
	env := envelope{Type: a.Type()}
	switch a := a.(type) {
	case model.UpdatePieceInfo:
		env.Tempo = &a.Tempo
		env.BeatsPerMeasure = &a.BeatsPerMeasure
	case model.ChangeScore:
		score, err := json.Marshal(a.Score)
		if err != nil {
			return nil, err
		}
		env.Score = score
		env.AccompanimentSound = &a.AccompanimentSound
	case model.NewScoresFromBackend:
		scores := a.Scores
		if scores == nil {
			scores = []string{}
		}
		env.Scores = &scores
	case model.NewScoreFromUpload:
		score, err := json.Marshal(a.Score)
		if err != nil {
			return nil, err
		}
		env.Score = score
	case model.ChangeReferenceAudio:
		env.ReferenceAudioURI = &a.ReferenceAudioURI
	case model.SetEstimatedBeat:
		env.Payload = &a.Payload
	case model.ChangeBottomAudio:
		env.BottomAudioURI = &a.BottomAudioURI
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: no type", ErrMalformed)
	}
	return json.Marshal(env)
}

// DecodeLines reads one envelope per line, skipping blank lines. The error
// names the offending line.
func DecodeLines(r io.Reader) ([]model.Action, error) {
	var res []model.Action
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum += 1
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		a, err := Decode(line)
		if err != nil {
			return nil, fmt.Errorf("line %v: %w", lineNum, err)
		}
		res = append(res, a)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
