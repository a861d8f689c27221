// Package reducer holds the single place where application state changes.
package reducer

import (
	"io"
	"log"
	"os"

	"github.com/jsphweid/practice/model"
	"github.com/jsphweid/practice/util"
)

var logger = log.New(os.Stderr, "", log.LstdFlags)

func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// Reduce returns the state that results from applying a to s. s is never
// modified; fields an action does not name are carried over as they are.
// Actions of a kind Reduce does not know leave the state unchanged.
func Reduce(s model.State, a model.Action) model.State {
	if a == nil {
		return s
	}
	logger.Printf("Received action: %v\n", a.Type())

	switch a := a.(type) {
	case model.StartStop:
		s.Playing = !s.Playing
	case model.UpdatePieceInfo:
		s.Tempo = a.Tempo
		s.BeatsPerMeasure = a.BeatsPerMeasure
	case model.ChangeScore:
		s.Score = a.Score
		s.AccompanimentSound = a.AccompanimentSound
		s.Playing = false
	case model.NewScoresFromBackend:
		newScores := util.Missing(s.Scores, a.Scores)
		logger.Printf("Adding %v new scores from backend: %v\n", len(newScores), newScores)
		s.Scores = appendScores(s.Scores, newScores...)
	case model.NewScoreFromUpload:
		logger.Printf("Adding uploaded score: %v\n", a.Score.Filename)
		s.Scores = appendScores(s.Scores, a.Score.Filename)
		s.Score = a.Score.Filename
		s.ScoreContents = withContent(s.ScoreContents, a.Score.Filename, a.Score.Content)
	case model.ChangeReferenceAudio:
		s.ReferenceAudioURI = a.ReferenceAudioURI
	case model.SetEstimatedBeat:
		s.EstimatedBeat = a.Payload
	case model.ResetScore:
		s.Playing = false
		s.ResetScore = true
	case model.ChangeBottomAudio:
		s.BottomAudioURI = a.BottomAudioURI
	case model.ToggleLoadingPerformance:
		s.LoadingPerformance = !s.LoadingPerformance
	}

	return s
}

// appendScores never writes into the backing array of scores, which may be
// shared with a previous state.
func appendScores(scores []string, more ...string) []string {
	res := make([]string, 0, len(scores)+len(more))
	res = append(res, scores...)
	return append(res, more...)
}

func withContent(contents map[string]string, filename string, content string) map[string]string {
	res := make(map[string]string, len(contents)+1)
	for k, v := range contents {
		res[k] = v
	}
	res[filename] = content
	return res
}
