package reducer

import (
	"io"
	"os"
	"testing"

	"github.com/jsphweid/practice/model"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	SetOutput(io.Discard)
	os.Exit(m.Run())
}

func sampleState() model.State {
	return model.State{
		Playing:            true,
		Tempo:              92,
		BeatsPerMeasure:    3,
		Score:              "a.musicxml",
		AccompanimentSound: "strings",
		Scores:             []string{"a.musicxml", "b.musicxml"},
		ScoreContents:      map[string]string{"a.musicxml": "<a/>"},
		ReferenceAudioURI:  "https://example.com/ref.mp3",
		BottomAudioURI:     "https://example.com/bottom.mp3",
		EstimatedBeat:      7.5,
		ResetScore:         false,
		LoadingPerformance: false,
	}
}

type unknownAction struct{}

func (unknownAction) Type() string { return "something_else" }

func TestUnrecognizedActionsAreIdentity(t *testing.T) {
	cases := []model.Action{
		model.Unrecognized{Tag: "nope"},
		model.Unrecognized{},
		unknownAction{},
		nil,
	}

	for _, a := range cases {
		s := sampleState()
		assert.Equal(t, sampleState(), Reduce(s, a))
	}
}

func TestStartStopFlipsPlaying(t *testing.T) {
	assert := assert.New(t)
	s := sampleState()

	res := Reduce(s, model.StartStop{})
	assert.False(res.Playing)

	expected := sampleState()
	expected.Playing = false
	assert.Equal(expected, res)

	assert.True(Reduce(res, model.StartStop{}).Playing)
}

func TestUpdatePieceInfo(t *testing.T) {
	assert := assert.New(t)
	res := Reduce(sampleState(), model.UpdatePieceInfo{Tempo: 120, BeatsPerMeasure: 6})

	expected := sampleState()
	expected.Tempo = 120
	expected.BeatsPerMeasure = 6
	assert.Equal(expected, res)
}

func TestChangeScoreStopsPlayback(t *testing.T) {
	assert := assert.New(t)
	s := sampleState()
	res := Reduce(s, model.ChangeScore{Score: "hark.musicxml", AccompanimentSound: "piano"})

	assert.False(res.Playing)
	assert.Equal("hark.musicxml", res.Score)
	assert.Equal("piano", res.AccompanimentSound)
	assert.Equal(s.Tempo, res.Tempo)
	assert.Equal(s.Scores, res.Scores)
	assert.Equal(s.EstimatedBeat, res.EstimatedBeat)
}

func TestNewScoresFromBackendAppendsOnlyNewOnes(t *testing.T) {
	assert := assert.New(t)
	res := Reduce(sampleState(), model.NewScoresFromBackend{Scores: []string{"b.musicxml", "c.musicxml"}})
	assert.Equal([]string{"a.musicxml", "b.musicxml", "c.musicxml"}, res.Scores)
}

func TestNewScoresFromBackendKeepsRepeatsWithinBatch(t *testing.T) {
	assert := assert.New(t)
	incoming := []string{"d.musicxml", "a.musicxml", "c.musicxml", "d.musicxml"}
	res := Reduce(sampleState(), model.NewScoresFromBackend{Scores: incoming})
	assert.Equal([]string{"a.musicxml", "b.musicxml", "d.musicxml", "c.musicxml", "d.musicxml"}, res.Scores)
}

func TestNewScoresFromBackendOnEmptyState(t *testing.T) {
	assert := assert.New(t)
	res := Reduce(model.State{}, model.NewScoresFromBackend{Scores: []string{"x", "y"}})
	assert.Equal([]string{"x", "y"}, res.Scores)
}

func TestNewScoreFromUpload(t *testing.T) {
	assert := assert.New(t)
	s := model.State{Scores: []string{}, ScoreContents: map[string]string{}}
	upload := model.UploadedScore{Filename: "x.musicxml", Content: "<score/>"}

	res := Reduce(s, model.NewScoreFromUpload{Score: upload})
	assert.Equal([]string{"x.musicxml"}, res.Scores)
	assert.Equal("x.musicxml", res.Score)
	assert.Equal(map[string]string{"x.musicxml": "<score/>"}, res.ScoreContents)
}

func TestNewScoreFromUploadKeepsOtherContents(t *testing.T) {
	assert := assert.New(t)
	upload := model.UploadedScore{Filename: "x.musicxml", Content: "<x/>"}
	res := Reduce(sampleState(), model.NewScoreFromUpload{Score: upload})

	assert.Equal(map[string]string{"a.musicxml": "<a/>", "x.musicxml": "<x/>"}, res.ScoreContents)
	for filename := range res.ScoreContents {
		assert.Contains(res.Scores, filename)
	}
}

func TestNewScoreFromUploadWithNilContents(t *testing.T) {
	assert := assert.New(t)
	upload := model.UploadedScore{Filename: "x.musicxml", Content: "<x/>"}
	res := Reduce(model.State{}, model.NewScoreFromUpload{Score: upload})
	assert.Equal("<x/>", res.ScoreContents["x.musicxml"])
}

func TestAudioAndBeatReplacements(t *testing.T) {
	assert := assert.New(t)
	s := sampleState()

	res := Reduce(s, model.ChangeReferenceAudio{ReferenceAudioURI: "ref2"})
	assert.Equal("ref2", res.ReferenceAudioURI)
	assert.Equal(s.BottomAudioURI, res.BottomAudioURI)

	res = Reduce(s, model.ChangeBottomAudio{BottomAudioURI: "bottom2"})
	assert.Equal("bottom2", res.BottomAudioURI)
	assert.Equal(s.ReferenceAudioURI, res.ReferenceAudioURI)

	res = Reduce(s, model.SetEstimatedBeat{Payload: 12.25})
	assert.Equal(12.25, res.EstimatedBeat)
	assert.Equal(s.Playing, res.Playing)
}

func TestResetScore(t *testing.T) {
	for _, playing := range []bool{true, false} {
		for _, reset := range []bool{true, false} {
			s := sampleState()
			s.Playing = playing
			s.ResetScore = reset

			res := Reduce(s, model.ResetScore{})
			assert.False(t, res.Playing)
			assert.True(t, res.ResetScore)
		}
	}
}

func TestToggleLoadingPerformanceTwiceIsOriginal(t *testing.T) {
	assert := assert.New(t)
	s := sampleState()

	once := Reduce(s, model.ToggleLoadingPerformance{})
	assert.True(once.LoadingPerformance)

	twice := Reduce(once, model.ToggleLoadingPerformance{})
	assert.Equal(sampleState(), twice)
}

func TestReduceNeverMutatesInput(t *testing.T) {
	actions := []model.Action{
		model.StartStop{},
		model.UpdatePieceInfo{Tempo: 60, BeatsPerMeasure: 2},
		model.ChangeScore{Score: "b.musicxml", AccompanimentSound: "organ"},
		model.NewScoresFromBackend{Scores: []string{"c.musicxml"}},
		model.NewScoreFromUpload{Score: model.UploadedScore{Filename: "u.musicxml", Content: "<u/>"}},
		model.ChangeReferenceAudio{ReferenceAudioURI: "r"},
		model.SetEstimatedBeat{Payload: 1},
		model.ResetScore{},
		model.ChangeBottomAudio{BottomAudioURI: "b"},
		model.ToggleLoadingPerformance{},
	}

	for _, a := range actions {
		t.Run(a.Type(), func(t *testing.T) {
			// spare capacity makes an in-place append observable
			scores := make([]string, 2, 8)
			copy(scores, []string{"a.musicxml", "b.musicxml"})
			s := sampleState()
			s.Scores = scores

			Reduce(s, a)

			assert := assert.New(t)
			assert.Equal([]string{"a.musicxml", "b.musicxml"}, s.Scores)
			assert.Equal(map[string]string{"a.musicxml": "<a/>"}, s.ScoreContents)
			assert.Equal([]string{"a.musicxml", "b.musicxml"}, scores[:2])
			assert.Equal("", scores[:3][2])
		})
	}
}

func TestReduceIsDeterministic(t *testing.T) {
	a := model.NewScoresFromBackend{Scores: []string{"z.musicxml"}}
	assert.Equal(t, Reduce(sampleState(), a), Reduce(sampleState(), a))
}
