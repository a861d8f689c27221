package model

// State is the shared application state read by the score display and the
// audio engine. It is replaced, never modified, on every dispatched action.
type State struct {
	Playing            bool              `json:"playing"`
	Tempo              float64           `json:"tempo"`
	BeatsPerMeasure    int               `json:"beatsPerMeasure"`
	Score              string            `json:"score"`
	AccompanimentSound string            `json:"accompanimentSound"`
	Scores             []string          `json:"scores"`
	ScoreContents      map[string]string `json:"scoreContents"`
	ReferenceAudioURI  string            `json:"referenceAudioUri"`
	BottomAudioURI     string            `json:"bottomAudioUri"`
	EstimatedBeat      float64           `json:"estimatedBeat"`
	ResetScore         bool              `json:"resetScore"`
	LoadingPerformance bool              `json:"loadingPerformance"`
}

const (
	DefaultTempo              = 100
	DefaultBeatsPerMeasure    = 4
	DefaultAccompanimentSound = "piano"
)

// InitialState is the state at application start. scoreNames should be the
// bundled fixture names in display order; the first one is selected.
func InitialState(scoreNames []string) State {
	s := State{
		Tempo:              DefaultTempo,
		BeatsPerMeasure:    DefaultBeatsPerMeasure,
		AccompanimentSound: DefaultAccompanimentSound,
		Scores:             append([]string{}, scoreNames...),
		ScoreContents:      make(map[string]string),
	}
	if len(scoreNames) > 0 {
		s.Score = scoreNames[0]
	}
	return s
}
