package model

const (
	TypeStartStop                = "start/stop"
	TypeUpdatePieceInfo          = "update_piece_info"
	TypeChangeScore              = "change_score"
	TypeNewScoresFromBackend     = "new_scores_from_backend"
	TypeNewScoreFromUpload       = "new_score_from_upload"
	TypeChangeReferenceAudio     = "change_reference_audio"
	TypeSetEstimatedBeat         = "SET_ESTIMATED_BEAT"
	TypeResetScore               = "RESET_SCORE"
	TypeChangeBottomAudio        = "change_bottom_audio"
	TypeToggleLoadingPerformance = "toggle_loading_performance"
)

// Action is one requested state change. Each variant carries exactly the
// fields its transition needs.
type Action interface {
	Type() string
}

type StartStop struct{}

type UpdatePieceInfo struct {
	Tempo           float64
	BeatsPerMeasure int
}

type ChangeScore struct {
	Score              string
	AccompanimentSound string
}

type NewScoresFromBackend struct {
	Scores []string
}

type UploadedScore struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type NewScoreFromUpload struct {
	Score UploadedScore
}

type ChangeReferenceAudio struct {
	ReferenceAudioURI string
}

type SetEstimatedBeat struct {
	Payload float64
}

type ResetScore struct{}

type ChangeBottomAudio struct {
	BottomAudioURI string
}

type ToggleLoadingPerformance struct{}

// Unrecognized carries a tag nothing handles. Reducing it is a no-op.
type Unrecognized struct {
	Tag string
}

func (StartStop) Type() string                { return TypeStartStop }
func (UpdatePieceInfo) Type() string          { return TypeUpdatePieceInfo }
func (ChangeScore) Type() string              { return TypeChangeScore }
func (NewScoresFromBackend) Type() string     { return TypeNewScoresFromBackend }
func (NewScoreFromUpload) Type() string       { return TypeNewScoreFromUpload }
func (ChangeReferenceAudio) Type() string     { return TypeChangeReferenceAudio }
func (SetEstimatedBeat) Type() string         { return TypeSetEstimatedBeat }
func (ResetScore) Type() string               { return TypeResetScore }
func (ChangeBottomAudio) Type() string        { return TypeChangeBottomAudio }
func (ToggleLoadingPerformance) Type() string { return TypeToggleLoadingPerformance }
func (u Unrecognized) Type() string           { return u.Tag }

// IsKnown reports whether a is one of the variants above other than
// Unrecognized.
func IsKnown(a Action) bool {
	switch a.(type) {
	case StartStop, UpdatePieceInfo, ChangeScore, NewScoresFromBackend, NewScoreFromUpload,
		ChangeReferenceAudio, SetEstimatedBeat, ResetScore, ChangeBottomAudio, ToggleLoadingPerformance:
		return true
	}
	return false
}
