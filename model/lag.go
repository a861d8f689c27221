package model

type BeatDispatch struct {
	Beat         float64
	AudioTime    float64
	DispatchTime int64
	Seq          int
	HasSeq       bool
}

type CursorRender struct {
	Beat       float64
	RenderTime int64
	Seq        int
	HasSeq     bool
}

type LagMatch struct {
	Beat         float64
	DispatchTime int64
	RenderTime   int64
	Lag          int64
}

type LagBreakdown struct {
	Excellent  int // < 16ms
	Good       int // 16-50ms
	Acceptable int // 50-100ms
	Poor       int // >= 100ms
	Negative   int
}
