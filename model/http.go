package model

type ErrorResponse struct {
	Error string `json:"detail"`
}

type UploadRequestBody struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type BeatRequestBody struct {
	Beat float64 `json:"beat"`
}

// AudioRequestBody selects a recording either by a ready URI or by an
// object key to presign.
type AudioRequestBody struct {
	URI string `json:"uri"`
	Key string `json:"key"`
}

type SyncResponse struct {
	Received int      `json:"received"`
	Scores   []string `json:"scores"`
}
