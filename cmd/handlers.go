package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jsphweid/practice/action"
	"github.com/jsphweid/practice/constants"
	"github.com/jsphweid/practice/midi"
	"github.com/jsphweid/practice/model"
	"github.com/jsphweid/practice/scores"
)

const musicXMLContentType = "application/vnd.recordare.musicxml+xml"

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		log.Printf("[%v] %v %v\n", id, r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Println("Could not encode response: " + err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, model.ErrorResponse{Error: detail})
}

func readBody(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, constants.MaxUploadBytes))
	if err != nil {
		return fmt.Errorf("could not read request body: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("could not unmarshal request body: %w", err)
	}
	return nil
}

func (s *server) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.State())
}

// latestOnly returns a subscriber that keeps at most one pending state in
// ch, replacing an unread one with the newer state.
func latestOnly(ch chan model.State) func(model.State) {
	return func(state model.State) {
		for {
			select {
			case ch <- state:
				return
			default:
			}
			select {
			case <-ch:
			default:
			}
		}
	}
}

// handleStateStream sends the current state and then every new state as
// server-sent events. A client too slow to keep up skips to the latest.
func (s *server) handleStateStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	updates := make(chan model.State, 1)
	unsubscribe := s.store.Subscribe(latestOnly(updates))
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	send := func(state model.State) bool {
		data, err := json.Marshal(state)
		if err != nil {
			return false
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !send(s.store.State()) {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case state := <-updates:
			if !send(state) {
				return
			}
		}
	}
}

func (s *server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, constants.MaxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	a, err := action.Decode(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.store.Dispatch(a))
}

func (s *server) handleListScores(w http.ResponseWriter, r *http.Request) {
	names := s.store.State().Scores
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *server) handleGetScore(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	content, ok := s.store.State().ScoreContents[name]
	if !ok {
		content, ok = scores.Get(name)
	}
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no score named %q", name))
		return
	}
	w.Header().Set("Content-Type", musicXMLContentType)
	io.WriteString(w, content)
}

func uploadFilename(requested string) string {
	name := strings.TrimSpace(requested)
	if name == "" {
		return "upload-" + uuid.NewString() + scores.Extension
	}
	return name
}

func (s *server) handleUpload(w http.ResponseWriter, r *http.Request) {
	var input model.UploadRequestBody
	if err := readBody(w, r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if input.Content == "" {
		writeError(w, http.StatusBadRequest, "score content is required")
		return
	}

	upload := model.UploadedScore{Filename: uploadFilename(input.Filename), Content: input.Content}
	if strings.ContainsAny(upload.Filename, "/\\") {
		writeError(w, http.StatusBadRequest, "filename must not contain a path")
		return
	}
	if s.library != nil {
		if err := s.library.Save(r.Context(), upload); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusCreated, s.store.Dispatch(model.NewScoreFromUpload{Score: upload}))
}

func (s *server) handleSync(w http.ResponseWriter, r *http.Request) {
	if s.backend == nil {
		writeError(w, http.StatusServiceUnavailable, "no score backend configured")
		return
	}
	names, err := s.backend.ListScoreNames(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	state := s.store.Dispatch(model.NewScoresFromBackend{Scores: names})
	writeJSON(w, http.StatusOK, model.SyncResponse{Received: len(names), Scores: state.Scores})
}

func (s *server) handleBeat(w http.ResponseWriter, r *http.Request) {
	var input model.BeatRequestBody
	if err := readBody(w, r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if input.Beat < 0 {
		writeError(w, http.StatusBadRequest, "beat must not be negative")
		return
	}
	s.store.DispatchBeat(input.Beat)
	w.WriteHeader(http.StatusAccepted)
}

var errNoPresigner = errors.New("recordings are not stored in a bucket; send a uri")

func (s *server) audioURI(r *http.Request, input model.AudioRequestBody) (string, error) {
	if input.URI != "" {
		return input.URI, nil
	}
	if input.Key == "" {
		return "", errors.New("uri or key is required")
	}
	if s.presigner == nil {
		return "", errNoPresigner
	}
	return s.presigner.URL(r.Context(), input.Key)
}

func (s *server) handleAudio(w http.ResponseWriter, r *http.Request) {
	var input model.AudioRequestBody
	if err := readBody(w, r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	uri, err := s.audioURI(r, input)
	if errors.Is(err, errNoPresigner) {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var a model.Action = model.ChangeReferenceAudio{ReferenceAudioURI: uri}
	if mux.Vars(r)["which"] == "bottom" {
		a = model.ChangeBottomAudio{BottomAudioURI: uri}
	}
	writeJSON(w, http.StatusOK, s.store.Dispatch(a))
}

func (s *server) handleClick(w http.ResponseWriter, r *http.Request) {
	measures := constants.DefaultClickMeasures
	if raw := r.URL.Query().Get("measures"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > constants.MaxClickMeasures {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("measures must be between 1 and %v", constants.MaxClickMeasures))
			return
		}
		measures = n
	}

	state := s.store.State()
	var buf bytes.Buffer
	if err := midi.WriteClickTrack(&buf, state.Tempo, state.BeatsPerMeasure, measures); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	w.Header().Set("Content-Type", "audio/midi")
	w.Header().Set("Content-Disposition", `attachment; filename="click.mid"`)
	w.Write(buf.Bytes())
}
