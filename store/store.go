// Package store owns the running application state. It is the single writer
// that applies actions one at a time through reducer.Reduce.
package store

import (
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/jsphweid/practice/lag"
	"github.com/jsphweid/practice/metrics"
	"github.com/jsphweid/practice/model"
	"github.com/jsphweid/practice/reducer"
)

type Store struct {
	mu          sync.Mutex
	state       model.State
	subscribers map[int]func(model.State)
	nextSub     int
	version     uint64

	// notifyMu orders notifications; notified is the newest version sent
	notifyMu sync.Mutex
	notified uint64

	beatMu      sync.Mutex
	pendingBeat float64
	beatSeq     int
	debounced   func(f func())
	started     time.Time
	now         func() time.Time
	logger      *log.Logger
}

type Option func(*Store)

// WithBeatDebounce sets the window within which estimated beat updates are
// coalesced. Zero dispatches every update.
func WithBeatDebounce(d time.Duration) Option {
	return func(s *Store) {
		if d <= 0 {
			s.debounced = func(f func()) { f() }
			return
		}
		s.debounced = debounce.New(d)
	}
}

func WithLogOutput(w io.Writer) Option {
	return func(s *Store) {
		s.logger.SetOutput(w)
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
		s.started = now()
	}
}

func New(initial model.State, opts ...Option) *Store {
	s := &Store{
		state:       initial,
		subscribers: make(map[int]func(model.State)),
		now:         time.Now,
		logger:      log.New(os.Stderr, "", log.LstdFlags),
	}
	s.started = s.now()
	WithBeatDebounce(10 * time.Millisecond)(s)
	for _, opt := range opts {
		opt(s)
	}
	metrics.KnownScores.Set(float64(len(initial.Scores)))
	return s
}

func (s *Store) State() model.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies a and returns the new state. Subscribers are called after
// the state is replaced, one dispatch at a time, and never see a state older
// than one they were already given: when dispatches race, a notification
// that has been overtaken is dropped. Subscribers must not dispatch or modify
// the slices or maps of the state they receive.
func (s *Store) Dispatch(a model.Action) model.State {
	s.mu.Lock()
	next := reducer.Reduce(s.state, a)
	s.state = next
	s.version += 1
	version := s.version
	subs := make([]func(model.State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	if a != nil {
		metrics.ActionsDispatched.WithLabelValues(metrics.KnownType(a.Type(), model.IsKnown(a))).Inc()
	}

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if version < s.notified {
		return next
	}
	s.notified = version
	metrics.KnownScores.Set(float64(len(next.Scores)))
	for _, fn := range subs {
		fn(next)
	}
	return next
}

// Subscribe registers fn to be called with every new state. The returned
// function removes it.
func (s *Store) Subscribe(fn func(model.State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub += 1
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// DispatchBeat records an estimated beat from the analysis process. Updates
// arriving within the debounce window collapse into one SET_ESTIMATED_BEAT
// carrying the most recent beat.
func (s *Store) DispatchBeat(beat float64) {
	metrics.BeatUpdatesReceived.Inc()
	s.beatMu.Lock()
	s.pendingBeat = beat
	s.beatMu.Unlock()
	s.debounced(s.flushBeat)
}

func (s *Store) flushBeat() {
	s.beatMu.Lock()
	beat := s.pendingBeat
	seq := s.beatSeq
	s.beatSeq += 1
	s.beatMu.Unlock()

	now := s.now()
	elapsed := now.Sub(s.started).Seconds()
	d := model.BeatDispatch{
		Beat:         beat,
		AudioTime:    elapsed,
		DispatchTime: now.UnixMilli(),
		Seq:          seq,
		HasSeq:       true,
	}
	s.logger.Println(lag.FormatDispatch(d, elapsed))
	metrics.BeatUpdatesDispatched.Inc()
	s.Dispatch(model.SetEstimatedBeat{Payload: beat})
}
