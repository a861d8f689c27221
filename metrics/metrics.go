package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "practice"

var (
	ActionsDispatched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "actions_dispatched_total",
		Help:      "Actions applied to the state, by action type.",
	}, []string{"type"})

	BeatUpdatesReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "beat_updates_received_total",
		Help:      "Estimated beat updates received before coalescing.",
	})

	BeatUpdatesDispatched = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "beat_updates_dispatched_total",
		Help:      "Estimated beat updates dispatched after coalescing.",
	})

	KnownScores = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "known_scores",
		Help:      "Length of the score list in the current state.",
	})
)

// Register adds every collector to reg. Callers that never register still
// get working counters.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		ActionsDispatched,
		BeatUpdatesReceived,
		BeatUpdatesDispatched,
		KnownScores,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// KnownType collapses tags nothing handles into one label so a misbehaving
// client cannot grow the label set without bound.
func KnownType(tag string, recognized bool) string {
	if recognized {
		return tag
	}
	return "unrecognized"
}
