package observability

import (
	"github.com/aretw0/rewind/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rewind"

// Metrics holds the Prometheus collectors fed by lifecycle hooks.
type Metrics struct {
	transitions *prometheus.CounterVec
	undos       prometheus.Counter
	redos       prometheus.Counter
	rejected    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg leaves them unregistered, which is handy for tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transitions_total",
				Help:      "Total number of state changes, by origin, destination and kind.",
			},
			[]string{"from", "to", "kind"},
		),
		undos: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "undo_total",
			Help:      "Total number of successful undo operations.",
		}),
		redos: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redo_total",
			Help:      "Total number of successful redo operations.",
		}),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rejected_total",
				Help:      "Total number of operations refused by validation.",
			},
			[]string{"reason"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.transitions, m.undos, m.redos, m.rejected)
	}
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateEnter: func(e *domain.StateEvent) {
			m.transitions.WithLabelValues(e.From, e.To, string(e.Kind)).Inc()
		},
		OnUndo: func(*domain.HistoryEvent) {
			m.undos.Inc()
		},
		OnRedo: func(*domain.HistoryEvent) {
			m.redos.Inc()
		},
		OnRejected: func(e *domain.RejectionEvent) {
			m.rejected.WithLabelValues(Reason(e.Err)).Inc()
		},
	}
}

// Reason classifies a rejection error into a low-cardinality label value.
func Reason(err error) string {
	switch {
	case domain.IsUnknownStateError(err):
		return "unknown_state"
	case domain.IsNoSuchTransitionError(err):
		return "no_transition"
	case domain.IsConfigurationError(err):
		return "configuration"
	default:
		return "other"
	}
}
