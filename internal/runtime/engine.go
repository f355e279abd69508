package runtime

import (
	"io"
	"log/slog"
	"slices"

	"github.com/aretw0/rewind/pkg/domain"
)

// Engine is the core state machine: it validates and applies state changes
// and keeps the history used by Undo and Redo.
//
// An Engine is single-actor. It performs no locking; callers sharing one
// instance must serialise access themselves (see pkg/session).
type Engine struct {
	initial     string
	states      []domain.StateDef
	transitions map[string]map[string]string

	active      string
	history     []string
	redo        []string
	lastWasUndo bool

	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger. A nil logger is ignored.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// NewEngine creates an engine positioned on the configured initial state.
// The history is seeded with the initial state and the redo stack is empty.
func NewEngine(cfg *domain.Config, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		return nil, &domain.ConfigurationError{Reason: "config isn't passed"}
	}

	e := &Engine{
		initial:     cfg.Initial,
		states:      cloneStates(cfg.States),
		transitions: make(map[string]map[string]string, len(cfg.States)),
		active:      cfg.Initial,
		history:     []string{cfg.Initial},
		redo:        []string{},
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, s := range e.states {
		if _, dup := e.transitions[s.Name]; dup {
			continue // first declaration wins
		}
		table := make(map[string]string, len(s.Transitions))
		for _, t := range s.Transitions {
			if _, ok := table[t.Event]; !ok {
				table[t.Event] = t.Target
			}
		}
		e.transitions[s.Name] = table
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Restore rebuilds an engine from a snapshot taken by Snapshot.
// Every state named by the snapshot must be one the config can produce:
// a configured state, the initial state or a transition target.
func Restore(cfg *domain.Config, snap *domain.Snapshot, opts ...EngineOption) (*Engine, error) {
	e, err := NewEngine(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, &domain.ConfigurationError{Reason: "snapshot isn't passed"}
	}
	if len(snap.History) == 0 {
		return nil, &domain.ConfigurationError{Reason: "snapshot history is empty"}
	}

	reachable := e.reachableNames()
	check := func(field, name string) error {
		if !reachable[name] {
			return &domain.ConfigurationError{Reason: "snapshot " + field + " references unknown state '" + name + "'"}
		}
		return nil
	}

	if err := check("active state", snap.Active); err != nil {
		return nil, err
	}
	for _, name := range snap.History {
		if err := check("history", name); err != nil {
			return nil, err
		}
	}
	for _, name := range snap.Redo {
		if err := check("redo stack", name); err != nil {
			return nil, err
		}
	}

	e.active = snap.Active
	e.history = slices.Clone(snap.History)
	e.redo = append([]string{}, snap.Redo...)
	e.lastWasUndo = snap.LastWasUndo
	return e, nil
}

// Snapshot returns a deep copy of the engine's mutable state.
func (e *Engine) Snapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Active:      e.active,
		History:     slices.Clone(e.history),
		Redo:        append([]string{}, e.redo...),
		LastWasUndo: e.lastWasUndo,
	}
}

// State returns the active state.
func (e *Engine) State() string {
	return e.active
}

// Initial returns the configured initial state.
func (e *Engine) Initial() string {
	return e.initial
}

// AllStates returns every configured state in declaration order.
func (e *Engine) AllStates() []string {
	names := make([]string, 0, len(e.states))
	for _, s := range e.states {
		names = append(names, s.Name)
	}
	return names
}

// IsStateKnown reports whether state is a configured state.
func (e *Engine) IsStateKnown(state string) bool {
	_, ok := e.transitions[state]
	return ok
}

// Definition returns the definition of the named state.
func (e *Engine) Definition(state string) (domain.StateDef, bool) {
	for _, s := range e.states {
		if s.Name == state {
			return s, true
		}
	}
	return domain.StateDef{}, false
}

func (e *Engine) reachableNames() map[string]bool {
	names := map[string]bool{e.initial: true}
	for _, s := range e.states {
		names[s.Name] = true
		for _, t := range s.Transitions {
			names[t.Target] = true
		}
	}
	return names
}

func cloneStates(src []domain.StateDef) []domain.StateDef {
	out := make([]domain.StateDef, len(src))
	for i, s := range src {
		out[i] = s
		out[i].Transitions = slices.Clone(s.Transitions)
	}
	return out
}
