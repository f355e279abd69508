package rewind

import (
	"io"
	"log/slog"

	"github.com/aretw0/rewind/internal/runtime"
	"github.com/aretw0/rewind/pkg/domain"
	"github.com/aretw0/rewind/pkg/loader"
)

// Version is the library version reported by the CLI and adapters.
const Version = "0.3.0"

// Machine is the high-level entry point for the rewind library.
// It wraps the internal runtime engine and adds naming and logging setup.
//
// A Machine is not safe for concurrent use; see pkg/session for serialised,
// persisted access.
type Machine struct {
	engine *runtime.Engine
	config *domain.Config
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	Name   string
}

// Option defines a functional option for configuring the Machine.
type Option func(*Machine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Machine) {
		m.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the machine.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithName labels the machine; the name is attached to every log record.
func WithName(name string) Option {
	return func(m *Machine) {
		m.Name = name
	}
}

// New builds a machine from an in-memory definition.
// It fails with a ConfigurationError when cfg is nil.
func New(cfg *domain.Config, opts ...Option) (*Machine, error) {
	m := configure(cfg, opts)
	engine, err := runtime.NewEngine(cfg, m.runtimeOptions()...)
	if err != nil {
		return nil, err
	}
	m.engine = engine
	return m, nil
}

// Restore rebuilds a machine from a persisted snapshot.
func Restore(cfg *domain.Config, snap *domain.Snapshot, opts ...Option) (*Machine, error) {
	m := configure(cfg, opts)
	engine, err := runtime.Restore(cfg, snap, m.runtimeOptions()...)
	if err != nil {
		return nil, err
	}
	m.engine = engine
	return m, nil
}

// Load reads and validates a definition file (YAML or JSON) and builds a
// machine from it. The machine is named after the file unless WithName is given.
func Load(path string, opts ...Option) (*Machine, error) {
	cfg, err := loader.LoadFile(path, loader.Strict())
	if err != nil {
		return nil, err
	}
	return New(cfg, append([]Option{WithName(loader.NameOf(path))}, opts...)...)
}

func configure(cfg *domain.Config, opts []Option) *Machine {
	m := &Machine{config: cfg}
	for _, opt := range opts {
		opt(m)
	}

	// Ensure logger is initialized (so we don't pass nil to runtime, which would overwrite its default)
	if m.logger == nil {
		m.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if m.Name != "" {
		m.logger = m.logger.With("machine", m.Name)
	}
	return m
}

func (m *Machine) runtimeOptions() []runtime.EngineOption {
	return []runtime.EngineOption{
		runtime.WithLifecycleHooks(m.hooks),
		runtime.WithLogger(m.logger),
	}
}

// Config returns the definition the machine was built from.
func (m *Machine) Config() *domain.Config {
	return m.config
}

// State returns the active state.
func (m *Machine) State() string {
	return m.engine.State()
}

// AllStates returns every configured state in declaration order.
func (m *Machine) AllStates() []string {
	return m.engine.AllStates()
}

// IsStateKnown reports whether state is configured.
func (m *Machine) IsStateKnown(state string) bool {
	return m.engine.IsStateKnown(state)
}

// ChangeState moves directly to state. It fails with an UnknownStateError,
// leaving the machine untouched, when state is not configured.
func (m *Machine) ChangeState(state string) error {
	return m.engine.ChangeState(state)
}

// Trigger follows the active state's transition for event. It fails with a
// NoSuchTransitionError, leaving the machine untouched, when there is none.
func (m *Machine) Trigger(event string) error {
	return m.engine.Trigger(event)
}

// CanTrigger reports whether Trigger(event) would succeed.
func (m *Machine) CanTrigger(event string) bool {
	return m.engine.CanTrigger(event)
}

// Reset returns to the initial state and truncates the history.
func (m *Machine) Reset() {
	m.engine.Reset()
}

// StatesForEvent returns the states that declare event, or all states when
// called without an argument.
func (m *Machine) StatesForEvent(event ...string) []string {
	return m.engine.StatesForEvent(event...)
}

// Undo steps back one history entry. It returns false when there is nothing to undo.
func (m *Machine) Undo() bool {
	return m.engine.Undo()
}

// Redo re-applies the last undone state. It returns false unless the
// previous mutating operation was an undo and something is left to redo.
func (m *Machine) Redo() bool {
	return m.engine.Redo()
}

// CanUndo reports whether Undo would succeed.
func (m *Machine) CanUndo() bool {
	return m.engine.CanUndo()
}

// CanRedo reports whether Redo would succeed.
func (m *Machine) CanRedo() bool {
	return m.engine.CanRedo()
}

// ClearHistory resets the history to the initial state alone.
func (m *Machine) ClearHistory() {
	m.engine.ClearHistory()
}

// History returns a copy of the history, oldest first.
func (m *Machine) History() []string {
	return m.engine.History()
}

// RedoStack returns a copy of the redo stack.
func (m *Machine) RedoStack() []string {
	return m.engine.RedoStack()
}

// Describe returns the definition of a configured state.
func (m *Machine) Describe(state string) (domain.StateDef, bool) {
	return m.engine.Definition(state)
}

// Snapshot captures the machine's mutable state for persistence.
func (m *Machine) Snapshot() *domain.Snapshot {
	return m.engine.Snapshot()
}
