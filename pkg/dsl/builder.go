package dsl

import (
	"fmt"

	"github.com/aretw0/rewind"
	"github.com/aretw0/rewind/pkg/domain"
)

// Builder manages the machine definition construction.
type Builder struct {
	initial string
	order   []string
	states  map[string]*StateBuilder
}

// New creates a new builder whose machine starts in initial.
func New(initial string) *Builder {
	return &Builder{
		initial: initial,
		states:  make(map[string]*StateBuilder),
	}
}

// Add declares a state. States keep the order of their first Add.
// If the state already exists, it returns the existing builder.
func (b *Builder) Add(name string) *StateBuilder {
	if sb, ok := b.states[name]; ok {
		return sb
	}
	sb := &StateBuilder{
		def:     domain.StateDef{Name: name},
		builder: b,
	}
	b.states[name] = sb
	b.order = append(b.order, name)
	return sb
}

// Build compiles the definition and validates it.
func (b *Builder) Build() (*domain.Config, error) {
	cfg := &domain.Config{
		Initial: b.initial,
		States:  make([]domain.StateDef, 0, len(b.order)),
	}
	for _, name := range b.order {
		def := b.states[name].def
		def.Transitions = append([]domain.Transition(nil), def.Transitions...)
		cfg.States = append(cfg.States, def)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to build definition: %w", err)
	}
	return cfg, nil
}

// Machine builds the definition and a machine from it.
func (b *Builder) Machine(opts ...rewind.Option) (*rewind.Machine, error) {
	cfg, err := b.Build()
	if err != nil {
		return nil, err
	}
	return rewind.New(cfg, opts...)
}
