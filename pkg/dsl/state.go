package dsl

import (
	"github.com/aretw0/rewind"
	"github.com/aretw0/rewind/pkg/domain"
)

// StateBuilder provides a fluent API for configuring a state.
type StateBuilder struct {
	def     domain.StateDef
	builder *Builder
}

// Describe sets the human readable description of the state.
func (s *StateBuilder) Describe(text string) *StateBuilder {
	s.def.Description = text
	return s
}

// On adds a transition taken when event fires in this state.
// Declaring the same event twice keeps the first target, as loaders do.
func (s *StateBuilder) On(event string, target string) *StateBuilder {
	if s.def.Handles(event) {
		return s
	}
	s.def.Transitions = append(s.def.Transitions, domain.Transition{
		Event:  event,
		Target: target,
	})
	return s
}

// Add declares the next state, so a whole definition reads as one chain.
func (s *StateBuilder) Add(name string) *StateBuilder {
	return s.builder.Add(name)
}

// Build finishes the chain.
func (s *StateBuilder) Build() (*domain.Config, error) {
	return s.builder.Build()
}

// Machine finishes the chain and builds a machine.
func (s *StateBuilder) Machine(opts ...rewind.Option) (*rewind.Machine, error) {
	return s.builder.Machine(opts...)
}
