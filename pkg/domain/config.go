package domain

import (
	"fmt"
	"strings"
)

// Transition maps an event to the state it leads to.
type Transition struct {
	Event  string `json:"event" yaml:"event" mapstructure:"event"`
	Target string `json:"target" yaml:"target" mapstructure:"target"`
}

// StateDef is a single state of the machine and its transition table.
// Transitions keep the order in which they were declared.
type StateDef struct {
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Transitions []Transition `json:"transitions" yaml:"transitions"`
}

// Target returns the state registered for event, if any.
func (s StateDef) Target(event string) (string, bool) {
	for _, t := range s.Transitions {
		if t.Event == event {
			return t.Target, true
		}
	}
	return "", false
}

// Handles reports whether the transition table contains event.
func (s StateDef) Handles(event string) bool {
	_, ok := s.Target(event)
	return ok
}

// Config is the immutable definition a machine is built from.
// States are kept in declaration order; that order is observable through
// the state listing operations.
type Config struct {
	Initial string     `json:"initial" yaml:"initial"`
	States  []StateDef `json:"states" yaml:"states"`
}

// StateNames returns the configured state names in declaration order.
func (c *Config) StateNames() []string {
	names := make([]string, 0, len(c.States))
	for _, s := range c.States {
		names = append(names, s.Name)
	}
	return names
}

// Lookup returns the definition of the named state.
func (c *Config) Lookup(name string) (StateDef, bool) {
	for _, s := range c.States {
		if s.Name == name {
			return s, true
		}
	}
	return StateDef{}, false
}

// Validate checks the definition for consistency: the initial state must be
// configured, state names must be unique and non-empty, and every transition
// must target a configured state.
//
// Machines do not require a valid config to be constructed; loaders and tools
// call Validate when they want the stricter contract.
func (c *Config) Validate() error {
	if c == nil {
		return &ConfigurationError{Reason: "config is nil"}
	}

	var problems []string
	known := make(map[string]bool, len(c.States))
	for i, s := range c.States {
		if s.Name == "" {
			problems = append(problems, fmt.Sprintf("state #%d has an empty name", i))
			continue
		}
		if known[s.Name] {
			problems = append(problems, fmt.Sprintf("state '%s' is declared more than once", s.Name))
		}
		known[s.Name] = true
	}

	if c.Initial == "" {
		problems = append(problems, "initial state is empty")
	} else if !known[c.Initial] {
		problems = append(problems, fmt.Sprintf("initial state '%s' is not a configured state", c.Initial))
	}

	for _, s := range c.States {
		seen := make(map[string]bool, len(s.Transitions))
		for _, t := range s.Transitions {
			if t.Event == "" {
				problems = append(problems, fmt.Sprintf("state '%s' has a transition with an empty event", s.Name))
				continue
			}
			if seen[t.Event] {
				problems = append(problems, fmt.Sprintf("state '%s' declares event '%s' more than once", s.Name, t.Event))
			}
			seen[t.Event] = true
			if !known[t.Target] {
				problems = append(problems, fmt.Sprintf("transition '%s' from '%s' targets unknown state '%s'", t.Event, s.Name, t.Target))
			}
		}
	}

	if len(problems) > 0 {
		return &ConfigurationError{Reason: strings.Join(problems, "; ")}
	}
	return nil
}
