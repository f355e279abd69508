package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/rewind/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Option configures decoding.
type Option func(*options)

type options struct {
	strict bool
}

// Strict makes the loader run domain.Config.Validate on the decoded definition.
func Strict() Option {
	return func(o *options) {
		o.strict = true
	}
}

// stateBody is the free-form part of a state entry.
// Transitions are decoded separately to keep their order.
type stateBody struct {
	Description string         `mapstructure:"description"`
	Transitions map[string]any `mapstructure:"transitions"`
}

// LoadFile reads a definition from disk. YAML and JSON are accepted;
// JSON is parsed as the YAML subset it is.
func LoadFile(path string, opts ...Option) (*domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}

	cfg, err := Decode(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// NameOf derives a machine name from a definition path ("flows/door.yaml" -> "door").
func NameOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Decode parses a definition document.
func Decode(data []byte, opts ...Option) (*domain.Config, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &domain.ConfigurationError{Reason: fmt.Sprintf("failed to parse definition: %v", err)}
	}
	if len(doc.Content) == 0 {
		return nil, &domain.ConfigurationError{Reason: "definition is empty"}
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &domain.ConfigurationError{Reason: "definition must be a mapping"}
	}

	cfg := &domain.Config{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "initial":
			if value.Kind != yaml.ScalarNode {
				return nil, nodeError(value, "initial must be a string")
			}
			cfg.Initial = value.Value
		case "states":
			states, err := decodeStates(value)
			if err != nil {
				return nil, err
			}
			cfg.States = states
		default:
			return nil, nodeError(key, fmt.Sprintf("unknown field '%s'", key.Value))
		}
	}

	if o.strict {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func decodeStates(node *yaml.Node) ([]domain.StateDef, error) {
	if node.Kind != yaml.MappingNode {
		return nil, nodeError(node, "states must be a mapping")
	}

	states := make([]domain.StateDef, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name, body := node.Content[i], node.Content[i+1]
		state, err := decodeState(name.Value, body)
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}
	return states, nil
}

func decodeState(name string, node *yaml.Node) (domain.StateDef, error) {
	state := domain.StateDef{Name: name, Transitions: []domain.Transition{}}

	// "idle:" with no body is a state without transitions.
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return state, nil
	}
	if node.Kind != yaml.MappingNode {
		return state, nodeError(node, fmt.Sprintf("state '%s' must be a mapping", name))
	}

	var raw map[string]any
	if err := node.Decode(&raw); err != nil {
		return state, nodeError(node, fmt.Sprintf("state '%s': %v", name, err))
	}

	var body stateBody
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &body,
		ErrorUnused: true,
	})
	if err != nil {
		return state, err
	}
	if err := decoder.Decode(raw); err != nil {
		return state, nodeError(node, fmt.Sprintf("state '%s': %v", name, err))
	}
	state.Description = body.Description

	transitions := lookup(node, "transitions")
	if transitions == nil || (transitions.Kind == yaml.ScalarNode && transitions.Tag == "!!null") {
		return state, nil
	}
	if transitions.Kind != yaml.MappingNode {
		return state, nodeError(transitions, fmt.Sprintf("transitions of state '%s' must be a mapping", name))
	}

	for i := 0; i+1 < len(transitions.Content); i += 2 {
		event, target := transitions.Content[i], transitions.Content[i+1]
		if target.Kind != yaml.ScalarNode {
			return state, nodeError(target, fmt.Sprintf("target of event '%s' in state '%s' must be a string", event.Value, name))
		}
		if target.Tag == "!!null" || target.Value == "" {
			return state, nodeError(target, fmt.Sprintf("target of event '%s' in state '%s' is empty", event.Value, name))
		}
		state.Transitions = append(state.Transitions, domain.Transition{Event: event.Value, Target: target.Value})
	}
	return state, nil
}

// lookup returns the value node stored under key in a mapping node.
func lookup(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

func nodeError(node *yaml.Node, msg string) error {
	return &domain.ConfigurationError{Reason: fmt.Sprintf("line %d: %s", node.Line, msg)}
}
