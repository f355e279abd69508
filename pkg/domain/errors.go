package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is matched by every ConfigurationError.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrUnknownState is matched by every UnknownStateError.
	ErrUnknownState = errors.New("unknown state")

	// ErrNoSuchTransition is matched by every NoSuchTransitionError.
	ErrNoSuchTransition = errors.New("no such transition")

	// ErrSessionNotFound is returned when a session ID cannot be found in the store.
	ErrSessionNotFound = errors.New("session not found")
)

// ConfigurationError reports a missing or inconsistent machine definition.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// Is makes errors.Is(err, ErrConfiguration) hold.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// UnknownStateError is returned by a direct change to a state that is not configured.
type UnknownStateError struct {
	State string
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("state '%s' does not exist", e.State)
}

// Is makes errors.Is(err, ErrUnknownState) hold.
func (e *UnknownStateError) Is(target error) bool {
	return target == ErrUnknownState
}

// NoSuchTransitionError is returned when the active state has no transition for an event.
type NoSuchTransitionError struct {
	State string
	Event string
}

func (e *NoSuchTransitionError) Error() string {
	return fmt.Sprintf("no transition from state '%s' for event '%s'", e.State, e.Event)
}

// Is makes errors.Is(err, ErrNoSuchTransition) hold.
func (e *NoSuchTransitionError) Is(target error) bool {
	return target == ErrNoSuchTransition
}

// IsConfigurationError reports whether err is, or wraps, a ConfigurationError.
func IsConfigurationError(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}

// IsUnknownStateError reports whether err is, or wraps, an UnknownStateError.
func IsUnknownStateError(err error) bool {
	var e *UnknownStateError
	return errors.As(err, &e)
}

// IsNoSuchTransitionError reports whether err is, or wraps, a NoSuchTransitionError.
func IsNoSuchTransitionError(err error) bool {
	var e *NoSuchTransitionError
	return errors.As(err, &e)
}
