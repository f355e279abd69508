package runtime

import (
	"github.com/aretw0/rewind/pkg/domain"
)

// ChangeState moves directly to state, bypassing the transition table.
// The redo stack is left untouched, but redo stays unavailable until the
// next undo.
func (e *Engine) ChangeState(state string) error {
	if !e.IsStateKnown(state) {
		err := &domain.UnknownStateError{State: state}
		e.reject("change_state", err)
		return err
	}
	e.enter(state, "", domain.KindDirect)
	return nil
}

// Trigger moves to the target registered for event under the active state.
func (e *Engine) Trigger(event string) error {
	target, ok := e.transitions[e.active][event]
	if !ok || target == "" {
		err := &domain.NoSuchTransitionError{State: e.active, Event: event}
		e.reject("trigger", err)
		return err
	}
	e.enter(target, event, domain.KindTrigger)
	return nil
}

// CanTrigger reports whether the active state has a transition for event.
func (e *Engine) CanTrigger(event string) bool {
	target, ok := e.transitions[e.active][event]
	return ok && target != ""
}

// Reset returns to the initial state and truncates the history to it.
// The redo stack is kept; it only becomes reachable again after an undo.
func (e *Engine) Reset() {
	from := e.active
	e.active = e.initial
	e.history = []string{e.initial}
	e.lastWasUndo = false

	e.logger.Debug("machine reset", "from", from, "to", e.initial)
	e.emitChange(from, e.initial, "", domain.KindReset)
}

// StatesForEvent returns the states whose transition table contains event,
// in declaration order. Without an event, or with an empty one, it returns
// every state. Only the first event argument is considered.
func (e *Engine) StatesForEvent(event ...string) []string {
	if len(event) == 0 || event[0] == "" {
		return e.AllStates()
	}

	var names []string
	for _, s := range e.states {
		if s.Handles(event[0]) {
			names = append(names, s.Name)
		}
	}
	if names == nil {
		names = []string{}
	}
	return names
}

// enter records a successful change or trigger.
func (e *Engine) enter(state, event string, kind domain.TransitionKind) {
	from := e.active
	e.history = append(e.history, state)
	e.active = state
	e.lastWasUndo = false

	e.logger.Debug("state changed", "from", from, "to", state, "event", event, "kind", string(kind))
	e.emitChange(from, state, event, kind)
}
