/*
Package rewind is a small, embeddable finite-state-machine engine with a linear,
navigable history.

Given a declarative map of states and their event-triggered transitions, a
Machine tracks the active state, validates every change and records where it
has been, so callers can step back with Undo and forward again with Redo.
It is meant to be embedded wherever an application needs deterministic,
auditable state changes instead of ad-hoc flags: UI state, workflow steps,
protocol stages.

# Concept

A machine moves in two ways:

  - Trigger(event) looks the event up in the active state's transition table.
  - ChangeState(state) jumps straight to a configured state.

Both append the new state to the history. Undo moves the newest history entry
onto a redo stack; Redo moves it back, but only while the last mutating
operation was an undo. Failed operations never mutate the machine and report
typed errors (see pkg/domain).

# Usage

	cfg := &domain.Config{
		Initial: "idle",
		States: []domain.StateDef{
			{Name: "idle", Transitions: []domain.Transition{{Event: "start", Target: "running"}}},
			{Name: "running", Transitions: []domain.Transition{{Event: "stop", Target: "idle"}}},
		},
	}

	m, err := rewind.New(cfg)
	if err != nil {
		log.Fatal(err)
	}

	_ = m.Trigger("start") // running
	m.Undo()               // idle
	m.Redo()               // running

Definitions can also be read from YAML or JSON files with Load (see
pkg/loader), persisted between runs with the stores in pkg/adapters, and
shared safely through pkg/session.
*/
package rewind
