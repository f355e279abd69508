package domain

import "time"

// EventType defines the category of the event.
type EventType string

const (
	EventStateEnter EventType = "state_enter"
	EventStateLeave EventType = "state_leave"
	EventUndo       EventType = "undo"
	EventRedo       EventType = "redo"
	EventRejected   EventType = "rejected"
)

// TransitionKind tells how a state change was requested.
type TransitionKind string

const (
	KindTrigger TransitionKind = "trigger" // event lookup in the transition table
	KindDirect  TransitionKind = "direct"  // explicit target state
	KindReset   TransitionKind = "reset"
	KindUndo    TransitionKind = "undo"
	KindRedo    TransitionKind = "redo"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// StateEvent represents entry into or exit from a state.
type StateEvent struct {
	EventBase
	State string         `json:"state"`
	From  string         `json:"from,omitempty"`
	To    string         `json:"to,omitempty"`
	Event string         `json:"event,omitempty"`
	Kind  TransitionKind `json:"kind"`
}

// HistoryEvent represents a successful undo or redo.
type HistoryEvent struct {
	EventBase
	From string `json:"from"`
	To   string `json:"to"`
}

// RejectionEvent represents an operation refused by validation.
type RejectionEvent struct {
	EventBase
	Operation string `json:"operation"`
	Err       error  `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
// Every callback is optional and invoked synchronously.
type LifecycleHooks struct {
	OnStateEnter func(*StateEvent)
	OnStateLeave func(*StateEvent)
	OnUndo       func(*HistoryEvent)
	OnRedo       func(*HistoryEvent)
	OnRejected   func(*RejectionEvent)
}
