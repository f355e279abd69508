package runtime

import (
	"slices"

	"github.com/aretw0/rewind/pkg/domain"
)

// Undo steps back to the previous history entry, moving the current one
// onto the redo stack. It returns false when there is nothing to undo.
func (e *Engine) Undo() bool {
	n := len(e.history)
	if n <= 1 {
		return false
	}

	from := e.active
	last := e.history[n-1]
	e.active = e.history[n-2]
	e.history = e.history[:n-1]
	e.redo = append(e.redo, last)
	e.lastWasUndo = true

	e.logger.Debug("undo", "from", from, "to", e.active, "redo_depth", len(e.redo))
	if e.hooks.OnUndo != nil {
		e.hooks.OnUndo(&domain.HistoryEvent{EventBase: e.base(domain.EventUndo), From: from, To: e.active})
	}
	e.emitChange(from, e.active, "", domain.KindUndo)
	return true
}

// Redo re-applies the most recently undone state. It is only available while
// the last mutating operation was an undo (or a redo following one) and the
// redo stack is not empty.
func (e *Engine) Redo() bool {
	if !e.CanRedo() {
		return false
	}

	from := e.active
	n := len(e.redo)
	next := e.redo[n-1]
	e.redo = e.redo[:n-1]
	e.history = append(e.history, next)
	e.active = next

	e.logger.Debug("redo", "from", from, "to", next, "redo_depth", len(e.redo))
	if e.hooks.OnRedo != nil {
		e.hooks.OnRedo(&domain.HistoryEvent{EventBase: e.base(domain.EventRedo), From: from, To: next})
	}
	e.emitChange(from, next, "", domain.KindRedo)
	return true
}

// CanUndo reports whether Undo would succeed.
func (e *Engine) CanUndo() bool {
	return len(e.history) > 1
}

// CanRedo reports whether Redo would succeed.
func (e *Engine) CanRedo() bool {
	return len(e.redo) > 0 && e.lastWasUndo
}

// ClearHistory resets the history to the initial state alone.
// The active state and the redo stack are untouched.
func (e *Engine) ClearHistory() {
	e.history = []string{e.initial}
	e.logger.Debug("history cleared", "active", e.active)
}

// History returns a copy of the history, oldest first.
func (e *Engine) History() []string {
	return slices.Clone(e.history)
}

// RedoStack returns a copy of the redo stack, most recently undone last.
func (e *Engine) RedoStack() []string {
	return append([]string{}, e.redo...)
}
