package domain

// Snapshot is the serialisable image of a machine's mutable state.
type Snapshot struct {
	// Active is the identifier of the active state.
	Active string `json:"active"`

	// History lists the states the machine was driven into, oldest first.
	// The last entry is the undo source.
	History []string `json:"history"`

	// Redo holds the states removed by undo, most recently undone last.
	Redo []string `json:"redo"`

	// LastWasUndo records whether the last mutating operation was an undo.
	// Redo is only permitted while it is set.
	LastWasUndo bool `json:"last_was_undo"`

	// Sealed carries an encrypted snapshot when a store middleware hides the
	// fields above. A sealed envelope has no history and never restores.
	Sealed string `json:"sealed,omitempty"`
}

// NewSnapshot creates the snapshot of a freshly constructed machine.
func NewSnapshot(initial string) *Snapshot {
	return &Snapshot{
		Active:  initial,
		History: []string{initial},
		Redo:    []string{},
	}
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	next := *s
	next.History = append([]string(nil), s.History...)
	next.Redo = append([]string{}, s.Redo...)
	return &next
}
