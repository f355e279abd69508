package runtime

import (
	"time"

	"github.com/aretw0/rewind/pkg/domain"
)

func (e *Engine) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t}
}

// emitChange fires the leave/enter hooks for a state change.
func (e *Engine) emitChange(from, to, event string, kind domain.TransitionKind) {
	if e.hooks.OnStateLeave != nil {
		e.hooks.OnStateLeave(&domain.StateEvent{
			EventBase: e.base(domain.EventStateLeave),
			State:     from,
			From:      from,
			To:        to,
			Event:     event,
			Kind:      kind,
		})
	}
	if e.hooks.OnStateEnter != nil {
		e.hooks.OnStateEnter(&domain.StateEvent{
			EventBase: e.base(domain.EventStateEnter),
			State:     to,
			From:      from,
			To:        to,
			Event:     event,
			Kind:      kind,
		})
	}
}

func (e *Engine) reject(op string, err error) {
	e.logger.Debug("operation rejected", "op", op, "active", e.active, "err", err)
	if e.hooks.OnRejected != nil {
		e.hooks.OnRejected(&domain.RejectionEvent{
			EventBase: e.base(domain.EventRejected),
			Operation: op,
			Err:       err,
		})
	}
}
