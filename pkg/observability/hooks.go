package observability

import (
	"log/slog"

	"github.com/aretw0/rewind/pkg/domain"
)

// Chain combines hook sets; each callback runs the non-nil callbacks of every
// set in order.
func Chain(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		out.OnStateEnter = chain(out.OnStateEnter, h.OnStateEnter)
		out.OnStateLeave = chain(out.OnStateLeave, h.OnStateLeave)
		out.OnUndo = chain(out.OnUndo, h.OnUndo)
		out.OnRedo = chain(out.OnRedo, h.OnRedo)
		out.OnRejected = chain(out.OnRejected, h.OnRejected)
	}
	return out
}

func chain[E any](first, next func(*E)) func(*E) {
	switch {
	case first == nil:
		return next
	case next == nil:
		return first
	}
	return func(e *E) {
		first(e)
		next(e)
	}
}

// LoggingHooks logs transitions and navigation at Info and rejections at Warn.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateEnter: func(e *domain.StateEvent) {
			logger.Info("state_enter",
				"from", e.From,
				"to", e.To,
				"event", e.Event,
				"kind", e.Kind,
			)
		},
		OnUndo: func(e *domain.HistoryEvent) {
			logger.Info("undo", "from", e.From, "to", e.To)
		},
		OnRedo: func(e *domain.HistoryEvent) {
			logger.Info("redo", "from", e.From, "to", e.To)
		},
		OnRejected: func(e *domain.RejectionEvent) {
			logger.Warn("rejected", "op", e.Operation, "reason", Reason(e.Err), "err", e.Err)
		},
	}
}
