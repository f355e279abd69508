package runtime_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/aretw0/rewind/internal/runtime"
	"github.com/aretw0/rewind/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_LifecycleHooks(t *testing.T) {
	var (
		entered  []string
		left     []string
		kinds    []domain.TransitionKind
		undos    []domain.HistoryEvent
		redos    []domain.HistoryEvent
		rejected []string
	)

	hooks := domain.LifecycleHooks{
		OnStateEnter: func(e *domain.StateEvent) {
			entered = append(entered, e.State)
			kinds = append(kinds, e.Kind)
		},
		OnStateLeave: func(e *domain.StateEvent) {
			left = append(left, e.State)
		},
		OnUndo: func(e *domain.HistoryEvent) {
			undos = append(undos, *e)
		},
		OnRedo: func(e *domain.HistoryEvent) {
			redos = append(redos, *e)
		},
		OnRejected: func(e *domain.RejectionEvent) {
			rejected = append(rejected, e.Operation)
		},
	}

	e, err := runtime.NewEngine(idleRunning(), runtime.WithLifecycleHooks(hooks))
	require.NoError(t, err)

	require.NoError(t, e.Trigger("start"))
	require.True(t, e.Undo())
	require.True(t, e.Redo())
	require.NoError(t, e.ChangeState("idle"))
	require.Error(t, e.Trigger("stop"))
	require.Error(t, e.ChangeState("missing"))

	assert.Equal(t, []string{"running", "idle", "running", "idle"}, entered)
	assert.Equal(t, []string{"idle", "running", "idle", "running"}, left)
	assert.Equal(t, []domain.TransitionKind{domain.KindTrigger, domain.KindUndo, domain.KindRedo, domain.KindDirect}, kinds)

	require.Len(t, undos, 1)
	assert.Equal(t, "running", undos[0].From)
	assert.Equal(t, "idle", undos[0].To)
	assert.Equal(t, domain.EventUndo, undos[0].Type)

	require.Len(t, redos, 1)
	assert.Equal(t, "idle", redos[0].From)
	assert.Equal(t, "running", redos[0].To)

	assert.Equal(t, []string{"trigger", "change_state"}, rejected)
}

func TestEngine_FailedUndoFiresNoHooks(t *testing.T) {
	calls := 0
	hooks := domain.LifecycleHooks{
		OnStateEnter: func(*domain.StateEvent) { calls++ },
		OnUndo:       func(*domain.HistoryEvent) { calls++ },
		OnRedo:       func(*domain.HistoryEvent) { calls++ },
	}
	e, err := runtime.NewEngine(idleRunning(), runtime.WithLifecycleHooks(hooks))
	require.NoError(t, err)

	assert.False(t, e.Undo())
	assert.False(t, e.Redo())
	assert.Zero(t, calls)
}

func TestEngine_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	e, err := runtime.NewEngine(idleRunning(), runtime.WithLogger(logger))
	require.NoError(t, err)

	require.NoError(t, e.Trigger("start"))
	require.Error(t, e.Trigger("start"))

	out := buf.String()
	assert.Contains(t, out, "state changed")
	assert.Contains(t, out, "to=running")
	assert.Contains(t, out, "operation rejected")
}
