package runtime_test

import (
	"testing"

	"github.com/aretw0/rewind/internal/runtime"
	"github.com/aretw0/rewind/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// idleRunning is the two-state machine used across the engine tests.
func idleRunning() *domain.Config {
	return &domain.Config{
		Initial: "idle",
		States: []domain.StateDef{
			{Name: "idle", Transitions: []domain.Transition{{Event: "start", Target: "running"}}},
			{Name: "running", Transitions: []domain.Transition{{Event: "stop", Target: "idle"}}},
		},
	}
}

func newEngine(t *testing.T, cfg *domain.Config, opts ...runtime.EngineOption) *runtime.Engine {
	t.Helper()
	e, err := runtime.NewEngine(cfg, opts...)
	require.NoError(t, err)
	return e
}

func TestNewEngine_NilConfig(t *testing.T) {
	e, err := runtime.NewEngine(nil)
	assert.Nil(t, e)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.True(t, domain.IsConfigurationError(err))
}

func TestNewEngine_InitialState(t *testing.T) {
	e := newEngine(t, idleRunning())

	assert.Equal(t, "idle", e.State())
	assert.Equal(t, []string{"idle"}, e.History())
	assert.Empty(t, e.RedoStack())
	assert.False(t, e.CanUndo())
	assert.False(t, e.CanRedo())
}

func TestEngine_Queries(t *testing.T) {
	e := newEngine(t, idleRunning())

	assert.Equal(t, []string{"idle", "running"}, e.AllStates())
	assert.True(t, e.IsStateKnown("idle"))
	assert.True(t, e.IsStateKnown("running"))
	assert.False(t, e.IsStateKnown("paused"))
	assert.False(t, e.IsStateKnown(""))

	// Queries never mutate.
	before := e.Snapshot()
	_ = e.AllStates()
	_ = e.State()
	_ = e.IsStateKnown("idle")
	_ = e.StatesForEvent("start")
	assert.Equal(t, before, e.Snapshot())
}

func TestEngine_AllStatesKeepsDeclarationOrder(t *testing.T) {
	cfg := &domain.Config{
		Initial: "zulu",
		States: []domain.StateDef{
			{Name: "zulu"}, {Name: "alpha"}, {Name: "mike"}, {Name: "bravo"},
		},
	}
	e := newEngine(t, cfg)
	assert.Equal(t, []string{"zulu", "alpha", "mike", "bravo"}, e.AllStates())
}

func TestEngine_ConfigIsCopied(t *testing.T) {
	cfg := idleRunning()
	e := newEngine(t, cfg)

	cfg.States[0].Transitions[0].Target = "elsewhere"
	cfg.States = append(cfg.States, domain.StateDef{Name: "late"})

	require.NoError(t, e.Trigger("start"))
	assert.Equal(t, "running", e.State())
	assert.False(t, e.IsStateKnown("late"))
}

func TestEngine_ChangeState(t *testing.T) {
	e := newEngine(t, idleRunning())

	require.NoError(t, e.ChangeState("running"))
	assert.Equal(t, "running", e.State())
	assert.Equal(t, []string{"idle", "running"}, e.History())

	// A direct change to the active state is still recorded.
	require.NoError(t, e.ChangeState("running"))
	assert.Equal(t, []string{"idle", "running", "running"}, e.History())
}

func TestEngine_ChangeState_Unknown(t *testing.T) {
	e := newEngine(t, idleRunning())
	require.NoError(t, e.Trigger("start"))
	before := e.Snapshot()

	err := e.ChangeState("paused")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownState)

	var unknown *domain.UnknownStateError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "paused", unknown.State)

	assert.Equal(t, before, e.Snapshot(), "failed change must not mutate")
}

func TestEngine_Trigger(t *testing.T) {
	e := newEngine(t, idleRunning())

	require.NoError(t, e.Trigger("start"))
	assert.Equal(t, "running", e.State())
	require.NoError(t, e.Trigger("stop"))
	assert.Equal(t, "idle", e.State())
	assert.Equal(t, []string{"idle", "running", "idle"}, e.History())
}

func TestEngine_Trigger_NoSuchTransition(t *testing.T) {
	e := newEngine(t, idleRunning())
	before := e.Snapshot()

	tests := []string{"stop", "unknown", ""}
	for _, event := range tests {
		t.Run("event="+event, func(t *testing.T) {
			err := e.Trigger(event)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrNoSuchTransition)

			var nst *domain.NoSuchTransitionError
			require.ErrorAs(t, err, &nst)
			assert.Equal(t, "idle", nst.State)
			assert.Equal(t, event, nst.Event)

			assert.Equal(t, before, e.Snapshot())
		})
	}
}

func TestEngine_Trigger_UnconfiguredActiveState(t *testing.T) {
	// The initial state is not part of the state set; nothing can be triggered.
	cfg := &domain.Config{Initial: "ghost", States: idleRunning().States}
	e := newEngine(t, cfg)

	assert.Equal(t, "ghost", e.State())
	err := e.Trigger("start")
	assert.True(t, domain.IsNoSuchTransitionError(err))
}

func TestEngine_Trigger_TargetNotConfigured(t *testing.T) {
	cfg := &domain.Config{
		Initial: "a",
		States: []domain.StateDef{
			{Name: "a", Transitions: []domain.Transition{{Event: "jump", Target: "nowhere"}}},
		},
	}
	e := newEngine(t, cfg)

	require.NoError(t, e.Trigger("jump"))
	assert.Equal(t, "nowhere", e.State())
	assert.False(t, e.IsStateKnown("nowhere"))
}

func TestEngine_CanTrigger(t *testing.T) {
	e := newEngine(t, idleRunning())
	assert.True(t, e.CanTrigger("start"))
	assert.False(t, e.CanTrigger("stop"))
}

func TestEngine_StatesForEvent(t *testing.T) {
	e := newEngine(t, idleRunning())

	assert.Equal(t, []string{"idle"}, e.StatesForEvent("start"))
	assert.Equal(t, []string{"running"}, e.StatesForEvent("stop"))
	assert.Equal(t, []string{"idle", "running"}, e.StatesForEvent())
	assert.Empty(t, e.StatesForEvent("missing"))
	assert.NotNil(t, e.StatesForEvent("missing"))
}

func TestEngine_StatesForEvent_EmptyEventListsAll(t *testing.T) {
	e := newEngine(t, idleRunning())

	assert.Equal(t, []string{"idle", "running"}, e.StatesForEvent(""))
	assert.Equal(t, e.StatesForEvent(), e.StatesForEvent(""))
}

func TestEngine_Trigger_EmptyTarget(t *testing.T) {
	cfg := &domain.Config{
		Initial: "idle",
		States: []domain.StateDef{
			{Name: "idle", Transitions: []domain.Transition{{Event: "start", Target: ""}}},
		},
	}
	e := newEngine(t, cfg)

	assert.False(t, e.CanTrigger("start"))
	err := e.Trigger("start")
	require.Error(t, err)
	assert.True(t, domain.IsNoSuchTransitionError(err))
	assert.Equal(t, "idle", e.State())
	assert.Equal(t, []string{"idle"}, e.History())
}

func TestEngine_StatesForEvent_IgnoresReachability(t *testing.T) {
	cfg := &domain.Config{
		Initial: "a",
		States: []domain.StateDef{
			{Name: "a", Transitions: []domain.Transition{{Event: "go", Target: "b"}}},
			{Name: "b"},
			{Name: "c", Transitions: []domain.Transition{{Event: "go", Target: "missing"}}},
		},
	}
	e := newEngine(t, cfg)
	assert.Equal(t, []string{"a", "c"}, e.StatesForEvent("go"))
}

func TestEngine_Reset(t *testing.T) {
	e := newEngine(t, idleRunning())
	require.NoError(t, e.Trigger("start"))
	require.NoError(t, e.Trigger("stop"))
	require.NoError(t, e.Trigger("start"))
	require.True(t, e.Undo())

	e.Reset()

	assert.Equal(t, "idle", e.State())
	assert.Equal(t, []string{"idle"}, e.History())
	assert.False(t, e.Undo(), "history is truncated by reset")
	assert.Equal(t, []string{"running"}, e.RedoStack(), "reset keeps the redo stack")
	assert.False(t, e.Redo(), "reset is not an undo")
}
