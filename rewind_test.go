package rewind_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/rewind"
	"github.com/aretw0/rewind/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idleRunning() *domain.Config {
	return &domain.Config{
		Initial: "idle",
		States: []domain.StateDef{
			{Name: "idle", Transitions: []domain.Transition{{Event: "start", Target: "running"}}},
			{Name: "running", Transitions: []domain.Transition{{Event: "stop", Target: "idle"}}},
		},
	}
}

func TestNew_NilConfig(t *testing.T) {
	_, err := rewind.New(nil)
	require.Error(t, err)
	assert.True(t, domain.IsConfigurationError(err))
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestMachine_Scenario(t *testing.T) {
	m, err := rewind.New(idleRunning())
	require.NoError(t, err)

	require.NoError(t, m.Trigger("start"))
	assert.Equal(t, "running", m.State())

	assert.True(t, m.Undo())
	assert.Equal(t, "idle", m.State())

	assert.True(t, m.Redo())
	assert.Equal(t, "running", m.State())

	require.NoError(t, m.ChangeState("idle"))
	assert.False(t, m.Redo(), "redo is gated on the previous operation being an undo")

	assert.Equal(t, []string{"idle"}, m.StatesForEvent("start"))
	assert.Equal(t, []string{"idle", "running"}, m.StatesForEvent())

	m.ClearHistory()
	assert.False(t, m.Undo())
}

func TestMachine_RejectionsLeaveStateUntouched(t *testing.T) {
	m, err := rewind.New(idleRunning())
	require.NoError(t, err)
	before := m.Snapshot()

	err = m.Trigger("stop")
	assert.True(t, domain.IsNoSuchTransitionError(err))
	var nst *domain.NoSuchTransitionError
	require.ErrorAs(t, err, &nst)
	assert.Equal(t, "idle", nst.State)
	assert.Equal(t, "stop", nst.Event)

	err = m.ChangeState("paused")
	assert.True(t, domain.IsUnknownStateError(err))

	assert.Equal(t, before, m.Snapshot())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toggle.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
initial: idle
states:
  idle:
    transitions:
      start: running
  running:
    description: Work in progress
    transitions:
      stop: idle
`), 0o644))

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	m, err := rewind.Load(path, rewind.WithLogger(logger))
	require.NoError(t, err)
	assert.Equal(t, "toggle", m.Name)
	assert.Equal(t, "idle", m.State())

	def, ok := m.Describe("running")
	require.True(t, ok)
	assert.Equal(t, "Work in progress", def.Description)

	require.NoError(t, m.Trigger("start"))
	assert.Contains(t, buf.String(), "machine=toggle")
}

func TestLoad_StrictRejectsDanglingTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
initial: idle
states:
  idle:
    transitions:
      start: nowhere
`), 0o644))

	_, err := rewind.Load(path)
	require.Error(t, err)
	assert.True(t, domain.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "nowhere")
}

func TestRestore_RoundTrip(t *testing.T) {
	m, err := rewind.New(idleRunning())
	require.NoError(t, err)
	require.NoError(t, m.Trigger("start"))
	require.True(t, m.Undo())

	restored, err := rewind.Restore(idleRunning(), m.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, m.State(), restored.State())
	assert.Equal(t, m.History(), restored.History())
	assert.True(t, restored.Redo())
	assert.Equal(t, "running", restored.State())
}
