package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/rewind"
	httpadapter "github.com/aretw0/rewind/pkg/adapters/http"
	"github.com/aretw0/rewind/pkg/adapters/memory"
	"github.com/aretw0/rewind/pkg/domain"
	"github.com/aretw0/rewind/pkg/observability"
	"github.com/aretw0/rewind/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doorConfig() *domain.Config {
	return &domain.Config{
		Initial: "closed",
		States: []domain.StateDef{
			{Name: "closed", Transitions: []domain.Transition{
				{Event: "open", Target: "opened"},
				{Event: "lock", Target: "locked"},
			}},
			{Name: "opened", Transitions: []domain.Transition{{Event: "close", Target: "closed"}}},
			{Name: "locked", Transitions: []domain.Transition{{Event: "unlock", Target: "closed"}}},
		},
	}
}

// deletingSessions removes the session right before every Update, the way a
// concurrent DELETE request would.
type deletingSessions struct {
	*session.Manager
}

func (d deletingSessions) Update(ctx context.Context, id string, fn func(*rewind.Machine) error) (*rewind.Machine, error) {
	if err := d.Manager.Delete(ctx, id); err != nil {
		return nil, err
	}
	return d.Manager.Update(ctx, id, fn)
}

func newServer(t *testing.T, opts ...httpadapter.Option) *httptest.Server {
	t.Helper()
	mgr := session.NewManager(doorConfig(), memory.NewStore())
	srv := httptest.NewServer(httpadapter.NewHandler(mgr, opts...))
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func createSession(t *testing.T, srv *httptest.Server) httpadapter.View {
	t.Helper()
	var view httpadapter.View
	status := call(t, srv, http.MethodPost, "/sessions", "", &view)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, view.ID)
	return view
}

func TestSessionLifecycle(t *testing.T) {
	srv := newServer(t)

	view := createSession(t, srv)
	assert.Equal(t, "closed", view.State)
	assert.Equal(t, []string{"closed"}, view.History)
	assert.False(t, view.CanUndo)

	base := "/sessions/" + view.ID

	status := call(t, srv, http.MethodPost, base+"/trigger", `{"event":"open"}`, &view)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "opened", view.State)

	status = call(t, srv, http.MethodPost, base+"/change", `{"state":"locked"}`, &view)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"closed", "opened", "locked"}, view.History)

	var nav httpadapter.NavigationResult
	status = call(t, srv, http.MethodPost, base+"/undo", "", &nav)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, nav.OK)
	assert.Equal(t, "opened", nav.State)
	assert.Equal(t, []string{"locked"}, nav.Redo)
	assert.True(t, nav.CanRedo)

	status = call(t, srv, http.MethodPost, base+"/redo", "", &nav)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, nav.OK)
	assert.Equal(t, "locked", nav.State)

	status = call(t, srv, http.MethodGet, base, "", &view)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "locked", view.State)

	status = call(t, srv, http.MethodPost, base+"/reset", "", &view)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "closed", view.State)
	assert.Equal(t, []string{"closed"}, view.History)

	status = call(t, srv, http.MethodDelete, base, "", nil)
	assert.Equal(t, http.StatusNoContent, status)

	status = call(t, srv, http.MethodGet, base, "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestNavigationNoop(t *testing.T) {
	srv := newServer(t)
	view := createSession(t, srv)

	var nav httpadapter.NavigationResult
	status := call(t, srv, http.MethodPost, "/sessions/"+view.ID+"/undo", "", &nav)
	assert.Equal(t, http.StatusOK, status)
	assert.False(t, nav.OK)
	assert.Equal(t, "closed", nav.State)

	status = call(t, srv, http.MethodPost, "/sessions/"+view.ID+"/redo", "", &nav)
	assert.Equal(t, http.StatusOK, status)
	assert.False(t, nav.OK)
}

func TestClearHistory(t *testing.T) {
	srv := newServer(t)
	view := createSession(t, srv)
	base := "/sessions/" + view.ID

	call(t, srv, http.MethodPost, base+"/trigger", `{"event":"open"}`, &view)
	status := call(t, srv, http.MethodPost, base+"/clear-history", "", &view)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "opened", view.State, "clearing history keeps the active state")
	assert.Equal(t, []string{"closed"}, view.History)
}

func TestErrorMapping(t *testing.T) {
	srv := newServer(t)
	view := createSession(t, srv)
	base := "/sessions/" + view.ID

	var errBody map[string]string
	status := call(t, srv, http.MethodPost, base+"/trigger", `{"event":"close"}`, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, errBody["error"], "no transition from state 'closed' for event 'close'")

	status = call(t, srv, http.MethodPost, base+"/change", `{"state":"ajar"}`, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, errBody["error"], "ajar")

	status = call(t, srv, http.MethodPost, base+"/trigger", `{not json`, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)

	status = call(t, srv, http.MethodPost, "/sessions/missing/trigger", `{"event":"open"}`, &errBody)
	assert.Equal(t, http.StatusNotFound, status)

	// Rejected operations leave the session as it was.
	status = call(t, srv, http.MethodGet, base, "", &view)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"closed"}, view.History)
}

func TestStatesAndListing(t *testing.T) {
	srv := newServer(t)

	var states map[string][]string
	status := call(t, srv, http.MethodGet, "/states", "", &states)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"closed", "opened", "locked"}, states["states"])

	status = call(t, srv, http.MethodGet, "/states?event=unlock", "", &states)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"locked"}, states["states"])

	status = call(t, srv, http.MethodGet, "/states?event=", "", &states)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"closed", "opened", "locked"}, states["states"])

	status = call(t, srv, http.MethodGet, "/states?event=fly", "", &states)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, states["states"])

	var list map[string][]string
	call(t, srv, http.MethodGet, "/sessions", "", &list)
	assert.Empty(t, list["sessions"])

	view := createSession(t, srv)
	call(t, srv, http.MethodGet, "/sessions", "", &list)
	assert.Equal(t, []string{view.ID}, list["sessions"])

	var info map[string]any
	call(t, srv, http.MethodGet, "/info", "", &info)
	assert.Equal(t, rewind.Version, info["version"])
	assert.Equal(t, "closed", info["initial"])
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	mgr := session.NewManager(doorConfig(), memory.NewStore(),
		session.WithMachineOptions(rewind.WithLifecycleHooks(metrics.Hooks())))
	srv := httptest.NewServer(httpadapter.NewHandler(mgr, httpadapter.WithGatherer(reg)))
	t.Cleanup(srv.Close)

	view := createSession(t, srv)
	call(t, srv, http.MethodPost, "/sessions/"+view.ID+"/trigger", `{"event":"lock"}`, &view)

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	buf := new(strings.Builder)
	_, err = io.Copy(buf, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `rewind_transitions_total{from="closed",kind="trigger",to="locked"} 1`)
}

func TestMetricsEndpointDisabled(t *testing.T) {
	srv := newServer(t)
	status := call(t, srv, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMutationDoesNotRecreateDeletedSession(t *testing.T) {
	mgr := session.NewManager(doorConfig(), memory.NewStore())
	srv := httptest.NewServer(httpadapter.NewHandler(deletingSessions{mgr}))
	t.Cleanup(srv.Close)

	view := createSession(t, srv)

	status := call(t, srv, http.MethodPost, "/sessions/"+view.ID+"/reset", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	var list map[string][]string
	call(t, srv, http.MethodGet, "/sessions", "", &list)
	assert.Empty(t, list["sessions"])
}
