package view

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/umlcanvas/internal/canvas"
	"github.com/dusk-indust/umlcanvas/internal/diagram"
	"github.com/dusk-indust/umlcanvas/internal/registry"
	"github.com/dusk-indust/umlcanvas/internal/uml"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type fixture struct {
	model   *diagram.Model
	session *canvas.Session
	server  *Server
	http    *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m := diagram.New()
	sess := canvas.NewSession(canvas.New(m))
	s := NewServer(sess)
	s.Attach(m)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Hub().Close()
		ts.Close()
	})
	return &fixture{model: m, session: sess, server: s, http: ts}
}

func (f *fixture) createClass(t *testing.T, name string) {
	t.Helper()
	require.NoError(t, f.session.Do(func(c *canvas.Controller) error {
		require.True(t, c.Drop("class", uml.Position{X: 1, Y: 2}))
		require.NoError(t, c.Dialog().SetName(name))
		return c.Submit()
	}))
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

func TestRender_JSON(t *testing.T) {
	f := newFixture(t)
	f.createClass(t, "Account")

	resp, body := get(t, f.http.URL+"/render")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var rm registry.RenderModel
	require.NoError(t, json.Unmarshal([]byte(body), &rm))
	require.Len(t, rm.Nodes, 1)
	assert.Equal(t, "Account", rm.Nodes[0].Header)
	assert.Equal(t, uml.Position{X: 1, Y: 2}, rm.Nodes[0].Position)
}

func TestRender_Mermaid(t *testing.T) {
	f := newFixture(t)
	f.createClass(t, "Account")

	resp, body := get(t, f.http.URL+"/render.mmd")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(body, "classDiagram\n"))
	assert.Contains(t, body, `class N0["Account"]`)
}

func TestRender_MethodNotAllowed(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Post(f.http.URL+"/render", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestEvents_FramePerCommit(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.http.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	events := ReadEvents(ctx, resp.Body)

	first := <-events
	require.NoError(t, first.Err)
	assert.Zero(t, first.Seq)
	require.NotNil(t, first.Render)
	assert.Empty(t, first.Render.Nodes)

	require.Eventually(t, func() bool { return f.server.Hub().Subscribers() == 1 }, time.Second, 10*time.Millisecond)
	f.createClass(t, "Account")

	ev := <-events
	require.NoError(t, ev.Err)
	assert.Equal(t, uint64(1), ev.Seq)
	assert.Equal(t, "addNode", ev.Op)
	assert.Equal(t, "apply", ev.Direction)
	require.NotNil(t, ev.Render)
	require.Len(t, ev.Render.Nodes, 1)
	assert.Equal(t, "Account", ev.Render.Nodes[0].Name)

	require.NoError(t, f.session.Do(func(c *canvas.Controller) error {
		_, err := c.Undo()
		return err
	}))
	ev = <-events
	assert.Equal(t, "undo", ev.Direction)
	assert.Empty(t, ev.Render.Nodes)
}

// openFeed connects to the event feed, sending lastID as Last-Event-ID
// when it is not empty.
func (f *fixture) openFeed(t *testing.T, ctx context.Context, lastID string) <-chan Event {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.http.URL+"/events", nil)
	require.NoError(t, err)
	if lastID != "" {
		req.Header.Set("Last-Event-ID", lastID)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return ReadEvents(ctx, resp.Body)
}

func TestEvents_ResumeAfterLastEventID(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"A", "B", "C"} {
		f.createClass(t, name)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events := f.openFeed(t, ctx, "1")
	for _, want := range []uint64{2, 3} {
		ev := <-events
		require.NoError(t, ev.Err)
		assert.Equal(t, want, ev.ID)
		assert.Equal(t, want, ev.Seq)
		assert.Equal(t, "addNode", ev.Name)
	}

	require.Eventually(t, func() bool { return f.server.Hub().Subscribers() == 1 }, time.Second, 10*time.Millisecond)
	f.createClass(t, "D")
	ev := <-events
	require.NoError(t, ev.Err)
	assert.Equal(t, uint64(4), ev.ID)
	require.Len(t, ev.Render.Nodes, 4)
}

func TestEvents_UnknownResumePointGetsSnapshot(t *testing.T) {
	f := newFixture(t)
	f.createClass(t, "A")
	f.createClass(t, "B")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, lastID := range []string{"", "99", "not-a-number"} {
		ev := <-f.openFeed(t, ctx, lastID)
		require.NoError(t, ev.Err, "Last-Event-ID %q", lastID)
		assert.Equal(t, EventSnapshot, ev.Name, "Last-Event-ID %q", lastID)
		assert.Equal(t, uint64(2), ev.ID, "snapshot id is the feed head")
		assert.Zero(t, ev.Seq)
		require.NotNil(t, ev.Render)
		assert.Len(t, ev.Render.Nodes, 2)
	}
}

func TestEvents_EndWhenHubCloses(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.http.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	events := ReadEvents(ctx, resp.Body)
	<-events

	require.Eventually(t, func() bool { return f.server.Hub().Subscribers() == 1 }, time.Second, 10*time.Millisecond)
	f.server.Hub().Close()

	_, open := <-events
	assert.False(t, open)
}

func TestHandle_MountsExtraRoute(t *testing.T) {
	f := newFixture(t)
	f.server.Handle("/mcp", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	resp, _ := get(t, f.http.URL+"/mcp")
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
}

func TestServe_StopsOnCancel(t *testing.T) {
	s := NewServer(canvas.NewSession(canvas.New(diagram.New())))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/render")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
