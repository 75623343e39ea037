//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/umlcanvas/internal/canvas"
	"github.com/dusk-indust/umlcanvas/internal/diagram"
	"github.com/dusk-indust/umlcanvas/internal/mcptools"
	"github.com/dusk-indust/umlcanvas/internal/view"
)

// stack is the served configuration: one canvas session behind both the
// viewer routes and the MCP endpoint on a single listener.
type stack struct {
	model  *diagram.Model
	server *view.Server
	http   *httptest.Server
}

func newStack(t *testing.T) *stack {
	t.Helper()
	m := diagram.New()
	sess := canvas.NewSession(canvas.New(m))
	srv := view.NewServer(sess)
	srv.Attach(m)
	srv.Handle("/mcp", mcptools.NewHTTPHandler(mcptools.NewCanvasService(sess)))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Hub().Close()
		ts.Close()
	})
	return &stack{model: m, server: srv, http: ts}
}

func (s *stack) connect(t *testing.T, ctx context.Context) *mcp.ClientSession {
	t.Helper()
	client := mcp.NewClient(&mcp.Implementation{Name: "e2e-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: s.http.URL + "/mcp"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func callTool(t *testing.T, ctx context.Context, session *mcp.ClientSession, name string, args map[string]any) mcptools.StateOutput {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.False(t, result.IsError, "%s: %v", name, result.Content)

	var out mcptools.StateOutput
	raw, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

// TestStack_ToolsDriveViewerFeed creates two classes and a composition
// through MCP over HTTP and checks that a viewer sees one frame per commit.
func TestStack_ToolsDriveViewerFeed(t *testing.T) {
	st := newStack(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, st.http.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	events := view.ReadEvents(ctx, resp.Body)
	first := <-events
	require.NoError(t, first.Err)
	require.Eventually(t, func() bool { return st.server.Hub().Subscribers() == 1 }, 5*time.Second, 10*time.Millisecond)

	session := st.connect(t, ctx)
	for _, name := range []string{"Car", "Engine"} {
		callTool(t, ctx, session, "drop", map[string]any{"token": "class"})
		callTool(t, ctx, session, "set_name", map[string]any{"name": name})
		out := callTool(t, ctx, session, "submit", nil)
		assert.Equal(t, "idle", out.State.Phase)
	}
	nodes := st.model.Nodes()
	require.Len(t, nodes, 2)

	callTool(t, ctx, session, "drop", map[string]any{"token": "composition"})
	callTool(t, ctx, session, "pick", map[string]any{"nodeId": int64(nodes[1].ID)})
	callTool(t, ctx, session, "pick", map[string]any{"nodeId": int64(nodes[0].ID)})

	var frames []view.Event
	for len(frames) < 3 {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "feed closed early")
			require.NoError(t, ev.Err)
			frames = append(frames, ev)
		case <-ctx.Done():
			t.Fatal("timed out waiting for frames")
		}
	}
	assert.Equal(t, []string{"addNode", "addNode", "addLink"}, []string{frames[0].Op, frames[1].Op, frames[2].Op})
	last := frames[2]
	require.NotNil(t, last.Render)
	require.Len(t, last.Render.Links, 1)
	assert.Equal(t, "filled-diamond", string(last.Render.Links[0].Marker))

	callTool(t, ctx, session, "undo", nil)
	ev := <-events
	assert.Equal(t, "addLink", ev.Op)
	assert.Equal(t, "undo", ev.Direction)
	assert.Empty(t, ev.Render.Links)
}

// TestStack_RenderRoutesMatchTool checks that the viewer and the render
// tool agree on the diagram.
func TestStack_RenderRoutesMatchTool(t *testing.T) {
	st := newStack(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	session := st.connect(t, ctx)

	callTool(t, ctx, session, "drop", map[string]any{"token": "enum", "x": 5, "y": 5})
	callTool(t, ctx, session, "set_name", map[string]any{"name": "Gear"})
	callTool(t, ctx, session, "add_entry", map[string]any{"name": "LOW"})
	callTool(t, ctx, session, "submit", nil)

	result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "render", Arguments: map[string]any{}})
	require.NoError(t, err)
	var tool mcptools.RenderOutput
	raw, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &tool))

	resp, err := http.Get(st.http.URL + "/render")
	require.NoError(t, err)
	defer resp.Body.Close()
	var viewer struct {
		Nodes []struct {
			Header     string   `json:"header"`
			Attributes []string `json:"attributes"`
		} `json:"nodes"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&viewer))

	require.Len(t, tool.Nodes, 1)
	require.Len(t, viewer.Nodes, 1)
	assert.Equal(t, tool.Nodes[0].Header, viewer.Nodes[0].Header)
	assert.Equal(t, tool.Nodes[0].Attributes, viewer.Nodes[0].Attributes)
	assert.Equal(t, []string{"LOW: string"}, viewer.Nodes[0].Attributes)
}
