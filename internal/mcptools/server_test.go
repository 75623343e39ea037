package mcptools

import (
	"context"
	"encoding/json"
	"reflect"
	"sort"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/umlcanvas/internal/canvas"
	"github.com/dusk-indust/umlcanvas/internal/diagram"
	"github.com/dusk-indust/umlcanvas/internal/uml"
)

// setupServerClient wires an MCP server and client together using in-memory
// transports. It returns the connected client session and the canvas
// session behind the tools so tests can inspect the diagram directly.
func setupServerClient(t *testing.T) (*mcp.ClientSession, *canvas.Session) {
	t.Helper()

	sess := canvas.NewSession(canvas.New(diagram.New()))
	server := NewCanvasMCPServer(NewCanvasService(sess))

	st, ct := mcp.NewInMemoryTransports()
	ctx := context.Background()

	_, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		session.Close()
	})

	return session, sess
}

// call invokes a tool and decodes its structured output into out, which is
// zeroed first so keys the tool omits do not keep earlier values. It fails
// the test if the tool reports an error.
func call(t *testing.T, session *mcp.ClientSession, name string, args map[string]any, out any) {
	t.Helper()
	result := callRaw(t, session, name, args)
	require.False(t, result.IsError, "%s should succeed: %v", name, result.Content)
	if out == nil {
		return
	}
	raw, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)
	reflect.ValueOf(out).Elem().SetZero()
	require.NoError(t, json.Unmarshal(raw, out))
}

func callRaw(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	return result
}

// ---------------------------------------------------------------------------
// Registration
// ---------------------------------------------------------------------------

func TestMCPListTools(t *testing.T) {
	session, _ := setupServerClient(t)

	result, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	names := make([]string, len(result.Tools))
	for i, tool := range result.Tools {
		names[i] = tool.Name
	}
	sort.Strings(names)

	expected := []string{
		"add_attribute",
		"add_entry",
		"add_method",
		"add_parameter",
		"cancel",
		"click",
		"drop",
		"escape",
		"get_state",
		"pick",
		"redo",
		"remove_attribute",
		"remove_entry",
		"remove_method",
		"remove_parameter",
		"render",
		"set_extends",
		"set_name",
		"submit",
		"undo",
		"update_attribute",
		"update_entry",
		"update_method",
		"update_parameter",
	}
	assert.Equal(t, expected, names)
}

// ---------------------------------------------------------------------------
// Flows
// ---------------------------------------------------------------------------

func TestMCPCreateClass(t *testing.T) {
	session, sess := setupServerClient(t)

	var out StateOutput
	call(t, session, "drop", map[string]any{"token": "class", "x": 120, "y": 80}, &out)
	assert.True(t, out.Accepted)
	assert.Equal(t, "pendingCreate", out.State.Phase)
	assert.Equal(t, "class", out.State.Kind)
	assert.Equal(t, "Class", out.State.Dialog)

	call(t, session, "set_name", map[string]any{"name": "Account"}, nil)
	call(t, session, "add_attribute", map[string]any{"name": "balance", "type": "double"}, &out)
	assert.Equal(t, 0, out.Index)
	require.NotNil(t, out.State.Staged)
	require.Len(t, out.State.Staged.Attributes, 1)
	assert.Equal(t, "public", out.State.Staged.Attributes[0].Visibility)

	call(t, session, "add_method", map[string]any{
		"name":       "deposit",
		"returnType": "bool",
		"parameters": []map[string]any{{"name": "amount", "type": "double"}},
	}, &out)
	require.Len(t, out.State.Staged.Methods, 1)
	assert.Len(t, out.State.Staged.Methods[0].Parameters, 1)

	call(t, session, "submit", nil, &out)
	assert.Equal(t, "idle", out.State.Phase)
	assert.Empty(t, out.State.Dialog)

	var rendered RenderOutput
	call(t, session, "render", nil, &rendered)
	require.Len(t, rendered.Nodes, 1)
	n := rendered.Nodes[0]
	assert.Equal(t, "Account", n.Header)
	assert.Equal(t, "class", n.Kind)
	assert.Equal(t, []string{"- balance: double"}, n.Attributes)
	assert.Equal(t, 1, rendered.Counts["class"])

	assert.Equal(t, uml.Position{X: 120, Y: 80}, sess.Render().Nodes[0].Position)
}

func TestMCPSubmitClosesDialog(t *testing.T) {
	session, _ := setupServerClient(t)
	call(t, session, "drop", map[string]any{"token": "class"}, nil)

	result := callRaw(t, session, "submit", nil)
	require.False(t, result.IsError)
	raw, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)
	var got struct {
		State map[string]any `json:"state"`
	}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "idle", got.State["phase"])
	assert.NotContains(t, got.State, "dialog")
	assert.NotContains(t, got.State, "staged")

	var state StateOutput
	call(t, session, "get_state", nil, &state)
	assert.Empty(t, state.State.Dialog)
	assert.Nil(t, state.State.Staged)
}

func TestMCPDrawLinkAndUndo(t *testing.T) {
	session, sess := setupServerClient(t)
	for _, name := range []string{"Shape", "Circle"} {
		call(t, session, "drop", map[string]any{"token": "class"}, nil)
		call(t, session, "set_name", map[string]any{"name": name}, nil)
		call(t, session, "submit", nil, nil)
	}
	nodes := sess.Render().Nodes
	require.Len(t, nodes, 2)

	var out StateOutput
	call(t, session, "drop", map[string]any{"token": "inheritance"}, &out)
	assert.Equal(t, "linkDrawing", out.State.Phase)
	assert.Equal(t, "inheritance", out.State.Category)

	call(t, session, "click", map[string]any{"nodeId": int64(nodes[1].ID)}, &out)
	assert.Equal(t, int64(nodes[1].ID), out.State.From)
	call(t, session, "pick", map[string]any{"nodeId": int64(nodes[0].ID)}, &out)
	assert.Equal(t, "idle", out.State.Phase)

	var rendered RenderOutput
	call(t, session, "render", map[string]any{"format": "mermaid"}, &rendered)
	require.Len(t, rendered.Links, 1)
	assert.Equal(t, "hollow-triangle", rendered.Links[0].Marker)
	assert.Equal(t, "solid", rendered.Links[0].Line)
	assert.Contains(t, rendered.Mermaid, "<|--")

	call(t, session, "undo", nil, nil)
	assert.Empty(t, sess.Render().Links)
	call(t, session, "redo", nil, nil)
	assert.Len(t, sess.Render().Links, 1)
}

func TestMCPUpdateTools(t *testing.T) {
	session, _ := setupServerClient(t)
	call(t, session, "drop", map[string]any{"token": "enum"}, nil)
	call(t, session, "add_entry", map[string]any{"name": "RED"}, nil)

	var out StateOutput
	call(t, session, "update_entry", map[string]any{"index": 0, "type": "int"}, &out)
	require.Len(t, out.State.Staged.Attributes, 1)
	assert.Equal(t, "RED", out.State.Staged.Attributes[0].Name)
	assert.Equal(t, "int", out.State.Staged.Attributes[0].Type)

	call(t, session, "escape", nil, &out)
	assert.True(t, out.Accepted)
	assert.Equal(t, "idle", out.State.Phase)

	call(t, session, "drop", map[string]any{"token": "interface"}, nil)
	call(t, session, "add_method", map[string]any{"name": "area"}, nil)
	call(t, session, "add_parameter", map[string]any{"method": 0, "name": "scale"}, &out)
	assert.Equal(t, 0, out.Index)
	call(t, session, "update_parameter", map[string]any{"method": 0, "index": 0, "type": "float"}, &out)
	assert.Equal(t, "float", out.State.Staged.Methods[0].Parameters[0].Type)
	call(t, session, "update_method", map[string]any{"index": 0, "returnType": "double"}, &out)
	assert.Equal(t, "double", out.State.Staged.Methods[0].ReturnType)
	call(t, session, "set_extends", map[string]any{"label": "Drawable"}, &out)
	assert.Equal(t, "Drawable", out.State.Staged.Extends)
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func TestMCPErrorsAreToolErrors(t *testing.T) {
	session, sess := setupServerClient(t)

	assert.True(t, callRaw(t, session, "set_name", map[string]any{"name": "X"}).IsError, "no dialog open")
	assert.True(t, callRaw(t, session, "undo", nil).IsError, "nothing to undo")
	assert.True(t, callRaw(t, session, "render", map[string]any{"format": "svg"}).IsError)

	call(t, session, "drop", map[string]any{"token": "interface"}, nil)
	result := callRaw(t, session, "add_attribute", map[string]any{"name": "x"})
	assert.True(t, result.IsError, "interfaces have no attributes")

	result = callRaw(t, session, "add_method", map[string]any{"name": "m", "visibility": "private"})
	assert.True(t, result.IsError, "interface methods take no visibility")

	var out StateOutput
	call(t, session, "get_state", nil, &out)
	assert.Equal(t, "pendingCreate", out.State.Phase, "rejections leave the state alone")
	assert.Empty(t, out.State.Staged.Methods)
	assert.Empty(t, sess.Render().Nodes)
}

func TestMCPIgnoredInputs(t *testing.T) {
	session, _ := setupServerClient(t)

	var out StateOutput
	call(t, session, "drop", map[string]any{"token": "foo"}, &out)
	assert.False(t, out.Accepted)
	assert.Equal(t, "idle", out.State.Phase)

	call(t, session, "click", map[string]any{"nodeId": 42}, &out)
	assert.False(t, out.Accepted)

	call(t, session, "cancel", nil, &out)
	assert.False(t, out.Accepted)
}

func TestMCPUnknownTool(t *testing.T) {
	session, _ := setupServerClient(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "nonexistent_tool",
		Arguments: map[string]any{},
	})

	// The SDK may fail at the protocol level or set IsError on the result.
	if err != nil {
		return
	}
	assert.True(t, result.IsError, "calling an unknown tool should set IsError")
}
