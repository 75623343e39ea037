package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewCanvasMCPServer creates an MCP server with every canvas tool registered.
func NewCanvasMCPServer(svc *CanvasService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "umlcanvas",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "drop",
		Description: "Drop a palette token on the canvas. Node tokens (class, interface, abstract, enum) open the matching editor dialog; relationship tokens start link drawing. Ignored unless the canvas is idle.",
	}, svc.Drop)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "click",
		Description: "Click a node. When idle this opens its editor dialog pre-filled; while drawing a link it picks an endpoint.",
	}, svc.Click)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "pick",
		Description: "Pick a link endpoint while drawing. The second pick commits the link.",
	}, svc.Pick)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_name",
		Description: "Set the name in the open dialog.",
	}, svc.SetName)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_extends",
		Description: "Set the extends label in the open interface dialog.",
	}, svc.SetExtends)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_attribute",
		Description: "Append an attribute to the open class or abstract class dialog. Returns its index.",
	}, svc.AddAttribute)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_attribute",
		Description: "Change the name, type or visibility of a staged attribute.",
	}, svc.UpdateAttribute)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove_attribute",
		Description: "Remove a staged attribute; later attributes shift down.",
	}, svc.RemoveAttribute)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_method",
		Description: "Append a method with optional parameters to the open dialog. Returns its index.",
	}, svc.AddMethod)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_method",
		Description: "Change the name, return type or visibility of a staged method.",
	}, svc.UpdateMethod)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove_method",
		Description: "Remove a staged method; later methods shift down.",
	}, svc.RemoveMethod)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_parameter",
		Description: "Append a parameter to a staged method. Returns its index.",
	}, svc.AddParameter)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_parameter",
		Description: "Change the name or type of a staged method parameter.",
	}, svc.UpdateParameter)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove_parameter",
		Description: "Remove a parameter from a staged method.",
	}, svc.RemoveParameter)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_entry",
		Description: "Append an entry to the open enumeration dialog. Returns its index.",
	}, svc.AddEntry)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_entry",
		Description: "Change the name or type of a staged enumeration entry.",
	}, svc.UpdateEntry)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove_entry",
		Description: "Remove a staged enumeration entry.",
	}, svc.RemoveEntry)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "submit",
		Description: "Commit the open dialog: creates the pending node or updates the edited one. On rejection the dialog stays open.",
	}, svc.Submit)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "cancel",
		Description: "Close the open dialog without committing.",
	}, svc.Cancel)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "escape",
		Description: "Return to idle from any state, discarding pending data.",
	}, svc.Escape)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "undo",
		Description: "Revert the last committed transaction. Only accepted while idle.",
	}, svc.Undo)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "redo",
		Description: "Replay the last undone transaction. Only accepted while idle.",
	}, svc.Redo)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_state",
		Description: "Return the canvas state, the open dialog's staged fields and any advisories.",
	}, svc.GetState)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "render",
		Description: "Return the rendered diagram: node boxes with their text lines and styled links. Format mermaid also returns Mermaid classDiagram source.",
	}, svc.Render)

	return server
}

// NewHTTPHandler returns a streamable HTTP handler serving the canvas tools.
func NewHTTPHandler(svc *CanvasService) http.Handler {
	server := NewCanvasMCPServer(svc)
	return mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)
}

// RunStdio serves the canvas tools over stdin/stdout until ctx is done or
// the client disconnects.
func RunStdio(ctx context.Context, svc *CanvasService) error {
	return NewCanvasMCPServer(svc).Run(ctx, &mcp.StdioTransport{})
}
