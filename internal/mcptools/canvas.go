package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/umlcanvas/internal/canvas"
	"github.com/dusk-indust/umlcanvas/internal/editor"
	"github.com/dusk-indust/umlcanvas/internal/export"
	"github.com/dusk-indust/umlcanvas/internal/uml"
)

// CanvasService exposes a canvas session as MCP tool handlers. Every handler
// runs under the session lock, so agents and the view server see a
// consistent diagram.
type CanvasService struct {
	session *canvas.Session
}

// NewCanvasService creates a CanvasService driving session.
func NewCanvasService(session *canvas.Session) *CanvasService {
	return &CanvasService{session: session}
}

// do runs fn and returns the resulting state. A rejected input surfaces as
// a tool error, leaving the state untouched.
func (s *CanvasService) do(fn func(c *canvas.Controller) (bool, int, error)) (*mcp.CallToolResult, StateOutput, error) {
	var out StateOutput
	err := s.session.Do(func(c *canvas.Controller) error {
		accepted, index, err := fn(c)
		if err != nil {
			return err
		}
		out = StateOutput{Accepted: accepted, Index: index, State: stateView(c)}
		return nil
	})
	if err != nil {
		return nil, StateOutput{}, err
	}
	return nil, out, nil
}

// dialogOp runs fn against the open dialog.
func (s *CanvasService) dialogOp(fn func(d editor.Dialog) (int, error)) (*mcp.CallToolResult, StateOutput, error) {
	return s.do(func(c *canvas.Controller) (bool, int, error) {
		d := c.Dialog()
		if d == nil {
			return false, 0, canvas.ErrNoDialog
		}
		i, err := fn(d)
		return err == nil, i, err
	})
}

// Drop handles the drop tool.
func (s *CanvasService) Drop(_ context.Context, _ *mcp.CallToolRequest, input DropInput) (*mcp.CallToolResult, StateOutput, error) {
	return s.do(func(c *canvas.Controller) (bool, int, error) {
		return c.Drop(uml.DropToken(input.Token), uml.Position{X: input.X, Y: input.Y}), 0, nil
	})
}

// Click handles the click tool.
func (s *CanvasService) Click(_ context.Context, _ *mcp.CallToolRequest, input NodeInput) (*mcp.CallToolResult, StateOutput, error) {
	return s.do(func(c *canvas.Controller) (bool, int, error) {
		return c.Click(uml.NodeID(input.NodeID)), 0, nil
	})
}

// Pick handles the pick tool.
func (s *CanvasService) Pick(_ context.Context, _ *mcp.CallToolRequest, input NodeInput) (*mcp.CallToolResult, StateOutput, error) {
	return s.do(func(c *canvas.Controller) (bool, int, error) {
		ok, err := c.Pick(uml.NodeID(input.NodeID))
		return ok, 0, err
	})
}

// SetName handles the set_name tool.
func (s *CanvasService) SetName(_ context.Context, _ *mcp.CallToolRequest, input NameInput) (*mcp.CallToolResult, StateOutput, error) {
	return s.dialogOp(func(d editor.Dialog) (int, error) {
		return 0, d.SetName(input.Name)
	})
}

// SetExtends handles the set_extends tool.
func (s *CanvasService) SetExtends(_ context.Context, _ *mcp.CallToolRequest, input ExtendsInput) (*mcp.CallToolResult, StateOutput, error) {
	return s.dialogOp(func(d editor.Dialog) (int, error) {
		return 0, editor.SetExtends(d, input.Label)
	})
}

// AddAttribute handles the add_attribute tool.
func (s *CanvasService) AddAttribute(_ context.Context, _ *mcp.CallToolRequest, input AttributeInput) (*mcp.CallToolResult, StateOutput, error) {
	return s.dialogOp(func(d editor.Dialog) (int, error) {
		return editor.AddAttribute(d, input.Name, uml.TypeTag(input.Type), uml.Visibility(input.Visibility))
	})
}

// UpdateAttribute handles the update_attribute tool.
func (s *CanvasService) UpdateAttribute(_ context.Context, _ *mcp.CallToolRequest, input UpdateAttributeInput) (*mcp.CallToolResult, StateOutput, error) {
	return s.dialogOp(func(d editor.Dialog) (int, error) {
		return input.Index, editor.UpdateAttribute(d, input.Index, editor.AttributePatch{
			Name:       input.Name,
			Type:       typePtr(input.Type),
			Visibility: visPtr(input.Visibility),
		})
	})
}

// RemoveAttribute handles the remove_attribute tool.
func (s *CanvasService) RemoveAttribute(_ context.Context, _ *mcp.CallToolRequest, input IndexInput) (*mcp.CallToolResult, StateOutput, error) {
	return s.dialogOp(func(d editor.Dialog) (int, error) {
		return 0, editor.RemoveAttribute(d, input.Index)
	})
}

// AddEntry handles the add_entry tool.
func (s *CanvasService) AddEntry(_ context.Context, _ *mcp.CallToolRequest, input EntryInput) (*mcp.CallToolResult, StateOutput, error) {
	return s.dialogOp(func(d editor.Dialog) (int, error) {
		return editor.AddEntry(d, input.Name, uml.TypeTag(input.Type))
	})
}

// UpdateEntry handles the update_entry tool.
func (s *CanvasService) UpdateEntry(_ context.Context, _ *mcp.CallToolRequest, input UpdateEntryInput) (*mcp.CallToolResult, StateOutput, error) {
	return s.dialogOp(func(d editor.Dialog) (int, error) {
		return input.Index, editor.UpdateEntry(d, input.Index, editor.EntryPatch{
			Name: input.Name,
			Type: typePtr(input.Type),
		})
	})
}

// RemoveEntry handles the remove_entry tool.
func (s *CanvasService) RemoveEntry(_ context.Context, _ *mcp.CallToolRequest, input IndexInput) (*mcp.CallToolResult, StateOutput, error) {
	return s.dialogOp(func(d editor.Dialog) (int, error) {
		return 0, editor.RemoveEntry(d, input.Index)
	})
}

// AddMethod handles the add_method tool.
func (s *CanvasService) AddMethod(_ context.Context, _ *mcp.CallToolRequest, input MethodInput) (*mcp.CallToolResult, StateOutput, error) {
	return s.dialogOp(func(d editor.Dialog) (int, error) {
		return editor.AddMethod(d, input.Name, uml.TypeTag(input.ReturnType), uml.Visibility(input.Visibility), parameters(input.Parameters))
	})
}

// UpdateMethod handles the update_method tool.
func (s *CanvasService) UpdateMethod(_ context.Context, _ *mcp.CallToolRequest, input UpdateMethodInput) (*mcp.CallToolResult, StateOutput, error) {
	return s.dialogOp(func(d editor.Dialog) (int, error) {
		return input.Index, editor.UpdateMethod(d, input.Index, editor.MethodPatch{
			Name:       input.Name,
			ReturnType: typePtr(input.ReturnType),
			Visibility: visPtr(input.Visibility),
		})
	})
}

// RemoveMethod handles the remove_method tool.
func (s *CanvasService) RemoveMethod(_ context.Context, _ *mcp.CallToolRequest, input IndexInput) (*mcp.CallToolResult, StateOutput, error) {
	return s.dialogOp(func(d editor.Dialog) (int, error) {
		return 0, editor.RemoveMethod(d, input.Index)
	})
}

// AddParameter handles the add_parameter tool.
func (s *CanvasService) AddParameter(_ context.Context, _ *mcp.CallToolRequest, input AddParameterInput) (*mcp.CallToolResult, StateOutput, error) {
	return s.dialogOp(func(d editor.Dialog) (int, error) {
		return editor.AddParameter(d, input.Method, input.Name, uml.TypeTag(input.Type))
	})
}

// UpdateParameter handles the update_parameter tool.
func (s *CanvasService) UpdateParameter(_ context.Context, _ *mcp.CallToolRequest, input UpdateParameterInput) (*mcp.CallToolResult, StateOutput, error) {
	return s.dialogOp(func(d editor.Dialog) (int, error) {
		return input.Index, editor.UpdateParameter(d, input.Method, input.Index, editor.ParameterPatch{
			Name: input.Name,
			Type: typePtr(input.Type),
		})
	})
}

// RemoveParameter handles the remove_parameter tool.
func (s *CanvasService) RemoveParameter(_ context.Context, _ *mcp.CallToolRequest, input ParameterIndexInput) (*mcp.CallToolResult, StateOutput, error) {
	return s.dialogOp(func(d editor.Dialog) (int, error) {
		return 0, editor.RemoveParameter(d, input.Method, input.Index)
	})
}

// Submit handles the submit tool.
func (s *CanvasService) Submit(_ context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, StateOutput, error) {
	return s.do(func(c *canvas.Controller) (bool, int, error) {
		return true, 0, c.Submit()
	})
}

// Cancel handles the cancel tool.
func (s *CanvasService) Cancel(_ context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, StateOutput, error) {
	return s.do(func(c *canvas.Controller) (bool, int, error) {
		return c.CancelDialog(), 0, nil
	})
}

// Escape handles the escape tool.
func (s *CanvasService) Escape(_ context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, StateOutput, error) {
	return s.do(func(c *canvas.Controller) (bool, int, error) {
		return c.Escape(), 0, nil
	})
}

// Undo handles the undo tool.
func (s *CanvasService) Undo(_ context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, StateOutput, error) {
	return s.do(func(c *canvas.Controller) (bool, int, error) {
		_, err := c.Undo()
		return true, 0, err
	})
}

// Redo handles the redo tool.
func (s *CanvasService) Redo(_ context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, StateOutput, error) {
	return s.do(func(c *canvas.Controller) (bool, int, error) {
		_, err := c.Redo()
		return true, 0, err
	})
}

// GetState handles the get_state tool.
func (s *CanvasService) GetState(_ context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, StateOutput, error) {
	return s.do(func(*canvas.Controller) (bool, int, error) {
		return true, 0, nil
	})
}

// Render handles the render tool.
func (s *CanvasService) Render(_ context.Context, _ *mcp.CallToolRequest, input RenderInput) (*mcp.CallToolResult, RenderOutput, error) {
	format := strings.ToLower(input.Format)
	if format != "" && format != "json" && format != "mermaid" {
		return nil, RenderOutput{}, fmt.Errorf("unknown format %q (want json or mermaid)", input.Format)
	}
	rm := s.session.Render()
	out := renderOutput(rm)
	if format == "mermaid" {
		out.Mermaid = export.GenerateMermaid(rm)
	}
	return nil, out, nil
}
