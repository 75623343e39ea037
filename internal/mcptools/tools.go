package mcptools

import (
	"github.com/dusk-indust/umlcanvas/internal/canvas"
	"github.com/dusk-indust/umlcanvas/internal/registry"
	"github.com/dusk-indust/umlcanvas/internal/uml"
)

// --- MCP Tool Input Types ---
// The MCP Go SDK generates JSON schemas from these struct tags. Enumerated
// values travel as their string tokens.

// DropInput is the input for the drop tool.
type DropInput struct {
	Token string  `json:"token" jsonschema:"palette token: class, interface, abstract, enum, inheritance, implementation, association, aggregation, composition"`
	X     float64 `json:"x,omitempty" jsonschema:"drop x coordinate"`
	Y     float64 `json:"y,omitempty" jsonschema:"drop y coordinate"`
}

// NodeInput addresses one node.
type NodeInput struct {
	NodeID int64 `json:"nodeId" jsonschema:"id of an existing node"`
}

// NameInput is the input for set_name.
type NameInput struct {
	Name string `json:"name" jsonschema:"node name; blank is allowed"`
}

// ExtendsInput is the input for set_extends.
type ExtendsInput struct {
	Label string `json:"label" jsonschema:"free-text extends label (interfaces only)"`
}

// IndexInput addresses one item of a staged list.
type IndexInput struct {
	Index int `json:"index" jsonschema:"zero-based position in the list"`
}

// AttributeInput is the input for add_attribute.
type AttributeInput struct {
	Name       string `json:"name"`
	Type       string `json:"type,omitempty" jsonschema:"string, int, float, double, bool or date (default string)"`
	Visibility string `json:"visibility,omitempty" jsonschema:"public, private, protected or package (default public)"`
}

// UpdateAttributeInput is the input for update_attribute. Omitted fields are kept.
type UpdateAttributeInput struct {
	Index      int     `json:"index"`
	Name       *string `json:"name,omitempty"`
	Type       *string `json:"type,omitempty"`
	Visibility *string `json:"visibility,omitempty"`
}

// EntryInput is the input for add_entry.
type EntryInput struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty" jsonschema:"entry type (default string)"`
}

// UpdateEntryInput is the input for update_entry. Omitted fields are kept.
type UpdateEntryInput struct {
	Index int     `json:"index"`
	Name  *string `json:"name,omitempty"`
	Type  *string `json:"type,omitempty"`
}

// ParameterInput is one method parameter.
type ParameterInput struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty" jsonschema:"parameter type (default string)"`
}

// MethodInput is the input for add_method.
type MethodInput struct {
	Name       string           `json:"name"`
	ReturnType string           `json:"returnType,omitempty" jsonschema:"return type, void allowed (default void)"`
	Visibility string           `json:"visibility,omitempty" jsonschema:"method visibility; not accepted for interfaces"`
	Parameters []ParameterInput `json:"parameters,omitempty"`
}

// UpdateMethodInput is the input for update_method. Omitted fields are kept.
type UpdateMethodInput struct {
	Index      int     `json:"index"`
	Name       *string `json:"name,omitempty"`
	ReturnType *string `json:"returnType,omitempty"`
	Visibility *string `json:"visibility,omitempty"`
}

// AddParameterInput is the input for add_parameter.
type AddParameterInput struct {
	Method int    `json:"method" jsonschema:"index of the method"`
	Name   string `json:"name"`
	Type   string `json:"type,omitempty" jsonschema:"parameter type (default string)"`
}

// ParameterIndexInput addresses one parameter.
type ParameterIndexInput struct {
	Method int `json:"method" jsonschema:"index of the method"`
	Index  int `json:"index" jsonschema:"index of the parameter"`
}

// UpdateParameterInput is the input for update_parameter. Omitted fields are kept.
type UpdateParameterInput struct {
	Method int     `json:"method"`
	Index  int     `json:"index"`
	Name   *string `json:"name,omitempty"`
	Type   *string `json:"type,omitempty"`
}

// RenderInput is the input for render.
type RenderInput struct {
	Format string `json:"format,omitempty" jsonschema:"json (default) or mermaid"`
}

// EmptyInput is the input for tools without arguments.
type EmptyInput struct{}

// --- MCP Tool Output Types ---

// StateView is the controller state plus the open dialog's staged fields.
type StateView struct {
	Phase      string      `json:"phase"`
	Kind       string      `json:"kind,omitempty"`
	X          float64     `json:"x,omitempty"`
	Y          float64     `json:"y,omitempty"`
	NodeID     int64       `json:"nodeId,omitempty"`
	Category   string      `json:"category,omitempty"`
	From       int64       `json:"from,omitempty"`
	Dialog     string      `json:"dialog,omitempty"`
	Staged     *StagedView `json:"staged,omitempty"`
	Advisories []string    `json:"advisories,omitempty"`
}

// StagedView is a dialog's staged copy.
type StagedView struct {
	Name       string       `json:"name"`
	Extends    string       `json:"extends,omitempty"`
	Attributes []MemberView `json:"attributes"`
	Methods    []MethodView `json:"methods"`
}

// MemberView is a staged attribute or entry.
type MemberView struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Visibility string `json:"visibility,omitempty"`
}

// MethodView is a staged method.
type MethodView struct {
	ID         int              `json:"id"`
	Name       string           `json:"name"`
	ReturnType string           `json:"returnType"`
	Visibility string           `json:"visibility,omitempty"`
	Parameters []ParameterInput `json:"parameters"`
}

// StateOutput is returned by every input tool.
type StateOutput struct {
	Accepted bool      `json:"accepted"`
	Index    int       `json:"index,omitempty"`
	State    StateView `json:"state"`
}

// NodeView is one rendered node box.
type NodeView struct {
	ID         int64    `json:"id"`
	Kind       string   `json:"kind"`
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Header     string   `json:"header"`
	Note       string   `json:"note,omitempty"`
	Attributes []string `json:"attributes"`
	Methods    []string `json:"methods"`
}

// LinkView is one rendered link.
type LinkView struct {
	From     int64  `json:"from"`
	To       int64  `json:"to"`
	Category string `json:"category"`
	Line     string `json:"line"`
	Marker   string `json:"marker"`
}

// RenderOutput is the result of render.
type RenderOutput struct {
	Nodes   []NodeView     `json:"nodes"`
	Links   []LinkView     `json:"links"`
	Mermaid string         `json:"mermaid,omitempty"`
	Counts  map[string]int `json:"counts"`
}

func stateView(c *canvas.Controller) StateView {
	st := c.State()
	v := StateView{Phase: st.Phase.String()}
	switch st.Phase {
	case canvas.PendingCreate:
		v.Kind, v.X, v.Y = st.Kind.String(), st.Position.X, st.Position.Y
	case canvas.Editing:
		v.Kind, v.NodeID = st.Kind.String(), int64(st.NodeID)
	case canvas.LinkDrawing:
		v.Category = st.Category.String()
		if st.HasFrom {
			v.From = int64(st.From)
		}
	}
	if d := c.Dialog(); d != nil {
		v.Dialog = d.Title()
		if f, ok := d.Staged(); ok {
			v.Staged = stagedView(f)
		}
		v.Advisories = c.Advisories()
	}
	return v
}

func stagedView(f uml.Fields) *StagedView {
	v := &StagedView{
		Name:       f.Name,
		Extends:    f.Extends,
		Attributes: make([]MemberView, 0, len(f.Attributes)),
		Methods:    make([]MethodView, 0, len(f.Methods)),
	}
	for _, a := range f.Attributes {
		v.Attributes = append(v.Attributes, MemberView{
			ID: a.ID, Name: a.Name, Type: string(a.Type), Visibility: string(a.Visibility),
		})
	}
	for _, m := range f.Methods {
		mv := MethodView{
			ID: m.ID, Name: m.Name, ReturnType: string(m.ReturnType), Visibility: string(m.Visibility),
			Parameters: make([]ParameterInput, 0, len(m.Parameters)),
		}
		for _, p := range m.Parameters {
			mv.Parameters = append(mv.Parameters, ParameterInput{Name: p.Name, Type: string(p.Type)})
		}
		v.Methods = append(v.Methods, mv)
	}
	return v
}

func renderOutput(rm registry.RenderModel) RenderOutput {
	out := RenderOutput{
		Nodes:  make([]NodeView, 0, len(rm.Nodes)),
		Links:  make([]LinkView, 0, len(rm.Links)),
		Counts: make(map[string]int),
	}
	for _, n := range rm.Nodes {
		out.Nodes = append(out.Nodes, NodeView{
			ID: int64(n.ID), Kind: n.Kind.String(), X: n.Position.X, Y: n.Position.Y,
			Header: n.Header, Note: n.Note, Attributes: n.Attributes, Methods: n.Methods,
		})
		out.Counts[n.Kind.String()]++
	}
	for _, l := range rm.Links {
		out.Links = append(out.Links, LinkView{
			From: int64(l.From), To: int64(l.To), Category: l.Category.String(),
			Line: string(l.Line), Marker: string(l.Marker),
		})
		out.Counts[l.Category.String()]++
	}
	return out
}

func parameters(in []ParameterInput) []uml.Parameter {
	out := make([]uml.Parameter, 0, len(in))
	for _, p := range in {
		out = append(out, uml.Parameter{Name: p.Name, Type: uml.TypeTag(p.Type)})
	}
	return out
}

func typePtr(s *string) *uml.TypeTag {
	if s == nil {
		return nil
	}
	t := uml.TypeTag(*s)
	return &t
}

func visPtr(s *string) *uml.Visibility {
	if s == nil {
		return nil
	}
	v := uml.Visibility(*s)
	return &v
}
