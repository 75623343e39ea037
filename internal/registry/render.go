package registry

import (
	"fmt"

	"github.com/dusk-indust/umlcanvas/internal/uml"
)

// LineStyle is the stroke of a rendered link.
type LineStyle string

const (
	Solid  LineStyle = "solid"
	Dashed LineStyle = "dashed"
)

// Marker is the decoration drawn at the target end of a link.
type Marker string

const (
	HollowTriangle Marker = "hollow-triangle"
	OpenArrow      Marker = "open-arrow"
	HollowDiamond  Marker = "hollow-diamond"
	FilledDiamond  Marker = "filled-diamond"
)

// End names the end of a link a marker sits on.
type End string

const EndTarget End = "target"

// LinkStyle is the registry entry for one link category.
type LinkStyle struct {
	Line   LineStyle
	Marker Marker
}

var linkStyles = [...]LinkStyle{
	uml.Inheritance:    {Line: Solid, Marker: HollowTriangle},
	uml.Implementation: {Line: Dashed, Marker: HollowTriangle},
	uml.Association:    {Line: Solid, Marker: OpenArrow},
	uml.Aggregation:    {Line: Solid, Marker: HollowDiamond},
	uml.Composition:    {Line: Solid, Marker: FilledDiamond},
}

// Every category needs a style.
var _ = [1]struct{}{}[len(linkStyles)-int(uml.NumLinkCategories)]

// Style returns the rendering style of c.
func Style(c uml.LinkCategory) (LinkStyle, bool) {
	if !c.Valid() {
		return LinkStyle{}, false
	}
	return linkStyles[c], true
}

var visibilitySymbols = map[uml.Visibility]string{
	uml.Public:    "-",
	uml.Private:   "+",
	uml.Protected: "#",
	uml.Package:   "~",
}

// VisibilitySymbol returns the glyph drawn for v. The table is the one the
// diagram has always used; public and private are swapped relative to
// standard UML notation.
func VisibilitySymbol(v uml.Visibility) string {
	return visibilitySymbols[v]
}

// RenderModel is the display projection of a diagram.
type RenderModel struct {
	Nodes []RenderNode `json:"nodes"`
	Links []RenderLink `json:"links"`
}

// RenderNode is one node box: a header compartment and member lines.
type RenderNode struct {
	ID         uml.NodeID   `json:"id"`
	Kind       uml.NodeKind `json:"kind"`
	Position   uml.Position `json:"position"`
	Stereotype string       `json:"stereotype,omitempty"`
	Name       string       `json:"name"`
	Header     string       `json:"header"`
	Note       string       `json:"note,omitempty"`
	Attributes []string     `json:"attributes"`
	Methods    []string     `json:"methods"`
}

// RenderLink is one edge with its stroke and target marker.
type RenderLink struct {
	From     uml.NodeID       `json:"from"`
	To       uml.NodeID       `json:"to"`
	Category uml.LinkCategory `json:"category"`
	Line     LineStyle        `json:"line"`
	Marker   Marker           `json:"marker"`
	MarkerAt End              `json:"markerAt"`
}

// Header renders the header compartment text of a node.
func Header(k uml.NodeKind, name string) string {
	spec, _ := Spec(k)
	if spec.Stereotype == "" {
		return name
	}
	return spec.Stereotype + " " + name
}

// AttributeLine renders one attribute or enumerator entry.
func AttributeLine(k uml.NodeKind, a uml.Attribute) string {
	spec, _ := Spec(k)
	if spec.Attributes == Visible {
		return fmt.Sprintf("%s %s: %s", VisibilitySymbol(a.Visibility), a.Name, a.Type)
	}
	return fmt.Sprintf("%s: %s", a.Name, a.Type)
}

// MethodLine renders one method. Parameters are not drawn.
func MethodLine(k uml.NodeKind, m uml.Method) string {
	spec, _ := Spec(k)
	showVisibility := spec.Methods == Visible || spec.Methods == OptionallyVisible
	if showVisibility && m.Visibility != "" {
		return fmt.Sprintf("%s %s(): %s", VisibilitySymbol(m.Visibility), m.Name, m.ReturnType)
	}
	return fmt.Sprintf("%s(): %s", m.Name, m.ReturnType)
}

// RenderNodeOf projects a single node.
func RenderNodeOf(n uml.Node) RenderNode {
	spec, _ := Spec(n.Kind)
	rn := RenderNode{
		ID:         n.ID,
		Kind:       n.Kind,
		Position:   n.Position,
		Stereotype: spec.Stereotype,
		Name:       n.Name,
		Header:     Header(n.Kind, n.Name),
		Attributes: make([]string, 0, len(n.Attributes)),
		Methods:    make([]string, 0, len(n.Methods)),
	}
	if spec.Extends && n.Extends != "" {
		rn.Note = "extends " + n.Extends
	}
	for _, a := range n.Attributes {
		rn.Attributes = append(rn.Attributes, AttributeLine(n.Kind, a))
	}
	for _, m := range n.Methods {
		rn.Methods = append(rn.Methods, MethodLine(n.Kind, m))
	}
	return rn
}

// Project maps a snapshot to its render model. It is pure: the same
// snapshot always yields the same model. Links whose endpoints are not in
// the snapshot are skipped.
func Project(s uml.Snapshot) RenderModel {
	rm := RenderModel{
		Nodes: make([]RenderNode, 0, len(s.Nodes)),
		Links: make([]RenderLink, 0, len(s.Links)),
	}
	known := make(map[uml.NodeID]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		known[n.ID] = true
		rm.Nodes = append(rm.Nodes, RenderNodeOf(n))
	}
	for _, l := range s.Links {
		style, ok := Style(l.Category)
		if !ok || !known[l.From] || !known[l.To] {
			continue
		}
		rm.Links = append(rm.Links, RenderLink{
			From:     l.From,
			To:       l.To,
			Category: l.Category,
			Line:     style.Line,
			Marker:   style.Marker,
			MarkerAt: EndTarget,
		})
	}
	return rm
}
