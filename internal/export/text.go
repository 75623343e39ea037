package export

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/umlcanvas/internal/registry"
)

// Styler decorates the parts of a text rendering. The zero Styler leaves
// text unchanged.
type Styler struct {
	Header func(string) string
	Member func(string) string
	Note   func(string) string
	Link   func(string) string
}

func apply(fn func(string) string, s string) string {
	if fn == nil {
		return s
	}
	return fn(s)
}

// GenerateText renders one block per node followed by the link list.
func GenerateText(rm registry.RenderModel, st Styler) string {
	var sb strings.Builder
	for _, n := range rm.Nodes {
		sb.WriteString(apply(st.Header, n.Header))
		sb.WriteString(fmt.Sprintf("  #%d @ %s\n", n.ID, n.Position))
		if n.Note != "" {
			sb.WriteString("  " + apply(st.Note, n.Note) + "\n")
		}
		for _, line := range n.Attributes {
			sb.WriteString("    " + apply(st.Member, line) + "\n")
		}
		for _, line := range n.Methods {
			sb.WriteString("    " + apply(st.Member, line) + "\n")
		}
	}
	if len(rm.Links) > 0 {
		sb.WriteString("links:\n")
	}
	for _, l := range rm.Links {
		desc := fmt.Sprintf("%d -> %d %s (%s, %s at %s)", l.From, l.To, l.Category, l.Line, l.Marker, l.MarkerAt)
		sb.WriteString("  " + apply(st.Link, desc) + "\n")
	}
	return sb.String()
}
