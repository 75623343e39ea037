package export

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/umlcanvas/internal/registry"
	"github.com/dusk-indust/umlcanvas/internal/uml"
)

// mermaidArrows maps a link style to a Mermaid relation written
// "target <arrow> source", so the marker lands on the target end.
var mermaidArrows = map[registry.Marker]string{
	registry.HollowTriangle: "<|",
	registry.OpenArrow:      "<",
	registry.HollowDiamond:  "o",
	registry.FilledDiamond:  "*",
}

var mermaidLines = map[registry.LineStyle]string{
	registry.Solid:  "--",
	registry.Dashed: "..",
}

// GenerateMermaid produces a Mermaid classDiagram from a render model.
// Node ids become N0, N1, ... in model order; names are shown as labels.
func GenerateMermaid(rm registry.RenderModel) string {
	ids := make(map[uml.NodeID]string, len(rm.Nodes))
	for i, n := range rm.Nodes {
		ids[n.ID] = fmt.Sprintf("N%d", i)
	}

	var sb strings.Builder
	sb.WriteString("classDiagram\n")

	for _, n := range rm.Nodes {
		id := ids[n.ID]
		sb.WriteString(fmt.Sprintf("  class %s[\"%s\"] {\n", id, mermaidText(n.Name)))
		if n.Stereotype != "" {
			sb.WriteString(fmt.Sprintf("    %s\n", n.Stereotype))
		}
		for _, line := range n.Attributes {
			sb.WriteString(fmt.Sprintf("    %s\n", mermaidText(line)))
		}
		for _, line := range n.Methods {
			sb.WriteString(fmt.Sprintf("    %s\n", mermaidText(line)))
		}
		sb.WriteString("  }\n")
		if n.Note != "" {
			sb.WriteString(fmt.Sprintf("  note for %s \"%s\"\n", id, mermaidText(n.Note)))
		}
	}

	for _, l := range rm.Links {
		from, okFrom := ids[l.From]
		to, okTo := ids[l.To]
		if !okFrom || !okTo {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s %s%s %s : %s\n",
			to, mermaidArrows[l.Marker], mermaidLines[l.Line], from, l.Category))
	}

	return sb.String()
}

// mermaidText escapes characters Mermaid treats as syntax inside labels.
func mermaidText(s string) string {
	r := strings.NewReplacer(`"`, "#quot;", "\n", " ", "{", "#123;", "}", "#125;")
	return r.Replace(s)
}
