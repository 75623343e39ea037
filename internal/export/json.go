package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dusk-indust/umlcanvas/internal/diagram"
	"github.com/dusk-indust/umlcanvas/internal/registry"
)

// DiagramExport is the top-level JSON export structure.
type DiagramExport struct {
	ExportedAt string                `json:"exportedAt"`
	Stats      diagram.Stats         `json:"stats"`
	Nodes      []registry.RenderNode `json:"nodes"`
	Links      []registry.RenderLink `json:"links"`
}

// ExportDiagram builds a DiagramExport from the current model.
func ExportDiagram(m *diagram.Model) *DiagramExport {
	rm := registry.Project(m.Snapshot())
	return &DiagramExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Stats:      m.Stats(),
		Nodes:      rm.Nodes,
		Links:      rm.Links,
	}
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
