package canvas

import (
	"fmt"

	"github.com/dusk-indust/umlcanvas/internal/uml"
)

// Phase is the controller's interaction mode.
type Phase int

const (
	Idle Phase = iota
	PendingCreate
	Editing
	LinkDrawing
)

var phaseNames = [...]string{
	Idle:          "idle",
	PendingCreate: "pendingCreate",
	Editing:       "editing",
	LinkDrawing:   "linkDrawing",
}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// State is the controller state. Which fields are meaningful depends on
// Phase:
//
//	PendingCreate  Kind, Position
//	Editing        Kind, NodeID
//	LinkDrawing    Category, From (when HasFrom)
type State struct {
	Phase    Phase
	Kind     uml.NodeKind
	Position uml.Position
	NodeID   uml.NodeID
	Category uml.LinkCategory
	From     uml.NodeID
	HasFrom  bool
}

func (s State) String() string {
	switch s.Phase {
	case PendingCreate:
		return fmt.Sprintf("pendingCreate(%s, %s)", s.Kind, s.Position)
	case Editing:
		return fmt.Sprintf("editing(%d)", s.NodeID)
	case LinkDrawing:
		if s.HasFrom {
			return fmt.Sprintf("linkDrawing(%s, %d)", s.Category, s.From)
		}
		return fmt.Sprintf("linkDrawing(%s, none)", s.Category)
	}
	return s.Phase.String()
}
