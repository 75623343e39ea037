package diagram

import (
	"errors"
	"fmt"

	"github.com/dusk-indust/umlcanvas/internal/uml"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Op identifies a transaction type.
type Op int

const (
	OpAddNode Op = iota
	OpUpdateNode
	OpAddLink
)

var opNames = [...]string{
	OpAddNode:    "addNode",
	OpUpdateNode: "updateNode",
	OpAddLink:    "addLink",
}

func (o Op) String() string {
	if o >= 0 && int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// MarshalText encodes the op by name.
func (o Op) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// Direction says whether a change applied, reverted or re-applied a step.
type Direction string

const (
	Applied  Direction = "apply"
	Reverted Direction = "undo"
	Replayed Direction = "redo"
)

// Change describes one applied transaction. Seq increases by one per change.
type Change struct {
	Seq       uint64     `json:"seq"`
	Op        Op         `json:"op"`
	Direction Direction  `json:"direction"`
	NodeID    uml.NodeID `json:"nodeId,omitempty"`
	Link      *uml.Link  `json:"link,omitempty"`
}

// step is one reversible transaction.
type step struct {
	op     Op
	before uml.Node // updateNode only
	after  uml.Node
	link   uml.Link
}

func (s step) change(seq uint64, d Direction) Change {
	ch := Change{Seq: seq, Op: s.op, Direction: d}
	switch s.op {
	case OpAddLink:
		l := s.link
		ch.Link = &l
	default:
		ch.NodeID = s.after.ID
	}
	return ch
}

// record pushes s onto the undo stack and clears redo. Caller holds mu.
func (m *Model) record(s step) Change {
	m.redo = m.redo[:0]
	if m.limit > 0 {
		m.undo = append(m.undo, s)
		if over := len(m.undo) - m.limit; over > 0 {
			m.undo = append(m.undo[:0], m.undo[over:]...)
		}
	}
	m.seq++
	return s.change(m.seq, Applied)
}

// CanUndo reports whether Undo has a step to revert.
func (m *Model) CanUndo() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.undo) > 0
}

// CanRedo reports whether Redo has a step to replay.
func (m *Model) CanRedo() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.redo) > 0
}

// Undo reverts the most recent transaction.
func (m *Model) Undo() (Change, error) {
	m.mu.Lock()
	if len(m.undo) == 0 {
		m.mu.Unlock()
		return Change{}, ErrNothingToUndo
	}
	s := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.revert(s)
	m.redo = append(m.redo, s)
	m.seq++
	ch := s.change(m.seq, Reverted)
	m.mu.Unlock()

	m.log.Debug("undo", "op", s.op, "seq", ch.Seq)
	m.notify(ch)
	return ch, nil
}

// Redo replays the most recently undone transaction.
func (m *Model) Redo() (Change, error) {
	m.mu.Lock()
	if len(m.redo) == 0 {
		m.mu.Unlock()
		return Change{}, ErrNothingToRedo
	}
	s := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	m.apply(s)
	m.undo = append(m.undo, s)
	m.seq++
	ch := s.change(m.seq, Replayed)
	m.mu.Unlock()

	m.log.Debug("redo", "op", s.op, "seq", ch.Seq)
	m.notify(ch)
	return ch, nil
}

// Steps are undone in reverse order, so a reverted addLink is always the
// last link and a reverted addNode has no links left pointing at it.
func (m *Model) revert(s step) {
	switch s.op {
	case OpAddNode:
		delete(m.nodes, s.after.ID)
	case OpUpdateNode:
		m.nodes[s.before.ID] = s.before
	case OpAddLink:
		m.links = m.links[:len(m.links)-1]
	}
}

func (m *Model) apply(s step) {
	switch s.op {
	case OpAddNode, OpUpdateNode:
		m.nodes[s.after.ID] = s.after
	case OpAddLink:
		m.links = append(m.links, s.link)
	}
}
