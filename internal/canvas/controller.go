// Package canvas implements the interaction state machine that turns drops,
// clicks and dialog actions into diagram transactions.
package canvas

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dusk-indust/umlcanvas/internal/diagram"
	"github.com/dusk-indust/umlcanvas/internal/editor"
	"github.com/dusk-indust/umlcanvas/internal/registry"
	"github.com/dusk-indust/umlcanvas/internal/uml"
)

var (
	// ErrNoDialog is returned by dialog actions while no dialog is open.
	ErrNoDialog = errors.New("no dialog open")
	// ErrBusy is returned by inputs that are only accepted while idle.
	ErrBusy = errors.New("controller busy")
	// ErrNotDrawing is returned by Pick outside link drawing.
	ErrNotDrawing = errors.New("not drawing a link")
)

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the clock node ids are taken from.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLogger sets the logger for transitions and rejected commits.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// Controller owns the interaction state and one dialog per node kind. It is
// not safe for concurrent use; see Session.
type Controller struct {
	model   *diagram.Model
	dialogs *editor.Set
	state   State
	dialog  editor.Dialog // open dialog in PendingCreate and Editing

	now    func() time.Time
	lastID uml.NodeID
	log    *slog.Logger
}

// New returns an idle controller driving m.
func New(m *diagram.Model, opts ...Option) *Controller {
	c := &Controller{
		model:   m,
		dialogs: editor.NewSet(),
		now:     time.Now,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Model returns the diagram the controller commits to.
func (c *Controller) Model() *diagram.Model { return c.model }

// Dialog returns the open dialog, or nil.
func (c *Controller) Dialog() editor.Dialog { return c.dialog }

// Render projects the current diagram.
func (c *Controller) Render() registry.RenderModel {
	return registry.Project(c.model.Snapshot())
}

// Advisories lists blank names in the open dialog's staged fields.
func (c *Controller) Advisories() []string {
	if c.dialog == nil {
		return nil
	}
	f, _ := c.dialog.Staged()
	return registry.Advisories(c.dialog.Kind(), f)
}

func (c *Controller) transition(next State) {
	c.log.Debug("transition", "from", c.state, "to", next)
	c.state = next
}

// Drop handles a palette drop. A node token opens the empty dialog for its
// kind; a relationship token starts link drawing. Anything else, or a drop
// outside Idle, is ignored and reported as false.
func (c *Controller) Drop(token uml.DropToken, at uml.Position) bool {
	if c.state.Phase != Idle {
		c.log.Debug("drop ignored", "token", token, "state", c.state)
		return false
	}
	if k, ok := token.NodeKind(); ok {
		c.openDialog(k, nil)
		c.transition(State{Phase: PendingCreate, Kind: k, Position: at})
		return true
	}
	if cat, ok := token.LinkCategory(); ok {
		c.transition(State{Phase: LinkDrawing, Category: cat})
		return true
	}
	c.log.Debug("unknown drop token", "token", token)
	return false
}

// Click handles a click on node id. In Idle it opens the node's dialog
// pre-filled; in LinkDrawing it picks the node. It reports whether the
// click was consumed.
func (c *Controller) Click(id uml.NodeID) bool {
	switch c.state.Phase {
	case Idle:
		n, ok := c.model.Node(id)
		if !ok {
			return false
		}
		c.openDialog(n.Kind, &n.Fields)
		c.transition(State{Phase: Editing, Kind: n.Kind, NodeID: id})
		return true
	case LinkDrawing:
		ok, err := c.Pick(id)
		return ok && err == nil
	}
	return false
}

func (c *Controller) openDialog(k uml.NodeKind, f *uml.Fields) {
	d := c.dialogs.For(k)
	d.Open(f)
	c.dialog = d
}

// Pick selects a link endpoint. The first pick sets the source; the second
// commits the link and returns to Idle. A pick that does not resolve to a
// node leaves the state unchanged.
func (c *Controller) Pick(id uml.NodeID) (bool, error) {
	if c.state.Phase != LinkDrawing {
		return false, ErrNotDrawing
	}
	if _, ok := c.model.Node(id); !ok {
		return false, fmt.Errorf("pick %d: %w", id, diagram.ErrUnknownNode)
	}
	if !c.state.HasFrom {
		next := c.state
		next.From, next.HasFrom = id, true
		c.transition(next)
		return true, nil
	}
	l := uml.Link{From: c.state.From, To: id, Category: c.state.Category}
	if err := c.model.AddLink(l); err != nil {
		c.log.Warn("link rejected", "link", l, "err", err)
		return false, err
	}
	c.transition(State{Phase: Idle})
	return true, nil
}

// Submit commits the open dialog's record: addNode from PendingCreate,
// updateNode from Editing. On any rejection the dialog stays open with its
// staged fields and the state is unchanged.
func (c *Controller) Submit() error {
	if c.dialog == nil {
		return ErrNoDialog
	}
	rec, err := c.dialog.Submit()
	if err != nil {
		c.log.Warn("submit rejected", "state", c.state, "err", err)
		return err
	}
	if err := c.commit(rec); err != nil {
		f := rec.Fields()
		c.dialog.Open(&f)
		c.log.Warn("commit rejected", "state", c.state, "err", err)
		return err
	}
	c.dialog = nil
	c.transition(State{Phase: Idle})
	return nil
}

func (c *Controller) commit(rec editor.Record) error {
	if rec.Kind() != c.state.Kind {
		return fmt.Errorf("%s record for %s: %w", rec.Kind(), c.state.Kind, diagram.ErrKindMismatch)
	}
	switch c.state.Phase {
	case PendingCreate:
		return c.model.AddNode(uml.Node{
			ID:       c.nextID(),
			Kind:     c.state.Kind,
			Position: c.state.Position,
			Fields:   rec.Fields(),
		})
	case Editing:
		return c.model.UpdateNode(c.state.NodeID, rec.Fields())
	}
	return ErrNoDialog
}

// nextID returns the creation timestamp in milliseconds, bumped past the
// last id handed out and any id already in the diagram.
func (c *Controller) nextID() uml.NodeID {
	id := uml.NodeID(c.now().UnixMilli())
	if id <= c.lastID {
		id = c.lastID + 1
	}
	for {
		if _, taken := c.model.Node(id); !taken {
			break
		}
		id++
	}
	c.lastID = id
	return id
}

// CancelDialog closes the open dialog without committing.
func (c *Controller) CancelDialog() bool {
	if c.dialog == nil {
		return false
	}
	c.dialog.Cancel()
	c.dialog = nil
	c.transition(State{Phase: Idle})
	return true
}

// Escape returns to Idle from any state, discarding pending data. It
// reports whether anything was discarded.
func (c *Controller) Escape() bool {
	if c.state.Phase == Idle {
		return false
	}
	if c.dialog != nil {
		c.dialog.Cancel()
		c.dialog = nil
	}
	c.transition(State{Phase: Idle})
	return true
}

// Undo reverts the last transaction. Only accepted while idle.
func (c *Controller) Undo() (diagram.Change, error) {
	if c.state.Phase != Idle {
		return diagram.Change{}, fmt.Errorf("undo in %s: %w", c.state.Phase, ErrBusy)
	}
	return c.model.Undo()
}

// Redo replays the last undone transaction. Only accepted while idle.
func (c *Controller) Redo() (diagram.Change, error) {
	if c.state.Phase != Idle {
		return diagram.Change{}, fmt.Errorf("redo in %s: %w", c.state.Phase, ErrBusy)
	}
	return c.model.Redo()
}
