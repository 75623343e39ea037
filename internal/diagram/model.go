// Package diagram owns the nodes and links of one class diagram. Every
// mutation is a single transaction: it applies fully and records one undo
// step, or it is rejected and leaves the model untouched.
package diagram

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/dusk-indust/umlcanvas/internal/registry"
	"github.com/dusk-indust/umlcanvas/internal/uml"
)

var (
	// ErrUnknownNode is returned when an id does not resolve to a node.
	ErrUnknownNode = errors.New("unknown node")
	// ErrDuplicateNode is returned by AddNode when the id is taken.
	ErrDuplicateNode = errors.New("duplicate node id")
	// ErrKindMismatch is returned when a record's kind differs from the node it targets.
	ErrKindMismatch = errors.New("node kind mismatch")
	// ErrInvalidField aliases registry.ErrInvalidField so callers need not import registry.
	ErrInvalidField = registry.ErrInvalidField
)

// DefaultHistoryLimit is the undo depth used when no limit is configured.
const DefaultHistoryLimit = 100

// Option configures a Model.
type Option func(*Model)

// WithHistoryLimit caps the number of undo steps kept. n <= 0 disables undo.
func WithHistoryLimit(n int) Option {
	return func(m *Model) { m.limit = n }
}

// WithLogger sets the logger for committed and rejected transactions.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// Model is the diagram. Safe for concurrent use. Listeners run outside the
// lock, on the goroutine that committed.
type Model struct {
	mu    sync.RWMutex
	nodes map[uml.NodeID]uml.Node
	links []uml.Link

	undo  []step
	redo  []step
	limit int
	seq   uint64

	listenMu  sync.Mutex
	listeners []func(Change)

	log *slog.Logger
}

// New returns an empty model.
func New(opts ...Option) *Model {
	m := &Model{
		nodes: make(map[uml.NodeID]uml.Node),
		limit: DefaultHistoryLimit,
		log:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnCommit registers fn to be called after every applied transaction,
// including undo and redo.
func (m *Model) OnCommit(fn func(Change)) {
	m.listenMu.Lock()
	defer m.listenMu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// AddNode inserts n. The kind must be known, the id unused, and the fields
// valid for the kind. Member ids are renumbered positionally on commit.
func (m *Model) AddNode(n uml.Node) error {
	if err := checkNode(n); err != nil {
		m.log.Warn("addNode rejected", "id", n.ID, "err", err)
		return fmt.Errorf("add node %d: %w", n.ID, err)
	}
	n = n.Clone()
	n.Normalize()

	m.mu.Lock()
	if _, exists := m.nodes[n.ID]; exists {
		m.mu.Unlock()
		return fmt.Errorf("add node %d: %w", n.ID, ErrDuplicateNode)
	}
	m.nodes[n.ID] = n
	ch := m.record(step{op: OpAddNode, after: n})
	m.mu.Unlock()

	m.log.Debug("node added", "id", n.ID, "kind", n.Kind, "name", n.Name)
	m.notify(ch)
	return nil
}

// UpdateNode replaces the editable fields of node id. Its id, kind and
// position are kept.
func (m *Model) UpdateNode(id uml.NodeID, f uml.Fields) error {
	f = f.Clone()
	f.Normalize()

	m.mu.Lock()
	before, ok := m.nodes[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("update node %d: %w", id, ErrUnknownNode)
	}
	if err := registry.Validate(before.Kind, f); err != nil {
		m.mu.Unlock()
		m.log.Warn("updateNode rejected", "id", id, "err", err)
		return fmt.Errorf("update node %d: %w", id, err)
	}
	after := before
	after.Fields = f
	m.nodes[id] = after
	ch := m.record(step{op: OpUpdateNode, before: before, after: after})
	m.mu.Unlock()

	m.log.Debug("node updated", "id", id, "name", f.Name)
	m.notify(ch)
	return nil
}

// AddLink appends l. Both endpoints must resolve to existing nodes and the
// category must be known; otherwise nothing changes.
func (m *Model) AddLink(l uml.Link) error {
	if !l.Category.Valid() {
		return fmt.Errorf("add link: %w", &registry.FieldError{
			Path: "category", Value: l.Category.String(), Reason: "unknown link category",
		})
	}

	m.mu.Lock()
	for _, id := range []uml.NodeID{l.From, l.To} {
		if _, ok := m.nodes[id]; !ok {
			m.mu.Unlock()
			m.log.Warn("addLink rejected", "from", l.From, "to", l.To, "missing", id)
			return fmt.Errorf("add link %d->%d: node %d: %w", l.From, l.To, id, ErrUnknownNode)
		}
	}
	m.links = append(m.links, l)
	ch := m.record(step{op: OpAddLink, link: l})
	m.mu.Unlock()

	m.log.Debug("link added", "from", l.From, "to", l.To, "category", l.Category)
	m.notify(ch)
	return nil
}

// Node returns a copy of node id.
func (m *Model) Node(id uml.NodeID) (uml.Node, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[id]
	if !ok {
		return uml.Node{}, false
	}
	return n.Clone(), true
}

// Nodes returns copies of all nodes ordered by id, which is creation order.
func (m *Model) Nodes() []uml.Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedNodes()
}

// Links returns the links in insertion order.
func (m *Model) Links() []uml.Link {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.links)
}

// Snapshot returns a consistent copy of the whole diagram.
func (m *Model) Snapshot() uml.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	links := make([]uml.Link, len(m.links))
	copy(links, m.links)
	return uml.Snapshot{Nodes: m.sortedNodes(), Links: links}
}

func (m *Model) sortedNodes() []uml.Node {
	out := make([]uml.Node, 0, len(m.nodes))
	for _, n := range m.nodes {
		out = append(out, n.Clone())
	}
	slices.SortFunc(out, func(a, b uml.Node) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

// Stats counts nodes per kind and links per category.
type Stats struct {
	Nodes      int                      `json:"nodes"`
	Links      int                      `json:"links"`
	ByKind     map[uml.NodeKind]int     `json:"byKind"`
	ByCategory map[uml.LinkCategory]int `json:"byCategory"`
}

// Stats summarizes the diagram.
func (m *Model) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := Stats{
		Nodes:      len(m.nodes),
		Links:      len(m.links),
		ByKind:     make(map[uml.NodeKind]int),
		ByCategory: make(map[uml.LinkCategory]int),
	}
	for _, n := range m.nodes {
		s.ByKind[n.Kind]++
	}
	for _, l := range m.links {
		s.ByCategory[l.Category]++
	}
	return s
}

func checkNode(n uml.Node) error {
	if !n.Kind.Valid() {
		return &registry.FieldError{Path: "kind", Value: n.Kind.String(), Reason: "unknown node kind"}
	}
	for _, v := range []float64{n.Position.X, n.Position.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &registry.FieldError{Path: "position", Value: n.Position.String(), Reason: "coordinate not finite"}
		}
	}
	return registry.Validate(n.Kind, n.Fields)
}

func (m *Model) notify(ch Change) {
	m.listenMu.Lock()
	fns := slices.Clone(m.listeners)
	m.listenMu.Unlock()
	for _, fn := range fns {
		fn(ch)
	}
}
