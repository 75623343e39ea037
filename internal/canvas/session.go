package canvas

import (
	"sync"

	"github.com/dusk-indust/umlcanvas/internal/registry"
)

// Session serializes access to one Controller so that inputs from several
// goroutines never interleave inside a commit.
type Session struct {
	mu sync.Mutex
	c  *Controller
}

// NewSession wraps c.
func NewSession(c *Controller) *Session {
	return &Session{c: c}
}

// Do runs fn with exclusive access to the controller.
func (s *Session) Do(fn func(*Controller) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.c)
}

// State returns the controller state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.State()
}

// Render projects the current diagram.
func (s *Session) Render() registry.RenderModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Render()
}
