package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dusk-indust/umlcanvas/internal/canvas"
	"github.com/dusk-indust/umlcanvas/internal/editor"
	"github.com/dusk-indust/umlcanvas/internal/uml"
)

var (
	// ErrNodeNotFound is returned when a step names a node that does not exist.
	ErrNodeNotFound = errors.New("node not found")
	// ErrExpectation is returned when a step's outcome does not match its Expect.
	ErrExpectation = errors.New("expectation failed")
)

// StepResult records the outcome of one step.
type StepResult struct {
	Index    int
	Action   string
	Accepted bool
	Err      error
	Phase    canvas.Phase
}

// Result is the outcome of a script run.
type Result struct {
	Name  string
	Steps []StepResult
}

// Rejected counts the steps that were ignored or refused.
func (r *Result) Rejected() int {
	n := 0
	for _, s := range r.Steps {
		if !s.Accepted {
			n++
		}
	}
	return n
}

// Option configures Run.
type Option func(*runner)

// WithLogger sets the logger used for step tracing.
func WithLogger(l *slog.Logger) Option {
	return func(r *runner) { r.log = l }
}

// Strict makes a rejected step without a matching Expect fail the run.
func Strict() Option {
	return func(r *runner) { r.strict = true }
}

type runner struct {
	log    *slog.Logger
	strict bool
}

// Run replays s against sess. Rejected inputs are recorded and the run
// continues, unless the step's Expect disagrees or Strict is set. The
// context is checked between steps.
func Run(ctx context.Context, sess *canvas.Session, s *Script, opts ...Option) (*Result, error) {
	r := &runner{log: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(r)
	}

	res := &Result{Name: s.Name}
	for i, st := range s.Steps {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		action, err := st.Action()
		if err != nil {
			return res, fmt.Errorf("step %d: %w", i+1, err)
		}

		sr := StepResult{Index: i + 1, Action: action}
		_ = sess.Do(func(c *canvas.Controller) error {
			sr.Accepted, sr.Err = apply(c, st)
			if sr.Err != nil {
				sr.Accepted = false
			}
			sr.Phase = c.State().Phase
			return nil
		})
		res.Steps = append(res.Steps, sr)
		r.log.Debug("script step", "step", sr.Index, "action", action, "accepted", sr.Accepted, "phase", sr.Phase, "err", sr.Err)

		if err := check(st.Expect, sr, r.strict); err != nil {
			return res, fmt.Errorf("step %d (%s): %w", sr.Index, action, err)
		}
	}
	return res, nil
}

func check(e *Expect, sr StepResult, strict bool) error {
	if e == nil {
		if strict && !sr.Accepted {
			if sr.Err != nil {
				return fmt.Errorf("rejected: %w", sr.Err)
			}
			return fmt.Errorf("input ignored: %w", ErrExpectation)
		}
		return nil
	}
	rejected := e.Rejected || e.Error != ""
	if rejected && sr.Accepted {
		return fmt.Errorf("want rejection, input accepted: %w", ErrExpectation)
	}
	if !rejected && !sr.Accepted {
		return fmt.Errorf("want acceptance, got %v: %w", sr.Err, ErrExpectation)
	}
	if e.Error != "" && (sr.Err == nil || !strings.Contains(sr.Err.Error(), e.Error)) {
		return fmt.Errorf("want error containing %q, got %v: %w", e.Error, sr.Err, ErrExpectation)
	}
	if e.Phase != "" && e.Phase != sr.Phase.String() {
		return fmt.Errorf("want phase %s, got %s: %w", e.Phase, sr.Phase, ErrExpectation)
	}
	return nil
}

// apply feeds one step into the controller.
func apply(c *canvas.Controller, st Step) (bool, error) {
	switch {
	case st.Drop != "":
		var at uml.Position
		if st.At != nil {
			at = *st.At
		}
		return c.Drop(uml.DropToken(st.Drop), at), nil
	case st.Click != "":
		id, err := resolve(c, st.Click)
		if err != nil {
			return false, err
		}
		return c.Click(id), nil
	case st.Pick != "":
		id, err := resolve(c, st.Pick)
		if err != nil {
			return false, err
		}
		return c.Pick(id)
	case st.Submit:
		return true, c.Submit()
	case st.Cancel:
		return c.CancelDialog(), nil
	case st.Escape:
		return c.Escape(), nil
	case st.Undo:
		_, err := c.Undo()
		return true, err
	case st.Redo:
		_, err := c.Redo()
		return true, err
	}

	d := c.Dialog()
	if d == nil {
		return false, canvas.ErrNoDialog
	}
	var err error
	switch {
	case st.Name != nil:
		err = d.SetName(*st.Name)
	case st.Extends != nil:
		err = editor.SetExtends(d, *st.Extends)
	case st.Attribute != nil:
		a := st.Attribute
		_, err = editor.AddAttribute(d, a.Name, uml.TypeTag(a.Type), uml.Visibility(a.Visibility))
	case st.Method != nil:
		m := st.Method
		params := make([]uml.Parameter, 0, len(m.Params))
		for _, p := range m.Params {
			params = append(params, uml.Parameter{Name: p.Name, Type: uml.TypeTag(p.Type)})
		}
		_, err = editor.AddMethod(d, m.Name, uml.TypeTag(m.Returns), uml.Visibility(m.Visibility), params)
	case st.Parameter != nil:
		p := st.Parameter
		_, err = editor.AddParameter(d, p.Method, p.Name, uml.TypeTag(p.Type))
	case st.Entry != nil:
		_, err = editor.AddEntry(d, st.Entry.Name, uml.TypeTag(st.Entry.Type))
	case st.Remove != nil:
		err = remove(d, *st.Remove)
	}
	return err == nil, err
}

func remove(d editor.Dialog, r RemoveStep) error {
	n := 0
	for _, set := range []bool{r.Attribute != nil, r.Method != nil, r.Entry != nil, r.Parameter != nil} {
		if set {
			n++
		}
	}
	if n != 1 {
		return fmt.Errorf("remove names one list: %w", ErrInvalidStep)
	}
	switch {
	case r.Attribute != nil:
		return editor.RemoveAttribute(d, *r.Attribute)
	case r.Method != nil:
		return editor.RemoveMethod(d, *r.Method)
	case r.Entry != nil:
		return editor.RemoveEntry(d, *r.Entry)
	default:
		return editor.RemoveParameter(d, r.Parameter.Method, r.Parameter.Index)
	}
}

// resolve maps a node reference to its id. A numeric reference is an id;
// anything else is matched against node names, oldest first.
func resolve(c *canvas.Controller, ref string) (uml.NodeID, error) {
	if n, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return uml.NodeID(n), nil
	}
	for _, n := range c.Model().Nodes() {
		if n.Name == ref {
			return n.ID, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", ref, ErrNodeNotFound)
}
