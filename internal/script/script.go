// Package script replays YAML event scripts against a canvas session.
//
// A script is a list of steps, each naming exactly one input:
//
//	name: bank
//	steps:
//	  - drop: class
//	    at: {x: 120, y: 80}
//	  - name: Account
//	  - attribute: {name: balance, type: double, visibility: private}
//	  - submit: true
//	  - drop: inheritance
//	  - pick: SavingsAccount
//	  - pick: Account
//
// Nodes are addressed by name or by numeric id.
package script

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/umlcanvas/internal/uml"
)

// ErrInvalidStep is returned for a step that names no input or more than one.
var ErrInvalidStep = errors.New("invalid step")

// Script is a named list of input steps.
type Script struct {
	Name  string `yaml:"name,omitempty"`
	Steps []Step `yaml:"steps"`
}

// Step is one input event. Exactly one action field is set; Expect
// optionally checks the outcome.
type Step struct {
	Drop string        `yaml:"drop,omitempty"`
	At   *uml.Position `yaml:"at,omitempty"`

	Click string `yaml:"click,omitempty"`
	Pick  string `yaml:"pick,omitempty"`

	Name      *string        `yaml:"name,omitempty"`
	Extends   *string        `yaml:"extends,omitempty"`
	Attribute *AttributeStep `yaml:"attribute,omitempty"`
	Method    *MethodStep    `yaml:"method,omitempty"`
	Parameter *ParameterStep `yaml:"parameter,omitempty"`
	Entry     *EntryStep     `yaml:"entry,omitempty"`
	Remove    *RemoveStep    `yaml:"remove,omitempty"`

	Submit bool `yaml:"submit,omitempty"`
	Cancel bool `yaml:"cancel,omitempty"`
	Escape bool `yaml:"escape,omitempty"`
	Undo   bool `yaml:"undo,omitempty"`
	Redo   bool `yaml:"redo,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// AttributeStep adds an attribute. Empty fields take the editor defaults.
type AttributeStep struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type,omitempty"`
	Visibility string `yaml:"visibility,omitempty"`
}

// ParamStep is one method parameter.
type ParamStep struct {
	Name string `yaml:"name"`
	Type string `yaml:"type,omitempty"`
}

// MethodStep adds a method with its parameters.
type MethodStep struct {
	Name       string      `yaml:"name"`
	Returns    string      `yaml:"returns,omitempty"`
	Visibility string      `yaml:"visibility,omitempty"`
	Params     []ParamStep `yaml:"params,omitempty"`
}

// ParameterStep appends a parameter to an already staged method.
type ParameterStep struct {
	Method int    `yaml:"method"`
	Name   string `yaml:"name"`
	Type   string `yaml:"type,omitempty"`
}

// EntryStep adds an enumeration entry.
type EntryStep struct {
	Name string `yaml:"name"`
	Type string `yaml:"type,omitempty"`
}

// RemoveStep removes one staged item by index.
type RemoveStep struct {
	Attribute *int          `yaml:"attribute,omitempty"`
	Method    *int          `yaml:"method,omitempty"`
	Entry     *int          `yaml:"entry,omitempty"`
	Parameter *ParameterRef `yaml:"parameter,omitempty"`
}

// ParameterRef addresses parameter Index of staged method Method.
type ParameterRef struct {
	Method int `yaml:"method"`
	Index  int `yaml:"index"`
}

// Expect checks a step's outcome. Rejected expects the input to be
// ignored or refused; Error, when set, must occur in the error text;
// Phase is the controller phase after the step.
type Expect struct {
	Rejected bool   `yaml:"rejected,omitempty"`
	Error    string `yaml:"error,omitempty"`
	Phase    string `yaml:"phase,omitempty"`
}

// Action names the step's input, or returns ErrInvalidStep.
func (s Step) Action() (string, error) {
	var set []string
	mark := func(ok bool, name string) {
		if ok {
			set = append(set, name)
		}
	}
	mark(s.Drop != "", "drop")
	mark(s.Click != "", "click")
	mark(s.Pick != "", "pick")
	mark(s.Name != nil, "name")
	mark(s.Extends != nil, "extends")
	mark(s.Attribute != nil, "attribute")
	mark(s.Method != nil, "method")
	mark(s.Parameter != nil, "parameter")
	mark(s.Entry != nil, "entry")
	mark(s.Remove != nil, "remove")
	mark(s.Submit, "submit")
	mark(s.Cancel, "cancel")
	mark(s.Escape, "escape")
	mark(s.Undo, "undo")
	mark(s.Redo, "redo")

	switch len(set) {
	case 0:
		return "", fmt.Errorf("no action: %w", ErrInvalidStep)
	case 1:
		if s.At != nil && set[0] != "drop" {
			return "", fmt.Errorf("at given for %s: %w", set[0], ErrInvalidStep)
		}
		return set[0], nil
	default:
		return "", fmt.Errorf("several actions (%s): %w", strings.Join(set, ", "), ErrInvalidStep)
	}
}

// Parse decodes a script. Unknown keys and malformed steps are errors.
func Parse(data []byte) (*Script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s Script
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	for i, st := range s.Steps {
		if _, err := st.Action(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return &s, nil
}

// LoadFile reads and parses a script file.
func LoadFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	return s, nil
}
