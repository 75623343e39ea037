// Package registry maps each node kind and link category to its field
// schema and rendering rules, and projects diagram snapshots into a
// render model. It holds no diagram state.
package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dusk-indust/umlcanvas/internal/uml"
)

// ErrInvalidField is wrapped by every FieldError.
var ErrInvalidField = errors.New("invalid field")

// FieldError reports a field value outside its kind's schema or domain.
type FieldError struct {
	Path   string // e.g. "attributes[2].visibility"
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("%s: %s (got %q)", e.Path, e.Reason, e.Value)
}

func (e *FieldError) Unwrap() error { return ErrInvalidField }

// MemberRule describes how a kind treats one of its member lists.
type MemberRule int

const (
	// Absent means the kind does not carry the list; it must be empty.
	Absent MemberRule = iota
	// Visible members require a visibility and render its symbol.
	Visible
	// OptionallyVisible members may omit visibility; the symbol renders when set.
	OptionallyVisible
	// Plain members carry no visibility; a stored value is rejected.
	Plain
)

// KindSpec is the registry entry for one node kind.
type KindSpec struct {
	Kind       uml.NodeKind
	Title      string // editor dialog title
	Stereotype string // header decoration; empty for plain classes
	Attributes MemberRule
	Methods    MemberRule
	Extends    bool // carries a free-text extends label
}

var kindSpecs = [...]KindSpec{
	uml.KindClass: {
		Kind:       uml.KindClass,
		Title:      "Class",
		Attributes: Visible,
		Methods:    OptionallyVisible,
	},
	uml.KindInterface: {
		Kind:       uml.KindInterface,
		Title:      "Interface",
		Stereotype: "<<Interface>>",
		Attributes: Absent,
		Methods:    Plain,
		Extends:    true,
	},
	uml.KindAbstractClass: {
		Kind:       uml.KindAbstractClass,
		Title:      "Abstract Class",
		Stereotype: "<<Abstract>>",
		Attributes: Visible,
		Methods:    OptionallyVisible,
	},
	uml.KindEnumeration: {
		Kind:       uml.KindEnumeration,
		Title:      "Enumeration",
		Stereotype: "<<Enumeration>>",
		Attributes: Plain,
		Methods:    Absent,
	},
}

// Every kind needs an entry.
var _ = [1]struct{}{}[len(kindSpecs)-int(uml.NumNodeKinds)]

// Spec returns the registry entry for k.
func Spec(k uml.NodeKind) (KindSpec, bool) {
	if !k.Valid() {
		return KindSpec{}, false
	}
	return kindSpecs[k], true
}

// Validate checks f against the schema of kind k: lists the kind does not
// carry must be empty, every type tag and visibility must lie inside its
// domain. Names are not checked; see Advisories.
func Validate(k uml.NodeKind, f uml.Fields) error {
	spec, ok := Spec(k)
	if !ok {
		return &FieldError{Path: "kind", Value: k.String(), Reason: "unknown node kind"}
	}

	if spec.Attributes == Absent && len(f.Attributes) > 0 {
		return &FieldError{Path: "attributes", Reason: fmt.Sprintf("%s carries no attributes", k)}
	}
	for i, a := range f.Attributes {
		path := fmt.Sprintf("attributes[%d]", i)
		if !a.Type.IsValue() {
			return &FieldError{Path: path + ".type", Value: string(a.Type), Reason: "type outside value domain"}
		}
		if err := checkVisibility(path, a.Visibility, spec.Attributes); err != nil {
			return err
		}
	}

	if spec.Methods == Absent && len(f.Methods) > 0 {
		return &FieldError{Path: "methods", Reason: fmt.Sprintf("%s carries no methods", k)}
	}
	for i, m := range f.Methods {
		path := fmt.Sprintf("methods[%d]", i)
		if !m.ReturnType.IsReturn() {
			return &FieldError{Path: path + ".returnType", Value: string(m.ReturnType), Reason: "type outside return domain"}
		}
		if err := checkVisibility(path, m.Visibility, spec.Methods); err != nil {
			return err
		}
		for j, p := range m.Parameters {
			if !p.Type.IsValue() {
				return &FieldError{
					Path:   fmt.Sprintf("%s.parameters[%d].type", path, j),
					Value:  string(p.Type),
					Reason: "type outside value domain",
				}
			}
		}
	}

	if !spec.Extends && f.Extends != "" {
		return &FieldError{Path: "extends", Value: f.Extends, Reason: fmt.Sprintf("%s carries no extends label", k)}
	}
	return nil
}

func checkVisibility(path string, v uml.Visibility, rule MemberRule) error {
	if rule == Plain {
		if v != "" {
			return &FieldError{Path: path + ".visibility", Value: string(v), Reason: "member carries no visibility"}
		}
		return nil
	}
	if v == "" && rule != Visible {
		return nil
	}
	if !v.Valid() {
		return &FieldError{Path: path + ".visibility", Value: string(v), Reason: "visibility outside domain"}
	}
	return nil
}

// Advisories lists blank names in f. They never block a commit.
func Advisories(k uml.NodeKind, f uml.Fields) []string {
	var out []string
	if strings.TrimSpace(f.Name) == "" {
		out = append(out, fmt.Sprintf("%s name is blank", k))
	}
	for i, a := range f.Attributes {
		if strings.TrimSpace(a.Name) == "" {
			out = append(out, fmt.Sprintf("attributes[%d] name is blank", i))
		}
	}
	for i, m := range f.Methods {
		if strings.TrimSpace(m.Name) == "" {
			out = append(out, fmt.Sprintf("methods[%d] name is blank", i))
		}
		for j, p := range m.Parameters {
			if strings.TrimSpace(p.Name) == "" {
				out = append(out, fmt.Sprintf("methods[%d].parameters[%d] name is blank", i, j))
			}
		}
	}
	return out
}
