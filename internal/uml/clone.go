package uml

import "github.com/google/uuid"

// NewKey returns a fresh stable member key. Tests may replace it.
var NewKey = uuid.NewString

// Clone returns a deep copy of f.
func (f Fields) Clone() Fields {
	out := Fields{Name: f.Name, Extends: f.Extends}
	if f.Attributes != nil {
		out.Attributes = make([]Attribute, len(f.Attributes))
		copy(out.Attributes, f.Attributes)
	}
	if f.Methods != nil {
		out.Methods = make([]Method, len(f.Methods))
		for i, m := range f.Methods {
			out.Methods[i] = m.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of m.
func (m Method) Clone() Method {
	if m.Parameters != nil {
		params := make([]Parameter, len(m.Parameters))
		copy(params, m.Parameters)
		m.Parameters = params
	}
	return m
}

// Clone returns a deep copy of n.
func (n Node) Clone() Node {
	n.Fields = n.Fields.Clone()
	return n
}

// Normalize renumbers attribute and method ids to 0..n-1 in list order and
// assigns a key to every member that lacks one.
func (f *Fields) Normalize() {
	for i := range f.Attributes {
		f.Attributes[i].ID = i
		if f.Attributes[i].Key == "" {
			f.Attributes[i].Key = NewKey()
		}
	}
	for i := range f.Methods {
		f.Methods[i].ID = i
		if f.Methods[i].Key == "" {
			f.Methods[i].Key = NewKey()
		}
	}
}
