package editor

import (
	"fmt"

	"github.com/dusk-indust/umlcanvas/internal/registry"
	"github.com/dusk-indust/umlcanvas/internal/uml"
)

// New items take the defaults the editors have always offered.
const (
	DefaultAttributeType  = uml.TypeString
	DefaultVisibility     = uml.Public
	DefaultReturnType     = uml.TypeVoid
	DefaultParameterType  = uml.TypeString
	DefaultEnumeratorType = uml.TypeString
)

func checkIndex(list string, i, n int) error {
	if i < 0 || i >= n {
		return &IndexError{List: list, Index: i, Len: n}
	}
	return nil
}

func checkValueType(path string, t uml.TypeTag) error {
	if !t.IsValue() {
		return &registry.FieldError{Path: path, Value: string(t), Reason: "type outside value domain"}
	}
	return nil
}

func checkVisibility(path string, v uml.Visibility) error {
	if !v.Valid() {
		return &registry.FieldError{Path: path, Value: string(v), Reason: "visibility outside domain"}
	}
	return nil
}

// --- attributes ---

type attributes struct{ *staging }

func (a attributes) AddAttribute() (int, error) {
	if !a.open {
		return 0, ErrNotOpen
	}
	id := len(a.f.Attributes)
	a.f.Attributes = append(a.f.Attributes, uml.Attribute{
		ID:         id,
		Key:        uml.NewKey(),
		Type:       DefaultAttributeType,
		Visibility: DefaultVisibility,
	})
	return id, nil
}

func (a attributes) RemoveAttribute(i int) error {
	if err := a.attr(i); err != nil {
		return err
	}
	a.f.Attributes = removeAttribute(a.f.Attributes, i)
	return nil
}

func (a attributes) SetAttributeName(i int, name string) error {
	if err := a.attr(i); err != nil {
		return err
	}
	a.f.Attributes[i].Name = name
	return nil
}

func (a attributes) SetAttributeType(i int, t uml.TypeTag) error {
	if err := a.attr(i); err != nil {
		return err
	}
	if err := checkValueType(fmt.Sprintf("attributes[%d].type", i), t); err != nil {
		return err
	}
	a.f.Attributes[i].Type = t
	return nil
}

func (a attributes) SetAttributeVisibility(i int, v uml.Visibility) error {
	if err := a.attr(i); err != nil {
		return err
	}
	if err := checkVisibility(fmt.Sprintf("attributes[%d].visibility", i), v); err != nil {
		return err
	}
	a.f.Attributes[i].Visibility = v
	return nil
}

func (a attributes) attr(i int) error {
	if !a.open {
		return ErrNotOpen
	}
	return checkIndex("attributes", i, len(a.f.Attributes))
}

// removeAttribute deletes list[i] and renumbers the rest 0..n-2.
func removeAttribute(list []uml.Attribute, i int) []uml.Attribute {
	list = append(list[:i], list[i+1:]...)
	for j := range list {
		list[j].ID = j
	}
	return list
}

// --- entries ---

// entries are enumerators, stored as attributes without visibility.
type entries struct{ *staging }

func (e entries) AddEntry() (int, error) {
	if !e.open {
		return 0, ErrNotOpen
	}
	id := len(e.f.Attributes)
	e.f.Attributes = append(e.f.Attributes, uml.Attribute{
		ID:   id,
		Key:  uml.NewKey(),
		Type: DefaultEnumeratorType,
	})
	return id, nil
}

func (e entries) RemoveEntry(i int) error {
	if err := e.entry(i); err != nil {
		return err
	}
	e.f.Attributes = removeAttribute(e.f.Attributes, i)
	return nil
}

func (e entries) SetEntryName(i int, name string) error {
	if err := e.entry(i); err != nil {
		return err
	}
	e.f.Attributes[i].Name = name
	return nil
}

func (e entries) SetEntryType(i int, t uml.TypeTag) error {
	if err := e.entry(i); err != nil {
		return err
	}
	if err := checkValueType(fmt.Sprintf("entries[%d].type", i), t); err != nil {
		return err
	}
	e.f.Attributes[i].Type = t
	return nil
}

func (e entries) entry(i int) error {
	if !e.open {
		return ErrNotOpen
	}
	return checkIndex("entries", i, len(e.f.Attributes))
}

// --- methods ---

type methods struct {
	*staging
	vis uml.Visibility // visibility given to new methods
}

func (m methods) AddMethod() (int, error) {
	if !m.open {
		return 0, ErrNotOpen
	}
	id := len(m.f.Methods)
	m.f.Methods = append(m.f.Methods, uml.Method{
		ID:         id,
		Key:        uml.NewKey(),
		Parameters: []uml.Parameter{},
		ReturnType: DefaultReturnType,
		Visibility: m.vis,
	})
	return id, nil
}

func (m methods) RemoveMethod(i int) error {
	if err := m.method(i); err != nil {
		return err
	}
	m.f.Methods = append(m.f.Methods[:i], m.f.Methods[i+1:]...)
	for j := range m.f.Methods {
		m.f.Methods[j].ID = j
	}
	return nil
}

func (m methods) SetMethodName(i int, name string) error {
	if err := m.method(i); err != nil {
		return err
	}
	m.f.Methods[i].Name = name
	return nil
}

func (m methods) SetMethodReturnType(i int, t uml.TypeTag) error {
	if err := m.method(i); err != nil {
		return err
	}
	if !t.IsReturn() {
		return &registry.FieldError{
			Path: fmt.Sprintf("methods[%d].returnType", i), Value: string(t), Reason: "type outside return domain",
		}
	}
	m.f.Methods[i].ReturnType = t
	return nil
}

func (m methods) AddParameter(method int) (int, error) {
	if err := m.method(method); err != nil {
		return 0, err
	}
	meth := &m.f.Methods[method]
	meth.Parameters = append(meth.Parameters, uml.Parameter{Type: DefaultParameterType})
	return len(meth.Parameters) - 1, nil
}

func (m methods) RemoveParameter(method, i int) error {
	if err := m.param(method, i); err != nil {
		return err
	}
	meth := &m.f.Methods[method]
	meth.Parameters = append(meth.Parameters[:i], meth.Parameters[i+1:]...)
	return nil
}

func (m methods) SetParameterName(method, i int, name string) error {
	if err := m.param(method, i); err != nil {
		return err
	}
	m.f.Methods[method].Parameters[i].Name = name
	return nil
}

func (m methods) SetParameterType(method, i int, t uml.TypeTag) error {
	if err := m.param(method, i); err != nil {
		return err
	}
	if err := checkValueType(fmt.Sprintf("methods[%d].parameters[%d].type", method, i), t); err != nil {
		return err
	}
	m.f.Methods[method].Parameters[i].Type = t
	return nil
}

func (m methods) method(i int) error {
	if !m.open {
		return ErrNotOpen
	}
	return checkIndex("methods", i, len(m.f.Methods))
}

func (m methods) param(method, i int) error {
	if err := m.method(method); err != nil {
		return err
	}
	return checkIndex(fmt.Sprintf("methods[%d].parameters", method), i, len(m.f.Methods[method].Parameters))
}

type methodVisibility struct{ *staging }

func (m methodVisibility) SetMethodVisibility(i int, v uml.Visibility) error {
	if !m.open {
		return ErrNotOpen
	}
	if err := checkIndex("methods", i, len(m.f.Methods)); err != nil {
		return err
	}
	if err := checkVisibility(fmt.Sprintf("methods[%d].visibility", i), v); err != nil {
		return err
	}
	m.f.Methods[i].Visibility = v
	return nil
}

// --- extends ---

type extendsLabel struct{ *staging }

func (e extendsLabel) SetExtends(label string) error {
	if !e.open {
		return ErrNotOpen
	}
	e.f.Extends = label
	return nil
}
