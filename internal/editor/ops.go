package editor

import (
	"fmt"

	"github.com/dusk-indust/umlcanvas/internal/registry"
	"github.com/dusk-indust/umlcanvas/internal/uml"
)

// The functions below drive any Dialog through its optional editors. They
// return ErrUnsupported when d lacks the capability, and a failed compound
// add leaves the staged list as it was.

func unsupported(d Dialog, what string) error {
	return fmt.Errorf("%s dialog: %s: %w", d.Kind(), what, ErrUnsupported)
}

// AddAttribute appends a named attribute. Empty t or v take the defaults.
func AddAttribute(d Dialog, name string, t uml.TypeTag, v uml.Visibility) (int, error) {
	ed, ok := d.(AttributeEditor)
	if !ok {
		return 0, unsupported(d, "attributes")
	}
	i, err := ed.AddAttribute()
	if err != nil {
		return 0, err
	}
	err = ed.SetAttributeName(i, name)
	if err == nil && t != "" {
		err = ed.SetAttributeType(i, t)
	}
	if err == nil && v != "" {
		err = ed.SetAttributeVisibility(i, v)
	}
	if err != nil {
		_ = ed.RemoveAttribute(i)
		return 0, err
	}
	return i, nil
}

// RemoveAttribute removes attribute i.
func RemoveAttribute(d Dialog, i int) error {
	ed, ok := d.(AttributeEditor)
	if !ok {
		return unsupported(d, "attributes")
	}
	return ed.RemoveAttribute(i)
}

// AddEntry appends a named enumerator entry. An empty t takes the default.
func AddEntry(d Dialog, name string, t uml.TypeTag) (int, error) {
	ed, ok := d.(EntryEditor)
	if !ok {
		return 0, unsupported(d, "entries")
	}
	i, err := ed.AddEntry()
	if err != nil {
		return 0, err
	}
	err = ed.SetEntryName(i, name)
	if err == nil && t != "" {
		err = ed.SetEntryType(i, t)
	}
	if err != nil {
		_ = ed.RemoveEntry(i)
		return 0, err
	}
	return i, nil
}

// RemoveEntry removes entry i.
func RemoveEntry(d Dialog, i int) error {
	ed, ok := d.(EntryEditor)
	if !ok {
		return unsupported(d, "entries")
	}
	return ed.RemoveEntry(i)
}

// AddMethod appends a method with its parameters. A non-empty v requires a
// dialog that renders method visibility.
func AddMethod(d Dialog, name string, ret uml.TypeTag, v uml.Visibility, params []uml.Parameter) (int, error) {
	ed, ok := d.(MethodEditor)
	if !ok {
		return 0, unsupported(d, "methods")
	}
	vis, hasVis := d.(MethodVisibilityEditor)
	if v != "" && !hasVis {
		return 0, unsupported(d, "method visibility")
	}

	i, err := ed.AddMethod()
	if err != nil {
		return 0, err
	}
	err = ed.SetMethodName(i, name)
	if err == nil && ret != "" {
		err = ed.SetMethodReturnType(i, ret)
	}
	if err == nil && v != "" {
		err = vis.SetMethodVisibility(i, v)
	}
	for _, p := range params {
		if err != nil {
			break
		}
		err = addParameter(ed, i, p.Name, p.Type)
	}
	if err != nil {
		_ = ed.RemoveMethod(i)
		return 0, err
	}
	return i, nil
}

// RemoveMethod removes method i.
func RemoveMethod(d Dialog, i int) error {
	ed, ok := d.(MethodEditor)
	if !ok {
		return unsupported(d, "methods")
	}
	return ed.RemoveMethod(i)
}

// AddParameter appends a parameter to method m.
func AddParameter(d Dialog, m int, name string, t uml.TypeTag) (int, error) {
	ed, ok := d.(MethodEditor)
	if !ok {
		return 0, unsupported(d, "methods")
	}
	if err := addParameter(ed, m, name, t); err != nil {
		return 0, err
	}
	f, _ := d.Staged()
	return len(f.Methods[m].Parameters) - 1, nil
}

func addParameter(ed MethodEditor, m int, name string, t uml.TypeTag) error {
	j, err := ed.AddParameter(m)
	if err != nil {
		return err
	}
	err = ed.SetParameterName(m, j, name)
	if err == nil && t != "" {
		err = ed.SetParameterType(m, j, t)
	}
	if err != nil {
		_ = ed.RemoveParameter(m, j)
	}
	return err
}

// RemoveParameter removes parameter i of method m.
func RemoveParameter(d Dialog, m, i int) error {
	ed, ok := d.(MethodEditor)
	if !ok {
		return unsupported(d, "methods")
	}
	return ed.RemoveParameter(m, i)
}

// SetExtends sets the extends label.
func SetExtends(d Dialog, label string) error {
	ed, ok := d.(ExtendsEditor)
	if !ok {
		return unsupported(d, "extends")
	}
	return ed.SetExtends(label)
}

// AttributePatch names the attribute fields to change; nil fields are kept.
type AttributePatch struct {
	Name       *string
	Type       *uml.TypeTag
	Visibility *uml.Visibility
}

// UpdateAttribute applies p to attribute i. Nothing changes unless every
// patched value is in its domain.
func UpdateAttribute(d Dialog, i int, p AttributePatch) error {
	ed, ok := d.(AttributeEditor)
	if !ok {
		return unsupported(d, "attributes")
	}
	if p.Type != nil {
		if err := checkValueType(fmt.Sprintf("attributes[%d].type", i), *p.Type); err != nil {
			return err
		}
	}
	if p.Visibility != nil {
		if err := checkVisibility(fmt.Sprintf("attributes[%d].visibility", i), *p.Visibility); err != nil {
			return err
		}
	}
	var err error
	if p.Name != nil {
		err = ed.SetAttributeName(i, *p.Name)
	}
	if err == nil && p.Type != nil {
		err = ed.SetAttributeType(i, *p.Type)
	}
	if err == nil && p.Visibility != nil {
		err = ed.SetAttributeVisibility(i, *p.Visibility)
	}
	return err
}

// EntryPatch names the entry fields to change; nil fields are kept.
type EntryPatch struct {
	Name *string
	Type *uml.TypeTag
}

// UpdateEntry applies p to entry i.
func UpdateEntry(d Dialog, i int, p EntryPatch) error {
	ed, ok := d.(EntryEditor)
	if !ok {
		return unsupported(d, "entries")
	}
	if p.Type != nil {
		if err := checkValueType(fmt.Sprintf("entries[%d].type", i), *p.Type); err != nil {
			return err
		}
	}
	var err error
	if p.Name != nil {
		err = ed.SetEntryName(i, *p.Name)
	}
	if err == nil && p.Type != nil {
		err = ed.SetEntryType(i, *p.Type)
	}
	return err
}

// MethodPatch names the method fields to change; nil fields are kept.
type MethodPatch struct {
	Name       *string
	ReturnType *uml.TypeTag
	Visibility *uml.Visibility
}

// UpdateMethod applies p to method i.
func UpdateMethod(d Dialog, i int, p MethodPatch) error {
	ed, ok := d.(MethodEditor)
	if !ok {
		return unsupported(d, "methods")
	}
	vis, hasVis := d.(MethodVisibilityEditor)
	if p.Visibility != nil && !hasVis {
		return unsupported(d, "method visibility")
	}
	if p.ReturnType != nil && !p.ReturnType.IsReturn() {
		return &registry.FieldError{
			Path: fmt.Sprintf("methods[%d].returnType", i), Value: string(*p.ReturnType), Reason: "type outside return domain",
		}
	}
	if p.Visibility != nil {
		if err := checkVisibility(fmt.Sprintf("methods[%d].visibility", i), *p.Visibility); err != nil {
			return err
		}
	}
	var err error
	if p.Name != nil {
		err = ed.SetMethodName(i, *p.Name)
	}
	if err == nil && p.ReturnType != nil {
		err = ed.SetMethodReturnType(i, *p.ReturnType)
	}
	if err == nil && p.Visibility != nil {
		err = vis.SetMethodVisibility(i, *p.Visibility)
	}
	return err
}

// ParameterPatch names the parameter fields to change; nil fields are kept.
type ParameterPatch struct {
	Name *string
	Type *uml.TypeTag
}

// UpdateParameter applies p to parameter i of method m.
func UpdateParameter(d Dialog, m, i int, p ParameterPatch) error {
	ed, ok := d.(MethodEditor)
	if !ok {
		return unsupported(d, "methods")
	}
	if p.Type != nil {
		if err := checkValueType(fmt.Sprintf("methods[%d].parameters[%d].type", m, i), *p.Type); err != nil {
			return err
		}
	}
	var err error
	if p.Name != nil {
		err = ed.SetParameterName(m, i, *p.Name)
	}
	if err == nil && p.Type != nil {
		err = ed.SetParameterType(m, i, *p.Type)
	}
	return err
}
