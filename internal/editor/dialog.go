// Package editor implements the staged-edit dialogs, one per node kind.
// A dialog works on a private copy of a node's fields; nothing reaches the
// diagram until the caller commits the record returned by Submit.
package editor

import (
	"errors"
	"fmt"

	"github.com/dusk-indust/umlcanvas/internal/registry"
	"github.com/dusk-indust/umlcanvas/internal/uml"
)

var (
	// ErrNotOpen is returned by every edit while the dialog is closed.
	ErrNotOpen = errors.New("dialog not open")
	// ErrIndex is wrapped by IndexError.
	ErrIndex = errors.New("index out of range")
	// ErrUnsupported is returned when a dialog does not edit the requested list.
	ErrUnsupported = errors.New("not supported by this dialog")
)

// IndexError reports an index outside a staged list.
type IndexError struct {
	List  string
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s[%d]: index out of range (len %d)", e.List, e.Index, e.Len)
}

func (e *IndexError) Unwrap() error { return ErrIndex }

// Dialog is the behaviour every kind's editor shares.
type Dialog interface {
	Kind() uml.NodeKind
	Title() string
	// Open starts a staging session. A nil initial opens the empty template;
	// otherwise the fields are deep-copied. Opening an open dialog restarts it.
	Open(initial *uml.Fields)
	IsOpen() bool
	SetName(name string) error
	// Staged returns a copy of the staged fields.
	Staged() (uml.Fields, bool)
	// Submit returns the staged record and closes the dialog. A record that
	// fails validation is returned as an error and the dialog stays open.
	Submit() (Record, error)
	// Cancel discards the staged fields.
	Cancel()
}

// AttributeEditor edits visible attributes (class, abstract class).
type AttributeEditor interface {
	AddAttribute() (int, error)
	RemoveAttribute(i int) error
	SetAttributeName(i int, name string) error
	SetAttributeType(i int, t uml.TypeTag) error
	SetAttributeVisibility(i int, v uml.Visibility) error
}

// MethodEditor edits methods and their parameters.
type MethodEditor interface {
	AddMethod() (int, error)
	RemoveMethod(i int) error
	SetMethodName(i int, name string) error
	SetMethodReturnType(i int, t uml.TypeTag) error
	AddParameter(method int) (int, error)
	RemoveParameter(method, i int) error
	SetParameterName(method, i int, name string) error
	SetParameterType(method, i int, t uml.TypeTag) error
}

// MethodVisibilityEditor sets method visibility where the kind renders it.
type MethodVisibilityEditor interface {
	SetMethodVisibility(i int, v uml.Visibility) error
}

// EntryEditor edits enumerator entries.
type EntryEditor interface {
	AddEntry() (int, error)
	RemoveEntry(i int) error
	SetEntryName(i int, name string) error
	SetEntryType(i int, t uml.TypeTag) error
}

// ExtendsEditor sets the free-text extends label.
type ExtendsEditor interface {
	SetExtends(label string) error
}

// staging is the open/closed state and staged copy shared by all dialogs.
type staging struct {
	kind uml.NodeKind
	open bool
	f    uml.Fields
}

func (s *staging) Kind() uml.NodeKind { return s.kind }

func (s *staging) Title() string {
	spec, _ := registry.Spec(s.kind)
	return spec.Title
}

func (s *staging) Open(initial *uml.Fields) {
	s.f = uml.Fields{}
	if initial != nil {
		rec, _ := RecordOf(s.kind, initial.Clone())
		s.f = rec.Fields()
		s.f.Normalize()
	}
	s.open = true
}

func (s *staging) IsOpen() bool { return s.open }

func (s *staging) SetName(name string) error {
	if !s.open {
		return ErrNotOpen
	}
	s.f.Name = name
	return nil
}

func (s *staging) Staged() (uml.Fields, bool) {
	if !s.open {
		return uml.Fields{}, false
	}
	return s.f.Clone(), true
}

func (s *staging) Submit() (Record, error) {
	if !s.open {
		return nil, ErrNotOpen
	}
	if err := registry.Validate(s.kind, s.f); err != nil {
		return nil, err
	}
	rec, _ := RecordOf(s.kind, s.f.Clone())
	s.Cancel()
	return rec, nil
}

func (s *staging) Cancel() {
	s.open = false
	s.f = uml.Fields{}
}

// ClassDialog edits a class: name, visible attributes and methods.
type ClassDialog struct {
	*staging
	attributes
	methods
	methodVisibility
}

// AbstractClassDialog edits an abstract class; same fields as a class.
type AbstractClassDialog struct {
	*staging
	attributes
	methods
	methodVisibility
}

// InterfaceDialog edits an interface: name, methods without visibility and
// an extends label.
type InterfaceDialog struct {
	*staging
	methods
	extendsLabel
}

// EnumerationDialog edits an enumeration: name and entries.
type EnumerationDialog struct {
	*staging
	entries
}

func NewClassDialog() *ClassDialog {
	s := &staging{kind: uml.KindClass}
	return &ClassDialog{s, attributes{s}, methods{s, uml.Public}, methodVisibility{s}}
}

func NewAbstractClassDialog() *AbstractClassDialog {
	s := &staging{kind: uml.KindAbstractClass}
	return &AbstractClassDialog{s, attributes{s}, methods{s, uml.Public}, methodVisibility{s}}
}

func NewInterfaceDialog() *InterfaceDialog {
	s := &staging{kind: uml.KindInterface}
	return &InterfaceDialog{s, methods{s, ""}, extendsLabel{s}}
}

func NewEnumerationDialog() *EnumerationDialog {
	s := &staging{kind: uml.KindEnumeration}
	return &EnumerationDialog{s, entries{s}}
}

var constructors = [...]func() Dialog{
	uml.KindClass:         func() Dialog { return NewClassDialog() },
	uml.KindInterface:     func() Dialog { return NewInterfaceDialog() },
	uml.KindAbstractClass: func() Dialog { return NewAbstractClassDialog() },
	uml.KindEnumeration:   func() Dialog { return NewEnumerationDialog() },
}

// Every kind needs a dialog.
var _ = [1]struct{}{}[len(constructors)-int(uml.NumNodeKinds)]

var (
	_ AttributeEditor        = (*ClassDialog)(nil)
	_ MethodVisibilityEditor = (*AbstractClassDialog)(nil)
	_ MethodEditor           = (*InterfaceDialog)(nil)
	_ ExtendsEditor          = (*InterfaceDialog)(nil)
	_ EntryEditor            = (*EnumerationDialog)(nil)
)

// New returns a closed dialog for kind k.
func New(k uml.NodeKind) (Dialog, bool) {
	if !k.Valid() {
		return nil, false
	}
	return constructors[k](), true
}

// Set holds one dialog per kind.
type Set struct {
	dialogs [uml.NumNodeKinds]Dialog
}

// NewSet returns a Set with a closed dialog for every kind.
func NewSet() *Set {
	s := &Set{}
	for _, k := range uml.NodeKinds() {
		s.dialogs[k], _ = New(k)
	}
	return s
}

// For returns the dialog for k, or nil for an unknown kind.
func (s *Set) For(k uml.NodeKind) Dialog {
	if !k.Valid() {
		return nil
	}
	return s.dialogs[k]
}

// Open returns the dialogs that are currently open.
func (s *Set) Open() []Dialog {
	var out []Dialog
	for _, d := range s.dialogs {
		if d.IsOpen() {
			out = append(out, d)
		}
	}
	return out
}
