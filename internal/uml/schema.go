// Package uml defines the value types of a class diagram: node kinds,
// relationship categories, the type and visibility domains, and the
// node, member and link records the diagram model stores.
package uml

import (
	"fmt"
)

// --- Enums ---

// NodeKind classifies diagram elements.
type NodeKind int

const (
	KindClass NodeKind = iota
	KindInterface
	KindAbstractClass
	KindEnumeration

	// NumNodeKinds is the number of node kinds. Tables indexed by NodeKind
	// assert their length against it.
	NumNodeKinds
)

var nodeKindNames = [...]string{
	KindClass:         "class",
	KindInterface:     "interface",
	KindAbstractClass: "abstract",
	KindEnumeration:   "enum",
}

var _ = [1]struct{}{}[len(nodeKindNames)-int(NumNodeKinds)]

// NodeKinds lists every node kind in declaration order.
func NodeKinds() []NodeKind {
	return []NodeKind{KindClass, KindInterface, KindAbstractClass, KindEnumeration}
}

// Valid reports whether k is a declared kind.
func (k NodeKind) Valid() bool {
	return k >= 0 && k < NumNodeKinds
}

func (k NodeKind) String() string {
	if k.Valid() {
		return nodeKindNames[k]
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// ParseNodeKind maps a node-creation token to its kind.
func ParseNodeKind(s string) (NodeKind, bool) {
	for k, name := range nodeKindNames {
		if name == s {
			return NodeKind(k), true
		}
	}
	return 0, false
}

// MarshalText encodes the kind as its token.
func (k NodeKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("uml: invalid node kind %d", int(k))
	}
	return []byte(nodeKindNames[k]), nil
}

// UnmarshalText decodes a kind token.
func (k *NodeKind) UnmarshalText(b []byte) error {
	v, ok := ParseNodeKind(string(b))
	if !ok {
		return fmt.Errorf("uml: unknown node kind %q", b)
	}
	*k = v
	return nil
}

// LinkCategory classifies relationships between nodes.
type LinkCategory int

const (
	Inheritance LinkCategory = iota
	Implementation
	Association
	Aggregation
	Composition

	// NumLinkCategories is the number of link categories.
	NumLinkCategories
)

var linkCategoryNames = [...]string{
	Inheritance:    "inheritance",
	Implementation: "implementation",
	Association:    "association",
	Aggregation:    "aggregation",
	Composition:    "composition",
}

var _ = [1]struct{}{}[len(linkCategoryNames)-int(NumLinkCategories)]

// LinkCategories lists every category in declaration order.
func LinkCategories() []LinkCategory {
	return []LinkCategory{Inheritance, Implementation, Association, Aggregation, Composition}
}

// Valid reports whether c is a declared category.
func (c LinkCategory) Valid() bool {
	return c >= 0 && c < NumLinkCategories
}

func (c LinkCategory) String() string {
	if c.Valid() {
		return linkCategoryNames[c]
	}
	return fmt.Sprintf("LinkCategory(%d)", int(c))
}

// ParseLinkCategory maps a relationship token to its category.
func ParseLinkCategory(s string) (LinkCategory, bool) {
	for c, name := range linkCategoryNames {
		if name == s {
			return LinkCategory(c), true
		}
	}
	return 0, false
}

// MarshalText encodes the category as its token.
func (c LinkCategory) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("uml: invalid link category %d", int(c))
	}
	return []byte(linkCategoryNames[c]), nil
}

// UnmarshalText decodes a category token.
func (c *LinkCategory) UnmarshalText(b []byte) error {
	v, ok := ParseLinkCategory(string(b))
	if !ok {
		return fmt.Errorf("uml: unknown link category %q", b)
	}
	*c = v
	return nil
}

// TypeTag is the data type of an attribute, parameter or return value.
type TypeTag string

const (
	TypeString TypeTag = "string"
	TypeInt    TypeTag = "int"
	TypeFloat  TypeTag = "float"
	TypeDouble TypeTag = "double"
	TypeBool   TypeTag = "bool"
	TypeDate   TypeTag = "date"
	TypeVoid   TypeTag = "void" // method return types only
)

// ValueTypes are the tags valid for attributes, entries and parameters.
var ValueTypes = []TypeTag{TypeString, TypeInt, TypeFloat, TypeDouble, TypeBool, TypeDate}

// ReturnTypes are the tags valid for method return values.
var ReturnTypes = append(append([]TypeTag(nil), ValueTypes...), TypeVoid)

// IsValue reports whether t may type an attribute, entry or parameter.
func (t TypeTag) IsValue() bool {
	for _, v := range ValueTypes {
		if t == v {
			return true
		}
	}
	return false
}

// IsReturn reports whether t may type a method return value.
func (t TypeTag) IsReturn() bool {
	return t == TypeVoid || t.IsValue()
}

// Visibility is a UML access modifier. The zero value means "none" and is
// only meaningful where a kind carries no visibility.
type Visibility string

const (
	Public    Visibility = "public"
	Private   Visibility = "private"
	Protected Visibility = "protected"
	Package   Visibility = "package"
)

// Visibilities lists the visibility domain.
var Visibilities = []Visibility{Public, Private, Protected, Package}

// Valid reports whether v is inside the visibility domain. The empty
// visibility is not.
func (v Visibility) Valid() bool {
	for _, d := range Visibilities {
		if v == d {
			return true
		}
	}
	return false
}

// DropToken is the payload carried under the elementType drag key.
type DropToken string

// DragDataKey is the drag-data channel key carrying a DropToken.
const DragDataKey = "elementType"

// NodeKind returns the kind a node-creation token stands for. Tokens match
// exactly; padded or differently cased values are unknown.
func (t DropToken) NodeKind() (NodeKind, bool) {
	return ParseNodeKind(string(t))
}

// LinkCategory returns the category a relationship token stands for.
func (t DropToken) LinkCategory() (LinkCategory, bool) {
	return ParseLinkCategory(string(t))
}

// --- Models ---

// NodeID identifies a node for its whole lifetime.
type NodeID int64

// Position is a canvas coordinate in document space.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Parameter is one method parameter.
type Parameter struct {
	Name string  `json:"name"`
	Type TypeTag `json:"type"`
}

// Attribute is a class attribute or, on enumerations, an enumerator entry.
// ID is positional; Key is assigned once and survives re-indexing.
type Attribute struct {
	ID         int        `json:"id"`
	Key        string     `json:"key,omitempty"`
	Name       string     `json:"name"`
	Type       TypeTag    `json:"type"`
	Visibility Visibility `json:"visibility,omitempty"`
}

// Method is an operation on a class, abstract class or interface.
// ID is positional; Key is assigned once and survives re-indexing.
type Method struct {
	ID         int         `json:"id"`
	Key        string      `json:"key,omitempty"`
	Name       string      `json:"name"`
	Parameters []Parameter `json:"parameters"`
	ReturnType TypeTag     `json:"returnType"`
	Visibility Visibility  `json:"visibility,omitempty"`
}

// Fields is the editable content of a node: everything an editor dialog
// stages and a submit replaces.
type Fields struct {
	Name       string      `json:"name"`
	Attributes []Attribute `json:"attributes,omitempty"`
	Methods    []Method    `json:"methods,omitempty"`
	Extends    string      `json:"extends,omitempty"`
}

// Node is a diagram element. Which of the field lists are populated depends
// on Kind.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Position Position `json:"position"`
	Fields
}

// Link is a typed directed edge between two nodes.
type Link struct {
	From     NodeID       `json:"from"`
	To       NodeID       `json:"to"`
	Category LinkCategory `json:"category"`
}

// Snapshot is a read-only copy of a diagram's nodes (ordered by id) and
// links (in insertion order).
type Snapshot struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}
