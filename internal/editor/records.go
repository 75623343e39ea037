package editor

import "github.com/dusk-indust/umlcanvas/internal/uml"

// Record is the synchronous result of a dialog submit. Each kind returns
// only the fields it carries.
type Record interface {
	Kind() uml.NodeKind
	Fields() uml.Fields
}

type ClassRecord struct {
	Name       string          `json:"name"`
	Attributes []uml.Attribute `json:"attributes"`
	Methods    []uml.Method    `json:"methods"`
}

func (ClassRecord) Kind() uml.NodeKind { return uml.KindClass }

func (r ClassRecord) Fields() uml.Fields {
	return uml.Fields{Name: r.Name, Attributes: r.Attributes, Methods: r.Methods}
}

type AbstractClassRecord struct {
	Name       string          `json:"name"`
	Attributes []uml.Attribute `json:"attributes"`
	Methods    []uml.Method    `json:"methods"`
}

func (AbstractClassRecord) Kind() uml.NodeKind { return uml.KindAbstractClass }

func (r AbstractClassRecord) Fields() uml.Fields {
	return uml.Fields{Name: r.Name, Attributes: r.Attributes, Methods: r.Methods}
}

type InterfaceRecord struct {
	Name    string       `json:"name"`
	Methods []uml.Method `json:"methods"`
	Extends string       `json:"extends,omitempty"`
}

func (InterfaceRecord) Kind() uml.NodeKind { return uml.KindInterface }

func (r InterfaceRecord) Fields() uml.Fields {
	return uml.Fields{Name: r.Name, Methods: r.Methods, Extends: r.Extends}
}

// EnumerationRecord carries enumerator entries in place of attributes.
type EnumerationRecord struct {
	Name    string          `json:"name"`
	Entries []uml.Attribute `json:"entries"`
}

func (EnumerationRecord) Kind() uml.NodeKind { return uml.KindEnumeration }

func (r EnumerationRecord) Fields() uml.Fields {
	return uml.Fields{Name: r.Name, Attributes: r.Entries}
}

// RecordOf builds the record for kind k from f, dropping lists k does not carry.
func RecordOf(k uml.NodeKind, f uml.Fields) (Record, bool) {
	switch k {
	case uml.KindClass:
		return ClassRecord{Name: f.Name, Attributes: f.Attributes, Methods: f.Methods}, true
	case uml.KindAbstractClass:
		return AbstractClassRecord{Name: f.Name, Attributes: f.Attributes, Methods: f.Methods}, true
	case uml.KindInterface:
		return InterfaceRecord{Name: f.Name, Methods: f.Methods, Extends: f.Extends}, true
	case uml.KindEnumeration:
		return EnumerationRecord{Name: f.Name, Entries: f.Attributes}, true
	}
	return nil, false
}
