package decl

import (
	"maps"
	"slices"
	"strings"
)

// Modifier is a set of declaration modifiers.
type Modifier uint8

// Declaration modifiers. A member without Public is private to its type.
const (
	Public Modifier = 1 << iota
	Static
	Final
	Abstract
)

// Has reports whether m contains every modifier in o.
func (m Modifier) Has(o Modifier) bool { return m&o == o }

// String returns the modifiers in declaration order.
func (m Modifier) String() string {
	var s []string
	for _, x := range []struct {
		m    Modifier
		name string
	}{{Public, "public"}, {Static, "static"}, {Final, "final"}, {Abstract, "abstract"}} {
		if m.Has(x.m) {
			s = append(s, x.name)
		}
	}
	return strings.Join(s, " ")
}

// DeclKind distinguishes top-level from nested type declarations.
type DeclKind uint8

const (
	// Class is a top-level type.
	Class DeclKind = iota
	// NestedClass is a type declared inside another TypeDecl.
	NestedClass
)

// TypeDecl is the declaration of one generated type.
type TypeDecl struct {
	Name         TypeRef         `msgpack:"name"`
	Kind         DeclKind        `msgpack:"kind"`
	Modifiers    Modifier        `msgpack:"modifiers"`
	Doc          string          `msgpack:"doc,omitempty"`
	Superclass   *TypeRef        `msgpack:"superclass,omitempty"`
	Interfaces   []TypeRef       `msgpack:"interfaces,omitempty"`
	Nested       []*TypeDecl     `msgpack:"nested,omitempty"`
	Fields       []FieldDecl     `msgpack:"fields,omitempty"`
	Constructors []MethodDecl    `msgpack:"constructors,omitempty"`
	Methods      []MethodDecl    `msgpack:"methods,omitempty"`
	Annotations  []AnnotationUse `msgpack:"annotations,omitempty"`
}

// FieldDecl is a field of a TypeDecl. Tags carry per-field metadata such as
// serialization names.
type FieldDecl struct {
	Name      string            `msgpack:"name"`
	Type      TypeRef           `msgpack:"type"`
	Modifiers Modifier          `msgpack:"modifiers"`
	Tags      map[string]string `msgpack:"tags,omitempty"`
	Doc       string            `msgpack:"doc,omitempty"`
}

// Param is a named method parameter.
type Param struct {
	Name string  `msgpack:"name"`
	Type TypeRef `msgpack:"type"`
}

// MethodDecl is a method or constructor. Constructors have no name and no
// return type.
type MethodDecl struct {
	Name      string      `msgpack:"name,omitempty"`
	Modifiers Modifier    `msgpack:"modifiers"`
	Params    []Param     `msgpack:"params,omitempty"`
	Returns   *TypeRef    `msgpack:"returns,omitempty"`
	Throws    []TypeRef   `msgpack:"throws,omitempty"`
	Body      []Statement `msgpack:"-"`
	Doc       string      `msgpack:"doc,omitempty"`
}

// Value is an annotation member value: either a literal or a type.
type Value struct {
	Lit  any      `msgpack:"lit,omitempty"`
	Type *TypeRef `msgpack:"type,omitempty"`
}

// LitValue returns a literal annotation value.
func LitValue(v any) Value { return Value{Lit: v} }

// TypeValue returns a type annotation value.
func TypeValue(t TypeRef) Value { return Value{Type: &t} }

// AnnotationUse is an annotation attached to a declaration.
type AnnotationUse struct {
	Type    TypeRef          `msgpack:"type"`
	Members map[string]Value `msgpack:"members,omitempty"`
}

// Annotate returns an annotation of type t without members.
func Annotate(t TypeRef) AnnotationUse {
	return AnnotationUse{Type: t}
}

// With returns a copy of a with the member name set to v.
func (a AnnotationUse) With(name string, v Value) AnnotationUse {
	m := make(map[string]Value, len(a.Members)+1)
	maps.Copy(m, a.Members)
	m[name] = v
	a.Members = m
	return a
}

// MemberNames returns the member names of a in sorted order.
func (a AnnotationUse) MemberNames() []string {
	return slices.Sorted(maps.Keys(a.Members))
}

// NewClass returns an empty top-level declaration.
func NewClass(name TypeRef, mods Modifier) *TypeDecl {
	return &TypeDecl{Name: name, Kind: Class, Modifiers: mods}
}

// NewNested returns an empty declaration nested inside outer.
func NewNested(outer *TypeDecl, name string, mods Modifier) *TypeDecl {
	return &TypeDecl{Name: outer.Name.Nested(name), Kind: NestedClass, Modifiers: mods}
}

// Extends sets the superclass of d.
func (d *TypeDecl) Extends(t TypeRef) *TypeDecl {
	d.Superclass = &t
	return d
}

// Implements adds interfaces to d, ignoring ones already present.
func (d *TypeDecl) Implements(ts ...TypeRef) *TypeDecl {
	d.Interfaces = appendSet(d.Interfaces, ts...)
	return d
}

// AddNested appends nested declarations.
func (d *TypeDecl) AddNested(ns ...*TypeDecl) *TypeDecl {
	for _, n := range ns {
		n.Kind = NestedClass
	}
	d.Nested = append(d.Nested, ns...)
	return d
}

// AddField appends fields.
func (d *TypeDecl) AddField(fs ...FieldDecl) *TypeDecl {
	d.Fields = append(d.Fields, fs...)
	return d
}

// AddConstructor appends constructors.
func (d *TypeDecl) AddConstructor(ms ...MethodDecl) *TypeDecl {
	d.Constructors = append(d.Constructors, ms...)
	return d
}

// AddMethod appends methods.
func (d *TypeDecl) AddMethod(ms ...MethodDecl) *TypeDecl {
	d.Methods = append(d.Methods, ms...)
	return d
}

// AddAnnotation appends annotations after the existing ones.
func (d *TypeDecl) AddAnnotation(as ...AnnotationUse) *TypeDecl {
	d.Annotations = append(d.Annotations, as...)
	return d
}

// Field returns the field with the given name.
func (d *TypeDecl) Field(name string) (*FieldDecl, bool) {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return &d.Fields[i], true
		}
	}
	return nil, false
}

// Method returns the method with the given name.
func (d *TypeDecl) Method(name string) (*MethodDecl, bool) {
	for i := range d.Methods {
		if d.Methods[i].Name == name {
			return &d.Methods[i], true
		}
	}
	return nil, false
}

// NestedType returns the directly nested declaration with the given simple name.
func (d *TypeDecl) NestedType(name string) (*TypeDecl, bool) {
	for _, n := range d.Nested {
		if n.Name.Name == name {
			return n, true
		}
	}
	return nil, false
}

// Declared returns the names of d and of every type nested in it.
func (d *TypeDecl) Declared() []TypeRef {
	out := []TypeRef{d.Name}
	for _, n := range d.Nested {
		out = append(out, n.Declared()...)
	}
	return out
}

// Throwing adds exception types to m, ignoring ones already declared.
func (m MethodDecl) Throwing(ts ...TypeRef) MethodDecl {
	m.Throws = appendSet(slices.Clone(m.Throws), ts...)
	return m
}

func appendSet(set []TypeRef, ts ...TypeRef) []TypeRef {
	for _, t := range ts {
		if !slices.ContainsFunc(set, t.Equal) {
			set = append(set, t)
		}
	}
	return set
}
