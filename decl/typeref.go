package decl

import (
	"strconv"
	"strings"
)

// Kind is the shape of a type reference.
type Kind uint8

// Type reference shapes.
const (
	KindNamed Kind = iota
	KindPointer
	KindSlice
	KindArray
	KindMap
	KindFunc
	KindChan
	KindInterface
	KindStruct
)

var kindNames = [...]string{
	KindNamed:     "named",
	KindPointer:   "pointer",
	KindSlice:     "slice",
	KindArray:     "array",
	KindMap:       "map",
	KindFunc:      "func",
	KindChan:      "chan",
	KindInterface: "interface",
	KindStruct:    "struct",
}

// String returns the shape name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// TypeRef references a type by package and simple name. Composite shapes
// (pointers, slices, maps) carry their element types; func, chan and inline
// interface or struct types are kept only in their textual form.
type TypeRef struct {
	Kind      Kind      `msgpack:"kind"`
	Package   string    `msgpack:"package,omitempty"`   // import path, empty for builtins
	Name      string    `msgpack:"name,omitempty"`      // simple name
	Enclosing string    `msgpack:"enclosing,omitempty"` // enclosing type path for nested types
	Args      []TypeRef `msgpack:"args,omitempty"`      // type arguments
	Elem      *TypeRef  `msgpack:"elem,omitempty"`
	Key       *TypeRef  `msgpack:"key,omitempty"`
	Len       int64     `msgpack:"len,omitempty"`
	Raw       string    `msgpack:"raw,omitempty"`
}

// Builtin types used by the builders.
var (
	String = Builtin("string")
	Int    = Builtin("int")
	Bool   = Builtin("bool")
	Error  = Builtin("error")
	Any    = Builtin("any")
)

// Ref returns a reference to the named type pkg.name instantiated with args.
func Ref(pkg, name string, args ...TypeRef) TypeRef {
	return TypeRef{Kind: KindNamed, Package: pkg, Name: name, Args: args}
}

// Builtin returns a reference to a predeclared type.
func Builtin(name string) TypeRef {
	return TypeRef{Kind: KindNamed, Name: name}
}

// PointerTo returns a pointer to t.
func PointerTo(t TypeRef) TypeRef {
	return TypeRef{Kind: KindPointer, Elem: &t}
}

// SliceOf returns a slice of t.
func SliceOf(t TypeRef) TypeRef {
	return TypeRef{Kind: KindSlice, Elem: &t}
}

// ArrayOf returns an array of n elements of t.
func ArrayOf(n int64, t TypeRef) TypeRef {
	return TypeRef{Kind: KindArray, Len: n, Elem: &t}
}

// MapOf returns a map from k to v.
func MapOf(k, v TypeRef) TypeRef {
	return TypeRef{Kind: KindMap, Key: &k, Elem: &v}
}

// Opaque returns a func, chan, inline interface or inline struct type kept in
// textual form.
func Opaque(k Kind, raw string) TypeRef {
	return TypeRef{Kind: k, Raw: raw}
}

// Nested returns a reference to the type name declared inside t.
func (t TypeRef) Nested(name string) TypeRef {
	return TypeRef{Kind: KindNamed, Package: t.Package, Name: name, Enclosing: t.path()}
}

// With returns a copy of t instantiated with the given type arguments.
func (t TypeRef) With(args ...TypeRef) TypeRef {
	t.Args = args
	return t
}

// IsBuiltin reports whether t is a predeclared type.
func (t TypeRef) IsBuiltin() bool {
	return t.Kind == KindNamed && t.Package == ""
}

// IsZero reports whether t is the zero reference.
func (t TypeRef) IsZero() bool {
	return t.Kind == KindNamed && t.Name == "" && t.Raw == ""
}

// Path returns the dotted type path inside its package, including
// enclosing types (e.g. "PointAdapter.Writer").
func (t TypeRef) Path() string { return t.path() }

func (t TypeRef) path() string {
	if t.Enclosing == "" {
		return t.Name
	}
	return t.Enclosing + "." + t.Name
}

// QualifiedName returns the package-qualified name of a named reference
// without type arguments. It is the key used by the companion-name table.
func (t TypeRef) QualifiedName() string {
	if t.Package == "" {
		return t.path()
	}
	return t.Package + "." + t.path()
}

// String returns a readable, fully qualified spelling of t.
func (t TypeRef) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t TypeRef) write(b *strings.Builder) {
	switch t.Kind {
	case KindNamed:
		b.WriteString(t.QualifiedName())
		if len(t.Args) > 0 {
			b.WriteByte('[')
			for i, a := range t.Args {
				if i > 0 {
					b.WriteString(", ")
				}
				a.write(b)
			}
			b.WriteByte(']')
		}
	case KindPointer:
		b.WriteByte('*')
		t.Elem.write(b)
	case KindSlice:
		b.WriteString("[]")
		t.Elem.write(b)
	case KindArray:
		b.WriteByte('[')
		b.WriteString(strconv.FormatInt(t.Len, 10))
		b.WriteByte(']')
		t.Elem.write(b)
	case KindMap:
		b.WriteString("map[")
		t.Key.write(b)
		b.WriteByte(']')
		t.Elem.write(b)
	default:
		b.WriteString(t.Raw)
	}
}

// Equal reports whether t and o reference the same type.
func (t TypeRef) Equal(o TypeRef) bool {
	return t.String() == o.String()
}

// Components returns t followed by every type reference it is built from
// (elements, keys and type arguments), depth first.
func (t TypeRef) Components() []TypeRef {
	out := []TypeRef{t}
	if t.Elem != nil {
		out = append(out, t.Elem.Components()...)
	}
	if t.Key != nil {
		out = append(out, t.Key.Components()...)
	}
	for _, a := range t.Args {
		out = append(out, a.Components()...)
	}
	return out
}

// Clone returns a deep copy of t.
func (t TypeRef) Clone() TypeRef {
	c := t
	if t.Elem != nil {
		e := t.Elem.Clone()
		c.Elem = &e
	}
	if t.Key != nil {
		k := t.Key.Clone()
		c.Key = &k
	}
	if t.Args != nil {
		c.Args = make([]TypeRef, len(t.Args))
		for i, a := range t.Args {
			c.Args[i] = a.Clone()
		}
	}
	return c
}
