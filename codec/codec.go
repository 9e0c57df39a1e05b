package codec

import (
	"reflect"
)

// Generator writes encoded values.
type Generator interface {
	// WriteObject encodes v with the backend's default encoding.
	WriteObject(v any) error
}

// Parser reads encoded values.
type Parser interface {
	// ReadValueAs decodes the next value into v, which must be a pointer.
	ReadValueAs(v any) error
}

// Provider carries settings for one serialization call.
type Provider struct {
	Format Format
}

// Context carries settings for one deserialization call.
type Context struct {
	Format Format
}

// Writer serializes values of type T.
type Writer[T any] interface {
	Write(v T, gen Generator, sp *Provider) error
}

// Reader deserializes values of type T.
type Reader[T any] interface {
	Read(jp Parser, dc *Context) (T, error)
}

// ValueWriter is the base embedded by writers of T. It records the handled
// type.
type ValueWriter[T any] struct {
	typ reflect.Type
}

// NewValueWriter returns the writer base for T.
func NewValueWriter[T any]() ValueWriter[T] {
	return ValueWriter[T]{typ: reflect.TypeFor[T]()}
}

// HandledType returns the type the writer serializes.
func (w ValueWriter[T]) HandledType() reflect.Type {
	if w.typ == nil {
		return reflect.TypeFor[T]()
	}
	return w.typ
}

// ValueReader is the base embedded by readers of T. It records the
// produced type.
type ValueReader[T any] struct {
	typ reflect.Type
}

// NewValueReader returns the reader base for T.
func NewValueReader[T any]() ValueReader[T] {
	return ValueReader[T]{typ: reflect.TypeFor[T]()}
}

// ValueType returns the type the reader produces.
func (r ValueReader[T]) ValueType() reflect.Type {
	if r.typ == nil {
		return reflect.TypeFor[T]()
	}
	return r.typ
}
