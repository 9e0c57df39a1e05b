// Package codec is the serialization runtime generated adapters are
// written against.
//
// A generated adapter pair converts between an immutable companion and its
// mutable twin: the writer hands the mutable form to a Generator, the
// reader materializes the mutable form from a Parser and converts it back.
// Adapters register themselves for the immutable type, and Marshal and
// Unmarshal consult the registry before falling back to the backend's
// default encoding.
//
//	b, err := codec.Marshal(codec.JSON, point)
//	p, err := codec.Unmarshal[*companion.Point](codec.JSON, b)
//
// Supported formats are JSON, MessagePack, YAML and TOML. TOML documents
// must be tables, so only struct and map values encode to it.
package codec
