// Package builder provides the concrete companion builders: immutable,
// mutable, serialization adapter and controller descriptor.
//
// Builders read names exclusively from the descriptor's role table, so
// renaming a role through gen.WithSuffix renames every reference to it.
package builder
