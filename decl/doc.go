// Package decl is the declaration model consumed and produced by the companion
// builders.
//
// A TypeDecl describes one type to be generated: its modifiers, superclass,
// interfaces, nested types, fields, constructors, methods and annotations.
// Method bodies are small statement and expression trees rather than text, so
// builders can be checked structurally and emitters can lower them to the
// target language.
//
// Types are referenced through TypeRef values, never through pointers to other
// declarations. A builder that needs to mention a companion it does not own
// asks the type descriptor for its TypeRef; the declaration for that companion
// may not exist yet.
//
// The package has no behavior beyond construction, traversal, cloning and
// snapshotting.
package decl
