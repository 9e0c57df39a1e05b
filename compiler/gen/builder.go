package gen

import (
	"context"
	"slices"

	"github.com/syssam/companion/decl"
)

// Builder produces the companion declaration of one role.
//
// Architecture:
//
//	┌──────────────────────────────────────────────┐
//	│                 Orchestrator                 │
//	│  (descriptor, name claims, order, emission)  │
//	└──────────────────────┬───────────────────────┘
//	                       │ calls in static order
//	                       ▼
//	┌──────────────────────────────────────────────┐
//	│                   Builder                    │
//	│  (one role, reads descriptor + prior output) │
//	└──────────────────────────────────────────────┘
//
// A builder reads only the descriptor and the outputs of the roles listed in
// Requires. It never mutates a prior output; annotations it wants added to
// another companion are returned as amendments.
type Builder interface {
	// Role returns the role this builder produces.
	Role() Role
	// Requires returns the roles whose outputs Build needs.
	Requires() []Role
	// Build produces the companion declaration.
	Build(d *Descriptor, prior Outputs) (*Product, error)
}

// Product is the result of one builder run.
type Product struct {
	Decl       *decl.TypeDecl
	Amendments []Amendment
}

// Amendment requests annotations appended to the output of an earlier role.
type Amendment struct {
	Role        Role
	Annotations []decl.AnnotationUse
}

// Outputs is the read-only view of earlier builder outputs handed to a
// builder. It only contains the roles the builder requires.
type Outputs struct {
	decls map[Role]*decl.TypeDecl
}

// Get returns a copy of the output of role.
func (o Outputs) Get(role Role) (*decl.TypeDecl, bool) {
	d, ok := o.decls[role]
	if !ok {
		return nil, false
	}
	return d.Clone(), true
}

// Roles returns the roles present in o.
func (o Outputs) Roles() []Role {
	roles := make([]Role, 0, len(o.decls))
	for r := range o.decls {
		roles = append(roles, r)
	}
	slices.Sort(roles)
	return roles
}

// NewOutputs returns a view of decls, for running a builder outside an
// Orchestrator.
func NewOutputs(decls map[Role]*decl.TypeDecl) Outputs {
	return Outputs{decls: decls}
}

// BuildFunc is the signature of Builder.Build.
type BuildFunc func(*Descriptor, Outputs) (*Product, error)

type funcBuilder struct {
	role     Role
	requires []Role
	build    BuildFunc
}

func (b *funcBuilder) Role() Role       { return b.role }
func (b *funcBuilder) Requires() []Role { return slices.Clone(b.requires) }
func (b *funcBuilder) Build(d *Descriptor, prior Outputs) (*Product, error) {
	return b.build(d, prior)
}

// NewBuilder returns a Builder for role backed by fn.
func NewBuilder(role Role, requires []Role, fn BuildFunc) Builder {
	return &funcBuilder{role: role, requires: requires, build: fn}
}

// Emitter consumes generated declarations. It returns the location the
// declaration was written to.
type Emitter interface {
	Emit(ctx context.Context, d *decl.TypeDecl) (string, error)
}

// Discarder is implemented by emitters that can remove what they emitted.
// The orchestrator uses it to roll back a partially emitted source type.
type Discarder interface {
	Discard(locations ...string) error
}

// EmitFunc adapts a function to the Emitter interface.
type EmitFunc func(context.Context, *decl.TypeDecl) (string, error)

// Emit calls f(ctx, d).
func (f EmitFunc) Emit(ctx context.Context, d *decl.TypeDecl) (string, error) {
	return f(ctx, d)
}
