// Package gen derives companion type declarations from marked source types.
//
// For every source type the package builds one read-only Descriptor and
// runs a static sequence of builders over it. Each builder produces the
// declaration of one role (immutable, mutable, adapter, controller, or a
// custom role) and may request annotations on earlier outputs through
// amendments. The resulting declarations are handed to an Emitter.
//
// # Architecture
//
// The generation pipeline follows this flow:
//
//	load.Source (marked struct)
//	        ↓
//	   Descriptor (names per role, members)
//	        ↓
//	   Builder₁ … Builderₙ (static order)
//	        ↓
//	   []*decl.TypeDecl
//	        ↓
//	   Emitter (Go source, checker, …)
//
// # Key Types
//
//   - Descriptor: source identity, companion name per role, members
//   - Builder: produces one role from the descriptor and prior outputs
//   - Orchestrator: validates builder order, claims names, runs pipelines
//   - Registry: companion names owned by each source type
//   - Config: naming policy, builders, emitter, logger
//
// # Pipeline States
//
//	Discovered → DescriptorBuilt → BuilderRun* → Emitted
//	                 └──────────────────┴──────→ Failed
//
// Every companion name is claimed before the first builder runs, so naming
// conflicts abort a source type before anything is emitted. Reference
// checks run after the last builder. A failed source type never emits; if
// emission fails midway, an emitter implementing Discarder removes what was
// already written.
//
// # Error Handling
//
// The package uses structured error types:
//
//   - NamingConflictError: two companions share a qualified name
//   - UnresolvedReferenceError: a role or type that resolves to nothing
//   - UnsupportedShapeError: a source type a builder cannot derive from
//   - EmitError: the emitter rejected a declaration
//   - ConfigError: invalid options or builder order
//   - PipelineError: wraps any of the above with source, role and phase
//
// Example error handling:
//
//	res, err := o.Generate(ctx, src)
//	if err != nil {
//		switch {
//		case gen.IsNamingConflict(err):
//			// rename the source type or change a suffix
//		case gen.IsUnsupportedShape(err):
//			// drop the marker
//		}
//	}
//
// # Configuration
//
//	cfg, err := gen.NewConfig(
//		gen.WithBuilders(builder.Bean()...),
//		gen.WithEmitter(emit.NewFiles(emit.NewRenderer(), emit.Modules(mod))),
//		gen.WithSuffix(gen.RoleMutable, "Draft"),
//		gen.WithLogger(log),
//	)
//	o, err := gen.NewOrchestrator(cfg)
package gen
