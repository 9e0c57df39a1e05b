package gen

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/companion/compiler/load"
	"github.com/syssam/companion/decl"
)

// State is the lifecycle state of one source type's pipeline.
type State string

// Pipeline states, in order. Failed can follow any state.
const (
	StateDiscovered      State = "discovered"
	StateDescriptorBuilt State = "descriptor_built"
	StateBuilderRun      State = "builder_run"
	StateEmitted         State = "emitted"
	StateFailed          State = "failed"
)

// Result describes the pipeline of one source type.
type Result struct {
	// Source is the qualified name of the source type.
	Source string
	// State is the final pipeline state.
	State State
	// Decls are the generated declarations in builder order. They are set
	// once every builder succeeded, even if emission failed.
	Decls []*decl.TypeDecl
	// Locations are the emitter locations, in Decls order.
	Locations []string
	// Err is the pipeline error, if any.
	Err error
}

// Orchestrator runs the builder pipeline for source types.
type Orchestrator struct {
	naming   Naming
	builders []Builder
	roles    []Role
	emitter  Emitter
	registry *Registry
	log      *zap.Logger
	workers  int
}

// NewOrchestrator validates cfg and returns an orchestrator. A builder that
// requires a role no earlier builder produces, or two builders producing
// one role, are configuration errors reported here rather than during
// generation.
func NewOrchestrator(cfg *Config) (*Orchestrator, error) {
	if cfg == nil {
		return nil, NewConfigError("Config", nil, "config cannot be nil")
	}
	if len(cfg.Builders) == 0 {
		return nil, NewConfigError("Builders", nil, "at least one builder is required")
	}
	if cfg.Emitter == nil {
		return nil, NewConfigError("Emitter", nil, "no emitter set: use WithEmitter")
	}
	o := &Orchestrator{
		naming:   cfg.Naming.Clone(),
		builders: append([]Builder(nil), cfg.Builders...),
		emitter:  cfg.Emitter,
		registry: cfg.Registry,
		log:      cfg.Logger,
		workers:  cfg.Workers,
	}
	produced := make(map[Role]int, len(cfg.Builders))
	for i, b := range o.builders {
		role := b.Role()
		if role == "" {
			return nil, NewConfigError("Builders", i, "builder has no role")
		}
		if j, dup := produced[role]; dup {
			return nil, NewConfigError("Builders", role, fmt.Sprintf("role produced by builders %d and %d", j, i))
		}
		for _, req := range b.Requires() {
			if _, ok := produced[req]; !ok {
				return nil, NewConfigError("Builders", req,
					fmt.Sprintf("builder %d (%s) requires a role no earlier builder produces", i, role))
			}
		}
		if _, ok := o.naming.Suffixes[role]; !ok {
			return nil, NewConfigError("Suffixes", role, "no suffix configured for role")
		}
		produced[role] = i
		o.roles = append(o.roles, role)
	}
	if o.registry == nil {
		o.registry = NewRegistry()
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	if o.workers <= 0 {
		o.workers = 1
	}
	return o, nil
}

// Roles returns the roles produced per source type, in builder order.
func (o *Orchestrator) Roles() []Role {
	return append([]Role(nil), o.roles...)
}

// Registry returns the name registry.
func (o *Orchestrator) Registry() *Registry {
	return o.registry
}

// Generate runs the pipeline for one source type. The returned result is
// never nil; its Err equals the returned error.
func (o *Orchestrator) Generate(ctx context.Context, src *load.Source) (*Result, error) {
	p := o.prepare(src, o.log)
	if p.res.Err == nil {
		p.run(ctx)
	}
	return p.res, p.res.Err
}

// GenerateAll runs the pipelines of srcs concurrently. All companion names
// are claimed, in srcs order, before any builder runs, so a naming conflict
// fails the later source type before anything is emitted. Results are in
// srcs order. A failed source type does not stop the others; the returned
// error joins every pipeline error.
func (o *Orchestrator) GenerateAll(ctx context.Context, srcs []*load.Source) ([]*Result, error) {
	log := o.log.With(zap.String("run", uuid.NewString()))
	pipes := make([]*pipeline, len(srcs))
	for i, src := range srcs {
		pipes[i] = o.prepare(src, log)
	}
	var g errgroup.Group
	g.SetLimit(o.workers)
	for _, p := range pipes {
		if p.res.Err != nil {
			continue
		}
		g.Go(func() error {
			p.run(ctx)
			return nil
		})
	}
	_ = g.Wait()
	results := make([]*Result, len(pipes))
	var errs []error
	for i, p := range pipes {
		results[i] = p.res
		if p.res.Err != nil {
			errs = append(errs, p.res.Err)
		}
	}
	log.Info("generation finished", zap.Int("sources", len(srcs)), zap.Int("failed", len(errs)))
	return results, errors.Join(errs...)
}

type pipeline struct {
	*Orchestrator
	log   *zap.Logger
	owner string
	desc  *Descriptor
	res   *Result
}

// prepare builds the descriptor of src and claims its companion names.
func (o *Orchestrator) prepare(src *load.Source, log *zap.Logger) *pipeline {
	owner := "<nil>"
	if src != nil {
		owner = src.QualifiedName()
	}
	p := &pipeline{
		Orchestrator: o,
		log:          log.With(zap.String("source", owner)),
		owner:        owner,
		res:          &Result{Source: owner},
	}
	p.enter(StateDiscovered)
	d, err := NewDescriptor(src, o.naming, o.roles...)
	if err != nil {
		p.fail("", PhaseDescriptor, err)
		return p
	}
	p.desc = d
	p.enter(StateDescriptorBuilt)
	if err := o.registry.ClaimAll(d.Names(), owner); err != nil {
		p.fail("", PhaseClaim, err)
	}
	return p
}

// run builds, validates and emits the companions of a prepared pipeline.
func (p *pipeline) run(ctx context.Context) {
	decls, err := p.build(ctx, p.desc)
	if err != nil {
		p.release()
		return
	}
	p.res.Decls = decls
	if i, err := resolve(p.desc, decls); err != nil {
		p.fail(p.roles[i], PhaseResolve, err)
		p.release()
		return
	}
	if err := ctx.Err(); err != nil {
		p.fail("", PhaseEmit, err)
		p.release()
		return
	}
	for i, x := range decls {
		loc, err := p.emitter.Emit(ctx, x)
		if err != nil {
			p.discard()
			p.fail(p.roles[i], PhaseEmit, NewEmitError(x.Name.String(), loc, err))
			p.release()
			return
		}
		p.res.Locations = append(p.res.Locations, loc)
		p.log.Info("emitted", zap.String("role", string(p.roles[i])), zap.String("decl", x.Name.Path()), zap.String("location", loc))
	}
	p.enter(StateEmitted)
}

// build runs every builder in order and applies amendments. It returns the
// outputs in builder order.
func (p *pipeline) build(ctx context.Context, d *Descriptor) ([]*decl.TypeDecl, error) {
	outputs := make(map[Role]*decl.TypeDecl, len(p.builders))
	for _, b := range p.builders {
		role := b.Role()
		if err := ctx.Err(); err != nil {
			return nil, p.fail(role, PhaseBuild, err).Err
		}
		prior := make(map[Role]*decl.TypeDecl, len(b.Requires()))
		for _, r := range b.Requires() {
			prior[r] = outputs[r]
		}
		prod, err := b.Build(d, Outputs{decls: prior})
		if err != nil {
			return nil, p.fail(role, PhaseBuild, err).Err
		}
		if prod == nil || prod.Decl == nil {
			return nil, p.fail(role, PhaseBuild, errors.New("builder returned no declaration")).Err
		}
		want, err := d.Name(role)
		if err != nil {
			return nil, p.fail(role, PhaseBuild, err).Err
		}
		if got := prod.Decl.Name.QualifiedName(); got != want.QualifiedName() {
			return nil, p.fail(role, PhaseBuild, NewNamingConflictError(got, p.owner, p.owner,
				fmt.Sprintf("builder must declare %s", want.QualifiedName()))).Err
		}
		for _, a := range prod.Amendments {
			target, ok := outputs[a.Role]
			if !ok {
				return nil, p.fail(role, PhaseAmend, NewUnresolvedReferenceError(p.owner, "role "+string(a.Role), prod.Decl.Name.Path())).Err
			}
			for _, an := range a.Annotations {
				target.AddAnnotation(an.Clone())
			}
		}
		outputs[role] = prod.Decl
		p.log.Debug("pipeline state", zap.String("state", string(StateBuilderRun)), zap.String("role", string(role)))
	}
	decls := make([]*decl.TypeDecl, len(p.roles))
	for i, r := range p.roles {
		decls[i] = outputs[r]
	}
	return decls, nil
}

// resolve checks that every reference into the companion package names a
// declaration produced for d. On failure it returns the index of the
// declaration holding the reference.
func resolve(d *Descriptor, decls []*decl.TypeDecl) (int, error) {
	known := make(map[string]bool)
	for _, x := range decls {
		for _, n := range x.Declared() {
			known[n.QualifiedName()] = true
		}
	}
	for i, x := range decls {
		for _, ref := range x.Refs() {
			if ref.Kind != decl.KindNamed || ref.Package != d.Package() {
				continue
			}
			if !known[ref.QualifiedName()] {
				return i, NewUnresolvedReferenceError(d.String(), ref.Path(), x.Name.Path())
			}
		}
	}
	return 0, nil
}

func (p *pipeline) enter(s State) {
	p.res.State = s
	p.log.Debug("pipeline state", zap.String("state", string(s)))
}

func (p *pipeline) fail(role Role, phase Phase, cause error) *Result {
	if p.res.Err != nil {
		return p.res
	}
	p.res.State = StateFailed
	p.res.Err = NewPipelineError(p.owner, role, phase, cause)
	p.log.Error("pipeline failed",
		zap.String("state", string(StateFailed)),
		zap.String("phase", string(phase)),
		zap.String("role", string(role)),
		zap.Error(cause),
	)
	return p.res
}

// release frees the names of a failed pipeline.
func (p *pipeline) release() {
	p.registry.Release(p.owner)
}

// discard asks the emitter to remove what this pipeline already emitted.
func (p *pipeline) discard() {
	dis, ok := p.emitter.(Discarder)
	if !ok || len(p.res.Locations) == 0 {
		return
	}
	if err := dis.Discard(p.res.Locations...); err != nil {
		p.log.Warn("discard failed", zap.Strings("locations", p.res.Locations), zap.Error(err))
		return
	}
	p.res.Locations = nil
}
