package main

import (
	"context"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/syssam/companion/compiler/emit"
	"github.com/syssam/companion/compiler/gen"
	"github.com/syssam/companion/compiler/gen/builder"
	"github.com/syssam/companion/compiler/load"
)

// load discovers the marked source types matching patterns.
func (a *app) load(ctx context.Context, patterns []string) ([]*load.Source, error) {
	l := &load.Loader{Dir: a.cfg.Dir, Markers: builder.Markers()}
	if len(a.cfg.BuildTags) > 0 {
		l.BuildFlags = []string{"-tags=" + strings.Join(a.cfg.BuildTags, ",")}
	}
	srcs, err := l.Load(ctx, patterns...)
	if err != nil {
		return nil, err
	}
	a.log.Info("sources loaded", zap.Int("count", len(srcs)), zap.Strings("patterns", patterns))
	return srcs, nil
}

// layout returns the file layout of the modules containing srcs.
func layout(srcs []*load.Source) emit.Layout {
	var mods []*load.Module
	for _, s := range srcs {
		if s.Module != nil && !slices.ContainsFunc(mods, func(m *load.Module) bool { return m.Path == s.Module.Path }) {
			mods = append(mods, s.Module)
		}
	}
	return emit.Modules(mods...)
}

func (a *app) renderer() *emit.Renderer {
	return &emit.Renderer{Header: a.cfg.Header}
}

// generate runs the pipeline of every marker over the sources carrying it.
// All pipelines share one name registry.
func (a *app) generate(ctx context.Context, srcs []*load.Source, e gen.Emitter) ([]*gen.Result, error) {
	reg := gen.NewRegistry()
	var (
		results []*gen.Result
		errs    []error
	)
	for _, marker := range builder.Markers() {
		var marked []*load.Source
		for _, s := range srcs {
			if s.HasMarker(marker) {
				marked = append(marked, s)
			}
		}
		if len(marked) == 0 {
			continue
		}
		opts := append(a.cfg.options(),
			gen.WithBuilders(builder.ForMarker(marker)...),
			gen.WithEmitter(e),
			gen.WithRegistry(reg),
			gen.WithLogger(a.log.With(zap.String("marker", marker))),
		)
		cfg, err := gen.NewConfig(opts...)
		if err != nil {
			return nil, err
		}
		o, err := gen.NewOrchestrator(cfg)
		if err != nil {
			return nil, err
		}
		res, err := o.GenerateAll(ctx, marked)
		results = append(results, res...)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return results, errors.Join(errs...)
}
