package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/syssam/companion/compiler/emit"
	"github.com/syssam/companion/compiler/gen"
)

func newGenerateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "generate [patterns]",
		Short: "Write the companions of every marked type",
		Example: `  companion generate ./...
  companion generate --target internal/values ./models`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd, args)
		},
	}
}

func (a *app) runGenerate(cmd *cobra.Command, patterns []string) error {
	ctx := cmd.Context()
	srcs, err := a.load(ctx, patterns)
	if err != nil {
		return err
	}
	files := emit.NewFiles(a.renderer(), layout(srcs))
	results, err := a.generate(ctx, srcs, files)
	report(cmd, results)
	if err != nil {
		return errors.WithHint(err, "no files were written for the failed types")
	}
	return nil
}

// report prints one line per source type.
func report(cmd *cobra.Command, results []*gen.Result) {
	out := cmd.OutOrStdout()
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(out, "✗ %s: %v\n", r.Source, r.Err)
			continue
		}
		fmt.Fprintf(out, "✓ %s (%d files)\n", r.Source, len(r.Locations))
	}
}
