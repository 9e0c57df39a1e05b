package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/syssam/companion/compiler/emit"
)

// ErrStale is returned by check when generated files are out of date.
var ErrStale = errors.New("generated files are out of date")

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check [patterns]",
		Short: "Fail if generated companions are missing or out of date",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd, args)
		},
	}
}

func (a *app) runCheck(cmd *cobra.Command, patterns []string) error {
	ctx := cmd.Context()
	srcs, err := a.load(ctx, patterns)
	if err != nil {
		return err
	}
	c := emit.NewChecker(a.renderer(), layout(srcs))
	if _, err := a.generate(ctx, srcs, c); err != nil {
		return err
	}
	stale := c.Stale()
	out := cmd.OutOrStdout()
	for _, s := range stale {
		fmt.Fprintf(out, "%s: %s\n", s.Reason, s.Path)
	}
	if len(stale) > 0 {
		return errors.WithHint(errors.Wrapf(ErrStale, "%d of %d files", len(stale), c.Checked()),
			"run companion generate")
	}
	fmt.Fprintf(out, "%d files up to date\n", c.Checked())
	return nil
}
