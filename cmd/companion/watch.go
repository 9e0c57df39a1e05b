package main

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/syssam/companion/compiler/emit"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [patterns]",
		Short: "Regenerate companions whenever a source package changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWatch(cmd, args)
		},
	}
}

// watcher regenerates companions when Go files of a source package change.
type watcher struct {
	*app
	cmd      *cobra.Command
	patterns []string
	fs       *fsnotify.Watcher
	dirs     map[string]bool
}

func (a *app) runWatch(cmd *cobra.Command, patterns []string) error {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "watch: create watcher")
	}
	defer fs.Close()
	w := &watcher{app: a, cmd: cmd, patterns: patterns, fs: fs, dirs: make(map[string]bool)}
	if err := w.add(a.cfg.Dir); err != nil {
		return err
	}
	return w.loop(cmd.Context(), time.Duration(a.cfg.Debounce)*time.Millisecond)
}

func (w *watcher) loop(ctx context.Context, debounce time.Duration) error {
	w.regenerate(ctx)
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if w.relevant(ev) {
				w.log.Debug("source changed", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
				fire = time.After(debounce)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		case <-fire:
			fire = nil
			w.regenerate(ctx)
		}
	}
}

// regenerate reloads the sources, writes their companions and watches
// every source directory. Failures are logged; watching goes on.
func (w *watcher) regenerate(ctx context.Context) {
	srcs, err := w.load(ctx, w.patterns)
	if err != nil {
		w.log.Error("load failed", zap.Error(err))
		return
	}
	for _, s := range srcs {
		if err := w.add(s.Dir); err != nil {
			w.log.Warn("cannot watch", zap.String("dir", s.Dir), zap.Error(err))
		}
	}
	results, err := w.generate(ctx, srcs, emit.NewFiles(w.renderer(), layout(srcs)))
	report(w.cmd, results)
	if err != nil {
		w.log.Error("generation failed", zap.Error(err))
	}
}

func (w *watcher) add(dir string) error {
	if dir == "" || w.dirs[dir] {
		return nil
	}
	if err := w.fs.Add(dir); err != nil {
		return errors.Wrapf(err, "watch: add %s", dir)
	}
	w.dirs[dir] = true
	return nil
}

// relevant reports whether ev may change a source type. Generated files
// and tests are ignored.
func (w *watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := ev.Name
	if filepath.Ext(name) != ".go" || strings.HasSuffix(name, "_test.go") {
		return false
	}
	target := filepath.FromSlash(strings.Trim(w.cfg.Target, "/"))
	return !strings.HasSuffix(filepath.Dir(name), string(filepath.Separator)+target)
}
