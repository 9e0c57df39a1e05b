package emit

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"golang.org/x/tools/imports"

	"github.com/syssam/companion/compiler/load"
	"github.com/syssam/companion/decl"
)

// Layout maps an import path to the directory holding the package.
type Layout func(pkg string) (string, error)

// Modules returns the layout of packages inside the given modules. The
// module with the longest matching path wins.
func Modules(mods ...*load.Module) Layout {
	mods = slices.DeleteFunc(slices.Clone(mods), func(m *load.Module) bool { return m == nil })
	slices.SortFunc(mods, func(a, b *load.Module) int { return len(b.Path) - len(a.Path) })
	return func(pkg string) (string, error) {
		for _, m := range mods {
			if pkg == m.Path {
				return m.Dir, nil
			}
			if rel, ok := strings.CutPrefix(pkg, m.Path+"/"); ok {
				return filepath.Join(m.Dir, filepath.FromSlash(rel)), nil
			}
		}
		return "", errors.WithHint(
			errors.Newf("emit: package %s is outside of every loaded module", pkg),
			"companion packages are written inside the module of their source package",
		)
	}
}

// Format renders d to formatted Go source and returns the path of the file.
func Format(r *Renderer, layout Layout, d *decl.TypeDecl) (string, []byte, error) {
	f, err := r.File(d)
	if err != nil {
		return "", nil, err
	}
	dir, err := layout(d.Name.Package)
	if err != nil {
		return "", nil, err
	}
	path := filepath.Join(dir, FileName(d))
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return path, nil, errors.Wrapf(err, "emit: render %s", d.Name.Path())
	}
	out, err := imports.Process(path, buf.Bytes(), nil)
	if err != nil {
		return path, nil, errors.Wrapf(err, "emit: format %s", path)
	}
	return path, out, nil
}

// Files writes every declaration to its own file in the companion package
// directory. It implements gen.Emitter and gen.Discarder; discarding
// restores what Emit overwrote.
type Files struct {
	renderer *Renderer
	layout   Layout

	mu      sync.Mutex
	written []string
	prev    map[string]backup
}

// backup is the content a file had before Emit first wrote it.
type backup struct {
	data    []byte
	existed bool
}

// NewFiles returns a file emitter placing packages with layout.
func NewFiles(r *Renderer, layout Layout) *Files {
	if r == nil {
		r = NewRenderer()
	}
	return &Files{renderer: r, layout: layout, prev: make(map[string]backup)}
}

// Emit renders d and writes it, returning the file path. Files whose
// content is unchanged are left untouched and are not reported by Written.
func (f *Files) Emit(ctx context.Context, d *decl.TypeDecl) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, out, err := Format(f.renderer, f.layout, d)
	if err != nil {
		return path, err
	}
	cur, err := os.ReadFile(path)
	switch {
	case err == nil && bytes.Equal(cur, out):
		return path, nil
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return path, errors.Wrapf(err, "emit: read %s", path)
	}
	prev := backup{data: cur, existed: err == nil}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return path, errors.Wrapf(err, "emit: create directory for %s", path)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return path, errors.Wrapf(err, "emit: write %s", path)
	}
	f.record(path, prev)
	return path, nil
}

// Discard undoes the writes Emit made to locations: overwritten files get
// their previous content back and created files are removed. Locations
// Emit did not change are left alone.
func (f *Files) Discard(locations ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var errs []error
	for _, loc := range locations {
		prev, ok := f.prev[loc]
		if !ok {
			continue
		}
		var err error
		if prev.existed {
			err = os.WriteFile(loc, prev.data, 0o644)
		} else if err = os.Remove(loc); os.IsNotExist(err) {
			err = nil
		}
		if err != nil {
			errs = append(errs, errors.Wrapf(err, "emit: discard %s", loc))
			continue
		}
		delete(f.prev, loc)
		f.written = slices.DeleteFunc(f.written, func(p string) bool { return p == loc })
	}
	return errors.Join(errs...)
}

// Written returns the paths of the files emitted so far, sorted.
func (f *Files) Written() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := slices.Clone(f.written)
	slices.Sort(out)
	return out
}

// record notes that path was written. Only the content before the first
// write is kept.
func (f *Files) record(path string, prev backup) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.prev[path]; ok {
		return
	}
	f.prev[path] = prev
	f.written = append(f.written, path)
}
