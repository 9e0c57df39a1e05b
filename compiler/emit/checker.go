package emit

import (
	"bytes"
	"context"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/syssam/companion/decl"
)

// Staleness of a generated file.
const (
	Missing  = "missing"
	Outdated = "outdated"
)

// StaleFile is a generated file that does not match its declaration.
type StaleFile struct {
	Path   string
	Reason string
}

// Checker renders declarations and compares them with the files on disk
// without writing anything. It implements gen.Emitter.
type Checker struct {
	renderer *Renderer
	layout   Layout

	mu    sync.Mutex
	stale []StaleFile
	seen  int
}

// NewChecker returns a checker comparing against files placed by layout.
func NewChecker(r *Renderer, layout Layout) *Checker {
	if r == nil {
		r = NewRenderer()
	}
	return &Checker{renderer: r, layout: layout}
}

// Emit renders d and records whether its file is stale.
func (c *Checker) Emit(ctx context.Context, d *decl.TypeDecl) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, out, err := Format(c.renderer, c.layout, d)
	if err != nil {
		return path, err
	}
	cur, err := os.ReadFile(path)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen++
	switch {
	case errors.Is(err, os.ErrNotExist):
		c.stale = append(c.stale, StaleFile{Path: path, Reason: Missing})
	case err != nil:
		return path, errors.Wrapf(err, "emit: read %s", path)
	case !bytes.Equal(cur, out):
		c.stale = append(c.stale, StaleFile{Path: path, Reason: Outdated})
	}
	return path, nil
}

// Stale returns the stale files found so far, sorted by path.
func (c *Checker) Stale() []StaleFile {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := slices.Clone(c.stale)
	slices.SortFunc(out, func(a, b StaleFile) int { return strings.Compare(a.Path, b.Path) })
	return out
}

// Checked returns the number of declarations compared.
func (c *Checker) Checked() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seen
}
