package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shapes = `package shapes

// Point is a location on a plane.
//
//companion:bean
type Point struct {
	X int ` + "`json:\"x\"`" + `
	Y int ` + "`json:\"y\"`" + `
}

//companion:controller /api/health
type Health struct{}
`

// module writes a module holding the shapes package and returns its
// directory.
func module(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/shapes\n\ngo 1.21\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shapes.go"), []byte(shapes), 0o644))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGenerateAndCheck(t *testing.T) {
	dir := module(t)

	out, err := execute(t, "check", "--dir", dir, ".")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStale)
	assert.Contains(t, out, "missing: ")

	out, err = execute(t, "generate", "--dir", dir, ".")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ example.com/shapes.Point (3 files)")
	assert.Contains(t, out, "✓ example.com/shapes.Health (1 files)")
	for _, name := range []string{"point.go", "point_mutable.go", "point_adapter.go", "health_controller.go"} {
		assert.FileExists(t, filepath.Join(dir, "companion", name))
	}
	data, err := os.ReadFile(filepath.Join(dir, "companion", "health_controller.go"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `return "/api/health"`)

	out, err = execute(t, "check", "--dir", dir, ".")
	require.NoError(t, err)
	assert.Contains(t, out, "4 files up to date")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "companion", "point.go"), []byte("package companion\n"), 0o644))
	out, err = execute(t, "check", "--dir", dir, ".")
	assert.ErrorIs(t, err, ErrStale)
	assert.Contains(t, out, "outdated: "+filepath.Join(dir, "companion", "point.go"))
}

func TestGenerateSuffixFlag(t *testing.T) {
	dir := module(t)
	_, err := execute(t, "generate", "--dir", dir, "--suffix", "mutable=Draft", "--target", "values", ".")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "values", "point_draft.go"))
	data, err := os.ReadFile(filepath.Join(dir, "values", "point_adapter.go"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "new(PointDraft)")
}

func TestWatcherRelevant(t *testing.T) {
	w := &watcher{app: &app{cfg: &Config{Target: "companion"}}}
	tests := []struct {
		ev   fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: filepath.FromSlash("/m/shapes/shapes.go"), Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: filepath.FromSlash("/m/shapes/new.go"), Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: filepath.FromSlash("/m/shapes/old.go"), Op: fsnotify.Remove}, true},
		{fsnotify.Event{Name: filepath.FromSlash("/m/shapes/shapes.go"), Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: filepath.FromSlash("/m/shapes/shapes_test.go"), Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: filepath.FromSlash("/m/shapes/README.md"), Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: filepath.FromSlash("/m/shapes/companion/point.go"), Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, w.relevant(tt.ev), tt.ev.String())
	}
}
