package load

import (
	"cmp"
	"context"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/tools/go/packages"
)

// Loader loads marked struct declarations from Go packages.
type Loader struct {
	// Dir is the directory the build system runs in. Empty means the
	// current directory.
	Dir string
	// BuildFlags are passed to the build system, e.g. "-tags=dev".
	BuildFlags []string
	// Markers restricts discovery to the named markers. All companion
	// markers are accepted when empty.
	Markers []string
}

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedModule

// Load loads the packages matching patterns and returns every marked struct
// declaration, sorted by package path and type name.
func (l *Loader) Load(ctx context.Context, patterns ...string) ([]*Source, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	cfg := &packages.Config{
		Context:    ctx,
		Mode:       loadMode,
		Dir:        l.Dir,
		BuildFlags: l.BuildFlags,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.Wrapf(err, "load: loading %s", strings.Join(patterns, " "))
	}
	var msgs []string
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			msgs = append(msgs, e.Error())
		}
	}
	if len(msgs) > 0 {
		return nil, errors.WithHint(
			errors.Newf("load: %s", strings.Join(msgs, "; ")),
			"source packages must compile before companions can be generated",
		)
	}
	var srcs []*Source
	for _, pkg := range pkgs {
		found, err := l.inspect(pkg)
		if err != nil {
			return nil, err
		}
		srcs = append(srcs, found...)
	}
	slices.SortFunc(srcs, func(a, b *Source) int {
		return cmp.Or(cmp.Compare(a.Package, b.Package), cmp.Compare(a.Name, b.Name))
	})
	return srcs, nil
}

func (l *Loader) inspect(pkg *packages.Package) ([]*Source, error) {
	var srcs []*Source
	for _, file := range pkg.Syntax {
		for _, d := range file.Decls {
			gd, ok := d.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts := spec.(*ast.TypeSpec)
				doc := ts.Doc
				if doc == nil && len(gd.Specs) == 1 {
					doc = gd.Doc
				}
				markers := l.markers(doc)
				if len(markers) == 0 {
					continue
				}
				src, err := newSource(pkg, ts, doc, markers)
				if err != nil {
					return nil, err
				}
				srcs = append(srcs, src)
			}
		}
	}
	return srcs, nil
}

func (l *Loader) markers(doc *ast.CommentGroup) []Marker {
	if doc == nil {
		return nil
	}
	var ms []Marker
	for _, c := range doc.List {
		m, ok := ParseMarker(c.Text)
		if !ok || len(l.Markers) > 0 && !slices.Contains(l.Markers, m.Name) {
			continue
		}
		ms = append(ms, m)
	}
	return ms
}

func newSource(pkg *packages.Package, ts *ast.TypeSpec, doc *ast.CommentGroup, markers []Marker) (*Source, error) {
	pos := pkg.Fset.Position(ts.Pos())
	obj, ok := pkg.TypesInfo.Defs[ts.Name].(*types.TypeName)
	if !ok {
		return nil, errors.Newf("load: %s: no type information for %s", pos, ts.Name.Name)
	}
	st, ok := obj.Type().Underlying().(*types.Struct)
	if !ok {
		return nil, errors.WithHint(
			errors.Newf("load: %s: %s.%s is marked but is not a struct", pos, pkg.PkgPath, ts.Name.Name),
			"companion markers apply to struct type declarations only",
		)
	}
	src := &Source{
		Name:        ts.Name.Name,
		Package:     pkg.PkgPath,
		PackageName: pkg.Name,
		Pos:         pos.String(),
		Doc:         strings.TrimSpace(doc.Text()),
		Markers:     markers,
	}
	if len(pkg.GoFiles) > 0 {
		src.Dir = filepath.Dir(pkg.GoFiles[0])
	}
	if m := pkg.Module; m != nil {
		src.Module = &Module{Path: m.Path, Dir: m.Dir}
	}
	if ts.TypeParams != nil {
		for _, f := range ts.TypeParams.List {
			for _, n := range f.Names {
				src.TypeParams = append(src.TypeParams, n.Name)
			}
		}
	}
	comments := fieldComments(ts)
	for i := range st.NumFields() {
		f := st.Field(i)
		if !f.Exported() {
			continue
		}
		src.Members = append(src.Members, &Member{
			Name:     f.Name(),
			Type:     typeRef(f.Type()),
			Tag:      st.Tag(i),
			Embedded: f.Embedded(),
			Comment:  comments[f.Name()],
		})
	}
	return src, nil
}

// fieldComments maps field names of an inline struct declaration to their
// doc or line comments.
func fieldComments(ts *ast.TypeSpec) map[string]string {
	st, ok := ts.Type.(*ast.StructType)
	if !ok || st.Fields == nil {
		return nil
	}
	out := make(map[string]string)
	for _, f := range st.Fields.List {
		c := f.Doc
		if c == nil {
			c = f.Comment
		}
		if c == nil {
			continue
		}
		for _, n := range f.Names {
			out[n.Name] = strings.TrimSpace(c.Text())
		}
	}
	return out
}
