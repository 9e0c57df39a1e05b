package builder

import (
	"fmt"
	"strings"

	"github.com/syssam/companion/compiler/gen"
	"github.com/syssam/companion/compiler/load"
	"github.com/syssam/companion/decl"
	"github.com/syssam/companion/internal/names"
)

// Controller method names.
const (
	SourceType    = "sourceType"
	SourcePackage = "sourcePackage"
	SourceName    = "sourceName"
	ResourcePath  = "resourcePath"
)

// Controller returns the builder of the controller descriptor: a type
// recording the identity of the source type. The resource path defaults to
// the plural snake case of the source name and can be set through the
// first argument of the controller marker.
func Controller() gen.Builder {
	return gen.NewBuilder(gen.RoleController, nil, buildController)
}

func buildController(d *gen.Descriptor, _ gen.Outputs) (*gen.Product, error) {
	name, err := d.Name(gen.RoleController)
	if err != nil {
		return nil, err
	}
	t := decl.NewClass(name, decl.Public|decl.Final)
	t.Doc = fmt.Sprintf("%s describes the controller of %s.", name.Name, d.Source())
	for _, m := range []struct{ name, value, doc string }{
		{SourceType, d.Source().String(), "returns the qualified name of the source type."},
		{SourcePackage, d.SourcePackage(), "returns the import path of the source package."},
		{SourceName, d.SourceName(), "returns the name of the source type."},
		{ResourcePath, resourcePath(d), "returns the path the controller is served under."},
	} {
		ret := decl.String
		t.AddMethod(decl.MethodDecl{
			Name:      m.name,
			Modifiers: decl.Public,
			Returns:   &ret,
			Body:      []decl.Statement{decl.Return{Value: decl.Lit{Value: m.value}}},
			Doc:       m.doc,
		})
	}
	return &gen.Product{Decl: t}, nil
}

func resourcePath(d *gen.Descriptor) string {
	if args, ok := d.MarkerArgs(load.Controller); ok && len(args) > 0 && args[0] != "" {
		return "/" + strings.Trim(args[0], "/")
	}
	return "/" + names.Plural(names.Snake(d.SourceName()))
}
