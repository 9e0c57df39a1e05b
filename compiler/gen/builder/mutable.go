package builder

import (
	"fmt"
	"strings"

	"github.com/syssam/companion/compiler/gen"
	"github.com/syssam/companion/decl"
)

// TagKeys are the serialization tag keys set on every mutable field.
var TagKeys = []string{"json", "yaml", "msgpack", "toml"}

// Mutable returns the builder of the mutable companion: a plain type with
// one public, serialization-tagged field per source member, an all-args
// constructor and a toImmutable conversion.
func Mutable() gen.Builder {
	return gen.NewBuilder(gen.RoleMutable, nil, buildMutable)
}

func buildMutable(d *gen.Descriptor, _ gen.Outputs) (*gen.Product, error) {
	members, err := copyable(d, "ToImmutable")
	if err != nil {
		return nil, err
	}
	name, err := d.Name(gen.RoleMutable)
	if err != nil {
		return nil, err
	}
	immutable, err := d.Name(gen.RoleImmutable)
	if err != nil {
		return nil, err
	}
	t := decl.NewClass(name, decl.Public)
	t.Doc = fmt.Sprintf("%s is the mutable form of %s.", name.Name, d.Source())
	ctor := decl.MethodDecl{
		Modifiers: decl.Public,
		Doc:       fmt.Sprintf("creates a %s from all of its members.", name.Name),
	}
	args := make([]decl.Expr, 0, len(members))
	for _, m := range members {
		t.AddField(decl.FieldDecl{
			Name:      m.Name,
			Type:      m.Type,
			Modifiers: decl.Public,
			Tags:      tags(m),
			Doc:       m.Doc,
		})
		p := fieldName(m)
		ctor.Params = append(ctor.Params, decl.Param{Name: p, Type: m.Type})
		ctor.Body = append(ctor.Body, decl.Assign{Target: decl.Self(m.Name), Value: decl.Id(p)})
		args = append(args, decl.Self(m.Name))
	}
	t.AddConstructor(ctor)
	t.AddMethod(decl.MethodDecl{
		Name:      ToImmutable,
		Modifiers: decl.Public,
		Returns:   &immutable,
		Body:      []decl.Statement{decl.Return{Value: decl.New{Type: immutable, Args: args}}},
		Doc:       fmt.Sprintf("returns an immutable copy of the receiver as a %s.", immutable.Name),
	})
	return &gen.Product{Decl: t}, nil
}

// tags returns the serialization tags of m. The json tag is kept as
// written; the other keys only carry the name and omitempty.
func tags(m gen.Member) map[string]string {
	full := serializedName(m)
	name, opts, _ := strings.Cut(full, ",")
	short := name
	switch {
	case name == "-" && full != "-":
		short = "-,"
	case name != "-" && hasOption(opts, "omitempty"):
		short += ",omitempty"
	}
	out := make(map[string]string, len(TagKeys))
	for _, k := range TagKeys {
		out[k] = short
	}
	out["json"] = full
	return out
}

func hasOption(opts, opt string) bool {
	for opts != "" {
		var o string
		o, opts, _ = strings.Cut(opts, ",")
		if o == opt {
			return true
		}
	}
	return false
}
