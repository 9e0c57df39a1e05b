package builder

import (
	"fmt"

	"github.com/syssam/companion/compiler/gen"
	"github.com/syssam/companion/decl"
)

// Method names shared by the value companions.
const (
	ToMutable   = "toMutable"
	ToImmutable = "toImmutable"
)

// Immutable returns the builder of the immutable companion: a final type
// holding one private field per source member, an all-args constructor, one
// getter per member and a toMutable conversion. Slices, maps and array
// pointers are copied on the way in and on the way out.
func Immutable() gen.Builder {
	return gen.NewBuilder(gen.RoleImmutable, nil, buildImmutable)
}

func buildImmutable(d *gen.Descriptor, _ gen.Outputs) (*gen.Product, error) {
	members, err := copyable(d, "ToMutable")
	if err != nil {
		return nil, err
	}
	name, err := d.Name(gen.RoleImmutable)
	if err != nil {
		return nil, err
	}
	mutable, err := d.Name(gen.RoleMutable)
	if err != nil {
		return nil, err
	}
	t := decl.NewClass(name, decl.Public|decl.Final)
	t.Doc = fmt.Sprintf("%s is the immutable form of %s.", name.Name, d.Source())
	ctor := decl.MethodDecl{
		Modifiers: decl.Public,
		Doc:       fmt.Sprintf("creates a %s from all of its members.", name.Name),
	}
	args := make([]decl.Expr, 0, len(members))
	for _, m := range members {
		f := fieldName(m)
		t.AddField(decl.FieldDecl{
			Name:      f,
			Type:      m.Type,
			Modifiers: decl.Final,
			Doc:       m.Doc,
		})
		ctor.Params = append(ctor.Params, decl.Param{Name: f, Type: m.Type})
		ctor.Body = append(ctor.Body, decl.Assign{Target: decl.Self(f), Value: copyOf(decl.Id(f), m.Type)})
		ret := m.Type
		t.AddMethod(decl.MethodDecl{
			Name:      m.Name,
			Modifiers: decl.Public,
			Returns:   &ret,
			Body:      []decl.Statement{decl.Return{Value: copyOf(decl.Self(f), m.Type)}},
			Doc:       fmt.Sprintf("returns the %s member.", m.Name),
		})
		args = append(args, copyOf(decl.Self(f), m.Type))
	}
	t.AddConstructor(ctor)
	t.AddMethod(decl.MethodDecl{
		Name:      ToMutable,
		Modifiers: decl.Public,
		Returns:   &mutable,
		Body:      []decl.Statement{decl.Return{Value: decl.New{Type: mutable, Args: args}}},
		Doc:       fmt.Sprintf("returns a mutable copy of the receiver as a %s.", mutable.Name),
	})
	return &gen.Product{Decl: t}, nil
}
