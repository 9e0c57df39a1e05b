package builder

import (
	"fmt"
	"go/token"
	"reflect"
	"slices"
	"strings"

	"github.com/syssam/companion/compiler/gen"
	"github.com/syssam/companion/decl"
	"github.com/syssam/companion/internal/names"
)

// copyable returns the members of d if every one of them can be held by a
// value companion.
func copyable(d *gen.Descriptor, reserved ...string) ([]gen.Member, error) {
	if tps := d.TypeParams(); len(tps) > 0 {
		return nil, gen.NewUnsupportedShapeError(d.String(), "",
			fmt.Sprintf("generic types are not supported (type parameters %s)", strings.Join(tps, ", ")))
	}
	members := d.Members()
	fields := make(map[string]string, len(members))
	for _, m := range members {
		f := fieldName(m)
		if prev, ok := fields[f]; ok {
			return nil, gen.NewUnsupportedShapeError(d.String(), m.Name,
				fmt.Sprintf("member and %s both map to the generated name %q", prev, f))
		}
		fields[f] = m.Name
		if m.Embedded {
			return nil, gen.NewUnsupportedShapeError(d.String(), m.Name, "embedded members are not supported")
		}
		if slices.Contains(reserved, m.Name) {
			return nil, gen.NewUnsupportedShapeError(d.String(), m.Name, "member collides with a generated method")
		}
		for _, c := range m.Type.Components() {
			switch c.Kind {
			case decl.KindFunc, decl.KindChan:
				return nil, gen.NewUnsupportedShapeError(d.String(), m.Name,
					fmt.Sprintf("%s members cannot be serialized", c.Kind))
			case decl.KindInterface, decl.KindStruct:
				return nil, gen.NewUnsupportedShapeError(d.String(), m.Name,
					fmt.Sprintf("inline %s types are not supported; declare a named type", c.Kind))
			case decl.KindNamed:
				if c.Package != "" && !token.IsExported(c.Name) {
					return nil, gen.NewUnsupportedShapeError(d.String(), m.Name,
						fmt.Sprintf("type %s is not exported from %s", c.Name, c.Package))
				}
			}
		}
	}
	return members, nil
}

// copyOf returns e, a value of type t, copied when values of t share
// backing storage.
func copyOf(e decl.Expr, t decl.TypeRef) decl.Expr {
	switch {
	case t.Kind == decl.KindSlice, t.Kind == decl.KindMap,
		t.Kind == decl.KindPointer && t.Elem != nil && t.Elem.Kind == decl.KindArray:
		return decl.Copy{X: e, Type: t}
	}
	return e
}

// fieldName returns the private field name holding member m.
func fieldName(m gen.Member) string {
	return lowerCamel(m.Name)
}

func lowerCamel(s string) string {
	return names.Camel(names.Snake(s))
}

// serializedName returns the name m is serialized under: the name of its
// json tag if it has one, its lower camel case name otherwise. Tag options
// such as omitempty are kept.
func serializedName(m gen.Member) string {
	tag, ok := reflect.StructTag(m.Tag).Lookup("json")
	if !ok {
		return lowerCamel(m.Name)
	}
	name, opts, hasOpts := strings.Cut(tag, ",")
	if name == "-" && !hasOpts {
		return "-"
	}
	if name == "" {
		name = lowerCamel(m.Name)
	}
	if hasOpts {
		return name + "," + opts
	}
	return name
}
