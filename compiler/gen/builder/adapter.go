package builder

import (
	"fmt"

	"github.com/syssam/companion/compiler/gen"
	"github.com/syssam/companion/decl"
)

// Names of the types nested in the adapter and of the annotation member
// naming them.
const (
	WriterName = "Writer"
	ReaderName = "Reader"
	UsingKey   = "using"
)

// Adapter returns the builder of the serialization adapter for lib. The
// adapter holds a nested writer and reader bound to the immutable
// companion; both go through the mutable companion, which lib can encode
// directly. The immutable companion is amended with the Serialize and
// Deserialize annotations naming them.
func Adapter(lib Library) gen.Builder {
	return gen.NewBuilder(gen.RoleAdapter, []gen.Role{gen.RoleImmutable}, func(d *gen.Descriptor, prior gen.Outputs) (*gen.Product, error) {
		return buildAdapter(lib, d, prior)
	})
}

func buildAdapter(lib Library, d *gen.Descriptor, prior gen.Outputs) (*gen.Product, error) {
	if tps := d.TypeParams(); len(tps) > 0 {
		return nil, gen.NewUnsupportedShapeError(d.String(), "", "generic types cannot be bound to an adapter")
	}
	name, err := d.Name(gen.RoleAdapter)
	if err != nil {
		return nil, err
	}
	mutable, err := d.Name(gen.RoleMutable)
	if err != nil {
		return nil, err
	}
	imm, ok := prior.Get(gen.RoleImmutable)
	if !ok {
		return nil, gen.NewUnresolvedReferenceError(d.String(), "role "+string(gen.RoleImmutable), name.Path())
	}
	if _, ok := imm.Method(ToMutable); !ok {
		return nil, gen.NewUnresolvedReferenceError(d.String(), imm.Name.Path()+"."+ToMutable, name.Path())
	}
	immutable := imm.Name

	t := decl.NewClass(name, decl.Public|decl.Final)
	t.Doc = fmt.Sprintf("%s binds %s to the serialization runtime.", name.Name, immutable.Name)

	w := decl.NewNested(t, WriterName, decl.Public|decl.Static)
	w.Doc = fmt.Sprintf("serializes %s through its mutable form.", immutable.Name)
	w.Extends(lib.WriterBase.With(immutable)).Implements(lib.Writer.With(immutable))
	w.AddConstructor(decl.MethodDecl{
		Modifiers: decl.Public,
		Body:      []decl.Statement{decl.SuperCall{Args: []decl.Expr{decl.ClassLit{Type: immutable}}}},
		Doc:       fmt.Sprintf("returns a writer of %s.", immutable.Name),
	})
	w.AddMethod(decl.MethodDecl{
		Name:      lib.WriteMethod,
		Modifiers: decl.Public,
		Doc:       "writes the mutable form of o to gen. A null o is written as null.",
		Params: []decl.Param{
			{Name: "o", Type: immutable},
			{Name: "gen", Type: lib.Generator},
			{Name: "sp", Type: decl.PointerTo(lib.Provider)},
		},
		Throws: []decl.TypeRef{lib.IOError, lib.GenerationError},
		Body: []decl.Statement{
			decl.If{
				Cond: decl.IsNil{X: decl.Id("o")},
				Then: []decl.Statement{decl.Return{Value: decl.Invoke(decl.Id("gen"), lib.WriteObject, decl.Lit{}).MayFail()}},
			},
			decl.Eval{X: decl.Invoke(decl.Id("gen"), lib.WriteObject, decl.Invoke(decl.Id("o"), ToMutable)).MayFail()},
		},
	})

	r := decl.NewNested(t, ReaderName, decl.Public|decl.Static)
	r.Doc = fmt.Sprintf("deserializes %s through its mutable form.", immutable.Name)
	r.Extends(lib.ReaderBase.With(immutable)).Implements(lib.Reader.With(immutable))
	r.AddConstructor(decl.MethodDecl{
		Modifiers: decl.Public,
		Body:      []decl.Statement{decl.SuperCall{Args: []decl.Expr{decl.ClassLit{Type: immutable}}}},
		Doc:       fmt.Sprintf("returns a reader of %s.", immutable.Name),
	})
	ret := immutable
	r.AddMethod(decl.MethodDecl{
		Name:      lib.ReadMethod,
		Modifiers: decl.Public,
		Doc:       fmt.Sprintf("reads a %s from jp through its mutable form.", mutable.Name),
		Params: []decl.Param{
			{Name: "jp", Type: lib.Parser},
			{Name: "dc", Type: decl.PointerTo(lib.Context)},
		},
		Returns: &ret,
		Throws:  []decl.TypeRef{lib.IOError, lib.ProcessingError},
		Body: []decl.Statement{
			decl.Return{Value: decl.Invoke(
				decl.Invoke(decl.Id("jp"), lib.ReadValueAs, decl.ClassLit{Type: mutable}).MayFail(),
				ToImmutable,
			)},
		},
	})

	t.AddNested(w, r)
	return &gen.Product{
		Decl: t,
		Amendments: []gen.Amendment{{
			Role: gen.RoleImmutable,
			Annotations: []decl.AnnotationUse{
				decl.Annotate(lib.Serialize).With(UsingKey, decl.TypeValue(w.Name)),
				decl.Annotate(lib.Deserialize).With(UsingKey, decl.TypeValue(r.Name)),
			},
		}},
	}, nil
}
