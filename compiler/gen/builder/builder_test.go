package builder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/companion/compiler/gen"
	"github.com/syssam/companion/compiler/load"
	"github.com/syssam/companion/decl"
)

const (
	shapesPkg    = "example.com/shapes"
	companionPkg = shapesPkg + "/companion"
)

var beanRoles = []gen.Role{gen.RoleImmutable, gen.RoleMutable, gen.RoleAdapter}

func point() *load.Source {
	return &load.Source{
		Name:        "Point",
		Package:     shapesPkg,
		PackageName: "shapes",
		Markers:     []load.Marker{{Name: load.Bean}},
		Members: []*load.Member{
			{Name: "X", Type: decl.Int, Tag: `json:"x"`},
			{Name: "Y", Type: decl.Int, Tag: `json:"y"`},
		},
	}
}

func descriptor(t *testing.T, src *load.Source, naming gen.Naming, roles ...gen.Role) *gen.Descriptor {
	t.Helper()
	d, err := gen.NewDescriptor(src, naming, roles...)
	require.NoError(t, err)
	return d
}

// generate runs the bean pipeline for src and returns the emitted
// declarations by role.
func generate(t *testing.T, src *load.Source, opts ...gen.Option) map[gen.Role]*decl.TypeDecl {
	t.Helper()
	var emitted []*decl.TypeDecl
	emitter := gen.EmitFunc(func(_ context.Context, d *decl.TypeDecl) (string, error) {
		emitted = append(emitted, d)
		return d.Name.QualifiedName(), nil
	})
	cfg, err := gen.NewConfig(append([]gen.Option{
		gen.WithBuilders(Bean()...),
		gen.WithEmitter(emitter),
		gen.WithWorkers(1),
	}, opts...)...)
	require.NoError(t, err)
	o, err := gen.NewOrchestrator(cfg)
	require.NoError(t, err)
	res, err := o.Generate(context.Background(), src)
	require.NoError(t, err)
	require.Equal(t, gen.StateEmitted, res.State)
	out := make(map[gen.Role]*decl.TypeDecl)
	for i, r := range o.Roles() {
		out[r] = emitted[i]
	}
	return out
}

func TestImmutable(t *testing.T) {
	d := descriptor(t, point(), gen.DefaultNaming(), beanRoles...)
	prod, err := Immutable().Build(d, gen.NewOutputs(nil))
	require.NoError(t, err)
	require.Empty(t, prod.Amendments)
	x := prod.Decl

	assert.Equal(t, decl.Ref(companionPkg, "Point"), x.Name)
	assert.True(t, x.Modifiers.Has(decl.Public|decl.Final))
	require.Len(t, x.Fields, 2)
	for i, name := range []string{"x", "y"} {
		f := x.Fields[i]
		assert.Equal(t, name, f.Name)
		assert.Equal(t, decl.Int, f.Type)
		assert.False(t, f.Modifiers.Has(decl.Public))
		assert.True(t, f.Modifiers.Has(decl.Final))
	}

	require.Len(t, x.Constructors, 1)
	ctor := x.Constructors[0]
	assert.Equal(t, []decl.Param{{Name: "x", Type: decl.Int}, {Name: "y", Type: decl.Int}}, ctor.Params)
	assert.Equal(t, []decl.Statement{
		decl.Assign{Target: decl.Self("x"), Value: decl.Id("x")},
		decl.Assign{Target: decl.Self("y"), Value: decl.Id("y")},
	}, ctor.Body)

	getter, ok := x.Method("X")
	require.True(t, ok)
	assert.Equal(t, decl.Int, *getter.Returns)
	assert.Equal(t, []decl.Statement{decl.Return{Value: decl.Self("x")}}, getter.Body)

	conv, ok := x.Method(ToMutable)
	require.True(t, ok)
	mutable := decl.Ref(companionPkg, "PointMutable")
	assert.Equal(t, mutable, *conv.Returns)
	assert.Equal(t, []decl.Statement{
		decl.Return{Value: decl.New{Type: mutable, Args: []decl.Expr{decl.Self("x"), decl.Self("y")}}},
	}, conv.Body)
}

func TestImmutableCopies(t *testing.T) {
	tags := decl.SliceOf(decl.String)
	scores := decl.MapOf(decl.String, decl.Builtin("float64"))
	cells := decl.PointerTo(decl.ArrayOf(4, decl.Int))
	grid := decl.ArrayOf(3, decl.Int)
	origin := decl.PointerTo(decl.Ref(shapesPkg, "Point"))
	src := point()
	src.Members = []*load.Member{
		{Name: "Tags", Type: tags},
		{Name: "Scores", Type: scores},
		{Name: "Cells", Type: cells},
		{Name: "Grid", Type: grid},
		{Name: "Origin", Type: origin},
	}
	d := descriptor(t, src, gen.DefaultNaming(), beanRoles...)
	prod, err := Immutable().Build(d, gen.NewOutputs(nil))
	require.NoError(t, err)
	x := prod.Decl

	assert.Equal(t, []decl.Statement{
		decl.Assign{Target: decl.Self("tags"), Value: decl.Copy{X: decl.Id("tags"), Type: tags}},
		decl.Assign{Target: decl.Self("scores"), Value: decl.Copy{X: decl.Id("scores"), Type: scores}},
		decl.Assign{Target: decl.Self("cells"), Value: decl.Copy{X: decl.Id("cells"), Type: cells}},
		decl.Assign{Target: decl.Self("grid"), Value: decl.Id("grid")},
		decl.Assign{Target: decl.Self("origin"), Value: decl.Id("origin")},
	}, x.Constructors[0].Body)

	getter, ok := x.Method("Tags")
	require.True(t, ok)
	assert.Equal(t, []decl.Statement{decl.Return{Value: decl.Copy{X: decl.Self("tags"), Type: tags}}}, getter.Body)
	getter, ok = x.Method("Grid")
	require.True(t, ok)
	assert.Equal(t, []decl.Statement{decl.Return{Value: decl.Self("grid")}}, getter.Body, "arrays are values")

	conv, ok := x.Method(ToMutable)
	require.True(t, ok)
	assert.Equal(t, []decl.Statement{decl.Return{Value: decl.New{
		Type: decl.Ref(companionPkg, "PointMutable"),
		Args: []decl.Expr{
			decl.Copy{X: decl.Self("tags"), Type: tags},
			decl.Copy{X: decl.Self("scores"), Type: scores},
			decl.Copy{X: decl.Self("cells"), Type: cells},
			decl.Self("grid"),
			decl.Self("origin"),
		},
	}}}, conv.Body)
}

func TestMutable(t *testing.T) {
	src := point()
	src.Members = append(src.Members,
		&load.Member{Name: "Label", Type: decl.String, Tag: `json:"label,omitempty"`},
		&load.Member{Name: "CreatedAt", Type: decl.Ref("time", "Time")},
		&load.Member{Name: "Secret", Type: decl.String, Tag: `json:"-"`},
	)
	d := descriptor(t, src, gen.DefaultNaming(), beanRoles...)
	prod, err := Mutable().Build(d, gen.NewOutputs(nil))
	require.NoError(t, err)
	x := prod.Decl

	assert.Equal(t, decl.Ref(companionPkg, "PointMutable"), x.Name)
	assert.True(t, x.Modifiers.Has(decl.Public))
	assert.False(t, x.Modifiers.Has(decl.Final))

	tests := []struct {
		field string
		tags  map[string]string
	}{
		{"X", map[string]string{"json": "x", "yaml": "x", "msgpack": "x", "toml": "x"}},
		{"Label", map[string]string{"json": "label,omitempty", "yaml": "label,omitempty", "msgpack": "label,omitempty", "toml": "label,omitempty"}},
		{"CreatedAt", map[string]string{"json": "createdAt", "yaml": "createdAt", "msgpack": "createdAt", "toml": "createdAt"}},
		{"Secret", map[string]string{"json": "-", "yaml": "-", "msgpack": "-", "toml": "-"}},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			f, ok := x.Field(tt.field)
			require.True(t, ok)
			assert.True(t, f.Modifiers.Has(decl.Public))
			assert.Equal(t, tt.tags, f.Tags)
		})
	}

	require.Len(t, x.Constructors, 1)
	assert.Equal(t, "createdAt", x.Constructors[0].Params[3].Name)

	conv, ok := x.Method(ToImmutable)
	require.True(t, ok)
	immutable := decl.Ref(companionPkg, "Point")
	assert.Equal(t, immutable, *conv.Returns)
	ret, ok := conv.Body[0].(decl.Return)
	require.True(t, ok)
	n, ok := ret.Value.(decl.New)
	require.True(t, ok)
	assert.Equal(t, immutable, n.Type)
	assert.Len(t, n.Args, 5)
	assert.Equal(t, decl.Self("X"), n.Args[0])
}

func TestAdapterRoundTrip(t *testing.T) {
	out := generate(t, point())
	adapter := out[gen.RoleAdapter]
	immutable := decl.Ref(companionPkg, "Point")
	mutable := decl.Ref(companionPkg, "PointMutable")
	lib := CodecLibrary()

	assert.Equal(t, decl.Ref(companionPkg, "PointAdapter"), adapter.Name)
	require.Len(t, adapter.Nested, 2)

	w, ok := adapter.NestedType(WriterName)
	require.True(t, ok)
	assert.Equal(t, decl.NestedClass, w.Kind)
	assert.True(t, w.Modifiers.Has(decl.Public|decl.Static))
	assert.Equal(t, lib.WriterBase.With(immutable), *w.Superclass)
	assert.Equal(t, []decl.TypeRef{lib.Writer.With(immutable)}, w.Interfaces)
	require.Len(t, w.Constructors, 1)
	assert.Equal(t, []decl.Statement{
		decl.SuperCall{Args: []decl.Expr{decl.ClassLit{Type: immutable}}},
	}, w.Constructors[0].Body)

	write, ok := w.Method(lib.WriteMethod)
	require.True(t, ok)
	assert.Nil(t, write.Returns)
	assert.Equal(t, []decl.TypeRef{lib.IOError, lib.GenerationError}, write.Throws)
	require.Len(t, write.Params, 3)
	assert.Equal(t, immutable, write.Params[0].Type)
	assert.Equal(t, lib.Generator, write.Params[1].Type)
	assert.Equal(t, decl.PointerTo(lib.Provider), write.Params[2].Type)
	require.Len(t, write.Body, 2)
	assert.Equal(t, decl.If{
		Cond: decl.IsNil{X: decl.Id("o")},
		Then: []decl.Statement{decl.Return{Value: decl.Invoke(decl.Id("gen"), lib.WriteObject, decl.Lit{}).MayFail()}},
	}, write.Body[0], "a null value is written as null")
	eval, ok := write.Body[1].(decl.Eval)
	require.True(t, ok)
	call, ok := eval.X.(decl.Call)
	require.True(t, ok)
	assert.Equal(t, lib.WriteObject, call.Method)
	assert.True(t, call.Fallible)
	assert.Equal(t, decl.Id("gen"), call.X)
	require.Len(t, call.Args, 1)
	assert.Equal(t, decl.Invoke(decl.Id("o"), ToMutable), call.Args[0])

	r, ok := adapter.NestedType(ReaderName)
	require.True(t, ok)
	assert.Equal(t, lib.ReaderBase.With(immutable), *r.Superclass)
	read, ok := r.Method(lib.ReadMethod)
	require.True(t, ok)
	assert.Equal(t, immutable, *read.Returns)
	assert.Equal(t, []decl.TypeRef{lib.IOError, lib.ProcessingError}, read.Throws)
	require.Len(t, read.Body, 1)
	ret, ok := read.Body[0].(decl.Return)
	require.True(t, ok)
	freeze, ok := ret.Value.(decl.Call)
	require.True(t, ok)
	assert.Equal(t, ToImmutable, freeze.Method)
	materialize, ok := freeze.X.(decl.Call)
	require.True(t, ok)
	assert.Equal(t, lib.ReadValueAs, materialize.Method)
	assert.True(t, materialize.Fallible)
	assert.Equal(t, []decl.Expr{decl.ClassLit{Type: mutable}}, materialize.Args)

	// The immutable companion the writer converts from declares toMutable.
	_, ok = out[gen.RoleImmutable].Method(ToMutable)
	assert.True(t, ok)
	_, ok = out[gen.RoleMutable].Method(ToImmutable)
	assert.True(t, ok)
}

func TestAdapterAnnotations(t *testing.T) {
	marker := decl.Annotate(decl.Ref("example.com/audit", "Tracked"))
	annotated := gen.NewBuilder(gen.RoleImmutable, nil, func(d *gen.Descriptor, prior gen.Outputs) (*gen.Product, error) {
		prod, err := Immutable().Build(d, prior)
		if err != nil {
			return nil, err
		}
		prod.Decl.AddAnnotation(marker)
		return prod, nil
	})
	var got *decl.TypeDecl
	cfg, err := gen.NewConfig(
		gen.WithBuilders(annotated, Mutable(), Adapter(CodecLibrary())),
		gen.WithEmitter(gen.EmitFunc(func(_ context.Context, d *decl.TypeDecl) (string, error) {
			if d.Name.Name == "Point" {
				got = d
			}
			return d.Name.Path(), nil
		})),
	)
	require.NoError(t, err)
	o, err := gen.NewOrchestrator(cfg)
	require.NoError(t, err)
	_, err = o.Generate(context.Background(), point())
	require.NoError(t, err)

	require.NotNil(t, got)
	require.Len(t, got.Annotations, 3)
	assert.Equal(t, marker, got.Annotations[0])
	lib := CodecLibrary()
	adapter := decl.Ref(companionPkg, "PointAdapter")
	assert.Equal(t, decl.Annotate(lib.Serialize).With(UsingKey, decl.TypeValue(adapter.Nested(WriterName))), got.Annotations[1])
	assert.Equal(t, decl.Annotate(lib.Deserialize).With(UsingKey, decl.TypeValue(adapter.Nested(ReaderName))), got.Annotations[2])
}

func TestAdapterRequiresToMutable(t *testing.T) {
	d := descriptor(t, point(), gen.DefaultNaming(), beanRoles...)
	bare := decl.NewClass(decl.Ref(companionPkg, "Point"), decl.Public)
	_, err := Adapter(CodecLibrary()).Build(d, gen.NewOutputs(map[gen.Role]*decl.TypeDecl{gen.RoleImmutable: bare}))
	require.Error(t, err)
	assert.True(t, gen.IsUnresolvedReference(err))

	_, err = Adapter(CodecLibrary()).Build(d, gen.NewOutputs(nil))
	require.Error(t, err)
	assert.True(t, gen.IsUnresolvedReference(err))
}

func TestCustomSuffix(t *testing.T) {
	out := generate(t, point(), gen.WithSuffix(gen.RoleMutable, "Draft"), gen.WithTarget("internal/values"))
	pkg := shapesPkg + "/internal/values"
	draft := decl.Ref(pkg, "PointDraft")

	assert.Equal(t, draft, out[gen.RoleMutable].Name)
	conv, ok := out[gen.RoleImmutable].Method(ToMutable)
	require.True(t, ok)
	assert.Equal(t, draft, *conv.Returns)

	r, ok := out[gen.RoleAdapter].NestedType(ReaderName)
	require.True(t, ok)
	read, ok := r.Method(CodecLibrary().ReadMethod)
	require.True(t, ok)
	ret := read.Body[0].(decl.Return)
	materialize := ret.Value.(decl.Call).X.(decl.Call)
	assert.Equal(t, []decl.Expr{decl.ClassLit{Type: draft}}, materialize.Args)
}

func TestUnresolvedReference(t *testing.T) {
	d := descriptor(t, point(), gen.DefaultNaming(), gen.RoleImmutable)
	_, err := Immutable().Build(d, gen.NewOutputs(nil))
	require.Error(t, err)
	assert.True(t, gen.IsUnresolvedReference(err))
	assert.Contains(t, err.Error(), "role mutable")

	_, err = Mutable().Build(descriptor(t, point(), gen.DefaultNaming(), gen.RoleMutable), gen.NewOutputs(nil))
	assert.True(t, gen.IsUnresolvedReference(err))
}

func TestUnsupportedShape(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*load.Source)
		member string
	}{
		{
			name:   "type parameters",
			mutate: func(s *load.Source) { s.TypeParams = []string{"T"} },
		},
		{
			name: "embedded",
			mutate: func(s *load.Source) {
				s.Members = append(s.Members, &load.Member{Name: "Base", Type: decl.Ref(shapesPkg, "Base"), Embedded: true})
			},
			member: "Base",
		},
		{
			name: "func",
			mutate: func(s *load.Source) {
				s.Members = append(s.Members, &load.Member{Name: "OnChange", Type: decl.Opaque(decl.KindFunc, "func() error")})
			},
			member: "OnChange",
		},
		{
			name: "chan in map",
			mutate: func(s *load.Source) {
				s.Members = append(s.Members, &load.Member{Name: "Events", Type: decl.MapOf(decl.String, decl.Opaque(decl.KindChan, "chan int"))})
			},
			member: "Events",
		},
		{
			name: "inline struct",
			mutate: func(s *load.Source) {
				s.Members = append(s.Members, &load.Member{Name: "Meta", Type: decl.Opaque(decl.KindStruct, "struct{}")})
			},
			member: "Meta",
		},
		{
			name: "colliding names",
			mutate: func(s *load.Source) {
				s.Members = append(s.Members,
					&load.Member{Name: "ID", Type: decl.String},
					&load.Member{Name: "Id", Type: decl.Int},
				)
			},
			member: "Id",
		},
		{
			name: "unexported type",
			mutate: func(s *load.Source) {
				s.Members = append(s.Members, &load.Member{Name: "State", Type: decl.Ref(shapesPkg, "status")})
			},
			member: "State",
		},
		{
			name: "unexported type argument",
			mutate: func(s *load.Source) {
				s.Members = append(s.Members, &load.Member{Name: "History", Type: decl.MapOf(decl.String, decl.SliceOf(decl.Ref(shapesPkg, "status")))})
			},
			member: "History",
		},
		{
			name: "reserved",
			mutate: func(s *load.Source) {
				s.Members = append(s.Members, &load.Member{Name: "ToMutable", Type: decl.Bool})
			},
			member: "ToMutable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := point()
			tt.mutate(src)
			d := descriptor(t, src, gen.DefaultNaming(), beanRoles...)
			_, err := Immutable().Build(d, gen.NewOutputs(nil))
			require.Error(t, err)
			assert.True(t, gen.IsUnsupportedShape(err))
			var shape *gen.UnsupportedShapeError
			require.ErrorAs(t, err, &shape)
			assert.Equal(t, tt.member, shape.Member)
			assert.Equal(t, shapesPkg+".Point", shape.Source)
		})
	}
}

func TestController(t *testing.T) {
	src := &load.Source{
		Name:    "OrderLine",
		Package: shapesPkg,
		Markers: []load.Marker{{Name: load.Controller}},
	}
	d := descriptor(t, src, gen.DefaultNaming(), gen.RoleController)
	prod, err := Controller().Build(d, gen.NewOutputs(nil))
	require.NoError(t, err)
	x := prod.Decl
	assert.Equal(t, decl.Ref(companionPkg, "OrderLineController"), x.Name)
	assert.Empty(t, x.Fields)

	want := map[string]string{
		SourceType:    shapesPkg + ".OrderLine",
		SourcePackage: shapesPkg,
		SourceName:    "OrderLine",
		ResourcePath:  "/order_lines",
	}
	require.Len(t, x.Methods, len(want))
	for name, value := range want {
		m, ok := x.Method(name)
		require.True(t, ok, name)
		assert.Equal(t, decl.String, *m.Returns)
		assert.Equal(t, []decl.Statement{decl.Return{Value: decl.Lit{Value: value}}}, m.Body)
	}

	src.Markers[0].Args = []string{"/api/lines/"}
	prod, err = Controller().Build(descriptor(t, src, gen.DefaultNaming(), gen.RoleController), gen.NewOutputs(nil))
	require.NoError(t, err)
	m, _ := prod.Decl.Method(ResourcePath)
	assert.Equal(t, decl.Lit{Value: "/api/lines"}, m.Body[0].(decl.Return).Value)
}

func TestForMarker(t *testing.T) {
	roles := func(bs []gen.Builder) []gen.Role {
		var out []gen.Role
		for _, b := range bs {
			out = append(out, b.Role())
		}
		return out
	}
	assert.Equal(t, beanRoles, roles(ForMarker(load.Bean)))
	assert.Equal(t, []gen.Role{gen.RoleController}, roles(ForMarker(load.Controller)))
	assert.Nil(t, ForMarker("unknown"))
	assert.Equal(t, []string{load.Bean, load.Controller}, Markers())
}

func TestSerializedName(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		want string
	}{
		{"ID", "", "id"},
		{"HTTPStatus", "", "httpStatus"},
		{"Name", `json:"full_name"`, "full_name"},
		{"Name", `json:",omitempty"`, "name,omitempty"},
		{"Name", `json:"-"`, "-"},
		{"Name", `json:"-,"`, "-,"},
		{"Name", `yaml:"other"`, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name+tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, serializedName(gen.Member{Name: tt.name, Tag: tt.tag}))
		})
	}
}
