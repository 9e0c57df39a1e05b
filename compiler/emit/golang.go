// Package emit renders companion declarations as Go source and writes or
// checks them on disk.
package emit

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dave/jennifer/jen"

	"github.com/syssam/companion/decl"
	"github.com/syssam/companion/internal/names"
)

// DefaultHeader is the header comment of generated files.
const DefaultHeader = "Code generated by companion. DO NOT EDIT."

// UsingMember is the annotation member naming the implementation bound to
// the annotated type. Annotations carrying it are also registered in an
// init function of the annotated type's file.
const UsingMember = "using"

// Renderer converts declarations to jennifer files.
//
// Declarations map to Go as follows:
//
//   - a class becomes a struct type, nested classes become top-level types
//     named after their enclosing path (PointAdapter.Writer becomes
//     PointAdapterWriter)
//   - a superclass becomes an embedded field, set by a super call
//   - interfaces become compile-time assertions
//   - constructors become New<Type> functions returning a pointer
//   - thrown exceptions become a trailing error result
//   - annotations become //companion: directives
type Renderer struct {
	Header string
}

// NewRenderer returns a renderer writing the default header.
func NewRenderer() *Renderer {
	return &Renderer{Header: DefaultHeader}
}

// File renders d and the types nested in it into one file of the package
// d belongs to.
func (r *Renderer) File(d *decl.TypeDecl) (*jen.File, error) {
	if d == nil {
		return nil, errors.New("emit: nil declaration")
	}
	if d.Kind != decl.Class {
		return nil, errors.Newf("emit: %s is nested and is rendered with its enclosing type", d.Name.Path())
	}
	if d.Name.Package == "" {
		return nil, errors.Newf("emit: %s has no package", d.Name.Path())
	}
	f := jen.NewFilePathName(d.Name.Package, path.Base(d.Name.Package))
	if r.Header != "" {
		f.HeaderComment(r.Header)
	}
	fw := &fileWriter{pkg: d.Name.Package, f: f}
	if err := fw.typeDecl(d); err != nil {
		return nil, err
	}
	return f, nil
}

// FileName returns the name of the file d is rendered to.
func FileName(d *decl.TypeDecl) string {
	return names.Snake(TypeName(d.Name)) + ".go"
}

// TypeName returns the Go name of a declared type.
func TypeName(t decl.TypeRef) string {
	return strings.ReplaceAll(t.Path(), ".", "")
}

type fileWriter struct {
	pkg string
	f   *jen.File
}

func (w *fileWriter) typeDecl(d *decl.TypeDecl) error {
	name := TypeName(d.Name)
	w.f.Line()
	w.comment(name, d.Doc)
	for _, a := range d.Annotations {
		w.f.Comment(directive(a))
	}
	w.f.Type().Id(name).StructFunc(func(g *jen.Group) {
		if d.Superclass != nil {
			g.Add(w.typ(*d.Superclass))
		}
		for _, fd := range d.Fields {
			if fd.Doc != "" {
				g.Comment(fd.Doc)
			}
			s := g.Id(fieldName(fd)).Add(w.typ(fd.Type))
			if len(fd.Tags) > 0 {
				s.Tag(fd.Tags)
			}
		}
	})
	if len(d.Interfaces) > 0 {
		w.f.Line()
	}
	for _, iface := range d.Interfaces {
		w.f.Var().Id("_").Add(w.typ(iface)).Op("=").Parens(jen.Op("*").Id(name)).Call(jen.Nil())
	}
	if err := w.register(d); err != nil {
		return err
	}
	for i, c := range d.Constructors {
		if err := w.constructor(d, i, c); err != nil {
			return err
		}
	}
	for _, m := range d.Methods {
		if err := w.method(d, m); err != nil {
			return err
		}
	}
	for _, n := range d.Nested {
		if err := w.typeDecl(n); err != nil {
			return err
		}
	}
	return nil
}

// register renders the init function binding the implementations named by
// the annotations of d.
func (w *fileWriter) register(d *decl.TypeDecl) error {
	var calls []jen.Code
	for _, a := range d.Annotations {
		v, ok := a.Members[UsingMember]
		if !ok || v.Type == nil {
			continue
		}
		if v.Type.Package != w.pkg {
			return errors.Newf("emit: %s binds %s outside of package %s", d.Name.Path(), v.Type, w.pkg)
		}
		calls = append(calls, jen.Qual(a.Type.Package, a.Type.Name).
			Types(w.typ(d.Name)).
			Call(jen.Id("New"+TypeName(*v.Type)).Call()))
	}
	if len(calls) > 0 {
		w.f.Line()
		w.f.Func().Id("init").Params().Block(calls...)
	}
	return nil
}

func (w *fileWriter) constructor(d *decl.TypeDecl, i int, c decl.MethodDecl) error {
	typeName := TypeName(d.Name)
	name := "New" + typeName
	if i > 0 {
		name = fmt.Sprintf("%s%d", name, i+1)
	}
	w.f.Line()
	w.comment(name, c.Doc)
	fn := &funcWriter{fileWriter: w, owner: d, method: c}
	fn.recv = fn.receiver(typeName)
	var body []jen.Code
	if vals, ok := fn.literal(); ok {
		body = []jen.Code{jen.Return(jen.Op("&").Id(typeName).Values(vals...))}
	} else {
		body = append(body, jen.Id(fn.recv).Op(":=").Op("&").Id(typeName).Values())
		for _, s := range c.Body {
			code, err := fn.statement(s, false)
			if err != nil {
				return w.errorf(d, "constructor", err)
			}
			body = append(body, code...)
		}
		body = append(body, jen.Return(jen.Id(fn.recv)))
	}
	w.f.Func().Id(name).Params(fn.params()...).Op("*").Id(typeName).Block(body...)
	return nil
}

func (w *fileWriter) method(d *decl.TypeDecl, m decl.MethodDecl) error {
	typeName := TypeName(d.Name)
	name := memberName(m.Name, m.Modifiers)
	w.f.Line()
	w.comment(name, m.Doc)
	fn := &funcWriter{fileWriter: w, owner: d, method: m}
	fn.recv = fn.receiver(typeName)
	var body []jen.Code
	for i, s := range m.Body {
		code, err := fn.statement(s, i == len(m.Body)-1)
		if err != nil {
			return w.errorf(d, name, err)
		}
		body = append(body, code...)
	}
	if fn.fallible() && !fn.returned {
		body = append(body, jen.Return(jen.Nil()))
	}
	sig := w.f.Func()
	if !m.Modifiers.Has(decl.Static) {
		sig = sig.Params(jen.Id(fn.recv).Op("*").Id(typeName))
	}
	sig = sig.Id(name).Params(fn.params()...)
	switch results := fn.results(); len(results) {
	case 0:
	case 1:
		sig = sig.Add(results[0])
	default:
		sig = sig.Params(results...)
	}
	sig.Block(body...)
	return nil
}

func (w *fileWriter) comment(name, doc string) {
	if doc == "" {
		return
	}
	if !strings.HasPrefix(doc, name+" ") {
		doc = name + " " + doc
	}
	w.f.Comment(doc)
}

func (w *fileWriter) errorf(d *decl.TypeDecl, member string, err error) error {
	return errors.Wrapf(err, "emit: %s.%s", d.Name.Path(), member)
}

// typ renders a type reference. Named types of the file's own package are
// structs handled by pointer.
func (w *fileWriter) typ(t decl.TypeRef) jen.Code {
	if t.Kind == decl.KindNamed && t.Package == w.pkg {
		return jen.Op("*").Add(w.base(t))
	}
	return w.base(t)
}

// base renders t without the pointer added to local types.
func (w *fileWriter) base(t decl.TypeRef) *jen.Statement {
	switch t.Kind {
	case decl.KindNamed:
		var s *jen.Statement
		switch t.Package {
		case "":
			s = jen.Id(t.Name)
		case w.pkg:
			s = jen.Id(TypeName(t))
		default:
			s = jen.Qual(t.Package, TypeName(t))
		}
		if len(t.Args) > 0 {
			args := make([]jen.Code, len(t.Args))
			for i, a := range t.Args {
				args[i] = w.typ(a)
			}
			s = s.Types(args...)
		}
		return s
	case decl.KindPointer:
		return jen.Op("*").Add(w.base(*t.Elem))
	case decl.KindSlice:
		return jen.Index().Add(w.typ(*t.Elem))
	case decl.KindArray:
		return jen.Index(jen.Lit(int(t.Len))).Add(w.typ(*t.Elem))
	case decl.KindMap:
		return jen.Map(w.typ(*t.Key)).Add(w.typ(*t.Elem))
	}
	return jen.Id(t.Raw)
}

// directive renders an annotation as a //companion: directive.
func directive(a decl.AnnotationUse) string {
	var b strings.Builder
	b.WriteString("//companion:")
	if a.Type.Package != "" {
		b.WriteString(path.Base(a.Type.Package))
		b.WriteByte('.')
	}
	b.WriteString(a.Type.Path())
	for _, k := range a.MemberNames() {
		v := a.Members[k]
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteByte('=')
		if v.Type != nil {
			b.WriteString(TypeName(*v.Type))
			continue
		}
		fmt.Fprintf(&b, "%#v", v.Lit)
	}
	return b.String()
}

func fieldName(f decl.FieldDecl) string {
	return memberName(f.Name, f.Modifiers)
}

func memberName(name string, mods decl.Modifier) string {
	if mods.Has(decl.Public) {
		return names.Exported(name)
	}
	return names.Unexported(name)
}

// funcWriter renders the body of one constructor or method.
type funcWriter struct {
	*fileWriter
	owner    *decl.TypeDecl
	method   decl.MethodDecl
	recv     string
	temps    int
	returned bool
}

func (fn *funcWriter) receiver(typeName string) string {
	recv := names.Receiver(typeName)
	for slices.ContainsFunc(fn.method.Params, func(p decl.Param) bool { return local(p.Name) == recv }) {
		recv += "_"
	}
	return recv
}

func (fn *funcWriter) params() []jen.Code {
	ps := make([]jen.Code, len(fn.method.Params))
	for i, p := range fn.method.Params {
		ps[i] = jen.Id(local(p.Name)).Add(fn.typ(p.Type))
	}
	return ps
}

func (fn *funcWriter) fallible() bool {
	return len(fn.method.Throws) > 0
}

func (fn *funcWriter) results() []jen.Code {
	var rs []jen.Code
	if fn.method.Returns != nil {
		rs = append(rs, fn.typ(*fn.method.Returns))
	}
	if fn.fallible() {
		rs = append(rs, jen.Error())
	}
	return rs
}

// literal returns the composite literal values of a constructor made only
// of field assignments and super calls.
func (fn *funcWriter) literal() ([]jen.Code, bool) {
	var vals []jen.Code
	for _, s := range fn.method.Body {
		switch s := s.(type) {
		case decl.Assign:
			ref, ok := s.Target.(decl.FieldRef)
			if !ok {
				return nil, false
			}
			if _, ok := ref.X.(decl.This); !ok {
				return nil, false
			}
			v, ok := fn.pure(s.Value)
			if !ok {
				return nil, false
			}
			vals = append(vals, jen.Id(fn.field(ref.Name)).Op(":").Add(v))
		case decl.SuperCall:
			sup, err := fn.super()
			if err != nil {
				return nil, false
			}
			vals = append(vals, jen.Id(fn.owner.Superclass.Name).Op(":").Add(sup))
		default:
			return nil, false
		}
	}
	return vals, true
}

// pure renders e if it needs no preceding statements.
func (fn *funcWriter) pure(e decl.Expr) (jen.Code, bool) {
	var pre []jen.Code
	code, err := fn.expr(e, &pre)
	if err != nil || len(pre) > 0 {
		return nil, false
	}
	return code, true
}

// super renders the construction of the embedded superclass. The class
// literal handed to the super constructor is its type argument.
func (fn *funcWriter) super() (jen.Code, error) {
	sup := fn.owner.Superclass
	if sup == nil {
		return nil, errors.New("super call without a superclass")
	}
	ctor := "New" + TypeName(*sup)
	var s *jen.Statement
	if sup.Package == "" || sup.Package == fn.pkg {
		s = jen.Id(ctor)
	} else {
		s = jen.Qual(sup.Package, ctor)
	}
	if len(sup.Args) > 0 {
		args := make([]jen.Code, len(sup.Args))
		for i, a := range sup.Args {
			args[i] = fn.typ(a)
		}
		s = s.Types(args...)
	}
	return s.Call(), nil
}

func (fn *funcWriter) statement(s decl.Statement, last bool) ([]jen.Code, error) {
	var pre []jen.Code
	switch s := s.(type) {
	case decl.Return:
		fn.returned = true
		if s.Value == nil {
			if fn.fallible() {
				return []jen.Code{jen.Return(jen.Nil())}, nil
			}
			return []jen.Code{jen.Return()}, nil
		}
		if c, ok := s.Value.(decl.Call); ok && c.Fallible {
			code, err := fn.call(c, &pre)
			if err != nil {
				return nil, err
			}
			return append(pre, jen.Return(code)), nil
		}
		code, err := fn.expr(s.Value, &pre)
		if err != nil {
			return nil, err
		}
		if fn.fallible() {
			return append(pre, jen.Return(code, jen.Nil())), nil
		}
		return append(pre, jen.Return(code)), nil
	case decl.Eval:
		c, ok := s.X.(decl.Call)
		if !ok || !c.Fallible {
			code, err := fn.expr(s.X, &pre)
			if err != nil {
				return nil, err
			}
			return append(pre, code), nil
		}
		code, err := fn.call(c, &pre)
		if err != nil {
			return nil, err
		}
		if last && fn.fallible() && fn.method.Returns == nil {
			fn.returned = true
			return append(pre, jen.Return(code)), nil
		}
		check, err := fn.check(code)
		if err != nil {
			return nil, err
		}
		return append(pre, check), nil
	case decl.Assign:
		target, err := fn.expr(s.Target, &pre)
		if err != nil {
			return nil, err
		}
		value, err := fn.expr(s.Value, &pre)
		if err != nil {
			return nil, err
		}
		return append(pre, jen.Add(target).Op("=").Add(value)), nil
	case decl.If:
		cond, err := fn.expr(s.Cond, &pre)
		if err != nil {
			return nil, err
		}
		returned := fn.returned
		var then []jen.Code
		for _, t := range s.Then {
			code, err := fn.statement(t, false)
			if err != nil {
				return nil, err
			}
			then = append(then, code...)
		}
		fn.returned = returned
		return append(pre, jen.If(cond).Block(then...)), nil
	case decl.SuperCall:
		if fn.method.Name != "" {
			return nil, errors.New("super call outside of a constructor")
		}
		sup, err := fn.super()
		if err != nil {
			return nil, err
		}
		return []jen.Code{jen.Id(fn.recv).Dot(fn.owner.Superclass.Name).Op("=").Add(sup)}, nil
	}
	return nil, errors.Newf("unsupported statement %T", s)
}

// check renders an error check of a call returning only an error.
func (fn *funcWriter) check(call jen.Code) (jen.Code, error) {
	fail, err := fn.failure()
	if err != nil {
		return nil, err
	}
	return jen.If(jen.Err().Op(":=").Add(call), jen.Err().Op("!=").Nil()).Block(fail), nil
}

// failure renders the return of an error from the current function.
func (fn *funcWriter) failure() (jen.Code, error) {
	if !fn.fallible() {
		return nil, errors.Newf("fallible call in %q, which declares no exceptions", fn.method.Name)
	}
	if fn.method.Returns == nil {
		return jen.Return(jen.Err()), nil
	}
	return jen.Return(fn.zero(*fn.method.Returns), jen.Err()), nil
}

func (fn *funcWriter) zero(t decl.TypeRef) jen.Code {
	switch {
	case t.Kind == decl.KindNamed && t.Package == fn.pkg,
		t.Kind == decl.KindPointer, t.Kind == decl.KindSlice, t.Kind == decl.KindMap,
		t.Kind == decl.KindFunc, t.Kind == decl.KindChan, t.Kind == decl.KindInterface:
		return jen.Nil()
	case t.Equal(decl.String):
		return jen.Lit("")
	case t.Equal(decl.Bool):
		return jen.False()
	case t.Equal(decl.Error), t.Equal(decl.Any):
		return jen.Nil()
	case t.IsBuiltin() && len(t.Args) == 0:
		return jen.Lit(0)
	}
	return jen.Op("*").New(fn.typ(t))
}

func (fn *funcWriter) expr(e decl.Expr, pre *[]jen.Code) (jen.Code, error) {
	switch e := e.(type) {
	case decl.Ident:
		return jen.Id(local(e.Name)), nil
	case decl.This:
		return jen.Id(fn.recv), nil
	case decl.FieldRef:
		if _, ok := e.X.(decl.This); ok {
			return jen.Id(fn.recv).Dot(fn.field(e.Name)), nil
		}
		x, err := fn.expr(e.X, pre)
		if err != nil {
			return nil, err
		}
		return jen.Add(x).Dot(names.Exported(e.Name)), nil
	case decl.Call:
		if !e.Fallible {
			return fn.call(e, pre)
		}
		return fn.hoist(e, pre)
	case decl.ClassLit:
		return jen.Qual("reflect", "TypeFor").Types(fn.typ(e.Type)).Call(), nil
	case decl.Lit:
		if e.Value == nil {
			return jen.Nil(), nil
		}
		return jen.Lit(e.Value), nil
	case decl.IsNil:
		x, err := fn.expr(e.X, pre)
		if err != nil {
			return nil, err
		}
		return jen.Add(x).Op("==").Nil(), nil
	case decl.Copy:
		x, err := fn.expr(e.X, pre)
		if err != nil {
			return nil, err
		}
		return fn.copy(x, e.Type), nil
	case decl.New:
		args, err := fn.exprs(e.Args, pre)
		if err != nil {
			return nil, err
		}
		ctor := "New" + TypeName(e.Type)
		if e.Type.Package == "" || e.Type.Package == fn.pkg {
			return jen.Id(ctor).Call(args...), nil
		}
		return jen.Qual(e.Type.Package, ctor).Call(args...), nil
	}
	return nil, errors.Newf("unsupported expression %T", e)
}

func (fn *funcWriter) exprs(es []decl.Expr, pre *[]jen.Code) ([]jen.Code, error) {
	out := make([]jen.Code, len(es))
	for i, e := range es {
		code, err := fn.expr(e, pre)
		if err != nil {
			return nil, err
		}
		out[i] = code
	}
	return out, nil
}

func (fn *funcWriter) call(c decl.Call, pre *[]jen.Code) (jen.Code, error) {
	args, err := fn.exprs(c.Args, pre)
	if err != nil {
		return nil, err
	}
	if c.X == nil {
		return jen.Id(local(c.Method)).Call(args...), nil
	}
	x, err := fn.expr(c.X, pre)
	if err != nil {
		return nil, err
	}
	return jen.Add(x).Dot(names.Exported(c.Method)).Call(args...), nil
}

// hoist moves a fallible call used as a value into the preceding
// statements. A call materializing a class literal decodes into a new
// value of that type, which becomes the value of the expression.
func (fn *funcWriter) hoist(c decl.Call, pre *[]jen.Code) (jen.Code, error) {
	tmp := fmt.Sprintf("_v%d", fn.temps)
	fn.temps++
	fail, err := fn.failure()
	if err != nil {
		return nil, err
	}
	if i := slices.IndexFunc(c.Args, func(e decl.Expr) bool { _, ok := e.(decl.ClassLit); return ok }); i >= 0 {
		lit := c.Args[i].(decl.ClassLit)
		c.Args = slices.Clone(c.Args)
		c.Args[i] = decl.Id(tmp)
		*pre = append(*pre, jen.Id(tmp).Op(":=").New(fn.base(lit.Type)))
		call, err := fn.call(c, pre)
		if err != nil {
			return nil, err
		}
		*pre = append(*pre, jen.If(jen.Err().Op(":=").Add(call), jen.Err().Op("!=").Nil()).Block(fail))
		return jen.Id(tmp), nil
	}
	call, err := fn.call(c, pre)
	if err != nil {
		return nil, err
	}
	*pre = append(*pre,
		jen.List(jen.Id(tmp), jen.Err()).Op(":=").Add(call),
		jen.If(jen.Err().Op("!=").Nil()).Block(fail),
	)
	return jen.Id(tmp), nil
}

// copy renders a copy of x, a value of t, sharing no backing storage
// with it.
func (fn *funcWriter) copy(x jen.Code, t decl.TypeRef) jen.Code {
	switch {
	case t.Kind == decl.KindSlice:
		return jen.Qual("slices", "Clone").Call(x)
	case t.Kind == decl.KindMap:
		return jen.Qual("maps", "Clone").Call(x)
	case t.Kind == decl.KindPointer && t.Elem != nil && t.Elem.Kind == decl.KindArray:
		typ := fn.typ(t)
		return jen.Func().Params(jen.Id("a").Add(typ)).Add(typ).Block(
			jen.If(jen.Id("a").Op("==").Nil()).Block(jen.Return(jen.Nil())),
			jen.Id("c").Op(":=").Op("*").Id("a"),
			jen.Return(jen.Op("&").Id("c")),
		).Call(x)
	}
	return x
}

// field returns the Go name of a field of the owner type.
func (fn *funcWriter) field(name string) string {
	if f, ok := fn.owner.Field(name); ok {
		return fieldName(*f)
	}
	return names.Exported(name)
}

// shadowed are the packages generated bodies refer to, which parameters
// must not hide.
var shadowed = []string{"maps", "slices"}

// local returns the Go name of a parameter or local.
func local(name string) string {
	if strings.HasPrefix(name, "_") {
		return name
	}
	name = names.Unexported(name)
	if slices.Contains(shadowed, name) {
		name += "_"
	}
	return name
}
