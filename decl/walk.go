package decl

import "maps"

// Refs returns every type reference used by d and its nested declarations,
// including element types and type arguments. Declared names are not
// included unless d itself refers to them.
func (d *TypeDecl) Refs() []TypeRef {
	var out []TypeRef
	add := func(t TypeRef) { out = append(out, t.Components()...) }
	if d.Superclass != nil {
		add(*d.Superclass)
	}
	for _, t := range d.Interfaces {
		add(t)
	}
	for _, f := range d.Fields {
		add(f.Type)
	}
	for _, m := range d.Constructors {
		out = append(out, m.refs()...)
	}
	for _, m := range d.Methods {
		out = append(out, m.refs()...)
	}
	for _, a := range d.Annotations {
		add(a.Type)
		for _, name := range a.MemberNames() {
			if t := a.Members[name].Type; t != nil {
				add(*t)
			}
		}
	}
	for _, n := range d.Nested {
		out = append(out, n.Refs()...)
	}
	return out
}

func (m MethodDecl) refs() []TypeRef {
	var out []TypeRef
	for _, p := range m.Params {
		out = append(out, p.Type.Components()...)
	}
	if m.Returns != nil {
		out = append(out, m.Returns.Components()...)
	}
	for _, t := range m.Throws {
		out = append(out, t.Components()...)
	}
	for _, s := range m.Body {
		out = append(out, StatementRefs(s)...)
	}
	return out
}

// Clone returns a deep copy of d.
func (d *TypeDecl) Clone() *TypeDecl {
	if d == nil {
		return nil
	}
	c := &TypeDecl{
		Name:      d.Name.Clone(),
		Kind:      d.Kind,
		Modifiers: d.Modifiers,
		Doc:       d.Doc,
	}
	if d.Superclass != nil {
		s := d.Superclass.Clone()
		c.Superclass = &s
	}
	c.Interfaces = cloneRefs(d.Interfaces)
	for _, n := range d.Nested {
		c.Nested = append(c.Nested, n.Clone())
	}
	for _, f := range d.Fields {
		f.Type = f.Type.Clone()
		if f.Tags != nil {
			f.Tags = maps.Clone(f.Tags)
		}
		c.Fields = append(c.Fields, f)
	}
	for _, m := range d.Constructors {
		c.Constructors = append(c.Constructors, m.Clone())
	}
	for _, m := range d.Methods {
		c.Methods = append(c.Methods, m.Clone())
	}
	for _, a := range d.Annotations {
		c.Annotations = append(c.Annotations, a.Clone())
	}
	return c
}

// Clone returns a deep copy of m.
func (m MethodDecl) Clone() MethodDecl {
	c := m
	if m.Params != nil {
		c.Params = make([]Param, len(m.Params))
		for i, p := range m.Params {
			c.Params[i] = Param{Name: p.Name, Type: p.Type.Clone()}
		}
	}
	if m.Returns != nil {
		r := m.Returns.Clone()
		c.Returns = &r
	}
	c.Throws = cloneRefs(m.Throws)
	if m.Body != nil {
		c.Body = make([]Statement, len(m.Body))
		for i, s := range m.Body {
			c.Body[i] = CloneStatement(s)
		}
	}
	return c
}

// Clone returns a deep copy of a.
func (a AnnotationUse) Clone() AnnotationUse {
	c := AnnotationUse{Type: a.Type.Clone()}
	if a.Members != nil {
		c.Members = make(map[string]Value, len(a.Members))
		for k, v := range a.Members {
			if v.Type != nil {
				t := v.Type.Clone()
				v.Type = &t
			}
			c.Members[k] = v
		}
	}
	return c
}

func cloneRefs(ts []TypeRef) []TypeRef {
	if ts == nil {
		return nil
	}
	out := make([]TypeRef, len(ts))
	for i, t := range ts {
		out[i] = t.Clone()
	}
	return out
}
