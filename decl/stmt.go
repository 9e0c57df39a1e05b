package decl

// Statement is a statement in a method or constructor body.
type Statement interface {
	stmt()
}

// Expr is an expression used inside a statement.
type Expr interface {
	expr()
}

type (
	// Return returns Value from the enclosing method. A nil Value returns
	// nothing.
	Return struct {
		Value Expr
	}

	// Eval evaluates X for its side effects.
	Eval struct {
		X Expr
	}

	// Assign stores Value into Target.
	Assign struct {
		Target Expr
		Value  Expr
	}

	// SuperCall invokes the superclass constructor. It is only valid as a
	// constructor statement.
	SuperCall struct {
		Args []Expr
	}

	// If runs Then when Cond holds.
	If struct {
		Cond Expr
		Then []Statement
	}
)

func (Return) stmt()    {}
func (Eval) stmt()      {}
func (Assign) stmt()    {}
func (SuperCall) stmt() {}
func (If) stmt()        {}

type (
	// Ident names a parameter or local.
	Ident struct {
		Name string
	}

	// This is the receiver of the enclosing method or the value under
	// construction in a constructor.
	This struct{}

	// FieldRef selects field Name of X.
	FieldRef struct {
		X    Expr
		Name string
	}

	// Call invokes Method on X with Args. A nil X calls a function in scope.
	// Fallible marks calls that may fail; emitters for languages without
	// exceptions propagate the failure explicitly.
	Call struct {
		X        Expr
		Method   string
		Args     []Expr
		Fallible bool
	}

	// ClassLit is a reference to a type used as a value, such as the
	// target type handed to a materializing read.
	ClassLit struct {
		Type TypeRef
	}

	// Lit is a literal constant.
	Lit struct {
		Value any
	}

	// New constructs Type through its constructor.
	New struct {
		Type TypeRef
		Args []Expr
	}

	// Copy is a shallow copy of X, a value of Type, that shares no backing
	// storage with X. Copies of nil stay nil.
	Copy struct {
		X    Expr
		Type TypeRef
	}

	// IsNil reports whether X is the null value.
	IsNil struct {
		X Expr
	}
)

func (Ident) expr()    {}
func (This) expr()     {}
func (FieldRef) expr() {}
func (Call) expr()     {}
func (ClassLit) expr() {}
func (Lit) expr()      {}
func (New) expr()      {}
func (Copy) expr()     {}
func (IsNil) expr()    {}

// Id returns an identifier expression.
func Id(name string) Ident { return Ident{Name: name} }

// Self returns the receiver field name.
func Self(name string) FieldRef { return FieldRef{X: This{}, Name: name} }

// Invoke returns a call of method on x.
func Invoke(x Expr, method string, args ...Expr) Call {
	return Call{X: x, Method: method, Args: args}
}

// MayFail returns a copy of c marked as fallible.
func (c Call) MayFail() Call {
	c.Fallible = true
	return c
}

// StatementRefs returns the type references used by s.
func StatementRefs(s Statement) []TypeRef {
	switch s := s.(type) {
	case Return:
		return ExprRefs(s.Value)
	case Eval:
		return ExprRefs(s.X)
	case Assign:
		return append(ExprRefs(s.Target), ExprRefs(s.Value)...)
	case SuperCall:
		return exprsRefs(s.Args)
	case If:
		refs := ExprRefs(s.Cond)
		for _, t := range s.Then {
			refs = append(refs, StatementRefs(t)...)
		}
		return refs
	}
	return nil
}

// ExprRefs returns the type references used by e.
func ExprRefs(e Expr) []TypeRef {
	switch e := e.(type) {
	case FieldRef:
		return ExprRefs(e.X)
	case Call:
		return append(ExprRefs(e.X), exprsRefs(e.Args)...)
	case ClassLit:
		return e.Type.Components()
	case New:
		return append(e.Type.Components(), exprsRefs(e.Args)...)
	case Copy:
		return append(ExprRefs(e.X), e.Type.Components()...)
	case IsNil:
		return ExprRefs(e.X)
	}
	return nil
}

func exprsRefs(es []Expr) []TypeRef {
	var out []TypeRef
	for _, e := range es {
		out = append(out, ExprRefs(e)...)
	}
	return out
}

// CloneStatement returns a deep copy of s.
func CloneStatement(s Statement) Statement {
	switch s := s.(type) {
	case Return:
		return Return{Value: CloneExpr(s.Value)}
	case Eval:
		return Eval{X: CloneExpr(s.X)}
	case Assign:
		return Assign{Target: CloneExpr(s.Target), Value: CloneExpr(s.Value)}
	case SuperCall:
		return SuperCall{Args: cloneExprs(s.Args)}
	case If:
		then := make([]Statement, len(s.Then))
		for i, t := range s.Then {
			then[i] = CloneStatement(t)
		}
		return If{Cond: CloneExpr(s.Cond), Then: then}
	}
	return s
}

// CloneExpr returns a deep copy of e.
func CloneExpr(e Expr) Expr {
	switch e := e.(type) {
	case FieldRef:
		return FieldRef{X: CloneExpr(e.X), Name: e.Name}
	case Call:
		e.X = CloneExpr(e.X)
		e.Args = cloneExprs(e.Args)
		return e
	case ClassLit:
		return ClassLit{Type: e.Type.Clone()}
	case New:
		return New{Type: e.Type.Clone(), Args: cloneExprs(e.Args)}
	case Copy:
		return Copy{X: CloneExpr(e.X), Type: e.Type.Clone()}
	case IsNil:
		return IsNil{X: CloneExpr(e.X)}
	}
	return e
}

func cloneExprs(es []Expr) []Expr {
	if es == nil {
		return nil
	}
	out := make([]Expr, len(es))
	for i, e := range es {
		out[i] = CloneExpr(e)
	}
	return out
}
