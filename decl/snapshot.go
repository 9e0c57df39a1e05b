package decl

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot returns a deterministic MessagePack encoding of d. Two
// declarations are structurally identical iff their snapshots are equal.
func Snapshot(d *TypeDecl) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("decl: snapshot %s: %w", d.Name, err)
	}
	return buf.Bytes(), nil
}

// EncodeMsgpack implements msgpack.CustomEncoder so method bodies, which are
// interface trees, are encoded with their node kinds.
func (m MethodDecl) EncodeMsgpack(enc *msgpack.Encoder) error {
	type plain MethodDecl
	body := make([]any, len(m.Body))
	for i, s := range m.Body {
		body[i] = stmtNode(s)
	}
	return enc.Encode(struct {
		plain `msgpack:",inline"`
		Body  []any `msgpack:"body,omitempty"`
	}{plain(m), body})
}

func stmtNode(s Statement) any {
	switch s := s.(type) {
	case Return:
		return map[string]any{"kind": "return", "value": exprNode(s.Value)}
	case Eval:
		return map[string]any{"kind": "eval", "x": exprNode(s.X)}
	case Assign:
		return map[string]any{"kind": "assign", "target": exprNode(s.Target), "value": exprNode(s.Value)}
	case SuperCall:
		return map[string]any{"kind": "super", "args": exprNodes(s.Args)}
	case If:
		then := make([]any, len(s.Then))
		for i, t := range s.Then {
			then[i] = stmtNode(t)
		}
		return map[string]any{"kind": "if", "cond": exprNode(s.Cond), "then": then}
	}
	return map[string]any{"kind": fmt.Sprintf("%T", s)}
}

func exprNode(e Expr) any {
	switch e := e.(type) {
	case nil:
		return nil
	case Ident:
		return map[string]any{"kind": "ident", "name": e.Name}
	case This:
		return map[string]any{"kind": "this"}
	case FieldRef:
		return map[string]any{"kind": "field", "x": exprNode(e.X), "name": e.Name}
	case Call:
		return map[string]any{
			"kind":     "call",
			"x":        exprNode(e.X),
			"method":   e.Method,
			"args":     exprNodes(e.Args),
			"fallible": e.Fallible,
		}
	case ClassLit:
		return map[string]any{"kind": "class", "type": e.Type}
	case Lit:
		return map[string]any{"kind": "lit", "value": e.Value}
	case New:
		return map[string]any{"kind": "new", "type": e.Type, "args": exprNodes(e.Args)}
	case Copy:
		return map[string]any{"kind": "copy", "x": exprNode(e.X), "type": e.Type}
	case IsNil:
		return map[string]any{"kind": "nil?", "x": exprNode(e.X)}
	}
	return map[string]any{"kind": fmt.Sprintf("%T", e)}
}

func exprNodes(es []Expr) []any {
	out := make([]any, len(es))
	for i, e := range es {
		out[i] = exprNode(e)
	}
	return out
}
