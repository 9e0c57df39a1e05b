package load

import (
	"go/types"

	"github.com/syssam/companion/decl"
)

// typeRef converts a checked Go type into a declaration model reference.
func typeRef(t types.Type) decl.TypeRef {
	switch v := t.(type) {
	case *types.Alias:
		obj := v.Obj()
		if obj.Pkg() == nil {
			return decl.Builtin(obj.Name())
		}
		return decl.Ref(obj.Pkg().Path(), obj.Name(), typeArgs(v.TypeArgs())...)
	case *types.Basic:
		return decl.Builtin(v.Name())
	case *types.Named:
		obj := v.Obj()
		if obj.Pkg() == nil {
			return decl.Builtin(obj.Name())
		}
		return decl.Ref(obj.Pkg().Path(), obj.Name(), typeArgs(v.TypeArgs())...)
	case *types.TypeParam:
		return decl.Builtin(v.Obj().Name())
	case *types.Pointer:
		return decl.PointerTo(typeRef(v.Elem()))
	case *types.Slice:
		return decl.SliceOf(typeRef(v.Elem()))
	case *types.Array:
		return decl.ArrayOf(v.Len(), typeRef(v.Elem()))
	case *types.Map:
		return decl.MapOf(typeRef(v.Key()), typeRef(v.Elem()))
	case *types.Signature:
		return decl.Opaque(decl.KindFunc, types.TypeString(v, nil))
	case *types.Chan:
		return decl.Opaque(decl.KindChan, types.TypeString(v, nil))
	case *types.Interface:
		if v.Empty() {
			return decl.Any
		}
		return decl.Opaque(decl.KindInterface, types.TypeString(v, nil))
	case *types.Struct:
		return decl.Opaque(decl.KindStruct, types.TypeString(v, nil))
	}
	return decl.Opaque(decl.KindInterface, t.String())
}

func typeArgs(list *types.TypeList) []decl.TypeRef {
	if list.Len() == 0 {
		return nil
	}
	args := make([]decl.TypeRef, list.Len())
	for i := range list.Len() {
		args[i] = typeRef(list.At(i))
	}
	return args
}
