package irgen

import (
	lltypes "github.com/llir/llvm/ir/types"

	"alan/internal/ast"
	"alan/internal/errors"
	"alan/internal/symtab"
	"alan/internal/types"
)

// llType lowers an Alan type to its LLVM shape.
// VOID becomes the void type, INTEGER/BOOLEAN become i32, CHAR becomes i8,
// ARRAY becomes a sized array of its element's lowering, and IARRAY
// degrades to its bare element type — the pointer-ness of an IARRAY only
// shows up at the parameter-passing boundary (llParamType), never in the
// type itself.
func llType(t *types.Type) lltypes.Type {
	switch t.Kind() {
	case types.Void:
		return lltypes.Void
	case types.Integer, types.Boolean:
		return lltypes.I32
	case types.Char:
		return lltypes.I8
	case types.Array:
		return lltypes.NewArray(uint64(t.Len()), llType(t.Elem()))
	case types.IArray:
		return llType(t.Elem())
	default:
		errors.Internal("irgen: cannot lower type %v to LLVM", t.Kind())
		return nil
	}
}

// llParamType lowers a parameter's type, wrapping it in a pointer when it is
// passed by reference or is array-like (arrays are always reference-passed
// at the ABI level; sem has already rejected BY_VALUE arrays before irgen
// ever runs, so this is belt-and-braces symmetry with
// symtab.EndFunctionHeader's identical condition, not a live case).
func llParamType(t *types.Type, mode symtab.PassMode) lltypes.Type {
	base := llType(t)
	if mode == symtab.ByReference || t.IsArrayLike() {
		return lltypes.NewPointer(base)
	}
	return base
}

func passModeOf(m ast.ParMode) symtab.PassMode {
	if m == ast.ByReference {
		return symtab.ByReference
	}
	return symtab.ByValue
}

// effectiveVarType reconstructs the type sem.analyzeVarDef computed for a
// VarDef (ARRAY(ArraySize, Type) when ArraySize > 0, else Type verbatim) —
// irgen needs the same effective type to size the local's alloca.
func effectiveVarType(n *ast.VarDef) *types.Type {
	if n.ArraySize > 0 {
		return types.NewArray(n.ArraySize, n.Type)
	}
	return n.Type
}
