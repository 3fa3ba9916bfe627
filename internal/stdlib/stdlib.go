// Package stdlib declares Alan's fixed standard library: the external
// runtime functions implemented by a linked-in C shim, registered once in
// both internal/symtab (for internal/sem) and internal/irgen (for IR
// emission) so user code can call them unqualified and cannot shadow them at
// the top level.
package stdlib

import (
	"fmt"

	"alan/internal/errors"
	"alan/internal/symtab"
	"alan/internal/types"
)

// ParamSig is one formal parameter of a stdlib function signature.
type ParamSig struct {
	Type      *types.Type
	Reference bool // true for "byte[] by reference"-shaped parameters
}

// FuncSig is one stdlib function's signature, the single source of truth
// both symtab registration and IR declaration are built from.
type FuncSig struct {
	Name   string
	Params []ParamSig
	Result *types.Type
}

// byteArrayRef is the recurring "byte[] by reference" shape used by the
// string-handling functions: an IARRAY(CHAR) passed by reference.
func byteArrayRef() ParamSig {
	return ParamSig{Type: types.NewIArray(types.CharType), Reference: true}
}

// Funcs is the fixed list of standard library functions, in the table's
// declared order.
var Funcs = []FuncSig{
	{Name: "writeInteger", Params: []ParamSig{{Type: types.IntegerType}}, Result: types.VoidType},
	{Name: "writeByte", Params: []ParamSig{{Type: types.CharType}}, Result: types.VoidType},
	{Name: "writeChar", Params: []ParamSig{{Type: types.CharType}}, Result: types.VoidType},
	{Name: "writeString", Params: []ParamSig{byteArrayRef()}, Result: types.VoidType},

	{Name: "readInteger", Params: nil, Result: types.IntegerType},
	{Name: "readByte", Params: nil, Result: types.CharType},
	{Name: "readChar", Params: nil, Result: types.CharType},
	{Name: "readString", Params: []ParamSig{{Type: types.IntegerType}, byteArrayRef()}, Result: types.VoidType},

	{Name: "extend", Params: []ParamSig{{Type: types.CharType}}, Result: types.IntegerType},
	{Name: "shrink", Params: []ParamSig{{Type: types.IntegerType}}, Result: types.CharType},

	{Name: "strlen", Params: []ParamSig{byteArrayRef()}, Result: types.IntegerType},
	{Name: "strcmp", Params: []ParamSig{byteArrayRef(), byteArrayRef()}, Result: types.IntegerType},
	{Name: "strcpy", Params: []ParamSig{byteArrayRef(), byteArrayRef()}, Result: types.VoidType},
	{Name: "strcat", Params: []ParamSig{byteArrayRef(), byteArrayRef()}, Result: types.VoidType},
}

// Lookup returns the signature for name, or nil if name does not name a
// stdlib function.
func Lookup(name string) *FuncSig {
	for i := range Funcs {
		if Funcs[i].Name == name {
			return &Funcs[i]
		}
	}
	return nil
}

// RegisterSymbols declares every stdlib function in table's current scope,
// which must be the outermost (nesting level 1) scope, opened by the caller
// before any user declaration is analyzed.
func RegisterSymbols(table *symtab.Table) {
	for _, sig := range Funcs {
		fn, err := table.NewFunction(sig.Name)
		if err != nil {
			errors.Internal("duplicate stdlib symbol %s", sig.Name)
		}
		for i, p := range sig.Params {
			mode := symtab.ByValue
			if p.Reference {
				mode = symtab.ByReference
			}
			argName := fmt.Sprintf("%s$arg%d", sig.Name, i)
			if _, err := table.NewParameter(argName, p.Type, mode, fn); err != nil {
				errors.Internal("stdlib parameter registration failed for %s: %v", sig.Name, err)
			}
		}
		table.EndFunctionHeader(fn, sig.Result)
	}
}
