// Package types represents Alan's small set of compile-time types and the
// rules for comparing and sizing them.
package types

import "fmt"

// Kind distinguishes the shape of a Type.
type Kind int

const (
	Void Kind = iota
	Integer
	Boolean
	Char
	Array
	IArray
)

func (k Kind) String() string {
	switch k {
	case Void:
		return "void"
	case Integer:
		return "int"
	case Boolean:
		return "bool"
	case Char:
		return "byte"
	case Array:
		return "array"
	case IArray:
		return "iarray"
	default:
		return "unknown"
	}
}

// Type is an Alan compile-time type. VOID, INTEGER, BOOLEAN and CHAR are
// represented by the shared VoidType/IntegerType/BooleanType/CharType values
// below; ARRAY and
// IARRAY are allocated per use site via NewArray/NewIArray.
type Type struct {
	kind Kind
	size int   // element count, ARRAY only
	elem *Type // element type, ARRAY/IARRAY only
}

func (t *Type) Kind() Kind { return t.kind }

// Len returns the declared element count of an ARRAY type; it is only
// meaningful when Kind() == Array.
func (t *Type) Len() int { return t.size }

// Elem returns the element type of an ARRAY or IARRAY type.
func (t *Type) Elem() *Type { return t.elem }

func (t *Type) String() string {
	switch t.kind {
	case Array:
		return fmt.Sprintf("array [%d] of %s", t.size, t.elem)
	case IArray:
		return fmt.Sprintf("array of %s", t.elem)
	default:
		return t.kind.String()
	}
}

// Shared singletons for the scalar types; these never need to be compared by
// pointer identity because Equal is always structural.
var (
	VoidType    = &Type{kind: Void}
	IntegerType = &Type{kind: Integer}
	BooleanType = &Type{kind: Boolean}
	CharType    = &Type{kind: Char}
)

// NewArray builds ARRAY(n, elem). This constructor itself does not error, to
// keep the type system free of diagnostic concerns: it accepts any n and any
// elem. sem.analyzeVarDef reports a negative size before calling it; an
// array-typed elem is not rejected anywhere.
func NewArray(n int, elem *Type) *Type {
	return &Type{kind: Array, size: n, elem: elem}
}

// NewIArray builds IARRAY(elem), the incomplete-size array type usable only
// as a reference parameter.
func NewIArray(elem *Type) *Type {
	return &Type{kind: IArray, elem: elem}
}

// IsScalar reports whether t is INTEGER, BOOLEAN, or CHAR — the operand set
// accepted by arithmetic, comparison and boolean operators (after their
// individual kind restrictions are applied).
func (t *Type) IsScalar() bool {
	switch t.kind {
	case Integer, Boolean, Char:
		return true
	default:
		return false
	}
}

// IsArrayLike reports whether t is ARRAY or IARRAY.
func (t *Type) IsArrayLike() bool {
	return t.kind == Array || t.kind == IArray
}

// Equal implements Alan's structural type-equality relation:
// ARRAY(n1,e1) = ARRAY(n2,e2) iff n1 = n2 and Equal(e1, e2); IARRAY(e1) =
// IARRAY(e2) iff Equal(e1, e2); ARRAY and IARRAY are never equal to each
// other even with identical element types.
func Equal(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Array:
		return a.size == b.size && Equal(a.elem, b.elem)
	case IArray:
		return Equal(a.elem, b.elem)
	default:
		return true
	}
}

// SizeOf computes a type's storage size in bytes. It returns 0 for VOID
// since the core never asks for the size of a void value in a context that
// would distinguish "no size" from "zero size" (no struct layout, no padding
// to compute).
func SizeOf(t *Type) int {
	switch t.kind {
	case Integer:
		return 4
	case Char, Boolean:
		return 1
	case Array:
		return t.size * SizeOf(t.elem)
	case IArray:
		// Pointer size (8 bytes) in the one context (reference parameters)
		// where an IARRAY has a size at all.
		return 8
	default:
		return 0
	}
}
