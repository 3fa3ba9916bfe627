package types

import "testing"

func TestEqualScalars(t *testing.T) {
	cases := []struct {
		a, b  *Type
		equal bool
	}{
		{IntegerType, IntegerType, true},
		{IntegerType, CharType, false},
		{BooleanType, BooleanType, true},
		{VoidType, VoidType, true},
	}
	for _, c := range cases {
		if got := Equal(c.a, c.b); got != c.equal {
			t.Errorf("Equal(%v, %v) = %v, want %v", c.a, c.b, got, c.equal)
		}
	}
}

func TestEqualArrays(t *testing.T) {
	a1 := NewArray(3, IntegerType)
	a2 := NewArray(3, IntegerType)
	a3 := NewArray(4, IntegerType)
	a4 := NewArray(3, CharType)

	if !Equal(a1, a2) {
		t.Error("identical ARRAY(3,int) types should be equal")
	}
	if Equal(a1, a3) {
		t.Error("ARRAY(3,int) and ARRAY(4,int) should not be equal")
	}
	if Equal(a1, a4) {
		t.Error("ARRAY(3,int) and ARRAY(3,char) should not be equal")
	}
}

func TestArrayIArrayNeverEqual(t *testing.T) {
	arr := NewArray(3, CharType)
	iarr := NewIArray(CharType)
	if Equal(arr, iarr) {
		t.Error("ARRAY and IARRAY with identical element types must not compare equal")
	}
}

func TestEqualIsReflexiveSymmetricTransitive(t *testing.T) {
	x := NewArray(5, IntegerType)
	y := NewArray(5, IntegerType)
	z := NewArray(5, IntegerType)

	if !Equal(x, x) {
		t.Error("Equal must be reflexive")
	}
	if Equal(x, y) != Equal(y, x) {
		t.Error("Equal must be symmetric")
	}
	if Equal(x, y) && Equal(y, z) && !Equal(x, z) {
		t.Error("Equal must be transitive")
	}
}

func TestSizeOf(t *testing.T) {
	cases := []struct {
		typ  *Type
		size int
	}{
		{IntegerType, 4},
		{CharType, 1},
		{BooleanType, 1},
		{VoidType, 0},
		{NewArray(10, IntegerType), 40},
		{NewArray(3, IntegerType), 12},
		{NewIArray(CharType), 8},
	}
	for _, c := range cases {
		if got := SizeOf(c.typ); got != c.size {
			t.Errorf("SizeOf(%v) = %d, want %d", c.typ, got, c.size)
		}
	}
}

func TestIsArrayLikeAndIsScalar(t *testing.T) {
	if !NewArray(2, IntegerType).IsArrayLike() {
		t.Error("ARRAY should be array-like")
	}
	if !NewIArray(CharType).IsArrayLike() {
		t.Error("IARRAY should be array-like")
	}
	if IntegerType.IsArrayLike() {
		t.Error("INTEGER should not be array-like")
	}
	if !IntegerType.IsScalar() || !CharType.IsScalar() || !BooleanType.IsScalar() {
		t.Error("INTEGER, CHAR and BOOLEAN should all be scalar")
	}
	if NewArray(2, IntegerType).IsScalar() {
		t.Error("ARRAY should not be scalar")
	}
}
