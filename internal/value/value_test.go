package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromotionOrder(t *testing.T) {
	assert.True(t, TagUint < TagInt)
	assert.True(t, TagInt < TagDecimal)
	assert.True(t, TagDecimal < TagStr)
	assert.True(t, TagStr < TagBool)
	assert.True(t, TagBool < TagStruct)
}

func TestAddPromotesToHigherTag(t *testing.T) {
	got := AddS(Int(2), Decimal(1.5))
	assert.Equal(t, TagDecimal, got.Tag)
	assert.Equal(t, 3.5, got.Decimal)
}

func TestAddConcatenatesWithString(t *testing.T) {
	got := AddS(Str("n="), Int(5))
	assert.Equal(t, TagStr, got.Tag)
	assert.Equal(t, "n=5", got.Str)
}

func TestAddBoolFatal(t *testing.T) {
	assert.Panics(t, func() { AddS(Bool(true), Int(1)) })
}

func TestIntSFromString(t *testing.T) {
	assert.EqualValues(t, 42, Str(" 42 ").IntS())
}

func TestBoolSRejectsNumeric(t *testing.T) {
	assert.Panics(t, func() { Int(1).BoolS() })
}

func TestStructCloneIsIndependent(t *testing.T) {
	s := NewStructInstance("P", []string{"x", "y"})
	s = s.SetByIndex(0, Int(3))
	clone := s.clone()
	clone = clone.SetByIndex(0, Int(99))

	assert.EqualValues(t, 3, s.FieldValues[0].Int)
	assert.EqualValues(t, 99, clone.FieldValues[0].Int)
}

func TestStructSetPathNested(t *testing.T) {
	inner := NewStructInstance("Inner", []string{"z"})
	outer := NewStructInstance("Outer", []string{"inner"})
	outer.FieldValues[0] = FromStruct(inner)

	outer = outer.SetPath([]string{"inner", "z"}, Int(7))

	got := outer.Get("inner").Struct.Get("z")
	require.Equal(t, TagInt, got.Tag)
	assert.EqualValues(t, 7, got.Int)
}

func TestEqualComparesStringsAndBools(t *testing.T) {
	assert.True(t, EqualCompare(Str("a"), Str("a"), false))
	assert.True(t, EqualCompare(Bool(true), Bool(true), false))
	assert.True(t, EqualCompare(Str("a"), Str("b"), true))
}

func TestOrderCompareRejectsStrings(t *testing.T) {
	assert.Panics(t, func() { OrderCompare(Str("a"), Str("b"), OpLess, true, false) })
}

func TestLogicalCoercesToBool(t *testing.T) {
	assert.True(t, LogicalAnd(Bool(true), Str("true")))
	assert.False(t, LogicalOr(Bool(false), Str("false")))
}

func TestCoerceAnyPassesThrough(t *testing.T) {
	v := ClassAny.Coerce(Str("hi"))
	assert.Equal(t, TagStr, v.Tag)
}

func TestCoerceStructRejectsMismatchedName(t *testing.T) {
	s := NewStructInstance("P", []string{"x"})
	assert.Panics(t, func() { ClassStruct("Q").Coerce(FromStruct(s)) })
}
