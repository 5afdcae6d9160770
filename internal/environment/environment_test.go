package environment

import (
	"testing"

	"github.com/copperlang/copper/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariableShadowingWithinSameScope(t *testing.T) {
	env := New()
	env.AddInferVariable("x", value.Int(1))
	env.AddInferVariable("x", value.Int(2))

	entry := env.GetVariable("x")
	assert.EqualValues(t, 2, entry.Value.Int)
	assert.Len(t, env.Entries, 1)
}

func TestInnerScopeShadowsOuter(t *testing.T) {
	env := New()
	env.AddInferVariable("x", value.Int(1))
	env.CurrentScope = 1
	env.AddInferVariable("x", value.Int(2))

	entry := env.GetVariable("x")
	assert.EqualValues(t, 2, entry.Value.Int)

	env.RemoveFromScope(1)
	env.CurrentScope = 0
	entry = env.GetVariable("x")
	assert.EqualValues(t, 1, entry.Value.Int)
}

func TestAddVariableCoercesByDeclaredType(t *testing.T) {
	env := New()
	env.AddVariable("x", value.ClassInt, value.Str("42"))

	entry := env.GetVariable("x")
	require.Equal(t, value.TagInt, entry.Value.Tag)
	assert.EqualValues(t, 42, entry.Value.Int)
}

func TestAssignMissingVariableIsSilentNoOp(t *testing.T) {
	env := New()
	assert.NotPanics(t, func() { env.AssignVariable("nope", value.Int(1)) })
}

func TestDuplicateFunctionNameIsFatal(t *testing.T) {
	env := New()
	env.AddFunction("f", value.ClassAny, 0, 10)
	assert.Panics(t, func() { env.AddFunction("f", value.ClassAny, 0, 20) })
}

func TestGetStructReturnsFreshTemplate(t *testing.T) {
	env := New()
	env.AddStruct(value.NewStructInstance("P", []string{"x", "y"}))

	tmpl := env.GetStruct("P")
	tmpl = tmpl.SetByIndex(0, value.Int(9))

	again := env.GetStruct("P")
	assert.EqualValues(t, 0, again.FieldValues[0].Int)
	assert.EqualValues(t, 9, tmpl.FieldValues[0].Int)
}
