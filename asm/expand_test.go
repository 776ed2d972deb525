package asm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpand(t *testing.T) {
	assert := assert.New(t)

	ex := Expander{Constants: map[string]Expression{
		"a":     Value(1),
		"b":     BinaryOp{Left: Constant("A"), Op: "+", Right: Value(1)},
		"greet": Text("hi"),
	}}

	out, err := ex.Expand(Constant("A"))
	assert.NoError(err)
	assert.Equal(Value(1), out)

	out, err = ex.Expand(Constant("a"))
	assert.NoError(err)
	assert.Equal(Value(1), out)

	out, err = ex.Expand(IndirectParens{X: Constant("B")})
	assert.NoError(err)
	assert.Equal(IndirectParens{X: BinaryOp{Left: Value(1), Op: "+", Right: Value(1)}}, out)
	assert.Equal(IndirectParens{X: Value(2)}, Reduce(out))

	out, err = ex.Expand(Constant("Label"))
	assert.NoError(err)
	assert.Equal(Constant("label"), out)

	out, err = ex.Expand(BinaryOp{Left: Constant("greet"), Op: "+", Right: Text("!")})
	assert.NoError(err)
	assert.Equal(Text("hi!"), Reduce(out))
}

func TestExpandRecursive(t *testing.T) {
	assert := assert.New(t)

	ex := Expander{Constants: map[string]Expression{
		"a": Constant("b"),
		"b": Constant("a"),
		"c": BinaryOp{Left: Constant("c"), Op: "+", Right: Value(1)},
		"d": BinaryOp{Left: Constant("e"), Op: "+", Right: Constant("e")},
		"e": Value(2),
	}}

	_, err := ex.Expand(Constant("a"))
	assert.True(errors.Is(err, ErrRecursiveConstant))

	_, err = ex.Expand(Constant("B"))
	assert.True(errors.Is(err, ErrRecursiveConstant))

	_, err = ex.Expand(Constant("c"))
	assert.True(errors.Is(err, ErrRecursiveConstant))

	// Repeated use of a constant is not recursion.
	out, err := ex.Expand(Constant("d"))
	assert.NoError(err)
	assert.Equal(Value(4), Reduce(out))
}

func TestQualify(t *testing.T) {
	assert := assert.New(t)

	out, err := Qualify(BinaryOp{Left: Constant(".loop"), Op: "+", Right: Constant("other")}, "Main")
	assert.NoError(err)
	assert.Equal(BinaryOp{Left: Constant("main.loop"), Op: "+", Right: Constant("other")}, out)

	out, err = Qualify(Constant("main.loop"), "other")
	assert.NoError(err)
	assert.Equal(Constant("main.loop"), out)
}
