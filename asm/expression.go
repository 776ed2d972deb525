package asm

import (
	"fmt"
	"strconv"
	"strings"
)

// Expression is an immutable operand or constant expression tree.
//
// All node types are comparable values, so two expressions are equal with
// `==` exactly when they are structurally equal.
type Expression interface {
	fmt.Stringer
	expression()
}

// Value is an integer literal.
type Value int

// Text is a string literal.
type Text string

// Constant is a named reference: a constant, a register or a label.
type Constant string

// Prefix is a leading operator applied to an expression, as in `-x`.
type Prefix struct {
	Op string
	X  Expression
}

// Suffix is a trailing operator with no right hand side, as in `hl+`.
type Suffix struct {
	X  Expression
	Op string
}

// Parens is arithmetic grouping, `(x)`.
type Parens struct {
	X Expression
}

// IndirectParens is a memory reference, `[x]`.
type IndirectParens struct {
	X Expression
}

// BinaryOp is `Left Op Right`.
type BinaryOp struct {
	Left  Expression
	Op    string
	Right Expression
}

func (Value) expression()          {}
func (Text) expression()           {}
func (Constant) expression()       {}
func (Prefix) expression()         {}
func (Suffix) expression()         {}
func (Parens) expression()         {}
func (IndirectParens) expression() {}
func (BinaryOp) expression()       {}

func (v Value) String() string    { return strconv.Itoa(int(v)) }
func (t Text) String() string     { return strconv.Quote(string(t)) }
func (c Constant) String() string { return string(c) }
func (p Prefix) String() string   { return p.Op + p.X.String() }
func (s Suffix) String() string   { return s.X.String() + s.Op }
func (p Parens) String() string   { return "(" + p.X.String() + ")" }

func (p IndirectParens) String() string {
	return "[" + p.X.String() + "]"
}

func (b BinaryOp) String() string {
	return strings.Join([]string{b.Left.String(), b.Op, b.Right.String()}, " ")
}

// Reduce folds literal sub-expressions. The result is semantically equal to
// the input, and Reduce(Reduce(x)) == Reduce(x).
//
// Grouping parentheses are dropped, memory references are kept.
func Reduce(e Expression) Expression {
	switch e := e.(type) {
	case Prefix:
		x := Reduce(e.X)
		if v, ok := x.(Value); ok {
			switch e.Op {
			case "+":
				return v
			case "-":
				return -v
			}
		}
		return Prefix{Op: e.Op, X: x}
	case Suffix:
		return Suffix{X: Reduce(e.X), Op: e.Op}
	case Parens:
		return Reduce(e.X)
	case IndirectParens:
		return IndirectParens{X: Reduce(e.X)}
	case BinaryOp:
		left := Reduce(e.Left)
		right := Reduce(e.Right)
		if value, ok := foldInt(left, e.Op, right); ok {
			return value
		}
		if l, ok := left.(Text); ok && e.Op == "+" {
			if r, ok := right.(Text); ok {
				return l + r
			}
		}
		return BinaryOp{Left: left, Op: e.Op, Right: right}
	}

	return e
}

// foldInt combines two integer literals.
func foldInt(left Expression, op string, right Expression) (value Value, ok bool) {
	l, lok := left.(Value)
	r, rok := right.(Value)
	if !lok || !rok {
		return
	}

	ok = true
	switch op {
	case "+":
		value = l + r
	case "-":
		value = l - r
	case "*":
		value = l * r
	case "/":
		if r == 0 {
			ok = false
			break
		}
		value = l / r
	case "&":
		value = l & r
	case "|":
		value = l | r
	case ">>":
		if r < 0 {
			ok = false
			break
		}
		value = l >> r
	case "<<":
		if r < 0 {
			ok = false
			break
		}
		value = l << r
	default:
		ok = false
	}

	return
}

// MapSubExpressions rebuilds e with fn applied to every leaf (Value, Text
// and Constant). Composite nodes keep their shape.
func MapSubExpressions(e Expression, fn func(Expression) (Expression, error)) (out Expression, err error) {
	switch e := e.(type) {
	case Prefix:
		var x Expression
		if x, err = MapSubExpressions(e.X, fn); err != nil {
			return
		}
		out = Prefix{Op: e.Op, X: x}
	case Suffix:
		var x Expression
		if x, err = MapSubExpressions(e.X, fn); err != nil {
			return
		}
		out = Suffix{X: x, Op: e.Op}
	case Parens:
		var x Expression
		if x, err = MapSubExpressions(e.X, fn); err != nil {
			return
		}
		out = Parens{X: x}
	case IndirectParens:
		var x Expression
		if x, err = MapSubExpressions(e.X, fn); err != nil {
			return
		}
		out = IndirectParens{X: x}
	case BinaryOp:
		var left, right Expression
		if left, err = MapSubExpressions(e.Left, fn); err != nil {
			return
		}
		if right, err = MapSubExpressions(e.Right, fn); err != nil {
			return
		}
		out = BinaryOp{Left: left, Op: e.Op, Right: right}
	default:
		out, err = fn(e)
	}

	return
}
