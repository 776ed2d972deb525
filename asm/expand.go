package asm

import (
	"slices"
	"strings"
)

// Expander substitutes named constants into expressions.
type Expander struct {
	Constants map[string]Expression // Constant table, keyed by lower case name.
}

// Expand lower cases every Constant leaf of e, then replaces each one found
// in the constant table by its (recursively expanded) definition. Unknown
// names are left in place; they may be labels.
func (ex Expander) Expand(e Expression) (Expression, error) {
	return ex.expand(e, nil)
}

func (ex Expander) expand(e Expression, stack []string) (out Expression, err error) {
	lowered, err := MapSubExpressions(e, func(leaf Expression) (Expression, error) {
		if c, ok := leaf.(Constant); ok {
			return Constant(strings.ToLower(string(c))), nil
		}
		return leaf, nil
	})
	if err != nil {
		return
	}

	out, err = MapSubExpressions(lowered, func(leaf Expression) (Expression, error) {
		c, ok := leaf.(Constant)
		if !ok {
			return leaf, nil
		}
		name := string(c)
		value, ok := ex.Constants[name]
		if !ok {
			return leaf, nil
		}
		if slices.Contains(stack, name) {
			return nil, ErrRecursiveConstant
		}
		return ex.expand(value, append(slices.Clip(stack), name))
	})

	return
}

// Qualify rewrites local label references (`.name`) in e to their fully
// qualified `scope.name` form.
func Qualify(e Expression, scope string) (Expression, error) {
	return MapSubExpressions(e, func(leaf Expression) (Expression, error) {
		c, ok := leaf.(Constant)
		if ok && strings.HasPrefix(string(c), ".") {
			return Constant(strings.ToLower(scope) + string(c)), nil
		}
		return leaf, nil
	})
}
