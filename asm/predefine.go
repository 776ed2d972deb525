package asm

import (
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefine evaluates expr and defines it as the constant name, as if it
// had been written `name = value` in the source. The expression is
// evaluated with starlark and may refer to earlier predefines; it must
// produce an int or a string.
func (asm *Assembler) Predefine(name string, expr string) (err error) {
	key := strings.ToLower(name)
	if _, ok := asm.predefine[key]; ok {
		return ErrConstantRedefined(name)
	}

	value, err := asm.predefineEval(expr)
	if err != nil {
		return
	}

	if asm.predefine == nil {
		asm.predefine = map[string]Expression{}
	}
	asm.predefine[key] = value

	return
}

// predefineEval does the starlark evaluation of a predefine. Earlier
// predefines are bound under every spelling the expression uses for them.
func (asm *Assembler) predefineEval(expr string) (value Expression, err error) {
	thread := starlark.Thread{Name: "predefine"}
	opts := syntax.FileOptions{}
	prog := "rc = " + expr + "\n"

	file, err := opts.Parse("predefine", prog, 0)
	if err != nil {
		err = ErrOperand{Operand: Text(expr), Err: err}
		return
	}

	pred := starlark.StringDict{}
	syntax.Walk(file, func(n syntax.Node) bool {
		id, ok := n.(*syntax.Ident)
		if !ok {
			return true
		}
		switch known := asm.predefine[strings.ToLower(id.Name)].(type) {
		case Value:
			pred[id.Name] = starlark.MakeInt(int(known))
		case Text:
			pred[id.Name] = starlark.String(known)
		}
		return true
	})

	dict, err := starlark.ExecFileOptions(&opts, &thread, "predefine", prog, pred)
	if err != nil {
		err = ErrOperand{Operand: Text(expr), Err: err}
		return
	}

	switch rc := dict["rc"].(type) {
	case starlark.Int:
		v, ok := rc.Int64()
		if !ok {
			err = ErrOperand{Operand: Text(expr), Err: ErrValueRange}
			return
		}
		value = Value(v)
	case starlark.String:
		value = Text(rc.GoString())
	default:
		err = ErrOperand{Operand: Text(expr), Err: ErrPredefine}
	}

	return
}
