package isa

import (
	"github.com/ezrec/gbasm/asm"
)

// noOperands checks that ins has no operands.
func noOperands(ins asm.Instruction) (err error) {
	if len(ins.Operands) != 0 {
		err = asm.ErrOperandExtra
	}
	return
}

// oneOperand returns the only operand of ins.
func oneOperand(ins asm.Instruction) (op asm.Expression, err error) {
	switch {
	case len(ins.Operands) < 1:
		err = asm.ErrOperandMissing
	case len(ins.Operands) > 1:
		err = asm.ErrOperandExtra
	default:
		op = ins.Operands[0]
	}
	return
}

// twoOperands returns both operands of a two operand instruction.
func twoOperands(ins asm.Instruction) (left, right asm.Expression, err error) {
	switch {
	case len(ins.Operands) < 2:
		err = asm.ErrOperandMissing
	case len(ins.Operands) > 2:
		err = asm.ErrOperandExtra
	default:
		left, right = ins.Operands[0], ins.Operands[1]
	}
	return
}

// atLeastOneOperand returns the operands of a data definition.
func atLeastOneOperand(ins asm.Instruction) (ops []asm.Expression, err error) {
	if len(ins.Operands) == 0 {
		err = asm.ErrOperandMissing
		return
	}
	return ins.Operands, nil
}

// name returns the identifier of a bare Constant operand.
func name(op asm.Expression) (id string, ok bool) {
	c, ok := op.(asm.Constant)
	return string(c), ok
}

// indirect returns the name inside a `[name]` operand.
func indirect(op asm.Expression) (id string, ok bool) {
	ip, ok := op.(asm.IndirectParens)
	if !ok {
		return
	}
	return name(ip.X)
}

// deferrable is true for operands whose value the linker can compute.
func deferrable(op asm.Expression) bool {
	switch op.(type) {
	case asm.Text, asm.IndirectParens:
		return false
	}
	return true
}

// uint8Opcode encodes an unsigned byte operand. Literals are range checked
// now, anything else is deferred to the linker.
func uint8Opcode(op asm.Expression) (code asm.Opcode, err error) {
	if v, ok := op.(asm.Value); ok {
		if v < 0 || v > 0xff {
			err = asm.ErrOperand{Operand: op, Err: asm.ErrValueRange}
			return
		}
		return asm.Byte(v), nil
	}

	if !deferrable(op) {
		err = asm.ErrOperand{Operand: op, Err: asm.ErrOperandInvalid}
		return
	}

	return asm.Deferred{Expr: op, Width: asm.WIDTH_UINT8}, nil
}

// uint16Opcode encodes an unsigned word operand.
func uint16Opcode(op asm.Expression) (code asm.Opcode, err error) {
	if v, ok := op.(asm.Value); ok {
		if v < 0 || v > 0xffff {
			err = asm.ErrOperand{Operand: op, Err: asm.ErrValueRange}
			return
		}
		return asm.Word(v), nil
	}

	if !deferrable(op) {
		err = asm.ErrOperand{Operand: op, Err: asm.ErrOperandInvalid}
		return
	}

	return asm.Deferred{Expr: op, Width: asm.WIDTH_UINT16}, nil
}

// int8Byte encodes a literal signed byte.
func int8Byte(op asm.Expression, v asm.Value) (code asm.Opcode, err error) {
	if v < -128 || v > 127 {
		err = asm.ErrOperand{Operand: op, Err: asm.ErrValueRange}
		return
	}
	return asm.Byte(uint8(int8(v))), nil
}

// relativeOpcode encodes a branch target. A literal is a displacement and
// is encoded now; a label is deferred as a relative reference.
func relativeOpcode(op asm.Expression) (code asm.Opcode, err error) {
	if v, ok := op.(asm.Value); ok {
		return int8Byte(op, v)
	}

	if !deferrable(op) {
		err = asm.ErrOperand{Operand: op, Err: asm.ErrOperandInvalid}
		return
	}

	return asm.Deferred{Expr: op, Width: asm.WIDTH_INT8_RELATIVE}, nil
}

// defineBytes implements `db`: bytes and ASCII strings.
func defineBytes(ins asm.Instruction) (codes []asm.Opcode, err error) {
	ops, err := atLeastOneOperand(ins)
	if err != nil {
		return
	}

	for _, op := range ops {
		if text, ok := op.(asm.Text); ok {
			for n := range len(text) {
				if text[n] >= 0x80 {
					err = asm.ErrOperand{Operand: op, Err: asm.ErrNotASCII}
					return
				}
				codes = append(codes, asm.Byte(text[n]))
			}
			continue
		}

		var code asm.Opcode
		if code, err = uint8Opcode(op); err != nil {
			return
		}
		codes = append(codes, code)
	}

	return
}

// defineWords implements `dw`: little endian words.
func defineWords(ins asm.Instruction) (codes []asm.Opcode, err error) {
	ops, err := atLeastOneOperand(ins)
	if err != nil {
		return
	}

	for _, op := range ops {
		var code asm.Opcode
		if code, err = uint16Opcode(op); err != nil {
			return
		}
		codes = append(codes, code)
	}

	return
}

// defineSpace implements `ds count[, fill]`.
func defineSpace(ins asm.Instruction) (codes []asm.Opcode, err error) {
	var count, fill asm.Expression
	switch len(ins.Operands) {
	case 1:
		count, fill = ins.Operands[0], asm.Value(0)
	case 2:
		count, fill = ins.Operands[0], ins.Operands[1]
	case 0:
		err = asm.ErrOperandMissing
		return
	default:
		err = asm.ErrOperandExtra
		return
	}

	n, ok := count.(asm.Value)
	if !ok || n < 0 || n > 0x10000 {
		err = asm.ErrOperand{Operand: count, Err: asm.ErrValueRange}
		return
	}

	code, err := uint8Opcode(fill)
	if err != nil {
		return
	}

	codes = make([]asm.Opcode, int(n))
	for i := range codes {
		codes[i] = code
	}

	return
}
