package isa

import (
	"github.com/ezrec/gbasm/asm"
)

// Intel8080 encodes the Intel 8080 instruction set, in Intel mnemonics.
type Intel8080 struct{}

var _ asm.InstructionSet = Intel8080{}

var i8080Reg = map[string]uint8{
	"b": 0,
	"c": 1,
	"d": 2,
	"e": 3,
	"h": 4,
	"l": 5,
	"m": 6,
	"a": 7,
}

// Register pairs, by the name of their high register.
var i8080Pair = map[string]uint8{
	"b":  0,
	"d":  1,
	"h":  2,
	"sp": 3,
}

var i8080StackPair = map[string]uint8{
	"b":   0,
	"d":   1,
	"h":   2,
	"psw": 3,
}

func i8080Register(op asm.Expression) (reg uint8, err error) {
	id, _ := name(op)
	reg, ok := i8080Reg[id]
	if !ok {
		err = asm.ErrOperand{Operand: op, Err: asm.ErrRegisterInvalid}
	}
	return
}

func i8080IsRegister(op asm.Expression) bool {
	id, ok := name(op)
	if !ok {
		return false
	}
	_, r8 := i8080Reg[id]
	_, rp := i8080Pair[id]
	return r8 || rp || id == "psw"
}

func i8080Special(code uint8) encoder {
	return gbSpecial(code)
}

// i8080Pairs encodes an opcode taking one register pair.
func i8080Pairs(base uint8, pairs map[string]uint8) encoder {
	return func(ins asm.Instruction) (codes []asm.Opcode, err error) {
		op, err := oneOperand(ins)
		if err != nil {
			return
		}
		id, _ := name(op)
		rp, ok := pairs[id]
		if !ok {
			err = asm.ErrOperand{Operand: op, Err: asm.ErrRegisterInvalid}
			return
		}
		return bytes(base | rp<<4), nil
	}
}

// i8080Reg8 encodes an opcode taking one register, in the field at shift.
func i8080Reg8(base uint8, shift uint8) encoder {
	return func(ins asm.Instruction) (codes []asm.Opcode, err error) {
		op, err := oneOperand(ins)
		if err != nil {
			return
		}
		reg, err := i8080Register(op)
		if err != nil {
			return
		}
		return bytes(base | reg<<shift), nil
	}
}

// i8080Immediate8 encodes an opcode followed by an 8 bit immediate.
func i8080Immediate8(opcode uint8) encoder {
	return func(ins asm.Instruction) (codes []asm.Opcode, err error) {
		op, err := oneOperand(ins)
		if err != nil {
			return
		}
		if i8080IsRegister(op) {
			err = asm.ErrOperand{Operand: op, Err: asm.ErrOperandInvalid}
			return
		}
		imm, err := uint8Opcode(op)
		if err != nil {
			return
		}
		return []asm.Opcode{asm.Byte(opcode), imm}, nil
	}
}

// i8080Address encodes an opcode followed by a 16 bit address.
func i8080Address(opcode uint8) encoder {
	return func(ins asm.Instruction) (codes []asm.Opcode, err error) {
		op, err := oneOperand(ins)
		if err != nil {
			return
		}
		if i8080IsRegister(op) {
			err = asm.ErrOperand{Operand: op, Err: asm.ErrOperandInvalid}
			return
		}
		addr, err := uint16Opcode(op)
		if err != nil {
			return
		}
		return []asm.Opcode{asm.Byte(opcode), addr}, nil
	}
}

func i8080Lxi(ins asm.Instruction) (codes []asm.Opcode, err error) {
	dst, value, err := twoOperands(ins)
	if err != nil {
		return
	}
	id, _ := name(dst)
	rp, ok := i8080Pair[id]
	if !ok {
		err = asm.ErrOperand{Operand: dst, Err: asm.ErrRegisterInvalid}
		return
	}
	if i8080IsRegister(value) {
		err = asm.ErrOperand{Operand: value, Err: asm.ErrOperandInvalid}
		return
	}
	imm, err := uint16Opcode(value)
	if err != nil {
		return
	}
	return []asm.Opcode{asm.Byte(0x01 | rp<<4), imm}, nil
}

func i8080Mvi(ins asm.Instruction) (codes []asm.Opcode, err error) {
	dst, value, err := twoOperands(ins)
	if err != nil {
		return
	}
	reg, err := i8080Register(dst)
	if err != nil {
		return
	}
	if i8080IsRegister(value) {
		err = asm.ErrOperand{Operand: value, Err: asm.ErrOperandInvalid}
		return
	}
	imm, err := uint8Opcode(value)
	if err != nil {
		return
	}
	return []asm.Opcode{asm.Byte(0x06 | reg<<3), imm}, nil
}

func i8080Mov(ins asm.Instruction) (codes []asm.Opcode, err error) {
	dst, src, err := twoOperands(ins)
	if err != nil {
		return
	}
	to, err := i8080Register(dst)
	if err != nil {
		return
	}
	from, err := i8080Register(src)
	if err != nil {
		return
	}
	opcode := 0x40 | to<<3 | from
	if opcode == 0x76 {
		// That encoding is hlt.
		err = asm.ErrOperand{Operand: src, Err: asm.ErrOperandInvalid}
		return
	}
	return bytes(opcode), nil
}

func i8080Rst(ins asm.Instruction) (codes []asm.Opcode, err error) {
	op, err := oneOperand(ins)
	if err != nil {
		return
	}
	v, ok := op.(asm.Value)
	if !ok {
		err = asm.ErrOperand{Operand: op, Err: asm.ErrOperandInvalid}
		return
	}
	if v < 0 || v > 7 {
		err = asm.ErrOperand{Operand: op, Err: asm.ErrValueRange}
		return
	}
	return bytes(0xc7 | uint8(v)<<3), nil
}

// Conditions, in opcode field order.
var i8080Cond = []string{"nz", "z", "nc", "c", "po", "pe", "p", "m"}

var intel8080Mnemonic = map[string]encoder{
	"nop":  i8080Special(0x00),
	"hlt":  i8080Special(0x76),
	"rlc":  i8080Special(0x07),
	"rrc":  i8080Special(0x0f),
	"ral":  i8080Special(0x17),
	"rar":  i8080Special(0x1f),
	"daa":  i8080Special(0x27),
	"cma":  i8080Special(0x2f),
	"stc":  i8080Special(0x37),
	"cmc":  i8080Special(0x3f),
	"ret":  i8080Special(0xc9),
	"pchl": i8080Special(0xe9),
	"sphl": i8080Special(0xf9),
	"xthl": i8080Special(0xe3),
	"xchg": i8080Special(0xeb),
	"di":   i8080Special(0xf3),
	"ei":   i8080Special(0xfb),

	"lxi":  i8080Lxi,
	"mvi":  i8080Mvi,
	"mov":  i8080Mov,
	"rst":  i8080Rst,
	"stax": i8080Pairs(0x02, map[string]uint8{"b": 0, "d": 1}),
	"ldax": i8080Pairs(0x0a, map[string]uint8{"b": 0, "d": 1}),
	"inx":  i8080Pairs(0x03, i8080Pair),
	"dcx":  i8080Pairs(0x0b, i8080Pair),
	"dad":  i8080Pairs(0x09, i8080Pair),
	"push": i8080Pairs(0xc5, i8080StackPair),
	"pop":  i8080Pairs(0xc1, i8080StackPair),

	"inr": i8080Reg8(0x04, 3),
	"dcr": i8080Reg8(0x05, 3),
	"add": i8080Reg8(0x80, 0),
	"adc": i8080Reg8(0x88, 0),
	"sub": i8080Reg8(0x90, 0),
	"sbb": i8080Reg8(0x98, 0),
	"ana": i8080Reg8(0xa0, 0),
	"xra": i8080Reg8(0xa8, 0),
	"ora": i8080Reg8(0xb0, 0),
	"cmp": i8080Reg8(0xb8, 0),

	"adi": i8080Immediate8(0xc6),
	"aci": i8080Immediate8(0xce),
	"sui": i8080Immediate8(0xd6),
	"sbi": i8080Immediate8(0xde),
	"ani": i8080Immediate8(0xe6),
	"xri": i8080Immediate8(0xee),
	"ori": i8080Immediate8(0xf6),
	"cpi": i8080Immediate8(0xfe),
	"in":  i8080Immediate8(0xdb),
	"out": i8080Immediate8(0xd3),

	"shld": i8080Address(0x22),
	"lhld": i8080Address(0x2a),
	"sta":  i8080Address(0x32),
	"lda":  i8080Address(0x3a),
	"jmp":  i8080Address(0xc3),
	"call": i8080Address(0xcd),

	"db": defineBytes,
	"dw": defineWords,
	"ds": defineSpace,
}

func init() {
	// Conditional returns, jumps and calls.
	for cc, cond := range i8080Cond {
		field := uint8(cc) << 3
		intel8080Mnemonic["r"+cond] = i8080Special(0xc0 | field)
		intel8080Mnemonic["j"+cond] = i8080Address(0xc2 | field)
		intel8080Mnemonic["c"+cond] = i8080Address(0xc4 | field)
	}
}

// Encode implements asm.InstructionSet.
func (Intel8080) Encode(ins asm.Instruction) (codes []asm.Opcode, err error) {
	enc, ok := intel8080Mnemonic[ins.Mnemonic]
	if !ok {
		err = asm.ErrMnemonicUnknown(ins.Mnemonic)
		return
	}
	return enc(ins)
}
