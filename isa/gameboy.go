package isa

import (
	"github.com/ezrec/gbasm/asm"
)

// Gameboy encodes the Sharp LR35902 instruction set of the Game Boy.
type Gameboy struct{}

var _ asm.InstructionSet = Gameboy{}

// encoder encodes a single mnemonic.
type encoder func(ins asm.Instruction) ([]asm.Opcode, error)

// bytes wraps fixed opcode bytes.
func bytes(b ...uint8) (codes []asm.Opcode) {
	codes = make([]asm.Opcode, len(b))
	for n, v := range b {
		codes[n] = asm.Byte(v)
	}
	return
}

// Register field encodings.
var gbReg8 = map[string]uint8{
	"b": 0,
	"c": 1,
	"d": 2,
	"e": 3,
	"h": 4,
	"l": 5,
	"a": 7,
}

const gbRegHLIndirect = 6

var gbReg16 = map[string]uint8{
	"bc": 0,
	"de": 1,
	"hl": 2,
	"sp": 3,
}

var gbRegStack = map[string]uint8{
	"bc": 0,
	"de": 1,
	"hl": 2,
	"af": 3,
}

var gbCond = map[string]uint8{
	"nz": 0,
	"z":  1,
	"nc": 2,
	"c":  3,
}

// gbIsRegister is true for any register name.
func gbIsRegister(op asm.Expression) bool {
	id, ok := name(op)
	if !ok {
		return false
	}
	_, r8 := gbReg8[id]
	_, r16 := gbReg16[id]
	return r8 || r16 || id == "af"
}

// gbRegister8 decodes `r` or `[hl]`.
func gbRegister8(op asm.Expression) (reg uint8, ok bool) {
	if id, isName := name(op); isName {
		reg, ok = gbReg8[id]
		return
	}
	if id, isIndirect := indirect(op); isIndirect && id == "hl" {
		return gbRegHLIndirect, true
	}
	return
}

func gbCondition(op asm.Expression) (cc uint8, err error) {
	id, _ := name(op)
	cc, ok := gbCond[id]
	if !ok {
		err = asm.ErrOperand{Operand: op, Err: asm.ErrConditionInvalid}
	}
	return
}

// gbHighPageC matches `[0xff00 + c]` and `[c]`.
func gbHighPageC(op asm.Expression) bool {
	ip, ok := op.(asm.IndirectParens)
	if !ok {
		return false
	}
	if id, ok := name(ip.X); ok {
		return id == "c"
	}
	bin, ok := ip.X.(asm.BinaryOp)
	if !ok || bin.Op != "+" {
		return false
	}
	id, _ := name(bin.Right)
	return bin.Left == asm.Value(0xff00) && id == "c"
}

// gbHighPageByte encodes the low byte of a `$ff00` page address.
func gbHighPageByte(op asm.Expression) (code asm.Opcode, err error) {
	if v, ok := op.(asm.Value); ok {
		switch {
		case v >= 0xff00 && v <= 0xffff:
			return asm.Byte(v & 0xff), nil
		case v >= 0 && v <= 0xff:
			return asm.Byte(v), nil
		}
		err = asm.ErrOperand{Operand: op, Err: asm.ErrValueRange}
		return
	}
	return uint8Opcode(asm.BinaryOp{Left: op, Op: "&", Right: asm.Value(0xff)})
}

func gbSpecial(code ...uint8) encoder {
	return func(ins asm.Instruction) (codes []asm.Opcode, err error) {
		if err = noOperands(ins); err != nil {
			return
		}
		return bytes(code...), nil
	}
}

// gbALU encodes the eight accumulator operations, as `op x` or `op a, x`.
func gbALU(base uint8, immediate uint8) encoder {
	return func(ins asm.Instruction) (codes []asm.Opcode, err error) {
		var op asm.Expression
		if len(ins.Operands) == 2 {
			var dst asm.Expression
			if dst, op, err = twoOperands(ins); err != nil {
				return
			}
			if id, _ := name(dst); id != "a" {
				err = asm.ErrOperand{Operand: dst, Err: asm.ErrRegisterInvalid}
				return
			}
		} else if op, err = oneOperand(ins); err != nil {
			return
		}

		if reg, ok := gbRegister8(op); ok {
			return bytes(base | reg), nil
		}
		if gbIsRegister(op) {
			err = asm.ErrOperand{Operand: op, Err: asm.ErrRegisterInvalid}
			return
		}

		imm, err := uint8Opcode(op)
		if err != nil {
			return
		}
		return []asm.Opcode{asm.Byte(immediate), imm}, nil
	}
}

func gbAdd(ins asm.Instruction) (codes []asm.Opcode, err error) {
	if len(ins.Operands) != 2 {
		return gbALU(0x80, 0xc6)(ins)
	}

	dst, src, err := twoOperands(ins)
	if err != nil {
		return
	}

	switch id, _ := name(dst); id {
	case "a":
		return gbALU(0x80, 0xc6)(ins)
	case "hl":
		id, _ := name(src)
		rr, ok := gbReg16[id]
		if !ok {
			err = asm.ErrOperand{Operand: src, Err: asm.ErrRegisterInvalid}
			return
		}
		return bytes(0x09 | rr<<4), nil
	case "sp":
		v, ok := src.(asm.Value)
		if !ok {
			err = asm.ErrOperand{Operand: src, Err: asm.ErrOperandInvalid}
			return
		}
		var n asm.Opcode
		if n, err = int8Byte(src, v); err != nil {
			return
		}
		return []asm.Opcode{asm.Byte(0xe8), n}, nil
	}

	err = asm.ErrOperand{Operand: dst, Err: asm.ErrOperandInvalid}
	return
}

// gbIncDec encodes inc and dec, for 8 and 16 bit registers.
func gbIncDec(base8 uint8, base16 uint8) encoder {
	return func(ins asm.Instruction) (codes []asm.Opcode, err error) {
		op, err := oneOperand(ins)
		if err != nil {
			return
		}
		if reg, ok := gbRegister8(op); ok {
			return bytes(base8 | reg<<3), nil
		}
		id, _ := name(op)
		if rr, ok := gbReg16[id]; ok {
			return bytes(base16 | rr<<4), nil
		}
		err = asm.ErrOperand{Operand: op, Err: asm.ErrRegisterInvalid}
		return
	}
}

// gbCB encodes the CB prefixed rotate and shift operations.
func gbCB(base uint8) encoder {
	return func(ins asm.Instruction) (codes []asm.Opcode, err error) {
		op, err := oneOperand(ins)
		if err != nil {
			return
		}
		reg, ok := gbRegister8(op)
		if !ok {
			err = asm.ErrOperand{Operand: op, Err: asm.ErrRegisterInvalid}
			return
		}
		return bytes(0xcb, base|reg), nil
	}
}

// gbBit encodes bit, res and set.
func gbBit(base uint8) encoder {
	return func(ins asm.Instruction) (codes []asm.Opcode, err error) {
		bit, op, err := twoOperands(ins)
		if err != nil {
			return
		}
		reg, ok := gbRegister8(op)
		if !ok {
			err = asm.ErrOperand{Operand: op, Err: asm.ErrRegisterInvalid}
			return
		}
		n, ok := bit.(asm.Value)
		if !ok {
			err = asm.ErrOperand{Operand: bit, Err: asm.ErrOperandInvalid}
			return
		}
		if n < 0 || n > 7 {
			err = asm.ErrOperand{Operand: bit, Err: asm.ErrValueRange}
			return
		}
		return bytes(0xcb, base|uint8(n)<<3|reg), nil
	}
}

// gbJump encodes jp and call.
func gbJump(direct uint8, conditional uint8, call bool) encoder {
	return func(ins asm.Instruction) (codes []asm.Opcode, err error) {
		var target asm.Expression
		opcode := direct

		if len(ins.Operands) == 2 {
			var cond asm.Expression
			if cond, target, err = twoOperands(ins); err != nil {
				return
			}
			var cc uint8
			if cc, err = gbCondition(cond); err != nil {
				return
			}
			opcode = conditional | cc<<3
		} else {
			if target, err = oneOperand(ins); err != nil {
				return
			}
			id, isName := name(target)
			if !isName {
				id, _ = indirect(target)
			}
			if id == "hl" && !call {
				return bytes(0xe9), nil
			}
		}

		if gbIsRegister(target) {
			err = asm.ErrOperand{Operand: target, Err: asm.ErrOperandInvalid}
			return
		}

		addr, err := uint16Opcode(target)
		if err != nil {
			return
		}
		return []asm.Opcode{asm.Byte(opcode), addr}, nil
	}
}

func gbJr(ins asm.Instruction) (codes []asm.Opcode, err error) {
	var target asm.Expression
	opcode := uint8(0x18)

	if len(ins.Operands) == 2 {
		var cond asm.Expression
		if cond, target, err = twoOperands(ins); err != nil {
			return
		}
		var cc uint8
		if cc, err = gbCondition(cond); err != nil {
			return
		}
		opcode = 0x20 | cc<<3
	} else if target, err = oneOperand(ins); err != nil {
		return
	}

	if gbIsRegister(target) {
		err = asm.ErrOperand{Operand: target, Err: asm.ErrOperandInvalid}
		return
	}

	offset, err := relativeOpcode(target)
	if err != nil {
		return
	}
	return []asm.Opcode{asm.Byte(opcode), offset}, nil
}

func gbRet(ins asm.Instruction) (codes []asm.Opcode, err error) {
	if len(ins.Operands) == 0 {
		return bytes(0xc9), nil
	}
	cond, err := oneOperand(ins)
	if err != nil {
		return
	}
	cc, err := gbCondition(cond)
	if err != nil {
		return
	}
	return bytes(0xc0 | cc<<3), nil
}

func gbRst(ins asm.Instruction) (codes []asm.Opcode, err error) {
	op, err := oneOperand(ins)
	if err != nil {
		return
	}
	v, ok := op.(asm.Value)
	if !ok {
		err = asm.ErrOperand{Operand: op, Err: asm.ErrOperandInvalid}
		return
	}
	if v < 0 || v > 0x38 || v&0x7 != 0 {
		err = asm.ErrOperand{Operand: op, Err: asm.ErrValueRange}
		return
	}
	return bytes(0xc7 | uint8(v)), nil
}

// gbStack encodes push and pop.
func gbStack(base uint8) encoder {
	return func(ins asm.Instruction) (codes []asm.Opcode, err error) {
		op, err := oneOperand(ins)
		if err != nil {
			return
		}
		id, _ := name(op)
		rr, ok := gbRegStack[id]
		if !ok {
			err = asm.ErrOperand{Operand: op, Err: asm.ErrRegisterInvalid}
			return
		}
		return bytes(base | rr<<4), nil
	}
}

// gbLd encodes every form of ld.
func gbLd(ins asm.Instruction) (codes []asm.Opcode, err error) {
	to, from, err := twoOperands(ins)
	if err != nil {
		return
	}

	toName, _ := name(to)
	fromName, _ := name(from)
	toIndirect, _ := indirect(to)
	fromIndirect, _ := indirect(from)
	_, fromIsIndirect := from.(asm.IndirectParens)

	// Accumulator indirect forms.
	switch {
	case toName == "a" && fromIndirect == "bc":
		return bytes(0x0a), nil
	case toName == "a" && fromIndirect == "de":
		return bytes(0x1a), nil
	case toIndirect == "bc" && fromName == "a":
		return bytes(0x02), nil
	case toIndirect == "de" && fromName == "a":
		return bytes(0x12), nil
	case toName == "a" && gbHighPageC(from):
		return bytes(0xf2), nil
	case gbHighPageC(to) && fromName == "a":
		return bytes(0xe2), nil
	case toName == "a" && (fromIndirect == "hli" || isPostIncrement(from, "+")):
		return bytes(0x2a), nil
	case toName == "a" && (fromIndirect == "hld" || isPostIncrement(from, "-")):
		return bytes(0x3a), nil
	case (toIndirect == "hli" || isPostIncrement(to, "+")) && fromName == "a":
		return bytes(0x22), nil
	case (toIndirect == "hld" || isPostIncrement(to, "-")) && fromName == "a":
		return bytes(0x32), nil
	}

	// Stack pointer forms.
	switch {
	case toName == "sp" && fromName == "hl":
		return bytes(0xf9), nil
	case toName == "hl" && fromName == "sp":
		return bytes(0xf8, 0x00), nil
	case toName == "hl":
		if bin, ok := from.(asm.BinaryOp); ok {
			if id, _ := name(bin.Left); id == "sp" {
				return gbLdHLSP(bin)
			}
		}
	case fromName == "sp":
		target := to
		if ip, ok := to.(asm.IndirectParens); ok {
			target = ip.X
		} else if _, ok := to.(asm.Value); !ok {
			break
		}
		var addr asm.Opcode
		if addr, err = uint16Opcode(target); err != nil {
			return
		}
		return []asm.Opcode{asm.Byte(0x08), addr}, nil
	}

	// Register to register, or immediate to register.
	if toReg, ok := gbRegister8(to); ok {
		if fromReg, ok := gbRegister8(from); ok {
			if toReg == gbRegHLIndirect && fromReg == gbRegHLIndirect {
				err = asm.ErrOperand{Operand: from, Err: asm.ErrOperandInvalid}
				return
			}
			return bytes(0x40 | toReg<<3 | fromReg), nil
		}
		if !fromIsIndirect && !gbIsRegister(from) {
			var imm asm.Opcode
			if imm, err = uint8Opcode(from); err != nil {
				return
			}
			return []asm.Opcode{asm.Byte(0x06 | toReg<<3), imm}, nil
		}
	}

	// 16 bit immediate loads.
	if rr, ok := gbReg16[toName]; ok && !fromIsIndirect && !gbIsRegister(from) {
		var imm asm.Opcode
		if imm, err = uint16Opcode(from); err != nil {
			return
		}
		return []asm.Opcode{asm.Byte(0x01 | rr<<4), imm}, nil
	}

	// Accumulator to and from memory.
	if ip, ok := from.(asm.IndirectParens); ok && toName == "a" {
		return gbLdMemory(0xf0, 0xfa, ip)
	}
	if ip, ok := to.(asm.IndirectParens); ok && fromName == "a" {
		return gbLdMemory(0xe0, 0xea, ip)
	}

	err = asm.ErrOperandInvalid
	return
}

// isPostIncrement matches `[hl+]` and `[hl-]`.
func isPostIncrement(op asm.Expression, dir string) bool {
	ip, ok := op.(asm.IndirectParens)
	if !ok {
		return false
	}
	suffix, ok := ip.X.(asm.Suffix)
	if !ok || suffix.Op != dir {
		return false
	}
	id, _ := name(suffix.X)
	return id == "hl"
}

// gbLdHLSP encodes `ld hl, sp + n` and `ld hl, sp - n`.
func gbLdHLSP(bin asm.BinaryOp) (codes []asm.Opcode, err error) {
	v, ok := bin.Right.(asm.Value)
	if !ok || (bin.Op != "+" && bin.Op != "-") {
		err = asm.ErrOperand{Operand: bin, Err: asm.ErrOperandInvalid}
		return
	}
	if bin.Op == "-" {
		v = -v
	}
	n, err := int8Byte(bin, v)
	if err != nil {
		return
	}
	return []asm.Opcode{asm.Byte(0xf8), n}, nil
}

// gbLdMemory encodes an accumulator load or store through `[addr]`,
// choosing the short high page form for literal addresses at $ff00 and up.
func gbLdMemory(high uint8, absolute uint8, ip asm.IndirectParens) (codes []asm.Opcode, err error) {
	if gbIsRegister(ip.X) {
		err = asm.ErrOperand{Operand: ip, Err: asm.ErrRegisterInvalid}
		return
	}

	if v, ok := ip.X.(asm.Value); ok && v >= 0xff00 {
		var n asm.Opcode
		if n, err = gbHighPageByte(ip.X); err != nil {
			return
		}
		return []asm.Opcode{asm.Byte(high), n}, nil
	}

	addr, err := uint16Opcode(ip.X)
	if err != nil {
		return
	}
	return []asm.Opcode{asm.Byte(absolute), addr}, nil
}

// gbLdh encodes the high page load forms.
func gbLdh(ins asm.Instruction) (codes []asm.Opcode, err error) {
	to, from, err := twoOperands(ins)
	if err != nil {
		return
	}

	toName, _ := name(to)
	fromName, _ := name(from)

	var opcode uint8
	var mem asm.Expression
	switch {
	case toName == "a" && gbHighPageC(from):
		return bytes(0xf2), nil
	case gbHighPageC(to) && fromName == "a":
		return bytes(0xe2), nil
	case toName == "a":
		opcode, mem = 0xf0, from
	case fromName == "a":
		opcode, mem = 0xe0, to
	default:
		err = asm.ErrOperandInvalid
		return
	}

	ip, ok := mem.(asm.IndirectParens)
	if !ok || gbIsRegister(ip.X) {
		err = asm.ErrOperand{Operand: mem, Err: asm.ErrOperandInvalid}
		return
	}

	n, err := gbHighPageByte(ip.X)
	if err != nil {
		return
	}
	return []asm.Opcode{asm.Byte(opcode), n}, nil
}

var gameboyMnemonic = map[string]encoder{
	"xor": gbALU(0xa8, 0xee),
	"or":  gbALU(0xb0, 0xf6),
	"and": gbALU(0xa0, 0xe6),
	"cp":  gbALU(0xb8, 0xfe),
	"add": gbAdd,
	"adc": gbALU(0x88, 0xce),
	"sub": gbALU(0x90, 0xd6),
	"sbc": gbALU(0x98, 0xde),

	"inc": gbIncDec(0x04, 0x03),
	"dec": gbIncDec(0x05, 0x0b),

	"ld":  gbLd,
	"ldh": gbLdh,

	"jp":   gbJump(0xc3, 0xc2, false),
	"call": gbJump(0xcd, 0xc4, true),
	"jr":   gbJr,
	"ret":  gbRet,
	"rst":  gbRst,

	"push": gbStack(0xc5),
	"pop":  gbStack(0xc1),

	"bit": gbBit(0x40),
	"res": gbBit(0x80),
	"set": gbBit(0xc0),

	"rlc":  gbCB(0x00),
	"rrc":  gbCB(0x08),
	"rl":   gbCB(0x10),
	"rr":   gbCB(0x18),
	"sla":  gbCB(0x20),
	"sra":  gbCB(0x28),
	"swap": gbCB(0x30),
	"srl":  gbCB(0x38),

	"nop":  gbSpecial(0x00),
	"halt": gbSpecial(0x76),
	"stop": gbSpecial(0x10, 0x00),
	"di":   gbSpecial(0xf3),
	"ei":   gbSpecial(0xfb),
	"reti": gbSpecial(0xd9),
	"rlca": gbSpecial(0x07),
	"rla":  gbSpecial(0x17),
	"rrca": gbSpecial(0x0f),
	"rra":  gbSpecial(0x1f),
	"daa":  gbSpecial(0x27),
	"cpl":  gbSpecial(0x2f),
	"ccf":  gbSpecial(0x3f),
	"scf":  gbSpecial(0x37),

	"db": defineBytes,
	"dw": defineWords,
	"ds": defineSpace,
}

// Encode implements asm.InstructionSet.
func (Gameboy) Encode(ins asm.Instruction) (codes []asm.Opcode, err error) {
	enc, ok := gameboyMnemonic[ins.Mnemonic]
	if !ok {
		err = asm.ErrMnemonicUnknown(ins.Mnemonic)
		return
	}
	return enc(ins)
}
