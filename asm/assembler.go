// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"io"
	"maps"
	"strings"

	"tlog.app/go/tlog"
)

// Assembler turns parsed programs into linkable blocks for one
// instruction set.
type Assembler struct {
	Verbose        bool           // If set, verbosely logs the assembler actions.
	InstructionSet InstructionSet // Target architecture encoder.

	predefine map[string]Expression // Constants defined outside the source.
}

// Parse parses an input stream into a Program, adding any predefined
// constants to it. A source definition may not replace a predefine.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	prog, err = Parse(input)
	if err != nil {
		return
	}

	for name, value := range asm.predefine {
		if _, ok := prog.Constants[name]; ok {
			err = ErrConstantRedefined(name)
			return nil, err
		}
		prog.Constants[name] = value
	}

	if asm.Verbose {
		tlog.Printw("parsed program", "blocks", len(prog.Blocks), "constants", len(prog.Constants))
	}

	return
}

// Expander returns the constant expander for a program. Constant values
// are reduced once up front.
func (asm *Assembler) Expander(prog *Program) Expander {
	constants := maps.Clone(prog.Constants)
	for name, value := range constants {
		constants[name] = Reduce(value)
	}
	return Expander{Constants: constants}
}

// Assemble encodes every block of the program, in order.
func (asm *Assembler) Assemble(prog *Program) (blocks []Block, err error) {
	ex := asm.Expander(prog)

	blocks = make([]Block, 0, len(prog.Blocks))
	for _, label := range prog.Blocks {
		var block Block
		block, err = asm.AssembleBlock(label, ex)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	return
}

// AssembleBlock encodes the instructions of a single label.
func (asm *Assembler) AssembleBlock(label Label, ex Expander) (block Block, err error) {
	block = Block{
		Name:   strings.ToLower(label.Name),
		Parent: strings.ToLower(label.Parent),
		LineNo: label.LineNo,
	}

	block.Origin, block.HasOrigin, err = asm.origin(label, ex)
	if err != nil {
		return
	}

	for _, ins := range label.Instructions {
		var codes []Opcode
		codes, err = asm.encode(ins, label.Scope(), ex)
		if err != nil {
			return
		}
		for _, code := range codes {
			block.Data = append(block.Data, Unit{Opcode: code, LineNo: ins.LineNo})
		}
	}

	if asm.Verbose {
		tlog.Printw("assembled block", "name", block.Symbol(), "line", block.LineNo,
			"origin", block.Origin, "fixed", block.HasOrigin, "size", block.Len())
	}

	return
}

// origin evaluates the `org` option of a label. It must be a 16 bit
// address.
func (asm *Assembler) origin(label Label, ex Expander) (origin int, ok bool, err error) {
	declared, ok := label.Options["org"]
	if !ok {
		return
	}

	defer func() {
		if err != nil {
			err = &ErrBlock{Block: label.Name, LineNo: label.LineNo, Err: err}
		}
	}()

	expanded, err := ex.Expand(declared)
	if err != nil {
		return
	}

	value, isValue := Reduce(expanded).(Value)
	if !isValue || value < 0 || value > 0xffff {
		err = ErrOperand{Operand: expanded, Err: ErrOriginInvalid}
		return
	}

	return int(value), true, nil
}

// encode normalizes the operands of an instruction and hands it to the
// instruction set.
func (asm *Assembler) encode(ins Instruction, scope string, ex Expander) (codes []Opcode, err error) {
	defer func() {
		if err != nil {
			err = &ErrInstruction{LineNo: ins.LineNo, Instruction: ins.String(), Err: err}
		}
	}()

	operands := make([]Expression, len(ins.Operands))
	for n, op := range ins.Operands {
		if op, err = ex.Expand(op); err != nil {
			return
		}
		if op, err = Qualify(op, scope); err != nil {
			return
		}
		operands[n] = Reduce(op)
	}

	return asm.InstructionSet.Encode(Instruction{
		Mnemonic: strings.ToLower(ins.Mnemonic),
		Operands: operands,
		LineNo:   ins.LineNo,
	})
}
