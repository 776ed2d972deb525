// Package asm implements the architecture independent half of the 8-bit
// assembler: the operand expression model, the source parser, constant
// expansion and the block assembler.
//
// Source text is parsed into a Program of constants and labels. The
// Assembler expands constants into each operand, folds what it can, and
// asks an InstructionSet to encode the result. Values that depend on label
// addresses are left as Deferred opcodes for the linker.
package asm
