// Package isa holds the target instruction sets: the Game Boy CPU and the
// Intel 8080.
//
// Each architecture is a stateless asm.InstructionSet. Operands arrive
// reduced and lower cased; literal immediates are range checked and
// encoded directly, anything symbolic becomes an asm.Deferred for the
// linker. Both sets also accept the data directives `db`, `dw` and `ds`.
package isa
