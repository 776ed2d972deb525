package asm

import (
	"strings"
)

// Instruction is a single parsed source instruction.
type Instruction struct {
	Mnemonic string       // Mnemonic as spelled in the source.
	Operands []Expression // Operands, in order.
	LineNo   int          // Source line of the mnemonic.
}

func (ins Instruction) String() string {
	ops := make([]string, len(ins.Operands))
	for n, op := range ins.Operands {
		ops[n] = op.String()
	}
	return strings.TrimSpace(ins.Mnemonic + " " + strings.Join(ops, ", "))
}

// Label is a named block of instructions.
type Label struct {
	Name         string                // Label name, without any leading `.`.
	Parent       string                // Enclosing label for local labels, else empty.
	LineNo       int                   // Source line of the declaration.
	Instructions []Instruction         // Instructions up to the next label.
	Options      map[string]Expression // Bracketed options, such as `org`.
}

// Local is true for labels declared with a leading `.`.
func (l Label) Local() bool {
	return len(l.Parent) != 0
}

// Scope is the label that local references inside this block resolve
// against.
func (l Label) Scope() string {
	if l.Local() {
		return l.Parent
	}
	return l.Name
}

func (l Label) String() string {
	lines := []string{l.Name + ":"}
	if l.Local() {
		lines[0] = "." + lines[0]
	}
	for _, ins := range l.Instructions {
		lines = append(lines, "\t"+ins.String())
	}
	return strings.Join(lines, "\n")
}

// Program is the parsed form of a whole source file.
type Program struct {
	Constants map[string]Expression // Constants, keyed by lower case name.
	Blocks    []Label               // Labels in source order.
}
