package asm

import (
	"fmt"
)

// Width is the encoded size and interpretation of a deferred value.
type Width int

//go:generate go tool stringer -linecomment -type=Width
const (
	WIDTH_UINT8         = Width(0) // uint8
	WIDTH_UINT16        = Width(1) // uint16
	WIDTH_INT8_RELATIVE = Width(2) // int8 relative
)

// Len is the number of bytes a value of this width occupies.
func (w Width) Len() int {
	if w == WIDTH_UINT16 {
		return 2
	}
	return 1
}

// Opcode is one unit of encoder output.
type Opcode interface {
	fmt.Stringer
	Len() int // Encoded length in bytes.
}

// Byte is a fixed output byte.
type Byte uint8

// Word is a fixed little endian output word.
type Word uint16

// Deferred is a value that depends on label addresses. The linker
// resolves it once every block is placed.
type Deferred struct {
	Expr  Expression
	Width Width
}

func (Byte) Len() int       { return 1 }
func (Word) Len() int       { return 2 }
func (d Deferred) Len() int { return d.Width.Len() }

func (b Byte) String() string { return fmt.Sprintf("%02x", uint8(b)) }
func (w Word) String() string { return fmt.Sprintf("%04x", uint16(w)) }

func (d Deferred) String() string {
	return fmt.Sprintf("%v (%v)", d.Expr, d.Width)
}

// InstructionSet encodes instructions for one target architecture.
//
// Implementations hold no mutable state. The mnemonic and every Constant
// in the operands arrive lower cased and reduced.
type InstructionSet interface {
	Encode(ins Instruction) ([]Opcode, error)
}

// Unit is an opcode together with the source line that produced it.
type Unit struct {
	Opcode Opcode
	LineNo int // Zero when unknown.
}

// Block is an assembled label, ready for linking.
type Block struct {
	Name      string // Lower case label name.
	Parent    string // Lower case parent name for local labels.
	LineNo    int    // Declaration line, zero when synthesized.
	Origin    int    // Fixed start address, when HasOrigin is set.
	HasOrigin bool
	Data      []Unit
}

// Len is the encoded size of the block in bytes.
func (b *Block) Len() (length int) {
	for _, unit := range b.Data {
		length += unit.Opcode.Len()
	}
	return
}

// Symbol is the name the block is referenced by from outside its scope.
func (b *Block) Symbol() string {
	if len(b.Parent) == 0 {
		return b.Name
	}
	return b.Parent + "." + b.Name
}
