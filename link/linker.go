// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package link

import (
	"slices"
	"strings"

	"tlog.app/go/tlog"

	"github.com/ezrec/gbasm/asm"
)

// ADDRESS_SPACE is the size of the 16 bit address space blocks are placed in.
const ADDRESS_SPACE = 0x10000

// Allocation is the address range assigned to one block.
type Allocation struct {
	Start  int // First address.
	Length int // Length in bytes.
	Block  int // Index of the block.
}

// End is the first address after the allocation.
func (a Allocation) End() int {
	return a.Start + a.Length
}

// Linker places assembled blocks and resolves their deferred values.
type Linker struct {
	Verbose      bool // If set, verbosely logs the linker actions.
	AllowOverlap bool // If set, overlapping blocks are written in order, last write wins.
}

// Allocate assigns addresses to blocks. A block starts at its origin if it
// has one, else where the previous block ended. Every block must end
// within ADDRESS_SPACE.
func (ln *Linker) Allocate(blocks []asm.Block) (allocs []Allocation, err error) {
	allocs = make([]Allocation, len(blocks))

	next := 0
	for n, block := range blocks {
		start := next
		if block.HasOrigin {
			start = block.Origin
		}
		allocs[n] = Allocation{Start: start, Length: block.Len(), Block: n}
		next = allocs[n].End()

		if start < 0 || next > ADDRESS_SPACE {
			err = &ErrLink{
				LineNo: block.LineNo,
				Err:    asm.ErrOperand{Operand: asm.Constant(block.Symbol()), Err: ErrAddressRange},
			}
			return nil, err
		}

		if ln.Verbose {
			tlog.Printw("allocate", "block", block.Symbol(), "start", start, "length", allocs[n].Length)
		}
	}

	if !ln.AllowOverlap {
		err = checkOverlap(blocks, allocs)
	}

	return
}

// checkOverlap rejects non-empty allocations sharing any address.
func checkOverlap(blocks []asm.Block, allocs []Allocation) (err error) {
	placed := slices.Clone(allocs)
	placed = slices.DeleteFunc(placed, func(a Allocation) bool { return a.Length == 0 })
	slices.SortStableFunc(placed, func(a, b Allocation) int { return a.Start - b.Start })

	for n := 1; n < len(placed); n++ {
		prev, this := placed[n-1], placed[n]
		if this.Start < prev.End() {
			later := max(prev.Block, this.Block)
			block := blocks[later]
			return &ErrLink{
				LineNo: block.LineNo,
				Err:    asm.ErrOperand{Operand: asm.Constant(block.Symbol()), Err: ErrOverlap},
			}
		}
	}

	return
}

// BinarySize is the size of the image holding every allocation.
func BinarySize(allocs []Allocation) (size int) {
	for _, a := range allocs {
		size = max(size, a.End())
	}
	return
}

// Link allocates the blocks and emits them into a flat, zero filled
// binary. It returns no image on error.
func (ln *Linker) Link(blocks []asm.Block) (img *Image, err error) {
	allocs, err := ln.Allocate(blocks)
	if err != nil {
		return
	}

	r := resolver{
		blocks: blocks,
		allocs: allocs,
	}

	binary := make([]byte, BinarySize(allocs))
	for _, alloc := range allocs {
		index := alloc.Start
		for _, unit := range blocks[alloc.Block].Data {
			if err = r.emit(binary, index, unit.Opcode); err != nil {
				err = &ErrLink{LineNo: unit.LineNo, Err: err}
				return
			}
			index += unit.Opcode.Len()
		}
	}

	if ln.Verbose {
		tlog.Printw("linked", "blocks", len(blocks), "size", len(binary))
	}

	img = &Image{
		Binary:      binary,
		Allocations: allocs,
		Blocks:      blocks,
	}

	return
}

// resolver computes the final values of deferred opcodes.
type resolver struct {
	blocks []asm.Block
	allocs []Allocation
}

// address finds the start of a label. A dotted name is `parent.local`
// first, then a top level block of that exact name; a plain name matches a
// top level block.
func (r *resolver) address(label string) (addr int, ok bool) {
	if parent, local, dotted := strings.Cut(label, "."); dotted {
		for _, alloc := range r.allocs {
			block := &r.blocks[alloc.Block]
			if block.Name == local && block.Parent == parent {
				return alloc.Start, true
			}
		}
	}

	for _, alloc := range r.allocs {
		block := &r.blocks[alloc.Block]
		if block.Name == label && len(block.Parent) == 0 {
			return alloc.Start, true
		}
	}

	return
}

// value substitutes label addresses into expr and folds it to an integer.
func (r *resolver) value(expr asm.Expression) (value int, err error) {
	mapped, err := asm.MapSubExpressions(expr, func(leaf asm.Expression) (asm.Expression, error) {
		c, ok := leaf.(asm.Constant)
		if !ok {
			return leaf, nil
		}
		name := strings.ToLower(string(c))
		addr, ok := r.address(name)
		if !ok {
			return nil, ErrLabelUnknown(name)
		}
		return asm.Value(addr), nil
	})
	if err != nil {
		return
	}

	reduced := asm.Reduce(mapped)
	v, ok := reduced.(asm.Value)
	if !ok {
		err = asm.ErrOperand{Operand: reduced, Err: ErrValueInvalid}
		return
	}

	return int(v), nil
}

// emit writes one opcode at index.
func (r *resolver) emit(binary []byte, index int, code asm.Opcode) (err error) {
	switch code := code.(type) {
	case asm.Byte:
		binary[index] = byte(code)
	case asm.Word:
		binary[index] = byte(code)
		binary[index+1] = byte(code >> 8)
	case asm.Deferred:
		var value int
		if value, err = r.value(code.Expr); err != nil {
			return
		}

		switch code.Width {
		case asm.WIDTH_UINT8:
			if value < 0 || value > 0xff {
				return asm.ErrOperand{Operand: code.Expr, Err: ErrWidthRange}
			}
			binary[index] = byte(value)
		case asm.WIDTH_UINT16:
			if value < 0 || value > 0xffff {
				return asm.ErrOperand{Operand: code.Expr, Err: ErrWidthRange}
			}
			binary[index] = byte(value)
			binary[index+1] = byte(value >> 8)
		case asm.WIDTH_INT8_RELATIVE:
			if value < 0 || value > 0xffff {
				return asm.ErrOperand{Operand: code.Expr, Err: ErrWidthRange}
			}
			distance := value - (index + 1)
			if distance < -128 || distance > 127 {
				return ErrDistance{Target: code.Expr.String(), Distance: distance}
			}
			binary[index] = byte(int8(distance))
		default:
			return asm.ErrOperand{Operand: code.Expr, Err: ErrValueInvalid}
		}
	default:
		err = ErrValueInvalid
	}

	return
}
