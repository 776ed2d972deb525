package link

import (
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"

	"github.com/ezrec/gbasm/asm"
	"github.com/ezrec/gbasm/internal"
)

// Image is a linked program.
type Image struct {
	Binary      []byte       // Flat binary, starting at address 0.
	Allocations []Allocation // One per block, in block order.
	Blocks      []asm.Block  // The linked blocks.
}

// Symbol is a block name and its address.
type Symbol struct {
	Address int
	Name    string // Qualified as `parent.local` for local labels.
}

// Symbols lists every block by ascending address. Blocks sharing an
// address keep their program order.
func (img *Image) Symbols() (syms []Symbol) {
	syms = make([]Symbol, len(img.Allocations))
	for n, alloc := range img.Allocations {
		syms[n] = Symbol{Address: alloc.Start, Name: img.Blocks[alloc.Block].Symbol()}
	}
	slices.SortStableFunc(syms, func(a, b Symbol) int { return a.Address - b.Address })
	return
}

// WriteSymbols writes the symbol table, one `$<hex>: <name>` per line.
func (img *Image) WriteSymbols(w io.Writer) (err error) {
	for _, sym := range img.Symbols() {
		if _, err = fmt.Fprintf(w, "$%x: %s\n", sym.Address, sym.Name); err != nil {
			return
		}
	}
	return
}

// Placed is an opcode unit at its linked address.
type Placed struct {
	Address int // Address of the first byte.
	Block   int // Index of the block.
	Index   int // Index of the unit in the block.
	asm.Unit
}

// Units iterates over every unit of every block, in allocation order.
func (img *Image) Units() iter.Seq[Placed] {
	seqs := make([]iter.Seq[Placed], len(img.Allocations))
	for n, alloc := range img.Allocations {
		seqs[n] = img.blockUnits(alloc)
	}
	return internal.Concat(seqs...)
}

func (img *Image) blockUnits(alloc Allocation) iter.Seq[Placed] {
	return func(yield func(Placed) bool) {
		addr := alloc.Start
		for n, unit := range img.Blocks[alloc.Block].Data {
			if !yield(Placed{Address: addr, Block: alloc.Block, Index: n, Unit: unit}) {
				return
			}
			addr += unit.Opcode.Len()
		}
	}
}

// Lookup finds the unit that emitted the byte at addr. When blocks
// overlap the last writer wins.
func (img *Image) Lookup(addr int) (placed Placed, ok bool) {
	for p := range img.Units() {
		if addr >= p.Address && addr < p.Address+p.Opcode.Len() {
			placed, ok = p, true
		}
	}
	return
}

// WriteListing writes the final bytes of every source line, grouped by
// block in address order:
//
//	main:
//	$0150: 21 05 01 ; line 3
func (img *Image) WriteListing(w io.Writer) (err error) {
	order := slices.Clone(img.Allocations)
	slices.SortStableFunc(order, func(a, b Allocation) int { return a.Start - b.Start })

	for _, alloc := range order {
		block := img.Blocks[alloc.Block]
		if _, err = fmt.Fprintf(w, "%s:\n", block.Symbol()); err != nil {
			return
		}

		addr := alloc.Start
		for n := 0; n < len(block.Data); {
			// Collect the run of units from one source line.
			start, line, length := addr, block.Data[n].LineNo, 0
			for ; n < len(block.Data) && block.Data[n].LineNo == line; n++ {
				length += block.Data[n].Opcode.Len()
			}
			addr += length

			hex := make([]string, 0, length)
			for _, b := range img.Binary[start : start+length] {
				hex = append(hex, fmt.Sprintf("%02x", b))
			}
			if _, err = fmt.Fprintf(w, "$%04x: %s ; line %d\n", start, strings.Join(hex, " "), line); err != nil {
				return
			}
		}
	}

	return
}
