package isa

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/gbasm/asm"
)

// encode assembles a single line of source with set.
func encode(t *testing.T, set asm.InstructionSet, line string) (codes []asm.Opcode, err error) {
	prog, err := asm.ParseString("test:\n" + line)
	require.NoError(t, err, line)
	require.Len(t, prog.Blocks, 1, line)

	as := &asm.Assembler{InstructionSet: set}
	block, err := as.AssembleBlock(prog.Blocks[0], as.Expander(prog))
	if err != nil {
		return
	}

	for _, unit := range block.Data {
		codes = append(codes, unit.Opcode)
	}
	return
}

// flatten renders fixed opcodes as bytes.
func flatten(t *testing.T, codes []asm.Opcode) (out []byte) {
	for _, code := range codes {
		switch code := code.(type) {
		case asm.Byte:
			out = append(out, byte(code))
		case asm.Word:
			out = append(out, byte(code), byte(code>>8))
		default:
			t.Errorf("unexpected opcode %v", code)
		}
	}
	return
}

func checkTable(t *testing.T, set asm.InstructionSet, table map[string][]byte) {
	for line, expected := range table {
		codes, err := encode(t, set, line)
		if !assert.NoError(t, err, line) {
			continue
		}
		assert.Equal(t, expected, flatten(t, codes), line)
	}
}

func TestByName(t *testing.T) {
	assert := assert.New(t)

	set, err := ByName("")
	assert.NoError(err)
	assert.Equal(Gameboy{}, set)

	set, err = ByName("Intel8080")
	assert.NoError(err)
	assert.Equal(Intel8080{}, set)

	set, err = ByName("8080")
	assert.NoError(err)
	assert.Equal(Intel8080{}, set)

	_, err = ByName("z80")
	assert.Equal(ErrArchitectureUnknown("z80"), err)

	assert.Contains(Names(), "gameboy")
	assert.Contains(Names(), "intel8080")
}

func TestDataDirectives(t *testing.T) {
	assert := assert.New(t)

	for _, set := range []asm.InstructionSet{Gameboy{}, Intel8080{}} {
		codes, err := encode(t, set, `db 1, "AB", 0xff`)
		assert.NoError(err)
		assert.Equal([]byte{1, 'A', 'B', 0xff}, flatten(t, codes))

		codes, err = encode(t, set, `dw 0x1234, 5`)
		assert.NoError(err)
		assert.Equal([]byte{0x34, 0x12, 0x05, 0x00}, flatten(t, codes))

		codes, err = encode(t, set, `ds 3`)
		assert.NoError(err)
		assert.Equal([]byte{0, 0, 0}, flatten(t, codes))

		codes, err = encode(t, set, `ds 2, 0xaa`)
		assert.NoError(err)
		assert.Equal([]byte{0xaa, 0xaa}, flatten(t, codes))

		codes, err = encode(t, set, `db label`)
		assert.NoError(err)
		assert.Equal([]asm.Opcode{asm.Deferred{Expr: asm.Constant("label"), Width: asm.WIDTH_UINT8}}, codes)

		_, err = encode(t, set, `db`)
		assert.True(errors.Is(err, asm.ErrOperandMissing))

		_, err = encode(t, set, `db 256`)
		assert.True(errors.Is(err, asm.ErrValueRange))

		_, err = encode(t, set, `db "\u80"`)
		assert.True(errors.Is(err, asm.ErrNotASCII))

		_, err = encode(t, set, `ds -1`)
		assert.True(errors.Is(err, asm.ErrValueRange))
	}
}

func TestUnknownMnemonic(t *testing.T) {
	assert := assert.New(t)

	_, err := encode(t, Gameboy{}, "frobnicate a")
	assert.True(errors.As(err, new(asm.ErrMnemonicUnknown)))

	var insErr *asm.ErrInstruction
	assert.True(errors.As(err, &insErr))
	assert.Equal(2, insErr.LineNo)
	assert.Equal("frobnicate a", insErr.Instruction)

	_, err = encode(t, Intel8080{}, "ld a, b")
	assert.True(errors.As(err, new(asm.ErrMnemonicUnknown)))
}
