package toolchain

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/gbasm/asm"
	"github.com/ezrec/gbasm/isa"
	"github.com/ezrec/gbasm/link"
)

func build(t *testing.T, opts Options, lines ...string) (*link.Image, error) {
	t.Helper()
	return opts.Build(strings.NewReader(strings.Join(lines, "\n")))
}

func TestBuild(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		Name     string
		Source   []string
		Expected []byte
	}{
		{
			"origin",
			[]string{
				"label1: ld hl, label2",
				"[org(0x05)] label2: xor a",
			},
			[]byte{0x21, 0x05, 0x00, 0x00, 0x00, 0xaf},
		},
		{
			"relative",
			[]string{
				"label1: db 1,2,3",
				"label2: db 4,5,6",
				"label3: db 7,8,9; jr label2",
			},
			[]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 0x18, 0xf8},
		},
		{
			"local labels",
			[]string{
				"label1: ld hl, .label2",
				".label2: ld bc, label2",
				"label2: ld de, label1.label2",
			},
			[]byte{0x21, 0x03, 0x00, 0x01, 0x06, 0x00, 0x11, 0x03, 0x00},
		},
		{
			"constants",
			[]string{
				"VRAM = 0x8000",
				"tile = vram + 0x10",
				"Main: LD HL, TILE ; ld a, 65",
			},
			[]byte{0x21, 0x10, 0x80, 0x3e, 0x41},
		},
		{
			"data",
			[]string{
				"table: dw table, 0x1234",
				"fill: ds 3, 0xff",
				"text: db \"hi\", 0",
			},
			[]byte{0x00, 0x00, 0x34, 0x12, 0xff, 0xff, 0xff, 'h', 'i', 0x00},
		},
		{
			"memory loads",
			[]string{
				"main: ld a, [0xff44]",
				"  ld a, [0xc000]",
				"  ld a, [buf + 1]",
				"buf: db 0",
			},
			[]byte{0xf0, 0x44, 0xfa, 0x00, 0xc0, 0xfa, 0x09, 0x00, 0x00},
		},
	}

	for _, entry := range table {
		img, err := build(t, DefaultOptions(), entry.Source...)
		if !assert.NoError(err, entry.Name) {
			continue
		}
		assert.Equal(entry.Expected, img.Binary, entry.Name)
	}
}

func TestBuildIntel8080(t *testing.T) {
	assert := assert.New(t)

	opts := DefaultOptions()
	opts.Arch = "8080"

	img, err := build(t, opts,
		"start: mvi a, 5",
		"  jmp start",
	)
	require.NoError(t, err)
	assert.Equal([]byte{0x3e, 0x05, 0xc3, 0x00, 0x00}, img.Binary)

	opts.Arch = "z80"
	_, err = build(t, opts, "start: nop")
	assert.Equal(isa.ErrArchitectureUnknown("z80"), err)
}

func TestBuildErrors(t *testing.T) {
	assert := assert.New(t)

	_, err := build(t, DefaultOptions(), "main: jp nowhere")
	assert.True(errors.As(err, new(link.ErrLabelUnknown)))
	var lerr *link.ErrLink
	require.True(t, errors.As(err, &lerr))
	assert.Equal(1, lerr.LineNo)

	_, err = build(t, DefaultOptions(),
		"start: jr far",
		"[org(0x100)] far: nop",
	)
	assert.True(errors.Is(err, link.ErrRelativeRange))

	_, err = build(t, DefaultOptions(), "main: ld a, 0x1234")
	assert.True(errors.Is(err, asm.ErrValueRange))
	var ierr *asm.ErrInstruction
	require.True(t, errors.As(err, &ierr))
	assert.Equal(1, ierr.LineNo)

	_, err = build(t, DefaultOptions(), "main: ld a, 0xff")
	assert.NoError(err)

	_, err = build(t, DefaultOptions(), "main: frob a")
	assert.True(errors.As(err, new(asm.ErrMnemonicUnknown)))

	_, err = build(t, DefaultOptions(), "x = y", "y = x", "main: ld a, x")
	assert.True(errors.Is(err, asm.ErrRecursiveConstant))

	_, err = build(t, DefaultOptions(), "[org(0x7fffffffffffff00)] x: nop")
	assert.True(errors.Is(err, asm.ErrOriginInvalid))

	_, err = build(t, DefaultOptions(), "[org(0xffff)] x: ld a, 1")
	assert.True(errors.Is(err, link.ErrAddressRange))

	_, err = build(t, DefaultOptions(), "main:", "  nop", "  1")
	var perr *asm.ErrParse
	require.True(t, errors.As(err, &perr))
	assert.Equal(3, perr.LineNo)
}

func TestBuildOverlap(t *testing.T) {
	assert := assert.New(t)

	source := []string{
		"first: db 1, 2, 3",
		"[org(1)] second: db 9",
	}

	_, err := build(t, DefaultOptions(), source...)
	assert.True(errors.Is(err, link.ErrOverlap))

	opts := DefaultOptions()
	opts.AllowOverlap = true
	img, err := build(t, opts, source...)
	require.NoError(t, err)
	assert.Equal([]byte{1, 9, 3}, img.Binary)
}

func TestBuildDefines(t *testing.T) {
	assert := assert.New(t)

	opts := DefaultOptions()
	opts.Defines = []string{"WIDTH=160", "half = width // 2", `name="ok"`}

	img, err := build(t, opts, "main: ld a, half; db name")
	require.NoError(t, err)
	assert.Equal([]byte{0x3e, 80, 'o', 'k'}, img.Binary)

	opts.Defines = []string{"WIDTH=160", "HALF=WIDTH//2", "Quarter = Half // 2"}
	img, err = build(t, opts, "main: ld a, half; ld b, QUARTER")
	require.NoError(t, err)
	assert.Equal([]byte{0x3e, 80, 0x06, 40}, img.Binary)

	opts.Defines = []string{"half"}
	_, err = build(t, opts, "main: nop")
	assert.Equal(ErrDefineInvalid("half"), err)

	opts.Defines = []string{"=1"}
	_, err = build(t, opts, "main: nop")
	assert.Equal(ErrDefineInvalid("=1"), err)

	opts.Defines = []string{"half=1"}
	_, err = build(t, opts, "half = 2", "main: nop")
	assert.True(errors.As(err, new(asm.ErrConstantRedefined)))
}

func TestDiagnostic(t *testing.T) {
	assert := assert.New(t)

	opts := DefaultOptions()
	opts.Arch = "z80"
	_, err := build(t, opts, "main: nop")
	assert.Equal("Error: unknown architecture `z80`", Diagnostic(err))

	opts = DefaultOptions()
	opts.Defines = []string{"half"}
	_, err = build(t, opts, "main: nop")
	assert.Equal("Error: "+ErrDefineInvalid("half").Error(), Diagnostic(err))

	opts.Defines = []string{"half=1"}
	_, err = build(t, opts, "half = 2", "main: nop")
	assert.Equal("Error: "+asm.ErrConstantRedefined("half").Error(), Diagnostic(err))

	_, err = build(t, DefaultOptions(), "main: jp nowhere")
	assert.Equal(err.Error(), Diagnostic(err))
	assert.True(strings.HasPrefix(Diagnostic(err), "Error on line 1: "))

	_, err = build(t, DefaultOptions(), "main: ld a, 0x1234")
	assert.Equal(err.Error(), Diagnostic(err))

	err = DefaultOptions().Run(filepath.Join(t.TempDir(), "missing.asm"))
	assert.True(strings.HasPrefix(Diagnostic(err), "Error: read "))
}

func TestOutputPath(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(filepath.Join("dir", "game.gb"), OutputPath(filepath.Join("dir", "game.asm")))
	assert.Equal("game.gb", OutputPath("game"))
	assert.Equal("game.tar.gb", OutputPath("game.tar.asm"))
}

func writeSprites(t *testing.T, path string) {
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for n := range img.Pix {
		img.Pix[n] = 0xff
	}
	img.SetGray(0, 0, color.Gray{Y: 0})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestRun(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	input := filepath.Join(dir, "game.asm")
	require.NoError(t, os.WriteFile(input, []byte(strings.Join([]string{
		"main: ld hl, sprites",
		".loop: jr .loop",
	}, "\n")), 0o644))

	sprites := filepath.Join(dir, "tiles.png")
	writeSprites(t, sprites)

	opts := DefaultOptions()
	opts.Symbols = filepath.Join(dir, "game.sym")
	opts.Listing = filepath.Join(dir, "game.lst")
	opts.Sprites = sprites
	opts.SpritesOrg = 0x10

	require.NoError(t, opts.Run(input))

	binary, err := os.ReadFile(filepath.Join(dir, "game.gb"))
	require.NoError(t, err)
	require.Len(t, binary, 0x10+16)
	assert.Equal([]byte{0x21, 0x10, 0x00, 0x18, 0xfe}, binary[:5])
	assert.Equal([]byte{0x80, 0x80}, binary[0x10:0x12])
	assert.Equal(make([]byte, 14), binary[0x12:])

	symbols, err := os.ReadFile(opts.Symbols)
	require.NoError(t, err)
	assert.Equal("$0: main\n$3: main.loop\n$10: sprites\n", string(symbols))

	listing, err := os.ReadFile(opts.Listing)
	require.NoError(t, err)
	assert.Contains(string(listing), "$0003: 18 fe ; line 2\n")
}

func TestRunFailure(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	input := filepath.Join(dir, "broken.asm")
	require.NoError(t, os.WriteFile(input, []byte("main: jp nowhere\n"), 0o644))

	opts := DefaultOptions()
	opts.Symbols = filepath.Join(dir, "broken.sym")

	err := opts.Run(input)
	assert.True(errors.As(err, new(link.ErrLabelUnknown)))

	_, err = os.Stat(filepath.Join(dir, "broken.gb"))
	assert.True(os.IsNotExist(err))
	_, err = os.Stat(opts.Symbols)
	assert.True(os.IsNotExist(err))

	err = opts.Run(filepath.Join(dir, "missing.asm"))
	assert.True(errors.Is(err, os.ErrNotExist))

	opts.Sprites = filepath.Join(dir, "missing.png")
	require.NoError(t, os.WriteFile(input, []byte("main: nop\n"), 0o644))
	err = opts.Run(input)
	assert.True(errors.Is(err, os.ErrNotExist))
}
