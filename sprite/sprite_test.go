package sprite

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/ezrec/gbasm/asm"
)

// checkerSheet is two tiles across and one down, plus a partial column:
// a solid black tile, then a checkered tile.
func checkerSheet() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 2*TILE_SIZE+3, TILE_SIZE+5))
	for y := range img.Bounds().Dy() {
		for x := range img.Bounds().Dx() {
			c := color.Gray{Y: 0xff}
			if x < TILE_SIZE || (x+y)%2 == 1 {
				c = color.Gray{Y: 0}
			}
			img.SetGray(x, y, c)
		}
	}
	return img
}

var checkerBytes = []int{
	0b0101_0101, 0b0101_0101,
	0b1010_1010, 0b1010_1010,
	0b0101_0101, 0b0101_0101,
	0b1010_1010, 0b1010_1010,
	0b0101_0101, 0b0101_0101,
	0b1010_1010, 0b1010_1010,
	0b0101_0101, 0b0101_0101,
	0b1010_1010, 0b1010_1010,
}

func dbOf(values []int) asm.Instruction {
	ops := make([]asm.Expression, len(values))
	for n, v := range values {
		ops[n] = asm.Value(v)
	}
	return asm.Instruction{Mnemonic: "db", Operands: ops}
}

func TestShade(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		Color color.Color
		Shade uint8
	}{
		{color.Gray{Y: 0}, 3},
		{color.Gray{Y: 77}, 2},
		{color.Gray{Y: 153}, 1},
		{color.Gray{Y: 0xff}, 0},
		{color.RGBA{R: 0xff, A: 0xff}, 0},
		{color.RGBA{B: 0x80, A: 0xff}, 1},
	}

	for _, entry := range table {
		assert.Equal(entry.Shade, Shade(entry.Color), entry.Color)
	}
}

func TestSplit(t *testing.T) {
	assert := assert.New(t)

	tiles := Split(checkerSheet())
	require.Len(t, tiles, 2)

	var black Tile
	for n := range black {
		black[n] = 3
	}
	assert.Equal(black, tiles[0])
	assert.Equal(uint8(0), tiles[1][0])
	assert.Equal(uint8(3), tiles[1][1])
	assert.Equal(uint8(3), tiles[1][TILE_SIZE])

	assert.Empty(Split(image.NewGray(image.Rect(0, 0, 7, 100))))
}

func TestSplitOffset(t *testing.T) {
	assert := assert.New(t)

	img := checkerSheet().SubImage(image.Rect(TILE_SIZE, 0, 2*TILE_SIZE, TILE_SIZE))
	tiles := Split(img)
	require.Len(t, tiles, 1)
	assert.Equal(uint8(0), tiles[0][0])
}

func TestTileBytes(t *testing.T) {
	assert := assert.New(t)

	tile := Tile{
		0, 0, 1, 0, 1, 1, 1, 0,
		0, 0, 1, 0, 1, 1, 0, 1,
		0, 0, 2, 0, 2, 2, 2, 0,
		0, 0, 2, 0, 2, 2, 0, 2,
		0, 0, 3, 0, 3, 3, 3, 0,
		0, 0, 3, 0, 3, 3, 0, 3,
		0, 0, 1, 0, 1, 1, 1, 0,
		0, 0, 1, 0, 1, 1, 0, 1,
	}

	expected := []int{
		0b0000_0000, 0b0010_1110,
		0b0000_0000, 0b0010_1101,
		0b0010_1110, 0b0000_0000,
		0b0010_1101, 0b0000_0000,
		0b0010_1110, 0b0010_1110,
		0b0010_1101, 0b0010_1101,
		0b0000_0000, 0b0010_1110,
		0b0000_0000, 0b0010_1101,
	}

	assert.Equal(dbOf(expected), tile.Instruction(0))

	ins := tile.Instruction(12)
	assert.Equal(12, ins.LineNo)
}

func TestRead(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, checkerSheet()))

	list, err := Read(&buf)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(dbOf(checkerBytes), list[1])
}

func TestReadBMP(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, checkerSheet()))

	list, err := Read(&buf)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(dbOf(checkerBytes), list[1])
}

func TestReadErrors(t *testing.T) {
	assert := assert.New(t)

	_, err := Read(strings.NewReader("not an image"))
	assert.True(errors.As(err, new(ErrSheet)))

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4))))
	_, err = Read(&buf)
	assert.True(errors.Is(err, ErrSheetEmpty))
}

func TestLabel(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, checkerSheet()))

	label, err := Label("sprites", 0x4000, &buf)
	require.NoError(t, err)
	assert.Equal("sprites", label.Name)
	assert.Empty(label.Parent)
	assert.Equal(asm.Value(0x4000), label.Options["org"])
	assert.Len(label.Instructions, 2)
}
