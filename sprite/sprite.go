// Package sprite converts sprite sheet images into 2 bit per pixel tile
// data, as `db` instructions ready for assembly.
package sprite

import (
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"

	_ "golang.org/x/image/bmp"

	"github.com/ezrec/gbasm/asm"
)

// TILE_SIZE is the width and height of a tile, in pixels.
const TILE_SIZE = 8

// Tile holds the shades of an 8x8 tile, row major. Shade 0 is the lightest
// and 3 the darkest.
type Tile [TILE_SIZE * TILE_SIZE]uint8

// Shade maps a color to its 2 bit shade, from its HSB brightness.
func Shade(c color.Color) uint8 {
	nc := color.NRGBA64Model.Convert(c).(color.NRGBA64)
	brightness := float64(max(nc.R, nc.G, nc.B)) / 0xffff
	return 3 - uint8(math.RoundToEven(brightness*3))
}

// Split cuts an image into tiles, left to right then top to bottom.
// Partial tiles at the right and bottom edges are dropped.
func Split(img image.Image) (tiles []Tile) {
	bounds := img.Bounds()
	across := bounds.Dx() / TILE_SIZE
	down := bounds.Dy() / TILE_SIZE

	tiles = make([]Tile, 0, across*down)
	for ty := range down {
		for tx := range across {
			var tile Tile
			for y := range TILE_SIZE {
				for x := range TILE_SIZE {
					px := bounds.Min.X + tx*TILE_SIZE + x
					py := bounds.Min.Y + ty*TILE_SIZE + y
					tile[y*TILE_SIZE+x] = Shade(img.At(px, py))
				}
			}
			tiles = append(tiles, tile)
		}
	}

	return
}

// Bytes encodes the tile in bit plane form: for each row, the byte of
// shade high bits then the byte of shade low bits. The leftmost pixel is
// the most significant bit.
func (t *Tile) Bytes() (data [2 * TILE_SIZE]byte) {
	for y := range TILE_SIZE {
		var hi, lo byte
		for x := range TILE_SIZE {
			shade := t[y*TILE_SIZE+x]
			bit := byte(1) << (TILE_SIZE - 1 - x)
			if shade&2 != 0 {
				hi |= bit
			}
			if shade&1 != 0 {
				lo |= bit
			}
		}
		data[y*2] = hi
		data[y*2+1] = lo
	}
	return
}

// Instruction is the `db` instruction holding the tile data.
func (t *Tile) Instruction(lineNo int) asm.Instruction {
	data := t.Bytes()
	operands := make([]asm.Expression, len(data))
	for n, b := range data {
		operands[n] = asm.Value(b)
	}
	return asm.Instruction{Mnemonic: "db", Operands: operands, LineNo: lineNo}
}

// Decode reads a PNG, GIF, JPEG or BMP sprite sheet.
func Decode(input io.Reader) (img image.Image, err error) {
	img, _, err = image.Decode(input)
	if err != nil {
		return nil, ErrSheet{Err: err}
	}
	return
}

// Read decodes a sprite sheet and converts every whole tile in it into a
// `db` instruction.
func Read(input io.Reader) (list []asm.Instruction, err error) {
	img, err := Decode(input)
	if err != nil {
		return
	}

	tiles := Split(img)
	if len(tiles) == 0 {
		err = ErrSheet{Err: ErrSheetEmpty}
		return
	}

	list = make([]asm.Instruction, len(tiles))
	for n := range tiles {
		list[n] = tiles[n].Instruction(0)
	}

	return
}

// Label builds a label named name holding the tiles of a sprite sheet,
// placed at origin.
func Label(name string, origin int, input io.Reader) (label asm.Label, err error) {
	list, err := Read(input)
	if err != nil {
		return
	}

	label = asm.Label{
		Name:         name,
		Instructions: list,
		Options:      map[string]asm.Expression{"org": asm.Value(origin)},
	}

	return
}
