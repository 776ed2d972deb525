// Package toolchain runs the whole assembly pipeline: source text to
// program, program to blocks, blocks to a linked image, image to files.
package toolchain

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/ezrec/gbasm/asm"
	"github.com/ezrec/gbasm/isa"
	"github.com/ezrec/gbasm/link"
	"github.com/ezrec/gbasm/sprite"
)

const (
	OUTPUT_EXT    = ".gb"     // Extension of the default output file.
	SPRITES_LABEL = "sprites" // Label of the sprite sheet block.
	SPRITES_ORG   = 0x4000    // Default sprite sheet address.
)

// Options selects the target and the outputs of a build.
type Options struct {
	Arch         string   // Architecture name, see isa.ByName.
	Output       string   // Binary path. Derived from the input when empty.
	Symbols      string   // Symbol file path, optional.
	Listing      string   // Listing file path, optional.
	Sprites      string   // Sprite sheet image path, optional.
	SpritesOrg   int      // Address of the sprite sheet block.
	Defines      []string // NAME=EXPR predefines, in evaluation order.
	AllowOverlap bool     // Overlapping blocks overlay instead of failing.
	Verbose      bool     // Log every pipeline stage.
}

// DefaultOptions returns the options used when no flags are given.
func DefaultOptions() Options {
	return Options{
		Arch:       isa.DEFAULT,
		SpritesOrg: SPRITES_ORG,
	}
}

// OutputPath is the default binary path for a source file: the same
// path with its extension replaced by OUTPUT_EXT.
func OutputPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + OUTPUT_EXT
}

// Assembler prepares an assembler for the selected architecture, with the
// predefines evaluated.
func (opts *Options) Assembler() (a *asm.Assembler, err error) {
	set, err := isa.ByName(opts.Arch)
	if err != nil {
		return
	}

	a = &asm.Assembler{
		Verbose:        opts.Verbose,
		InstructionSet: set,
	}

	for _, define := range opts.Defines {
		name, expr, ok := strings.Cut(define, "=")
		name = strings.TrimSpace(name)
		if !ok || len(name) == 0 {
			return nil, ErrDefineInvalid(define)
		}
		if err = a.Predefine(name, expr); err != nil {
			return nil, err
		}
	}

	return
}

// Build assembles and links a source. No image is returned on error.
func (opts *Options) Build(source io.Reader) (img *link.Image, err error) {
	a, err := opts.Assembler()
	if err != nil {
		return
	}

	prog, err := a.Parse(source)
	if err != nil {
		return
	}

	if len(opts.Sprites) != 0 {
		var label asm.Label
		if label, err = opts.spriteLabel(); err != nil {
			return
		}
		prog.Blocks = append(prog.Blocks, label)
	}

	blocks, err := a.Assemble(prog)
	if err != nil {
		return
	}

	ln := &link.Linker{
		Verbose:      opts.Verbose,
		AllowOverlap: opts.AllowOverlap,
	}

	return ln.Link(blocks)
}

func (opts *Options) spriteLabel() (label asm.Label, err error) {
	inf, err := os.Open(opts.Sprites)
	if err != nil {
		err = errors.Wrap(err, "read %v", opts.Sprites)
		return
	}
	defer inf.Close()

	label, err = sprite.Label(SPRITES_LABEL, opts.SpritesOrg, inf)
	if err != nil {
		return
	}

	if opts.Verbose {
		tlog.Printw("sprite sheet", "path", opts.Sprites, "tiles", len(label.Instructions), "org", opts.SpritesOrg)
	}

	return
}

// Run builds the source file at input and writes the binary, and the
// symbol and listing files when requested. Nothing is written unless the
// build succeeds.
func (opts *Options) Run(input string) (err error) {
	source, err := os.ReadFile(input)
	if err != nil {
		return errors.Wrap(err, "read %v", input)
	}

	img, err := opts.Build(bytes.NewReader(source))
	if err != nil {
		return
	}

	output := opts.Output
	if len(output) == 0 {
		output = OutputPath(input)
	}

	if err = os.WriteFile(output, img.Binary, 0o644); err != nil {
		return errors.Wrap(err, "write %v", output)
	}

	if opts.Verbose {
		tlog.Printw("wrote binary", "path", output, "size", len(img.Binary))
	}

	if len(opts.Symbols) != 0 {
		if err = writeFile(opts.Symbols, img.WriteSymbols); err != nil {
			return
		}
	}

	if len(opts.Listing) != 0 {
		if err = writeFile(opts.Listing, img.WriteListing); err != nil {
			return
		}
	}

	return
}

// writeFile creates path and fills it with write.
func writeFile(path string, write func(io.Writer) error) (err error) {
	ouf, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "write %v", path)
	}
	defer func() {
		if cerr := ouf.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "write %v", path)
		}
	}()

	if err = write(ouf); err != nil {
		err = errors.Wrap(err, "write %v", path)
	}

	return
}
