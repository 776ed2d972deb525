package isa

import (
	"maps"
	"slices"
	"strings"

	"github.com/ezrec/gbasm/asm"
)

// DEFAULT is the architecture used when none is named.
const DEFAULT = "gameboy"

var architecture = map[string]asm.InstructionSet{
	"gameboy":   Gameboy{},
	"gb":        Gameboy{},
	"lr35902":   Gameboy{},
	"intel8080": Intel8080{},
	"8080":      Intel8080{},
	"i8080":     Intel8080{},
}

// ByName returns the instruction set for an architecture name. Names are
// case insensitive; the empty name selects DEFAULT.
func ByName(arch string) (set asm.InstructionSet, err error) {
	if len(arch) == 0 {
		arch = DEFAULT
	}
	set, ok := architecture[strings.ToLower(arch)]
	if !ok {
		err = ErrArchitectureUnknown(arch)
	}
	return
}

// Names lists the accepted architecture names, sorted.
func Names() []string {
	return slices.Sorted(maps.Keys(architecture))
}
