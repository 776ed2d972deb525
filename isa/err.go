package isa

import (
	"github.com/ezrec/gbasm/translate"
)

var f = translate.From

// ErrArchitectureUnknown is returned by ByName for unsupported targets.
type ErrArchitectureUnknown string

func (err ErrArchitectureUnknown) Error() string {
	return f("unknown architecture `%v`", string(err))
}
