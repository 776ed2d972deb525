package link

import (
	"errors"

	"github.com/ezrec/gbasm/translate"
)

var f = translate.From

var (
	ErrValueInvalid  = errors.New(f("invalid value"))
	ErrWidthRange    = errors.New(f("value out of range"))
	ErrRelativeRange = errors.New(f("label out of range for relative jump"))
	ErrOverlap       = errors.New(f("block overlaps a previous block"))
	ErrAddressRange  = errors.New(f("block does not fit in the address space"))
)

// ErrLabelUnknown is a reference to a label no block declares.
type ErrLabelUnknown string

func (err ErrLabelUnknown) Error() string {
	return f("unknown label `%v`", string(err))
}

// ErrDistance decorates ErrRelativeRange with the branch distance.
type ErrDistance struct {
	Target   string
	Distance int
}

func (err ErrDistance) Error() string {
	return f("%v `%v` (%v bytes away)", ErrRelativeRange, err.Target, err.Distance)
}

func (err ErrDistance) Unwrap() error {
	return ErrRelativeRange
}

// ErrLink locates a linker error on the source line of the unit that
// caused it. LineNo is zero when no line is known.
type ErrLink struct {
	LineNo int
	Err    error
}

func (err *ErrLink) Error() string {
	if err.LineNo <= 0 {
		return f("Error: %v", err.Err)
	}
	return f("Error on line %d: %v", err.LineNo, err.Err)
}

func (err *ErrLink) Unwrap() error {
	return err.Err
}
