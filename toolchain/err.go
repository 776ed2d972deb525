package toolchain

import (
	"tlog.app/go/errors"

	"github.com/ezrec/gbasm/asm"
	"github.com/ezrec/gbasm/link"
	"github.com/ezrec/gbasm/translate"
)

var f = translate.From

// ErrDefineInvalid is a predefine not in NAME=EXPR form.
type ErrDefineInvalid string

func (err ErrDefineInvalid) Error() string {
	return f("invalid define `%v`, expected NAME=EXPR", string(err))
}

// Diagnostic formats err for the user. Parser, encoder, and linker errors
// already carry their `Error` prefix and line; anything else gets the
// prefix here.
func Diagnostic(err error) string {
	var (
		perr *asm.ErrParse
		ierr *asm.ErrInstruction
		berr *asm.ErrBlock
		lerr *link.ErrLink
	)

	switch {
	case errors.As(err, &perr), errors.As(err, &ierr), errors.As(err, &berr), errors.As(err, &lerr):
		return err.Error()
	}

	return f("Error: %v", err)
}
