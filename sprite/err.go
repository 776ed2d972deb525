package sprite

import (
	"errors"

	"github.com/ezrec/gbasm/translate"
)

var f = translate.From

var (
	ErrSheetEmpty = errors.New(f("sprite sheet is smaller than one tile"))
)

// ErrSheet wraps a failure to decode a sprite sheet image.
type ErrSheet struct {
	Err error
}

func (err ErrSheet) Error() string {
	return f("unable to read sprite sheet: %v", err.Err)
}

func (err ErrSheet) Unwrap() error {
	return err.Err
}
