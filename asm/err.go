package asm

import (
	"errors"

	"github.com/ezrec/gbasm/translate"
)

var f = translate.From

var (
	// Parser errors
	ErrExpectedLabelOrDefine = errors.New(f("expected label or constant definition"))
	ErrExpectedSeparator     = errors.New(f("expected newline or semicolon"))
	ErrExpectedExpression    = errors.New(f("expected value, register or expression"))
	ErrExpectedParentLabel   = errors.New(f("can't make a local label without a parent label"))
	ErrStringUnterminated    = errors.New(f("unterminated string literal"))
	ErrUnicodeEscape         = errors.New(f("unicode escape sequence must be two hex digits"))

	// Expansion errors
	ErrRecursiveConstant = errors.New(f("cannot recursively expand constants"))
	ErrOriginInvalid     = errors.New(f("invalid block origin"))
	ErrPredefine         = errors.New(f("predefine must evaluate to an int or a string"))

	// Encoder errors
	ErrOperandMissing   = errors.New(f("missing operand"))
	ErrOperandExtra     = errors.New(f("too many operands"))
	ErrOperandInvalid   = errors.New(f("invalid operands"))
	ErrValueRange       = errors.New(f("value out of range"))
	ErrConditionInvalid = errors.New(f("invalid condition"))
	ErrRegisterInvalid  = errors.New(f("invalid register"))
	ErrNotASCII         = errors.New(f("only ASCII strings are supported"))
)

// ErrConstantRedefined is returned when a constant is defined twice.
type ErrConstantRedefined string

func (err ErrConstantRedefined) Error() string {
	return f("constant `%v` already defined", string(err))
}

// ErrOptionRedefined is returned when a label option is given twice.
type ErrOptionRedefined string

func (err ErrOptionRedefined) Error() string {
	return f("option `%v` already defined", string(err))
}

// ErrOptionUnknown is returned for label options other than `org`.
type ErrOptionUnknown string

func (err ErrOptionUnknown) Error() string {
	return f("unknown option `%v`", string(err))
}

// ErrExpected is returned when a specific token was required.
type ErrExpected string

func (err ErrExpected) Error() string {
	return f("expected `%v`", string(err))
}

// ErrEscape is an invalid escape sequence in a string literal.
type ErrEscape string

func (err ErrEscape) Error() string {
	return f("invalid escape sequence `%v`", string(err))
}

// ErrMnemonicUnknown is returned by an InstructionSet for mnemonics it
// does not implement.
type ErrMnemonicUnknown string

func (err ErrMnemonicUnknown) Error() string {
	return f("unknown mnemonic `%v`", string(err))
}

// ErrOperand decorates an encoder error with the offending operand.
type ErrOperand struct {
	Operand Expression
	Err     error
}

func (err ErrOperand) Error() string {
	return f("%v `%v`", err.Err, err.Operand)
}

func (err ErrOperand) Unwrap() error {
	return err.Err
}

// ErrParse locates a parser error.
type ErrParse struct {
	LineNo int
	Err    error
}

func (err *ErrParse) Error() string {
	return f("Error on line %d: %v", err.LineNo, err.Err)
}

func (err *ErrParse) Unwrap() error {
	return err.Err
}

// ErrInstruction locates an encoder error on the instruction that caused it.
type ErrInstruction struct {
	LineNo      int
	Instruction string
	Err         error
}

func (err *ErrInstruction) Error() string {
	return f("Error assembling instruction on line %d: %v: %v", err.LineNo, err.Instruction, err.Err)
}

func (err *ErrInstruction) Unwrap() error {
	return err.Err
}

// ErrBlock locates a constant expansion or origin error.
type ErrBlock struct {
	Block  string
	LineNo int
	Err    error
}

func (err *ErrBlock) Error() string {
	if err.LineNo <= 0 {
		return f("Error: %v: %v", err.Block, err.Err)
	}
	return f("Error on line %d: %v", err.LineNo, err.Err)
}

func (err *ErrBlock) Unwrap() error {
	return err.Err
}
