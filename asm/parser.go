package asm

import (
	"io"
	"strings"
)

// operators in longest-match-first order.
var operators = []string{"<<", ">>", "+", "-", "*", "/", "%", "|", "&"}

// options lists the accepted label options.
var options = map[string]bool{
	"org": true,
}

// fail locates err at the current line.
func (s *scanner) fail(err error) error {
	return &ErrParse{LineNo: s.line, Err: err}
}

// operator scans a binary, prefix or suffix operator.
func (s *scanner) operator() (op string, ok bool) {
	s.skipWhitespace()
	for _, op = range operators {
		if s.matchString(op) {
			return op, true
		}
	}
	return "", false
}

// expression scans an operand expression. Binary operators associate to the
// right and have no precedence.
func (s *scanner) expression() (e Expression, err error) {
	s.skipWhitespace()

	if name, ok := s.identifier(); ok {
		e = Constant(name)
	} else if text, ok, serr := s.stringLiteral(); serr != nil {
		return nil, s.fail(serr)
	} else if ok {
		e = Text(text)
	} else if value, ok, nerr := s.number(); nerr != nil {
		return nil, s.fail(nerr)
	} else if ok {
		e = Value(value)
	} else if s.match('(') {
		var inner Expression
		if inner, err = s.group(")"); err != nil {
			return
		}
		e = Parens{X: inner}
	} else if s.match('[') {
		var inner Expression
		if inner, err = s.group("]"); err != nil {
			return
		}
		e = IndirectParens{X: inner}
	} else if op, ok := s.operator(); ok {
		var x Expression
		if x, err = s.expression(); err != nil {
			return
		}
		if x == nil {
			return nil, s.fail(ErrExpectedExpression)
		}
		e = Prefix{Op: op, X: x}
	} else {
		return nil, nil
	}

	if op, ok := s.operator(); ok {
		var right Expression
		if right, err = s.expression(); err != nil {
			return
		}
		if right == nil {
			return Suffix{X: e, Op: op}, nil
		}
		return BinaryOp{Left: e, Op: op, Right: right}, nil
	}

	return e, nil
}

// group scans the inside of a bracket pair up to the closing token.
func (s *scanner) group(closing string) (inner Expression, err error) {
	if inner, err = s.expression(); err != nil {
		return
	}
	if inner == nil {
		return nil, s.fail(ErrExpectedExpression)
	}
	s.skipWhitespace()
	if !s.matchString(closing) {
		return nil, s.fail(ErrExpected(closing))
	}
	return
}

// instruction scans a mnemonic, its comma separated operands and the
// separator after them. It returns nil without consuming input when the
// next token is a label or constant definition.
func (s *scanner) instruction() (ins *Instruction, err error) {
	s.skipCommentsAndWhitespace(true)
	saved := *s
	lineno := s.line

	mnemonic, ok := s.identifier()
	if !ok {
		return
	}

	s.skipWhitespace()
	if c, ok := s.peek(); ok && (c == ':' || c == '=') {
		*s = saved
		return
	}

	var operands []Expression
	for {
		var op Expression
		if op, err = s.expression(); err != nil {
			return
		}
		if op == nil {
			break
		}
		operands = append(operands, op)

		s.skipWhitespace()
		if !s.match(',') {
			break
		}
	}

	if !s.separator() {
		return nil, s.fail(ErrExpectedSeparator)
	}

	return &Instruction{Mnemonic: mnemonic, Operands: operands, LineNo: lineno}, nil
}

func (s *scanner) instructionList() (list []Instruction, err error) {
	s.skipCommentsAndWhitespace(true)

	for {
		var ins *Instruction
		if ins, err = s.instruction(); err != nil || ins == nil {
			return
		}
		list = append(list, *ins)
	}
}

// option scans `name(expression)`.
func (s *scanner) option() (key string, value Expression, ok bool, err error) {
	s.skipCommentsAndWhitespace(true)

	if key, ok = s.identifier(); !ok {
		return
	}
	key = strings.ToLower(key)
	if !options[key] {
		err = s.fail(ErrOptionUnknown(key))
		return
	}

	s.skipWhitespace()
	if !s.match('(') {
		err = s.fail(ErrExpected("("))
		return
	}

	if value, err = s.expression(); err != nil {
		return
	}
	if value == nil {
		err = s.fail(ErrExpectedExpression)
		return
	}

	s.skipWhitespace()
	if !s.match(')') {
		err = s.fail(ErrExpected(")"))
		return
	}

	return
}

// optionList scans a bracketed option list, returning nil when there is
// none.
func (s *scanner) optionList() (opts map[string]Expression, err error) {
	s.skipCommentsAndWhitespace(true)

	if !s.match('[') {
		return
	}

	opts = map[string]Expression{}
	for {
		key, value, ok, oerr := s.option()
		if oerr != nil {
			return nil, oerr
		}
		if !ok {
			break
		}

		s.skipCommentsAndWhitespace(true)
		if _, dup := opts[key]; dup {
			return nil, s.fail(ErrOptionRedefined(key))
		}
		opts[key] = value

		s.skipWhitespace()
		if !s.match(',') {
			break
		}
	}

	s.skipCommentsAndWhitespace(true)
	if !s.match(']') {
		return nil, s.fail(ErrExpected("]"))
	}

	return
}

// label scans an optional option list, a label declaration and the
// instructions that follow it.
func (s *scanner) label(parent string) (label *Label, err error) {
	s.skipCommentsAndWhitespace(true)
	saved := *s
	lineno := s.line

	opts, err := s.optionList()
	if err != nil {
		return
	}

	s.skipCommentsAndWhitespace(true)

	local := false
	if s.match('.') {
		if len(parent) == 0 {
			return nil, s.fail(ErrExpectedParentLabel)
		}
		local = true
	}

	name, ok := s.identifier()
	if !ok {
		*s = saved
		return
	}

	s.skipWhitespace()
	if !s.match(':') {
		*s = saved
		return
	}

	instructions, err := s.instructionList()
	if err != nil {
		return
	}

	label = &Label{
		Name:         name,
		LineNo:       lineno,
		Instructions: instructions,
		Options:      opts,
	}
	if local {
		label.Parent = parent
	}

	return
}

// define scans `name = expression`.
func (s *scanner) define() (name string, value Expression, ok bool, err error) {
	s.skipCommentsAndWhitespace(true)
	saved := *s

	if name, ok = s.identifier(); !ok {
		return
	}

	s.skipWhitespace()
	if !s.match('=') {
		*s = saved
		return "", nil, false, nil
	}

	if value, err = s.expression(); err != nil {
		return
	}
	if value == nil {
		err = s.fail(ErrExpectedExpression)
		return
	}

	if !s.separator() {
		err = s.fail(ErrExpectedSeparator)
		return
	}

	return
}

// program scans labels and constant definitions up to the end of input.
func (s *scanner) program() (prog *Program, err error) {
	prog = &Program{
		Constants: map[string]Expression{},
	}

	parent := ""
	for {
		s.skipCommentsAndWhitespace(true)

		var label *Label
		if label, err = s.label(parent); err != nil {
			return nil, err
		}
		if label != nil {
			prog.Blocks = append(prog.Blocks, *label)
			if !label.Local() {
				parent = label.Name
			}
			continue
		}

		name, value, ok, derr := s.define()
		if derr != nil {
			return nil, derr
		}
		if ok {
			key := strings.ToLower(name)
			if _, dup := prog.Constants[key]; dup {
				return nil, s.fail(ErrConstantRedefined(name))
			}
			prog.Constants[key] = value
			continue
		}

		if !s.atEnd() {
			return nil, s.fail(ErrExpectedLabelOrDefine)
		}

		return prog, nil
	}
}

// ParseString parses assembly source text into a Program.
func ParseString(src string) (prog *Program, err error) {
	return newScanner(src).program()
}

// Parse reads and parses a whole assembly source stream.
func Parse(input io.Reader) (prog *Program, err error) {
	src, err := io.ReadAll(input)
	if err != nil {
		return
	}

	return ParseString(string(src))
}

// ParseExpression parses a single operand expression.
func ParseExpression(src string) (e Expression, err error) {
	s := newScanner(src)
	if e, err = s.expression(); err != nil {
		return
	}
	s.skipCommentsAndWhitespace(true)
	if e == nil || !s.atEnd() {
		return nil, s.fail(ErrExpectedExpression)
	}
	return
}
