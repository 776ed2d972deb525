package asm

import (
	"strconv"
	"strings"
)

// scanner is a cursor over assembly source text. It is a plain value:
// copying it takes a snapshot, assigning the copy back restores it.
type scanner struct {
	src  string
	pos  int
	line int
}

func newScanner(src string) *scanner {
	return &scanner{src: src, line: 1}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isBlank(c byte) bool { return c == ' ' || c == '\t' || c == '\r' }

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.src)
}

func (s *scanner) peek() (c byte, ok bool) {
	if s.atEnd() {
		return
	}
	return s.src[s.pos], true
}

func (s *scanner) advance() {
	if s.atEnd() {
		return
	}
	if s.src[s.pos] == '\n' {
		s.line++
	}
	s.pos++
}

// next consumes one character.
func (s *scanner) next() (c byte, ok bool) {
	c, ok = s.peek()
	if ok {
		s.advance()
	}
	return
}

// nextIf consumes one character matching cond.
func (s *scanner) nextIf(cond func(byte) bool) (c byte, ok bool) {
	c, ok = s.peek()
	if !ok || !cond(c) {
		return 0, false
	}
	s.advance()
	return
}

func (s *scanner) skipWhile(cond func(byte) bool) {
	for c, ok := s.peek(); ok && cond(c); c, ok = s.peek() {
		s.advance()
	}
}

func (s *scanner) skipWhitespace() {
	s.skipWhile(isBlank)
}

// skipCommentsAndWhitespace skips blanks and `#` comments. With lineBreaks
// set newlines are skipped too, otherwise the scanner stops on the first
// newline, even one ending a comment.
func (s *scanner) skipCommentsAndWhitespace(lineBreaks bool) {
	inComment := false
	s.skipWhile(func(c byte) bool {
		switch {
		case c == '\n':
			inComment = false
			return lineBreaks
		case inComment:
			return true
		case c == '#':
			inComment = true
			return true
		}
		return isBlank(c)
	})
}

func (s *scanner) match(c byte) bool {
	if p, ok := s.peek(); ok && p == c {
		s.advance()
		return true
	}
	return false
}

func (s *scanner) matchString(str string) bool {
	if strings.HasPrefix(s.src[s.pos:], str) {
		for range len(str) {
			s.advance()
		}
		return true
	}
	return false
}

// identifier scans a name: a letter, `_` or `.` followed by letters,
// digits, `_` and `.`.
func (s *scanner) identifier() (name string, ok bool) {
	s.skipWhitespace()

	start := s.pos
	if _, ok = s.nextIf(func(c byte) bool { return isAlpha(c) || c == '.' }); !ok {
		return
	}
	s.skipWhile(func(c byte) bool { return isAlpha(c) || isDigit(c) || c == '.' })

	return s.src[start:s.pos], true
}

// digits scans a run of digits accepted by cond, ignoring `_` separators.
func (s *scanner) digits(cond func(byte) bool) string {
	var b strings.Builder
	for {
		c, ok := s.nextIf(cond)
		if !ok {
			break
		}
		b.WriteByte(c)
		s.skipWhile(func(c byte) bool { return c == '_' })
	}
	return b.String()
}

// number scans a decimal, `0d` decimal, `0x` hex or `0b` binary literal.
func (s *scanner) number() (value int, ok bool, err error) {
	s.skipWhitespace()
	saved := *s

	base := 10
	cond := isDigit
	prefixed := true
	if s.match('0') {
		switch {
		case s.match('d'):
		case s.match('x'):
			base = 16
			cond = isHex
		case s.match('b'):
			base = 2
			cond = func(c byte) bool { return c == '0' || c == '1' }
		default:
			prefixed = false
			*s = saved
		}
	} else {
		prefixed = false
	}

	text := s.digits(cond)
	if len(text) == 0 {
		*s = saved
		if !prefixed {
			return
		}
		// A bare `0` followed by a letter.
		s.advance()
		return 0, true, nil
	}

	v, perr := strconv.ParseInt(text, base, 64)
	if perr != nil {
		err = ErrOperand{Operand: Constant(text), Err: ErrValueRange}
		return
	}

	return int(v), true, nil
}

// stringLiteral scans a double quoted string.
func (s *scanner) stringLiteral() (text string, ok bool, err error) {
	s.skipWhitespace()

	if !s.match('"') {
		return
	}

	var b strings.Builder
	for {
		c, more := s.next()
		if !more {
			err = ErrStringUnterminated
			return
		}

		switch c {
		case '"':
			return b.String(), true, nil
		case '\\':
			escape, more := s.next()
			if !more {
				err = ErrEscape("")
				return
			}
			switch escape {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case '0':
				b.WriteByte(0)
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case 'u':
				hi, okh := s.nextIf(isHex)
				lo, okl := s.nextIf(isHex)
				if !okh || !okl {
					err = ErrUnicodeEscape
					return
				}
				v, _ := strconv.ParseUint(string([]byte{hi, lo}), 16, 8)
				b.WriteRune(rune(v))
			default:
				err = ErrEscape(string(escape))
				return
			}
		default:
			b.WriteByte(c)
		}
	}
}

// separator consumes one or more instruction separators: newlines, `;` or
// the end of input.
func (s *scanner) separator() bool {
	s.skipCommentsAndWhitespace(false)

	if s.atEnd() {
		return true
	}
	if !s.match('\n') && !s.match(';') {
		return false
	}

	s.skipCommentsAndWhitespace(true)
	s.separator()

	return true
}
