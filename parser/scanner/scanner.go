/*
Package scanner splits the text of a candidate value into tokens. It understands identifiers
(plain, double quoted, or back quoted), single quoted strings with '' for a quote, e'...' strings
with Go style backslash escapes, x'...' hex bytes, signed integers and floats, the punctuation in
package token, and -- comments to the end of the line.
*/
package scanner

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/leftmike/sqlcoerce/parser/token"
	"github.com/leftmike/sqlcoerce/sql"
)

type Position struct {
	Filename string
	Line     int
	Column   int
}

func (pos Position) String() string {
	if pos.Line == 0 {
		return pos.Filename
	}
	return fmt.Sprintf("%s:%d:%d", pos.Filename, pos.Line, pos.Column)
}

// ScanCtx is the result of a single scan: the token and, depending on the token, its value.
type ScanCtx struct {
	Token      rune
	Error      error
	Identifier sql.Identifier
	String     string
	Bytes      []byte
	Integer    int64
	Float      float64
	Position
}

type Scanner struct {
	rr       io.RuneReader
	filename string
	line     int
	column   int
	peeked   bool
	peek     rune
	err      error
	text     strings.Builder
}

func (s *Scanner) Init(rr io.RuneReader, fn string) {
	if s.rr != nil {
		panic("scanner: already initialized")
	}
	s.rr = rr
	s.filename = fn
	s.line = 1
}

// next returns the next rune, token.EOF at the end of input, or token.Error.
func (s *Scanner) next() rune {
	if s.peeked {
		s.peeked = false
		return s.peek
	}

	r, _, err := s.rr.ReadRune()
	if err == io.EOF {
		s.peek = token.EOF
	} else if err != nil {
		s.err = err
		s.peek = token.Error
	} else {
		s.peek = r
		if r == '\n' {
			s.line += 1
			s.column = 0
		} else {
			s.column += 1
		}
	}
	return s.peek
}

// back makes the last rune returned by next be returned again.
func (s *Scanner) back() {
	s.peeked = true
}

func (s *Scanner) Scan(sctx *ScanCtx) {
	s.text.Reset()
	s.err = nil

	r := s.skip()
	sctx.Filename = s.filename
	sctx.Line = s.line
	sctx.Column = s.column
	sctx.Token = s.scan(sctx, r)
	if sctx.Token == token.Error && sctx.Error == nil {
		sctx.Error = s.err
	}
}

// skip passes over whitespace and comments and returns the first rune after them.
func (s *Scanner) skip() rune {
	for {
		r := s.next()
		if unicode.IsSpace(r) {
			continue
		}
		if r != '-' {
			return r
		}
		if s.next() != '-' {
			s.back()
			return '-'
		}
		for r != '\n' && r >= 0 {
			r = s.next()
		}
		if r < 0 {
			return r
		}
	}
}

func (s *Scanner) fail(sctx *ScanCtx, format string, args ...interface{}) rune {
	sctx.Error = fmt.Errorf("scanner: "+format, args...)
	return token.Error
}

func (s *Scanner) scan(sctx *ScanCtx, r rune) rune {
	switch {
	case r == token.EOF || r == token.Error:
		return r
	case r == 'e' || r == 'E' || r == 'x' || r == 'X':
		if s.next() != '\'' {
			s.back()
			return s.scanIdentifier(sctx, r)
		}
		if r == 'x' || r == 'X' {
			return s.scanBytes(sctx)
		}
		return s.scanEscaped(sctx)
	case unicode.IsLetter(r) || r == '_':
		return s.scanIdentifier(sctx, r)
	case unicode.IsDigit(r):
		s.back()
		return s.scanNumber(sctx, false)
	case r == '+' || r == '-':
		if !unicode.IsDigit(s.next()) {
			return s.fail(sctx, "expected a number after '%c'", r)
		}
		s.back()
		return s.scanNumber(sctx, r == '-')
	case r == '"' || r == '`':
		body, ok := s.quoted(r, false)
		if !ok {
			return s.fail(sctx, "quoted identifier missing terminating '%c'", r)
		}
		sctx.Identifier = sql.QuotedID(body)
		return token.Identifier
	case r == '\'':
		body, ok := s.quoted('\'', false)
		if !ok {
			return s.fail(sctx, "string missing terminating \"'\"")
		}
		sctx.String = body
		return token.String
	case token.IsPunctuation(r):
		return r
	}
	return s.fail(sctx, "unexpected character '%c'", r)
}

// quoted reads up to the closing delim; a doubled delim stands for itself. With escapes, a
// backslash keeps the rune after it, including a delim, for later decoding.
func (s *Scanner) quoted(delim rune, escapes bool) (string, bool) {
	for {
		r := s.next()
		if r < 0 {
			return "", false
		}
		if escapes && r == '\\' {
			s.text.WriteRune(r)
			r = s.next()
			if r < 0 {
				return "", false
			}
		} else if r == delim {
			if s.next() != delim {
				s.back()
				return s.text.String(), true
			}
			if escapes {
				s.text.WriteRune('\\')
			}
		}
		s.text.WriteRune(r)
	}
}

func (s *Scanner) scanIdentifier(sctx *ScanCtx, r rune) rune {
	for unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$' {
		s.text.WriteRune(r)
		r = s.next()
	}
	if r == token.Error {
		return token.Error
	}
	s.back()

	sctx.Identifier = sql.ID(s.text.String())
	if sctx.Identifier.IsReserved() {
		return token.Reserved
	}
	return token.Identifier
}

func (s *Scanner) scanNumber(sctx *ScanCtx, neg bool) rune {
	if neg {
		s.text.WriteRune('-')
	}
	float := false
	for {
		r := s.next()
		if r == '.' && !float {
			float = true
		} else if !unicode.IsDigit(r) {
			if r == token.Error {
				return token.Error
			}
			s.back()
			break
		}
		s.text.WriteRune(r)
	}

	var err error
	if float {
		sctx.Float, err = strconv.ParseFloat(s.text.String(), 64)
	} else {
		sctx.Integer, err = strconv.ParseInt(s.text.String(), 10, 64)
	}
	if err != nil {
		sctx.Error = err
		return token.Error
	}
	if float {
		return token.Float
	}
	return token.Integer
}

func (s *Scanner) scanBytes(sctx *ScanCtx) rune {
	body, ok := s.quoted('\'', false)
	if !ok {
		return s.fail(sctx, "bytes missing terminating \"'\"")
	}
	b, err := hex.DecodeString(body)
	if err != nil {
		return s.fail(sctx, "bad bytes x'%s': %s", body, err)
	}
	sctx.Bytes = b
	return token.Bytes
}

func (s *Scanner) scanEscaped(sctx *ScanCtx) rune {
	body, ok := s.quoted('\'', true)
	if !ok {
		return s.fail(sctx, "string missing terminating \"'\"")
	}

	var sb strings.Builder
	for body != "" {
		r, _, tail, err := strconv.UnquoteChar(body, '\'')
		if err != nil {
			return s.fail(sctx, "bad escape in e'%s'", body)
		}
		sb.WriteRune(r)
		body = tail
	}
	sctx.String = sb.String()
	return token.String
}
