package token

import (
	"fmt"
)

const (
	EOF = -(iota + 1)
	Error
	Identifier
	Reserved
	String
	Bytes
	Integer
	Float
)

const (
	Comma    = ','
	Dot      = '.'
	LParen   = '('
	RParen   = ')'
	LBracket = '['
	RBracket = ']'
	Star     = '*'
)

var names = map[rune]string{
	EOF:        "end of input",
	Error:      "error",
	Identifier: "identifier",
	Reserved:   "reserved keyword",
	String:     "string",
	Bytes:      "bytes",
	Integer:    "integer",
	Float:      "float",
}

func IsPunctuation(r rune) bool {
	switch r {
	case Comma, Dot, LParen, RParen, LBracket, RBracket, Star:
		return true
	}
	return false
}

func Format(r rune) string {
	if r > 0 {
		return fmt.Sprintf("rune %c", r)
	}
	if s, ok := names[r]; ok {
		return s
	}
	return fmt.Sprintf("token %d", r)
}
