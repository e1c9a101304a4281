package token

import (
	"testing"
)

func TestIsPunctuation(t *testing.T) {
	for r := rune(0); r < 2000; r++ {
		switch r {
		case Comma, Dot, LParen, RParen, LBracket, RBracket, Star:
			if IsPunctuation(r) != true {
				t.Errorf("IsPunctuation('%c') got false want true", r)
			}
		default:
			if IsPunctuation(r) != false {
				t.Errorf("IsPunctuation('%c') got true want false", r)
			}
		}
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		r rune
		s string
	}{
		{EOF, "end of input"},
		{Identifier, "identifier"},
		{Float, "float"},
		{Comma, "rune ,"},
		{LBracket, "rune ["},
		{-100, "token -100"},
	}

	for _, c := range cases {
		if s := Format(c.r); s != c.s {
			t.Errorf("Format(%d) got %s want %s", c.r, s, c.s)
		}
	}
}
