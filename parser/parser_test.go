package parser

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/leftmike/sqlcoerce/expr"
	"github.com/leftmike/sqlcoerce/parser/token"
	"github.com/leftmike/sqlcoerce/sql"
	"github.com/leftmike/sqlcoerce/testutil"
)

func TestScan(t *testing.T) {
	s := `select foobar * 123 (,) 'string' "identifier" 456.789 [] x'ff'`
	tokens := []rune{token.Reserved, token.Identifier, token.Star, token.Integer, token.LParen,
		token.Comma, token.RParen, token.String, token.Identifier, token.Float, token.LBracket,
		token.RBracket, token.Bytes, token.EOF}
	p := NewParser(strings.NewReader(s), "scan", nil)
	for _, e := range tokens {
		r := p.scan()
		if e != r {
			t.Errorf("scan(%q) got %s want %s", s, token.Format(r), token.Format(e))
		}
	}

	p = NewParser(strings.NewReader(s), "scan", nil)
	for i := 0; i < len(tokens); i++ {
		if i > 0 {
			p.unscan()
			r := p.scan()
			if tokens[i-1] != r {
				t.Errorf("scan(%q) got %s want %s", s, token.Format(r), token.Format(tokens[i-1]))
			}
		}

		r := p.scan()
		if tokens[i] != r {
			t.Errorf("scan(%q) got %s want %s", s, token.Format(r), token.Format(tokens[i]))
		}
	}
}

func TestParseLiterals(t *testing.T) {
	cases := []struct {
		s string
		v interface{}
	}{
		{"NULL", nil},
		{"true", true},
		{"FALSE", false},
		{"123", int64(123)},
		{"-45", int64(-45)},
		{"2.5", 2.5},
		{"'abc'", "abc"},
		{"'it''s'", "it's"},
		{"x'0102'", []byte{1, 2}},
		{"[]", []interface{}{}},
		{"[1, 'a', null]", []interface{}{int64(1), "a", nil}},
		{"[[1], []]", []interface{}{[]interface{}{int64(1)}, []interface{}{}}},
		{" -- comment\n 7 ", int64(7)},
	}

	for _, c := range cases {
		v, err := Parse(c.s, nil)
		if err != nil {
			t.Errorf("Parse(%q) failed with %s", c.s, err)
		} else if !testutil.DeepEqual(v, c.v) {
			t.Errorf("Parse(%q) got %#v want %#v", c.s, v, c.v)
		}
	}
}

func TestParseNodes(t *testing.T) {
	cases := []struct {
		s   string
		typ string
		ret string
	}{
		{"text('x > 1')", "*expr.TextClause", "x > 1"},
		{"literal_column('a + b')", "*expr.ColumnClause", "a + b"},
		{"abc", "*expr.ColumnClause", "abc"},
		{"\"Mixed Case\"", "*expr.ColumnClause", `"Mixed Case"`},
		{"column(abc, integer)", "*expr.ColumnClause", "abc"},
		{"t.c", "*expr.Column", "t.c"},
		{"table(t, a, b)", "*expr.Table", "t"},
		{"label(total, column(x))", "*expr.Label", "x AS total"},
		{"alias(table(t), u)", "*expr.Alias", "t AS u"},
		{"alias(table(t))", "*expr.Alias", "t AS anon"},
		{"select(a, b)", "*expr.Select", "SELECT a, b"},
		{"select(*) from table(t)", "*expr.Select", "SELECT * FROM t"},
		{"select(t.a) from table(t, a), table(u)", "*expr.Select", "SELECT t.a FROM t, u"},
		{"subquery(select(a), sq)", "*expr.Alias", "(SELECT a) AS sq"},
		{"subquery(columns(text('select 1')))", "*expr.Alias", "(select 1) AS anon"},
		{"scalar(select(a))", "*expr.ScalarSelect", "(SELECT a)"},
		{"columns(text('select a'), a)", "*expr.TextualSelect", "select a"},
		{"tuple(a, b)", "*expr.Tuple", "(a, b)"},
		{"bindparam(p)", "*expr.BindParam", ":p"},
		{"expanding(vals, integer)", "*expr.BindParam", ":vals"},
		{"truncated('a_label')", "expr.TruncatedLabel", "a_label"},
		{"convertible(5)", "parser.Convertible", "convertible(5)"},
		{"convertible(convertible(abc))", "parser.Convertible", "convertible(convertible(abc))"},
	}

	for _, c := range cases {
		v, err := Parse(c.s, nil)
		if err != nil {
			t.Errorf("Parse(%q) failed with %s", c.s, err)
			continue
		}
		if typ := fmt.Sprintf("%T", v); typ != c.typ {
			t.Errorf("Parse(%q) got %s want %s", c.s, typ, c.typ)
		}
		if ret := Format(v); ret != c.ret {
			t.Errorf("Parse(%q) got %s want %s", c.s, ret, c.ret)
		}
	}
}

func TestParseSelectNumber(t *testing.T) {
	// A number is not a node, so it can't be a column of a SELECT.
	_, err := Parse("select(1)", nil)
	if err == nil {
		t.Errorf("Parse(\"select(1)\") did not fail")
	}
}

func TestParseTypes(t *testing.T) {
	v, err := Parse("column(c, float)", nil)
	if err != nil {
		t.Fatalf("Parse(column) failed with %s", err)
	}
	if dt := v.(*expr.ColumnClause).Type(); dt != sql.FloatType {
		t.Errorf("Parse(column).Type() got %s want %s", dt, sql.FloatType)
	}

	v, err = Parse("expanding(vals, string)", nil)
	if err != nil {
		t.Fatalf("Parse(expanding) failed with %s", err)
	}
	bp := v.(*expr.BindParam)
	if !bp.Expanding || bp.DataType != sql.StringType {
		t.Errorf("Parse(expanding) got %#v", bp)
	}

	v, err = Parse("bindparam(p)", nil)
	if err != nil {
		t.Fatalf("Parse(bindparam) failed with %s", err)
	}
	if bp := v.(*expr.BindParam); bp.Expanding || bp.DataType != sql.NullType {
		t.Errorf("Parse(bindparam) got %#v", bp)
	}
}

func TestTables(t *testing.T) {
	tables := Tables{}

	v, err := Parse("table(users, id, name)", tables)
	if err != nil {
		t.Fatalf("Parse(table) failed with %s", err)
	}
	users := v.(*expr.Table)

	v, err = Parse("users.name", tables)
	if err != nil {
		t.Fatalf("Parse(users.name) failed with %s", err)
	}
	if col := v.(*expr.Column); col.Table != users || col != users.C("name") {
		t.Errorf("Parse(users.name) got %v want column of users", col)
	}

	v, err = Parse("users.email", tables)
	if err != nil {
		t.Fatalf("Parse(users.email) failed with %s", err)
	}
	if col := v.(*expr.Column); col.Table != users || len(users.Columns) != 3 {
		t.Errorf("Parse(users.email) did not add a column to users")
	}

	v, err = Parse("orders.id", tables)
	if err != nil {
		t.Fatalf("Parse(orders.id) failed with %s", err)
	}
	if _, ok := tables[sql.ID("orders")]; !ok {
		t.Errorf("Parse(orders.id) did not declare orders")
	}
}

func TestParseFails(t *testing.T) {
	fails := []string{
		"(",
		"[1, 2",
		"[1 2]",
		"1 2",
		"text(abc)",
		"text('abc'",
		"column('abc')",
		"column(abc, decimal)",
		"unknown(1)",
		"label(x, 'abc')",
		"alias(1)",
		"subquery(table(t))",
		"scalar(text('x'))",
		"columns()",
		"columns(1)",
		"tuple(1)",
		"select()",
		"select(a) from 1",
		"t.",
		"t.'c'",
		"where",
		"*",
		"'abc",
		"-x",
	}

	for _, f := range fails {
		v, err := Parse(f, nil)
		if err == nil {
			t.Errorf("Parse(%q) did not fail, got %s", f, Format(v))
		}
	}

	_, err := Parse("", nil)
	if err != io.EOF {
		t.Errorf("Parse(\"\") got %v want io.EOF", err)
	}
	_, err = Parse("  -- nothing", nil)
	if err != io.EOF {
		t.Errorf("Parse(\"  -- nothing\") got %v want io.EOF", err)
	}
}

func TestParseOp(t *testing.T) {
	cases := []struct {
		s  string
		op expr.Op
	}{
		{"=", expr.EqualOp},
		{"<", expr.LessThanOp},
		{"IN", expr.InOp},
		{" not-in ", expr.NotInOp},
		{"not in", expr.NotInOp},
	}

	for _, c := range cases {
		op, err := ParseOp(c.s)
		if err != nil {
			t.Errorf("ParseOp(%q) failed with %s", c.s, err)
		} else if op != c.op {
			t.Errorf("ParseOp(%q) got %s want %s", c.s, op, c.op)
		}
	}

	if _, err := ParseOp("like"); err == nil {
		t.Errorf("ParseOp(\"like\") did not fail")
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		v interface{}
		s string
	}{
		{nil, "NULL"},
		{true, "TRUE"},
		{"it's", "'it''s'"},
		{[]byte{0xab}, "x'ab'"},
		{[]interface{}{int64(1), nil}, "[1, NULL]"},
		{expr.NewText("x"), "x"},
		{3.5, "3.5"},
	}

	for _, c := range cases {
		if s := Format(c.v); s != c.s {
			t.Errorf("Format(%#v) got %s want %s", c.v, s, c.s)
		}
	}
}
