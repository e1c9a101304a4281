package repl_test

import (
	"bytes"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andreyvit/diff"

	"github.com/leftmike/sqlcoerce/coerce"
	"github.com/leftmike/sqlcoerce/flags"
	"github.com/leftmike/sqlcoerce/repl"
	"github.com/leftmike/sqlcoerce/roles"
	"github.com/leftmike/sqlcoerce/testutil"
)

func TestMain(m *testing.M) {
	flag.Parse()
	testutil.SetupLogger(filepath.Join(os.TempDir(), "sqlcoerce_repl_test.log"))
	os.Exit(m.Run())
}

type lines struct {
	lines []string
}

func (l *lines) ReadLine() (string, error) {
	if len(l.lines) == 0 {
		return "", io.EOF
	}
	s := l.lines[0]
	l.lines = l.lines[1:]
	return s, nil
}

func runRepl(input string) string {
	var b bytes.Buffer
	ses := repl.NewSession(coerce.New())
	repl.Repl(ses, &lines{lines: strings.Split(input, "\n")}, &b)
	return b.String()
}

func TestRepl(t *testing.T) {
	cases := []struct {
		input  string
		output string
	}{
		{
			input: "WhereHaving true",
			output: `+-------------+-------+--------+-----------+
| role        | value | result | type      |
+-------------+-------+--------+-----------+
| WhereHaving | TRUE  | true   | expr.True |
+-------------+-------+--------+-----------+
`,
		},
		{
			input: `BinaryElement 5
\against = column(x, integer)

BinaryElement 5
\against
BinaryElement 5`,
			output: `repl: BinaryElement needs \against to be set
+---------------+-------+--------+-----------------+
| role          | value | result | type            |
+---------------+-------+--------+-----------------+
| BinaryElement | 5     | :x     | *expr.BindParam |
+---------------+-------+--------+-----------------+
repl: BinaryElement needs \against to be set
`,
		},
		{
			input: `\flat
\key
\flat
\quit
\flat`,
			output: `flat on
key on
flat off
`,
		},
		{
			input: `Nope 1
WhereHaving
\nope`,
			output: `repl: unknown role: Nope
repl: expected a value after WhereHaving
repl: unknown command: \nope
`,
		},
		{
			input: `\arg pred
\settings`,
			output: `+--------------------------+-------+
| setting                  | value |
+--------------------------+-------+
| against                  |       |
| arg                      | pred  |
| bind                     |       |
| allow-select             | off   |
| flat                     | off   |
| key                      | off   |
| empty_in_markers         | on    |
| scalar_subquery_coercion | on    |
+--------------------------+-------+
`,
		},
		{
			input: `\flag empty_in_markers
\flag EMPTY_IN_MARKERS
\flag pushdown_where`,
			output: `empty_in_markers off
empty_in_markers on
repl: unknown flag: pushdown_where
`,
		},
	}

	for _, c := range cases {
		output := runRepl(c.input)
		if output != c.output {
			t.Errorf("Repl(%q) got\n%s", c.input, diff.LineDiff(c.output, output))
		}
	}
}

func TestReplErrors(t *testing.T) {
	cases := []struct {
		input string
		msg   string
	}{
		{"WhereHaving 1", "SQL expression for WHERE/HAVING role expected; got 1."},
		{"\\arg pred\nWhereHaving 1",
			`SQL expression for WHERE/HAVING role expected for argument "pred"; got 1.`},
		{"WhereHaving 'x = 1'", `should be explicitly declared as text("x = 1")`},
		{"WhereHaving (", "parser: "},
		{"\\against like x", "parser: unknown operator: like"},
		{"\\against = 5", "repl: expected a column expression; got 5"},
		{"\\columns DMLColumn 5", "repl: expected a list of values; got 5"},
	}

	for _, c := range cases {
		output := runRepl(c.input)
		if !strings.Contains(output, c.msg) {
			t.Errorf("Repl(%q) got %s want %s", c.input, output, c.msg)
		}
	}
}

func TestReplDeprecated(t *testing.T) {
	output := runRepl("ExpressionElement select(a)")
	if !strings.Contains(output, "| (SELECT a) | *expr.ScalarSelect |") {
		t.Errorf("Repl(select) got %s want scalar subquery", output)
	}
	if !strings.Contains(output, "\ndeprecated: coercing SELECT object to scalar subquery") {
		t.Errorf("Repl(select) got %s want deprecation", output)
	}

	output = runRepl("\\flag scalar_subquery_coercion\nExpressionElement select(a)")
	if !strings.Contains(output, "scalar_subquery_coercion off\n") ||
		strings.Contains(output, "ScalarSelect") || !strings.Contains(output, "expected") {

		t.Errorf("Repl(select) with scalar_subquery_coercion off got %s want error", output)
	}

	c := coerce.New()
	ses := repl.NewSession(c)
	repl.Repl(ses, &lines{lines: []string{"\\flag scalar_subquery_coercion"}}, io.Discard)
	if !c.Flags.GetFlag(flags.ScalarSubqueryCoercion) {
		t.Errorf("\\flag in a session changed the coercer's flags")
	}

	output = runRepl("\\allow-select\nFromClause select(a)")
	if !strings.Contains(output, "allow-select on\n") ||
		!strings.Contains(output, "deprecated: Implicit coercion of SELECT") {
		t.Errorf("Repl(FromClause select) got %s want deprecation", output)
	}
}

func TestReplColumns(t *testing.T) {
	output := runRepl("\\columns DDLConstraintColumn ['a', t.b]")
	if strings.Contains(output, "repl:") {
		t.Fatalf("Repl(columns) failed with %s", output)
	}
	for _, s := range []string{"| 'a'   | a    |        | 'a' |", "| t.b   |      | t.b    | t.b |"} {
		if !strings.Contains(output, s) {
			t.Errorf("Repl(columns) got %s want %s", output, s)
		}
	}
}

func TestPrintRoles(t *testing.T) {
	var b bytes.Buffer
	repl.PrintRoles(&b)
	output := b.String()

	if n := strings.Count(output, "\n"); n != int(roles.NumRoles)+4 {
		t.Errorf("PrintRoles() got %d lines want %d", n, int(roles.NumRoles)+4)
	}
	for _, r := range roles.All() {
		if !strings.Contains(output, "| "+r.String()+" ") {
			t.Errorf("PrintRoles() missing %s", r)
		}
	}
	if !strings.Contains(output, "| ColumnsClause, ReturnsRows |") {
		t.Errorf("PrintRoles() missing parents of FromClause")
	}
}
