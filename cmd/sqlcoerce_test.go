package cmd

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andreyvit/diff"

	"github.com/leftmike/sqlcoerce/sql"
)

func execute(args ...string) (string, error) {
	expectOpts.against = ""
	expectOpts.op = "="
	expectOpts.argName = ""
	expectOpts.bindName = ""
	expectOpts.allowSelect = false
	expectOpts.flat = false
	expectOpts.asKey = false

	var b bytes.Buffer
	rootCmd.SetOutput(&b)
	rootCmd.SetArgs(append(args, "--log-stderr"))
	err := rootCmd.Execute()
	return b.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute("version")
	if err != nil {
		t.Fatalf("version failed with %s", err)
	}
	if out != sql.Version()+"\n" {
		t.Errorf("version got %q want %q", out, sql.Version()+"\n")
	}
}

func TestExpect(t *testing.T) {
	cases := []struct {
		args []string
		out  string
	}{
		{
			args: []string{"expect", "WhereHaving", "true"},
			out: `+-------------+-------+--------+-----------+
| role        | value | result | type      |
+-------------+-------+--------+-----------+
| WhereHaving | TRUE  | true   | expr.True |
+-------------+-------+--------+-----------+
`,
		},
		{
			args: []string{"expect", "BinaryElement", "5", "--against", "column(x, integer)"},
			out: `+---------------+-------+--------+-----------------+
| role          | value | result | type            |
+---------------+-------+--------+-----------------+
| BinaryElement | 5     | :x     | *expr.BindParam |
+---------------+-------+--------+-----------------+
`,
		},
		{
			args: []string{"expect", "ExpressionElement", "5", "--bind-name", "five"},
			out: `+-------------------+-------+--------+-----------------+
| role              | value | result | type            |
+-------------------+-------+--------+-----------------+
| ExpressionElement | 5     | :five  | *expr.BindParam |
+-------------------+-------+--------+-----------------+
`,
		},
		{
			args: []string{"expect", "DMLColumn", "'name'", "--as-key"},
			out: `+-----------+--------+--------+--------+
| role      | value  | result | type   |
+-----------+--------+--------+--------+
| DMLColumn | 'name' | 'name' | string |
+-----------+--------+--------+--------+
`,
		},
	}

	for _, c := range cases {
		out, err := execute(c.args...)
		if err != nil {
			t.Errorf("%s failed with %s", strings.Join(c.args, " "), err)
		} else if out != c.out {
			t.Errorf("%s got\n%s", strings.Join(c.args, " "), diff.LineDiff(c.out, out))
		}
	}
}

func TestExpectFails(t *testing.T) {
	cases := [][]string{
		{"expect", "WhereHaving"},
		{"expect", "Nope", "1"},
		{"expect", "WhereHaving", "1"},
		{"expect", "WhereHaving", "'x = 1'", "--arg", "whereclause"},
		{"expect", "BinaryElement", "5"},
		{"expect", "BinaryElement", "5", "--against", "5"},
		{"expect", "BinaryElement", "5", "--against", "x", "--op", "like"},
		{"expect", "FromClause", "select(a)"},
		{"roles", "extra"},
		{"expect", "WhereHaving", "true", "--max_unwrap", "0"},
	}

	for _, args := range cases {
		_, err := execute(args...)
		if err == nil {
			t.Errorf("%s did not fail", strings.Join(args, " "))
		}
	}
}

func TestRoles(t *testing.T) {
	out, err := execute("roles")
	if err != nil {
		t.Fatalf("roles failed with %s", err)
	}
	for _, s := range []string{"| ExpressionElement ", "| AnonymizedFromClause ",
		"| StrictFromClause "} {

		if !strings.Contains(out, s) {
			t.Errorf("roles got %s want %s", out, s)
		}
	}
}

func TestServeFails(t *testing.T) {
	_, err := execute("serve", "--host-keys", filepath.Join(t.TempDir(), "missing_id_rsa"))
	if err == nil {
		t.Errorf("serve --host-keys missing_id_rsa did not fail")
	}
}

func configVars(out string) map[string][]string {
	vars := map[string][]string{}
	for _, line := range strings.Split(out, "\n") {
		var fields []string
		for _, f := range strings.Split(line, "|") {
			fields = append(fields, strings.TrimSpace(f))
		}
		if len(fields) == 5 {
			vars[fields[1]] = fields[2:4]
		}
	}
	return vars
}

// TestConfig changes the settings of the coercer, so it must be the last test.
func TestConfig(t *testing.T) {
	out, err := execute("config")
	if err != nil {
		t.Fatalf("config failed with %s", err)
	}
	vars := configVars(out)
	for _, name := range []string{"log-file", "log-level", "max_unwrap", "preview_length",
		"scalar_subquery_coercion", "empty_in_markers"} {

		if _, ok := vars[name]; !ok {
			t.Errorf("config missing %s", name)
		}
	}
	if v := vars["max_unwrap"]; len(v) != 2 || v[0] != "32" || v[1] != "default" {
		t.Errorf("config max_unwrap got %v want [32 default]", v)
	}

	cfgFile := filepath.Join(t.TempDir(), "sqlcoerce.hcl")
	err = ioutil.WriteFile(cfgFile, []byte(`
preview_length = 10
scalar_subquery_coercion = false
`), 0666)
	if err != nil {
		t.Fatal(err)
	}

	out, err = execute("config", "--config-file", cfgFile, "--max_unwrap", "4")
	if err != nil {
		t.Fatalf("config --config-file failed with %s", err)
	}
	vars = configVars(out)
	expected := map[string][]string{
		"preview_length":           {"10", "config"},
		"scalar_subquery_coercion": {"false", "config"},
		"max_unwrap":               {"4", "flag"},
		"empty_in_markers":         {"true", "default"},
	}
	for name, want := range expected {
		if v := vars[name]; len(v) != 2 || v[0] != want[0] || v[1] != want[1] {
			t.Errorf("config %s got %v want %v", name, v, want)
		}
	}

	if coercer.PreviewLength != 10 || coercer.MaxUnwrap != 4 {
		t.Errorf("coercer got %d and %d want 10 and 4", coercer.PreviewLength, coercer.MaxUnwrap)
	}
	_, err = execute("expect", "ExpressionElement", "select(a)")
	if err == nil {
		t.Errorf("expect ExpressionElement select(a) did not fail without scalar subqueries")
	}

	_, err = execute("config", "--config-file", filepath.Join(t.TempDir(), "missing.hcl"))
	if err == nil {
		t.Errorf("config --config-file missing.hcl did not fail")
	}
}
