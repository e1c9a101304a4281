package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leftmike/sqlcoerce/coerce"
	"github.com/leftmike/sqlcoerce/expr"
	"github.com/leftmike/sqlcoerce/parser"
	"github.com/leftmike/sqlcoerce/repl"
	"github.com/leftmike/sqlcoerce/roles"
)

var (
	expectCmd = &cobra.Command{
		Use:   "expect ROLE VALUE",
		Short: "Coerce a value for a role",
		Long: "Coerce a value for a role and print the result. The value is written the way " +
			"the console reads it: literals such as 1, 'abc', null, or [1, 2], identifiers " +
			"such as name or t.name, and constructors such as text('x > 1') or select(a).",
		Args: cobra.MinimumNArgs(2),
		RunE: expectRun,
	}

	expectOpts struct {
		against     string
		op          string
		argName     string
		bindName    string
		allowSelect bool
		flat        bool
		asKey       bool
	}
)

func init() {
	fs := expectCmd.Flags()
	fs.StringVar(&expectOpts.against, "against", "",
		"`expression` on the left side of a comparison")
	fs.StringVar(&expectOpts.op, "op", "=", "comparison `operator`")
	fs.StringVar(&expectOpts.argName, "arg", "", "argument `name` to use in errors")
	fs.StringVar(&expectOpts.bindName, "bind-name", "", "`name` of bound parameters")
	fs.BoolVar(&expectOpts.allowSelect, "allow-select", false,
		"allow a SELECT to be used as a FROM clause")
	fs.BoolVar(&expectOpts.flat, "flat", false, "use flat anonymous aliases")
	fs.BoolVar(&expectOpts.asKey, "as-key", false, "return keys instead of keyed expressions")

	rootCmd.AddCommand(expectCmd)
}

func expectRun(cmd *cobra.Command, args []string) error {
	role, ok := roles.Lookup(args[0])
	if !ok {
		return fmt.Errorf("sqlcoerce: unknown role: %s", args[0])
	}

	tables := parser.Tables{}
	var opts []coerce.Option
	if expectOpts.against != "" {
		op, err := parser.ParseOp(expectOpts.op)
		if err != nil {
			return err
		}
		v, err := parser.Parse(expectOpts.against, tables)
		if err != nil {
			return err
		}
		ce, ok := v.(expr.ColumnElement)
		if !ok {
			return fmt.Errorf("sqlcoerce: expected a column expression for --against; got %s",
				parser.Format(v))
		}
		opts = append(opts, coerce.Against(ce, op))
	} else if role == roles.BinaryElement || role == roles.InElement {
		return fmt.Errorf("sqlcoerce: %s needs --against", role)
	}
	if expectOpts.argName != "" {
		opts = append(opts, coerce.ArgName(expectOpts.argName))
	}
	if expectOpts.bindName != "" {
		opts = append(opts, coerce.BindName(expectOpts.bindName))
	}
	if expectOpts.allowSelect {
		opts = append(opts, coerce.AllowSelect())
	}
	if expectOpts.flat {
		opts = append(opts, coerce.Flat())
	}
	if expectOpts.asKey {
		opts = append(opts, coerce.AsKey())
	}

	v, err := parser.Parse(strings.Join(args[1:], " "), tables)
	if err == io.EOF {
		return fmt.Errorf("sqlcoerce: expected a value after %s", role)
	} else if err != nil {
		return err
	}

	ret, err := coercer.Expect(role, v, opts...)
	if err != nil {
		return err
	}
	repl.PrintResult(cmd.OutOrStdout(), role, v, ret)
	return nil
}
