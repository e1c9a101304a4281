package repl

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"

	"github.com/leftmike/sqlcoerce/coerce"
	"github.com/leftmike/sqlcoerce/expr"
	"github.com/leftmike/sqlcoerce/flags"
	"github.com/leftmike/sqlcoerce/parser"
	"github.com/leftmike/sqlcoerce/roles"
)

type LineReader interface {
	ReadLine() (string, error)
}

// noticeHook collects deprecation notices so that they can be shown with the result which
// caused them.
type noticeHook struct {
	notices []string
}

func (nh *noticeHook) Levels() []log.Level {
	return []log.Level{log.WarnLevel}
}

func (nh *noticeHook) Fire(e *log.Entry) error {
	if e.Data["deprecated"] == true {
		nh.notices = append(nh.notices, e.Message)
	}
	return nil
}

// Session is the state of a console: the coercer, the tables declared so far, and the options
// passed to each coercion. The session has its own copy of the coercer's flags.
type Session struct {
	coercer coerce.Coercer
	hook    noticeHook
	Tables  parser.Tables

	argName     string
	against     expr.ColumnElement
	op          expr.Op
	bindName    string
	allowSelect bool
	flat        bool
	asKey       bool
}

func NewSession(c *coerce.Coercer) *Session {
	ses := &Session{
		coercer: *c,
		Tables:  parser.Tables{},
	}
	if c.Flags == nil {
		ses.coercer.Flags = flags.Default()
	} else {
		ses.coercer.Flags = append(flags.Flags(nil), c.Flags...)
	}

	std := log.StandardLogger()
	lg := log.New()
	lg.SetOutput(std.Out)
	lg.SetFormatter(std.Formatter)
	lvl := std.GetLevel()
	if lvl < log.WarnLevel {
		lvl = log.WarnLevel
	}
	lg.SetLevel(lvl)
	lg.AddHook(&ses.hook)
	ses.coercer.Logger = lg

	return ses
}

func (ses *Session) options() []coerce.Option {
	var opts []coerce.Option
	if ses.argName != "" {
		opts = append(opts, coerce.ArgName(ses.argName))
	}
	if ses.against != nil {
		opts = append(opts, coerce.Against(ses.against, ses.op))
	}
	if ses.bindName != "" {
		opts = append(opts, coerce.BindName(ses.bindName))
	}
	if ses.allowSelect {
		opts = append(opts, coerce.AllowSelect())
	}
	if ses.flat {
		opts = append(opts, coerce.Flat())
	}
	if ses.asKey {
		opts = append(opts, coerce.AsKey())
	}
	return opts
}

// Repl reads lines from lr until the end of input or \quit. A line is either a role followed by
// a value, which is coerced and the result printed, or a command starting with a backslash.
func Repl(ses *Session, lr LineReader, w io.Writer) {
	for {
		line, err := lr.ReadLine()
		if err == io.EOF {
			return
		} else if err != nil {
			fmt.Fprintln(w, err)
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line[0] == '\\' {
			quit, err := ses.command(line[1:], w)
			if err != nil {
				fmt.Fprintln(w, err)
			}
			if quit {
				return
			}
			continue
		}

		err = ses.Expect(line, w)
		if err != nil {
			fmt.Fprintln(w, err)
		}
	}
}

// splitWord returns the first word of s and the rest of s.
func splitWord(s string) (string, string) {
	s = strings.TrimSpace(s)
	idx := strings.IndexFunc(s, unicode.IsSpace)
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimSpace(s[idx:])
}

func (ses *Session) parseRoleValue(s string) (roles.Role, interface{}, error) {
	tag, rest := splitWord(s)
	role, ok := roles.Lookup(tag)
	if !ok {
		return 0, nil, fmt.Errorf("repl: unknown role: %s", tag)
	}
	if (role == roles.BinaryElement || role == roles.InElement) && ses.against == nil {
		return 0, nil, fmt.Errorf("repl: %s needs \\against to be set", role)
	}

	v, err := parser.Parse(rest, ses.Tables)
	if err == io.EOF {
		return 0, nil, fmt.Errorf("repl: expected a value after %s", role)
	} else if err != nil {
		return 0, nil, err
	}
	return role, v, nil
}

func newTable(w io.Writer, headers ...string) *tablewriter.Table {
	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetHeader(headers)
	return tw
}

func (ses *Session) printNotices(w io.Writer) {
	for _, n := range ses.hook.notices {
		fmt.Fprintf(w, "deprecated: %s\n", n)
	}
	ses.hook.notices = nil
}

// Expect coerces the value in s, which is a role followed by a value, and prints the result.
func (ses *Session) Expect(s string, w io.Writer) error {
	role, v, err := ses.parseRoleValue(s)
	if err != nil {
		return err
	}

	ret, err := ses.coercer.Expect(role, v, ses.options()...)
	if err != nil {
		ses.printNotices(w)
		return err
	}

	PrintResult(w, role, v, ret)
	ses.printNotices(w)
	return nil
}

// PrintResult prints a table of the role, the value, and what the value was coerced to.
func PrintResult(w io.Writer, role roles.Role, v, ret interface{}) {
	tw := newTable(w, "role", "value", "result", "type")
	tw.Append([]string{role.String(), parser.Format(v), parser.Format(ret),
		fmt.Sprintf("%T", ret)})
	tw.Render()
}

// Columns coerces each of the values in the list in s, which is a role followed by a list, and
// prints the column and key of each.
func (ses *Session) Columns(s string, w io.Writer) error {
	role, v, err := ses.parseRoleValue(s)
	if err != nil {
		return err
	}
	vals, ok := expr.Sequence(v)
	if !ok {
		return fmt.Errorf("repl: expected a list of values; got %s", parser.Format(v))
	}

	tw := newTable(w, "value", "name", "column", "key")
	it := ses.coercer.ExpectColumns(role, vals)
	for idx := 0; it.Next(); idx += 1 {
		ent := it.Entry()
		var col string
		if ent.Column != nil {
			col = ent.Column.String()
		}
		tw.Append([]string{parser.Format(vals[idx]), ent.Name, col, parser.Format(ent.Key)})
	}
	if err := it.Err(); err != nil {
		ses.printNotices(w)
		return err
	}
	tw.Render()
	ses.printNotices(w)
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (ses *Session) command(line string, w io.Writer) (bool, error) {
	cmd, rest := splitWord(line)
	switch strings.ToLower(cmd) {
	case "q", "quit":
		return true, nil
	case "against":
		// \against [op value]
		if rest == "" {
			ses.against = nil
			ses.op = expr.NoOp
			return false, nil
		}
		opName, val := splitWord(rest)
		op, err := parser.ParseOp(opName)
		if err != nil {
			return false, err
		}
		v, err := parser.Parse(val, ses.Tables)
		if err != nil {
			return false, err
		}
		ce, ok := v.(expr.ColumnElement)
		if !ok {
			return false, fmt.Errorf("repl: expected a column expression; got %s",
				parser.Format(v))
		}
		ses.against = ce
		ses.op = op
	case "arg":
		ses.argName = rest
	case "bind":
		ses.bindName = rest
	case "allow-select":
		ses.allowSelect = !ses.allowSelect
		fmt.Fprintf(w, "allow-select %s\n", onOff(ses.allowSelect))
	case "flat":
		ses.flat = !ses.flat
		fmt.Fprintf(w, "flat %s\n", onOff(ses.flat))
	case "key":
		ses.asKey = !ses.asKey
		fmt.Fprintf(w, "key %s\n", onOff(ses.asKey))
	case "flag":
		// \flag name
		f, ok := flags.LookupFlag(rest)
		if !ok {
			return false, fmt.Errorf("repl: unknown flag: %s", rest)
		}
		b := !ses.coercer.Flags.GetFlag(f)
		ses.coercer.Flags.SetFlag(f, b)
		fmt.Fprintf(w, "%s %s\n", strings.ToLower(rest), onOff(b))
	case "columns":
		return false, ses.Columns(rest, w)
	case "roles":
		PrintRoles(w)
	case "settings":
		ses.printSettings(w)
	case "help", "?":
		fmt.Fprint(w, help)
	default:
		return false, fmt.Errorf("repl: unknown command: \\%s", cmd)
	}
	return false, nil
}

func (ses *Session) printSettings(w io.Writer) {
	against := ""
	if ses.against != nil {
		against = fmt.Sprintf("%s %s", ses.op, ses.against)
	}

	tw := newTable(w, "setting", "value")
	tw.AppendBulk([][]string{
		{"against", against},
		{"arg", ses.argName},
		{"bind", ses.bindName},
		{"allow-select", onOff(ses.allowSelect)},
		{"flat", onOff(ses.flat)},
		{"key", onOff(ses.asKey)},
	})
	flags.ListFlags(func(nam string, f flags.Flag) {
		tw.Append([]string{nam, onOff(ses.coercer.Flags.GetFlag(f))})
	})
	tw.Render()
}

// PrintRoles prints a table of every role.
func PrintRoles(w io.Writer) {
	tw := newTable(w, "role", "name", "refines", "inspection")
	for _, r := range roles.All() {
		var parents []string
		for _, p := range r.Parents() {
			parents = append(parents, p.String())
		}
		tw.Append([]string{r.String(), r.Name(), strings.Join(parents, ", "),
			onOff(r.UsesInspection())})
	}
	tw.Render()
}

const help = `<role> <value>            coerce value for role
\columns <role> <list>    coerce each value of list as a column
\against [<op> <value>]   set or clear the left side of comparisons
\arg [<name>]             set or clear the argument name used in errors
\bind [<name>]            set or clear the name of bound parameters
\allow-select             toggle allowing a SELECT as a FROM clause
\flat                     toggle flat anonymous aliases
\key                      toggle returning keys instead of keyed nodes
\flag <name>              toggle a coercion flag
\roles                    list the roles
\settings                 show the settings
\quit                     exit
`
