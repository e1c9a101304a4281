package coerce

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/leftmike/sqlcoerce/roles"
)

const (
	scalarSubqueryDeprecation = "coercing SELECT object to scalar subquery in a " +
		"column-expression context is deprecated; please use the ScalarSubquery() method to " +
		"produce a scalar subquery. This automatic coercion will be removed in a future release."
	subqueryDeprecation = "Implicit coercion of SELECT and textual SELECT constructs into " +
		"FROM clauses is deprecated; please call Subquery() on any SELECT in order to produce " +
		"a subquery object."
)

// ArgumentError is returned when a value can not be used in a role.
type ArgumentError struct {
	Role    roles.Role
	ArgName string
	Value   interface{}
	Msg     string
}

func (e *ArgumentError) Error() string {
	return e.Msg
}

// RegistryError is returned when there are no rules for a role; it is a defect in the caller,
// not a problem with the value.
type RegistryError struct {
	Role roles.Role
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("coerce: no rules registered for role %s", e.Role)
}

func (c *Coercer) preview(v interface{}) string {
	var s string
	switch v := v.(type) {
	case nil:
		s = "nil"
	case string:
		return strconv.Quote(c.ellipses(v))
	case fmt.Stringer:
		s = v.String()
	default:
		s = fmt.Sprintf("%#v", v)
	}
	return c.ellipses(s)
}

func (c *Coercer) ellipses(s string) string {
	n := c.previewLength()
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

func (cl *call) argument() string {
	if cl.opts.argName == "" {
		return ""
	}
	return fmt.Sprintf("for argument %q ", cl.opts.argName)
}

func (cl *call) newError(v interface{}, msg string) error {
	return &ArgumentError{
		Role:    cl.role,
		ArgName: cl.opts.argName,
		Value:   v,
		Msg:     msg,
	}
}

// expected is the error for a value which can not be coerced to the role.
func (cl *call) expected(v interface{}) error {
	if cl.opts.argName != "" {
		return cl.newError(v, fmt.Sprintf("%s expected for argument %q; got %s.", cl.role.Name(),
			cl.opts.argName, cl.c.preview(v)))
	}
	return cl.newError(v, fmt.Sprintf("%s expected; got %s.", cl.role.Name(), cl.c.preview(v)))
}

// noText is the error for a string which must be explicitly declared as text.
func (cl *call) noText(s string) error {
	e := cl.c.ellipses(s)
	return cl.newError(s,
		fmt.Sprintf("Textual SQL expression %q %sshould be explicitly declared as text(%q)",
			e, cl.argument(), e))
}

func (c *Coercer) deprecated(msg string) {
	c.logger().WithField("deprecated", true).Warn(msg)
}
