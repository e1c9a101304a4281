/*
Package coerce checks that values passed to the expression builder satisfy the role required of
them, and coerces those that don't.

A value may already be an expression node, a Go literal (nil, bool, number, string, or slice), or
an object implementing expr.Convertible. Each role has a set of rules: a literal coercion applied
to values which are not nodes, an implicit coercion applied to nodes which don't satisfy the role,
and an optional post coercion applied to nodes which do. Whatever can't be coerced is an
*ArgumentError.
*/
package coerce

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/leftmike/sqlcoerce/config"
	"github.com/leftmike/sqlcoerce/expr"
	"github.com/leftmike/sqlcoerce/flags"
	"github.com/leftmike/sqlcoerce/inspect"
	"github.com/leftmike/sqlcoerce/roles"
	"github.com/leftmike/sqlcoerce/sql"
)

const (
	DefaultPreviewLength = 25
	DefaultMaxUnwrap     = 32
)

// Coercer holds the settings used to coerce values; the zero value uses the defaults. A Coercer
// must not be changed while it is in use.
type Coercer struct {
	// Maximum number of characters of a value shown in an error.
	PreviewLength int

	// Maximum number of SQLExpr calls made to convert a value into a node.
	MaxUnwrap int

	// Deprecation notices are logged at warn level.
	Logger log.FieldLogger

	Flags     flags.Flags
	Inspector *inspect.Registry
}

var Default = New()

func New() *Coercer {
	return &Coercer{
		PreviewLength: DefaultPreviewLength,
		MaxUnwrap:     DefaultMaxUnwrap,
		Logger:        log.StandardLogger(),
		Flags:         flags.Default(),
		Inspector:     inspect.Default,
	}
}

// Config returns a Coercer whose settings are config variables.
func Config(cfg *config.Config) *Coercer {
	c := New()
	c.Flags = flags.Config(cfg)
	cfg.Var(&c.PreviewLength, "preview_length").
		Usage("maximum `length` of a value shown in an error").Min(1).
		Int(DefaultPreviewLength)
	cfg.Var(&c.MaxUnwrap, "max_unwrap").
		Usage("maximum `number` of conversions to unwrap a value").Min(1).
		Int(DefaultMaxUnwrap)
	return c
}

func (c *Coercer) previewLength() int {
	if c.PreviewLength <= 0 {
		return DefaultPreviewLength
	}
	return c.PreviewLength
}

func (c *Coercer) maxUnwrap() int {
	if c.MaxUnwrap <= 0 {
		return DefaultMaxUnwrap
	}
	return c.MaxUnwrap
}

func (c *Coercer) logger() log.FieldLogger {
	if c.Logger == nil {
		return log.StandardLogger()
	}
	return c.Logger
}

func (c *Coercer) getFlag(f flags.Flag) bool {
	if c.Flags == nil {
		return flags.Default().GetFlag(f)
	}
	return c.Flags.GetFlag(f)
}

func (c *Coercer) inspector() *inspect.Registry {
	if c.Inspector == nil {
		return inspect.Default
	}
	return c.Inspector
}

type options struct {
	argName     string
	against     expr.ColumnElement
	op          expr.Op
	bindName    string
	bindType    sql.DataType
	asKey       bool
	allowSelect bool
	flat        bool
}

type Option func(opts *options)

// ArgName names the argument in errors.
func ArgName(name string) Option {
	return func(opts *options) {
		opts.argName = name
	}
}

// Against is the left side of the comparison that the value will be the right side of; it is
// required for BinaryElement and InElement.
func Against(left expr.ColumnElement, op expr.Op) Option {
	return func(opts *options) {
		opts.against = left
		opts.op = op
	}
}

func BindName(name string) Option {
	return func(opts *options) {
		opts.bindName = name
	}
}

func BindType(dt sql.DataType) Option {
	return func(opts *options) {
		opts.bindType = dt
	}
}

// AsKey returns the key of a keyed node rather than the node.
func AsKey() Option {
	return func(opts *options) {
		opts.asKey = true
	}
}

// AllowSelect allows a SELECT to be used as a FROM clause by making it a subquery.
func AllowSelect() Option {
	return func(opts *options) {
		opts.allowSelect = true
	}
}

// Flat is passed through when an anonymous alias is made.
func Flat() Option {
	return func(opts *options) {
		opts.flat = true
	}
}

type call struct {
	c    *Coercer
	role roles.Role
	rs   *ruleSet
	opts options
}

func (cl *call) against() expr.ColumnElement {
	if cl.opts.against == nil {
		panic(fmt.Sprintf("coerce: role %s requires the Against option", cl.role))
	}
	return cl.opts.against
}

// Expect returns v, or v coerced, such that it satisfies role. The result is usually an
// expr.Expr, but may be a string key or nil, depending on the role.
func (c *Coercer) Expect(role roles.Role, v interface{}, opts ...Option) (interface{}, error) {
	rs, err := lookup(role)
	if err != nil {
		return nil, err
	}

	cl := &call{c: c, role: role, rs: rs}
	for _, opt := range opts {
		opt(&cl.opts)
	}

	var resolved interface{}
	if e, ok := v.(expr.Expr); ok {
		resolved = e
	} else {
		resolved, err = cl.resolve(v)
		if err != nil {
			return nil, err
		}
	}

	if e, ok := resolved.(expr.Expr); ok && e.Roles().Has(role) {
		if rs.post != nil {
			return rs.post(cl, e)
		}
		return e, nil
	}
	return rs.implicit(cl, v, resolved)
}

// ExpectAsKey is Expect with string key semantics: strings pass unchanged and keyed nodes
// become their key, for roles which allow keys.
func (c *Coercer) ExpectAsKey(role roles.Role, v interface{}, opts ...Option) (interface{},
	error) {

	return c.Expect(role, v, append(opts, AsKey())...)
}

func (cl *call) resolve(v interface{}) (interface{}, error) {
	if cl.rs.stringOnly {
		return cl.rs.literal(cl, v)
	}

	e, hooked, err := cl.unwrap(v)
	if err != nil {
		return nil, err
	} else if e != nil {
		return e, nil
	}

	if !hooked && cl.role.UsesInspection() {
		if d, ok := cl.c.inspector().Inspect(v); ok {
			e, _, err = cl.unwrap(d)
			if err != nil {
				return nil, err
			} else if e != nil {
				return e, nil
			}
		}
	}

	return cl.rs.literal(cl, v)
}

// unwrap calls SQLExpr until it gets a node or a value which is not convertible; hooked is true
// if SQLExpr was called at least once.
func (cl *call) unwrap(v interface{}) (e expr.Expr, hooked bool, err error) {
	orig := v
	for n := 0; ; n += 1 {
		if e, ok := v.(expr.Expr); ok {
			return e, hooked, nil
		}
		cv, ok := v.(expr.Convertible)
		if !ok {
			return nil, hooked, nil
		}
		if n >= cl.c.maxUnwrap() {
			return nil, true, cl.newError(orig,
				fmt.Sprintf("%s expected %sbut %s did not convert to an expression after %d steps",
					cl.role.Name(), cl.argument(), cl.c.preview(orig), n))
		}
		v = cv.SQLExpr()
		hooked = true
	}
}

func Expect(role roles.Role, v interface{}, opts ...Option) (interface{}, error) {
	return Default.Expect(role, v, opts...)
}

func ExpectAsKey(role roles.Role, v interface{}, opts ...Option) (interface{}, error) {
	return Default.ExpectAsKey(role, v, opts...)
}
