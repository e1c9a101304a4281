package coerce

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/leftmike/sqlcoerce/expr"
	"github.com/leftmike/sqlcoerce/flags"
	"github.com/leftmike/sqlcoerce/roles"
	"github.com/leftmike/sqlcoerce/sql"
)

type literalFunc func(cl *call, v interface{}) (interface{}, error)
type implicitFunc func(cl *call, orig, resolved interface{}) (interface{}, error)
type postFunc func(cl *call, resolved expr.Expr) (interface{}, error)

type ruleSet struct {
	role     roles.Role
	literal  literalFunc
	implicit implicitFunc
	post     postFunc

	// Only the literal coercion is used for values which are not nodes; conversion and
	// inspection are skipped.
	stringOnly bool
}

var (
	rules [roles.NumRoles]*ruleSet

	ruleSets = []ruleSet{
		{
			role:     roles.ExpressionElement,
			literal:  expressionLiteral,
			implicit: columnImplicit,
		},
		{
			role:     roles.BinaryElement,
			literal:  binaryLiteral,
			implicit: columnImplicit,
			post:     binaryPost,
		},
		{
			role:     roles.InElement,
			literal:  inLiteral,
			implicit: selectFromImplicit,
			post:     inPost,
		},
		{
			role:     roles.WhereHaving,
			literal:  coerceLiterals{consts: true, text: rejectText}.literal,
			implicit: columnImplicit,
		},
		{
			role:    roles.StatementOption,
			literal: coerceLiterals{consts: true, text: textClause}.literal,
		},
		{
			role:    roles.ColumnArgument,
			literal: noTextCoercion{}.literal,
		},
		{
			role:     roles.ColumnArgumentOrKey,
			literal:  keyLiteral,
			implicit: keyImplicit,
		},
		{
			role:    roles.ColumnList,
			literal: expectedLiteral,
		},
		{
			role:     roles.ByOf,
			literal:  coerceLiterals{consts: true, text: labelReference}.literal,
			implicit: columnImplicit,
		},
		{
			role:     roles.OrderBy,
			literal:  coerceLiterals{consts: true, text: labelReference}.literal,
			implicit: columnImplicit,
			post:     orderByPost,
		},
		{
			role:     roles.DMLColumn,
			literal:  keyLiteral,
			implicit: keyImplicit,
			post:     keyPost,
		},
		{
			role:    roles.ConstExpr,
			literal: constLiteral,
		},
		{
			role:       roles.TruncatedLabel,
			literal:    truncatedLabelLiteral,
			implicit:   truncatedLabelImplicit,
			stringOnly: true,
		},
		{
			role:    roles.Structural,
			literal: expectedLiteral,
		},
		{
			role:    roles.DDLExpression,
			literal: coerceLiterals{consts: true, text: textClause}.literal,
		},
		{
			role:     roles.DDLConstraintColumn,
			literal:  keyLiteral,
			implicit: keyImplicit,
		},
		{
			role:     roles.LimitOffset,
			literal:  limitOffsetLiteral,
			implicit: limitOffsetImplicit,
		},
		{
			role:     roles.LabeledColumnExpr,
			literal:  expressionLiteral,
			implicit: labeledImplicit,
		},
		{
			role: roles.ColumnsClause,
			literal: coerceLiterals{consts: true, numerics: true, star: true,
				text: guessColumn}.literal,
		},
		{
			role:    roles.ReturnsRows,
			literal: expectedLiteral,
		},
		{
			role:    roles.HasCTE,
			literal: expectedLiteral,
		},
		{
			role:    roles.Statement,
			literal: noTextCoercion{textual: true}.literal,
		},
		{
			role:    roles.TextStatement,
			literal: coerceLiterals{text: textClause}.literal,
		},
		{
			role:     roles.SelectStatement,
			literal:  noTextCoercion{textual: true}.literal,
			implicit: textColumnsImplicit,
		},
		{
			role:     roles.FromClause,
			literal:  noTextCoercion{textual: true}.literal,
			implicit: fromImplicit,
		},
		{
			role:     roles.StrictFromClause,
			literal:  noTextCoercion{textual: true}.literal,
			implicit: subqueryImplicit,
		},
		{
			role:     roles.AnonymizedFromClause,
			literal:  noTextCoercion{textual: true}.literal,
			implicit: subqueryImplicit,
			post:     anonymizedPost,
		},
		{
			role:     roles.DMLSelect,
			literal:  noTextCoercion{}.literal,
			implicit: selectFromImplicit,
		},
		{
			role:     roles.CompoundElement,
			literal:  noTextCoercion{}.literal,
			implicit: compoundImplicit,
		},
	}
)

func init() {
	for i := range ruleSets {
		rs := &ruleSets[i]
		if !rs.role.Valid() {
			panic(fmt.Sprintf("coerce: rules for invalid role: %d", rs.role))
		}
		if rules[rs.role] != nil {
			panic(fmt.Sprintf("coerce: rules redefined for role %s", rs.role))
		}
		if rs.literal == nil {
			rs.literal = expectedLiteral
		}
		if rs.implicit == nil {
			rs.implicit = expectedImplicit
		}
		rules[rs.role] = rs
	}

	for _, r := range roles.All() {
		if rules[r] == nil {
			panic(fmt.Sprintf("coerce: no rules for role %s", r))
		}
	}
}

func lookup(role roles.Role) (*ruleSet, error) {
	if !role.Valid() || rules[role] == nil {
		return nil, &RegistryError{Role: role}
	}
	return rules[role], nil
}

func expectedLiteral(cl *call, v interface{}) (interface{}, error) {
	return nil, cl.expected(v)
}

func expectedImplicit(cl *call, orig, resolved interface{}) (interface{}, error) {
	return nil, cl.expected(orig)
}

// Strings are keys; anything else must already satisfy the role.

func keyLiteral(cl *call, v interface{}) (interface{}, error) {
	return v, nil
}

func keyImplicit(cl *call, orig, resolved interface{}) (interface{}, error) {
	if s, ok := orig.(string); ok {
		return s, nil
	}
	return nil, cl.expected(orig)
}

func keyPost(cl *call, resolved expr.Expr) (interface{}, error) {
	if cl.opts.asKey {
		if k, ok := resolved.(expr.Keyed); ok {
			return k.Key(), nil
		}
	}
	return resolved, nil
}

// columnImplicit makes a SELECT, or an alias of a SELECT, a scalar subquery.
func columnImplicit(cl *call, orig, resolved interface{}) (interface{}, error) {
	if cl.c.getFlag(flags.ScalarSubqueryCoercion) {
		switch r := resolved.(type) {
		case *expr.Select:
			cl.c.deprecated(scalarSubqueryDeprecation)
			return r.ScalarSubquery(), nil
		case *expr.Alias:
			if sel, ok := r.Original.(*expr.Select); ok {
				cl.c.deprecated(scalarSubqueryDeprecation)
				return sel.ScalarSubquery(), nil
			}
		}
	}
	return nil, cl.expected(orig)
}

// noTextCoercion rejects every literal; textual is set for roles where a text clause would
// have been acceptable, so that the error can say so.
type noTextCoercion struct {
	textual bool
}

func (ntc noTextCoercion) literal(cl *call, v interface{}) (interface{}, error) {
	if s, ok := v.(string); ok && ntc.textual {
		return nil, cl.noText(s)
	}
	return nil, cl.expected(v)
}

type coerceLiterals struct {
	consts   bool
	numerics bool
	star     bool
	text     func(cl *call, s string) (interface{}, error)
}

func (lits coerceLiterals) literal(cl *call, v interface{}) (interface{}, error) {
	if s, ok := v.(string); ok {
		if lits.star && s == "*" {
			return expr.Star(), nil
		}
		if lits.text == nil {
			return nil, cl.expected(v)
		}
		return lits.text(cl, s)
	}

	if lits.consts {
		switch v {
		case nil:
			return expr.Null{}, nil
		case false:
			return expr.False{}, nil
		case true:
			return expr.True{}, nil
		}
	}

	if lits.numerics && sql.IsNumber(v) {
		return expr.LiteralColumn(numberText(v)), nil
	}

	return nil, cl.expected(v)
}

// numberText renders a number for a literal column; a finite float always shows a decimal
// point, so 5.0 is "5.0" and not "5".
func numberText(v interface{}) string {
	rv := reflect.ValueOf(v)
	bits := 64
	switch rv.Kind() {
	case reflect.Float32:
		bits = 32
	case reflect.Float64:
	default:
		return fmt.Sprintf("%v", v)
	}

	f := rv.Float()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, bits)
	}
	s := strconv.FormatFloat(f, 'f', -1, bits)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func rejectText(cl *call, s string) (interface{}, error) {
	return nil, cl.noText(s)
}

func textClause(cl *call, s string) (interface{}, error) {
	return expr.NewText(s), nil
}

func labelReference(cl *call, s string) (interface{}, error) {
	return &expr.TextualLabelReference{Text: s}, nil
}

var straightColumn = regexp.MustCompile(`(?i)^\w\S*$`)

// guessColumn rejects s, suggesting column if s looks like an identifier and literal_column
// otherwise.
func guessColumn(cl *call, s string) (interface{}, error) {
	fn := "literal_column"
	if straightColumn.MatchString(s) {
		fn = "column"
	}
	e := cl.c.ellipses(s)
	return nil, cl.newError(s,
		fmt.Sprintf("Textual column expression %q %sshould be explicitly declared with text(%q), "+
			"or use %s(%q) for more specificity", e, cl.argument(), e, fn, e))
}

func expressionLiteral(cl *call, v interface{}) (interface{}, error) {
	if v == nil {
		return expr.Null{}, nil
	}
	bp, err := expr.NewBindParam(cl.opts.bindName, v, cl.opts.bindType, true)
	if err != nil {
		return nil, cl.expected(v)
	}
	return bp, nil
}

func binaryLiteral(cl *call, v interface{}) (interface{}, error) {
	ce, err := expr.BindFor(cl.against(), cl.opts.op, v, cl.opts.bindType)
	if err != nil {
		return nil, cl.expected(v)
	}
	return ce, nil
}

// binaryPost gives an untyped parameter the type of the other side of the comparison.
func binaryPost(cl *call, resolved expr.Expr) (interface{}, error) {
	if bp, ok := resolved.(*expr.BindParam); ok && bp.DataType == sql.NullType &&
		cl.opts.against != nil {

		return bp.WithType(cl.opts.against.Type()), nil
	}
	return resolved, nil
}

func inLiteral(cl *call, v interface{}) (interface{}, error) {
	if _, ok := v.(string); ok {
		return nil, cl.expected(v)
	}
	vals, ok := expr.Sequence(v)
	if !ok {
		return nil, cl.expected(v)
	}

	left := cl.against()
	clauses := make([]expr.Expr, 0, len(vals))
	for _, o := range vals {
		switch o := o.(type) {
		case nil:
			clauses = append(clauses, expr.Null{})
		case expr.ColumnElement:
			clauses = append(clauses, o)
		case expr.Expr, expr.Convertible:
			return nil, cl.expected(v)
		default:
			ce, err := expr.BindFor(left, cl.opts.op, o, sql.NullType)
			if err != nil {
				return nil, cl.expected(v)
			}
			clauses = append(clauses, ce)
		}
	}
	return expr.NewClauseList(clauses...), nil
}

func inPost(cl *call, resolved expr.Expr) (interface{}, error) {
	switch r := resolved.(type) {
	case *expr.Select:
		return r.ScalarSubquery(), nil
	case *expr.ClauseList:
		op := expr.InOp
		if cl.opts.op == expr.NotInOp {
			op = expr.NotInOp
		}
		if len(r.Clauses) == 0 && cl.c.getFlag(flags.EmptyInMarkers) {
			in := expr.InOps{Op: expr.EmptyInOp, Negate: expr.EmptyNotInOp}
			if op == expr.NotInOp {
				in = expr.InOps{Op: expr.EmptyNotInOp, Negate: expr.EmptyInOp}
			}
			return r.SelfGroup(in.Op).Annotate(in), nil
		}
		return r.SelfGroup(op), nil
	case *expr.BindParam:
		if r.Expanding {
			if tup, ok := cl.opts.against.(*expr.Tuple); ok {
				return r.WithExpandingTypes(tup.Types()), nil
			}
		}
	}
	return resolved, nil
}

// selectFromImplicit makes a FROM clause a SELECT: the SELECT of a subquery, otherwise
// SELECT * FROM the clause.
func selectFromImplicit(cl *call, orig, resolved interface{}) (interface{}, error) {
	if fc, ok := resolved.(expr.FromClause); ok {
		if a, ok := fc.(*expr.Alias); ok {
			if sel, ok := a.Original.(*expr.Select); ok {
				return sel, nil
			}
		}
		return expr.SelectFrom(fc), nil
	}
	return nil, cl.expected(orig)
}

func orderByPost(cl *call, resolved expr.Expr) (interface{}, error) {
	if obl, ok := resolved.(expr.OrderByLabeler); ok {
		if lbl := obl.OrderByLabelElement(); lbl != nil {
			return &expr.LabelReference{Element: lbl}, nil
		}
	}
	return resolved, nil
}

func constLiteral(cl *call, v interface{}) (interface{}, error) {
	switch v {
	case nil:
		return expr.Null{}, nil
	case false:
		return expr.False{}, nil
	case true:
		return expr.True{}, nil
	}
	return nil, cl.expected(v)
}

func truncatedLabelLiteral(cl *call, v interface{}) (interface{}, error) {
	switch v := v.(type) {
	case expr.TruncatedLabel:
		return v, nil
	case string:
		return expr.TruncatedLabel(v), nil
	}
	return nil, cl.expected(v)
}

func truncatedLabelImplicit(cl *call, orig, resolved interface{}) (interface{}, error) {
	if _, ok := orig.(string); ok {
		return resolved, nil
	}
	return nil, cl.expected(orig)
}

func limitOffsetLiteral(cl *call, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	val, err := sql.ConvertGo(v)
	if err != nil {
		return nil, cl.expected(v)
	}
	n, err := sql.ToInteger(val)
	if err != nil {
		return nil, cl.expected(v)
	}
	return expr.NewOffsetLimitParam(cl.opts.bindName, n), nil
}

func limitOffsetImplicit(cl *call, orig, resolved interface{}) (interface{}, error) {
	if resolved == nil {
		return nil, nil
	}
	return nil, cl.expected(orig)
}

// labeledImplicit labels an expression with an anonymous label.
func labeledImplicit(cl *call, orig, resolved interface{}) (interface{}, error) {
	if ce, ok := resolved.(expr.ColumnElement); ok && ce.Roles().Has(roles.ExpressionElement) {
		return expr.NewLabel("", ce), nil
	}

	n, err := columnImplicit(cl, orig, resolved)
	if err != nil {
		return nil, err
	}
	if ce, ok := n.(expr.ColumnElement); ok && ce.Roles().Has(roles.ExpressionElement) {
		return expr.NewLabel("", ce), nil
	}
	return nil, cl.expected(orig)
}

func textColumnsImplicit(cl *call, orig, resolved interface{}) (interface{}, error) {
	if tc, ok := resolved.(*expr.TextClause); ok {
		return tc.Columns(), nil
	}
	return nil, cl.expected(orig)
}

func fromImplicit(cl *call, orig, resolved interface{}) (interface{}, error) {
	if tc, ok := resolved.(*expr.TextClause); ok {
		return tc, nil
	}
	return subqueryImplicit(cl, orig, resolved)
}

// subqueryImplicit makes a SELECT a subquery, but only if the caller allows it.
func subqueryImplicit(cl *call, orig, resolved interface{}) (interface{}, error) {
	if cl.opts.allowSelect {
		switch r := resolved.(type) {
		case *expr.Select:
			cl.c.deprecated(subqueryDeprecation)
			return r.Subquery(""), nil
		case *expr.TextualSelect:
			cl.c.deprecated(subqueryDeprecation)
			return r.Subquery(""), nil
		}
	}
	return nil, cl.expected(orig)
}

func anonymizedPost(cl *call, resolved expr.Expr) (interface{}, error) {
	if fc, ok := resolved.(expr.FromClause); ok {
		return expr.AliasOf(fc, "", cl.opts.flat), nil
	}
	return resolved, nil
}

func compoundImplicit(cl *call, orig, resolved interface{}) (interface{}, error) {
	if fc, ok := resolved.(expr.FromClause); ok {
		return fc, nil
	}
	return nil, cl.expected(orig)
}
