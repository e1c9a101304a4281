package expr

import (
	"fmt"
	"regexp"

	"github.com/lib/pq"

	"github.com/leftmike/sqlcoerce/roles"
	"github.com/leftmike/sqlcoerce/sql"
)

type Op int

const (
	NoOp Op = iota
	AddOp
	AndOp
	ConcatOp
	DivideOp
	EmptyInOp
	EmptyNotInOp
	EqualOp
	GreaterEqualOp
	GreaterThanOp
	InOp
	LessEqualOp
	LessThanOp
	ModuloOp
	MultiplyOp
	NotEqualOp
	NotInOp
	OrOp
	SubtractOp
)

var ops = [...]struct {
	name       string
	precedence int
	negate     Op
	comparison bool
}{
	NoOp:           {"", 11, NoOp, false},
	AddOp:          {"+", 7, NoOp, false},
	AndOp:          {"AND", 2, NoOp, false},
	ConcatOp:       {"||", 10, NoOp, false},
	DivideOp:       {"/", 8, NoOp, false},
	EmptyInOp:      {"IN", 5, EmptyNotInOp, true},
	EmptyNotInOp:   {"NOT IN", 5, EmptyInOp, true},
	EqualOp:        {"==", 4, NotEqualOp, true},
	GreaterEqualOp: {">=", 5, LessThanOp, true},
	GreaterThanOp:  {">", 5, LessEqualOp, true},
	InOp:           {"IN", 5, NotInOp, true},
	LessEqualOp:    {"<=", 5, GreaterThanOp, true},
	LessThanOp:     {"<", 5, GreaterEqualOp, true},
	ModuloOp:       {"%", 8, NoOp, false},
	MultiplyOp:     {"*", 8, NoOp, false},
	NotEqualOp:     {"!=", 4, EqualOp, true},
	NotInOp:        {"NOT IN", 5, InOp, true},
	OrOp:           {"OR", 1, NoOp, false},
	SubtractOp:     {"-", 7, NoOp, false},
}

func (op Op) Precedence() int {
	return ops[op].precedence
}

func (op Op) String() string {
	return ops[op].name
}

// Negate returns the operator which is the logical negation of op, or NoOp
// if there is none.
func (op Op) Negate() Op {
	return ops[op].negate
}

// Expr is a node of an expression tree. Every node declares the set of roles
// it satisfies.
type Expr interface {
	fmt.Stringer
	Roles() roles.Set
}

// ColumnElement is an expression with a type which exposes comparison
// operators; it may be used on either side of a binary expression.
type ColumnElement interface {
	Expr
	Type() sql.DataType
}

// SchemaItem is a node which is part of schema metadata, such as a table or
// one of its columns.
type SchemaItem interface {
	Expr
	schemaItem()
}

// FromClause is a node which may appear in a FROM clause.
type FromClause interface {
	Expr
	fromClause()
}

// Convertible is implemented by objects which are not expression nodes but
// which know how to become one. SQLExpr returns either a node or another
// Convertible.
type Convertible interface {
	SQLExpr() interface{}
}

// Keyed is implemented by nodes which have a string key, such as columns and
// labels.
type Keyed interface {
	Key() string
}

// OrderByLabeler is implemented by nodes which, when used in ORDER BY, should
// be rendered as a reference to a label rather than repeating the expression.
type OrderByLabeler interface {
	OrderByLabelElement() *Label
}

var (
	columnRoles = roles.Of(roles.ColumnArgumentOrKey, roles.StatementOption, roles.WhereHaving,
		roles.BinaryElement, roles.OrderBy, roles.ColumnsClause, roles.LimitOffset,
		roles.DMLColumn, roles.DDLConstraintColumn, roles.DDLExpression)
	constRoles       = columnRoles.Union(roles.Of(roles.ConstExpr))
	bindRoles        = columnRoles.Union(roles.Of(roles.InElement))
	namedColumnRoles = columnRoles.Union(roles.Of(roles.LabeledColumnExpr))
	clauseListRoles  = roles.Of(roles.InElement, roles.OrderBy, roles.ColumnsClause,
		roles.DMLColumn)
	textRoles = roles.Of(roles.DDLConstraintColumn, roles.DDLExpression, roles.StatementOption,
		roles.WhereHaving, roles.OrderBy, roles.BinaryElement, roles.InElement, roles.Statement)
	selectRoles = roles.Of(roles.SelectStatement, roles.DMLSelect, roles.CompoundElement,
		roles.InElement, roles.HasCTE, roles.Statement)
	fromRoles = roles.Of(roles.AnonymizedFromClause)
)

var plainName = regexp.MustCompile(`^[a-z_][a-z0-9_$]*$`)

// quoteName quotes a name unless it is a plain lower case identifier.
func quoteName(s string) string {
	if plainName.MatchString(s) && !sql.IsReservedWord(s) {
		return s
	}
	return pq.QuoteIdentifier(s)
}
