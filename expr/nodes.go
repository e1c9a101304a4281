package expr

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/leftmike/sqlcoerce/roles"
	"github.com/leftmike/sqlcoerce/sql"
)

type Null struct{}

func (Null) String() string {
	return sql.NullString
}

func (Null) Roles() roles.Set {
	return constRoles
}

func (Null) Type() sql.DataType {
	return sql.NullType
}

type True struct{}

func (True) String() string {
	return sql.TrueString
}

func (True) Roles() roles.Set {
	return constRoles
}

func (True) Type() sql.DataType {
	return sql.BooleanType
}

type False struct{}

func (False) String() string {
	return sql.FalseString
}

func (False) Roles() roles.Set {
	return constRoles
}

func (False) Type() sql.DataType {
	return sql.BooleanType
}

// BindParam is a placeholder for a value supplied when the statement is
// executed. An expanding parameter is replaced by a list of placeholders, one
// per element of its value.
type BindParam struct {
	Name           string
	Value          sql.Value
	DataType       sql.DataType
	Unique         bool
	Expanding      bool
	ExpandingTypes []sql.DataType
}

// NewBindParam converts v to a value and returns a parameter for it; if dt is
// sql.NullType, the type of the value is used.
func NewBindParam(name string, v interface{}, dt sql.DataType, unique bool) (*BindParam,
	error) {

	val, err := sql.ConvertGo(v)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = "param"
	}
	if dt == sql.NullType {
		dt = sql.TypeOf(val)
	}
	return &BindParam{
		Name:     name,
		Value:    val,
		DataType: dt,
		Unique:   unique,
	}, nil
}

// NewExpandingBindParam returns a parameter which will be expanded into a list
// when the statement is executed, for use with IN.
func NewExpandingBindParam(name string, dt sql.DataType) *BindParam {
	return &BindParam{
		Name:      name,
		DataType:  dt,
		Expanding: true,
	}
}

// BindFor returns a parameter for v suitable for comparing against left; the
// parameter takes its name and, unless dt is given, its type from left. If
// left is a tuple, v must be a slice of the same length and a tuple of
// parameters is returned.
func BindFor(left ColumnElement, op Op, v interface{}, dt sql.DataType) (ColumnElement, error) {
	if tup, ok := left.(*Tuple); ok {
		vals, ok := sliceValues(v)
		if !ok || len(vals) != len(tup.Clauses) {
			return nil, fmt.Errorf("expr: expected %d values to compare with %s; got %v",
				len(tup.Clauses), tup, v)
		}
		binds := make([]ColumnElement, len(vals))
		for i, val := range vals {
			var err error
			binds[i], err = BindFor(tup.Clauses[i], op, val, sql.NullType)
			if err != nil {
				return nil, err
			}
		}
		return &Tuple{Clauses: binds}, nil
	}

	var name string
	if k, ok := left.(Keyed); ok {
		name = k.Key()
	}
	if dt == sql.NullType && v != nil {
		dt = left.Type()
	}
	bp, err := NewBindParam(name, v, dt, true)
	if err != nil {
		return nil, err
	}
	return bp, nil
}

func (bp *BindParam) String() string {
	return ":" + bp.Name
}

func (bp *BindParam) Roles() roles.Set {
	return bindRoles
}

func (bp *BindParam) Type() sql.DataType {
	return bp.DataType
}

func (bp *BindParam) Key() string {
	return bp.Name
}

// WithType returns a copy of the parameter with a different type.
func (bp *BindParam) WithType(dt sql.DataType) *BindParam {
	nbp := *bp
	nbp.DataType = dt
	return &nbp
}

// WithExpandingTypes returns a copy of the parameter for use against a tuple
// whose elements have the types dts.
func (bp *BindParam) WithExpandingTypes(dts []sql.DataType) *BindParam {
	nbp := *bp
	nbp.ExpandingTypes = dts
	return &nbp
}

// OffsetLimitParam is an integer parameter for LIMIT or OFFSET.
type OffsetLimitParam struct {
	BindParam
}

func NewOffsetLimitParam(name string, n int64) *OffsetLimitParam {
	if name == "" {
		name = "param"
	}
	return &OffsetLimitParam{
		BindParam{
			Name:     name,
			Value:    sql.Int64Value(n),
			DataType: sql.IntegerType,
			Unique:   true,
		},
	}
}

// TextClause is trusted, literal SQL text.
type TextClause struct {
	Text string
}

func NewText(s string) *TextClause {
	return &TextClause{Text: s}
}

func (tc *TextClause) String() string {
	return tc.Text
}

func (tc *TextClause) Roles() roles.Set {
	return textRoles
}

// Columns turns the text into a SELECT which returns the given columns.
func (tc *TextClause) Columns(cols ...ColumnElement) *TextualSelect {
	return &TextualSelect{Text: tc, Columns: cols}
}

// ColumnClause is a named column which is not necessarily part of a table.
// Literal columns are rendered exactly as named.
type ColumnClause struct {
	Name      string
	Table     FromClause
	IsLiteral bool
	DataType  sql.DataType
}

func NewColumnClause(name string, dt sql.DataType) *ColumnClause {
	return &ColumnClause{Name: name, DataType: dt}
}

func LiteralColumn(text string) *ColumnClause {
	return &ColumnClause{Name: text, IsLiteral: true}
}

// Star is a wildcard column.
func Star() *ColumnClause {
	return LiteralColumn("*")
}

func (cc *ColumnClause) String() string {
	if cc.IsLiteral {
		return cc.Name
	}
	if cc.Table != nil {
		return fmt.Sprintf("%s.%s", cc.Table, quoteName(cc.Name))
	}
	return quoteName(cc.Name)
}

func (cc *ColumnClause) Roles() roles.Set {
	return namedColumnRoles
}

func (cc *ColumnClause) Type() sql.DataType {
	return cc.DataType
}

func (cc *ColumnClause) Key() string {
	return cc.Name
}

// Label names an expression; a label with no name is anonymous.
type Label struct {
	Name    string
	Element ColumnElement
}

func NewLabel(name string, e ColumnElement) *Label {
	return &Label{Name: name, Element: e}
}

func (l *Label) String() string {
	return fmt.Sprintf("%s AS %s", l.Element, quoteName(l.Key()))
}

func (l *Label) Roles() roles.Set {
	return namedColumnRoles
}

func (l *Label) Type() sql.DataType {
	return l.Element.Type()
}

func (l *Label) Key() string {
	if l.Name == "" {
		return "anon"
	}
	return l.Name
}

func (l *Label) OrderByLabelElement() *Label {
	return l
}

// LabelReference refers to a label by name instead of repeating the labeled
// expression.
type LabelReference struct {
	Element *Label
}

func (lr *LabelReference) String() string {
	return quoteName(lr.Element.Key())
}

func (lr *LabelReference) Roles() roles.Set {
	return columnRoles
}

func (lr *LabelReference) Type() sql.DataType {
	return lr.Element.Type()
}

// TextualLabelReference is a string used in GROUP BY or ORDER BY which is
// expected to name a label or column in the columns clause.
type TextualLabelReference struct {
	Text string
}

func (tlr *TextualLabelReference) String() string {
	return tlr.Text
}

func (tlr *TextualLabelReference) Roles() roles.Set {
	return columnRoles
}

func (tlr *TextualLabelReference) Type() sql.DataType {
	return sql.NullType
}

// ClauseList is a list of expressions joined by an operator; NoOp means comma
// separated.
type ClauseList struct {
	Clauses  []Expr
	Operator Op
}

func NewClauseList(clauses ...Expr) *ClauseList {
	return &ClauseList{Clauses: clauses}
}

func (cl *ClauseList) String() string {
	sep := ", "
	if cl.Operator != NoOp {
		sep = fmt.Sprintf(" %s ", cl.Operator)
	}

	var b strings.Builder
	for i, c := range cl.Clauses {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(c.String())
	}
	return b.String()
}

func (cl *ClauseList) Roles() roles.Set {
	return clauseListRoles
}

// SelfGroup returns the list grouped for use as an operand of against.
func (cl *ClauseList) SelfGroup(against Op) *Grouping {
	return &Grouping{Element: cl, Against: against}
}

// InOps annotates the grouping of an empty IN list: Op is the operator to use
// for the comparison and Negate is used in its place when the comparison is
// negated.
type InOps struct {
	Op     Op
	Negate Op
}

// Grouping is a parenthesized expression.
type Grouping struct {
	Element Expr
	Against Op
	InOps   *InOps
}

func (g *Grouping) String() string {
	return fmt.Sprintf("(%s)", g.Element)
}

func (g *Grouping) Roles() roles.Set {
	if _, ok := g.Element.(*ClauseList); ok {
		return columnRoles.Union(roles.Of(roles.InElement))
	}
	return columnRoles
}

func (g *Grouping) Type() sql.DataType {
	if ce, ok := g.Element.(ColumnElement); ok {
		return ce.Type()
	}
	return sql.NullType
}

// Annotate returns a copy of the grouping annotated with in.
func (g *Grouping) Annotate(in InOps) *Grouping {
	ng := *g
	ng.InOps = &in
	return &ng
}

// Tuple is a parenthesized list of column elements which may be compared as a
// unit.
type Tuple struct {
	Clauses []ColumnElement
}

func NewTuple(clauses ...ColumnElement) *Tuple {
	return &Tuple{Clauses: clauses}
}

func (t *Tuple) String() string {
	var b strings.Builder
	b.WriteRune('(')
	for i, c := range t.Clauses {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.String())
	}
	b.WriteRune(')')
	return b.String()
}

func (t *Tuple) Roles() roles.Set {
	return columnRoles.Union(clauseListRoles)
}

func (t *Tuple) Type() sql.DataType {
	return sql.NullType
}

// Types returns the type of each element of the tuple.
func (t *Tuple) Types() []sql.DataType {
	dts := make([]sql.DataType, len(t.Clauses))
	for i, c := range t.Clauses {
		dts[i] = c.Type()
	}
	return dts
}

type Binary struct {
	Op    Op
	Left  Expr
	Right Expr
}

// In returns left IN right; if right is an annotated empty list, the
// comparison uses the empty list operator.
func In(left ColumnElement, right Expr) *Binary {
	op := InOp
	if g, ok := right.(*Grouping); ok && g.InOps != nil {
		op = g.InOps.Op
	}
	return &Binary{Op: op, Left: left, Right: right}
}

func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

func (b *Binary) Roles() roles.Set {
	return columnRoles
}

func (b *Binary) Type() sql.DataType {
	if ops[b.Op].comparison {
		return sql.BooleanType
	}
	if ce, ok := b.Left.(ColumnElement); ok {
		return ce.Type()
	}
	return sql.NullType
}

// Negate returns the negation of a comparison. An annotated empty IN list is
// swapped for its complement.
func (b *Binary) Negate() (*Binary, error) {
	op := b.Op.Negate()
	if op == NoOp {
		return nil, fmt.Errorf("expr: operator %s can not be negated", b.Op)
	}
	right := b.Right
	if g, ok := right.(*Grouping); ok && g.InOps != nil {
		right = g.Annotate(InOps{Op: g.InOps.Negate, Negate: g.InOps.Op})
	}
	return &Binary{Op: op, Left: b.Left, Right: right}, nil
}

// TruncatedLabel is an identifier which is truncated to the maximum length
// allowed by the database when it is rendered.
type TruncatedLabel string

func (tl TruncatedLabel) String() string {
	return string(tl)
}

func (tl TruncatedLabel) Roles() roles.Set {
	return roles.Of(roles.TruncatedLabel)
}

// Truncate returns the label shortened to at most max characters; a
// shortened label ends with a hash of the full label so that distinct labels
// remain distinct.
func (tl TruncatedLabel) Truncate(max int) string {
	if len(tl) <= max {
		return string(tl)
	}

	h := fnv.New32a()
	h.Write([]byte(tl))
	suffix := fmt.Sprintf("_%04x", h.Sum32()&0xFFFF)
	if max <= len(suffix) {
		return suffix[len(suffix)-max:]
	}
	return string(tl[:max-len(suffix)]) + suffix
}
