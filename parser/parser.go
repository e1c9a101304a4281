/*
Package parser parses candidate values: Go literals and expression nodes written as text, for
use from the command line and the console.

	value = NULL | TRUE | FALSE | integer | float | 'string' | x'bytes'
	      | '[' [value {, value}] ']'
	      | column | table '.' column
	      | function '(' [value {, value}] ')'
	      | SELECT '(' value {, value} ')' [FROM value {, value}]

Functions are text, literal_column, column, table, columns, label, alias, subquery, scalar,
tuple, bindparam, expanding, truncated, and convertible. A table declared with table(name, cols)
is remembered, so that later references to name.col use the same table.
*/
package parser

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/leftmike/sqlcoerce/expr"
	"github.com/leftmike/sqlcoerce/parser/scanner"
	"github.com/leftmike/sqlcoerce/parser/token"
	"github.com/leftmike/sqlcoerce/sql"
)

// Tables are the tables known to a parser, by name.
type Tables map[sql.Identifier]*expr.Table

// Convertible is a value which is not a node but converts to one; it stands in for application
// objects which implement expr.Convertible.
type Convertible struct {
	Value interface{}
}

func (c Convertible) SQLExpr() interface{} {
	return c.Value
}

func (c Convertible) String() string {
	return fmt.Sprintf("convertible(%s)", Format(c.Value))
}

type Parser struct {
	scanner   scanner.Scanner
	sctx      scanner.ScanCtx
	unscanned bool
	tables    Tables
}

func NewParser(rr io.RuneReader, fn string, tables Tables) *Parser {
	if tables == nil {
		tables = Tables{}
	}
	p := &Parser{tables: tables}
	p.scanner.Init(rr, fn)
	return p
}

// Parse returns the value, which must be the only thing in the input; io.EOF is returned if the
// input is empty.
func (p *Parser) Parse() (v interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(runtime.Error); ok {
				panic(r)
			}
			err = r.(error)
			v = nil
		}
	}()

	if p.scan() == token.EOF {
		return nil, io.EOF
	}
	p.unscan()

	v = p.parseValue()
	p.expectEOF()
	return
}

// Parse parses s as a single value.
func Parse(s string, tables Tables) (interface{}, error) {
	return NewParser(strings.NewReader(s), "value", tables).Parse()
}

func (p *Parser) error(msg string) {
	panic(fmt.Errorf("parser: %s: %s", p.sctx.Position, msg))
}

func (p *Parser) scan() rune {
	if p.unscanned {
		p.unscanned = false
		return p.sctx.Token
	}

	p.scanner.Scan(&p.sctx)
	if p.sctx.Token == token.Error {
		p.error(p.sctx.Error.Error())
	}
	return p.sctx.Token
}

func (p *Parser) unscan() {
	p.unscanned = true
}

func (p *Parser) got() string {
	switch p.sctx.Token {
	case token.EOF:
		return "end of input"
	case token.Error:
		return fmt.Sprintf("error %s", p.sctx.Error.Error())
	case token.Identifier:
		return fmt.Sprintf("identifier %s", p.sctx.Identifier)
	case token.Reserved:
		return fmt.Sprintf("reserved identifier %s", p.sctx.Identifier)
	case token.String:
		return fmt.Sprintf("string %q", p.sctx.String)
	case token.Bytes:
		return fmt.Sprintf("bytes %v", p.sctx.Bytes)
	case token.Integer:
		return fmt.Sprintf("integer %d", p.sctx.Integer)
	case token.Float:
		return fmt.Sprintf("float %f", p.sctx.Float)
	}

	return fmt.Sprintf("rune %c", p.sctx.Token)
}

func (p *Parser) expectIdentifier(msg string) sql.Identifier {
	t := p.scan()
	if t != token.Identifier {
		p.error(fmt.Sprintf("%s got %s", msg, p.got()))
	}
	return p.sctx.Identifier
}

func (p *Parser) expectString(msg string) string {
	if p.scan() != token.String {
		p.error(fmt.Sprintf("%s got %s", msg, p.got()))
	}
	return p.sctx.String
}

func (p *Parser) expectTokens(tokens ...rune) rune {
	t := p.scan()
	for _, r := range tokens {
		if t == r {
			return r
		}
	}

	var msg string
	if len(tokens) == 1 {
		msg = token.Format(tokens[0])
	} else {
		for i, r := range tokens {
			if i == len(tokens)-1 {
				msg += ", or "
			} else if i > 0 {
				msg += ", "
			}
			msg += token.Format(r)
		}
	}

	p.error(fmt.Sprintf("expected %s got %s", msg, p.got()))
	return 0
}

func (p *Parser) maybeToken(mr rune) bool {
	if p.scan() == mr {
		return true
	}
	p.unscan()
	return false
}

func (p *Parser) optionalReserved(id sql.Identifier) bool {
	if p.scan() == token.Reserved && p.sctx.Identifier == id {
		return true
	}
	p.unscan()
	return false
}

func (p *Parser) expectEOF() {
	if p.scan() != token.EOF {
		p.error(fmt.Sprintf("expected the end of the value got %s", p.got()))
	}
}

func (p *Parser) parseValue() interface{} {
	switch p.scan() {
	case token.Integer:
		return p.sctx.Integer
	case token.Float:
		return p.sctx.Float
	case token.String:
		return p.sctx.String
	case token.Bytes:
		return p.sctx.Bytes
	case token.LBracket:
		vals := []interface{}{}
		if p.maybeToken(token.RBracket) {
			return vals
		}
		for {
			vals = append(vals, p.parseValue())
			if p.expectTokens(token.Comma, token.RBracket) == token.RBracket {
				break
			}
		}
		return vals
	case token.Reserved:
		switch p.sctx.Identifier {
		case sql.NULL:
			return nil
		case sql.TRUE:
			return true
		case sql.FALSE:
			return false
		case sql.SELECT:
			return p.parseSelect()
		}
	case token.Identifier:
		id := p.sctx.Identifier
		if p.maybeToken(token.LParen) {
			return p.parseFunction(id)
		} else if p.maybeToken(token.Dot) {
			return p.tableColumn(id, p.expectIdentifier("expected a column"))
		}
		return expr.NewColumnClause(id.String(), sql.NullType)
	}

	p.error(fmt.Sprintf("expected a value got %s", p.got()))
	return nil
}

// parseValues parses a comma separated list of values up to and including the closing paren.
func (p *Parser) parseValues() []interface{} {
	var vals []interface{}
	if p.maybeToken(token.RParen) {
		return vals
	}
	for {
		vals = append(vals, p.parseValue())
		if p.expectTokens(token.Comma, token.RParen) == token.RParen {
			break
		}
	}
	return vals
}

func (p *Parser) tableColumn(tn, cn sql.Identifier) *expr.Column {
	tbl, ok := p.tables[tn]
	if !ok {
		tbl = expr.NewTable(tn.String())
		p.tables[tn] = tbl
	}
	if col := tbl.C(cn.String()); col != nil {
		return col
	}
	return tbl.AddColumn(cn.String(), sql.NullType)
}

var types = map[sql.Identifier]sql.DataType{
	sql.BOOLEAN: sql.BooleanType,
	sql.BYTES:   sql.BytesType,
	sql.FLOAT:   sql.FloatType,
	sql.INTEGER: sql.IntegerType,
	sql.STRING:  sql.StringType,
}

// optionalType parses [, type] followed by the closing paren.
func (p *Parser) optionalType() sql.DataType {
	dt := sql.NullType
	if p.maybeToken(token.Comma) {
		id := p.expectIdentifier("expected a type")
		var ok bool
		dt, ok = types[id]
		if !ok {
			p.error(fmt.Sprintf("expected a type got %s", id))
		}
	}
	p.expectTokens(token.RParen)
	return dt
}

func (p *Parser) parseFunction(fn sql.Identifier) interface{} {
	switch fn {
	case sql.TEXT:
		// text('sql')
		s := p.expectString("expected sql text")
		p.expectTokens(token.RParen)
		return expr.NewText(s)
	case sql.LITERAL_COLUMN:
		// literal_column('sql')
		s := p.expectString("expected sql text")
		p.expectTokens(token.RParen)
		return expr.LiteralColumn(s)
	case sql.TRUNCATED:
		// truncated('label')
		s := p.expectString("expected a label")
		p.expectTokens(token.RParen)
		return expr.TruncatedLabel(s)
	case sql.COLUMN:
		// column(name [, type])
		nam := p.expectIdentifier("expected a column name")
		return expr.NewColumnClause(nam.String(), p.optionalType())
	case sql.BINDPARAM:
		// bindparam(name [, type])
		nam := p.expectIdentifier("expected a parameter name")
		return &expr.BindParam{Name: nam.String(), DataType: p.optionalType()}
	case sql.EXPANDING:
		// expanding(name [, type])
		nam := p.expectIdentifier("expected a parameter name")
		return expr.NewExpandingBindParam(nam.String(), p.optionalType())
	case sql.TABLE:
		// table(name [, column ...])
		tn := p.expectIdentifier("expected a table name")
		tbl := expr.NewTable(tn.String())
		for p.expectTokens(token.Comma, token.RParen) == token.Comma {
			tbl.AddColumn(p.expectIdentifier("expected a column name").String(), sql.NullType)
		}
		p.tables[tn] = tbl
		return tbl
	case sql.LABEL:
		// label(name, value)
		nam := p.expectIdentifier("expected a label name")
		p.expectTokens(token.Comma)
		ce := p.columnElement(p.parseValue())
		p.expectTokens(token.RParen)
		return expr.NewLabel(nam.String(), ce)
	case sql.ALIAS:
		// alias(value [, name])
		fc := p.fromClause(p.parseValue())
		var nam string
		if p.maybeToken(token.Comma) {
			nam = p.expectIdentifier("expected an alias name").String()
		}
		p.expectTokens(token.RParen)
		return expr.AliasOf(fc, nam, false)
	case sql.SUBQUERY:
		// subquery(select [, name])
		v := p.parseValue()
		var nam string
		if p.maybeToken(token.Comma) {
			nam = p.expectIdentifier("expected a subquery name").String()
		}
		p.expectTokens(token.RParen)
		switch v := v.(type) {
		case *expr.Select:
			return v.Subquery(nam)
		case *expr.TextualSelect:
			return v.Subquery(nam)
		}
		p.error(fmt.Sprintf("expected a select got %s", Format(v)))
	case sql.SCALAR:
		// scalar(select)
		v := p.parseValue()
		p.expectTokens(token.RParen)
		if sel, ok := v.(*expr.Select); ok {
			return sel.ScalarSubquery()
		}
		p.error(fmt.Sprintf("expected a select got %s", Format(v)))
	case sql.COLUMNS:
		// columns(text [, column ...])
		vals := p.parseValues()
		if len(vals) == 0 {
			p.error("expected text")
		}
		tc, ok := vals[0].(*expr.TextClause)
		if !ok {
			p.error(fmt.Sprintf("expected text got %s", Format(vals[0])))
		}
		var cols []expr.ColumnElement
		for _, v := range vals[1:] {
			cols = append(cols, p.columnElement(v))
		}
		return tc.Columns(cols...)
	case sql.TUPLE:
		// tuple(value, ...)
		var cols []expr.ColumnElement
		for _, v := range p.parseValues() {
			cols = append(cols, p.columnElement(v))
		}
		return expr.NewTuple(cols...)
	case sql.CONVERTIBLE:
		// convertible(value)
		v := p.parseValue()
		p.expectTokens(token.RParen)
		return Convertible{Value: v}
	default:
		p.error(fmt.Sprintf("unknown function %s", fn))
	}

	return nil
}

// parseSelect parses SELECT (column, ...) [FROM from, ...].
func (p *Parser) parseSelect() interface{} {
	p.expectTokens(token.LParen)

	var cols []expr.Expr
	for {
		if p.maybeToken(token.Star) {
			cols = append(cols, expr.Star())
		} else {
			v := p.parseValue()
			e, ok := v.(expr.Expr)
			if !ok {
				p.error(fmt.Sprintf("expected a column got %s", Format(v)))
			}
			cols = append(cols, e)
		}
		if p.expectTokens(token.Comma, token.RParen) == token.RParen {
			break
		}
	}

	sel := expr.NewSelect(cols...)
	if p.optionalReserved(sql.FROM) {
		for {
			sel.From = append(sel.From, p.fromClause(p.parseValue()))
			if !p.maybeToken(token.Comma) {
				break
			}
		}
	}
	return sel
}

func (p *Parser) columnElement(v interface{}) expr.ColumnElement {
	ce, ok := v.(expr.ColumnElement)
	if !ok {
		p.error(fmt.Sprintf("expected a column expression got %s", Format(v)))
	}
	return ce
}

func (p *Parser) fromClause(v interface{}) expr.FromClause {
	fc, ok := v.(expr.FromClause)
	if !ok {
		p.error(fmt.Sprintf("expected a table or alias got %s", Format(v)))
	}
	return fc
}

var ops = map[string]expr.Op{
	"=":      expr.EqualOp,
	"==":     expr.EqualOp,
	"!=":     expr.NotEqualOp,
	"<>":     expr.NotEqualOp,
	"<":      expr.LessThanOp,
	"<=":     expr.LessEqualOp,
	">":      expr.GreaterThanOp,
	">=":     expr.GreaterEqualOp,
	"in":     expr.InOp,
	"not-in": expr.NotInOp,
	"not in": expr.NotInOp,
}

// ParseOp returns the comparison operator named by s.
func ParseOp(s string) (expr.Op, error) {
	op, ok := ops[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return expr.NoOp, fmt.Errorf("parser: unknown operator: %s", s)
	}
	return op, nil
}

// Format returns v written the way it would be parsed, where possible.
func Format(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case []byte:
		return fmt.Sprintf("x'%x'", v)
	case []interface{}:
		var b strings.Builder
		b.WriteRune('[')
		for i, e := range v {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(Format(e))
		}
		b.WriteRune(']')
		return b.String()
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprintf("%v", v)
}
