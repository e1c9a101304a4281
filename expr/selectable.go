package expr

import (
	"fmt"
	"strings"

	"github.com/leftmike/sqlcoerce/roles"
	"github.com/leftmike/sqlcoerce/sql"
)

type Table struct {
	Name    sql.TableName
	Columns []*Column
}

// NewTable returns a table with untyped columns named cols.
func NewTable(name string, cols ...string) *Table {
	tbl := &Table{Name: sql.TableName{Table: sql.ID(name)}}
	for _, col := range cols {
		tbl.Columns = append(tbl.Columns, &Column{Name: sql.ID(col), Table: tbl})
	}
	return tbl
}

func (tbl *Table) String() string {
	return tbl.Name.String()
}

func (tbl *Table) Roles() roles.Set {
	return fromRoles
}

func (*Table) schemaItem() {}
func (*Table) fromClause() {}

// C returns the named column or nil.
func (tbl *Table) C(name string) *Column {
	id := sql.ID(name)
	for _, col := range tbl.Columns {
		if col.Name == id {
			return col
		}
	}
	return nil
}

// AddColumn adds a typed column to the table and returns it.
func (tbl *Table) AddColumn(name string, dt sql.DataType) *Column {
	col := &Column{Name: sql.ID(name), Table: tbl, DataType: dt}
	tbl.Columns = append(tbl.Columns, col)
	return col
}

// Column is a column of a table.
type Column struct {
	Name     sql.Identifier
	Table    *Table
	DataType sql.DataType
}

func (col *Column) String() string {
	if col.Table != nil {
		return fmt.Sprintf("%s.%s", col.Table, quoteName(col.Name.String()))
	}
	return quoteName(col.Name.String())
}

func (col *Column) Roles() roles.Set {
	return namedColumnRoles
}

func (col *Column) Type() sql.DataType {
	return col.DataType
}

func (col *Column) Key() string {
	return col.Name.String()
}

func (*Column) schemaItem() {}

type Select struct {
	Columns []Expr
	From    []FromClause
	Where   Expr
}

func NewSelect(cols ...Expr) *Select {
	return &Select{Columns: cols}
}

// SelectFrom returns SELECT * FROM fc.
func SelectFrom(fc FromClause) *Select {
	return &Select{Columns: []Expr{Star()}, From: []FromClause{fc}}
}

func (sel *Select) String() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	for i, col := range sel.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(col.String())
	}
	if len(sel.From) > 0 {
		b.WriteString(" FROM ")
		for i, fc := range sel.From {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(fc.String())
		}
	}
	if sel.Where != nil {
		fmt.Fprintf(&b, " WHERE %s", sel.Where)
	}
	return b.String()
}

func (sel *Select) Roles() roles.Set {
	return selectRoles
}

// ScalarSubquery returns the SELECT for use as a column expression.
func (sel *Select) ScalarSubquery() *ScalarSelect {
	return &ScalarSelect{Element: sel}
}

// Subquery returns the SELECT for use in a FROM clause.
func (sel *Select) Subquery(name string) *Alias {
	return &Alias{Original: sel, Name: name}
}

// ScalarSelect is a SELECT returning a single value.
type ScalarSelect struct {
	Element *Select
}

func (ss *ScalarSelect) String() string {
	return fmt.Sprintf("(%s)", ss.Element)
}

func (ss *ScalarSelect) Roles() roles.Set {
	return columnRoles.Union(roles.Of(roles.InElement))
}

func (ss *ScalarSelect) Type() sql.DataType {
	if len(ss.Element.Columns) > 0 {
		if ce, ok := ss.Element.Columns[0].(ColumnElement); ok {
			return ce.Type()
		}
	}
	return sql.NullType
}

// TextualSelect is a textual SELECT with known result columns.
type TextualSelect struct {
	Text    *TextClause
	Columns []ColumnElement
}

func (ts *TextualSelect) String() string {
	return ts.Text.String()
}

func (ts *TextualSelect) Roles() roles.Set {
	return selectRoles
}

// Subquery returns the textual SELECT for use in a FROM clause.
func (ts *TextualSelect) Subquery(name string) *Alias {
	return &Alias{Original: ts, Name: name}
}

// Alias names a FROM clause or a SELECT; when the original is a SELECT, the
// alias is a subquery. An alias with no name is anonymous.
type Alias struct {
	Original Expr
	Name     string
	Flat     bool
}

// AliasOf returns an alias of fc; an anonymous alias of an alias is the alias
// itself.
func AliasOf(fc FromClause, name string, flat bool) *Alias {
	if a, ok := fc.(*Alias); ok && name == "" {
		return a
	}
	return &Alias{Original: fc, Name: name, Flat: flat}
}

func (a *Alias) String() string {
	if a.IsSubquery() {
		return fmt.Sprintf("(%s) AS %s", a.Original, quoteName(a.key()))
	}
	return fmt.Sprintf("%s AS %s", a.Original, quoteName(a.key()))
}

func (a *Alias) key() string {
	if a.Name == "" {
		return "anon"
	}
	return a.Name
}

func (a *Alias) Roles() roles.Set {
	return fromRoles
}

func (*Alias) fromClause() {}

// IsSubquery returns true if the alias is of a SELECT or a textual SELECT.
func (a *Alias) IsSubquery() bool {
	switch a.Original.(type) {
	case *Select, *TextualSelect:
		return true
	}
	return false
}
