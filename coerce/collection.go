package coerce

import (
	"github.com/leftmike/sqlcoerce/expr"
	"github.com/leftmike/sqlcoerce/roles"
)

// ColumnEntry is one value of a column collection. If the value resolved to a string key,
// Resolved, Name, and Key are that string, even when it is empty. Otherwise Column is the first
// column within Resolved, if there is one, and Key is that column or nil.
type ColumnEntry struct {
	Resolved interface{}
	Column   expr.ColumnElement
	Name     string
	Key      interface{}
}

// ColumnIter coerces a collection of values one at a time, in order; it can only be used once.
type ColumnIter struct {
	c      *Coercer
	role   roles.Role
	values []interface{}
	idx    int
	entry  ColumnEntry
	err    error
}

func (c *Coercer) ExpectColumns(role roles.Role, values []interface{}) *ColumnIter {
	return &ColumnIter{
		c:      c,
		role:   role,
		values: values,
	}
}

func ExpectColumns(role roles.Role, values []interface{}) *ColumnIter {
	return Default.ExpectColumns(role, values)
}

// Next coerces the next value; it returns false when there are no more values or coercion
// failed, in which case Err returns the error.
func (it *ColumnIter) Next() bool {
	if it.err != nil || it.idx >= len(it.values) {
		return false
	}

	v := it.values[it.idx]
	it.idx += 1

	resolved, err := it.c.Expect(it.role, v)
	if err != nil {
		it.err = err
		it.entry = ColumnEntry{}
		return false
	}

	var ent ColumnEntry
	if s, ok := resolved.(string); ok {
		ent.Resolved = s
		ent.Name = s
		ent.Key = s
	} else {
		ent.Resolved = resolved
		if e, ok := resolved.(expr.Expr); ok {
			ent.Column = expr.FirstColumn(e)
		}
		if ent.Column != nil {
			ent.Key = ent.Column
		}
	}
	it.entry = ent
	return true
}

func (it *ColumnIter) Entry() ColumnEntry {
	return it.entry
}

func (it *ColumnIter) Err() error {
	return it.err
}
