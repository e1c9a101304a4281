package expr

import (
	"reflect"
)

// Children returns the immediate sub-expressions of e.
func Children(e Expr) []Expr {
	switch e := e.(type) {
	case *Label:
		return []Expr{e.Element}
	case *LabelReference:
		return []Expr{e.Element}
	case *ClauseList:
		return e.Clauses
	case *Grouping:
		return []Expr{e.Element}
	case *Tuple:
		children := make([]Expr, len(e.Clauses))
		for i, c := range e.Clauses {
			children[i] = c
		}
		return children
	case *Binary:
		return []Expr{e.Left, e.Right}
	case *Table:
		children := make([]Expr, len(e.Columns))
		for i, col := range e.Columns {
			children[i] = col
		}
		return children
	case *Select:
		children := append([]Expr{}, e.Columns...)
		for _, fc := range e.From {
			children = append(children, fc)
		}
		if e.Where != nil {
			children = append(children, e.Where)
		}
		return children
	case *ScalarSelect:
		return []Expr{e.Element}
	case *TextualSelect:
		children := []Expr{e.Text}
		for _, col := range e.Columns {
			children = append(children, col)
		}
		return children
	case *Alias:
		return []Expr{e.Original}
	}
	return nil
}

// Walk calls fn for e and then, in order, for each of its descendents; if fn
// returns false, the children of that node are skipped.
func Walk(e Expr, fn func(e Expr) bool) {
	stack := []Expr{e}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if e == nil || !fn(e) {
			continue
		}

		children := Children(e)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// FirstColumn returns the first column, in walk order, of e or nil.
func FirstColumn(e Expr) ColumnElement {
	var col ColumnElement
	Walk(e, func(e Expr) bool {
		if col != nil {
			return false
		}
		switch e := e.(type) {
		case *ColumnClause:
			col = e
		case *Column:
			col = e
		}
		return col == nil
	})
	return col
}

// Sequence returns the elements of v if it is a slice or an array.
func Sequence(v interface{}) ([]interface{}, bool) {
	return sliceValues(v)
}

func sliceValues(v interface{}) ([]interface{}, bool) {
	if v == nil {
		return nil, false
	}
	if _, ok := v.([]byte); ok {
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	vals := make([]interface{}, rv.Len())
	for i := range vals {
		vals[i] = rv.Index(i).Interface()
	}
	return vals, true
}
