package expr_test

import (
	"testing"

	. "github.com/leftmike/sqlcoerce/expr"
	"github.com/leftmike/sqlcoerce/roles"
	"github.com/leftmike/sqlcoerce/sql"
)

func TestExpr(t *testing.T) {
	tbl := NewTable("users", "id", "Name")
	sel := &Select{
		Columns: []Expr{tbl.C("id")},
		From:    []FromClause{tbl},
		Where:   &Binary{EqualOp, tbl.C("Name"), &BindParam{Name: "name"}},
	}

	cases := []struct {
		e Expr
		s string
	}{
		{Null{}, "NULL"},
		{True{}, "true"},
		{False{}, "false"},
		{
			e: &Binary{DivideOp,
				NewColumnClause("abc", sql.IntegerType),
				NewColumnClause("Def", sql.IntegerType)},
			s: `(abc / "Def")`,
		},
		{NewColumnClause("select", sql.NullType), `"select"`},
		{LiteralColumn("count(*)"), "count(*)"},
		{Star(), "*"},
		{NewLabel("total", LiteralColumn("a + b")), "a + b AS total"},
		{NewLabel("", LiteralColumn("a + b")), "a + b AS anon"},
		{&LabelReference{NewLabel("Total", LiteralColumn("a + b"))}, `"Total"`},
		{NewClauseList(Null{}, True{}), "NULL, true"},
		{&ClauseList{Clauses: []Expr{True{}, False{}}, Operator: AndOp}, "true AND false"},
		{NewClauseList(True{}).SelfGroup(InOp), "(true)"},
		{NewTuple(NewColumnClause("a", sql.NullType), NewColumnClause("b", sql.NullType)),
			"(a, b)"},
		{NewText("x = 1"), "x = 1"},
		{tbl, "users"},
		{tbl.C("name"), `users.name`},
		{sel, `SELECT users.id FROM users WHERE (users.name == :name)`},
		{sel.ScalarSubquery(), `(SELECT users.id FROM users WHERE (users.name == :name))`},
		{sel.Subquery("sq"), `(SELECT users.id FROM users WHERE (users.name == :name)) AS sq`},
		{AliasOf(tbl, "", false), "users AS anon"},
		{SelectFrom(tbl), "SELECT * FROM users"},
		{TruncatedLabel("lbl"), "lbl"},
	}

	for _, c := range cases {
		if c.e.String() != c.s {
			t.Errorf("%#v.String() got %s want %s", c.e, c.e.String(), c.s)
		}
	}
}

func TestRoles(t *testing.T) {
	tbl := NewTable("t", "c")
	cases := []struct {
		e    Expr
		has  []roles.Role
		hasn []roles.Role
	}{
		{
			e:    Null{},
			has:  []roles.Role{roles.ConstExpr, roles.WhereHaving, roles.ColumnsClause},
			hasn: []roles.Role{roles.InElement, roles.FromClause},
		},
		{
			e:    &BindParam{Name: "p"},
			has:  []roles.Role{roles.InElement, roles.BinaryElement, roles.LimitOffset},
			hasn: []roles.Role{roles.ConstExpr, roles.LabeledColumnExpr},
		},
		{
			e:    NewText("x"),
			has:  []roles.Role{roles.WhereHaving, roles.Statement, roles.TextStatement},
			hasn: []roles.Role{roles.SelectStatement, roles.FromClause, roles.ColumnsClause},
		},
		{
			e:    tbl,
			has:  []roles.Role{roles.AnonymizedFromClause, roles.FromClause, roles.ColumnsClause},
			hasn: []roles.Role{roles.SelectStatement, roles.WhereHaving},
		},
		{
			e:    NewSelect(Star()),
			has:  []roles.Role{roles.SelectStatement, roles.ReturnsRows, roles.InElement},
			hasn: []roles.Role{roles.FromClause, roles.ColumnsClause, roles.WhereHaving},
		},
		{
			e:    NewClauseList(),
			has:  []roles.Role{roles.InElement, roles.OrderBy},
			hasn: []roles.Role{roles.WhereHaving},
		},
		{
			e:    NewClauseList().SelfGroup(InOp),
			has:  []roles.Role{roles.InElement, roles.WhereHaving},
			hasn: []roles.Role{roles.FromClause},
		},
		{
			e:    tbl.C("c"),
			has:  []roles.Role{roles.LabeledColumnExpr, roles.DDLConstraintColumn},
			hasn: []roles.Role{roles.InElement},
		},
		{
			e:    TruncatedLabel("x"),
			has:  []roles.Role{roles.TruncatedLabel},
			hasn: []roles.Role{roles.ExpressionElement},
		},
	}

	for _, c := range cases {
		rs := c.e.Roles()
		for _, r := range c.has {
			if !rs.Has(r) {
				t.Errorf("%T.Roles().Has(%s) got false want true", c.e, r)
			}
		}
		for _, r := range c.hasn {
			if rs.Has(r) {
				t.Errorf("%T.Roles().Has(%s) got true want false", c.e, r)
			}
		}
	}
}

func TestBindFor(t *testing.T) {
	col := NewColumnClause("x", sql.FloatType)
	ce, err := BindFor(col, EqualOp, 10, sql.NullType)
	if err != nil {
		t.Fatalf("BindFor(x, 10) failed with %s", err)
	}
	bp, ok := ce.(*BindParam)
	if !ok {
		t.Fatalf("BindFor(x, 10) got %T want *BindParam", ce)
	}
	if bp.Name != "x" || bp.DataType != sql.FloatType || !bp.Unique ||
		bp.Value != sql.Int64Value(10) {

		t.Errorf("BindFor(x, 10) got %#v", bp)
	}

	ce, err = BindFor(col, EqualOp, nil, sql.NullType)
	if err != nil {
		t.Fatalf("BindFor(x, nil) failed with %s", err)
	}
	if ce.Type() != sql.NullType {
		t.Errorf("BindFor(x, nil).Type() got %s want %s", ce.Type(), sql.NullType)
	}

	_, err = BindFor(col, EqualOp, map[string]int{}, sql.NullType)
	if err == nil {
		t.Errorf("BindFor(x, map) did not fail")
	}

	tup := NewTuple(NewColumnClause("a", sql.IntegerType), NewColumnClause("b", sql.StringType))
	ce, err = BindFor(tup, InOp, []interface{}{1, "two"}, sql.NullType)
	if err != nil {
		t.Fatalf("BindFor(tuple, [1 two]) failed with %s", err)
	}
	if ce.String() != "(:a, :b)" {
		t.Errorf("BindFor(tuple, [1 two]) got %s want (:a, :b)", ce)
	}
	_, err = BindFor(tup, InOp, 1, sql.NullType)
	if err == nil {
		t.Errorf("BindFor(tuple, 1) did not fail")
	}
}

func TestNegate(t *testing.T) {
	col := NewColumnClause("x", sql.IntegerType)

	b := In(col, NewClauseList(Null{}).SelfGroup(InOp))
	if b.Op != InOp {
		t.Errorf("In(x, (NULL)).Op got %s want IN", b.Op)
	}
	nb, err := b.Negate()
	if err != nil {
		t.Fatalf("Negate() failed with %s", err)
	}
	if nb.Op != NotInOp {
		t.Errorf("Negate().Op got %v want %v", nb.Op, NotInOp)
	}

	empty := NewClauseList().SelfGroup(InOp).Annotate(InOps{EmptyInOp, EmptyNotInOp})
	b = In(col, empty)
	if b.Op != EmptyInOp {
		t.Errorf("In(x, empty).Op got %v want %v", b.Op, EmptyInOp)
	}
	nb, err = b.Negate()
	if err != nil {
		t.Fatalf("Negate() failed with %s", err)
	}
	if nb.Op != EmptyNotInOp {
		t.Errorf("Negate().Op got %v want %v", nb.Op, EmptyNotInOp)
	}
	g := nb.Right.(*Grouping)
	if g.InOps.Op != EmptyNotInOp || g.InOps.Negate != EmptyInOp {
		t.Errorf("Negate() InOps got %v want {EmptyNotInOp EmptyInOp}", *g.InOps)
	}
	if empty.InOps.Op != EmptyInOp {
		t.Errorf("Negate() modified the original annotation")
	}

	nnb, err := nb.Negate()
	if err != nil {
		t.Fatalf("Negate().Negate() failed with %s", err)
	}
	if nnb.Op != EmptyInOp {
		t.Errorf("Negate().Negate().Op got %v want %v", nnb.Op, EmptyInOp)
	}

	_, err = (&Binary{AddOp, col, col}).Negate()
	if err == nil {
		t.Errorf("Negate(x + x) did not fail")
	}
}

func TestTruncatedLabel(t *testing.T) {
	cases := []struct {
		tl  TruncatedLabel
		max int
		n   int
	}{
		{"short", 10, 5},
		{"a_much_longer_label_name", 10, 10},
		{"a_much_longer_label_name", 3, 3},
	}

	for _, c := range cases {
		s := c.tl.Truncate(c.max)
		if len(s) != c.n {
			t.Errorf("TruncatedLabel(%q).Truncate(%d) got %q want %d chars", c.tl, c.max, s, c.n)
		}
	}

	if TruncatedLabel("a_much_longer_label_one").Truncate(12) ==
		TruncatedLabel("a_much_longer_label_two").Truncate(12) {

		t.Errorf("Truncate(12) of distinct labels are equal")
	}
}

func TestFirstColumn(t *testing.T) {
	tbl := NewTable("t", "a", "b")
	cases := []struct {
		e   Expr
		col string
	}{
		{tbl.C("b"), "t.b"},
		{NewLabel("x", tbl.C("a")), "t.a"},
		{&Binary{AddOp, NewLabel("x", LiteralColumn("1")), tbl.C("b")}, "1"},
		{NewClauseList(Null{}, NewColumnClause("c", sql.NullType)), "c"},
		{tbl, "t.a"},
		{Null{}, ""},
		{&BindParam{Name: "p"}, ""},
	}

	for _, c := range cases {
		col := FirstColumn(c.e)
		if c.col == "" {
			if col != nil {
				t.Errorf("FirstColumn(%s) got %s want nil", c.e, col)
			}
		} else if col == nil {
			t.Errorf("FirstColumn(%s) got nil want %s", c.e, c.col)
		} else if col.String() != c.col {
			t.Errorf("FirstColumn(%s) got %s want %s", c.e, col, c.col)
		}
	}
}

func TestSequence(t *testing.T) {
	cases := []struct {
		v  interface{}
		n  int
		ok bool
	}{
		{[]int{1, 2, 3}, 3, true},
		{[2]string{"a", "b"}, 2, true},
		{[]interface{}{}, 0, true},
		{"abc", 0, false},
		{[]byte("abc"), 0, false},
		{123, 0, false},
		{nil, 0, false},
	}

	for _, c := range cases {
		vals, ok := Sequence(c.v)
		if ok != c.ok || len(vals) != c.n {
			t.Errorf("Sequence(%#v) got %d, %v want %d, %v", c.v, len(vals), ok, c.n, c.ok)
		}
	}
}
