package roles

import (
	"strings"
)

// Role is a semantic requirement that a value must satisfy to be used in a
// particular position of an expression tree.
type Role int

const (
	ExpressionElement Role = iota
	BinaryElement
	InElement
	ConstExpr
	LabeledColumnExpr
	ColumnArgument
	ColumnArgumentOrKey
	ColumnList
	ColumnsClause
	ByOf
	OrderBy
	LimitOffset
	TruncatedLabel
	Structural
	StatementOption
	WhereHaving
	DMLColumn
	DMLSelect
	DDLExpression
	DDLConstraintColumn
	ReturnsRows
	TextStatement
	Statement
	SelectStatement
	HasCTE
	CompoundElement
	FromClause
	StrictFromClause
	AnonymizedFromClause

	NumRoles
)

var roles = [...]struct {
	tag            string
	name           string
	parents        []Role
	usesInspection bool
}{
	ExpressionElement: {"ExpressionElement", "SQL expression element", nil, false},
	BinaryElement: {"BinaryElement", "SQL expression element or literal value",
		[]Role{ExpressionElement}, false},
	InElement: {"InElement",
		"IN expression list, SELECT construct, or bound parameter object", nil, false},
	ConstExpr: {"ConstExpr", "Constant True/False/None expression",
		[]Role{ExpressionElement}, false},
	LabeledColumnExpr: {"LabeledColumnExpr", "SQL expression for labeled column",
		[]Role{ExpressionElement}, false},
	ColumnArgument: {"ColumnArgument", "Column expression", nil, false},
	ColumnArgumentOrKey: {"ColumnArgumentOrKey", "Column expression or string key",
		[]Role{ColumnArgument}, false},
	ColumnList:    {"ColumnList", "Elements suitable for a column list", nil, false},
	ColumnsClause: {"ColumnsClause", "Column expression or FROM clause", []Role{ColumnList}, true},
	ByOf: {"ByOf", "GROUP BY / OF / etc. expression", []Role{ColumnList}, false},
	OrderBy:        {"OrderBy", "ORDER BY expression", []Role{ByOf}, false},
	LimitOffset:    {"LimitOffset", "LIMIT / OFFSET expression", nil, false},
	TruncatedLabel: {"TruncatedLabel", "String SQL identifier", nil, false},
	Structural:     {"Structural", "Structural SQL element", nil, false},
	StatementOption: {"StatementOption", "statement sub-expression element",
		[]Role{Structural}, false},
	WhereHaving: {"WhereHaving", "SQL expression for WHERE/HAVING role",
		[]Role{Structural}, false},
	DMLColumn: {"DMLColumn", "SET/VALUES column expression or string key", nil, false},
	DMLSelect: {"DMLSelect", "SELECT statement or equivalent textual object", nil, false},
	DDLExpression: {"DDLExpression", "SQL expression element for DDL constraint",
		[]Role{Structural}, false},
	DDLConstraintColumn: {"DDLConstraintColumn",
		"String column name or column object for DDL constraint", nil, false},
	ReturnsRows: {"ReturnsRows",
		"Row returning expression such as a SELECT or a FROM clause", nil, false},
	TextStatement: {"TextStatement", "Executable SQL or text() construct",
		[]Role{Structural}, false},
	Statement: {"Statement", "Executable SQL or text() construct", []Role{TextStatement},
		false},
	SelectStatement: {"SelectStatement", "SELECT construct or equivalent text() construct",
		[]Role{ReturnsRows}, false},
	HasCTE: {"HasCTE",
		"Row returning expression such as a SELECT or a FROM clause", []Role{ReturnsRows},
		false},
	CompoundElement: {"CompoundElement",
		"SELECT construct for inclusion in a UNION or other set construct", nil, false},
	FromClause: {"FromClause", "FROM expression, such as a Table or alias() object",
		[]Role{ColumnsClause, ReturnsRows}, false},
	StrictFromClause: {"StrictFromClause", "FROM expression, such as a Table or alias() object",
		[]Role{FromClause}, false},
	AnonymizedFromClause: {"AnonymizedFromClause",
		"FROM expression, such as a Table or alias() object", []Role{StrictFromClause}, false},
}

var (
	closures [NumRoles]Set
	byTag    = map[string]Role{}
)

func (r Role) String() string {
	if r < 0 || r >= NumRoles {
		return "Role(?)"
	}
	return roles[r].tag
}

// Name is the human readable name of the role used in diagnostics.
func (r Role) Name() string {
	return roles[r].name
}

// Parents returns the roles which r directly refines.
func (r Role) Parents() []Role {
	return roles[r].parents
}

// Refines returns true if a value satisfying r also satisfies r2.
func (r Role) Refines(r2 Role) bool {
	return closures[r].Has(r2)
}

// UsesInspection returns true if the generic inspection facility should be
// consulted for values of this role; the property is inherited by refinement.
func (r Role) UsesInspection() bool {
	for r2 := Role(0); r2 < NumRoles; r2++ {
		if closures[r].Has(r2) && roles[r2].usesInspection {
			return true
		}
	}
	return false
}

func (r Role) Valid() bool {
	return r >= 0 && r < NumRoles
}

// Lookup returns the role for a tag; the match is case insensitive and
// ignores underscores and dashes.
func Lookup(tag string) (Role, bool) {
	r, ok := byTag[normalize(tag)]
	return r, ok
}

func normalize(tag string) string {
	return strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(tag))
}

// All returns every role in tag order.
func All() []Role {
	all := make([]Role, NumRoles)
	for r := range all {
		all[r] = Role(r)
	}
	return all
}

// Set is a set of roles.
type Set uint64

// Of returns the set of roles containing rs and every role they refine.
func Of(rs ...Role) Set {
	var s Set
	for _, r := range rs {
		s |= closures[r]
	}
	return s
}

func (s Set) Has(r Role) bool {
	return s&(1<<uint(r)) != 0
}

// Union returns the roles in either s or s2.
func (s Set) Union(s2 Set) Set {
	return s | s2
}

func (s Set) Roles() []Role {
	var rs []Role
	for r := Role(0); r < NumRoles; r++ {
		if s.Has(r) {
			rs = append(rs, r)
		}
	}
	return rs
}

func (s Set) String() string {
	var b strings.Builder
	b.WriteRune('{')
	for i, r := range s.Roles() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(r.String())
	}
	b.WriteRune('}')
	return b.String()
}

func closure(r Role, visiting map[Role]bool) Set {
	if visiting[r] {
		panic("roles: refinement cycle at " + roles[r].tag)
	}
	visiting[r] = true
	defer delete(visiting, r)

	s := Set(1) << uint(r)
	for _, p := range roles[r].parents {
		s |= closure(p, visiting)
	}
	return s
}

func init() {
	if len(roles) != int(NumRoles) {
		panic("roles: role table does not match NumRoles")
	}
	if NumRoles > 64 {
		panic("roles: too many roles for Set")
	}

	for r := Role(0); r < NumRoles; r++ {
		if roles[r].tag == "" || roles[r].name == "" {
			panic("roles: missing definition for role " + Role(r).String())
		}
		tag := normalize(roles[r].tag)
		if _, ok := byTag[tag]; ok {
			panic("roles: duplicate tag " + roles[r].tag)
		}
		byTag[tag] = r
		closures[r] = closure(r, map[Role]bool{})
	}
}
