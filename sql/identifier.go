package sql

import (
	"strings"
	"sync"
)

type Identifier int

// MaxIdentifier is the longest identifier; longer names are truncated.
const MaxIdentifier = 128

const (
	ALIAS Identifier = iota + 1
	BINDPARAM
	BOOLEAN
	BYTES
	COLUMN
	COLUMNS
	CONVERTIBLE
	EXPANDING
	FLOAT
	INTEGER
	LABEL
	LITERAL_COLUMN
	SCALAR
	STRING
	SUBQUERY
	TABLE
	TEXT
	TRUNCATED
	TUPLE
)

const (
	AND = -(iota + 1)
	AS
	BY
	FALSE
	FROM
	IN
	LIMIT
	NOT
	NULL
	OFFSET
	OR
	ORDER
	SELECT
	TRUE
	WHERE
)

var knownIdentifiers = map[string]Identifier{
	"alias":          ALIAS,
	"bindparam":      BINDPARAM,
	"boolean":        BOOLEAN,
	"bytes":          BYTES,
	"column":         COLUMN,
	"columns":        COLUMNS,
	"convertible":    CONVERTIBLE,
	"expanding":      EXPANDING,
	"float":          FLOAT,
	"integer":        INTEGER,
	"label":          LABEL,
	"literal_column": LITERAL_COLUMN,
	"scalar":         SCALAR,
	"string":         STRING,
	"subquery":       SUBQUERY,
	"table":          TABLE,
	"text":           TEXT,
	"truncated":      TRUNCATED,
	"tuple":          TUPLE,
}

var knownKeywords = map[string]struct {
	id       Identifier
	reserved bool
}{
	"AND":    {AND, true},
	"AS":     {AS, true},
	"BY":     {BY, true},
	"FALSE":  {FALSE, true},
	"FROM":   {FROM, true},
	"IN":     {IN, true},
	"LIMIT":  {LIMIT, true},
	"NOT":    {NOT, true},
	"NULL":   {NULL, true},
	"OFFSET": {OFFSET, true},
	"OR":     {OR, true},
	"ORDER":  {ORDER, true},
	"SELECT": {SELECT, true},
	"TRUE":   {TRUE, true},
	"WHERE":  {WHERE, true},
}

var (
	mutex          sync.RWMutex
	lastIdentifier = Identifier(9999)
	identifiers    = make(map[string]Identifier)
	keywords       = make(map[string]Identifier)
	names          = make(map[Identifier]string)
)

func intern(s string) Identifier {
	mutex.RLock()
	id, found := identifiers[s]
	mutex.RUnlock()
	if found {
		return id
	}

	mutex.Lock()
	defer mutex.Unlock()

	if id, found := identifiers[s]; found {
		return id
	}
	lastIdentifier += 1
	identifiers[s] = lastIdentifier
	names[lastIdentifier] = s
	return lastIdentifier
}

// ID returns the identifier for s; unquoted identifiers are case insensitive.
func ID(s string) Identifier {
	if len(s) > MaxIdentifier {
		s = s[:MaxIdentifier]
	}

	if id, found := keywords[strings.ToUpper(s)]; found {
		return id
	}
	return intern(strings.ToLower(s))
}

// QuotedID returns the identifier for s exactly as given.
func QuotedID(s string) Identifier {
	if len(s) > MaxIdentifier {
		s = s[:MaxIdentifier]
	}
	return intern(s)
}

func (id Identifier) String() string {
	mutex.RLock()
	defer mutex.RUnlock()

	return names[id]
}

func (id Identifier) IsReserved() bool {
	return id < 0
}

func init() {
	for s, id := range knownIdentifiers {
		identifiers[strings.ToLower(s)] = id
		names[id] = s
	}
	for s, n := range knownKeywords {
		keywords[s] = n.id
		names[n.id] = s
	}
}

// IsReservedWord returns true if s, ignoring case, is a reserved keyword.
func IsReservedWord(s string) bool {
	id, found := keywords[strings.ToUpper(s)]
	return found && id.IsReserved()
}
