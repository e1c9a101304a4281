package flags

import (
	"strings"

	"github.com/leftmike/sqlcoerce/config"
)

type Flag int

const (
	// Wrap a SELECT used in a column context as a scalar subquery instead of
	// failing.
	ScalarSubqueryCoercion Flag = iota

	// Annotate an empty IN list so that negating the comparison swaps IN for
	// NOT IN.
	EmptyInMarkers
)

type flagDefault struct {
	name string
	flag Flag
	def  bool
}

var (
	// Sorted by name.
	defaultFlags = []flagDefault{
		{"empty_in_markers", EmptyInMarkers, true},
		{"scalar_subquery_coercion", ScalarSubqueryCoercion, true},
	}
)

// LookupFlag returns the flag named nam; case does not matter.
func LookupFlag(nam string) (Flag, bool) {
	nam = strings.ToLower(nam)
	for _, fd := range defaultFlags {
		if fd.name == nam {
			return fd.flag, true
		}
	}
	return 0, false
}

// ListFlags calls fn with each flag in name order.
func ListFlags(fn func(nam string, f Flag)) {
	for _, fd := range defaultFlags {
		fn(fd.name, fd.flag)
	}
}

type Flags []bool

func (flgs Flags) GetFlag(f Flag) bool {
	return flgs[f]
}

func (flgs Flags) SetFlag(f Flag, b bool) {
	flgs[f] = b
}

func Config(cfg *config.Config) Flags {
	flgs := make([]bool, len(defaultFlags))
	for _, fd := range defaultFlags {
		flgs[fd.flag] = fd.def
		cfg.Var(&flgs[fd.flag], fd.name).Hide()
	}
	return flgs
}

func Default() Flags {
	flgs := make([]bool, len(defaultFlags))
	for _, fd := range defaultFlags {
		flgs[fd.flag] = fd.def
	}
	return flgs
}
