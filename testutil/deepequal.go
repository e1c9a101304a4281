package testutil

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/leftmike/sqlcoerce/expr"
)

var exprType = reflect.TypeOf((*expr.Expr)(nil)).Elem()

func describe(path []string, v1, v2 reflect.Value) string {
	p := strings.Join(path, "")
	if p == "" {
		p = "value"
	}
	return fmt.Sprintf("%s: %s != %s", p, show(v1), show(v2))
}

func show(v reflect.Value) string {
	if !v.IsValid() {
		return "<invalid>"
	}
	if v.CanInterface() {
		return fmt.Sprintf("%#v", v.Interface())
	}
	return v.String()
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func:
		return v.IsNil()
	}
	return false
}

func deepValueEqual(path []string, v1, v2 reflect.Value) (bool, string) {
	if !v1.IsValid() || !v2.IsValid() {
		if v1.IsValid() != v2.IsValid() {
			return false, describe(path, v1, v2)
		}
		return true, ""
	}
	if v1.Type() != v2.Type() {
		return false, fmt.Sprintf("%s: type %s != type %s", strings.Join(path, ""), v1.Type(),
			v2.Type())
	}

	// Nodes may point back at their parents, so compare them by what they render.
	if v1.Type().Implements(exprType) && v1.CanInterface() && !isNil(v1) && !isNil(v2) {
		s1 := v1.Interface().(expr.Expr).String()
		s2 := v2.Interface().(expr.Expr).String()
		if s1 != s2 {
			return false, fmt.Sprintf("%s: %s != %s", strings.Join(path, ""), s1, s2)
		}
		return true, ""
	}

	switch v1.Kind() {
	case reflect.Array, reflect.Slice:
		if v1.Kind() == reflect.Slice && (v1.IsNil() != v2.IsNil() || v1.Len() != v2.Len()) {
			return false, describe(path, v1, v2)
		}
		for i := 0; i < v1.Len(); i++ {
			ok, s := deepValueEqual(append(path, fmt.Sprintf("[%d]", i)), v1.Index(i),
				v2.Index(i))
			if !ok {
				return false, s
			}
		}
		return true, ""
	case reflect.Interface, reflect.Ptr:
		if v1.IsNil() || v2.IsNil() {
			if v1.IsNil() != v2.IsNil() {
				return false, describe(path, v1, v2)
			}
			return true, ""
		}
		if v1.Kind() == reflect.Ptr && v1.Pointer() == v2.Pointer() {
			return true, ""
		}
		return deepValueEqual(path, v1.Elem(), v2.Elem())
	case reflect.Struct:
		for i, n := 0, v1.NumField(); i < n; i++ {
			ok, s := deepValueEqual(append(path, "."+v1.Type().Field(i).Name), v1.Field(i),
				v2.Field(i))
			if !ok {
				return false, s
			}
		}
		return true, ""
	case reflect.Map:
		if v1.IsNil() != v2.IsNil() || v1.Len() != v2.Len() {
			return false, describe(path, v1, v2)
		}
		for _, k := range v1.MapKeys() {
			val2 := v2.MapIndex(k)
			if !val2.IsValid() {
				return false, fmt.Sprintf("%s: missing key %s", strings.Join(path, ""), show(k))
			}
			ok, s := deepValueEqual(append(path, fmt.Sprintf("[%s]", show(k))), v1.MapIndex(k),
				val2)
			if !ok {
				return false, s
			}
		}
		return true, ""
	case reflect.Func:
		if v1.IsNil() && v2.IsNil() {
			return true, ""
		}
		return false, describe(path, v1, v2)
	case reflect.Bool:
		if v1.Bool() != v2.Bool() {
			return false, describe(path, v1, v2)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v1.Int() != v2.Int() {
			return false, describe(path, v1, v2)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr:
		if v1.Uint() != v2.Uint() {
			return false, describe(path, v1, v2)
		}
	case reflect.Float32, reflect.Float64:
		if v1.Float() != v2.Float() {
			return false, describe(path, v1, v2)
		}
	case reflect.String:
		if v1.String() != v2.String() {
			return false, describe(path, v1, v2)
		}
	default:
		if v1.CanInterface() && v1.Interface() != v2.Interface() {
			return false, describe(path, v1, v2)
		}
	}
	return true, ""
}

// DeepEqual is reflect.DeepEqual except that expression nodes are equal when they render the
// same. If a string pointer is passed, it is set to a description of the first difference.
func DeepEqual(x, y interface{}, trc ...*string) bool {
	if len(trc) > 1 {
		panic("testutil.DeepEqual: more than one optional argument")
	}

	eq, s := deepValueEqual(nil, reflect.ValueOf(x), reflect.ValueOf(y))
	if len(trc) == 1 && trc[0] != nil {
		*trc[0] = s
	}
	return eq
}
