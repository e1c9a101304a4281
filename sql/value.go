package sql

import (
	"encoding/hex"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

const (
	NullString  = "NULL"
	TrueString  = "true"
	FalseString = "false"
)

// Value is the value of a bind parameter or a literal. A nil Value is NULL.
type Value interface {
	fmt.Stringer
	Type() DataType
}

type BoolValue bool

func (b BoolValue) String() string {
	if b {
		return TrueString
	}
	return FalseString
}

func (BoolValue) Type() DataType {
	return BooleanType
}

type Int64Value int64

func (i Int64Value) String() string {
	return strconv.FormatInt(int64(i), 10)
}

func (Int64Value) Type() DataType {
	return IntegerType
}

type Float64Value float64

func (f Float64Value) String() string {
	return strconv.FormatFloat(float64(f), 'g', -1, 64)
}

func (Float64Value) Type() DataType {
	return FloatType
}

type StringValue string

func (s StringValue) String() string {
	return "'" + string(s) + "'"
}

func (StringValue) Type() DataType {
	return StringType
}

type BytesValue []byte

func (b BytesValue) String() string {
	return `'\x` + hex.EncodeToString(b) + "'"
}

func (BytesValue) Type() DataType {
	return BytesType
}

// TypeOf returns the data type of v; nil has NullType.
func TypeOf(v Value) DataType {
	if v == nil {
		return NullType
	}
	return v.Type()
}

// ToInteger converts v to an integer. Floats are truncated toward zero and must be finite and
// in range; strings must hold a decimal integer.
func ToInteger(v Value) (int64, error) {
	switch v := v.(type) {
	case Int64Value:
		return int64(v), nil
	case Float64Value:
		f := math.Trunc(float64(v))
		if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, fmt.Errorf("sql: %s is out of range for an integer", v)
		}
		return int64(f), nil
	case StringValue:
		i, err := strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("sql: expected an integer: %s", v)
		}
		return i, nil
	}
	return 0, fmt.Errorf("sql: expected an integer: %s", Format(v))
}

func Format(v Value) string {
	if v == nil {
		return NullString
	}
	return v.String()
}

// ConvertGo converts a Go literal into a Value. Booleans, integers, floats,
// strings, and byte slices are supported, as are values which are already
// a Value; nil converts to a nil Value.
func ConvertGo(v interface{}) (Value, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case BoolValue, Int64Value, Float64Value, StringValue, BytesValue:
		return v.(Value), nil
	case []byte:
		return BytesValue(v), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return BoolValue(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int64Value(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr:

		u := rv.Uint()
		if u > 1<<63-1 {
			return nil, fmt.Errorf("sql: integer out of range: %d", u)
		}
		return Int64Value(u), nil
	case reflect.Float32, reflect.Float64:
		return Float64Value(rv.Float()), nil
	case reflect.String:
		return StringValue(rv.String()), nil
	}
	return nil, fmt.Errorf("sql: unable to convert %T to a value", v)
}

// IsNumber returns true if v is a Go integer or floating point number.
func IsNumber(v interface{}) bool {
	if v == nil {
		return false
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr, reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
