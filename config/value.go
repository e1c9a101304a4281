package config

import (
	"fmt"
	"strconv"
)

// value is the typed storage behind a variable. Set parses command line and environment
// strings; SetValue takes what the HCL decoder produced.
type value interface {
	Set(s string) error
	SetValue(v interface{}) error
	String() string
	Type() string
}

func invalid(v interface{}) error {
	return fmt.Errorf("parsing %v: invalid syntax", v)
}

type boolValue struct {
	p *bool
}

func (bv *boolValue) Set(s string) error {
	b, err := strconv.ParseBool(s)
	if err == nil {
		*bv.p = b
	}
	return err
}

func (bv *boolValue) SetValue(v interface{}) error {
	b, ok := v.(bool)
	if !ok {
		return invalid(v)
	}
	*bv.p = b
	return nil
}

func (bv *boolValue) String() string {
	return strconv.FormatBool(*bv.p)
}

func (*boolValue) Type() string {
	return "bool"
}

// intValue is an int which may have a lower bound.
type intValue struct {
	p   *int
	min *int
}

func (iv *intValue) set(i int) error {
	if iv.min != nil && i < *iv.min {
		return fmt.Errorf("%d is less than the minimum of %d", i, *iv.min)
	}
	*iv.p = i
	return nil
}

func (iv *intValue) Set(s string) error {
	i, err := strconv.ParseInt(s, 0, strconv.IntSize)
	if err != nil {
		return err
	}
	return iv.set(int(i))
}

func (iv *intValue) SetValue(v interface{}) error {
	i, ok := v.(int)
	if !ok {
		return invalid(v)
	}
	return iv.set(i)
}

func (iv *intValue) String() string {
	return strconv.Itoa(*iv.p)
}

func (*intValue) Type() string {
	return "int"
}

type stringValue struct {
	p *string
}

func (sv *stringValue) Set(s string) error {
	*sv.p = s
	return nil
}

func (sv *stringValue) SetValue(v interface{}) error {
	switch v.(type) {
	case string, int, int64, float64, bool:
		*sv.p = fmt.Sprint(v)
		return nil
	}
	return invalid(v)
}

func (sv *stringValue) String() string {
	return *sv.p
}

func (*stringValue) Type() string {
	return "string"
}
