package config

import (
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func newConfig(bv bool, iv int, sv string) (*Config, *bool, *int, *string) {
	c := NewConfig(pflag.NewFlagSet("test", pflag.PanicOnError))
	c.Var(new(string), "good")
	b := c.Var(new(bool), "bool_var").Bool(bv)
	i := c.Var(new(int), "int_var").Min(-10000).Int(iv)
	s := c.Var(new(string), "string_var").String(sv)
	return c, b, i, s
}

func TestLoadSimple(t *testing.T) {
	cases := []struct {
		bv, be bool
		iv, ie int
		sv, se string
		fail   bool
		cfg    string
	}{
		{fail: true, cfg: `good`},
		{fail: true, cfg: `good=`},
		{fail: true, cfg: `good =`},
		{fail: true, cfg: `bad = 123`},
		{cfg: `good=123`},
		{cfg: `/* comment */ good = /* comment */ 123 // comment`},
		{fail: true, cfg: `1234`},
		{fail: true, cfg: `"bad" = 1234`},
		{cfg: `"good" = 1234`},

		{bv: false, be: true, cfg: `bool_var = true`},
		{bv: true, be: false, cfg: `bool_var = false`},
		{fail: true, cfg: `bool_var = 1234`},
		{iv: 1234, ie: -5678, cfg: `int_var = -5678`},
		{fail: true, cfg: `int_var = -10001`},
		{fail: true, cfg: `int_var = "a string"`},
		{sv: "", se: "123", cfg: `string_var = 123`},
		{sv: "", se: "a string", cfg: `string_var = "a string"`},
		{fail: true, cfg: `bool_var = {a = 10}`},
	}

	for n, tc := range cases {
		c, b, i, s := newConfig(tc.bv, tc.iv, tc.sv)
		if *b != tc.bv || *i != tc.iv || *s != tc.sv {
			t.Errorf("NewConfig(%d) defaults not correctly set", n)
		}
		err := c.Load(strings.NewReader(tc.cfg))
		if tc.fail {
			if err == nil {
				t.Errorf("Load(%q) did not fail", tc.cfg)
			}
		} else {
			if err != nil {
				t.Errorf("Load(%q) failed with %s", tc.cfg, err)
			} else if *b != tc.be || *i != tc.ie || *s != tc.se {
				t.Errorf("Load(%q) variables not updated correctly", tc.cfg)
			}
		}
	}
}

func TestSetBy(t *testing.T) {
	c, _, _, _ := newConfig(false, 0, "")
	err := c.Load(strings.NewReader(`bool_var = true`))
	if err != nil {
		t.Fatalf("Load() failed with %s", err)
	}
	if v, _ := c.lookup("bool_var"); v.by != byConfig {
		t.Errorf("bool_var set by %s want config", v.by)
	}
	if v, _ := c.lookup("int_var"); v.by != byDefault {
		t.Errorf("int_var set by %s want default", v.by)
	}
}
