/*
Package config manages configuration variables. A variable may be set, in order of increasing
precedence, by its default, by a config file, by an environment variable, or by a command line
flag.
*/
package config

import (
	"fmt"
	"os"

	"github.com/google/btree"
	"github.com/spf13/pflag"
)

type setBy int

const (
	byDefault setBy = iota
	byConfig
	byEnv
	byFlag
)

func (by setBy) String() string {
	switch by {
	case byDefault:
		return "default"
	case byConfig:
		return "config"
	case byEnv:
		return "env"
	case byFlag:
		return "flag"
	}
	return fmt.Sprintf("setBy(%d)", by)
}

type Config struct {
	fs   *pflag.FlagSet
	vars *btree.BTree
}

type Var struct {
	cfg      *Config
	name     string
	usage    string
	env      string
	val      value
	by       setBy
	noConfig bool
	hidden   bool
}

// varItem orders variables by name.
type varItem struct {
	name string
	v    *Var
}

func (vi varItem) Less(item btree.Item) bool {
	return vi.name < item.(varItem).name
}

func NewConfig(fs *pflag.FlagSet) *Config {
	return &Config{
		fs:   fs,
		vars: btree.New(8),
	}
}

func (c *Config) lookup(name string) (*Var, bool) {
	item := c.vars.Get(varItem{name: name})
	if item == nil {
		return nil, false
	}
	return item.(varItem).v, true
}

// Var declares a configuration variable; p must be a *bool, *int, or *string. The variable
// becomes a command line flag when its default is set, unless it is hidden.
func (c *Config) Var(p interface{}, name string) *Var {
	if _, ok := c.lookup(name); ok {
		panic(fmt.Sprintf("config: variable redefined: %s", name))
	}

	var val value
	switch p := p.(type) {
	case *bool:
		val = &boolValue{p: p}
	case *int:
		val = &intValue{p: p}
	case *string:
		val = &stringValue{p: p}
	default:
		panic(fmt.Sprintf("config: unsupported variable type: %T", p))
	}

	v := &Var{
		cfg:  c,
		name: name,
		val:  val,
	}
	c.vars.ReplaceOrInsert(varItem{name: name, v: v})
	return v
}

func (v *Var) Usage(usage string) *Var {
	v.usage = usage
	return v
}

func (v *Var) Env(env string) *Var {
	v.env = env
	return v
}

// NoConfig prevents the variable from being set in a config file.
func (v *Var) NoConfig() *Var {
	v.noConfig = true
	return v
}

// Hide prevents the variable from being a command line flag.
func (v *Var) Hide() *Var {
	v.hidden = true
	if v.cfg.fs != nil {
		if flg := v.cfg.fs.Lookup(v.name); flg != nil {
			flg.Hidden = true
		}
	}
	return v
}

func (v *Var) flag() {
	if v.hidden || v.cfg.fs == nil {
		return
	}

	v.cfg.fs.Var(flagValue{v}, v.name, v.usage)
	if _, ok := v.val.(*boolValue); ok {
		v.cfg.fs.Lookup(v.name).NoOptDefVal = "true"
	}
}

// Min is the smallest value an int variable may be set to.
func (v *Var) Min(n int) *Var {
	iv, ok := v.val.(*intValue)
	if !ok {
		panic(fmt.Sprintf("config: variable %s is not an int", v.name))
	}
	iv.min = &n
	return v
}

func (v *Var) Bool(b bool) *bool {
	bv, ok := v.val.(*boolValue)
	if !ok {
		panic(fmt.Sprintf("config: variable %s is not a bool", v.name))
	}
	*bv.p = b
	v.flag()
	return bv.p
}

func (v *Var) Int(i int) *int {
	iv, ok := v.val.(*intValue)
	if !ok {
		panic(fmt.Sprintf("config: variable %s is not an int", v.name))
	}
	*iv.p = i
	v.flag()
	return iv.p
}

func (v *Var) String(s string) *string {
	sv, ok := v.val.(*stringValue)
	if !ok {
		panic(fmt.Sprintf("config: variable %s is not a string", v.name))
	}
	*sv.p = s
	v.flag()
	return sv.p
}

// Env sets each variable which has an environment variable and was not set by a flag.
func (c *Config) Env() error {
	var err error
	c.vars.Ascend(
		func(item btree.Item) bool {
			v := item.(varItem).v
			if v.env == "" || v.by == byFlag {
				return true
			}
			s, ok := os.LookupEnv(v.env)
			if !ok {
				return true
			}
			err = v.val.Set(s)
			if err != nil {
				err = fmt.Errorf("config: %s: %s", v.env, err)
				return false
			}
			v.by = byEnv
			return true
		})
	return err
}

// List calls fn for each variable in name order.
func (c *Config) List(fn func(name, val, by string)) {
	c.vars.Ascend(
		func(item btree.Item) bool {
			vi := item.(varItem)
			fn(vi.name, vi.v.val.String(), vi.v.by.String())
			return true
		})
}

type flagValue struct {
	v *Var
}

func (fv flagValue) Set(s string) error {
	err := fv.v.val.Set(s)
	if err != nil {
		return err
	}
	fv.v.by = byFlag
	return nil
}

func (fv flagValue) String() string {
	return fv.v.val.String()
}

func (fv flagValue) Type() string {
	return fv.v.val.Type()
}
