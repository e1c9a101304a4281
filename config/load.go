package config

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/hashicorp/hcl"
)

// Load sets variables from an HCL config; a variable already set by the environment or a flag
// keeps its value.
func (c *Config) Load(r io.Reader) error {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return err
	}

	var cfg map[string]interface{}
	err = hcl.Decode(&cfg, string(b))
	if err != nil {
		return err
	}
	for name, val := range cfg {
		v, ok := c.lookup(name)
		if !ok {
			return fmt.Errorf("%s is not a config variable", name)
		}
		if v.noConfig {
			return fmt.Errorf("%s can't be set in config file", name)
		}

		if v.by == byDefault {
			err := v.val.SetValue(val)
			if err != nil {
				return fmt.Errorf("%s: %s", v.name, err)
			}
			v.by = byConfig
		}
	}

	return nil
}

func (c *Config) LoadFile(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	err = c.Load(f)
	if err != nil {
		return fmt.Errorf("%s: %s", filename, err)
	}
	return nil
}
