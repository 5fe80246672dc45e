// Package config loads interpreter settings from a YAML file.  Command
// line flags are applied on top by the caller.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	LeftToRight = "left-to-right"
	Standard    = "standard"
)

type Trace struct {
	Exec bool `yaml:"exec"`
	Vars bool `yaml:"vars"`
	Dump bool `yaml:"dump"`
}

type Config struct {
	ZoneWidth      int    `yaml:"zone_width"`
	Zones          int    `yaml:"zones"`
	StackMax       int    `yaml:"stack_max"`
	FnRecursionMax int    `yaml:"fn_recursion_max"`
	Precedence     string `yaml:"precedence"`
	Dartmouth      bool   `yaml:"dartmouth"`
	Seed           int64  `yaml:"seed"`
	Trace          Trace  `yaml:"trace"`
}

//
// Default mirrors the interpreter's built in limits.  Zones of 0 means
// the console decides from the terminal width
//

func Default() *Config {

	return &Config{
		ZoneWidth:      14,
		StackMax:       1024,
		FnRecursionMax: 1000,
		Precedence:     LeftToRight,
	}
}

// Load reads path over the defaults.  Unknown keys are an error.
func Load(path string) (*Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

func Decode(r io.Reader) (*Config, error) {

	cfg := Default()

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	if err := decoder.Decode(cfg); err != nil && err != io.EOF {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {

	switch {
	case c.ZoneWidth < 1:
		return fmt.Errorf("zone_width must be positive, got %d", c.ZoneWidth)

	case c.Zones < 0:
		return fmt.Errorf("zones must not be negative, got %d", c.Zones)

	case c.StackMax < 0:
		return fmt.Errorf("stack_max must not be negative, got %d", c.StackMax)

	case c.FnRecursionMax < 1:
		return fmt.Errorf("fn_recursion_max must be positive, got %d", c.FnRecursionMax)

	case c.Precedence != LeftToRight && c.Precedence != Standard:
		return fmt.Errorf("precedence must be %q or %q, got %q", LeftToRight, Standard, c.Precedence)
	}

	return nil
}

func (c *Config) Encode(w io.Writer) error {

	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("config: encoder close: %w", err)
	}

	_, err := w.Write(buf.Bytes())

	return err
}
