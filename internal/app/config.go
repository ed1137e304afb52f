// Package app wires the CPU, bus and cartridge together into a runnable
// trace harness.
package app

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/retroenv/retrogolib/log"
)

// Config holds the harness configuration. All fields can be loaded from a
// JSON file and overridden by command line flags.
type Config struct {
	// StartPC overrides the reset vector when set, as a hex string ("C000").
	StartPC string `json:"start_pc"`
	// MaxSteps stops execution after this many instructions. 0 means
	// run until a decode error or the reference trace is exhausted.
	MaxSteps int `json:"max_steps"`
	// TraceOutput is the file the trace is written to, "-" for stdout.
	TraceOutput string `json:"trace_output"`
	// Reference is an optional golden log to compare the trace against.
	Reference string `json:"reference"`

	Debug bool `json:"debug"`
	Quiet bool `json:"quiet"`
}

// DefaultConfig returns the configuration used when no config file is given.
func DefaultConfig() Config {
	return Config{
		TraceOutput: "-",
	}
}

// LoadConfig reads a JSON config file. A missing file is not an error, the
// defaults are returned so flag-only invocations work without a config.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c Config) Validate() error {
	if c.MaxSteps < 0 {
		return fmt.Errorf("max_steps must not be negative: %d", c.MaxSteps)
	}
	if c.StartPC != "" {
		if _, err := c.startPC(); err != nil {
			return err
		}
	}
	return nil
}

// startPC parses the StartPC override. The "0x" and "$" prefixes are
// accepted alongside bare hex.
func (c Config) startPC() (uint16, error) {
	s := strings.TrimPrefix(strings.TrimPrefix(c.StartPC, "0x"), "$")
	value, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("parsing start_pc %q: %w", c.StartPC, err)
	}
	return uint16(value), nil
}

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
