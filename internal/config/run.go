package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// RunConfig holds configuration for the periodic valuation loop.
type RunConfig struct {
	Config
	Out          string
	PGDSN        string
	Interval     time.Duration
	StateFile    string
	StateName    string
	Force        bool
	Once         bool
	WriteRetries int
}

// LoadRun merges the env file, config file, environment variables, and flags
// into RunConfig.
func LoadRun(cfgFile string, flags *pflag.FlagSet) (RunConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return RunConfig{}, err
	}

	cfg := RunConfig{
		Config:       common(v),
		Out:          v.GetString("out"),
		PGDSN:        v.GetString("pg-dsn"),
		Interval:     v.GetDuration("interval"),
		StateFile:    v.GetString("state-file"),
		StateName:    v.GetString("state-name"),
		Force:        v.GetBool("force"),
		Once:         v.GetBool("once"),
		WriteRetries: v.GetInt("write-retries"),
	}
	if err := cfg.Validate(); err != nil {
		return RunConfig{}, err
	}
	return cfg, nil
}

func (c RunConfig) Validate() error {
	if c.Snapshot == "" {
		return fmt.Errorf("snapshot path is required")
	}
	if !c.Once && c.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if c.Out == "" && c.PGDSN == "" {
		return fmt.Errorf("at least one of out or pg-dsn is required")
	}
	return nil
}
