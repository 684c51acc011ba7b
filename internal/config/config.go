// Package config loads the standup configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the flat standup configuration.
type Config struct {
	// DBPath is the SQLite file location.
	DBPath string `yaml:"db_path"`
	// TickInterval is the reminder-engine cadence. It bounds reminder
	// lateness and must be at most half the smallest schedule offset.
	TickInterval Duration `yaml:"tick_interval"`
	// EscalationSchedule holds the ordered offsets from fire time at
	// which reminder stages come due. Stage numbering starts at 1.
	EscalationSchedule []Duration `yaml:"escalation_schedule"`
	// FanoutConcurrency caps parallel sends per survey.
	FanoutConcurrency int `yaml:"fanout_concurrency"`
	// SendDeadline is the per-send transport timeout.
	SendDeadline Duration `yaml:"send_deadline"`
	// TimeZone is the canonical zone for all time arithmetic.
	TimeZone string `yaml:"time_zone"`
}

// Default returns the reference configuration.
func Default() *Config {
	return &Config{
		DBPath:             "standup.db",
		TickInterval:       Duration(30 * time.Second),
		EscalationSchedule: []Duration{Duration(30 * time.Second), Duration(60 * time.Second)},
		FanoutConcurrency:  50,
		SendDeadline:       Duration(10 * time.Second),
		TimeZone:           "UTC",
	}
}

// Load reads a YAML config file, filling unset fields with defaults.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the invariants the scheduler depends on.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive")
	}
	if c.FanoutConcurrency <= 0 {
		return fmt.Errorf("fanout_concurrency must be positive")
	}
	if c.SendDeadline <= 0 {
		return fmt.Errorf("send_deadline must be positive")
	}
	if len(c.EscalationSchedule) == 0 {
		return fmt.Errorf("escalation_schedule must have at least one stage")
	}
	prev := Duration(0)
	for i, off := range c.EscalationSchedule {
		if off <= prev {
			return fmt.Errorf("escalation_schedule offsets must be strictly increasing (stage %d)", i+1)
		}
		prev = off
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured canonical zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time_zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// Schedule returns the escalation offsets as plain durations.
func (c *Config) Schedule() []time.Duration {
	out := make([]time.Duration, len(c.EscalationSchedule))
	for i, d := range c.EscalationSchedule {
		out[i] = d.Std()
	}
	return out
}
