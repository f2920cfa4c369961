package schedgroup

import (
	"context"
	"fmt"
	"runtime"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the runtime configuration. It
// can be populated from YAML, JSON or environment-specific tooling; the
// zero value is useful - all nested fields inherit their package defaults.
type Config struct {
	// Shards is the number of execution cores the runtime starts.
	Shards int `json:"shards" yaml:"shards"`

	Mailbox MailboxConfig `json:"mailbox" yaml:"mailbox"`
	Main    MainConfig    `json:"main" yaml:"main"`
}

// MailboxConfig bounds the per-shard mailbox.
type MailboxConfig struct {
	Buffer int `json:"buffer" yaml:"buffer"`
}

// MainConfig describes the permanent main group installed on every shard.
type MainConfig struct {
	Name   string  `json:"name" yaml:"name"`
	Shares float64 `json:"shares" yaml:"shares"`
}

// DefaultConfig returns a Config populated with the package defaults:
// one shard per CPU, and a main group named "main" with 1000 shares.
func DefaultConfig() *Config {
	return &Config{
		Shards:  runtime.NumCPU(),
		Mailbox: MailboxConfig{Buffer: 128},
		Main:    MainConfig{Name: "main", Shares: 1000},
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Shards <= 0 {
		return fmt.Errorf("shards must be > 0")
	}
	if c.Mailbox.Buffer < 0 {
		return fmt.Errorf("mailbox.buffer must be >= 0")
	}
	if c.Main.Shares <= 0 {
		return fmt.Errorf("main.shares must be > 0")
	}
	return nil
}

// LoadConfig loads a YAML configuration from the supplied URL (file path,
// memory or cloud scheme) on top of the defaults.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", URL, err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config from %s: %w", URL, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
