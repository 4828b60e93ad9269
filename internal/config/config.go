// Package config loads and validates flicker's YAML configuration
// document into typed structures, filling the same defaults the original
// implementation applies (config.rs's default_buffer_size,
// default_flush_interval_ms, and the syslog destination's default port and
// protocol).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultBufferSize      = 100
	defaultFlushIntervalMs = 30000
	defaultSyslogPort      = 514
	defaultSyslogProtocol  = "udp"
)

// Config is the top-level document: an ordered list of log files to tail,
// each with its own polling, buffering, filtering and destination settings.
type Config struct {
	LogFiles []LogFileConfig `yaml:"log_files"`
}

// LogFileConfig describes one pipeline.
type LogFileConfig struct {
	Path               string            `yaml:"path"`
	PollingFrequencyMs uint64            `yaml:"polling_frequency_ms"`
	BufferSize         int               `yaml:"buffer_size"`
	FlushIntervalMs    uint64            `yaml:"flush_interval_ms"`
	MatchOn            []string          `yaml:"match_on"`
	ExcludeOn          []string          `yaml:"exclude_on"`
	Destination        DestinationConfig `yaml:"destination"`
}

// BasicAuth holds HTTP basic-auth credentials.
type BasicAuth struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// DestinationConfig is a union of every destination type's fields; only the
// fields relevant to Type are expected to be set, and internal/destination
// validates that the ones it needs are present at construction time.
type DestinationConfig struct {
	Type string `yaml:"type"`

	// http
	Endpoint    string     `yaml:"endpoint"`
	APIKey      string     `yaml:"api_key"`
	Basic       *BasicAuth `yaml:"basic"`
	RequireAuth bool       `yaml:"require_auth"`

	// syslog
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Protocol string `yaml:"protocol"`

	// elasticsearch
	URL   string `yaml:"url"`
	Index string `yaml:"index"`

	// file
	Path string `yaml:"path"`
}

// Load reads and parses the YAML document at path, applying defaults to
// every log file entry. It does not validate destination-specific required
// fields — that is internal/destination's job, scoped per-pipeline so a
// single bad entry cannot fail the whole process (spec.md §6.1).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	for i := range cfg.LogFiles {
		applyDefaults(&cfg.LogFiles[i])
	}

	return &cfg, nil
}

func applyDefaults(lf *LogFileConfig) {
	if lf.BufferSize == 0 {
		lf.BufferSize = defaultBufferSize
	}
	if lf.FlushIntervalMs == 0 {
		lf.FlushIntervalMs = defaultFlushIntervalMs
	}
	if lf.Destination.Type == "syslog" {
		if lf.Destination.Port == 0 {
			lf.Destination.Port = defaultSyslogPort
		}
		if lf.Destination.Protocol == "" {
			lf.Destination.Protocol = defaultSyslogProtocol
		}
	}
}
