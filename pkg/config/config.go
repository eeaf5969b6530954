// Package config provides configuration file support for reportstore.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jvs-project/reportstore/pkg/errclass"
	"github.com/jvs-project/reportstore/pkg/fsutil"
	"github.com/jvs-project/reportstore/pkg/logging"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "/etc/reportstore/config.yaml"

// Environment overrides, applied after the file is read.
const (
	EnvReportDir = "REPORTSTORE_REPORT_DIR"
	EnvInboxDir  = "REPORTSTORE_INBOX_DIR"
	EnvLogLevel  = "REPORTSTORE_LOG_LEVEL"
)

// Config represents the reportstore configuration.
type Config struct {
	ReportDir       string        `yaml:"report_dir" json:"report_dir"`
	InboxDir        string        `yaml:"inbox_dir,omitempty" json:"inbox_dir,omitempty"`
	MetricsTextfile string        `yaml:"metrics_textfile,omitempty" json:"metrics_textfile,omitempty"`
	AuditLog        string        `yaml:"audit_log,omitempty" json:"audit_log,omitempty"`
	Logging         LoggingConfig `yaml:"logging" json:"logging"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"` // json, text
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		ReportDir: "/var/lib/reportstore/reports",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from path and applies environment overrides.
// Returns the default config (plus overrides) if the file doesn't exist.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadFile reads configuration from path without environment overrides.
// Use it when the result is written back with Save.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// No config file is OK, use defaults
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvReportDir); v != "" {
		c.ReportDir = v
	}
	if v := os.Getenv(EnvInboxDir); v != "" {
		c.InboxDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
}

// Save writes configuration to path.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := fsutil.AtomicWrite(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.ReportDir == "" {
		return errclass.ErrConfigInvalid.WithMessage("report_dir must be set")
	}
	if !filepath.IsAbs(c.ReportDir) {
		return errclass.ErrConfigInvalid.WithMessagef("report_dir must be absolute: %s", c.ReportDir)
	}
	if c.InboxDir != "" && !filepath.IsAbs(c.InboxDir) {
		return errclass.ErrConfigInvalid.WithMessagef("inbox_dir must be absolute: %s", c.InboxDir)
	}
	if c.AuditLog != "" && !filepath.IsAbs(c.AuditLog) {
		return errclass.ErrConfigInvalid.WithMessagef("audit_log must be absolute: %s", c.AuditLog)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return errclass.ErrConfigInvalid.WithMessage(err.Error())
	}
	if _, err := logging.ParseFormat(c.Logging.Format); err != nil {
		return errclass.ErrConfigInvalid.WithMessage(err.Error())
	}
	return nil
}

// NewLogger builds a logger from the logging section. Call Validate first.
func (c *Config) NewLogger() *logging.Logger {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		level = logging.LevelInfo
	}
	format, err := logging.ParseFormat(c.Logging.Format)
	if err != nil {
		format = logging.FormatJSON
	}
	l := logging.NewLogger(level)
	l.SetFormat(format)
	return l
}

// Keys lists the settable configuration keys.
var Keys = []string{"report_dir", "inbox_dir", "metrics_textfile", "audit_log", "logging.level", "logging.format"}

// Get returns the value of a configuration key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "report_dir":
		return c.ReportDir, nil
	case "inbox_dir":
		return c.InboxDir, nil
	case "metrics_textfile":
		return c.MetricsTextfile, nil
	case "audit_log":
		return c.AuditLog, nil
	case "logging.level":
		return c.Logging.Level, nil
	case "logging.format":
		return c.Logging.Format, nil
	default:
		return "", fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys, ", "))
	}
}

// Set updates a configuration key and validates the result.
func (c *Config) Set(key, value string) error {
	next := *c
	switch key {
	case "report_dir":
		next.ReportDir = value
	case "inbox_dir":
		next.InboxDir = value
	case "metrics_textfile":
		next.MetricsTextfile = value
	case "audit_log":
		next.AuditLog = value
	case "logging.level":
		next.Logging.Level = value
	case "logging.format":
		next.Logging.Format = value
	default:
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys, ", "))
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}
