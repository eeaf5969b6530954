package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jvs-project/reportstore/pkg/errclass")

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.ReportDir != "/var/lib/reportstore/reports" {
		t.Errorf("unexpected report_dir %s", cfg.ReportDir)
	}
	if cfg.InboxDir != "" {
		t.Errorf("expected empty inbox_dir, got %s", cfg.InboxDir)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging defaults %+v", cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_NotExists(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ReportDir != Default().ReportDir {
		t.Errorf("expected default report_dir, got %s", cfg.ReportDir)
	}
}

func TestLoad_Exists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
report_dir: /srv/reports
inbox_dir: /srv/inbox
metrics_textfile: /var/lib/node_exporter/reportstore.prom
audit_log: /var/log/reportstore/audit.jsonl
logging:
  level: debug
  format: text
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ReportDir != "/srv/reports" {
		t.Errorf("expected /srv/reports, got %s", cfg.ReportDir)
	}
	if cfg.InboxDir != "/srv/inbox" {
		t.Errorf("expected /srv/inbox, got %s", cfg.InboxDir)
	}
	if cfg.MetricsTextfile != "/var/lib/node_exporter/reportstore.prom" {
		t.Errorf("unexpected metrics_textfile %s", cfg.MetricsTextfile)
	}
	if cfg.AuditLog != "/var/log/reportstore/audit.jsonl" {
		t.Errorf("unexpected audit_log %s", cfg.AuditLog)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("unexpected logging %+v", cfg.Logging)
	}
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("report_dir: /srv/reports\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default level, got %s", cfg.Logging.Level)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("report_dir: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvReportDir, "/env/reports")
	t.Setenv(EnvInboxDir, "/env/inbox")
	t.Setenv(EnvLogLevel, "warn")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("report_dir: /srv/reports\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ReportDir != "/env/reports" {
		t.Errorf("env should win over file, got %s", cfg.ReportDir)
	}
	if cfg.InboxDir != "/env/inbox" {
		t.Errorf("unexpected inbox_dir %s", cfg.InboxDir)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("unexpected level %s", cfg.Logging.Level)
	}
}

func TestLoadFile_IgnoresEnv(t *testing.T) {
	t.Setenv(EnvReportDir, "/env/reports")
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ReportDir != Default().ReportDir {
		t.Errorf("LoadFile must not apply env, got %s", cfg.ReportDir)
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etc", "config.yaml")
	cfg := Default()
	cfg.ReportDir = "/srv/reports"
	cfg.Logging.Format = "text"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0644 {
		t.Errorf("expected 0644, got %v", info.Mode().Perm())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.ReportDir != "/srv/reports" || loaded.Logging.Format != "text" {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty report_dir", func(c *Config) { c.ReportDir = "" }},
		{"relative report_dir", func(c *Config) { c.ReportDir = "reports" }},
		{"relative inbox_dir", func(c *Config) { c.InboxDir = "inbox" }},
		{"relative audit_log", func(c *Config) { c.AuditLog = "audit.jsonl" }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, errclass.ErrConfigInvalid) {
				t.Errorf("expected E_CONFIG_INVALID, got %v", err)
			}
		})
	}
}

func TestGetSet(t *testing.T) {
	cfg := Default()
	for _, key := range Keys {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("get %s: %v", key, err)
		}
	}

	if err := cfg.Set("report_dir", "/srv/reports"); err != nil {
		t.Fatal(err)
	}
	if v, _ := cfg.Get("report_dir"); v != "/srv/reports" {
		t.Errorf("expected /srv/reports, got %s", v)
	}

	if err := cfg.Set("logging.level", "nope"); err == nil {
		t.Error("expected validation error")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("failed set must not change config, got %s", cfg.Logging.Level)
	}

	if err := cfg.Set("color", "on"); err == nil {
		t.Error("expected unknown key error")
	}
	if _, err := cfg.Get("color"); err == nil {
		t.Error("expected unknown key error")
	}
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "text"

	var buf bytes.Buffer
	l := cfg.NewLogger()
	l.SetOutput(&buf)
	l.Debug("hello", map[string]any{"host": "web01"})

	out := buf.String()
	if !strings.Contains(out, "hello") || !strings.Contains(out, "host=web01") {
		t.Errorf("unexpected output %q", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("expected text format, got %q", out)
	}
}
