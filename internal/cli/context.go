package cli

import (
	"fmt"
	"os"

	"github.com/jvs-project/reportstore/internal/audit"
	"github.com/jvs-project/reportstore/internal/report"
	"github.com/jvs-project/reportstore/pkg/color"
	"github.com/jvs-project/reportstore/pkg/config"
	"github.com/jvs-project/reportstore/pkg/logging"
	"github.com/jvs-project/reportstore/pkg/metrics"
	"github.com/jvs-project/reportstore/pkg/model"
)

func defaultConfigPath() string {
	return config.DefaultPath
}

func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath
}

// loadConfig reads the config file, applies env and flag overrides and
// validates the result.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(resolvedConfigPath())
	if err != nil {
		return nil, err
	}
	if reportDir != "" {
		cfg.ReportDir = reportDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore loads the configuration and returns a store wired to the
// configured logger and the process metrics registry.
func openStore() (*report.Store, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log := cfg.NewLogger()
	logging.SetGlobal(log)

	s := report.NewStore(cfg.ReportDir, log)
	s.Metrics = metrics.Default()
	return s, cfg, nil
}

// flushMetrics writes the metrics textfile when one is configured.
func flushMetrics(cfg *config.Config) {
	if cfg == nil || cfg.MetricsTextfile == "" {
		return
	}
	if err := metrics.Default().WriteTextfile(cfg.MetricsTextfile); err != nil {
		logging.Warn("Could not write metrics textfile", map[string]any{
			"path":  cfg.MetricsTextfile,
			"error": err.Error(),
		})
	}
}

// appendAudit records a destructive operation when audit_log is configured.
func appendAudit(cfg *config.Config, event model.AuditEventType, host string, details map[string]any) error {
	if cfg.AuditLog == "" {
		return nil
	}
	if err := audit.NewFileAppender(cfg.AuditLog).Append(event, host, details); err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	return nil
}

func fmtErr(format string, args ...any) {
	prefix := "reportstore: "
	if color.Enabled() {
		prefix = color.Error("reportstore:") + " "
	}
	fmt.Fprintf(os.Stderr, prefix+format+"\n", args...)
}
