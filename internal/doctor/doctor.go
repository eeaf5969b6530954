// Package doctor checks a report directory for damage and leftovers.
package doctor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jvs-project/reportstore/internal/audit"
	"github.com/jvs-project/reportstore/internal/report"
	"github.com/jvs-project/reportstore/pkg/fsutil"
	"github.com/jvs-project/reportstore/pkg/pathutil"
)

// Severity levels, mildest first.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Finding represents a detected issue.
type Finding struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Path        string `json:"path,omitempty"`
}

// Result contains doctor check results.
type Result struct {
	Healthy  bool      `json:"healthy"`
	Hosts    int       `json:"hosts"`
	Reports  int       `json:"reports"`
	Findings []Finding `json:"findings"`
}

func (r *Result) add(f Finding) {
	r.Findings = append(r.Findings, f)
	if f.Severity == SeverityError || f.Severity == SeverityCritical {
		r.Healthy = false
	}
}

// Doctor performs report directory health checks.
type Doctor struct {
	root     string
	auditLog string
}

// NewDoctor creates a new doctor for the report root. auditLog may be empty.
func NewDoctor(root, auditLog string) *Doctor {
	return &Doctor{root: root, auditLog: auditLog}
}

// Check runs all diagnostic checks. With strict every report file is parsed.
func (d *Doctor) Check(strict bool) (*Result, error) {
	result := &Result{Healthy: true, Findings: []Finding{}}

	if d.checkRoot(result) {
		d.checkHosts(result, strict)
	}
	d.checkAuditLog(result)
	return result, nil
}

// checkRoot reports whether the root exists and can be walked.
func (d *Doctor) checkRoot(result *Result) bool {
	info, err := os.Stat(d.root)
	switch {
	case os.IsNotExist(err):
		result.add(Finding{
			Category:    "root",
			Description: "report directory does not exist yet",
			Severity:    SeverityInfo,
			Path:        d.root,
		})
		return false
	case err != nil:
		result.add(Finding{
			Category:    "root",
			Description: fmt.Sprintf("cannot stat report directory: %v", err),
			Severity:    SeverityCritical,
			Path:        d.root,
		})
		return false
	case !info.IsDir():
		result.add(Finding{
			Category:    "root",
			Description: "report directory is not a directory",
			Severity:    SeverityCritical,
			Path:        d.root,
		})
		return false
	}
	return true
}

func (d *Doctor) checkHosts(result *Result, strict bool) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		result.add(Finding{
			Category:    "root",
			Description: fmt.Sprintf("cannot read report directory: %v", err),
			Severity:    SeverityCritical,
			Path:        d.root,
		})
		return
	}

	for _, e := range entries {
		path := filepath.Join(d.root, e.Name())
		if !e.IsDir() {
			result.add(Finding{
				Category:    "stray",
				Description: fmt.Sprintf("unexpected file in report directory: %s", e.Name()),
				Severity:    SeverityInfo,
				Path:        path,
			})
			continue
		}
		if err := pathutil.ValidateHost(e.Name()); err != nil {
			result.add(Finding{
				Category:    "host",
				Description: fmt.Sprintf("directory name is not a valid host: %q", e.Name()),
				Severity:    SeverityWarning,
				Path:        path,
			})
			continue
		}
		result.Hosts++
		d.checkHostDir(result, e.Name(), path, strict)
	}
}

func (d *Doctor) checkHostDir(result *Result, host, dir string, strict bool) {
	if info, err := os.Stat(dir); err == nil && info.Mode().Perm() != report.DirPerm {
		result.add(Finding{
			Category:    "permissions",
			Description: fmt.Sprintf("host directory %s has mode %04o, want %04o", host, info.Mode().Perm(), report.DirPerm),
			Severity:    SeverityWarning,
			Path:        dir,
		})
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		result.add(Finding{
			Category:    "host",
			Description: fmt.Sprintf("cannot read host directory %s: %v", host, err),
			Severity:    SeverityError,
			Path:        dir,
		})
		return
	}

	for _, e := range entries {
		name := e.Name()
		path := filepath.Join(dir, name)
		switch {
		case strings.HasPrefix(name, fsutil.TmpPrefix):
			result.add(Finding{
				Category:    "tmp",
				Description: fmt.Sprintf("orphan temp file: %s", name),
				Severity:    SeverityInfo,
				Path:        path,
			})
		case !e.Type().IsRegular() || !report.IsReportName(name):
			result.add(Finding{
				Category:    "stray",
				Description: fmt.Sprintf("unexpected entry for host %s: %s (blocks destroy if a directory)", host, name),
				Severity:    SeverityInfo,
				Path:        path,
			})
		default:
			result.Reports++
			d.checkReportFile(result, host, path, strict)
		}
	}
}

func (d *Doctor) checkReportFile(result *Result, host, path string, strict bool) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.Mode().Perm() != report.FilePerm {
		result.add(Finding{
			Category:    "permissions",
			Description: fmt.Sprintf("report has mode %04o, want %04o", info.Mode().Perm(), report.FilePerm),
			Severity:    SeverityWarning,
			Path:        path,
		})
	}
	if !strict {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.add(Finding{
			Category:    "integrity",
			Description: fmt.Sprintf("cannot read report: %v", err),
			Severity:    SeverityError,
			Path:        path,
		})
		return
	}
	var doc struct {
		Host string `json:"host"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		result.add(Finding{
			Category:    "integrity",
			Description: fmt.Sprintf("report is not valid JSON: %v", err),
			Severity:    SeverityError,
			Path:        path,
		})
		return
	}
	if doc.Host != host {
		result.add(Finding{
			Category:    "integrity",
			Description: fmt.Sprintf("report names host %q but is stored under %q", doc.Host, host),
			Severity:    SeverityError,
			Path:        path,
		})
	}
}

func (d *Doctor) checkAuditLog(result *Result) {
	if d.auditLog == "" {
		return
	}
	res, err := audit.Verify(d.auditLog)
	if err != nil {
		result.add(Finding{
			Category:    "audit",
			Description: fmt.Sprintf("cannot verify audit log: %v", err),
			Severity:    SeverityError,
			Path:        d.auditLog,
		})
		return
	}
	if !res.Valid {
		result.add(Finding{
			Category:    "audit",
			Description: fmt.Sprintf("audit log hash chain broken at line %d: %s", res.BrokenAt, res.Error),
			Severity:    SeverityCritical,
			Path:        d.auditLog,
		})
	}
}

// Repair removes the orphan temp files listed in result and returns their
// paths. Nothing else is touched.
func (d *Doctor) Repair(result *Result) ([]string, error) {
	var removed []string
	for _, f := range result.Findings {
		if f.Category != "tmp" {
			continue
		}
		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("remove %s: %w", f.Path, err)
		}
		removed = append(removed, f.Path)
	}
	return removed, nil
}
