package report_test

import (
	"testing"
	"time"

	"github.com/jvs-project/reportstore/internal/report"
	"github.com/jvs-project/reportstore/pkg/model"
)

var fixedNow = time.Date(2024, 3, 5, 8, 7, 42, 0, time.UTC)

// sampleReport returns a report with every collection populated. The first
// log uses the primitive tag form and the second the structured one so
// per-element normalization is exercised.
func sampleReport() *model.Report {
	runTime := time.Date(2024, 3, 5, 8, 6, 0, 123000000, time.UTC)
	return &model.Report{
		Host:                 "web01",
		Time:                 runTime,
		ConfigurationVersion: "1709625960",
		TransactionUUID:      "3f1c8e2a-5b7d-4c1e-9a2f-6d8b0e4c7a11",
		ReportFormat:         4,
		EngineVersion:        "7.28.0",
		Kind:                 "apply",
		Status:               "changed",
		Environment:          "production",
		Logs: []*model.LogEntry{
			{
				File:    "/etc/app/site.pp",
				Line:    12,
				Level:   "notice",
				Message: "content changed '{md5}a' to '{md5}b'",
				Source:  "/Stage[main]/Main/File[/etc/motd]/content",
				Time:    runTime,
				Tags:    model.TagList{"notice", "file", "class"},
			},
			{
				Level:   "info",
				Message: "Applying configuration version '1709625960'",
				Source:  "agent",
				Time:    runTime,
				Tags:    model.NewTagSet("info", "agent"),
			},
		},
		Metrics: map[string]*model.Metric{
			"time": {
				Name:   "time",
				Label:  "Time",
				Values: map[string]float64{"file": 0.012, "total": 1.5},
			},
			"resources": {
				Name:   "resources",
				Label:  "Resources",
				Values: map[string]float64{"total": 7, "changed": 1},
			},
		},
		ResourceStatuses: map[string]*model.ResourceStatus{
			"File[/etc/motd]": {
				ResourceType:    "File",
				Title:           "/etc/motd",
				Resource:        "File[/etc/motd]",
				File:            "/etc/app/site.pp",
				Line:            12,
				EvaluationTime:  0.004,
				ChangeCount:     1,
				OutOfSyncCount:  1,
				Time:            runTime,
				OutOfSync:       true,
				Changed:         true,
				ContainmentPath: []string{"Stage[main]", "Main", "File[/etc/motd]"},
				Tags:            model.NewTagSet("file", "class"),
				Events: []*model.Event{
					{
						Property:      "content",
						PreviousValue: "{md5}a",
						DesiredValue:  "{md5}b",
						Message:       "content changed",
						Name:          "content_changed",
						Status:        "success",
						Time:          runTime,
					},
				},
			},
			"Service[nginx]": {
				ResourceType:    "Service",
				Title:           "nginx",
				Resource:        "Service[nginx]",
				Skipped:         true,
				ContainmentPath: []string{"Stage[main]", "Main", "Service[nginx]"},
				Tags:            model.TagList{"service"},
			},
		},
	}
}

func newTestStore(t *testing.T, diag report.Diagnostics) *report.Store {
	t.Helper()
	s := report.NewStore(t.TempDir(), diag)
	s.Now = func() time.Time { return fixedNow }
	return s
}
