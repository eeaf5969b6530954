// Package model defines the in-memory run report handed to reportstore by its host.
package model

import "time"

// Report is the record of one configuration-management run on a node.
type Report struct {
	Host                 string
	Time                 time.Time
	ConfigurationVersion string
	TransactionUUID      string
	ReportFormat         int
	EngineVersion        string
	Kind                 string
	Status               string
	Environment          string
	Logs                 []*LogEntry
	Metrics              map[string]*Metric
	ResourceStatuses     map[string]*ResourceStatus
}

// LogEntry is a single log line emitted during the run.
type LogEntry struct {
	File    string
	Line    int
	Level   string
	Message string
	Source  string
	Time    time.Time
	Tags    Tags
}

// Metric groups related numeric values, e.g. "time" or "resources".
type Metric struct {
	Name   string
	Label  string
	Values map[string]float64
}

// ResourceStatus records whether a managed resource matched its desired state.
type ResourceStatus struct {
	ResourceType    string
	Title           string
	Resource        string
	File            string
	Line            int
	EvaluationTime  float64
	ChangeCount     int
	OutOfSyncCount  int
	Time            time.Time
	OutOfSync       bool
	Changed         bool
	Skipped         bool
	Failed          bool
	ContainmentPath []string
	Tags            Tags
	Events          []*Event
}

// Event is one property change applied (or audited) on a resource.
// The value fields hold whatever the resource type reports: scalars, lists or maps.
type Event struct {
	Audited         bool
	Property        string
	PreviousValue   any
	DesiredValue    any
	HistoricalValue any
	Message         string
	Name            string
	Status          string
	Time            time.Time
}
