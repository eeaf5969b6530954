package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jvs-project/reportstore/pkg/errclass"
	"github.com/jvs-project/reportstore/pkg/model"
	"github.com/jvs-project/reportstore/pkg/uuidutil"
)

// Format is the encoding of a report handed over as a file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the format from the file extension; JSON is the default.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// wire types mirror the on-disk document shape and carry both json and yaml tags.
type wireReport struct {
	Host                 string                   `json:"host" yaml:"host"`
	Time                 wireTime                 `json:"time" yaml:"time"`
	ConfigurationVersion scalar                   `json:"configuration_version" yaml:"configuration_version"`
	TransactionUUID      string                   `json:"transaction_uuid" yaml:"transaction_uuid"`
	ReportFormat         int                      `json:"report_format" yaml:"report_format"`
	EngineVersion        string                   `json:"engine_version" yaml:"engine_version"`
	Kind                 string                   `json:"kind" yaml:"kind"`
	Status               string                   `json:"status" yaml:"status"`
	Environment          string                   `json:"environment" yaml:"environment"`
	Logs                 []*wireLog               `json:"logs" yaml:"logs"`
	Metrics              map[string]*wireMetric   `json:"metrics" yaml:"metrics"`
	ResourceStatuses     map[string]*wireResource `json:"resource_statuses" yaml:"resource_statuses"`
}

type wireLog struct {
	File    string   `json:"file" yaml:"file"`
	Line    int      `json:"line" yaml:"line"`
	Level   string   `json:"level" yaml:"level"`
	Message string   `json:"message" yaml:"message"`
	Source  string   `json:"source" yaml:"source"`
	Time    wireTime `json:"time" yaml:"time"`
	Tags    wireTags `json:"tags" yaml:"tags"`
}

type wireMetric struct {
	Name   string             `json:"name" yaml:"name"`
	Label  string             `json:"label" yaml:"label"`
	Values map[string]float64 `json:"values" yaml:"values"`
}

type wireResource struct {
	ResourceType    string       `json:"resource_type" yaml:"resource_type"`
	Title           string       `json:"title" yaml:"title"`
	Resource        string       `json:"resource" yaml:"resource"`
	File            string       `json:"file" yaml:"file"`
	Line            int          `json:"line" yaml:"line"`
	EvaluationTime  float64      `json:"evaluation_time" yaml:"evaluation_time"`
	ChangeCount     int          `json:"change_count" yaml:"change_count"`
	OutOfSyncCount  int          `json:"out_of_sync_count" yaml:"out_of_sync_count"`
	Time            wireTime     `json:"time" yaml:"time"`
	OutOfSync       bool         `json:"out_of_sync" yaml:"out_of_sync"`
	Changed         bool         `json:"changed" yaml:"changed"`
	Skipped         bool         `json:"skipped" yaml:"skipped"`
	Failed          bool         `json:"failed" yaml:"failed"`
	ContainmentPath []string     `json:"containment_path" yaml:"containment_path"`
	Tags            wireTags     `json:"tags" yaml:"tags"`
	Events          []*wireEvent `json:"events" yaml:"events"`
}

type wireEvent struct {
	Audited         bool     `json:"audited" yaml:"audited"`
	Property        string   `json:"property" yaml:"property"`
	PreviousValue   any      `json:"previous_value" yaml:"previous_value"`
	DesiredValue    any      `json:"desired_value" yaml:"desired_value"`
	HistoricalValue any      `json:"historical_value" yaml:"historical_value"`
	Message         string   `json:"message" yaml:"message"`
	Name            string   `json:"name" yaml:"name"`
	Status          string   `json:"status" yaml:"status"`
	Time            wireTime `json:"time" yaml:"time"`
}

// wireTime accepts RFC 3339 timestamps and treats "" and null as the zero time,
// which is how zero times are written out.
type wireTime struct {
	time.Time
}

func (t *wireTime) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return t.parse(s)
}

func (t *wireTime) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a timestamp", node.Line)
	}
	if node.ShortTag() == "!!null" {
		t.Time = time.Time{}
		return nil
	}
	return t.parse(&node.Value)
}

func (t *wireTime) parse(s *string) error {
	if s == nil || *s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// scalar accepts a string or a number; configuration versions are often
// plain timestamps.
type scalar string

func (s *scalar) UnmarshalJSON(data []byte) error {
	var v any
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}
	if v == nil {
		*s = ""
		return nil
	}
	*s = scalar(fmt.Sprint(v))
	return nil
}

func (s *scalar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar", node.Line)
	}
	if node.ShortTag() == "!!null" {
		*s = ""
		return nil
	}
	*s = scalar(node.Value)
	return nil
}

// wireTags decodes either tag form: a list becomes model.TagList, a mapping
// becomes *model.TagSet. Mappings are either {"set": [...]} or
// {"name": true, ...}.
type wireTags struct {
	model.Tags
}

func (t *wireTags) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	tags, err := tagsFromValue(v)
	if err != nil {
		return err
	}
	t.Tags = tags
	return nil
}

func (t *wireTags) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	tags, err := tagsFromValue(v)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	t.Tags = tags
	return nil
}

func tagsFromValue(v any) (model.Tags, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case []any:
		list, err := stringList(val)
		if err != nil {
			return nil, err
		}
		return model.TagList(list), nil
	case map[string]any:
		if inner, ok := val["set"]; ok && len(val) == 1 {
			items, ok := inner.([]any)
			if !ok {
				return nil, fmt.Errorf("tags: set must be a list")
			}
			list, err := stringList(items)
			if err != nil {
				return nil, err
			}
			return model.NewTagSet(list...), nil
		}
		names := make([]string, 0, len(val))
		for k, enabled := range val {
			if b, ok := enabled.(bool); ok && !b {
				continue
			}
			names = append(names, k)
		}
		sort.Strings(names)
		return model.NewTagSet(names...), nil
	default:
		return nil, fmt.Errorf("tags: unsupported value of type %T", v)
	}
}

func stringList(items []any) ([]string, error) {
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("tags: %v is not a string", item)
		}
		out = append(out, s)
	}
	return out, nil
}

// Decode reads one report. A missing transaction UUID is assigned; a
// malformed one, or a missing host, is rejected with ErrReportInvalid.
// Host names are not checked here: that is Store's job.
func Decode(r io.Reader, format Format) (*model.Report, error) {
	var w wireReport
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&w); err != nil {
			return nil, errclass.ErrReportDecode.WithMessagef("decode yaml report: %v", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.UseNumber()
		if err := dec.Decode(&w); err != nil {
			return nil, errclass.ErrReportDecode.WithMessagef("decode json report: %v", err)
		}
	default:
		return nil, errclass.ErrReportDecode.WithMessagef("unknown report format %q", format)
	}

	if w.Host == "" {
		return nil, errclass.ErrReportInvalid.WithMessage("report has no host")
	}
	if w.TransactionUUID == "" {
		w.TransactionUUID = uuidutil.NewV4()
	} else if err := uuidutil.Check(w.TransactionUUID); err != nil {
		return nil, errclass.ErrReportInvalid.WithMessagef("transaction_uuid %q: %v", w.TransactionUUID, err)
	}

	return w.toModel(), nil
}

// DecodeFile opens path and decodes it using the format implied by its extension.
func DecodeFile(path string) (*model.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()
	return Decode(f, FormatForPath(path))
}

func (w *wireReport) toModel() *model.Report {
	r := &model.Report{
		Host:                 w.Host,
		Time:                 w.Time.Time,
		ConfigurationVersion: string(w.ConfigurationVersion),
		TransactionUUID:      w.TransactionUUID,
		ReportFormat:         w.ReportFormat,
		EngineVersion:        w.EngineVersion,
		Kind:                 w.Kind,
		Status:               w.Status,
		Environment:          w.Environment,
		Logs:                 make([]*model.LogEntry, 0, len(w.Logs)),
		Metrics:              make(map[string]*model.Metric, len(w.Metrics)),
		ResourceStatuses:     make(map[string]*model.ResourceStatus, len(w.ResourceStatuses)),
	}
	for _, l := range w.Logs {
		if l == nil {
			continue
		}
		r.Logs = append(r.Logs, &model.LogEntry{
			File:    l.File,
			Line:    l.Line,
			Level:   l.Level,
			Message: l.Message,
			Source:  l.Source,
			Time:    l.Time.Time,
			Tags:    l.Tags.Tags,
		})
	}
	for k, m := range w.Metrics {
		if m == nil {
			continue
		}
		r.Metrics[k] = &model.Metric{Name: m.Name, Label: m.Label, Values: m.Values}
	}
	for k, rs := range w.ResourceStatuses {
		if rs == nil {
			continue
		}
		status := &model.ResourceStatus{
			ResourceType:    rs.ResourceType,
			Title:           rs.Title,
			Resource:        rs.Resource,
			File:            rs.File,
			Line:            rs.Line,
			EvaluationTime:  rs.EvaluationTime,
			ChangeCount:     rs.ChangeCount,
			OutOfSyncCount:  rs.OutOfSyncCount,
			Time:            rs.Time.Time,
			OutOfSync:       rs.OutOfSync,
			Changed:         rs.Changed,
			Skipped:         rs.Skipped,
			Failed:          rs.Failed,
			ContainmentPath: rs.ContainmentPath,
			Tags:            rs.Tags.Tags,
			Events:          make([]*model.Event, 0, len(rs.Events)),
		}
		for _, e := range rs.Events {
			if e == nil {
				continue
			}
			status.Events = append(status.Events, &model.Event{
				Audited:         e.Audited,
				Property:        e.Property,
				PreviousValue:   e.PreviousValue,
				DesiredValue:    e.DesiredValue,
				HistoricalValue: e.HistoricalValue,
				Message:         e.Message,
				Name:            e.Name,
				Status:          e.Status,
				Time:            e.Time.Time,
			})
		}
		r.ResourceStatuses[k] = status
	}
	return r
}
