// Package report turns host run reports into JSON documents on disk and
// removes them again.
package report

import (
	"fmt"
	"maps"
	"reflect"
	"time"

	"github.com/jvs-project/reportstore/pkg/jsonutil"
	"github.com/jvs-project/reportstore/pkg/model"
)

// ToDataHash flattens r into a JSON-ready tree. The result owns all of its
// data: no slice or map in it is shared with r, so later changes to r do not
// leak into an already serialized snapshot. Every collection is flattened
// element by element and empty collections come out as empty, never nil.
func ToDataHash(r *model.Report) map[string]any {
	logs := make([]any, 0, len(r.Logs))
	for _, l := range r.Logs {
		logs = append(logs, logDataHash(l))
	}

	metrics := make(map[string]any, len(r.Metrics))
	for k, m := range r.Metrics {
		metrics[k] = metricDataHash(m)
	}

	statuses := make(map[string]any, len(r.ResourceStatuses))
	for k, rs := range r.ResourceStatuses {
		statuses[k] = resourceStatusDataHash(rs)
	}

	return map[string]any{
		"host":                  r.Host,
		"time":                  formatTime(r.Time),
		"configuration_version": r.ConfigurationVersion,
		"transaction_uuid":      r.TransactionUUID,
		"report_format":         r.ReportFormat,
		"engine_version":        r.EngineVersion,
		"kind":                  r.Kind,
		"status":                r.Status,
		"environment":           r.Environment,
		"logs":                  logs,
		"metrics":               metrics,
		"resource_statuses":     statuses,
	}
}

// Marshal serializes r as canonical JSON.
func Marshal(r *model.Report) ([]byte, error) {
	data, err := jsonutil.CanonicalMarshal(ToDataHash(r))
	if err != nil {
		return nil, fmt.Errorf("serialize report for %s: %w", r.Host, err)
	}
	return data, nil
}

func logDataHash(l *model.LogEntry) map[string]any {
	if l == nil {
		return nil
	}
	return map[string]any{
		"file":    l.File,
		"line":    l.Line,
		"level":   l.Level,
		"message": l.Message,
		"source":  l.Source,
		"tags":    flattenTags(l.Tags),
		"time":    formatTime(l.Time),
	}
}

func metricDataHash(m *model.Metric) map[string]any {
	if m == nil {
		return nil
	}
	values := maps.Clone(m.Values)
	if values == nil {
		values = map[string]float64{}
	}
	return map[string]any{
		"name":   m.Name,
		"label":  m.Label,
		"values": values,
	}
}

func resourceStatusDataHash(rs *model.ResourceStatus) map[string]any {
	if rs == nil {
		return nil
	}
	events := make([]any, 0, len(rs.Events))
	for _, e := range rs.Events {
		events = append(events, eventDataHash(e))
	}
	containment := make([]string, len(rs.ContainmentPath))
	copy(containment, rs.ContainmentPath)

	return map[string]any{
		"resource_type":     rs.ResourceType,
		"title":             rs.Title,
		"resource":          rs.Resource,
		"file":              rs.File,
		"line":              rs.Line,
		"evaluation_time":   rs.EvaluationTime,
		"change_count":      rs.ChangeCount,
		"out_of_sync_count": rs.OutOfSyncCount,
		"time":              formatTime(rs.Time),
		"out_of_sync":       rs.OutOfSync,
		"changed":           rs.Changed,
		"skipped":           rs.Skipped,
		"failed":            rs.Failed,
		"containment_path":  containment,
		"tags":              flattenTags(rs.Tags),
		"events":            events,
	}
}

func eventDataHash(e *model.Event) map[string]any {
	if e == nil {
		return nil
	}
	return map[string]any{
		"audited":          e.Audited,
		"property":         e.Property,
		"previous_value":   copyValue(e.PreviousValue),
		"desired_value":    copyValue(e.DesiredValue),
		"historical_value": copyValue(e.HistoricalValue),
		"message":          e.Message,
		"name":             e.Name,
		"status":           e.Status,
		"time":             formatTime(e.Time),
	}
}

// flattenTags normalizes either tag variant to a plain list.
func flattenTags(tags model.Tags) []string {
	if tags == nil {
		return []string{}
	}
	return tags.DataHash()
}

// copyValue deep-copies an event value. Maps with non-string keys, as
// produced by YAML decoding, are rebuilt with string keys so the result is
// always JSON-encodable. Values of any other type are copied by deepCopy.
func copyValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = copyValue(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = copyValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	case []byte:
		return string(val)
	case time.Time:
		return formatTime(val)
	default:
		return deepCopy(reflect.ValueOf(v)).Interface()
	}
}

// deepCopy copies slices, arrays, maps, pointers and the exported fields of
// structs, keeping their types. Values are expected to be trees; a pointer
// cycle does not terminate.
func deepCopy(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		c := reflect.ValueOf(copyValue(v.Elem().Interface()))
		if !c.IsValid() || !c.Type().AssignableTo(v.Type()) {
			c = deepCopy(v.Elem())
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(c)
		return out
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type().Elem())
		out.Elem().Set(deepCopy(v.Elem()))
		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(deepCopy(v.Index(i)))
		}
		return out
	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(deepCopy(v.Index(i)))
		}
		return out
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), deepCopy(iter.Value()))
		}
		return out
	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		for i := 0; i < v.NumField(); i++ {
			if f := out.Field(i); f.CanSet() {
				f.Set(deepCopy(v.Field(i)))
			}
		}
		return out
	default:
		return v
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}
