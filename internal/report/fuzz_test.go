package report_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jvs-project/reportstore/internal/report"
)

// FuzzDecode feeds arbitrary documents through Decode and Marshal. Anything
// Decode accepts must serialize to valid JSON carrying the same host.
func FuzzDecode(f *testing.F) {
	f.Add([]byte(`{"host":"web01"}`), false)
	f.Add([]byte(`{"host":"web01","logs":[{"tags":["a"]},{"tags":{"set":["b"]}}]}`), false)
	f.Add([]byte(`{"host":"web01","resource_statuses":{"x":{"events":[{"previous_value":{"k":[1,2]}}]}}}`), false)
	f.Add([]byte("host: web01\nlogs:\n  - tags: {a: true}\n"), true)
	f.Add([]byte("host: web01\nresource_statuses:\n  x:\n    events:\n      - desired_value: {1: one}\n"), true)

	f.Fuzz(func(t *testing.T, data []byte, yamlInput bool) {
		format := report.FormatJSON
		if yamlInput {
			format = report.FormatYAML
		}
		r, err := report.Decode(bytes.NewReader(data), format)
		if err != nil {
			return
		}

		out, err := report.Marshal(r)
		if err != nil {
			// Values decoded from YAML may still be unrepresentable (NaN, Inf).
			return
		}
		var doc map[string]any
		if err := json.Unmarshal(out, &doc); err != nil {
			t.Fatalf("Marshal produced invalid JSON %q: %v", out, err)
		}
		if doc["host"] != r.Host {
			t.Errorf("host changed: %v != %q", doc["host"], r.Host)
		}
	})
}
