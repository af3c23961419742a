package flywheel

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONReporterProducesValidStableShape(t *testing.T) {
	var out bytes.Buffer
	r := &JSONReporter{Out: &out, Err: &bytes.Buffer{}}

	if !r.ReportContext(Context{ExecutableName: "flywheelcheck", Host: HostInfo{NumCPUs: 8}}) {
		t.Fatal("ReportContext returned false")
	}
	r.ReportRuns([]Run{
		{Name: "BM_A", Iterations: 100, RealTime: 1.5, CPUTime: 1.2, Unit: Nanosecond},
		{Name: "BM_A_mean", Aggregate: AggregateMean, AggregateName: "mean", RealTime: 1.5, Unit: Nanosecond},
	})
	r.Finalize()

	var decoded struct {
		Context struct {
			Executable string `json:"executable"`
			NumCPUs    int    `json:"num_cpus"`
		} `json:"context"`
		Benchmarks []map[string]any `json:"benchmarks"`
	}
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out.String())
	}
	if decoded.Context.Executable != "flywheelcheck" {
		t.Errorf("expected executable name to round-trip, got %q", decoded.Context.Executable)
	}
	if decoded.Context.NumCPUs != 8 {
		t.Errorf("expected num_cpus=8, got %d", decoded.Context.NumCPUs)
	}
	if len(decoded.Benchmarks) != 2 {
		t.Fatalf("expected 2 benchmark entries, got %d", len(decoded.Benchmarks))
	}
	if decoded.Benchmarks[0]["run_type"] != "iteration" {
		t.Errorf("expected first run_type=iteration, got %v", decoded.Benchmarks[0]["run_type"])
	}
	if decoded.Benchmarks[1]["run_type"] != "aggregate" {
		t.Errorf("expected second run_type=aggregate, got %v", decoded.Benchmarks[1]["run_type"])
	}
}

func TestJSONReporterEmitsCountersAsFields(t *testing.T) {
	var out bytes.Buffer
	r := &JSONReporter{Out: &out, Err: &bytes.Buffer{}}
	r.ReportContext(Context{})
	r.ReportRuns([]Run{{Name: "BM_C", Counters: Counters{"widgets": {Value: 42}}}})
	r.Finalize()

	if !strings.Contains(out.String(), `"widgets":42`) {
		t.Fatalf("expected counter to be inlined as a top-level field, got:\n%s", out.String())
	}
}
