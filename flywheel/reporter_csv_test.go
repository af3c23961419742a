package flywheel

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
)

func TestCSVReporterFixedHeaderAndRows(t *testing.T) {
	var out bytes.Buffer
	r := &CSVReporter{Out: &out, Err: &bytes.Buffer{}}
	r.ReportContext(Context{})
	r.ReportRuns([]Run{
		{Name: "BM_A", Iterations: 10, RealTime: 1.5, CPUTime: 1.2, Unit: Millisecond},
		{Name: "BM_B", ErrorOccurred: true, ErrorMessage: "boom"},
	})
	r.Finalize()

	reader := csv.NewReader(strings.NewReader(out.String()))
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("failed to parse csv output: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}
	wantHeader := []string{"name", "iterations", "real_time", "cpu_time", "time_unit",
		"bytes_per_second", "items_per_second", "label", "error_occurred", "error_message"}
	for i, col := range wantHeader {
		if records[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, records[0][i], col)
		}
	}
	if records[1][0] != "BM_A" || records[1][4] != "ms" {
		t.Errorf("unexpected row 1: %v", records[1])
	}
	if records[2][8] != "true" || records[2][9] != "boom" {
		t.Errorf("unexpected error row: %v", records[2])
	}
}
