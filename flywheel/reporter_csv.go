package flywheel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// csvHeader is fixed: consumers of the deprecated CSV format depend on
// this exact column order.
var csvHeader = []string{
	"name", "iterations", "real_time", "cpu_time", "time_unit",
	"bytes_per_second", "items_per_second", "label", "error_occurred", "error_message",
}

// CSVReporter writes the deprecated fixed-column CSV format, one row per
// Run, in registration order.
type CSVReporter struct {
	Out io.Writer
	Err io.Writer

	w           *csv.Writer
	wroteHeader bool
}

// NewCSVReporter builds a CSVReporter writing to stdout/stderr.
func NewCSVReporter() *CSVReporter {
	return &CSVReporter{Out: os.Stdout, Err: os.Stderr}
}

func (r *CSVReporter) ReportContext(ctx Context) bool {
	r.w = csv.NewWriter(r.Out)
	return true
}

func (r *CSVReporter) ReportRuns(runs []Run) {
	if !r.wroteHeader {
		if err := r.w.Write(csvHeader); err != nil {
			fmt.Fprintf(r.Err, "flywheel: failed to write csv header: %v\n", err)
		}
		r.wroteHeader = true
	}
	for _, run := range runs {
		row := []string{
			run.Name,
			strconv.FormatInt(run.Iterations, 10),
			strconv.FormatFloat(run.RealTime, 'g', -1, 64),
			strconv.FormatFloat(run.CPUTime, 'g', -1, 64),
			run.Unit.String(),
			strconv.FormatFloat(run.BytesPerSecond, 'g', -1, 64),
			strconv.FormatFloat(run.ItemsPerSecond, 'g', -1, 64),
			run.Label,
			strconv.FormatBool(run.ErrorOccurred),
			run.ErrorMessage,
		}
		if err := r.w.Write(row); err != nil {
			fmt.Fprintf(r.Err, "flywheel: failed to write csv row for %q: %v\n", run.Name, err)
		}
	}
	r.w.Flush()
}

func (r *CSVReporter) Finalize()                {}
func (r *CSVReporter) GetOutputStream() io.Writer { return r.Out }
func (r *CSVReporter) GetErrorStream() io.Writer  { return r.Err }
