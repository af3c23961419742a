package flywheel

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// JSONReporter streams the stable JSON shape incrementally: the context
// object is written as soon as ReportContext returns, and each Run is
// marshaled and appended to the "benchmarks" array as it arrives, rather
// than buffering the whole session and calling json.Marshal once at the
// end. This keeps memory bounded for long sessions and lets a consumer
// tail the file while benchmarks are still running.
type JSONReporter struct {
	Out io.Writer
	Err io.Writer

	wroteAny bool
}

// NewJSONReporter builds a JSONReporter writing to stdout/stderr.
func NewJSONReporter() *JSONReporter {
	return &JSONReporter{Out: os.Stdout, Err: os.Stderr}
}

type jsonContext struct {
	Date              string      `json:"date"`
	Executable        string      `json:"executable"`
	HostName          string      `json:"host_name"`
	NumCPUs           int         `json:"num_cpus"`
	MHzPerCPU         float64     `json:"mhz_per_cpu"`
	CPUScalingEnabled bool        `json:"cpu_scaling_enabled"`
	Caches            []CacheInfo `json:"caches"`
	LoadAvg           []float64   `json:"load_avg"`
	LibraryBuildType  string      `json:"library_build_type"`
}

func (r *JSONReporter) ReportContext(ctx Context) bool {
	hostName, _ := os.Hostname()
	jc := jsonContext{
		Date:              ctx.Date.Format("2006-01-02T15:04:05Z07:00"),
		Executable:        ctx.ExecutableName,
		HostName:          hostName,
		NumCPUs:           ctx.Host.NumCPUs,
		MHzPerCPU:         ctx.Host.MHzPerCPU,
		CPUScalingEnabled: ctx.Host.CPUScalingEnabled,
		Caches:            ctx.Host.Caches,
		LoadAvg:           ctx.Host.LoadAvg,
		LibraryBuildType:  ctx.LibraryBuildType,
	}
	blob, err := json.Marshal(jc)
	if err != nil {
		fmt.Fprintf(r.Err, "flywheel: failed to marshal context: %v\n", err)
		return false
	}
	fmt.Fprintf(r.Out, "{\n  \"context\": %s,\n  \"benchmarks\": [\n", blob)
	return true
}

func (r *JSONReporter) ReportRuns(runs []Run) {
	for _, run := range runs {
		if r.wroteAny {
			fmt.Fprint(r.Out, ",\n")
		}
		blob, err := json.Marshal(runToJSON(run))
		if err != nil {
			fmt.Fprintf(r.Err, "flywheel: failed to marshal run %q: %v\n", run.Name, err)
			continue
		}
		fmt.Fprintf(r.Out, "    %s", blob)
		r.wroteAny = true
	}
}

func (r *JSONReporter) Finalize() {
	fmt.Fprint(r.Out, "\n  ]\n}\n")
}

func (r *JSONReporter) GetOutputStream() io.Writer { return r.Out }
func (r *JSONReporter) GetErrorStream() io.Writer  { return r.Err }

func runToJSON(run Run) map[string]any {
	runType := "iteration"
	if run.Aggregate != AggregateNone {
		runType = "aggregate"
	}
	m := map[string]any{
		"name":                      run.Name,
		"family_index":              run.FamilyIndex,
		"per_family_instance_index": run.PerFamilyIndex,
		"run_name":                  run.Name,
		"run_type":                  runType,
		"repetitions":               run.Repetitions,
		"repetition_index":          run.RepetitionIndex,
		"threads":                   run.Threads,
		"iterations":                run.Iterations,
		"real_time":                 run.RealTime,
		"cpu_time":                  run.CPUTime,
		"time_unit":                 run.Unit.String(),
		"bytes_per_second":          run.BytesPerSecond,
		"items_per_second":          run.ItemsPerSecond,
		"label":                     run.Label,
		"error_occurred":            run.ErrorOccurred,
		"error_message":             run.ErrorMessage,
	}
	if run.Aggregate != AggregateNone {
		m["aggregate_name"] = run.AggregateName
	}
	for name, c := range run.Counters {
		m[name] = c.Value
	}
	return m
}
