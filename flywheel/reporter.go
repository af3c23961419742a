package flywheel

import (
	"io"
	"time"
)

// CacheInfo describes one level of the host's cache hierarchy, surfaced in
// a Reporter's Context for informational purposes only.
type CacheInfo struct {
	Type       string
	Level      int
	Size       int64
	NumSharing int
}

// HostInfo is best-effort information about the machine running the
// benchmarks. Fields default to zero values on platforms where the
// underlying information isn't available; reporters must tolerate that.
type HostInfo struct {
	NumCPUs           int
	MHzPerCPU         float64
	CPUScalingEnabled bool
	Caches            []CacheInfo
	LoadAvg           []float64
}

// Context is the run-wide header a Reporter receives exactly once, before
// any Run is reported.
type Context struct {
	Date             time.Time
	ExecutableName   string
	NameFieldWidth   int
	Host             HostInfo
	LibraryBuildType string
	Extra            map[string]string
}

// Reporter is the sink for one benchmark session's output. Google
// Benchmark's ReporterBase; re-expressed here as an interface with the same
// four operations rather than a base class with virtual methods.
type Reporter interface {
	// ReportContext receives the session header. Returning false aborts the
	// run before any benchmark executes.
	ReportContext(ctx Context) bool
	// ReportRuns is called once per instance's non-aggregate Runs and, when
	// produced, once more per instance's aggregate Runs.
	ReportRuns(runs []Run)
	// Finalize is called once after every instance has reported.
	Finalize()
	GetOutputStream() io.Writer
	GetErrorStream() io.Writer
}

// nameFieldWidth computes the console name column width: at least 10,
// or the longest instance name, plus room for the longest aggregate-name
// suffix when repetitions produce aggregate rows.
func nameFieldWidth(names []string, hasAggregates bool) int {
	width := 10
	for _, n := range names {
		if len(n) > width {
			width = len(n)
		}
	}
	if hasAggregates {
		width += len("_stddev")
	}
	return width
}
