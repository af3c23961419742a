package flywheel

// AggregateKind distinguishes a raw measured Run from a synthetic one
// produced by statistics or complexity fitting.
type AggregateKind int

const (
	AggregateNone AggregateKind = iota
	AggregateMean
	AggregateMedian
	AggregateStdDev
	AggregateUser
	AggregateBigO
	AggregateRMS
)

// Run is one completed (Instance, repetition) measurement, or a synthetic
// aggregate derived from a set of them.
type Run struct {
	Name            string
	FamilyIndex     int
	PerFamilyIndex  int
	RepetitionIndex int
	Repetitions     int
	Threads         int

	Aggregate     AggregateKind
	AggregateName string

	Iterations int64
	RealTime   float64 // in Unit
	CPUTime    float64 // in Unit
	Unit       TimeUnit

	BytesPerSecond float64
	ItemsPerSecond float64
	Label          string

	Counters Counters

	ErrorOccurred bool
	ErrorMessage  string

	ComplexityN float64
}

// RunResults collects every Run produced for one Instance across all of its
// repetitions plus the statistics/complexity aggregates derived from them.
type RunResults struct {
	Instance      *Instance
	NonAggregates []Run
	Aggregates    []Run

	DisplayReportAggregatesOnly bool
	FileReportAggregatesOnly    bool
}

// PerFamilyReports accumulates the non-aggregate Runs of every Instance
// belonging to one family with a non-None complexity hypothesis, so the fit
// can run once, after every instance in the family has reported.
type PerFamilyReports struct {
	Runs         []Run
	NumRunsTotal int
	NumRunsDone  int
}

func (p *PerFamilyReports) done() bool { return p.NumRunsDone >= p.NumRunsTotal }
