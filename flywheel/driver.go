package flywheel

import (
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"time"
)

// Session drives one process's worth of benchmark execution: parsing
// flags, expanding the registry into instances, running them, and
// reporting. Initialize + RunSpecifiedBenchmarks mirror the two calls a
// linked-in benchmark program makes from its own main.
type Session struct {
	flags *Flags
	log   *logger
	regis *Registry
}

// NewSession builds a Session bound to the default (process-wide) registry.
func NewSession() *Session {
	return &Session{regis: defaultRegistry}
}

// Initialize parses args (typically os.Args[1:]) into the session's flags
// and returns the remaining, non-flag arguments.
func (s *Session) Initialize(args []string) ([]string, error) {
	s.flags = NewFlags()
	rest, err := s.flags.Parse(args)
	if err != nil {
		return nil, err
	}
	s.log = newLogger(os.Stderr, s.flags.Verbosity)
	return rest, nil
}

func (s *Session) effectiveRepetitions(f *Family) int {
	if f.Repetitions > 1 {
		return f.Repetitions
	}
	return s.flags.Repetitions
}

// familyGroup accumulates the PerFamilyReports state for one family with a
// non-None complexity hypothesis.
type familyGroup struct {
	family    *Family
	instances []*Instance
	reports   PerFamilyReports
}

// RunSpecifiedBenchmarks finds every Instance matching the parsed
// --benchmark_filter, runs each to convergence, and reports non-aggregate
// and aggregate Runs to the display reporter and, if --benchmark_out was
// given, a file reporter — unless reporters are supplied explicitly, in
// which case those are used instead and the output-format flags are
// ignored. It returns the number of instances run.
func (s *Session) RunSpecifiedBenchmarks(reporters ...Reporter) int {
	if s.flags == nil {
		if _, err := s.Initialize(nil); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 0
		}
	}

	// Families that set neither MinTime nor Iterations take
	// --benchmark_min_time.
	minTime := time.Duration(s.flags.MinTime * float64(time.Second))
	s.regis.mu.Lock()
	for _, f := range s.regis.families {
		if f.MinTime == 0 && f.Iterations == 0 {
			f.MinTime = minTime
		}
	}
	s.regis.mu.Unlock()

	instances, err := s.regis.Find(s.flags.Filter, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 0
	}
	if len(instances) == 0 {
		return 0
	}
	s.log.Logf(1, "matched %d instances against filter %q", len(instances), s.flags.Filter)

	if s.flags.ListTests {
		for _, inst := range instances {
			fmt.Println(inst.Name)
		}
		return 0
	}

	display, file, err := s.resolveReporters(reporters)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 0
	}

	names := make([]string, len(instances))
	hasAggregates := false
	for i, inst := range instances {
		names[i] = inst.Name
		if s.effectiveRepetitions(inst.Family) >= 2 {
			hasAggregates = true
		}
	}
	ctx := Context{
		Date:             time.Now(),
		ExecutableName:   os.Args[0],
		NameFieldWidth:   nameFieldWidth(names, hasAggregates),
		Host:             HostInfo{NumCPUs: runtime.NumCPU()},
		LibraryBuildType: "release",
		Extra:            contextPairs(s.flags.Context),
	}
	if !display.ReportContext(ctx) {
		return 0
	}
	if file != nil && !file.ReportContext(ctx) {
		return 0
	}

	runners := make([]*Runner, len(instances))
	groups := map[int]*familyGroup{}
	for i, inst := range instances {
		reps := s.effectiveRepetitions(inst.Family)
		runners[i] = newRunner(inst, reps, s.flags.PerfCounters, os.Stderr)
		if inst.Family.Complexity != ComplexityNone {
			g, ok := groups[inst.FamilyIndex]
			if !ok {
				g = &familyGroup{family: inst.Family}
				groups[inst.FamilyIndex] = g
			}
			g.instances = append(g.instances, inst)
			g.reports.NumRunsTotal++
		}
	}

	tickets := buildTickets(runners, s.flags.EnableRandomInterleaving)

	for _, idx := range tickets {
		_, last := runners[idx].DoOneRepetition()
		if !last {
			continue
		}
		s.finishInstance(instances[idx], runners[idx], groups, display, file)
	}

	for _, g := range groups {
		if !g.reports.done() {
			continue
		}
		s.reportComplexity(g, display, file)
	}

	display.Finalize()
	if file != nil {
		file.Finalize()
	}
	return len(instances)
}

func (s *Session) finishInstance(inst *Instance, rn *Runner, groups map[int]*familyGroup, display, file Reporter) {
	nonAgg := rn.NonAggregateRuns()
	s.log.Logf(2, "%s: completed %d repetitions", inst.Name, len(nonAgg))
	rr := RunResults{
		Instance:                    inst,
		NonAggregates:               nonAgg,
		DisplayReportAggregatesOnly: inst.Family.DisplayAggregatesOnly || inst.Family.ReportAggregatesOnly || s.flags.DisplayAggregatesOnly || s.flags.ReportAggregatesOnly,
		FileReportAggregatesOnly:    inst.Family.ReportAggregatesOnly || s.flags.ReportAggregatesOnly,
	}
	if len(nonAgg) >= 2 {
		rr.Aggregates = computeStatistics(inst, nonAgg, inst.Family.Statistics)
	}

	if !rr.DisplayReportAggregatesOnly {
		display.ReportRuns(rr.NonAggregates)
	}
	if len(rr.Aggregates) > 0 {
		display.ReportRuns(rr.Aggregates)
	}
	if file != nil {
		if !rr.FileReportAggregatesOnly {
			file.ReportRuns(rr.NonAggregates)
		}
		if len(rr.Aggregates) > 0 {
			file.ReportRuns(rr.Aggregates)
		}
	}

	if g, ok := groups[inst.FamilyIndex]; ok {
		g.reports.Runs = append(g.reports.Runs, nonAgg...)
		g.reports.NumRunsDone++
	}
}

func (s *Session) reportComplexity(g *familyGroup, display, file Reporter) {
	if len(g.instances) == 0 {
		return
	}
	first := g.instances[0]
	runs, ok := fitComplexity(first.Family.Name, first.FamilyIndex, first.PerFamilyIndex, first.NumThreads,
		g.reports.Runs, first.Family.Complexity, first.Family.ComplexityFunc, first.Family.Unit)
	if !ok {
		return
	}
	display.ReportRuns(runs)
	if file != nil {
		file.ReportRuns(runs)
	}
}

// buildTickets returns the sequence of runner indices to invoke
// DoOneRepetition on. Without interleaving this is runner-major,
// repetition-minor order (every ticket for runner 0, then runner 1, ...).
// With interleaving, the same multiset of tickets is shuffled with a
// single seeded PRNG so that different runners' repetitions intermix.
func buildTickets(runners []*Runner, shuffle bool) []int {
	var tickets []int
	for i, rn := range runners {
		for r := 0; r < rn.repTotal; r++ {
			tickets = append(tickets, i)
		}
	}
	if shuffle {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		rng.Shuffle(len(tickets), func(a, b int) { tickets[a], tickets[b] = tickets[b], tickets[a] })
	}
	return tickets
}

// resolveReporters returns the (display, file) reporter pair: explicit
// reporters passed to RunSpecifiedBenchmarks take priority; otherwise they
// are built from --benchmark_format/--benchmark_out/--benchmark_out_format.
func (s *Session) resolveReporters(explicit []Reporter) (display, file Reporter, err error) {
	if len(explicit) >= 1 {
		display = explicit[0]
	}
	if len(explicit) >= 2 {
		file = explicit[1]
	}
	if display == nil {
		display, err = buildReporter(s.flags.Format, s.flags.Color, s.flags.CountersTabular)
		if err != nil {
			return nil, nil, err
		}
	}
	if file == nil && s.flags.Out != "" {
		f, ferr := os.Create(s.flags.Out)
		if ferr != nil {
			return nil, nil, newError(KindBadOutput, fmt.Sprintf("cannot open --benchmark_out %q", s.flags.Out), ferr)
		}
		file, err = buildReporterTo(s.flags.OutFormat, f)
		if err != nil {
			return nil, nil, err
		}
	}
	return display, file, nil
}

func buildReporter(format, color string, countersTabular bool) (Reporter, error) {
	switch format {
	case "console":
		r := NewConsoleReporter()
		r.Color = colorMode(color)
		r.CountersTabular = countersTabular
		return r, nil
	case "json":
		return NewJSONReporter(), nil
	case "csv":
		return NewCSVReporter(), nil
	default:
		return nil, newError(KindBadFlag, fmt.Sprintf("invalid --benchmark_format %q", format), nil)
	}
}

func buildReporterTo(format string, w *os.File) (Reporter, error) {
	r, err := buildReporter(format, "no", false)
	if err != nil {
		return nil, err
	}
	switch rr := r.(type) {
	case *ConsoleReporter:
		rr.Out = w
	case *JSONReporter:
		rr.Out = w
	case *CSVReporter:
		rr.Out = w
	}
	return r, nil
}

// Initialize parses args (typically os.Args[1:]) into the default session and returns the
// remaining non-flag arguments. Package-level convenience wrapping
// Session, mirroring the registry's package-level RegisterBenchmark.
func Initialize(args []string) ([]string, error) {
	return defaultSession.Initialize(args)
}

// RunSpecifiedBenchmarks runs the default session's matched benchmarks.
func RunSpecifiedBenchmarks(reporters ...Reporter) int {
	return defaultSession.RunSpecifiedBenchmarks(reporters...)
}

var defaultSession = NewSession()
