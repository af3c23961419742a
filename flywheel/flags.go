package flywheel

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

// Flags holds every --benchmark_* CLI flag plus --v, parsed by Initialize.
// Environment variables of the form BENCHMARK_<UPPER_NAME> (and BENCHMARK_V
// for --v) override a flag's default, but only when the flag was not also
// given explicitly on the command line.
type Flags struct {
	ListTests                bool
	Filter                   string
	MinTime                  float64
	Repetitions              int
	EnableRandomInterleaving bool
	ReportAggregatesOnly     bool
	DisplayAggregatesOnly    bool
	Format                   string
	Out                      string
	OutFormat                string
	Color                    string
	CountersTabular          bool
	Context                  string
	PerfCounters             []string
	Verbosity                int

	set *pflag.FlagSet
}

// NewFlags builds a Flags bound to a fresh FlagSet with every
// --benchmark_* flag and --v registered at their documented defaults.
func NewFlags() *Flags {
	fl := &Flags{set: pflag.NewFlagSet("flywheel", pflag.ContinueOnError)}
	fs := fl.set
	fs.BoolVar(&fl.ListTests, "benchmark_list_tests", false, "print matched instance names and exit")
	fs.StringVar(&fl.Filter, "benchmark_filter", ".", "instance filter regex; leading - inverts")
	fs.Float64Var(&fl.MinTime, "benchmark_min_time", 0.5, "convergence target per repetition, seconds")
	fs.IntVar(&fl.Repetitions, "benchmark_repetitions", 1, "repetitions per instance")
	fs.BoolVar(&fl.EnableRandomInterleaving, "benchmark_enable_random_interleaving", false, "shuffle repetition tickets globally")
	fs.BoolVar(&fl.ReportAggregatesOnly, "benchmark_report_aggregates_only", false, "suppress per-repetition rows everywhere")
	fs.BoolVar(&fl.DisplayAggregatesOnly, "benchmark_display_aggregates_only", false, "suppress per-repetition rows in display only")
	fs.StringVar(&fl.Format, "benchmark_format", "console", "display reporter kind: console|json|csv")
	fs.StringVar(&fl.Out, "benchmark_out", "", "if set, path to also write a file report")
	fs.StringVar(&fl.OutFormat, "benchmark_out_format", "json", "file reporter kind: console|json|csv")
	fs.StringVar(&fl.Color, "benchmark_color", "auto", "console color: auto|yes|no")
	fs.BoolVar(&fl.CountersTabular, "benchmark_counters_tabular", false, "print user counters as name=value pairs after each console row; without it the console omits counters")
	fs.StringVar(&fl.Context, "benchmark_context", "", "extra k=v,... context pairs")
	fs.StringSliceVar(&fl.PerfCounters, "benchmark_perf_counters", nil, "named hardware counters to sample")
	fs.IntVar(&fl.Verbosity, "v", 0, "log verbosity")
	return fl
}

// envOverrides maps each flag's long name to the environment variable that
// overrides it when the flag wasn't set explicitly.
var envOverrides = map[string]string{
	"benchmark_list_tests":                 "BENCHMARK_LIST_TESTS",
	"benchmark_filter":                     "BENCHMARK_FILTER",
	"benchmark_min_time":                   "BENCHMARK_MIN_TIME",
	"benchmark_repetitions":                "BENCHMARK_REPETITIONS",
	"benchmark_enable_random_interleaving": "BENCHMARK_ENABLE_RANDOM_INTERLEAVING",
	"benchmark_report_aggregates_only":     "BENCHMARK_REPORT_AGGREGATES_ONLY",
	"benchmark_display_aggregates_only":    "BENCHMARK_DISPLAY_AGGREGATES_ONLY",
	"benchmark_format":                     "BENCHMARK_FORMAT",
	"benchmark_out":                        "BENCHMARK_OUT",
	"benchmark_out_format":                 "BENCHMARK_OUT_FORMAT",
	"benchmark_color":                      "BENCHMARK_COLOR",
	"benchmark_counters_tabular":           "BENCHMARK_COUNTERS_TABULAR",
	"benchmark_context":                    "BENCHMARK_CONTEXT",
	"benchmark_perf_counters":              "BENCHMARK_PERF_COUNTERS",
	"v":                                    "BENCHMARK_V",
}

// applyEnvOverrides sets any flag not explicitly Changed from its
// corresponding environment variable, if set.
func (fl *Flags) applyEnvOverrides() error {
	var firstErr error
	fl.set.VisitAll(func(f *pflag.Flag) {
		if f.Changed || firstErr != nil {
			return
		}
		envName, ok := envOverrides[f.Name]
		if !ok {
			return
		}
		val, ok := os.LookupEnv(envName)
		if !ok {
			return
		}
		if err := fl.set.Set(f.Name, val); err != nil {
			firstErr = newError(KindBadFlag, fmt.Sprintf("invalid %s=%q", envName, val), err)
		}
	})
	return firstErr
}

// Parse parses args (excluding the program name) into fl, then applies
// environment overrides to any flag left at its default.
func (fl *Flags) Parse(args []string) ([]string, error) {
	if err := fl.set.Parse(args); err != nil {
		return nil, newError(KindBadFlag, "failed to parse flags", err)
	}
	if err := fl.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := fl.validate(); err != nil {
		return nil, err
	}
	return fl.set.Args(), nil
}

func (fl *Flags) validate() error {
	switch fl.Format {
	case "console", "json", "csv":
	default:
		return newError(KindBadFlag, fmt.Sprintf("invalid --benchmark_format %q", fl.Format), nil)
	}
	switch fl.OutFormat {
	case "console", "json", "csv":
	default:
		return newError(KindBadFlag, fmt.Sprintf("invalid --benchmark_out_format %q", fl.OutFormat), nil)
	}
	switch fl.Color {
	case "auto", "yes", "no":
	default:
		return newError(KindBadFlag, fmt.Sprintf("invalid --benchmark_color %q", fl.Color), nil)
	}
	if fl.MinTime <= 0 {
		return newError(KindBadFlag, "--benchmark_min_time must be positive", nil)
	}
	if fl.Repetitions < 1 {
		return newError(KindBadFlag, "--benchmark_repetitions must be >= 1", nil)
	}
	return nil
}

// contextPairs parses "--benchmark_context" of the form "k=v,k2=v2".
func contextPairs(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	out := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			continue
		}
		out[kv[0]] = kv[1]
	}
	return out
}

func colorMode(s string) ColorMode {
	switch s {
	case "yes":
		return ColorYes
	case "no":
		return ColorNo
	default:
		return ColorAuto
	}
}
