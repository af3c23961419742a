package flywheel

import "time"

// BenchmarkFunc is the user body of a registered benchmark. It receives one
// State per participating thread and drives it with State.KeepRunning.
type BenchmarkFunc func(*State)

// ComplexityKind names the asymptotic hypothesis a family's runtime is
// fitted against, or None to skip fitting.
type ComplexityKind int

const (
	ComplexityNone ComplexityKind = iota
	ComplexityO1
	ComplexityON
	ComplexityONLogN
	ComplexityON2
	ComplexityON3
	ComplexityOLogN
	ComplexityOSqrtN
	ComplexityAuto
	ComplexityLambda
)

func (k ComplexityKind) label() string {
	switch k {
	case ComplexityO1:
		return "O(1)"
	case ComplexityON:
		return "O(N)"
	case ComplexityONLogN:
		return "O(NlgN)"
	case ComplexityON2:
		return "O(N^2)"
	case ComplexityON3:
		return "O(N^3)"
	case ComplexityOLogN:
		return "O(lgN)"
	case ComplexityOSqrtN:
		return "O(sqrt(N))"
	case ComplexityLambda:
		return "f(N)"
	default:
		return ""
	}
}

// UserStatistic is a named fold over a set of Runs' metrics, in addition to
// the built-in mean/median/stddev.
type UserStatistic struct {
	Name string
	Fn   func(values []float64) float64
}

// Family is a registered benchmark: a name, a body, the argument tuples and
// thread counts it should be instantiated over, and the knobs controlling
// how each instance converges and is reported.
type Family struct {
	Name string
	Body BenchmarkFunc

	ArgLists     [][]int64
	ArgNames     []string
	ThreadCounts []int

	Unit          TimeUnit
	MinTime       time.Duration
	MinWarmUpTime time.Duration
	Iterations    int64 // 0 == auto (convergence loop decides)
	Repetitions   int

	UseRealTime   bool
	UseManualTime bool
	ProcessCPU    bool

	ReportAggregatesOnly  bool
	DisplayAggregatesOnly bool

	Complexity     ComplexityKind
	ComplexityFunc func(n float64) float64

	Statistics []UserStatistic
}

// Option configures a Family at registration time.
type Option func(*Family)

// Args appends one argument tuple. Every tuple registered on a family must
// have the same arity.
func Args(args ...int64) Option {
	return func(f *Family) { f.ArgLists = append(f.ArgLists, append([]int64(nil), args...)) }
}

// ArgsProduct expands the Cartesian product of the given per-dimension
// value lists into one tuple per combination, matching the source's
// ArgsProduct helper.
func ArgsProduct(dims ...[]int64) Option {
	return func(f *Family) {
		combos := [][]int64{{}}
		for _, dim := range dims {
			next := make([][]int64, 0, len(combos)*len(dim))
			for _, c := range combos {
				for _, v := range dim {
					tup := append(append([]int64(nil), c...), v)
					next = append(next, tup)
				}
			}
			combos = next
		}
		f.ArgLists = append(f.ArgLists, combos...)
	}
}

// ArgNames labels the components of each argument tuple in rendered names.
func ArgNames(names ...string) Option {
	return func(f *Family) { f.ArgNames = append([]string(nil), names...) }
}

// Threads sets the exact thread counts to instantiate.
func Threads(counts ...int) Option {
	return func(f *Family) { f.ThreadCounts = append(f.ThreadCounts, counts...) }
}

// ThreadRange adds lo and each successive doubling of it, up to hi
// (inclusive); hi itself is added only when a doubling reaches it.
func ThreadRange(lo, hi int) Option {
	return func(f *Family) {
		for n := lo; n <= hi; n *= 2 {
			f.ThreadCounts = append(f.ThreadCounts, n)
			if n == 0 {
				break
			}
		}
	}
}

func MinTime(d time.Duration) Option        { return func(f *Family) { f.MinTime = d } }
func MinWarmUpTime(d time.Duration) Option  { return func(f *Family) { f.MinWarmUpTime = d } }
func Iterations(n int64) Option             { return func(f *Family) { f.Iterations = n } }
func Repetitions(n int) Option              { return func(f *Family) { f.Repetitions = n } }
func UseRealTime() Option                   { return func(f *Family) { f.UseRealTime = true } }
func UseManualTime() Option                 { return func(f *Family) { f.UseManualTime = true } }
func MeasureProcessCPUTime() Option         { return func(f *Family) { f.ProcessCPU = true } }
func Unit(u TimeUnit) Option                { return func(f *Family) { f.Unit = u } }
func ReportAggregatesOnly() Option          { return func(f *Family) { f.ReportAggregatesOnly = true } }
func DisplayAggregatesOnly() Option         { return func(f *Family) { f.DisplayAggregatesOnly = true } }

// Complexity sets the asymptotic-complexity hypothesis to fit runtimes to.
func Complexity(kind ComplexityKind) Option {
	return func(f *Family) { f.Complexity = kind }
}

// ComplexityFunc sets the family's Complexity to Lambda and supplies the
// user function f(n) it should be fitted against.
func ComplexityFunc(fn func(n float64) float64) Option {
	return func(f *Family) {
		f.Complexity = ComplexityLambda
		f.ComplexityFunc = fn
	}
}

// ComputeStatistic adds a user-defined aggregate alongside mean/median/stddev.
func ComputeStatistic(name string, fn func(values []float64) float64) Option {
	return func(f *Family) { f.Statistics = append(f.Statistics, UserStatistic{Name: name, Fn: fn}) }
}

func (f *Family) validate() error {
	if f.UseRealTime && f.UseManualTime {
		return newError(KindBadFlag, "family "+f.Name+": real-time and manual-time are mutually exclusive", nil)
	}
	if f.Iterations > 0 && f.MinTime > 0 {
		return newError(KindBadFlag, "family "+f.Name+": Iterations and MinTime are mutually exclusive", nil)
	}
	arity := -1
	for _, tup := range f.ArgLists {
		if arity == -1 {
			arity = len(tup)
		} else if len(tup) != arity {
			return newError(KindBadFlag, "family "+f.Name+": argument tuples have mismatched arity", nil)
		}
	}
	for _, n := range f.ThreadCounts {
		if n <= 0 {
			return newError(KindBadFlag, "family "+f.Name+": thread counts must be positive", nil)
		}
	}
	if f.MinTime == 0 && f.Iterations == 0 {
		f.MinTime = 500 * time.Millisecond
	}
	if f.Repetitions == 0 {
		f.Repetitions = 1
	}
	if f.Unit == 0 {
		f.Unit = Millisecond
	}
	return nil
}
