package flywheel

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean of values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median returns the middle value (or the average of the two middle values
// for an even-length input) after sorting a copy of values.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// StdDev returns the sample (Bessel-corrected) standard deviation, or 0 for
// n <= 1.
func StdDev(values []float64) float64 {
	n := len(values)
	if n <= 1 {
		return 0
	}
	mean := Mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// builtinStatistics returns the always-on statistics computed whenever more
// than one repetition ran.
func builtinStatistics() []UserStatistic {
	return []UserStatistic{
		{Name: "mean", Fn: Mean},
		{Name: "median", Fn: Median},
		{Name: "stddev", Fn: StdDev},
	}
}

// computeStatistics folds a non-empty set of non-aggregate Runs for one
// Instance into one synthetic aggregate Run per statistic, applied
// independently to real time, cpu time, bytes/sec, items/sec, and every
// counter name that appears in any input run (folded over the runs that
// carry it).
func computeStatistics(instance *Instance, runs []Run, extra []UserStatistic) []Run {
	if len(runs) == 0 {
		return nil
	}
	stats := append(append([]UserStatistic(nil), builtinStatistics()...), extra...)

	counterNames := map[string]struct{}{}
	for _, r := range runs {
		for name := range r.Counters {
			counterNames[name] = struct{}{}
		}
	}

	var out []Run
	for _, stat := range stats {
		agg := Run{
			Name:            instance.Name + "_" + stat.Name,
			FamilyIndex:     instance.FamilyIndex,
			PerFamilyIndex:  instance.PerFamilyIndex,
			Threads:         instance.NumThreads,
			Repetitions:     len(runs),
			RepetitionIndex: -1,
			Unit:            runs[0].Unit,
			AggregateName:   stat.Name,
			Aggregate:       aggregateKindFor(stat.Name),
			Counters:        Counters{},
		}
		agg.RealTime = stat.Fn(fieldValues(runs, func(r Run) float64 { return r.RealTime }))
		agg.CPUTime = stat.Fn(fieldValues(runs, func(r Run) float64 { return r.CPUTime }))
		agg.BytesPerSecond = stat.Fn(fieldValues(runs, func(r Run) float64 { return r.BytesPerSecond }))
		agg.ItemsPerSecond = stat.Fn(fieldValues(runs, func(r Run) float64 { return r.ItemsPerSecond }))
		agg.Iterations = int64(stat.Fn(fieldValues(runs, func(r Run) float64 { return float64(r.Iterations) })))
		for name := range counterNames {
			vals := make([]float64, 0, len(runs))
			for _, r := range runs {
				if c, ok := r.Counters[name]; ok {
					vals = append(vals, c.Value)
				}
			}
			agg.Counters[name] = Counter{Value: stat.Fn(vals)}
		}
		out = append(out, agg)
	}
	return out
}

func aggregateKindFor(name string) AggregateKind {
	switch name {
	case "mean":
		return AggregateMean
	case "median":
		return AggregateMedian
	case "stddev":
		return AggregateStdDev
	default:
		return AggregateUser
	}
}

func fieldValues(runs []Run, f func(Run) float64) []float64 {
	out := make([]float64, len(runs))
	for i, r := range runs {
		out[i] = f(r)
	}
	return out
}
