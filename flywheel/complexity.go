package flywheel

import "math"

// complexityFunc returns the f(N) shape function for a built-in complexity
// hypothesis. Lambda is handled separately by the caller-supplied function.
func complexityFunc(kind ComplexityKind) func(n float64) float64 {
	switch kind {
	case ComplexityO1:
		return func(float64) float64 { return 1 }
	case ComplexityON:
		return func(n float64) float64 { return n }
	case ComplexityONLogN:
		return func(n float64) float64 { return n * math.Log2(n) }
	case ComplexityON2:
		return func(n float64) float64 { return n * n }
	case ComplexityON3:
		return func(n float64) float64 { return n * n * n }
	case ComplexityOLogN:
		return func(n float64) float64 { return math.Log2(n) }
	case ComplexityOSqrtN:
		return func(n float64) float64 { return math.Sqrt(n) }
	default:
		return nil
	}
}

var autoCandidates = []ComplexityKind{
	ComplexityO1, ComplexityOLogN, ComplexityON, ComplexityONLogN,
	ComplexityON2, ComplexityON3, ComplexityOSqrtN,
}

// leastSquaresFit finds the coefficient a minimizing sum((a*f(n_i) - t_i)^2)
// in closed form (a = sum(f(n_i)*t_i) / sum(f(n_i)^2)), then returns a and
// the RMS of the fit normalized by the mean measured time, matching the
// source's minimal-least-squares complexity fitter.
func leastSquaresFit(ns []float64, times []float64, f func(float64) float64) (coefficient, rms float64) {
	var sumFF, sumFT, sumT float64
	for i, n := range ns {
		fn := f(n)
		sumFF += fn * fn
		sumFT += fn * times[i]
		sumT += times[i]
	}
	if sumFF == 0 {
		return 0, math.Inf(1)
	}
	a := sumFT / sumFF

	var sumSqErr float64
	for i, n := range ns {
		fn := f(n)
		err := a*fn - times[i]
		sumSqErr += err * err
	}
	meanT := sumT / float64(len(times))
	if meanT == 0 {
		return a, 0
	}
	return a, math.Sqrt(sumSqErr/float64(len(times))) / meanT
}

// fitComplexity fits a family's per-instance runtimes against its declared
// complexity hypothesis (or, for Auto, every built-in hypothesis, keeping
// the one with lowest normalized RMS) and returns the two synthetic runs
// Google Benchmark reports: the "_BigO" coefficient/shape run and the
// "_RMS" residual run. It returns false if there are fewer than two
// distinct input sizes to fit against.
func fitComplexity(instanceName string, familyIndex, perFamilyIndex, threads int, runs []Run, kind ComplexityKind, lambda func(float64) float64, unit TimeUnit) ([]Run, bool) {
	if kind == ComplexityNone || len(runs) < 2 {
		return nil, false
	}

	ns := make([]float64, 0, len(runs))
	cpuTimes := make([]float64, 0, len(runs))
	realTimes := make([]float64, 0, len(runs))
	seen := map[float64]bool{}
	for _, r := range runs {
		if seen[r.ComplexityN] {
			continue
		}
		seen[r.ComplexityN] = true
		ns = append(ns, r.ComplexityN)
		cpuTimes = append(cpuTimes, r.CPUTime)
		realTimes = append(realTimes, r.RealTime)
	}
	if len(ns) < 2 {
		return nil, false
	}

	var label string
	var f func(float64) float64
	switch kind {
	case ComplexityLambda:
		f = lambda
		label = "f(N)"
	case ComplexityAuto:
		bestRMS := math.Inf(1)
		for _, cand := range autoCandidates {
			cf := complexityFunc(cand)
			_, rms := leastSquaresFit(ns, cpuTimes, cf)
			if rms < bestRMS {
				bestRMS = rms
				f = cf
				label = cand.label()
			}
		}
	default:
		f = complexityFunc(kind)
		label = kind.label()
	}
	if f == nil {
		return nil, false
	}

	cpuCoef, cpuRMS := leastSquaresFit(ns, cpuTimes, f)
	realCoef, _ := leastSquaresFit(ns, realTimes, f)

	bigO := Run{
		Name:            instanceName + "_BigO",
		FamilyIndex:     familyIndex,
		PerFamilyIndex:  perFamilyIndex,
		Threads:         threads,
		RepetitionIndex: -1,
		Repetitions:     len(runs),
		Aggregate:       AggregateBigO,
		AggregateName:   label,
		Unit:            unit,
		CPUTime:         cpuCoef,
		RealTime:        realCoef,
	}
	rmsRun := Run{
		Name:            instanceName + "_RMS",
		FamilyIndex:     familyIndex,
		PerFamilyIndex:  perFamilyIndex,
		Threads:         threads,
		RepetitionIndex: -1,
		Repetitions:     len(runs),
		Aggregate:       AggregateRMS,
		AggregateName:   "RMS",
		Unit:            unit,
		CPUTime:         cpuRMS * 100,
		RealTime:        cpuRMS * 100,
	}
	return []Run{bigO, rmsRun}, true
}
