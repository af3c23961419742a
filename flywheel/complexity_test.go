package flywheel

import "testing"

func makeComplexityRuns(ns []float64, coef float64, f func(float64) float64) []Run {
	runs := make([]Run, len(ns))
	for i, n := range ns {
		t := coef * f(n)
		runs[i] = Run{ComplexityN: n, CPUTime: t, RealTime: t}
	}
	return runs
}

func TestFitComplexityLinearRecoversON(t *testing.T) {
	ns := []float64{1, 2, 4, 8, 16, 32}
	runs := makeComplexityRuns(ns, 3.0, complexityFunc(ComplexityON))

	fits, ok := fitComplexity("BM_Linear", 0, 0, 1, runs, ComplexityON, nil, Nanosecond)
	if !ok {
		t.Fatal("expected fit to succeed")
	}
	if len(fits) != 2 {
		t.Fatalf("expected 2 synthetic runs (BigO, RMS), got %d", len(fits))
	}
	bigO, rms := fits[0], fits[1]
	if bigO.Aggregate != AggregateBigO {
		t.Errorf("expected first run to be AggregateBigO, got %v", bigO.Aggregate)
	}
	if rms.Aggregate != AggregateRMS {
		t.Errorf("expected second run to be AggregateRMS, got %v", rms.Aggregate)
	}
	if diff := bigO.CPUTime - 3.0; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("expected fitted coefficient ~3.0, got %v", bigO.CPUTime)
	}
	if bigO.AggregateName != "O(N)" {
		t.Errorf("expected label O(N), got %q", bigO.AggregateName)
	}
}

func TestFitComplexityQuadraticRecoversON2(t *testing.T) {
	ns := []float64{2, 4, 8, 16, 32, 64}
	runs := makeComplexityRuns(ns, 0.5, complexityFunc(ComplexityON2))

	fits, ok := fitComplexity("BM_Quad", 0, 0, 1, runs, ComplexityON2, nil, Nanosecond)
	if !ok {
		t.Fatal("expected fit to succeed")
	}
	bigO := fits[0]
	if diff := bigO.CPUTime - 0.5; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("expected fitted coefficient ~0.5, got %v", bigO.CPUTime)
	}
}

func TestFitComplexityAutoPicksBestFit(t *testing.T) {
	ns := []float64{2, 4, 8, 16, 32, 64, 128}
	runs := makeComplexityRuns(ns, 2.0, complexityFunc(ComplexityON2))

	fits, ok := fitComplexity("BM_Auto", 0, 0, 1, runs, ComplexityAuto, nil, Nanosecond)
	if !ok {
		t.Fatal("expected fit to succeed")
	}
	if fits[0].AggregateName != "O(N^2)" {
		t.Errorf("expected auto mode to select O(N^2), got %q", fits[0].AggregateName)
	}
}

func TestFitComplexityRequiresAtLeastTwoDistinctSizes(t *testing.T) {
	runs := []Run{{ComplexityN: 4, CPUTime: 1}, {ComplexityN: 4, CPUTime: 1}}
	_, ok := fitComplexity("BM_Same", 0, 0, 1, runs, ComplexityON, nil, Nanosecond)
	if ok {
		t.Fatal("expected fit to fail with fewer than 2 distinct sizes")
	}
}
