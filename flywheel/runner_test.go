package flywheel

import (
	"io"
	"testing"
	"time"
)

func newTestInstance(fam *Family, args []int64, numThreads int) *Instance {
	if numThreads == 0 {
		numThreads = 1
	}
	return &Instance{
		Family:     fam,
		Args:       args,
		NumThreads: numThreads,
		Name:       buildName(fam, args, numThreads),
	}
}

func TestRunnerFixedIterationsRunsExactlyThatMany(t *testing.T) {
	var seen int64
	fam := &Family{
		Name:       "BM_Fixed",
		Iterations: 50,
		Unit:       Nanosecond,
		Body: func(st *State) {
			for st.KeepRunning() {
				seen++
			}
		},
	}
	inst := newTestInstance(fam, nil, 1)
	rn := newRunner(inst, 1, nil, io.Discard)
	run, last := rn.DoOneRepetition()
	if !last {
		t.Fatal("expected single repetition to be last")
	}
	if run.Iterations != 50 {
		t.Fatalf("expected 50 iterations, got %d", run.Iterations)
	}
	if seen != 50 {
		t.Fatalf("expected body to run 50 times, got %d", seen)
	}
}

func TestRunnerConvergenceLoopReachesMinTime(t *testing.T) {
	fam := &Family{
		Name:    "BM_Trivial",
		MinTime: 5 * time.Millisecond,
		Unit:    Millisecond,
		Body: func(st *State) {
			for st.KeepRunning() {
			}
		},
	}
	inst := newTestInstance(fam, nil, 1)
	rn := newRunner(inst, 1, nil, io.Discard)
	run, _ := rn.DoOneRepetition()
	if run.ErrorOccurred {
		t.Fatalf("expected convergence to succeed, got error %q", run.ErrorMessage)
	}
	if run.Iterations < 1 {
		t.Fatalf("expected at least one iteration, got %d", run.Iterations)
	}
}

func TestRunnerMultiRepetitions(t *testing.T) {
	fam := &Family{
		Name:       "BM_Reps",
		Iterations: 10,
		Repetitions: 3,
	}
	fam.Body = func(st *State) {
		for st.KeepRunning() {
		}
	}
	inst := newTestInstance(fam, nil, 1)
	rn := newRunner(inst, 3, nil, io.Discard)

	for i := 0; i < 3; i++ {
		run, last := rn.DoOneRepetition()
		if run.RepetitionIndex != i {
			t.Errorf("repetition %d: expected RepetitionIndex %d, got %d", i, i, run.RepetitionIndex)
		}
		if run.Repetitions != 3 {
			t.Errorf("expected Repetitions field 3, got %d", run.Repetitions)
		}
		wantLast := i == 2
		if last != wantLast {
			t.Errorf("repetition %d: expected last=%v, got %v", i, wantLast, last)
		}
	}
	if !rn.Done() {
		t.Fatal("expected runner to be Done after 3 repetitions")
	}
	if len(rn.NonAggregateRuns()) != 3 {
		t.Fatalf("expected 3 recorded runs, got %d", len(rn.NonAggregateRuns()))
	}
}

func TestRunnerMultiThreadedSumsIterations(t *testing.T) {
	fam := &Family{
		Name:       "BM_MT",
		Iterations: 20,
	}
	fam.Body = func(st *State) {
		for st.KeepRunning() {
		}
	}
	inst := newTestInstance(fam, nil, 4)
	rn := newRunner(inst, 1, nil, io.Discard)
	run, _ := rn.DoOneRepetition()
	if run.Iterations != 20*4 {
		t.Fatalf("expected N*max_iterations = 80 total iterations, got %d", run.Iterations)
	}
}

func TestRunnerErrorPropagatesAcrossThreads(t *testing.T) {
	fam := &Family{
		Name:       "BM_Err",
		Iterations: 1_000_000,
	}
	fam.Body = func(st *State) {
		count := 0
		for st.KeepRunning() {
			count++
			if st.ThreadIndex() == 0 && count == 3 {
				st.SkipWithError("x")
			}
		}
	}
	inst := newTestInstance(fam, nil, 4)
	rn := newRunner(inst, 1, nil, io.Discard)
	run, _ := rn.DoOneRepetition()
	if !run.ErrorOccurred || run.ErrorMessage != "x" {
		t.Fatalf("expected a single errored run with message 'x', got occurred=%v msg=%q", run.ErrorOccurred, run.ErrorMessage)
	}
}
