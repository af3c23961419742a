package flywheel

import "testing"

func newSoloState(maxIterations int64) *State {
	mgr := newThreadManager(1, nil)
	return newState(0, 1, maxIterations, nil, mgr)
}

func TestKeepRunningCountsDownToZero(t *testing.T) {
	st := newSoloState(3)
	count := 0
	for st.KeepRunning() {
		count++
	}
	if count != 3 {
		t.Fatalf("expected 3 iterations, got %d", count)
	}
	if !st.finished {
		t.Fatal("expected finished after KeepRunning returns false")
	}
}

func TestKeepRunningZeroIterationsNeverRuns(t *testing.T) {
	st := newSoloState(0)
	if st.KeepRunning() {
		t.Fatal("expected first call to return false when max_iterations == 0")
	}
}

func TestKeepRunningAfterFinishPanics(t *testing.T) {
	st := newSoloState(1)
	for st.KeepRunning() {
	}
	defer func() {
		if recover() == nil {
			t.Fatal("expected misuse panic calling KeepRunning again")
		}
	}()
	st.KeepRunning()
}

func TestPauseTimingOffThreadZeroPanics(t *testing.T) {
	mgr := newThreadManager(2, nil)
	st := newState(1, 2, 10, nil, mgr)
	defer func() {
		if recover() == nil {
			t.Fatal("expected misuse panic pausing from a non-zero thread in multi-thread mode")
		}
	}()
	st.PauseTiming()
}

func TestSkipWithErrorStopsIteration(t *testing.T) {
	st := newSoloState(1_000_000)
	count := 0
	for st.KeepRunning() {
		count++
		if count == 5 {
			st.SkipWithError("boom")
		}
	}
	if count != 5 {
		t.Fatalf("expected iteration to stop right after SkipWithError, got %d", count)
	}
	if !st.errorOccurred || st.errorMessage != "boom" {
		t.Fatalf("expected errorOccurred with message %q, got occurred=%v msg=%q", "boom", st.errorOccurred, st.errorMessage)
	}
}

func TestSnapshotReportsConsumedIterations(t *testing.T) {
	st := newSoloState(4)
	for st.KeepRunning() {
	}
	snap := st.snapshot()
	if snap.iterations != 4 {
		t.Fatalf("expected snapshot to report 4 consumed iterations, got %d", snap.iterations)
	}
}
