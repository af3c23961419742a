package flywheel

import "time"

// State is the per-thread, per-repetition execution handle passed to a
// benchmark body. Its hot fields (errorOccurred, finished, totalIterations)
// are declared first so they land in the struct's first cache line, since
// KeepRunning reads them on every iteration.
type State struct {
	errorOccurred   bool
	finished        bool
	started         bool
	totalIterations int64

	threadIndex   int
	numThreads    int
	maxIterations int64

	args        []int64
	complexityN int64

	bytesProcessed int64
	itemsProcessed int64
	reportLabel    string
	errorMessage   string

	counters Counters

	timer *threadTimer
	mgr   *threadManager
}

func newState(threadIndex, numThreads int, maxIterations int64, args []int64, mgr *threadManager) *State {
	return &State{
		threadIndex:   threadIndex,
		numThreads:    numThreads,
		maxIterations: maxIterations,
		args:          args,
		counters:      Counters{},
		timer:         newThreadTimer(),
		mgr:           mgr,
	}
}

// ThreadIndex returns this thread's index in [0, NumThreads).
func (s *State) ThreadIndex() int { return s.threadIndex }

// NumThreads returns the number of threads participating in this round.
func (s *State) NumThreads() int { return s.numThreads }

// Range returns the argument tuple this instance was created with.
func (s *State) Range(i int) int64 {
	if i < 0 || i >= len(s.args) {
		return 0
	}
	return s.args[i]
}

// Args returns the full argument tuple.
func (s *State) Args() []int64 { return s.args }

// MaxIterations returns the iteration count this round was asked to run.
func (s *State) MaxIterations() int64 { return s.maxIterations }

// KeepRunning is the hot-path iteration predicate. The first call starts
// the timing region (crossing the start barrier); it and every call after
// decrement a countdown and return true while iterations remain and no
// error has occurred; the call that reaches zero stops the timing region
// (crossing the stop barrier) before returning false. Calling KeepRunning
// again after it has returned false is a misuse error.
func (s *State) KeepRunning() bool {
	if s.finished {
		misuse("KeepRunning called after it already returned false")
	}
	if !s.started {
		s.doStartKeepRunning()
	}
	if s.mgr.errored() {
		s.totalIterations = 0
	}
	pre := s.totalIterations
	s.totalIterations--
	ok := pre != 0
	if !ok {
		s.doFinishKeepRunning()
	}
	return ok
}

func (s *State) doStartKeepRunning() {
	s.started = true
	if s.errorOccurred || s.mgr.errored() {
		s.totalIterations = 0
	} else {
		s.totalIterations = s.maxIterations
	}
	s.mgr.startBarrier()
	s.timer.Start()
}

func (s *State) doFinishKeepRunning() {
	s.timer.Stop()
	s.finished = true
	s.mgr.pushResult(s.threadIndex, s.snapshot())
	s.mgr.stopBarrier()
}

func (s *State) snapshot() perThreadResult {
	return perThreadResult{
		real:       s.timer.Real(),
		cpu:        s.timer.CPU(),
		manual:     s.timer.Manual(),
		iterations: s.maxIterations - max64(s.totalIterations, 0),
		errored:    s.errorOccurred,
		errMsg:     s.errorMessage,
	}
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// PauseTiming stops this thread's timer; hardware perf-counter sampling is
// not paused. Only thread 0 may call it when running with more than one
// thread.
func (s *State) PauseTiming() {
	s.assertMainThreadIfMulti("PauseTiming")
	s.timer.Stop()
}

// ResumeTiming restarts this thread's timer after a PauseTiming.
func (s *State) ResumeTiming() {
	s.assertMainThreadIfMulti("ResumeTiming")
	s.timer.Start()
}

func (s *State) assertMainThreadIfMulti(op string) {
	if s.numThreads > 1 && s.threadIndex != 0 {
		misuse("%s may only be called from thread 0 in multi-threaded mode", op)
	}
}

// SkipWithError marks this run as errored and forces every thread's
// KeepRunning to return false at its next check.
func (s *State) SkipWithError(msg string) {
	s.errorOccurred = true
	s.errorMessage = msg
	s.mgr.setError(msg)
	s.totalIterations = 0
}

// SetIterationTime records a manually-measured duration for the current
// iteration; only meaningful in manual-time mode.
func (s *State) SetIterationTime(d time.Duration) {
	s.timer.AddManualTime(d)
}

// SetBytesProcessed sets the total bytes processed across all iterations of
// this thread, feeding bytes_per_second in the resulting Run.
func (s *State) SetBytesProcessed(n int64) { s.bytesProcessed = n }

// SetItemsProcessed sets the total items processed across all iterations of
// this thread, feeding items_per_second in the resulting Run.
func (s *State) SetItemsProcessed(n int64) { s.itemsProcessed = n }

// SetLabel attaches a free-form label carried through to every reporter.
func (s *State) SetLabel(label string) { s.reportLabel = label }

// SetComplexityN sets the input size used by the complexity fit, overriding
// the default of Range(0).
func (s *State) SetComplexityN(n int64) { s.complexityN = n }

// Counter returns the current value of the named counter, or the zero
// Counter if it hasn't been set yet. Use SetCounter to create or mutate one.
func (s *State) Counter(name string) Counter {
	return s.counters[name]
}

// SetCounter sets a named counter's value, flags, and unit.
func (s *State) SetCounter(name string, value float64, flags CounterFlag, unit CounterUnit) {
	s.counters[name] = Counter{Value: value, Flags: flags, Unit: unit}
}
