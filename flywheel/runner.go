package flywheel

import (
	"fmt"
	"io"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	convergenceSlack     = 0.9
	convergenceMinMult   = 1.4
	convergenceMaxMult   = 10.0
	convergenceMaxRounds = 10
	convergenceMaxIters  = 1_000_000_000
)

// Runner drives the iteration-count convergence loop and the repetition
// loop for one Instance. One Runner is created per matched Instance; its
// repetitions may be interleaved with other Runners' by the driver.
type Runner struct {
	instance     *Instance
	warnOut      io.Writer
	perfCounters []string

	repDone  int
	repTotal int
	runs     []Run
}

func newRunner(instance *Instance, repTotal int, perfCounters []string, warnOut io.Writer) *Runner {
	return &Runner{
		instance:     instance,
		warnOut:      warnOut,
		perfCounters: perfCounters,
		repTotal:     repTotal,
	}
}

func (rn *Runner) warnf(format string, args ...any) {
	if rn.warnOut == nil {
		return
	}
	fmt.Fprintf(rn.warnOut, "flywheel: warning: "+format+"\n", args...)
}

// Done reports whether every repetition has been run.
func (rn *Runner) Done() bool { return rn.repDone >= rn.repTotal }

// NonAggregateRuns returns every repetition run so far.
func (rn *Runner) NonAggregateRuns() []Run { return rn.runs }

// DoOneRepetition runs one convergence loop and appends its Run. It returns
// the Run just produced and whether this was the Runner's last repetition.
func (rn *Runner) DoOneRepetition() (Run, bool) {
	run := rn.runOneRepetition()
	run.RepetitionIndex = rn.repDone
	run.Repetitions = rn.repTotal
	rn.runs = append(rn.runs, run)
	rn.repDone++
	return run, rn.Done()
}

func (rn *Runner) runOneRepetition() Run {
	fam := rn.instance.Family
	probe := newPerfProbe(rn.perfCounters, rn.warnf)

	if fam.MinWarmUpTime > 0 {
		rn.runWarmUp(probe)
	}

	if fam.Iterations > 0 {
		res := rn.runRound(fam.Iterations, probe)
		return rn.buildRun(res, fam.Iterations)
	}

	iters := int64(1)
	minSeconds := fam.MinTime.Seconds()
	for attempt := 0; attempt < convergenceMaxRounds; attempt++ {
		res := rn.runRound(iters, probe)
		if res.errored {
			return rn.buildRun(res, iters)
		}
		t := rn.elapsedSeconds(res)
		if t >= convergenceSlack*minSeconds && iters >= 1 {
			return rn.buildRun(res, iters)
		}
		mult := minSeconds / math.Max(t, 1e-9)
		if mult < convergenceMinMult {
			mult = convergenceMinMult
		}
		if mult > convergenceMaxMult {
			mult = convergenceMaxMult
		}
		next := int64(math.Ceil(float64(iters) * mult))
		if next > convergenceMaxIters {
			next = convergenceMaxIters
		}
		if next <= iters {
			next = iters + 1
		}
		iters = next
	}
	failed := roundResult{errored: true, errMsg: "convergence loop did not reach min-time within 10 rounds"}
	return rn.buildRun(failed, iters)
}

// runWarmUp runs untimed rounds of doubling iteration count until the
// measured region reaches the family's warm-up window, then discards the
// result.
func (rn *Runner) runWarmUp(probe PerfProbe) {
	fam := rn.instance.Family
	iters := int64(1)
	for i := 0; i < convergenceMaxRounds; i++ {
		res := rn.runRound(iters, probe)
		if res.maxReal.Seconds() >= fam.MinWarmUpTime.Seconds() {
			return
		}
		iters *= 2
		if iters > convergenceMaxIters {
			return
		}
	}
}

// runRound executes exactly one round with the given iteration count across
// all NumThreads workers (worker 0 runs on the calling goroutine to avoid
// spawn overhead for the common N=1 case) and returns the aggregated
// per-round result. Each thread's State outlives its body call so that
// mergeStateExtras can read the accumulators a body sets after its
// "for st.KeepRunning() {...}" loop returns (SetBytesProcessed,
// SetItemsProcessed, SetLabel, SetComplexityN, SetCounter): those calls
// happen after the stop barrier, so they must be read here rather than at
// FinishKeepRunning.
func (rn *Runner) runRound(iters int64, probe PerfProbe) roundResult {
	inst := rn.instance
	n := inst.NumThreads
	mgr := newThreadManager(n, probe)
	body := inst.Family.Body
	args := inst.Args

	states := make([]*State, n)
	cpuStart := processCPUTime()

	var g errgroup.Group
	for t := 1; t < n; t++ {
		idx := t
		g.Go(func() error {
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
			st := newState(idx, n, iters, args, mgr)
			states[idx] = st
			body(st)
			return nil
		})
	}
	func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		st := newState(0, n, iters, args, mgr)
		states[0] = st
		body(st)
	}()
	_ = g.Wait()

	res := mgr.results()
	res.processCPU = processCPUTime() - cpuStart
	mergeStateExtras(&res, states)
	return res
}

// elapsedSeconds selects the reported time per the family's timing mode.
func (rn *Runner) elapsedSeconds(res roundResult) float64 {
	fam := rn.instance.Family
	switch {
	case fam.UseManualTime:
		return res.sumManual.Seconds() / float64(rn.instance.NumThreads)
	case fam.ProcessCPU:
		return res.processCPU.Seconds()
	case fam.UseRealTime:
		return res.maxReal.Seconds()
	default:
		return res.sumCPU.Seconds()
	}
}

func (rn *Runner) buildRun(res roundResult, iters int64) Run {
	inst := rn.instance
	fam := inst.Family
	unit := fam.Unit

	seconds := rn.elapsedSeconds(res)
	var realVal, cpuVal float64
	switch {
	case fam.UseManualTime:
		cpuVal = unit.scale(res.sumCPU) / float64(inst.NumThreads)
		realVal = unit.scale(time.Duration(seconds * float64(time.Second)))
	case fam.ProcessCPU:
		cpuVal = unit.scale(res.processCPU)
		realVal = cpuVal
	case fam.UseRealTime:
		realVal = unit.scale(res.maxReal)
		cpuVal = unit.scale(res.sumCPU)
	default:
		cpuVal = unit.scale(res.sumCPU)
		realVal = unit.scale(res.maxReal)
	}

	var bytesPerSec, itemsPerSec float64
	if seconds > 0 {
		bytesPerSec = float64(res.bytes) / seconds
		itemsPerSec = float64(res.items) / seconds
	}

	counters := Counters{}
	for name, c := range res.counters {
		counters[name] = Counter{Value: finalizeCounter(c, res.iterations, seconds, inst.NumThreads), Unit: c.Unit}
	}
	for name, v := range res.probeVals {
		counters[name] = Counter{Value: v, Unit: UnitNonTime}
	}

	complexityN := res.complexityN
	if complexityN == 0 && len(inst.Args) > 0 {
		complexityN = inst.Args[0]
	}

	return Run{
		Name:           inst.Name,
		FamilyIndex:    inst.FamilyIndex,
		PerFamilyIndex: inst.PerFamilyIndex,
		Threads:        inst.NumThreads,
		Iterations:     res.iterations,
		RealTime:       realVal,
		CPUTime:        cpuVal,
		Unit:           unit,
		BytesPerSecond: bytesPerSec,
		ItemsPerSecond: itemsPerSec,
		Label:          res.label,
		Counters:       counters,
		ErrorOccurred:  res.errored,
		ErrorMessage:   res.errMsg,
		ComplexityN:    float64(complexityN),
	}
}
