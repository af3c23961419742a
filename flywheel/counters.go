package flywheel

// CounterFlag controls how a Counter's raw value is scaled when a Run is
// finalized for reporting.
type CounterFlag uint8

const (
	CounterFlagNone CounterFlag = 0
	// CounterFlagRate divides the value by the round's elapsed seconds.
	CounterFlagRate CounterFlag = 1 << iota
	// CounterFlagAvgIterations divides the value by the iteration count.
	CounterFlagAvgIterations
	// CounterFlagAvgThreadsRate divides by elapsed seconds and thread count.
	CounterFlagAvgThreadsRate
	// CounterFlagPercentage multiplies the value by 100.
	CounterFlagPercentage
)

// CounterUnit distinguishes counters measured in time from plain numeric
// counters, so reporters can apply the right suffix/scale.
type CounterUnit int

const (
	UnitNonTime CounterUnit = iota
	UnitTime
)

// Counter is a single named, user-exposed measurement attached to a run.
type Counter struct {
	Value float64
	Flags CounterFlag
	Unit  CounterUnit
}

// Counters is the per-run mapping from counter name to value, as exposed on
// State and carried through to Run and the reporters.
type Counters map[string]Counter

func (c Counters) clone() Counters {
	if c == nil {
		return nil
	}
	out := make(Counters, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// finalize applies a Counter's flags given the round's measured context,
// producing the value a reporter should print. It is not idempotent: calling
// it twice on an already-finalized value would double count, so it is only
// ever invoked once, when a Run is built from a completed round.
func finalizeCounter(c Counter, iterations int64, elapsedSeconds float64, numThreads int) float64 {
	v := c.Value
	if c.Flags&CounterFlagAvgIterations != 0 && iterations > 0 {
		v /= float64(iterations)
	}
	if c.Flags&CounterFlagRate != 0 && elapsedSeconds > 0 {
		v /= elapsedSeconds
	}
	if c.Flags&CounterFlagAvgThreadsRate != 0 && elapsedSeconds > 0 && numThreads > 0 {
		v /= elapsedSeconds * float64(numThreads)
	}
	if c.Flags&CounterFlagPercentage != 0 {
		v *= 100
	}
	return v
}
