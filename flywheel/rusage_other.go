//go:build !linux

package flywheel

import "time"

var processStart = now()

// threadCPUTime falls back to wall-clock-since-start on platforms without a
// portable per-thread CPU clock in this module's dependency set. It is a
// degraded approximation: CPU-time and process-CPU modes on these platforms
// measure wall time, not actual CPU consumption.
func threadCPUTime() time.Duration {
	return now().Sub(processStart)
}

func processCPUTime() time.Duration {
	return now().Sub(processStart)
}
