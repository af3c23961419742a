//go:build !linux

package flywheel

import "fmt"

func openPerfProbe(names []string) (PerfProbe, error) {
	return nil, fmt.Errorf("hardware perf counters are only supported on linux")
}
