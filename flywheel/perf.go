package flywheel

// PerfProbe samples named hardware performance counters across a measured
// region. It is optional: when no counter names are configured, harness
// code uses noopProbe and never touches the platform-specific
// perf_event_open path in perf_linux.go.
type PerfProbe interface {
	Start() error
	Stop() error
	Reset()
	// Read returns the accumulated counter values since the last Reset,
	// keyed by the names Start was configured with.
	Read() (map[string]float64, error)
}

type noopProbe struct{}

func (noopProbe) Start() error                      { return nil }
func (noopProbe) Stop() error                       { return nil }
func (noopProbe) Reset()                            {}
func (noopProbe) Read() (map[string]float64, error) { return nil, nil }

// newPerfProbe returns a probe for the requested counter names, or a no-op
// probe (with a warning written to warn) when the platform can't open
// hardware counters or none were requested.
func newPerfProbe(names []string, warn func(string, ...any)) PerfProbe {
	if len(names) == 0 {
		return noopProbe{}
	}
	p, err := openPerfProbe(names)
	if err != nil {
		if warn != nil {
			warn("perf counters unavailable: %v", err)
		}
		return noopProbe{}
	}
	return p
}
