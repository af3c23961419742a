// Package flywheel is a micro-benchmark harness. A user program registers
// benchmark functions with RegisterBenchmark, then calls Initialize and
// RunSpecifiedBenchmarks from its own main. The harness expands each
// registration into a set of concrete Instances (argument tuples x thread
// counts), runs each until it converges on a stable iteration count, and
// reports the results through a pluggable Reporter.
package flywheel
