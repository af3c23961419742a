// Command flywheelcheck registers a handful of representative benchmarks
// and links them against the flywheel harness, the same way a real
// benchmark binary links the package against its own suite.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/flywheel-bench/flywheel/flywheel"
)

func init() {
	flywheel.RegisterBenchmark("BM_StringConcat", func(st *flywheel.State) {
		n := int(st.Range(0))
		for st.KeepRunning() {
			var b strings.Builder
			for i := 0; i < n; i++ {
				b.WriteString("x")
			}
			_ = b.String()
		}
		st.SetComplexityN(int64(n))
		st.SetBytesProcessed(int64(n) * st.MaxIterations())
	}, flywheel.Args(8), flywheel.Args(64), flywheel.Args(512), flywheel.Args(4096),
		flywheel.Complexity(flywheel.ComplexityON))

	flywheel.RegisterBenchmark("BM_MapInsert", func(st *flywheel.State) {
		for st.KeepRunning() {
			m := make(map[int]int, 16)
			for i := 0; i < 16; i++ {
				m[i] = i * i
			}
		}
	}, flywheel.Repetitions(3))

	flywheel.RegisterBenchmark("BM_ParallelIncrement", func(st *flywheel.State) {
		counter := 0
		for st.KeepRunning() {
			counter++
		}
		_ = counter
	}, flywheel.ThreadRange(1, 4))
}

func main() {
	rest, err := flywheel.Initialize(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(rest) > 0 {
		fmt.Fprintf(os.Stderr, "flywheelcheck: unrecognized arguments: %v\n", rest)
		os.Exit(1)
	}
	flywheel.RunSpecifiedBenchmarks()
}
