package flywheel

import (
	"fmt"
	"io"
)

// logger is a minimal --v-gated leveled logger. Every message is written
// with fmt.Fprintf directly to an injected io.Writer; there is no
// structured logging library in this stack because the ambient output
// surface here is exactly the reporters' plain-text/JSON/CSV streams, and
// splitting log formatting into a second library would just mean
// reconciling two different text encoders for one process's output.
type logger struct {
	out       io.Writer
	verbosity int
}

func newLogger(out io.Writer, verbosity int) *logger {
	return &logger{out: out, verbosity: verbosity}
}

// V reports whether a message at the given verbosity level should print.
func (l *logger) V(level int) bool {
	return l != nil && level <= l.verbosity
}

func (l *logger) Logf(level int, format string, args ...any) {
	if !l.V(level) {
		return
	}
	fmt.Fprintf(l.out, "flywheel: "+format+"\n", args...)
}
