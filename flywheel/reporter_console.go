package flywheel

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ColorMode selects when ConsoleReporter emits ANSI color codes.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorYes
	ColorNo
)

const (
	ansiReset  = "\033[0m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiRed    = "\033[31m"
)

// ConsoleReporter writes a human-readable table to Out, with errors going
// to Err. Column widths are derived from the widest instance name seen in
// ReportContext.
type ConsoleReporter struct {
	Out             io.Writer
	Err             io.Writer
	Color           ColorMode
	CountersTabular bool

	nameWidth int
	useColor  bool
}

// NewConsoleReporter builds a ConsoleReporter writing to stdout/stderr.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{Out: os.Stdout, Err: os.Stderr, Color: ColorAuto}
}

func (r *ConsoleReporter) ReportContext(ctx Context) bool {
	r.nameWidth = ctx.NameFieldWidth
	if r.nameWidth < 10 {
		r.nameWidth = 10
	}
	switch r.Color {
	case ColorYes:
		r.useColor = true
	case ColorNo:
		r.useColor = false
	default:
		if f, ok := r.Out.(*os.File); ok {
			r.useColor = term.IsTerminal(int(f.Fd()))
		}
	}
	fmt.Fprintf(r.Out, "%-*s %13s %13s %10s\n", r.nameWidth, "Benchmark", "Time", "CPU", "Iterations")
	fmt.Fprintln(r.Out, strings.Repeat("-", r.nameWidth+13+13+10+3))
	return true
}

func (r *ConsoleReporter) ReportRuns(runs []Run) {
	for _, run := range runs {
		r.reportOne(run)
	}
}

func (r *ConsoleReporter) reportOne(run Run) {
	if run.ErrorOccurred {
		line := fmt.Sprintf("%-*s ERROR OCCURRED: '%s'", r.nameWidth, run.Name, run.ErrorMessage)
		fmt.Fprintln(r.Out, r.colorize(ansiRed, line))
		return
	}

	unit := run.Unit.String()
	line := fmt.Sprintf("%-*s %10.2f %s %10.2f %s %10d", r.nameWidth, run.Name,
		run.RealTime, unit, run.CPUTime, unit, run.Iterations)

	var extras []string
	if run.BytesPerSecond > 0 {
		extras = append(extras, fmt.Sprintf("bytes_per_second=%.3g/s", run.BytesPerSecond))
	}
	if run.ItemsPerSecond > 0 {
		extras = append(extras, fmt.Sprintf("items_per_second=%.3g/s", run.ItemsPerSecond))
	}
	if run.Label != "" {
		extras = append(extras, run.Label)
	}
	if r.CountersTabular {
		for name, c := range run.Counters {
			extras = append(extras, fmt.Sprintf("%s=%.4g", name, c.Value))
		}
	}
	if len(extras) > 0 {
		line += " " + strings.Join(extras, " ")
	}

	color := ansiGreen
	if run.Aggregate != AggregateNone {
		color = ansiCyan
	}
	if run.Aggregate == AggregateRMS {
		color = ansiYellow
	}
	fmt.Fprintln(r.Out, r.colorize(color, line))
}

func (r *ConsoleReporter) colorize(code, s string) string {
	if !r.useColor {
		return s
	}
	return code + s + ansiReset
}

func (r *ConsoleReporter) Finalize()                {}
func (r *ConsoleReporter) GetOutputStream() io.Writer { return r.Out }
func (r *ConsoleReporter) GetErrorStream() io.Writer  { return r.Err }
